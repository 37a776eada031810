package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/trip-guide/internal/config"
	"github.com/jonathan/trip-guide/internal/enrichment"
	"github.com/jonathan/trip-guide/internal/job"
	"github.com/jonathan/trip-guide/internal/llm"
	"github.com/jonathan/trip-guide/internal/store"
	"github.com/jonathan/trip-guide/internal/types"
)

// app holds the wired collaborators behind both the serve and generate
// commands.
type app struct {
	trips   store.TripStore
	guides  store.GuideStore
	history store.RunLister
	manager *job.Manager
	closers []func()
}

// Close releases backends in reverse wiring order.
func (a *app) Close() {
	a.manager.Stop()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// chainGenerator adapts the llm fallback chain to the pipeline's
// generator port.
type chainGenerator struct {
	chain *llm.Chain
}

func (g chainGenerator) Generate(ctx context.Context, facts *types.TripFacts, prefs types.CanonicalPreferences) (*job.GeneratedText, error) {
	res, err := g.chain.Generate(ctx, facts, prefs)
	if err != nil {
		return nil, err
	}
	return &job.GeneratedText{Text: res.Text, Provider: res.Provider}, nil
}

// buildApp wires stores, cache, providers, and the job manager from config.
func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{}

	// Stores: PostgreSQL when configured, otherwise in-process.
	if cfg.DatabaseURL != "" {
		pg, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		a.trips, a.guides, a.history = pg, pg, pg
	} else {
		mem := store.NewMemory()
		a.trips, a.guides, a.history = mem, mem, mem
		log.Println("[wire] no DATABASE_URL set, using in-memory stores")
	}

	// Enrichment cache: Redis when configured, otherwise in-process.
	var cache enrichment.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				log.Printf("[wire] failed to close redis client: %v", err)
			}
		})
		cache = enrichment.NewRedisCache(client, "enrich")
	} else {
		cache = enrichment.NewMemoryCache()
	}

	// Place and weather providers. Unconfigured providers are simply
	// absent; enrichment then degrades per category.
	var providers []enrichment.PlaceProvider
	if cfg.PlacesBaseURL != "" {
		providers = append(providers, enrichment.NewPlacesAPIProvider("places", cfg.PlacesBaseURL, cfg.PlacesAPIKey))
	}
	if cfg.EventsBaseURL != "" {
		providers = append(providers, enrichment.NewHTMLEventsProvider(cfg.EventsBaseURL))
	}
	var weather enrichment.WeatherProvider
	if cfg.WeatherBaseURL != "" {
		weather = enrichment.NewHTTPWeatherProvider(cfg.WeatherBaseURL)
	}

	enricher := enrichment.NewService(
		providers,
		weather,
		cache,
		config.Duration(cfg.CacheTTL, enrichment.DefaultCacheTTL),
		enrichment.DefaultProviderTimeout,
	)

	// Content chain, most capable provider first, template last so
	// generation as a whole cannot fail.
	var generators []llm.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, llm.DefaultGeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini generator: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := gemini.Close(); err != nil {
				log.Printf("[wire] failed to close gemini client: %v", err)
			}
		})
		generators = append(generators, gemini)
	}
	if cfg.OpenAIAPIKey != "" {
		generators = append(generators, llm.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, ""))
	}
	generators = append(generators, llm.NewTemplateGenerator())
	chain := llm.NewChain(llm.DefaultAttemptTimeout, generators...)

	var recorder store.RunRecorder = store.NoopRecorder{}
	if r, ok := a.trips.(store.RunRecorder); ok {
		recorder = r
	}

	a.manager = job.NewManager(job.Deps{
		Trips:     a.trips,
		Guides:    a.guides,
		Enricher:  enricher,
		Generator: chainGenerator{chain: chain},
		Recorder:  recorder,
	}, job.Options{
		StageTimeout:    config.Duration(cfg.StageTimeout, 0),
		PipelineTimeout: config.Duration(cfg.PipelineTimeout, 0),
	})

	return a, nil
}

// loadConfig merges file, environment, and defaults; flags override later.
func loadConfig(path string) (config.Config, error) {
	cfg := config.FromEnv()
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// waitForTerminal follows a run's snapshots until it ends, echoing stage
// transitions for CLI use.
func waitForTerminal(m *job.Manager, tripID string, timeout time.Duration) (job.Snapshot, error) {
	updates, cancel, err := m.Subscribe(tripID)
	if err != nil {
		return job.Snapshot{}, err
	}
	defer cancel()

	deadline := time.After(timeout)
	var last job.Snapshot
	for {
		select {
		case <-deadline:
			return last, fmt.Errorf("timed out waiting for generation to finish")
		case snap, ok := <-updates:
			if !ok {
				return last, nil
			}
			last = snap
			log.Printf("[%3d%%] %s", snap.Progress, snap.Message)
			if snap.Terminal() {
				return snap, nil
			}
		}
	}
}
