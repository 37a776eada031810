package enrichment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/trip-guide/internal/types"
)

// SearchFilters is the preference subset a provider query honors.
type SearchFilters struct {
	Tiers    []types.PriceTier
	Cuisines []string
	Tags     []string
}

// PlaceProvider searches one external source for places or events.
// Implementations may fail or time out; the service treats each provider
// independently.
type PlaceProvider interface {
	Name() string
	Search(ctx context.Context, category types.Category, destination string, filters SearchFilters) ([]types.EnrichedItem, error)
}

// WeatherProvider returns a day-by-day forecast for a destination.
type WeatherProvider interface {
	Forecast(ctx context.Context, destination string, days int) ([]types.DayWeather, error)
}

// Service coordinates providers, filtering, deduplication, and the cache.
type Service struct {
	providers []PlaceProvider
	weather   WeatherProvider
	cache     Cache
	ttl       time.Duration
	timeout   time.Duration
}

// Default bounds for provider calls and cache residency.
const (
	DefaultCacheTTL        = 15 * time.Minute
	DefaultProviderTimeout = 20 * time.Second
)

// NewService creates an enrichment service. A nil cache gets an in-process
// one; zero durations use the defaults.
func NewService(providers []PlaceProvider, weather WeatherProvider, cache Cache, ttl, timeout time.Duration) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &Service{providers: providers, weather: weather, cache: cache, ttl: ttl, timeout: timeout}
}

// FiltersFor extracts the preference subset relevant to a category.
// Cuisine filters only apply to dining; interest tags only to attractions
// and events, so two trips differing only in cuisine share the cached
// attractions result.
func FiltersFor(category types.Category, prefs types.CanonicalPreferences) SearchFilters {
	f := SearchFilters{Tiers: prefs.TierList()}
	switch category {
	case types.CategoryDining:
		f.Cuisines = prefs.CuisineList()
	default:
		f.Tags = prefs.InterestTags()
	}
	return f
}

// cacheKey derives the cache key from the category, destination, and a
// hash of the relevant preference subset.
func cacheKey(category types.Category, destination string, filters SearchFilters) string {
	h := sha256.New()
	for _, t := range filters.Tiers {
		fmt.Fprintf(h, "t:%s;", t)
	}
	for _, c := range filters.Cuisines {
		fmt.Fprintf(h, "c:%s;", c)
	}
	for _, tag := range filters.Tags {
		fmt.Fprintf(h, "i:%s;", tag)
	}
	digest := hex.EncodeToString(h.Sum(nil))[:16]
	return fmt.Sprintf("%s:%s:%s", category, strings.ToLower(destination), digest)
}

// Enrich returns the filtered, deduplicated recommendation set for one
// category. Within the TTL, repeated calls with the same category,
// destination, and preference subset are served from the cache without any
// provider call. An error is returned only when every provider fails.
func (s *Service) Enrich(ctx context.Context, category types.Category, destination string, prefs types.CanonicalPreferences) ([]types.EnrichedItem, error) {
	filters := FiltersFor(category, prefs)
	key := cacheKey(category, destination, filters)

	if items, ok := s.cache.Get(ctx, key); ok {
		return items, nil
	}

	var (
		mu       sync.Mutex
		merged   []types.EnrichedItem
		failures int
	)
	g, gCtx := errgroup.WithContext(ctx)
	for _, provider := range s.providers {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gCtx, s.timeout)
			defer cancel()

			items, err := provider.Search(callCtx, category, destination, filters)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[enrich] provider %s failed for %s/%s: %v", provider.Name(), category, destination, err)
				failures++
				return nil // one provider failing must not cancel the others
			}
			merged = append(merged, items...)
			return nil
		})
	}
	_ = g.Wait()

	if len(merged) == 0 && failures == len(s.providers) && failures > 0 {
		return nil, fmt.Errorf("all %d providers failed for %s in %s", failures, category, destination)
	}

	result := Dedupe(Filter(merged, category, filters))
	s.cache.Set(ctx, key, result, s.ttl)
	return result, nil
}

// Weather fetches the day-by-day forecast. A missing provider yields an
// empty forecast, not an error; the guide simply omits weather.
func (s *Service) Weather(ctx context.Context, destination string, days int) ([]types.DayWeather, error) {
	if s.weather == nil {
		return nil, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.weather.Forecast(callCtx, destination, days)
}

// Filter drops items that contradict hard preference constraints. Items
// lacking the filtered attribute are kept: an unpriced attraction is not
// evidence of a tier mismatch.
func Filter(items []types.EnrichedItem, category types.Category, filters SearchFilters) []types.EnrichedItem {
	out := items[:0:0]
	for _, item := range items {
		if item.Price != "" && len(filters.Tiers) > 0 && !tierAllowed(types.PriceTier(item.Price), filters.Tiers) {
			continue
		}
		if category == types.CategoryDining && len(filters.Cuisines) > 0 &&
			len(item.Tags) > 0 && !anyOverlap(item.Tags, filters.Cuisines) {
			continue
		}
		if category != types.CategoryDining && len(filters.Tags) > 0 &&
			len(item.Tags) > 0 && !anyOverlap(item.Tags, filters.Tags) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Dedupe removes duplicate items by case-insensitive name+address,
// keeping the first (highest-priority provider) occurrence and sorting by
// rating so the best candidates surface first.
func Dedupe(items []types.EnrichedItem) []types.EnrichedItem {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Name)) + "|" + strings.ToLower(strings.TrimSpace(item.Address))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out
}

func tierAllowed(tier types.PriceTier, allowed []types.PriceTier) bool {
	for _, t := range allowed {
		if t == tier {
			return true
		}
	}
	return false
}

func anyOverlap(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
