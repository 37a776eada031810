package job

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/trip-guide/internal/store"
	"github.com/jonathan/trip-guide/internal/types"
)

// Deps are the collaborators a Manager drives. Generator and Enricher are
// interfaces so tests can substitute deterministic fakes.
type Deps struct {
	Trips     store.TripStore
	Guides    store.GuideStore
	Enricher  Enricher
	Generator Generator
	Recorder  store.RunRecorder
}

// Enricher is the slice of the enrichment service the pipeline consumes.
type Enricher interface {
	Enrich(ctx context.Context, category types.Category, destination string, prefs types.CanonicalPreferences) ([]types.EnrichedItem, error)
	Weather(ctx context.Context, destination string, days int) ([]types.DayWeather, error)
}

// Generator is the slice of the content chain the pipeline consumes.
type Generator interface {
	Generate(ctx context.Context, facts *types.TripFacts, prefs types.CanonicalPreferences) (*GeneratedText, error)
}

// GeneratedText pairs narrative content with the provider that produced it.
type GeneratedText struct {
	Text     *types.GuideText
	Provider string
}

// Options tune manager timing. Zero values use the defaults.
type Options struct {
	// StageTimeout bounds each stage's external calls.
	StageTimeout time.Duration
	// PipelineTimeout bounds one full run.
	PipelineTimeout time.Duration
	// Retention is how long terminal jobs answer late status queries
	// before the janitor removes them.
	Retention time.Duration
	// JanitorInterval is how often retention is enforced.
	JanitorInterval time.Duration
}

// Default manager timing.
const (
	DefaultStageTimeout    = 30 * time.Second
	DefaultPipelineTimeout = 4 * time.Minute
	DefaultRetention       = 24 * time.Hour
	DefaultJanitorInterval = 10 * time.Minute
)

// Manager guarantees at most one active generation per trip id and is the
// single source of truth for progress. Both the SSE stream and the polling
// endpoint read the same per-trip job record.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*job

	deps Deps
	opts Options

	stopOnce sync.Once
	stop     chan struct{}
}

// NewManager creates a manager and starts its retention janitor.
func NewManager(deps Deps, opts Options) *Manager {
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = DefaultStageTimeout
	}
	if opts.PipelineTimeout <= 0 {
		opts.PipelineTimeout = DefaultPipelineTimeout
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.JanitorInterval <= 0 {
		opts.JanitorInterval = DefaultJanitorInterval
	}
	if deps.Recorder == nil {
		deps.Recorder = store.NoopRecorder{}
	}

	m := &Manager{
		jobs: make(map[string]*job),
		deps: deps,
		opts: opts,
		stop: make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Stop halts the janitor. In-flight runs finish on their own.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Start begins generation for a trip. If a run is already active and force
// is false, it returns the existing run's snapshot with started=false (the
// single-flight guarantee). With force, the active run is superseded: its
// stages stop advancing at the next boundary and a fresh run begins.
// Unknown trip ids are rejected synchronously without creating a job.
func (m *Manager) Start(ctx context.Context, tripID string, prefs types.CanonicalPreferences, force bool) (Snapshot, bool, error) {
	facts, err := m.deps.Trips.GetTrip(ctx, tripID)
	if err != nil {
		if err == store.ErrNotFound {
			return Snapshot{}, false, store.ErrNotFound
		}
		return Snapshot{}, false, fmt.Errorf("failed to load trip facts: %w", err)
	}
	if err := facts.Validate(); err != nil {
		return Snapshot{}, false, err
	}

	m.mu.Lock()
	j, ok := m.jobs[tripID]
	if !ok {
		j = &job{tripID: tripID, status: StatusIdle, subscribers: make(map[int]chan Snapshot)}
		m.jobs[tripID] = j
	}
	m.mu.Unlock()

	j.mu.Lock()
	if j.status == StatusRunning && !force {
		snap := j.snapshotLocked()
		j.mu.Unlock()
		return snap, false, nil
	}

	// Fresh run semantics: bump the run counter so any goroutine still
	// executing for the previous attempt discards its results, then reset
	// all progress state.
	j.run++
	token := j.run
	j.runID = uuid.New()
	j.status = StatusRunning
	j.stage = 0
	j.progress = 0
	j.message = "Starting generation"
	j.lastError = ""
	j.warnings = nil
	j.startedAt = time.Now().UTC()
	j.finishedAt = time.Time{}
	snap := j.snapshotLocked()
	j.publishLocked()
	runID := j.runID
	j.mu.Unlock()

	if err := m.deps.Recorder.RecordRun(context.WithoutCancel(ctx), store.RunRecord{
		ID: runID, TripID: tripID, Run: token, Status: string(StatusRunning), StartedAt: snap.StartedAt,
	}); err != nil {
		log.Printf("[job] failed to record run start for %s: %v", tripID, err)
	}

	go m.runPipeline(token, j, facts, prefs)
	return snap, true, nil
}

// GetStatus returns the current snapshot for a trip. It never blocks and
// never mutates state; ErrNotFound means no job has ever run for the trip.
func (m *Manager) GetStatus(tripID string) (Snapshot, error) {
	m.mu.Lock()
	j, ok := m.jobs[tripID]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshotLocked(), nil
}

// Subscribe returns an ordered stream of status snapshots for a trip,
// beginning with the current one. The channel closes when the run reaches
// a terminal status. The returned cancel func detaches the subscriber
// without affecting others or the job itself.
func (m *Manager) Subscribe(tripID string) (<-chan Snapshot, func(), error) {
	m.mu.Lock()
	j, ok := m.jobs[tripID]
	m.mu.Unlock()
	if !ok {
		return nil, nil, ErrNotFound
	}

	// Buffer covers every transition one run can produce plus the initial
	// snapshot, so an attentive subscriber never misses an update.
	ch := make(chan Snapshot, 16)

	j.mu.Lock()
	snap := j.snapshotLocked()
	ch <- snap
	if snap.Terminal() {
		close(ch)
		j.mu.Unlock()
		return ch, func() {}, nil
	}
	id := j.nextSubID
	j.nextSubID++
	j.subscribers[id] = ch
	j.mu.Unlock()

	cancel := func() {
		j.mu.Lock()
		if _, still := j.subscribers[id]; still {
			delete(j.subscribers, id)
			close(ch)
		}
		j.mu.Unlock()
	}
	return ch, cancel, nil
}

// janitor garbage-collects terminal jobs past the retention window.
func (m *Manager) janitor() {
	ticker := time.NewTicker(m.opts.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.opts.Retention)
			m.mu.Lock()
			for tripID, j := range m.jobs {
				j.mu.Lock()
				expired := j.status != StatusRunning && !j.finishedAt.IsZero() && j.finishedAt.Before(cutoff)
				j.mu.Unlock()
				if expired {
					delete(m.jobs, tripID)
				}
			}
			m.mu.Unlock()
		}
	}
}
