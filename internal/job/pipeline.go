package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/trip-guide/internal/guide"
	"github.com/jonathan/trip-guide/internal/store"
	"github.com/jonathan/trip-guide/internal/types"
)

// Stage names in fixed pipeline order. Each stage advances progress by an
// equal share of 100%.
var stageNames = [...]string{
	"Applying preferences",
	"Finding restaurants",
	"Finding attractions",
	"Finding events",
	"Checking the weather",
	"Assembling your itinerary",
	"Saving your guide",
}

// stageCount includes finalization; progress reaches exactly 100 there.
const stageCount = len(stageNames)

// advance moves the job to stage idx. It returns false when the run token
// is stale, which tells the pipeline goroutine to abandon silently: a
// newer run owns the record now, and its snapshots must never be regressed
// by a superseded writer.
func (m *Manager) advance(j *job, token uint64, idx int) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.run != token {
		return false
	}
	j.stage = idx
	j.message = stageNames[idx]
	if p := idx * 100 / stageCount; p > j.progress {
		j.progress = p
	}
	j.publishLocked()
	return true
}

// warn records a degraded-content warning on the run.
func (m *Manager) warn(j *job, token uint64, warning string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.run != token {
		return
	}
	j.warnings = append(j.warnings, warning)
}

// complete marks the run completed with progress pinned to 100.
func (m *Manager) complete(j *job, token uint64, provider string) {
	j.mu.Lock()
	if j.run != token {
		j.mu.Unlock()
		return
	}
	j.status = StatusCompleted
	j.stage = stageCount - 1
	j.progress = 100
	j.message = "Your guide is ready"
	j.finishedAt = time.Now().UTC()
	rec := store.RunRecord{
		ID: j.runID, TripID: j.tripID, Run: j.run,
		Status: string(StatusCompleted), Provider: provider,
		StartedAt: j.startedAt, FinishedAt: &j.finishedAt,
	}
	j.publishLocked()
	j.mu.Unlock()

	if err := m.deps.Recorder.RecordRun(context.Background(), rec); err != nil {
		log.Printf("[job] failed to record run completion for %s: %v", rec.TripID, err)
	}
}

// fail marks the run failed with a human-readable reason. Raw provider
// errors are logged, never surfaced to clients.
func (m *Manager) fail(j *job, token uint64, reason string, cause error) {
	log.Printf("[job] run failed for %s: %s: %v", j.tripID, reason, cause)

	j.mu.Lock()
	if j.run != token {
		j.mu.Unlock()
		return
	}
	j.status = StatusError
	j.lastError = reason
	j.message = reason
	j.finishedAt = time.Now().UTC()
	rec := store.RunRecord{
		ID: j.runID, TripID: j.tripID, Run: j.run,
		Status: string(StatusError), Error: reason,
		StartedAt: j.startedAt, FinishedAt: &j.finishedAt,
	}
	j.publishLocked()
	j.mu.Unlock()

	if err := m.deps.Recorder.RecordRun(context.Background(), rec); err != nil {
		log.Printf("[job] failed to record run failure for %s: %v", rec.TripID, err)
	}
}

// runPipeline executes the staged pipeline for one run. It runs detached
// from the request context: the run belongs to the trip, not the caller.
func (m *Manager) runPipeline(token uint64, j *job, facts *types.TripFacts, prefs types.CanonicalPreferences) {
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.PipelineTimeout)
	defer cancel()

	// Stage 0: preference application. Content generation starts here so
	// the narrative reflects the canonical preferences.
	if !m.advance(j, token, 0) {
		return
	}
	genCtx, genCancel := context.WithTimeout(ctx, m.opts.StageTimeout)
	generated, err := m.deps.Generator.Generate(genCtx, facts, prefs)
	genCancel()
	if err != nil || generated == nil || generated.Text == nil {
		// The chain ends in the template generator, so this only happens
		// on pipeline teardown. Degrade rather than fail.
		m.warn(j, token, "content generation unavailable; guide uses templated text only")
		generated = &GeneratedText{Provider: "none"}
	}

	// Stages 1-3: category enrichment. Failures degrade to an empty
	// collection with a recorded warning; they never fail the run.
	items := make(map[types.Category][]types.EnrichedItem, len(types.AllCategories))
	for i, category := range types.AllCategories {
		if !m.advance(j, token, 1+i) {
			return
		}
		stageCtx, stageCancel := context.WithTimeout(ctx, m.opts.StageTimeout)
		found, err := m.deps.Enricher.Enrich(stageCtx, category, facts.Destination, prefs)
		stageCancel()
		if err != nil {
			log.Printf("[job] %s enrichment failed for %s: %v", category, j.tripID, err)
			m.warn(j, token, fmt.Sprintf("no %s recommendations available", category))
			found = nil
		}
		items[category] = found
	}

	// Stage 4: weather. Same degraded semantics as enrichment.
	if !m.advance(j, token, 4) {
		return
	}
	weatherCtx, weatherCancel := context.WithTimeout(ctx, m.opts.StageTimeout)
	weather, err := m.deps.Enricher.Weather(weatherCtx, facts.Destination, facts.Days())
	weatherCancel()
	if err != nil {
		log.Printf("[job] weather lookup failed for %s: %v", j.tripID, err)
		m.warn(j, token, "weather forecast unavailable")
		weather = nil
	}

	// Stage 5: itinerary assembly. This is the first fatal stage: a guide
	// with no content at all is an error, not a degraded artifact.
	if !m.advance(j, token, 5) {
		return
	}
	j.mu.Lock()
	warnings := append([]string(nil), j.warnings...)
	j.mu.Unlock()
	built, err := guide.Build(guide.Input{
		Facts:    facts,
		Prefs:    prefs,
		Text:     generated.Text,
		Provider: generated.Provider,
		Items:    items,
		Weather:  weather,
		Warnings: warnings,
	})
	if err != nil {
		m.fail(j, token, "could not assemble an itinerary for this trip", err)
		return
	}

	// Stage 6: finalization. Persist, then report completed. A stale
	// token here means a newer run owns the guide slot; discard.
	if !m.advance(j, token, 6) {
		return
	}
	if err := m.deps.Guides.PutGuide(ctx, built); err != nil {
		m.fail(j, token, "could not save the generated guide", err)
		return
	}
	m.complete(j, token, generated.Provider)
}
