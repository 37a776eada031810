package store

import (
	"context"
	"sync"

	"github.com/jonathan/trip-guide/internal/types"
)

// Memory is the in-process implementation of GuideStore, TripStore, and
// RunRecorder. Values are copied on write and read so callers cannot mutate
// stored state.
type Memory struct {
	mu     sync.RWMutex
	guides map[string]types.Guide
	trips  map[string]types.TripFacts
	runs   map[string][]RunRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		guides: make(map[string]types.Guide),
		trips:  make(map[string]types.TripFacts),
		runs:   make(map[string][]RunRecord),
	}
}

// PutGuide stores g, replacing any existing guide for the trip.
func (m *Memory) PutGuide(_ context.Context, g *types.Guide) error {
	m.mu.Lock()
	m.guides[g.TripID] = *g
	m.mu.Unlock()
	return nil
}

// GetGuide returns the guide for tripID or ErrNotFound.
func (m *Memory) GetGuide(_ context.Context, tripID string) (*types.Guide, error) {
	m.mu.RLock()
	g, ok := m.guides[tripID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := g
	return &out, nil
}

// DeleteGuide removes the guide for tripID if present.
func (m *Memory) DeleteGuide(_ context.Context, tripID string) error {
	m.mu.Lock()
	delete(m.guides, tripID)
	m.mu.Unlock()
	return nil
}

// PutTrip stores facts, replacing any existing record for the trip.
func (m *Memory) PutTrip(_ context.Context, facts *types.TripFacts) error {
	m.mu.Lock()
	m.trips[facts.TripID] = *facts
	m.mu.Unlock()
	return nil
}

// GetTrip returns the facts for tripID or ErrNotFound.
func (m *Memory) GetTrip(_ context.Context, tripID string) (*types.TripFacts, error) {
	m.mu.RLock()
	f, ok := m.trips[tripID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := f
	return &out, nil
}

// DeleteTrip removes the facts for tripID if present.
func (m *Memory) DeleteTrip(_ context.Context, tripID string) error {
	m.mu.Lock()
	delete(m.trips, tripID)
	m.mu.Unlock()
	return nil
}

// RecordRun stores rec, replacing an earlier record with the same id.
func (m *Memory) RecordRun(_ context.Context, rec RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.runs[rec.TripID]
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec
			return nil
		}
	}
	m.runs[rec.TripID] = append(recs, rec)
	return nil
}

// ListRuns returns recent generation runs for a trip, newest first.
func (m *Memory) ListRuns(_ context.Context, tripID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.runs[tripID]
	out := make([]RunRecord, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, recs[i])
	}
	return out, nil
}
