// Package store persists trips, guides, and generation run history.
// The service treats both stores as key-value by trip id; backends are an
// in-memory map (default, tests) and PostgreSQL.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/trip-guide/internal/types"
)

// ErrNotFound is returned when no record exists for the given trip id.
var ErrNotFound = errors.New("not found")

// GuideStore persists the final guide artifact, one per trip id.
// Put replaces any prior guide wholesale.
type GuideStore interface {
	PutGuide(ctx context.Context, g *types.Guide) error
	GetGuide(ctx context.Context, tripID string) (*types.Guide, error)
	DeleteGuide(ctx context.Context, tripID string) error
}

// TripStore persists trip facts by trip id.
type TripStore interface {
	PutTrip(ctx context.Context, facts *types.TripFacts) error
	GetTrip(ctx context.Context, tripID string) (*types.TripFacts, error)
	DeleteTrip(ctx context.Context, tripID string) error
}

// RunRecord is one generation attempt, kept for history and debugging.
type RunRecord struct {
	ID         uuid.UUID  `json:"id"`
	TripID     string     `json:"trip_id"`
	Run        uint64     `json:"run"`
	Status     string     `json:"status"`
	Provider   string     `json:"provider,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunRecorder appends generation run records. Recording is best-effort;
// implementations must not make the pipeline fail.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

// RunLister reads back recorded generation runs, newest first.
type RunLister interface {
	ListRuns(ctx context.Context, tripID string, limit int) ([]RunRecord, error)
}

// NoopRecorder discards run records; used when no database is configured.
type NoopRecorder struct{}

// RecordRun implements RunRecorder.
func (NoopRecorder) RecordRun(context.Context, RunRecord) error { return nil }
