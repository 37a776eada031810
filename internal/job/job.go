// Package job owns generation runs: at most one active run per trip id, a
// staged pipeline with progress reporting, supersede-and-discard semantics
// for stale runs, and fan-out of status transitions to subscribers.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a trip's generation job.
type Status string

// Job statuses. Completed and Error are terminal for a run but accept a
// fresh start, which replaces all prior progress and artifact state.
const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// ErrNotFound is returned when no generation job has ever run for a trip.
var ErrNotFound = errors.New("no generation job for trip")

// Snapshot is a point-in-time view of a job, safe to hand to callers.
type Snapshot struct {
	TripID     string    `json:"trip_id"`
	Status     Status    `json:"status"`
	Stage      int       `json:"stage"`
	Progress   int       `json:"progress_percent"`
	Message    string    `json:"message"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Terminal reports whether the snapshot's status ends a run.
func (s Snapshot) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusError
}

// job is the per-trip record. It has exactly one writer at a time (the
// active run's goroutine, gated by the run counter) and many readers.
type job struct {
	mu sync.Mutex

	tripID string
	// run distinguishes successive generation attempts. A stage result
	// whose token no longer matches run belongs to a superseded attempt
	// and is discarded at the stage boundary.
	run   uint64
	runID uuid.UUID

	status     Status
	stage      int
	progress   int
	message    string
	lastError  string
	warnings   []string
	startedAt  time.Time
	finishedAt time.Time

	subscribers map[int]chan Snapshot
	nextSubID   int
}

// snapshotLocked builds a Snapshot; callers hold j.mu.
func (j *job) snapshotLocked() Snapshot {
	return Snapshot{
		TripID:     j.tripID,
		Status:     j.status,
		Stage:      j.stage,
		Progress:   j.progress,
		Message:    j.message,
		Error:      j.lastError,
		StartedAt:  j.startedAt,
		FinishedAt: j.finishedAt,
	}
}

// publishLocked fans the current snapshot out to subscribers and, on a
// terminal status, closes and forgets them. Sends never block: a stalled
// subscriber loses intermediate updates, not the terminal one, because the
// channel buffer exceeds the number of transitions a run can produce.
func (j *job) publishLocked() {
	snap := j.snapshotLocked()
	for id, ch := range j.subscribers {
		select {
		case ch <- snap:
		default:
		}
		if snap.Terminal() {
			close(ch)
			delete(j.subscribers, id)
		}
	}
}
