package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/trip-guide/internal/types"
)

// Postgres implements GuideStore, TripStore, and RunRecorder on a pgx
// connection pool. Guides and trip facts are stored as jsonb documents
// keyed by trip id; run history is append-only.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// PutGuide upserts the guide document for its trip id.
func (p *Postgres) PutGuide(ctx context.Context, g *types.Guide) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal guide: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO guides (trip_id, document)
		 VALUES ($1, $2)
		 ON CONFLICT (trip_id) DO UPDATE SET document = $2, updated_at = NOW()`,
		g.TripID, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save guide: %w", err)
	}
	return nil
}

// GetGuide loads the guide document for tripID.
func (p *Postgres) GetGuide(ctx context.Context, tripID string) (*types.Guide, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx,
		`SELECT document FROM guides WHERE trip_id = $1`, tripID,
	).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get guide: %w", err)
	}

	var g types.Guide
	if err := json.Unmarshal(doc, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guide: %w", err)
	}
	return &g, nil
}

// DeleteGuide removes the guide for tripID.
func (p *Postgres) DeleteGuide(ctx context.Context, tripID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM guides WHERE trip_id = $1`, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete guide: %w", err)
	}
	return nil
}

// PutTrip upserts the trip facts document.
func (p *Postgres) PutTrip(ctx context.Context, facts *types.TripFacts) error {
	doc, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("failed to marshal trip facts: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO trips (trip_id, document)
		 VALUES ($1, $2)
		 ON CONFLICT (trip_id) DO UPDATE SET document = $2, updated_at = NOW()`,
		facts.TripID, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}
	return nil
}

// GetTrip loads the trip facts for tripID.
func (p *Postgres) GetTrip(ctx context.Context, tripID string) (*types.TripFacts, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx,
		`SELECT document FROM trips WHERE trip_id = $1`, tripID,
	).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	var f types.TripFacts
	if err := json.Unmarshal(doc, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trip facts: %w", err)
	}
	return &f, nil
}

// DeleteTrip removes the trip facts (and, via cascade, the guide).
func (p *Postgres) DeleteTrip(ctx context.Context, tripID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM trips WHERE trip_id = $1`, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return nil
}

// RecordRun appends one generation run record.
func (p *Postgres) RecordRun(ctx context.Context, rec RunRecord) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO generation_runs (id, trip_id, run, status, provider, error, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET status = $4, provider = $5, error = $6, finished_at = $8`,
		rec.ID, rec.TripID, rec.Run, rec.Status, rec.Provider, rec.Error, rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// ListRuns returns recent generation runs for a trip, newest first.
func (p *Postgres) ListRuns(ctx context.Context, tripID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, trip_id, run, status, provider, error, started_at, finished_at
		 FROM generation_runs WHERE trip_id = $1
		 ORDER BY started_at DESC LIMIT $2`,
		tripID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.TripID, &rec.Run, &rec.Status, &rec.Provider,
			&rec.Error, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
