// Package watchstore persists completed simulation run summaries to
// Postgres for the watch server's run history, using database/sql and
// lib/pq as the teacher's domain layer does for its own (file-based)
// persistence idiom of explicit struct-to-row mapping. Optional: the
// watch server runs without a DSN configured, simply skipping history
// persistence.
package watchstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// RunRecord is one persisted simulation run summary.
type RunRecord struct {
	ID          string
	PlanPath    string
	Mode        string
	Seed        int64
	SuccessRate decimal.Decimal
	RanAt       string // RFC3339
}

// Store wraps a Postgres connection pool for run-history persistence.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres at dsn and ensures the run_history table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_history (
			id text PRIMARY KEY,
			plan_path text NOT NULL,
			mode text NOT NULL,
			seed bigint NOT NULL,
			success_rate numeric NOT NULL,
			ran_at timestamptz NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate run_history: %w", err)
	}
	return nil
}

// Insert records a completed run.
func (s *Store) Insert(ctx context.Context, rec RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_history (id, plan_path, mode, seed, success_rate, ran_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.PlanPath, rec.Mode, rec.Seed, rec.SuccessRate.String(), rec.RanAt,
	)
	if err != nil {
		return fmt.Errorf("insert run_history: %w", err)
	}
	return nil
}

// Recent returns the most recent n run records, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plan_path, mode, seed, success_rate, ran_at FROM run_history ORDER BY ran_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("query run_history: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var rate string
		if err := rows.Scan(&rec.ID, &rec.PlanPath, &rec.Mode, &rec.Seed, &rate, &rec.RanAt); err != nil {
			return nil, fmt.Errorf("scan run_history row: %w", err)
		}
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("parse success_rate: %w", err)
		}
		rec.SuccessRate = parsed
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }
