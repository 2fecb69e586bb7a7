// Package postgres provides a PostgreSQL-backed durable sink for the
// interaction log. The in-process ring in package history remains the source
// of truth for statistics; this store is an audit trail that survives
// restarts and allows offline analysis of command usage.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arvindram27/memex-agent/internal/command"
	"github.com/arvindram27/memex-agent/internal/history"
)

// Compile-time interface check.
var _ history.Sink = (*Store)(nil)

// schema creates the interactions table on first connect. Idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS interactions (
	id           BIGSERIAL PRIMARY KEY,
	recorded_at  TIMESTAMPTZ NOT NULL,
	url          TEXT NOT NULL,
	intent       TEXT NOT NULL,
	success      BOOLEAN NOT NULL,
	context      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS interactions_recorded_at_idx ON interactions (recorded_at);
CREATE INDEX IF NOT EXISTS interactions_intent_idx ON interactions (intent);
`

// Store is a pgx-pool-backed [history.Sink]. All operations are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// New establishes a connection pool to the PostgreSQL database at dsn and
// ensures the interactions table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("history postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history postgres: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping probes database connectivity. Used by the readiness endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Write persists one interaction entry.
func (s *Store) Write(ctx context.Context, entry history.Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interactions (recorded_at, url, intent, success, context)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.Timestamp, entry.URL, string(entry.Intent), entry.Success, entry.Context,
	)
	if err != nil {
		return fmt.Errorf("history postgres: insert: %w", err)
	}
	return nil
}

// RecentEntries returns up to limit persisted entries, most recent first.
func (s *Store) RecentEntries(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT recorded_at, url, intent, success, context
		FROM interactions
		ORDER BY recorded_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("history postgres: query recent: %w", err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (history.Entry, error) {
		var e history.Entry
		var intent string
		err := row.Scan(&e.Timestamp, &e.URL, &intent, &e.Success, &e.Context)
		e.Intent = command.Intent(intent)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("history postgres: collect rows: %w", err)
	}
	return entries, nil
}

// IntentTotals returns persisted per-intent frequency counts, descending.
func (s *Store) IntentTotals(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT intent, COUNT(*) FROM interactions GROUP BY intent`)
	if err != nil {
		return nil, fmt.Errorf("history postgres: query intent totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var intent string
		var count int
		if err := rows.Scan(&intent, &count); err != nil {
			return nil, fmt.Errorf("history postgres: scan intent totals: %w", err)
		}
		totals[intent] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history postgres: intent totals rows: %w", err)
	}
	return totals, nil
}
