// Package database bootstraps the Postgres connection pool and the
// document schema.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the two document tables. Round documents live in a jsonb
// column so partial game state always commits as one atomic row swap.
const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id              UUID PRIMARY KEY,
	host_id         TEXT NOT NULL,
	game_type       TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'waiting',
	current_numbers INTEGER[] NOT NULL DEFAULT '{}',
	revision        BIGINT NOT NULL DEFAULT 1,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS xidach_games (
	id         UUID PRIMARY KEY REFERENCES rooms(id) ON DELETE CASCADE,
	doc        JSONB NOT NULL,
	revision   BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Connect opens a pgx pool against url and verifies connectivity.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("database: parse config: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the document tables when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("database: ensure schema: %w", err)
	}
	return nil
}
