// Package db stores built character records in PostgreSQL.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS unihan_runs (
	id              UUID PRIMARY KEY,
	source          TEXT NOT NULL,
	format          TEXT NOT NULL,
	expanded        BOOLEAN NOT NULL,
	fields          TEXT[] NOT NULL,
	status          TEXT NOT NULL DEFAULT 'running',
	record_count    INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS unihan_characters (
	run_id      UUID NOT NULL REFERENCES unihan_runs(id) ON DELETE CASCADE,
	codepoint   TEXT NOT NULL,
	char        TEXT NOT NULL,
	record      JSONB NOT NULL,
	PRIMARY KEY (run_id, codepoint)
);

CREATE INDEX IF NOT EXISTS unihan_characters_codepoint_idx ON unihan_characters (codepoint);
`

// EnsureSchema creates the tables used by the store if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
