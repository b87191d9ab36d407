package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/unihan-tabular/internal/types"
)

var characterColumns = []string{"run_id", "codepoint", "char", "record"}

// SaveCharacters bulk-loads records into the run with COPY and returns the
// number of rows written.
func (db *DB) SaveCharacters(ctx context.Context, runID uuid.UUID, records []types.Record) (int64, error) {
	rows, err := characterRows(runID, records)
	if err != nil {
		return 0, err
	}
	n, err := db.pool.CopyFrom(ctx, pgx.Identifier{"unihan_characters"}, characterColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("failed to copy characters: %w", err)
	}
	return n, nil
}

func characterRows(runID uuid.UUID, records []types.Record) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		jsonBytes, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", rec.Codepoint, err)
		}
		rows = append(rows, []any{runID, rec.Codepoint, rec.Char, jsonBytes})
	}
	return rows, nil
}

// GetCharacter retrieves one stored record. With uuid.Nil it looks in the
// most recent completed run. Returns nil if the character is not stored.
func (db *DB) GetCharacter(ctx context.Context, runID uuid.UUID, codepoint string) (*Character, error) {
	var row pgx.Row
	if runID == uuid.Nil {
		row = db.pool.QueryRow(ctx,
			`SELECT c.run_id, c.codepoint, c.char, c.record
			 FROM unihan_characters c JOIN unihan_runs r ON r.id = c.run_id
			 WHERE c.codepoint = $1 AND r.status = $2
			 ORDER BY r.created_at DESC LIMIT 1`,
			codepoint, RunStatusCompleted,
		)
	} else {
		row = db.pool.QueryRow(ctx,
			`SELECT run_id, codepoint, char, record FROM unihan_characters
			 WHERE run_id = $1 AND codepoint = $2`,
			runID, codepoint,
		)
	}

	var c Character
	var record []byte
	if err := row.Scan(&c.RunID, &c.Codepoint, &c.Char, &record); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get character %s: %w", codepoint, err)
	}
	c.Record = record
	return &c, nil
}

// CountCharacters returns the number of records stored for a run
func (db *DB) CountCharacters(ctx context.Context, runID uuid.UUID) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM unihan_characters WHERE run_id = $1`, runID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count characters: %w", err)
	}
	return n, nil
}
