package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrRunNotFound is wrapped by errors for runs that do not exist
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, source, format, expanded, fields, status, record_count, created_at, completed_at`

// CreateRun records the start of a build under runID
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, input RunInput) error {
	fields := input.Fields
	if fields == nil {
		fields = []string{}
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO unihan_runs (id, source, format, expanded, fields, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		runID, input.Source, input.Format, input.Expanded, fields, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a build as finished with status and its record count
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, recordCount int) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE unihan_runs SET status = $1, record_count = $2, completed_at = NOW() WHERE id = $3`,
		status, recordCount, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// GetRun retrieves a run by ID, or nil if there is none
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM unihan_runs WHERE id = $1`, runID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM unihan_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteRun deletes a run and its characters (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM unihan_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.Source, &run.Format, &run.Expanded, &run.Fields,
		&run.Status, &run.RecordCount, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
