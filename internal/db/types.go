package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run represents one build stored in the database
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Source      string     `json:"source"`
	Format      string     `json:"format"`
	Expanded    bool       `json:"expanded"`
	Fields      []string   `json:"fields"`
	Status      string     `json:"status"`
	RecordCount int        `json:"record_count"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunInput describes a build when it starts
type RunInput struct {
	Source   string
	Format   string
	Expanded bool
	Fields   []string
}

// Character is a stored record. Record holds the exported JSON object.
type Character struct {
	RunID     uuid.UUID       `json:"run_id"`
	Codepoint string          `json:"codepoint"`
	Char      string          `json:"char"`
	Record    json.RawMessage `json:"record"`
}
