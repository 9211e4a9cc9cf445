// Package store persists search runs behind a driver-agnostic interface
// with SQLite and Postgres implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  model.RunStatus `json:"status,omitempty"`
	Company string          `json:"company,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for search runs.
type Store interface {
	// CreateRun persists a new pending run for the request.
	CreateRun(ctx context.Context, req model.SearchRequest) (*model.Run, error)
	// UpdateRunStatus moves a run to the given status.
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	// SaveRun writes the run's full current state (status, contacts,
	// emails, activity log, error).
	SaveRun(ctx context.Context, run *model.Run) error
	// GetRun loads one run by ID. Returns ErrNotFound for unknown IDs.
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	// ListRuns returns runs matching the filter, newest first.
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Migrate creates or updates the schema.
	Migrate(ctx context.Context) error
	Close() error
}
