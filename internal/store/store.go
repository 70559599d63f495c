// Package store persists analysis runs and their per-bracket snapshots.
package store

import (
	"context"

	"github.com/riftlab/riftrank/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for analysis runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, source string, tierCount int) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Snapshots
	SaveSnapshot(ctx context.Context, runID string, bracket model.Bracket, champions []model.RatedChampion) (*model.Snapshot, error)
	ListSnapshots(ctx context.Context, runID string) ([]model.Snapshot, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
