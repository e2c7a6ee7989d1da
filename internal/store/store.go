// Package store persists analysis runs, knowledge-base documents and field
// parcels behind driver-selectable SQLite and Postgres backends.
package store

import (
	"context"

	"github.com/agrisight/agrisight/internal/model"
)

// RunFilter specifies criteria for listing analysis runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the advisory pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, farmSizeHa float64) (*model.AnalysisRun, error)
	CompleteRun(ctx context.Context, run *model.AnalysisRun) error
	FailRun(ctx context.Context, runID string) error
	GetRun(ctx context.Context, runID string) (*model.AnalysisRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.AnalysisRun, error)

	// Knowledge-base documents
	SaveDocument(ctx context.Context, filename, content string) (*model.Document, error)
	ListDocuments(ctx context.Context) ([]model.Document, error)

	// Parcels
	SaveParcels(ctx context.Context, parcels []model.Parcel) error
	ListParcels(ctx context.Context) ([]model.Parcel, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
