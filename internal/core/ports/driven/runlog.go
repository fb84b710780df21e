package driven

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// RunLogStore persists ingestion run summaries.
type RunLogStore interface {
	// Save appends a run record.
	Save(ctx context.Context, run domain.IngestionRun) error

	// Latest returns the most recent run.
	// Returns domain.ErrNotFound when no run has been recorded.
	Latest(ctx context.Context) (*domain.IngestionRun, error)

	// List returns at most limit runs, newest first. A non-positive limit returns all.
	List(ctx context.Context, limit int) ([]domain.IngestionRun, error)
}
