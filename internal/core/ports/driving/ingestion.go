package driving

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// IngestionService populates the vector index from the content source.
type IngestionService interface {
	// Run executes one scan, diff, process, commit and log cycle.
	// Returns domain.ErrIngestionInProgress when another run is active.
	Run(ctx context.Context, opts IngestOptions) (*domain.IngestionRun, error)

	// Runs returns at most limit past runs, newest first.
	Runs(ctx context.Context, limit int) ([]domain.IngestionRun, error)
}

// IngestOptions configures one ingestion run.
type IngestOptions struct {
	// Force re-ingests candidates that are already indexed.
	Force bool

	// Refresh re-ingests just these source paths even when indexed; every
	// other candidate follows the normal skip rule.
	Refresh []string

	// Progress, when set, is called once per candidate.
	// It may be called from multiple goroutines.
	Progress func(IngestProgress)
}

// IngestStatus is the outcome of one candidate.
type IngestStatus string

// Candidate outcomes.
const (
	IngestStatusProcessed IngestStatus = "processed"
	IngestStatusSkipped   IngestStatus = "skipped"
	IngestStatusFailed    IngestStatus = "failed"
)

// IngestProgress reports the outcome of one candidate.
type IngestProgress struct {
	Unit   domain.Unit
	Status IngestStatus
	Chunks int
	Err    error
}
