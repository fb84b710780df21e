package driven

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// VectorIndex stores embedded chunks with their unit metadata and answers
// similarity queries restricted by a domain.Filter.
//
// Implementations must make Upsert atomic from a reader's point of view:
// a reader never observes some chunks of a batch without the rest.
type VectorIndex interface {
	// Upsert writes a batch of embedded chunks in one transaction.
	// Existing chunks of every source path present in the batch are replaced.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Query returns at most k hits nearest to vector, ranked by descending score.
	// A nil filter searches everything.
	Query(ctx context.Context, vector []float32, k int, filter domain.Filter) ([]domain.RetrievalHit, error)

	// Scan returns the metadata of every indexed unit matching filter, one entry per source path.
	Scan(ctx context.Context, filter domain.Filter) ([]domain.Unit, error)

	// SourcePaths returns the set of indexed source paths matching filter.
	// A positive limit bounds the read.
	SourcePaths(ctx context.Context, filter domain.Filter, limit int) (map[string]struct{}, error)

	// Close releases resources.
	Close() error
}
