// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService turns text into vectors. Ingestion and retrieval must use
// the same model, otherwise query vectors are compared across spaces.
type EmbeddingService interface {
	// Embed embeds a single query or passage.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length; the postgres index sizes its column from it.
	Dimensions() int

	ModelName() string

	Ping(ctx context.Context) error
	Close() error
}
