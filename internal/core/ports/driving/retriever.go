package driving

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// RetrieverService runs scoped similarity search and formats cited passages.
type RetrieverService interface {
	// Retrieve never returns an error: failures are reported through the result status.
	Retrieve(ctx context.Context, query string, scope domain.Scope) domain.RetrievalResult
}
