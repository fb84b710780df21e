package driven

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// Normaliser extracts page text from a raw document.
// Each normaliser handles specific file extensions (e.g., ".pdf", ".md").
type Normaliser interface {
	// SupportedExtensions returns the lower-case extensions this normaliser handles, with the dot.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts the pages of a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled separately by the chunker.
type NormaliseResult struct {
	// Pages holds the extracted text, one entry per page.
	// Formats without pages produce a single entry with Number 0.
	Pages []domain.Page
}
