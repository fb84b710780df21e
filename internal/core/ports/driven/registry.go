package driven

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers keyed by extension.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	// Returns domain.ErrUnsupportedType when no normaliser handles the extension.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// Supports reports whether any normaliser handles ext.
	Supports(ext string) bool

	// SupportedExtensions returns all extensions that can be normalised.
	SupportedExtensions() []string
}
