package driven

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// ContentSource enumerates the three-level content hierarchy and reads documents.
// Local filesystem, object storage and repository bindings are interchangeable.
//
// Source paths are relative to the content root and always use forward slashes.
type ContentSource interface {
	// Name identifies the binding for logs (e.g., "local:/data/raw_data").
	Name() string

	// ListCollections returns the top-level collection names.
	// Returns domain.ErrNotFound when the content root does not exist.
	ListCollections(ctx context.Context) ([]string, error)

	// ListSubcollections returns the sub-collections of collection.
	ListSubcollections(ctx context.Context, collection string) ([]string, error)

	// ListUnits returns every document inside the unit directories of a sub-collection.
	ListUnits(ctx context.Context, collection, subcollection string) ([]domain.SourceItem, error)

	// Read returns the raw bytes of a document.
	Read(ctx context.Context, sourcePath string) ([]byte, error)

	// Stat reports existence and size of a document.
	Stat(ctx context.Context, sourcePath string) (domain.SourceInfo, error)
}
