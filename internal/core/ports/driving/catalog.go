package driving

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// CatalogService answers navigation queries over ingested content.
// Results are advisory: index failures degrade to empty results.
type CatalogService interface {
	// ListCollections returns the distinct collection names, sorted.
	ListCollections(ctx context.Context) []string

	// ListSubcollections returns the distinct sub-collection names, sorted.
	// An empty collection lists every sub-collection. Matching is case-insensitive.
	ListSubcollections(ctx context.Context, collection string) []string

	// ListUnits returns unit descriptors deduplicated by unit id.
	// Each filter is optional and case-insensitive.
	ListUnits(ctx context.Context, collection, subcollection string) []domain.UnitDescriptor

	// DescribeScope renders the scope for prompts and status lines.
	DescribeScope(scope domain.Scope) string

	// Invalidate drops the cached metadata snapshot.
	Invalidate()
}

// Resolution is the outcome of resolving a free-form name against the catalog.
type Resolution struct {
	// Value is the canonical stored value, or the candidate unchanged when unmatched.
	Value string

	// Matched reports whether the catalog contained the candidate.
	Matched bool
}

// ScopeService resolves navigation names and builds retrieval filters.
type ScopeService interface {
	// ResolveCollection resolves a collection name case-insensitively.
	ResolveCollection(ctx context.Context, candidate string) Resolution

	// ResolveSubcollection resolves a sub-collection name within collection.
	ResolveSubcollection(ctx context.Context, collection, candidate string) Resolution

	// ResolveUnit resolves a unit id within the current collection and sub-collection.
	ResolveUnit(ctx context.Context, collection, subcollection, candidate string) Resolution

	// Filter translates scope into a retrieval filter. An empty scope without a tenant yields nil.
	Filter(scope domain.Scope) domain.Filter
}
