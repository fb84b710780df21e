package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

// Ensure ScopeResolver implements the interface.
var _ driving.ScopeService = (*ScopeResolver)(nil)

// ScopeResolver resolves navigation names against the catalog and
// translates a scope into a retrieval filter.
type ScopeResolver struct {
	catalog driving.CatalogService
}

// NewScopeResolver creates a resolver backed by catalog.
func NewScopeResolver(catalog driving.CatalogService) *ScopeResolver {
	return &ScopeResolver{catalog: catalog}
}

// ResolveCollection resolves a collection name case-insensitively.
func (r *ScopeResolver) ResolveCollection(ctx context.Context, candidate string) driving.Resolution {
	return resolve(r.catalog.ListCollections(ctx), candidate)
}

// ResolveSubcollection resolves a sub-collection name within collection.
// An empty collection resolves against every sub-collection.
func (r *ScopeResolver) ResolveSubcollection(ctx context.Context, collection, candidate string) driving.Resolution {
	return resolve(r.catalog.ListSubcollections(ctx, collection), candidate)
}

// ResolveUnit resolves a unit id within collection and subcollection.
func (r *ScopeResolver) ResolveUnit(ctx context.Context, collection, subcollection, candidate string) driving.Resolution {
	units := r.catalog.ListUnits(ctx, collection, subcollection)
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.UnitID
	}
	return resolve(ids, candidate)
}

// Filter translates scope into a retrieval filter.
// No active dimension yields nil, one yields that condition and more yield their conjunction.
// The tenant, when set, is always one of the conditions.
func (r *ScopeResolver) Filter(scope domain.Scope) domain.Filter {
	return ScopeFilter(scope)
}

// ScopeFilter builds the retrieval filter of scope without catalog access.
func ScopeFilter(scope domain.Scope) domain.Filter {
	var terms []domain.Filter
	if scope.Collection != "" {
		terms = append(terms, domain.Eq{Field: domain.FieldCollection, Value: scope.Collection})
	}
	if scope.Subcollection != "" {
		terms = append(terms, domain.Eq{Field: domain.FieldSubcollection, Value: scope.Subcollection})
	}
	if len(scope.Units) > 0 {
		units := make([]string, len(scope.Units))
		copy(units, scope.Units)
		terms = append(terms, domain.In{Field: domain.FieldUnit, Values: units})
	}
	if scope.Tenant != "" {
		terms = append(terms, domain.Eq{Field: domain.FieldTenant, Value: scope.Tenant})
	}

	switch len(terms) {
	case 0:
		return nil
	case 1:
		return terms[0]
	default:
		return domain.And{Terms: terms}
	}
}

func resolve(available []string, candidate string) driving.Resolution {
	candidate = strings.TrimSpace(candidate)
	for _, name := range available {
		if strings.EqualFold(name, candidate) {
			return driving.Resolution{Value: name, Matched: true}
		}
	}
	return driving.Resolution{Value: candidate}
}
