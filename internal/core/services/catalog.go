package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Ensure Catalog implements the interface.
var _ driving.CatalogService = (*Catalog)(nil)

// NoScopeDescription is returned by DescribeScope for an empty scope.
const NoScopeDescription = "All materials (no active scope)"

// Catalog derives the navigable hierarchy from indexed unit metadata.
// The metadata snapshot is read from the index once and cached until Invalidate.
type Catalog struct {
	index  driven.VectorIndex
	tenant string

	mu     sync.RWMutex
	units  []domain.Unit
	loaded bool
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithTenant restricts the catalog to units owned by tenant.
func WithTenant(tenant string) CatalogOption {
	return func(c *Catalog) {
		c.tenant = tenant
	}
}

// NewCatalog creates a catalog over index.
func NewCatalog(index driven.VectorIndex, opts ...CatalogOption) *Catalog {
	c := &Catalog{index: index}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListCollections returns the distinct collection names, sorted.
func (c *Catalog) ListCollections(ctx context.Context) []string {
	seen := make(map[string]struct{})
	for _, u := range c.snapshot(ctx) {
		seen[u.Collection] = struct{}{}
	}
	return sortedKeys(seen)
}

// ListSubcollections returns the distinct sub-collection names, sorted.
func (c *Catalog) ListSubcollections(ctx context.Context, collection string) []string {
	seen := make(map[string]struct{})
	for _, u := range c.snapshot(ctx) {
		if collection != "" && !strings.EqualFold(u.Collection, collection) {
			continue
		}
		seen[u.Subcollection] = struct{}{}
	}
	return sortedKeys(seen)
}

// ListUnits returns unit descriptors deduplicated by unit id, sorted by unit id.
func (c *Catalog) ListUnits(ctx context.Context, collection, subcollection string) []domain.UnitDescriptor {
	byID := make(map[string]domain.UnitDescriptor)
	for _, u := range c.snapshot(ctx) {
		if collection != "" && !strings.EqualFold(u.Collection, collection) {
			continue
		}
		if subcollection != "" && !strings.EqualFold(u.Subcollection, subcollection) {
			continue
		}
		if _, ok := byID[u.UnitID]; ok {
			continue
		}
		byID[u.UnitID] = domain.UnitDescriptor{
			UnitID:        u.UnitID,
			Title:         u.Title,
			Collection:    u.Collection,
			Subcollection: u.Subcollection,
		}
	}

	units := make([]domain.UnitDescriptor, 0, len(byID))
	for _, d := range byID {
		units = append(units, d)
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].UnitID < units[j].UnitID
	})
	return units
}

// DescribeScope renders the scope, e.g. "Collection: Y3S2 | Sub-collection: Finance".
func (c *Catalog) DescribeScope(scope domain.Scope) string {
	var parts []string
	if scope.Collection != "" {
		parts = append(parts, "Collection: "+scope.Collection)
	}
	if scope.Subcollection != "" {
		parts = append(parts, "Sub-collection: "+scope.Subcollection)
	}
	switch len(scope.Units) {
	case 0:
	case 1:
		parts = append(parts, "Unit: "+scope.Units[0])
	default:
		parts = append(parts, "Units: "+strings.Join(scope.Units, ", "))
	}

	if len(parts) == 0 {
		return NoScopeDescription
	}
	return strings.Join(parts, " | ")
}

// Invalidate drops the cached snapshot. The next listing rescans the index.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.units = nil
	c.loaded = false
}

// snapshot returns the cached unit metadata, loading it on first use.
// A failed load is not cached.
func (c *Catalog) snapshot(ctx context.Context) []domain.Unit {
	c.mu.RLock()
	if c.loaded {
		units := c.units
		c.mu.RUnlock()
		return units
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.units
	}
	if c.index == nil {
		logger.Warn("catalog: %v", domain.ErrIndexUnavailable)
		return nil
	}

	var filter domain.Filter
	if c.tenant != "" {
		filter = domain.Eq{Field: domain.FieldTenant, Value: c.tenant}
	}
	units, err := c.index.Scan(ctx, filter)
	if err != nil {
		logger.Warn("catalog: scan index: %v", err)
		return nil
	}

	logger.Debug("catalog: loaded %d units", len(units))
	c.units = units
	c.loaded = true
	return units
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
