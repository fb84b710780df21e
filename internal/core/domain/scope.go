package domain

// Scope is the per-conversation navigation restriction applied to retrieval.
// It is never persisted.
type Scope struct {
	// Collection is the active collection, empty when unset.
	Collection string

	// Subcollection is the active sub-collection, meaningful only within Collection.
	Subcollection string

	// Units is the active unit id set.
	Units []string

	// Tenant is supplied by the session boundary and survives Clear.
	Tenant string
}

// IsEmpty reports whether no navigation dimension is active.
// The tenant is not a navigation dimension.
func (s Scope) IsEmpty() bool {
	return s.Collection == "" && s.Subcollection == "" && len(s.Units) == 0
}

// WithCollection returns a copy scoped to collection.
// Changing collection drops the sub-collection and unit selection.
func (s Scope) WithCollection(collection string) Scope {
	if collection != s.Collection {
		s.Subcollection = ""
		s.Units = nil
	}
	s.Collection = collection
	return s
}

// WithSubcollection returns a copy scoped to subcollection.
func (s Scope) WithSubcollection(subcollection string) Scope {
	s.Subcollection = subcollection
	return s
}

// WithUnit returns a copy with unit added to the active set.
func (s Scope) WithUnit(unit string) Scope {
	for _, u := range s.Units {
		if u == unit {
			return s
		}
	}
	units := make([]string, len(s.Units), len(s.Units)+1)
	copy(units, s.Units)
	s.Units = append(units, unit)
	return s
}

// Cleared returns an empty scope that keeps the tenant.
func (s Scope) Cleared() Scope {
	return Scope{Tenant: s.Tenant}
}
