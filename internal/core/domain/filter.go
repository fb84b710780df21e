package domain

import (
	"fmt"
	"strings"
)

// Field is one of the four metadata dimensions a filter may reference.
type Field string

// Filterable fields.
const (
	FieldCollection    Field = "collection"
	FieldSubcollection Field = "subcollection"
	FieldUnit          Field = "unit_id"
	FieldTenant        Field = "tenant"
)

// IsValid returns true if the field is part of the filter schema.
func (f Field) IsValid() bool {
	switch f {
	case FieldCollection, FieldSubcollection, FieldUnit, FieldTenant:
		return true
	default:
		return false
	}
}

// Filter is a closed predicate over unit metadata.
// The only implementations are Eq, In and And. A nil Filter matches everything.
type Filter interface {
	// Match evaluates the predicate against unit metadata.
	Match(u Unit) bool

	// Validate checks the predicate against the fixed field schema.
	Validate() error

	// String renders the predicate for logs.
	String() string

	sealed()
}

// Eq matches items whose field equals Value exactly.
type Eq struct {
	Field Field
	Value string
}

// In matches items whose field is one of Values.
type In struct {
	Field  Field
	Values []string
}

// And matches items that satisfy every term.
type And struct {
	Terms []Filter
}

func (Eq) sealed()  {}
func (In) sealed()  {}
func (And) sealed() {}

// Match implements Filter.
func (e Eq) Match(u Unit) bool {
	return u.Field(e.Field) == e.Value
}

// Validate implements Filter.
func (e Eq) Validate() error {
	if !e.Field.IsValid() {
		return fmt.Errorf("%w: unknown filter field %q", ErrInvalidInput, e.Field)
	}
	return nil
}

func (e Eq) String() string {
	return fmt.Sprintf("%s = %q", e.Field, e.Value)
}

// Match implements Filter.
func (in In) Match(u Unit) bool {
	v := u.Field(in.Field)
	for _, candidate := range in.Values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Validate implements Filter.
func (in In) Validate() error {
	if !in.Field.IsValid() {
		return fmt.Errorf("%w: unknown filter field %q", ErrInvalidInput, in.Field)
	}
	if len(in.Values) == 0 {
		return fmt.Errorf("%w: empty set for %s", ErrInvalidInput, in.Field)
	}
	return nil
}

func (in In) String() string {
	quoted := make([]string, len(in.Values))
	for i, v := range in.Values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("%s in [%s]", in.Field, strings.Join(quoted, ", "))
}

// Match implements Filter.
func (a And) Match(u Unit) bool {
	for _, t := range a.Terms {
		if !t.Match(u) {
			return false
		}
	}
	return true
}

// Validate implements Filter.
func (a And) Validate() error {
	if len(a.Terms) == 0 {
		return fmt.Errorf("%w: empty conjunction", ErrInvalidInput)
	}
	for _, t := range a.Terms {
		if t == nil {
			return fmt.Errorf("%w: nil conjunction term", ErrInvalidInput)
		}
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a And) String() string {
	parts := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// MatchFilter evaluates f against u, treating a nil filter as match-all.
func MatchFilter(f Filter, u Unit) bool {
	if f == nil {
		return true
	}
	return f.Match(u)
}

// DescribeFilter renders f for logs, using "none" for a nil filter.
func DescribeFilter(f Filter) string {
	if f == nil {
		return "none"
	}
	return f.String()
}
