package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Match(t *testing.T) {
	unit := Unit{Collection: "Y3S2", Subcollection: "Machine Learning", UnitID: "TextbookA"}
	conj := And{Terms: []Filter{
		Eq{Field: FieldCollection, Value: "Y3S2"},
		Eq{Field: FieldSubcollection, Value: "Machine Learning"},
		In{Field: FieldUnit, Values: []string{"TextbookA"}},
	}}

	t.Run("all three conditions hold", func(t *testing.T) {
		assert.True(t, conj.Match(unit))
	})

	t.Run("two of three is excluded", func(t *testing.T) {
		other := unit
		other.UnitID = "TextbookB"
		assert.False(t, conj.Match(other))

		other = unit
		other.Subcollection = "Finance"
		assert.False(t, conj.Match(other))
	})

	t.Run("membership", func(t *testing.T) {
		in := In{Field: FieldUnit, Values: []string{"A", "TextbookA"}}
		assert.True(t, in.Match(unit))
		assert.False(t, In{Field: FieldUnit, Values: []string{"A"}}.Match(unit))
	})

	t.Run("equality is exact", func(t *testing.T) {
		assert.False(t, Eq{Field: FieldCollection, Value: "y3s2"}.Match(unit))
	})

	t.Run("nil matches everything", func(t *testing.T) {
		assert.True(t, MatchFilter(nil, unit))
		assert.Equal(t, "none", DescribeFilter(nil))
	})
}

func TestFilter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantErr bool
	}{
		{name: "eq", filter: Eq{Field: FieldTenant, Value: "u1"}},
		{name: "unknown field", filter: Eq{Field: Field("author"), Value: "x"}, wantErr: true},
		{name: "empty set", filter: In{Field: FieldUnit}, wantErr: true},
		{name: "empty conjunction", filter: And{}, wantErr: true},
		{name: "nil term", filter: And{Terms: []Filter{nil}}, wantErr: true},
		{
			name:    "nested invalid term",
			filter:  And{Terms: []Filter{Eq{Field: FieldCollection, Value: "a"}, In{Field: "x", Values: []string{"b"}}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFilter_String(t *testing.T) {
	f := And{Terms: []Filter{
		Eq{Field: FieldCollection, Value: "Y3S2"},
		In{Field: FieldUnit, Values: []string{"A", "B"}},
	}}
	assert.Equal(t, `(collection = "Y3S2" AND unit_id in ["A", "B"])`, f.String())
}
