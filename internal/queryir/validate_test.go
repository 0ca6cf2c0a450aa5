package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidQuery(t *testing.T) {
	query := Select{
		From:    "decisions",
		Columns: []string{"id", "status"},
		Filter: And{Predicates: []Predicate{
			Equals{Field: "status", Value: "Waiting"},
			AtLeast{Field: "timestamp", Value: "2024-01-01", Prefix: 10},
			AtMost{Field: "timestamp", Value: "2024-12-31", Prefix: 10},
		}},
	}

	result := Validate(query)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Problems)
}

func TestValidate_PointerTypes(t *testing.T) {
	query := &Select{
		From:    "decisions",
		Columns: []string{"id"},
		Filter: &And{Predicates: []Predicate{
			&Equals{Field: "status", Value: "Approved"},
			&AtMost{Field: "due_date", Value: "2024-12-31"},
		}},
	}

	result := Validate(query)

	assert.True(t, result.Valid, result.Problems)
}

func TestValidate_ValuesAreNotChecked(t *testing.T) {
	// Values are bound as parameters, so anything goes.
	query := Select{
		From:    "decisions",
		Columns: []string{"id"},
		Filter:  Equals{Field: "status", Value: "'; DROP TABLE decisions; --"},
	}

	assert.True(t, Validate(query).Valid)
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			name:  "nil query",
			query: nil,
			want:  "nil query",
		},
		{
			name:  "no columns",
			query: Select{From: "decisions"},
			want:  "no columns selected",
		},
		{
			name:  "bad table",
			query: Select{From: "decisions; --", Columns: []string{"id"}},
			want:  `table name "decisions; --"`,
		},
		{
			name:  "bad column",
			query: Select{From: "decisions", Columns: []string{"count(*)"}},
			want:  `column name "count(*)"`,
		},
		{
			name: "bad field",
			query: Select{
				From:    "decisions",
				Columns: []string{"id"},
				Filter:  Equals{Field: "1=1 OR status", Value: "x"},
			},
			want: `field name "1=1 OR status"`,
		},
		{
			name: "negative prefix",
			query: Select{
				From:    "decisions",
				Columns: []string{"id"},
				Filter:  AtLeast{Field: "timestamp", Value: "x", Prefix: -1},
			},
			want: "negative prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.query)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Problems)
			assert.Contains(t, result.Problems[0], tt.want)
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	query := Select{
		From:    "",
		Columns: []string{"ok", "not ok"},
		Filter: And{Predicates: []Predicate{
			Equals{Field: "bad field", Value: "x"},
			AtMost{Field: "due_date", Value: "x", Prefix: -2},
		}},
	}

	result := Validate(query)

	assert.False(t, result.Valid)
	assert.Len(t, result.Problems, 4)
}

func TestConjoin(t *testing.T) {
	eq := Equals{Field: "status", Value: "Waiting"}
	lo := AtLeast{Field: "due_date", Value: "2024-01-01"}

	assert.Nil(t, Conjoin())
	assert.Nil(t, Conjoin(nil, nil))
	assert.Equal(t, eq, Conjoin(nil, eq))
	assert.Equal(t, And{Predicates: []Predicate{eq, lo}}, Conjoin(eq, nil, lo))
}
