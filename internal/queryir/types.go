package queryir

// Query represents an abstract read in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate represents a filter condition in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// Predicate types:
//   - Equals: field = value
//   - AtLeast: field >= value
//   - AtMost: field <= value
//   - And: all predicates must be true
type Predicate interface {
	predicateNode()
}

// Select represents a read of one table with an optional filter.
//
// Semantics:
//
//	SELECT <columns> FROM <from> WHERE <filter> ORDER BY id
//
// Example:
//
//	Select{
//	  From:    "decisions",
//	  Columns: []string{"id", "status"},
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: "status", Value: "Waiting"},
//	    AtLeast{Field: "timestamp", Value: "2024-01-01", Prefix: 10},
//	  }},
//	}
//
// Translates to SQL:
//
//	SELECT id, status FROM decisions
//	WHERE status = ? AND substr(timestamp, 1, 10) >= ?
//	ORDER BY id ASC
//
// Columns are returned in the listed order. Rows are returned in storage
// order; the table's integer primary key is named id.
type Select struct {
	From    string    // Table name
	Columns []string  // Columns to return, in order (must be non-empty)
	Filter  Predicate // WHERE conditions (nil = no filter)
}

func (Select) queryNode() {}

// Equals matches rows whose field equals Value exactly.
//
// Comparison is case-sensitive text equality; no collation folding.
type Equals struct {
	Field string
	Value string
}

func (Equals) predicateNode() {}

// AtLeast matches rows whose field compares greater than or equal to Value.
//
// When Prefix is positive only the first Prefix characters of the field
// take part in the comparison, so
//
//	AtLeast{Field: "timestamp", Value: "2024-01-01", Prefix: 10}
//
// compares the date part of a "2006-01-02 15:04:05" timestamp.
type AtLeast struct {
	Field  string
	Value  string
	Prefix int
}

func (AtLeast) predicateNode() {}

// AtMost matches rows whose field compares less than or equal to Value.
// Prefix behaves as in AtLeast.
type AtMost struct {
	Field  string
	Value  string
	Prefix int
}

func (AtMost) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// Empty Predicates means "always true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Conjoin builds the narrowest predicate for preds, dropping nils.
// It returns nil for no predicates and the predicate itself for one.
func Conjoin(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
