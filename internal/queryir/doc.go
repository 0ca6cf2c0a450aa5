// Package queryir provides a small query intermediate representation for
// reading the decisions table.
//
// Callers describe what to read (a table, the columns to return and a
// predicate tree) and a backend compiler turns it into executable SQL. The
// IR keeps values out of the query text: every literal lives in a predicate
// node and is emitted as a bound parameter, while identifiers are checked
// by Validate before they are ever written into SQL.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement them, so backends can switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case AtLeast:
//	case AtMost:
//	case And:
//	}
//
// SUPPORTED FRAGMENT:
//
//   - Select(from, columns, filter)
//   - Equals: exact, case-sensitive text equality
//   - AtLeast / AtMost: inclusive lexicographic bounds, optionally on a
//     leading prefix of the column (used to compare the date part of a
//     date-time string)
//   - And: conjunction; empty means always true
//
// There is no OR, no join and no NULL comparison. The decisions table has a
// single source and filters only ever narrow it.
package queryir
