package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/decisionlog/internal/queryir"
)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// All queries are ordered by the integer primary key so results come back
// in storage order. All values are parameterized, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error). Queries that fail queryir.Validate are
// rejected, since identifiers are written into the SQL text.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	if result := queryir.Validate(q); !result.Valid {
		return "", nil, fmt.Errorf("invalid query: %s", strings.Join(result.Problems, "; "))
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(q.Columns, ", "),
		q.From,
		whereClause,
		c.stableOrderKey())

	return sql, params, nil
}

// stableOrderKey returns the ORDER BY clause for a query.
// The rowid alias id grows with every insert, so this is insertion order.
func (c *SQLCompiler) stableOrderKey() string {
	return "id ASC"
}

// compilePredicate compiles a queryir.Predicate to a WHERE clause fragment.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.AtLeast:
		return c.compileBound(pred.Field, ">=", pred.Value, pred.Prefix)
	case *queryir.AtLeast:
		return c.compileBound(pred.Field, ">=", pred.Value, pred.Prefix)
	case queryir.AtMost:
		return c.compileBound(pred.Field, "<=", pred.Value, pred.Prefix)
	case *queryir.AtMost:
		return c.compileBound(pred.Field, "<=", pred.Value, pred.Prefix)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles an Equals predicate to "field = ?".
func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	return fmt.Sprintf("%s = ?", eq.Field), []any{eq.Value}, nil
}

// compileBound compiles AtLeast/AtMost. A positive prefix compares only the
// leading characters of the column via substr.
func (c *SQLCompiler) compileBound(field, op, value string, prefix int) (string, []any, error) {
	lhs := field
	if prefix > 0 {
		lhs = fmt.Sprintf("substr(%s, 1, %d)", field, prefix)
	}
	return fmt.Sprintf("%s %s ?", lhs, op), []any{value}, nil
}

// compileAnd compiles an And predicate to conjunction with AND.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // vacuous truth
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if _, nested := pred.(queryir.And); nested {
			sql = "(" + sql + ")"
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}
