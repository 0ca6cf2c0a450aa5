package queryir

import (
	"fmt"
	"regexp"
)

// identPattern restricts table and column names to plain SQL identifiers.
// Anything else would have to be quoted, and nothing in this schema needs
// quoting.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationResult contains the problems found in a query.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems lists every rule the query breaks.
	Problems []string
}

// Validate checks a query against the supported fragment.
//
// Rules:
//  1. From and every column/field name are plain identifiers
//  2. Columns are listed explicitly (no SELECT *)
//  3. Prefix lengths are never negative
//  4. Only predicate types from this package appear
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		problems: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addProblem("nil query")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	v.checkIdent("table", sel.From)

	if len(sel.Columns) == 0 {
		v.addProblem("no columns selected - columns must be listed explicitly")
	}
	for _, col := range sel.Columns {
		v.checkIdent("column", col)
	}

	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return
	}

	switch pred := p.(type) {
	case Equals:
		v.checkIdent("field", pred.Field)
	case *Equals:
		v.checkIdent("field", pred.Field)
	case AtLeast:
		v.checkBound(pred.Field, pred.Prefix)
	case *AtLeast:
		v.checkBound(pred.Field, pred.Prefix)
	case AtMost:
		v.checkBound(pred.Field, pred.Prefix)
	case *AtMost:
		v.checkBound(pred.Field, pred.Prefix)
	case And:
		v.validateAnd(pred)
	case *And:
		v.validateAnd(*pred)
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) checkBound(field string, prefix int) {
	v.checkIdent("field", field)
	if prefix < 0 {
		v.addProblem("field %q has negative prefix %d", field, prefix)
	}
}

func (v *validator) validateAnd(and And) {
	for _, sub := range and.Predicates {
		v.validatePredicate(sub)
	}
}

func (v *validator) checkIdent(kind, name string) {
	if !identPattern.MatchString(name) {
		v.addProblem("%s name %q is not a plain identifier", kind, name)
	}
}
