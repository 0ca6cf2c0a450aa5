package harness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/decisionlog/internal/decision"
	"github.com/roach88/decisionlog/internal/store"
)

// recordColumns maps column names to record accessors for record assertions.
var recordColumns = map[string]func(decision.Record) string{
	"id":             func(r decision.Record) string { return strconv.FormatInt(r.ID, 10) },
	"timestamp":      func(r decision.Record) string { return r.Timestamp },
	"area":           func(r decision.Record) string { return r.Area },
	"decision_maker": func(r decision.Record) string { return r.DecisionMaker },
	"decision":       func(r decision.Record) string { return r.Decision },
	"reasoning":      func(r decision.Record) string { return r.Reasoning },
	"status":         func(r decision.Record) string { return string(r.Status) },
	"due_date":       func(r decision.Record) string { return r.DueDate },
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// assertRecord checks the listed columns of one decision.
func assertRecord(ctx context.Context, st *store.Store, a Assertion) error {
	rec, err := st.Get(ctx, a.ID)
	if errors.Is(err, store.ErrNotFound) {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("decision %d", a.ID),
			Actual:   "not found",
		}
	}
	if err != nil {
		return fmt.Errorf("get decision %d: %w", a.ID, err)
	}

	// Sort columns for deterministic messages
	columns := make([]string, 0, len(a.Expect))
	for column := range a.Expect {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var mismatches []string
	for _, column := range columns {
		if got := recordColumns[column](rec); got != a.Expect[column] {
			mismatches = append(mismatches, fmt.Sprintf("%s = %q, want %q", column, got, a.Expect[column]))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("decision %d matching %v", a.ID, a.Expect),
			Actual:   strings.Join(mismatches, "; "),
		}
	}
	return nil
}

// assertAbsent checks that no decision has the id.
func assertAbsent(ctx context.Context, st *store.Store, a Assertion) error {
	_, err := st.Get(ctx, a.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get decision %d: %w", a.ID, err)
	}
	return &AssertionError{
		Type:     AssertAbsent,
		Expected: fmt.Sprintf("no decision %d", a.ID),
		Actual:   "decision exists",
	}
}

// assertCount checks how many decisions match the filter.
func assertCount(ctx context.Context, st *store.Store, a Assertion) error {
	filter, err := a.Filter.filter()
	if err != nil {
		return fmt.Errorf("count filter: %w", err)
	}
	records, err := st.Retrieve(ctx, filter)
	if err != nil {
		return fmt.Errorf("retrieve decisions: %w", err)
	}
	if len(records) != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d decisions", a.Count),
			Actual:   fmt.Sprintf("%d decisions %v", len(records), recordIDs(records)),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the store.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(ctx context.Context, st *store.Store, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRecord:
			err = assertRecord(ctx, st, assertion)
		case AssertAbsent:
			err = assertAbsent(ctx, st, assertion)
		case AssertCount:
			err = assertCount(ctx, st, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}

	return errors
}
