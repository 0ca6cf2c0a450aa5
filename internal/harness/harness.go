package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/roach88/decisionlog/internal/decision"
	"github.com/roach88/decisionlog/internal/refresh"
	"github.com/roach88/decisionlog/internal/store"
	"github.com/roach88/decisionlog/internal/testutil"
)

// Epoch is the timestamp of the first decision a scenario creates. Each
// later decision is stamped one day after the previous one.
var Epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// Harness executes scenario steps against one store.
type Harness struct {
	store  *store.Store
	clock  *refresh.Clock
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database with a stepping clock
// 2. Execute setup steps, which must all succeed
// 3. Execute flow steps, checking expect clauses
// 4. Evaluate assertions against the final state
//
// A non-nil error means the scenario could not run; failed expectations
// are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewStepClock(Epoch, 24*time.Hour)
	st, err := store.Open(":memory:", store.WithClock(clock.Now))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  refresh.NewClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Setup {
		event, err := h.execute(ctx, "setup", step)
		if err != nil {
			return nil, fmt.Errorf("setup step %d: %w", i, err)
		}
		if event.Case != CaseOK {
			return nil, fmt.Errorf("setup step %d: %s returned %s", i, step.Op, event.Case)
		}
		result.Trace = append(result.Trace, event)
	}

	for i, step := range scenario.Flow {
		event, err := h.execute(ctx, "flow", step)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
		result.Trace = append(result.Trace, event)

		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, event) {
				result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Op, msg))
			}
		}
	}

	for _, msg := range EvaluateAssertions(ctx, st, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// execute runs one step. Only storage failures are returned as errors;
// rejected input and missing ids are outcomes recorded in the event.
func (h *Harness) execute(ctx context.Context, phase string, step Step) (TraceEvent, error) {
	event := TraceEvent{
		Seq:   h.clock.Next(),
		Phase: phase,
		Op:    step.Op,
		Args:  stepArgs(step),
		Case:  CaseOK,
	}

	invalid := func(err error) (TraceEvent, error) {
		event.Case = CaseInvalid
		event.Result = map[string]any{"error": err.Error()}
		return event, nil
	}

	switch step.Op {
	case OpCreate:
		f, err := step.Fields.fields()
		if err != nil {
			return invalid(err)
		}
		id, err := h.store.Create(ctx, f)
		if err != nil {
			return event, err
		}
		event.Result = map[string]any{"id": id}

	case OpUpdate:
		f, err := step.Fields.fields()
		if err != nil {
			return invalid(err)
		}
		updated, err := h.store.Update(ctx, step.ID, f)
		if err != nil {
			return event, err
		}
		if !updated {
			event.Case = CaseNotFound
		}

	case OpDelete:
		deleted, err := h.store.Delete(ctx, step.ID)
		if err != nil {
			return event, err
		}
		if !deleted {
			event.Case = CaseNotFound
		}

	case OpGet:
		rec, err := h.store.Get(ctx, step.ID)
		if errors.Is(err, store.ErrNotFound) {
			event.Case = CaseNotFound
			break
		}
		if err != nil {
			return event, err
		}
		event.Result = map[string]any{"record": rec}

	case OpRetrieve:
		filter, err := step.Filter.filter()
		if err != nil {
			return invalid(err)
		}
		records, err := h.store.Retrieve(ctx, filter)
		if err != nil {
			return event, err
		}
		event.Result = map[string]any{"ids": recordIDs(records)}

	default:
		return event, fmt.Errorf("unknown op %q", step.Op)
	}

	h.logger.Info("step completed",
		"seq", event.Seq,
		"phase", phase,
		"op", step.Op,
		"case", event.Case,
	)
	return event, nil
}

// checkExpect compares an executed step against its expect clause.
func checkExpect(want *Expect, got TraceEvent) []string {
	var problems []string

	if got.Case != want.Case {
		msg := fmt.Sprintf("expected case %q, got %q", want.Case, got.Case)
		if errMsg, ok := got.Result["error"]; ok {
			msg += fmt.Sprintf(" (%v)", errMsg)
		}
		return append(problems, msg)
	}

	if want.ID != 0 {
		if id, _ := got.Result["id"].(int64); id != want.ID {
			problems = append(problems, fmt.Sprintf("expected id %d, got %v", want.ID, got.Result["id"]))
		}
	}

	if want.IDs != nil {
		ids, _ := got.Result["ids"].([]int64)
		if !reflect.DeepEqual(ids, want.IDs) {
			problems = append(problems, fmt.Sprintf("expected ids %v, got %v", want.IDs, ids))
		}
	}

	if want.Error != "" {
		errMsg, _ := got.Result["error"].(string)
		if !strings.Contains(errMsg, want.Error) {
			problems = append(problems, fmt.Sprintf("expected error containing %q, got %q", want.Error, errMsg))
		}
	}

	return problems
}

// stepArgs returns the arguments of a step for the trace.
func stepArgs(step Step) map[string]any {
	args := make(map[string]any)
	if step.ID != 0 {
		args["id"] = step.ID
	}
	if step.Fields != nil {
		args["fields"] = step.Fields
	}
	if step.Filter != nil {
		args["filter"] = step.Filter
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

func recordIDs(records []decision.Record) []int64 {
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}
