package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/decisionlog/internal/decision"
)

// fieldFlags are the decision fields shared by add and edit.
type fieldFlags struct {
	area          string
	decisionMaker string
	decision      string
	reasoning     string
	status        string
	dueDate       string
}

func (f *fieldFlags) register(cmd *cobra.Command, defaultStatus string) {
	cmd.Flags().StringVar(&f.area, "area", "", "area the decision belongs to")
	cmd.Flags().StringVar(&f.decisionMaker, "maker", "", "who made the decision")
	cmd.Flags().StringVar(&f.decision, "decision", "", "what was decided")
	cmd.Flags().StringVar(&f.reasoning, "reasoning", "", "why it was decided")
	cmd.Flags().StringVar(&f.status, "status", defaultStatus, "Approved, Not Approved or Waiting")
	cmd.Flags().StringVar(&f.dueDate, "due", "", "due date (YYYY-MM-DD, DD-MM-YYYY or MM/DD/YYYY)")
}

// apply overlays the flags onto base, then normalises and validates the
// result. With all set every flag is used, defaults included; otherwise
// only flags the user set replace base's values.
func (f *fieldFlags) apply(cmd *cobra.Command, base decision.Fields, all bool) (decision.Fields, error) {
	out := base
	set := func(name string) bool {
		return all || cmd.Flags().Changed(name)
	}

	if set("area") {
		out.Area = f.area
	}
	if set("maker") {
		out.DecisionMaker = f.decisionMaker
	}
	if set("decision") {
		out.Decision = f.decision
	}
	if set("reasoning") {
		out.Reasoning = f.reasoning
	}
	if set("status") {
		status, err := decision.ParseStatus(f.status)
		if err != nil {
			return decision.Fields{}, invalidInput(err)
		}
		out.Status = status
	}
	if set("due") {
		due, err := decision.NormalizeDate(f.dueDate)
		if err != nil {
			return decision.Fields{}, invalidInput(err)
		}
		out.DueDate = due
	}

	out = out.Normalize()
	if err := out.Validate(); err != nil {
		return decision.Fields{}, invalidInput(err)
	}
	return out, nil
}

// filterFlags are the retrieval flags shared by list, watch and export.
type filterFlags struct {
	status    string
	from      string
	to        string
	dateField string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", "", "only decisions with this status")
	cmd.Flags().StringVar(&f.from, "from", "", "earliest date, inclusive")
	cmd.Flags().StringVar(&f.to, "to", "", "latest date, inclusive")
	cmd.Flags().StringVar(&f.dateField, "date-field", "", "date compared by --from/--to (timestamp|due, default from config or timestamp)")
}

// filter builds a decision.Filter, falling back to the configured date field.
func (f *filterFlags) filter(opts *RootOptions) (decision.Filter, error) {
	var out decision.Filter

	if f.status != "" {
		status, err := decision.ParseStatus(f.status)
		if err != nil {
			return decision.Filter{}, invalidInput(err)
		}
		out.Status = status
	}

	var err error
	if out.Start, err = decision.NormalizeDate(f.from); err != nil {
		return decision.Filter{}, invalidInput(fmt.Errorf("--from: %w", err))
	}
	if out.End, err = decision.NormalizeDate(f.to); err != nil {
		return decision.Filter{}, invalidInput(fmt.Errorf("--to: %w", err))
	}

	field := f.dateField
	if field == "" && opts.Config != nil {
		field = opts.Config.DateField
	}
	if out.Field, err = decision.ParseDateField(field); err != nil {
		return decision.Filter{}, invalidInput(err)
	}

	return out, nil
}

// parseID parses a decision id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, ErrCodeUsage, fmt.Sprintf("invalid decision id %q", arg))
	}
	return id, nil
}

func invalidInput(err error) error {
	return WrapExitError(ExitFailure, ErrCodeInvalidInput, "invalid input", err)
}

func notFound(id int64) error {
	return NewExitError(ExitFailure, ErrCodeNotFound, fmt.Sprintf("decision %d not found", id))
}
