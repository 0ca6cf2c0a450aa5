package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/decisionlog/internal/decision"
	"github.com/roach88/decisionlog/internal/store"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one decision in full",
		Long: `Show every field of one decision, with long text wrapped.

Examples:
  decisionlog show 7
  decisionlog show 7 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
}

func runShow(opts *RootOptions, arg string, cmd *cobra.Command) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	st, _, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	rec, err := st.Get(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(id)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to read decision", err)
	}

	paint := painterFor(opts, cmd.OutOrStdout())
	return opts.cmdFormatter(cmd).Success(rec, formatRecord(rec, paint))
}

// formatRecord renders a record as one wrapped "label: value" line per field.
func formatRecord(rec decision.Record, paint statusPainter) string {
	status := "-"
	if rec.Status != "" {
		status = paint(rec.Status)
	}

	lines := []string{
		formatField("ID", strconv.FormatInt(rec.ID, 10)),
		formatField("Recorded", rec.Timestamp),
		formatField("Area", rec.Area),
		formatField("Decision maker", rec.DecisionMaker),
		fmt.Sprintf("%-16s%s", "Status:", status),
		formatField("Due date", rec.DueDate),
		formatField("Decision", rec.Decision),
		formatField("Reasoning", rec.Reasoning),
	}
	return strings.Join(lines, "\n")
}
