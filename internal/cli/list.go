package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/decisionlog/internal/decision"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	filterFlags
	Sort   string
	Desc   bool
	Search string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List decisions",
		Long: `List decisions in the order they were recorded.

--status matches exactly one status. --from and --to bound a date
inclusively; by default the date the decision was recorded, or the due date
with --date-field due. --search keeps rows containing the text in any column,
and --sort orders by a column (id, timestamp, area, maker, decision,
reasoning, status, due).

Examples:
  decisionlog list --status waiting
  decisionlog list --from 2024-01-01 --to 31-03-2024
  decisionlog list --date-field due --to 2024-06-30 --sort due
  decisionlog list --search postgres --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	opts.filterFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Sort, "sort", "id", "column to sort by")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort in descending order")
	cmd.Flags().StringVar(&opts.Search, "search", "", "only rows containing this text")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	filter, err := opts.filter(opts.RootOptions)
	if err != nil {
		return err
	}

	st, _, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	records, err := st.Retrieve(cmd.Context(), filter)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to retrieve decisions", err)
	}
	slog.Debug("decisions retrieved", "count", len(records), "status", filter.Status,
		"from", filter.Start, "to", filter.End, "date_field", filter.Field)

	records, err = arrange(records, opts.Search, opts.Sort, opts.Desc)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return opts.cmdFormatter(cmd).Success(records, "")
	}
	return writeTable(cmd.OutOrStdout(), records, painterFor(opts.RootOptions, cmd.OutOrStdout()))
}

// arrange applies search and sort to retrieved records.
func arrange(records []decision.Record, search, sortBy string, desc bool) ([]decision.Record, error) {
	records = searchRecords(records, search)
	if err := sortRecords(records, sortBy, desc); err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeUsage, "invalid --sort", err)
	}
	return records, nil
}

func writeTable(w io.Writer, records []decision.Record, paint statusPainter) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No decisions found.")
		return err
	}
	_, err := io.WriteString(w, renderTable(records, paint))
	return err
}
