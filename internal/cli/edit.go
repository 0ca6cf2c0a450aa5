package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/decisionlog/internal/store"
)

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	var fields fieldFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an existing decision",
		Long: `Change fields of an existing decision. Fields whose flags are not given
keep their current values; the id and timestamp never change.

Examples:
  decisionlog edit 7 --status approved
  decisionlog edit 7 --due 31-12-2024 --reasoning "Budget confirmed"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(rootOpts, &fields, args[0], cmd)
		},
	}

	fields.register(cmd, "")

	return cmd
}

func runEdit(opts *RootOptions, fields *fieldFlags, arg string, cmd *cobra.Command) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	st, _, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	current, err := st.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(id)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to read decision", err)
	}

	f, err := fields.apply(cmd, current.Fields(), false)
	if err != nil {
		return err
	}

	updated, err := st.Update(ctx, id, f)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to update decision", err)
	}
	if !updated {
		// Removed between Get and Update.
		return notFound(id)
	}
	slog.Debug("decision updated", "id", id)

	return opts.cmdFormatter(cmd).Success(
		map[string]int64{"id": id},
		fmt.Sprintf("Updated decision %d", id),
	)
}
