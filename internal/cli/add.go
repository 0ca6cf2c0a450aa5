package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/decisionlog/internal/decision"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var fields fieldFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new decision",
		Long: `Record a new decision. Area and decision maker are required.

The status is matched case-insensitively ("not-approved" works) and the due
date may be given as YYYY-MM-DD, DD-MM-YYYY or MM/DD/YYYY; it is stored as
YYYY-MM-DD. The timestamp is set to the current time.

Examples:
  decisionlog add --area Infrastructure --maker Ana \
    --decision "Move to Postgres" --reasoning "Scaling limits" \
    --status approved --due 2024-09-30`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, &fields, cmd)
		},
	}

	fields.register(cmd, string(decision.StatusWaiting))

	return cmd
}

func runAdd(opts *RootOptions, fields *fieldFlags, cmd *cobra.Command) error {
	f, err := fields.apply(cmd, decision.Fields{}, true)
	if err != nil {
		return err
	}

	st, _, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	id, err := st.Create(cmd.Context(), f)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to create decision", err)
	}
	slog.Debug("decision created", "id", id, "area", f.Area, "status", f.Status)

	return opts.cmdFormatter(cmd).Success(
		map[string]int64{"id": id},
		fmt.Sprintf("Created decision %d", id),
	)
}
