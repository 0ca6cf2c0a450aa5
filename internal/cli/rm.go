package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRmCommand creates the rm command.
func NewRmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a decision",
		Long: `Delete a decision by id. Ids are never reused.

Deleting an id that does not exist changes nothing and exits with status 1.

Examples:
  decisionlog rm 7`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRm(rootOpts, args[0], cmd)
		},
	}
}

func runRm(opts *RootOptions, arg string, cmd *cobra.Command) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	st, _, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	deleted, err := st.Delete(cmd.Context(), id)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to delete decision", err)
	}
	if !deleted {
		return notFound(id)
	}
	slog.Debug("decision deleted", "id", id)

	return opts.cmdFormatter(cmd).Success(
		map[string]int64{"id": id},
		fmt.Sprintf("Deleted decision %d", id),
	)
}
