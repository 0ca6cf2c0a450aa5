package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the decision database",
		Long: `Create the decision database and its table if they do not exist.

Running init on an existing database leaves its records untouched.

Examples:
  decisionlog init
  decisionlog --db ./decisions.db init`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	st, path, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.Initialize(cmd.Context()); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to initialize database", err)
	}

	return opts.cmdFormatter(cmd).Success(
		map[string]string{"database": path},
		fmt.Sprintf("Initialized decision log at %s", path),
	)
}
