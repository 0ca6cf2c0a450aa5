package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/decisionlog/internal/transfer"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	filterFlags
	As     string
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write decisions as YAML or JSON",
		Long: `Write decisions, with their ids and timestamps, as YAML or JSON.

Accepts the same filters as list. Without filters every decision is written.

Examples:
  decisionlog export > decisions.yaml
  decisionlog export --as json --status approved -o approved.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	opts.filterFlags.register(cmd)
	cmd.Flags().StringVar(&opts.As, "as", "yaml", "export encoding (yaml|json)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	format, err := transfer.ParseFormat(opts.As)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeUsage, "invalid --as", err)
	}

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

	var buf bytes.Buffer
	if err := transfer.Export(&buf, records, format); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeGeneric, "failed to encode export", err)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed, "failed to write export", err)
	}
	slog.Debug("decisions exported", "count", len(records), "path", opts.Output)

	return opts.cmdFormatter(cmd).Success(
		map[string]interface{}{"path": opts.Output, "count": len(records)},
		fmt.Sprintf("Exported %d decisions to %s", len(records), opts.Output),
	)
}
