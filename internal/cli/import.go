package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/decisionlog/internal/transfer"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Record decisions from a YAML file",
		Long: `Record every decision listed in a YAML file ("-" reads stdin).

The file has a top-level "decisions" list; each entry takes the keys area,
decision_maker, decision, reasoning, status and due_date. The whole file is
checked before anything is written, and every problem is reported. Files
written by "decisionlog export" can be imported; their ids and timestamps
are ignored.

Example file:
  decisions:
    - area: Infrastructure
      decision_maker: Ana
      decision: Move to Postgres
      reasoning: Scaling limits
      status: Approved
      due_date: 2024-09-30

Examples:
  decisionlog import decisions.yaml
  decisionlog export | decisionlog --db other.db import -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		file, err := os.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, ErrCodeUsage, "failed to open import file", err)
		}
		defer file.Close()
		r = file
	}

	fields, err := transfer.Parse(r)
	if errors.Is(err, transfer.ErrInvalid) {
		return WrapExitError(ExitFailure, ErrCodeInvalidInput, "import rejected", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeGeneric, "failed to read import file", err)
	}

	st, _, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ids, err := transfer.Import(cmd.Context(), st, fields)
	if err != nil {
		slog.Error("import stopped", "created", len(ids), "error", err)
		return WrapExitError(ExitCommandError, ErrCodeStorage,
			fmt.Sprintf("import stopped after %d of %d decisions", len(ids), len(fields)), err)
	}
	slog.Debug("decisions imported", "count", len(ids))

	return opts.cmdFormatter(cmd).Success(
		map[string][]int64{"ids": ids},
		fmt.Sprintf("Imported %d decisions", len(ids)),
	)
}
