package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/decisionlog/internal/config"
	"github.com/roach88/decisionlog/internal/store"
)

// RootOptions holds global flags and per-invocation state for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string
	Color      string // "auto" | "always" | "never"

	// Config is loaded before any subcommand runs. Nil is treated as an
	// empty config.
	Config *config.Config

	// TraceIDs allows overriding the correlation id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TraceIDs IDGenerator

	// Now allows overriding the clock that stamps new decisions (for testing).
	// If nil, the store uses time.Now.
	Now func() time.Time

	traceID string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the decisionlog CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts, so that
// callers can inject generators and read back resolved options.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decisionlog",
		Short: "Record and browse decisions",
		Long: `decisionlog keeps a log of decisions in a local SQLite database:
who decided what, why, whether it is approved, and by when.

The database location comes from --db, then $DECISIONLOG_DB, then the
"database" key of the config file, then ~/.local/share/decisionlog/decision_log.db.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (json|text, default text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default $XDG_CONFIG_HOME/decisionlog/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.Color, "color", "", "colour status cells (auto|always|never, default auto)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewRmCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stdout (JSON) or stderr (text).
func Execute(args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := NewRootCommandWithOptions(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Flag and argument errors come straight from cobra.
		err = WrapExitError(ExitCommandError, ErrCodeUsage, "invalid command", err)
	}

	slog.Debug("command failed", "error", err, "exit_code", GetExitCode(err))
	_ = opts.formatter(stdout, stderr).ReportError(err)
	return GetExitCode(err)
}

// prepare loads the config file, resolves defaults and configures logging.
func (o *RootOptions) prepare(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeUsage, "failed to load config", err)
	}
	o.Config = cfg

	if o.Format == "" {
		o.Format = cfg.Format
	}
	if o.Format == "" {
		o.Format = "text"
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, ErrCodeUsage,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	if o.Color == "" {
		o.Color = cfg.Color
	}
	if o.Color == "" {
		o.Color = config.ColorAuto
	}
	switch o.Color {
	case config.ColorAuto, config.ColorAlways, config.ColorNever:
	default:
		return NewExitError(ExitCommandError, ErrCodeUsage,
			fmt.Sprintf("invalid color mode %q: must be auto, always or never", o.Color))
	}

	setupLogging(cmd.ErrOrStderr(), o.Verbose, o.TraceID())
	return nil
}

// TraceID returns the correlation id of this invocation, generating it on
// first use.
func (o *RootOptions) TraceID() string {
	if o.traceID == "" {
		gen := o.TraceIDs
		if gen == nil {
			gen = UUIDv7Generator{}
		}
		o.traceID = gen.Generate()
	}
	return o.traceID
}

func (o *RootOptions) formatter(out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   o.Verbose,
		TraceID:   o.TraceID(),
	}
}

func (o *RootOptions) cmdFormatter(cmd *cobra.Command) *OutputFormatter {
	return o.formatter(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// openStore resolves the database path, creates its directory if needed and
// opens the store.
func (o *RootOptions) openStore() (*store.Store, string, error) {
	path, err := config.ResolveDatabase(o.Database, o.Config)
	if err != nil {
		return nil, "", WrapExitError(ExitCommandError, ErrCodeStorage, "failed to resolve database path", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", WrapExitError(ExitCommandError, ErrCodeStorage, "failed to create database directory", err)
	}

	var storeOpts []store.Option
	if o.Now != nil {
		storeOpts = append(storeOpts, store.WithClock(o.Now))
	}

	st, err := store.Open(path, storeOpts...)
	if err != nil {
		return nil, "", WrapExitError(ExitCommandError, ErrCodeStorage, "failed to open database", err)
	}
	slog.Debug("database opened", "path", path)

	return st, path, nil
}

// setupLogging installs the default slog logger: text on stderr, Debug when
// verbose, every record tagged with the invocation's trace id.
func setupLogging(w io.Writer, verbose bool, traceID string) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler).With("trace_id", traceID))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
