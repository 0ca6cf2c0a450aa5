package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/decisionlog/internal/refresh"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	filterFlags
	Sort     string
	Desc     bool
	Search   string
	Interval time.Duration
	Count    int
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-list decisions periodically",
		Long: `Re-run list every --interval and print the table each time the
result arrives. Retrieval runs in the background; if a refresh is still
running when the next one is due, only the newest result is printed.

Stops on Ctrl-C, or after --count tables when --count is set.

Examples:
  decisionlog watch --status waiting
  decisionlog watch --interval 10s --sort due`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	opts.filterFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Sort, "sort", "id", "column to sort by")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort in descending order")
	cmd.Flags().StringVar(&opts.Search, "search", "", "only rows containing this text")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 2*time.Second, "time between refreshes")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "stop after this many tables (0 = until interrupted)")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	if opts.Interval <= 0 {
		return NewExitError(ExitCommandError, ErrCodeUsage, "--interval must be positive")
	}
	if _, err := arrange(nil, "", opts.Sort, opts.Desc); err != nil {
		return err
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

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping watch", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	refresher := refresh.New(st)
	done := make(chan error, 1)
	go func() {
		done <- refresher.Run(ctx)
	}()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	slog.Debug("watch started", "interval", opts.Interval, "count", opts.Count)
	refresher.Request(filter)

	out := cmd.OutOrStdout()
	paint := painterFor(opts.RootOptions, out)
	f := opts.cmdFormatter(cmd)
	printed := 0

	for {
		select {
		case <-ctx.Done():
			<-done
			slog.Debug("watch stopped", "tables", printed)
			return nil

		case <-ticker.C:
			refresher.Request(filter)

		case res, ok := <-refresher.Results():
			if !ok {
				return nil
			}
			if res.Err != nil {
				cancel()
				<-done
				return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to retrieve decisions", res.Err)
			}

			records, err := arrange(res.Records, opts.Search, opts.Sort, opts.Desc)
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				if err := f.Success(records, ""); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "== refresh %d: %d decisions ==\n", res.Seq, len(records))
				if err := writeTable(out, records, paint); err != nil {
					return err
				}
			}

			printed++
			if opts.Count > 0 && printed >= opts.Count {
				cancel()
				<-done
				slog.Debug("watch finished", "tables", printed)
				return nil
			}
		}
	}
}
