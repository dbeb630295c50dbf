package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marketwatch/internal/export"
	"marketwatch/internal/fetch"
	"marketwatch/internal/notify"
	"marketwatch/internal/pipeline"
	"marketwatch/internal/scheduler"
	"marketwatch/internal/transform"
)

// newRunCmd creates the run command.
func newRunCmd(app *App) *cobra.Command {
	var (
		interval time.Duration
		noNotify bool
		noMirror bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch quotes, persist them and evaluate alerts",
		Long: `Run executes one pipeline cycle: fetch quotes for the configured symbols,
normalize and persist them, mirror the accepted rows to the CSV export,
evaluate threshold bands and deliver any triggered alerts.

With --interval the pipeline repeats on that interval until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			st, err := app.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			fetcher, err := fetch.NewFromConfig(app.Config.Provider, app.Logger)
			if err != nil {
				return err
			}

			var mirror *export.Mirror
			if !noMirror {
				mirror = export.NewMirror(app.Config.Storage.CSVExportPath, app.Logger)
			}

			var notifier notify.Notifier = notify.NewNoOpNotifier()
			if !noNotify {
				notifier = notify.NewMultiNotifier(app.Config.Notifications)
			}

			runner := pipeline.NewRunner(
				fetcher,
				transform.New(app.Logger),
				st,
				app.Registry,
				mirror,
				notifier,
				app.Logger,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if interval <= 0 {
				summary, err := runner.Run(ctx, app.Config.Watch.Symbols)
				if err != nil {
					return err
				}
				return printSummary(output, summary)
			}

			sched := scheduler.New(scheduler.Options{
				Interval:       interval,
				AlignToClock:   true,
				RunImmediately: true,
			}, app.Logger)

			err = sched.Run(ctx, func(ctx context.Context, _ time.Time) error {
				summary, err := runner.Run(ctx, app.Config.Watch.Symbols)
				if err != nil {
					return err
				}
				return printSummary(output, summary)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "repeat the run on this interval (e.g. 5m); 0 runs once")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "evaluate alerts but do not deliver them")
	cmd.Flags().BoolVar(&noMirror, "no-mirror", false, "skip the CSV mirror export")

	return cmd
}

func printSummary(output *Output, summary *pipeline.RunSummary) error {
	if output.IsJSON() {
		return output.JSON(summary)
	}

	output.Bold("Run Summary")
	output.Printf("  Fetched:     %d\n", summary.Fetched)
	output.Printf("  Accepted:    %d\n", summary.Accepted)
	output.Printf("  Duplicates:  %d\n", summary.Duplicates)
	output.Printf("  Invalid:     %d\n", summary.Invalid)
	output.Printf("  Alerts:      %d\n", len(summary.Alerts))
	output.Printf("  Duration:    %s\n", FormatDuration(summary.Duration))

	if len(summary.Alerts) > 0 {
		output.Println()
		table := NewTable(output, "SYMBOL", "PRICE", "BREACH", "THRESHOLD", "SEVERITY")
		for _, a := range summary.Alerts {
			table.AddRow(
				a.Symbol,
				FormatPrice(a.CurrentPrice),
				string(a.ThresholdType),
				FormatPrice(a.ThresholdValue),
				output.SeverityTag(string(a.Severity)),
			)
		}
		table.Render()
	}

	return nil
}
