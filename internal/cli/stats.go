package cli

import (
	"sort"

	"github.com/spf13/cobra"
)

// newStatsCmd creates the stats command.
func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics over the stored quotes",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			st, err := app.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Statistics(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(stats)
			}

			output.Bold("Store Statistics")
			output.Printf("  Total Quotes:     %d\n", stats.TotalCount)
			output.Printf("  Distinct Symbols: %d\n", stats.DistinctSymbols)
			if stats.Earliest != "" {
				output.Printf("  Earliest:         %s\n", stats.Earliest)
				output.Printf("  Latest:           %s\n", stats.Latest)
			}

			if len(stats.PerSymbol) > 0 {
				output.Println()
				symbols := make([]string, 0, len(stats.PerSymbol))
				for s := range stats.PerSymbol {
					symbols = append(symbols, s)
				}
				sort.Strings(symbols)

				table := NewTable(output, "SYMBOL", "QUOTES")
				for _, s := range symbols {
					table.AddRow(s, FormatVolume(int64(stats.PerSymbol[s])))
				}
				table.Render()
			}

			return nil
		},
	}
}

// newPruneCmd creates the prune command.
func newPruneCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete quotes older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if days == 0 {
				days = app.Config.Storage.RetentionDays
			}
			if days <= 0 {
				output.Dim("No retention window configured; nothing to prune.")
				return nil
			}

			st, err := app.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			removed, err := st.Prune(cmd.Context(), days)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]int{"removed": removed, "older_than_days": days})
			}
			output.Success("Removed %d quotes older than %d days", removed, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "retention window in days (default: storage.retention_days)")

	return cmd
}
