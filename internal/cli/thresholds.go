package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"marketwatch/internal/alert"
)

// newThresholdsCmd creates the thresholds command.
func newThresholdsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Show configured threshold bands",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			bands := app.Registry.Bands()
			sort.Slice(bands, func(i, j int) bool { return bands[i].Symbol < bands[j].Symbol })

			if output.IsJSON() {
				return output.JSON(bands)
			}

			if len(bands) == 0 {
				output.Dim("No threshold bands configured.")
				return nil
			}

			table := NewTable(output, "SYMBOL", "MIN", "MAX")
			for _, b := range bands {
				table.AddRow(b.Symbol, formatBound(b.Min), formatBound(b.Max))
			}
			table.Render()
			return nil
		},
	}

	cmd.AddCommand(newThresholdsCheckCmd(app))

	return cmd
}

// newThresholdsCheckCmd creates the thresholds check command, which
// evaluates the latest stored prices against the configured bands without
// fetching anything.
func newThresholdsCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Evaluate the latest stored prices against the bands",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			st, err := app.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			quotes, err := st.LatestPrices(cmd.Context())
			if err != nil {
				return err
			}

			alerts := alert.EvaluateBatch(quotes, app.Registry)

			if output.IsJSON() {
				return output.JSON(alerts)
			}

			if len(alerts) == 0 {
				output.Success("All latest prices are within their bands")
				return nil
			}

			table := NewTable(output, "SYMBOL", "PRICE", "BREACH", "THRESHOLD", "SEVERITY")
			for _, a := range alerts {
				table.AddRow(
					a.Symbol,
					FormatPrice(a.CurrentPrice),
					string(a.ThresholdType),
					FormatPrice(a.ThresholdValue),
					output.SeverityTag(string(a.Severity)),
				)
			}
			table.Render()
			return nil
		},
	}
}

func formatBound(bound *float64) string {
	if bound == nil {
		return "-"
	}
	return FormatPrice(*bound)
}
