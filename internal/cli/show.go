package cli

import (
	"github.com/spf13/cobra"

	"marketwatch/internal/store"
)

// newLatestCmd creates the latest command.
func newLatestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent stored price per symbol",
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

			if output.IsJSON() {
				return output.JSON(quotes)
			}

			if len(quotes) == 0 {
				output.Dim("No quotes stored yet. Run 'marketwatch run' first.")
				return nil
			}

			table := NewTable(output, "SYMBOL", "PRICE", "VOLUME", "TIMESTAMP", "PROVIDER")
			for _, q := range quotes {
				table.AddRow(
					q.Symbol,
					FormatPrice(q.Price),
					FormatVolume(q.Volume),
					q.Timestamp,
					q.Provider,
				)
			}
			table.Render()
			return nil
		},
	}
}

// newHistoryCmd creates the history command.
func newHistoryCmd(app *App) *cobra.Command {
	var (
		symbol string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored quote history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			st, err := app.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			quotes, err := st.History(cmd.Context(), store.QuoteFilter{
				Symbol: symbol,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(quotes)
			}

			if len(quotes) == 0 {
				output.Dim("No matching quotes.")
				return nil
			}

			table := NewTable(output, "SYMBOL", "PRICE", "VOLUME", "TIMESTAMP", "PROVIDER")
			for _, q := range quotes {
				table.AddRow(
					q.Symbol,
					FormatPrice(q.Price),
					FormatVolume(q.Volume),
					q.Timestamp,
					q.Provider,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows to show (0 for all)")

	return cmd
}
