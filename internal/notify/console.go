package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"marketwatch/internal/models"
)

// ConsoleNotifier prints triggered alerts to the terminal.
type ConsoleNotifier struct {
	writer io.Writer
}

// NewConsoleNotifier creates a console sink. A nil writer defaults to stdout.
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleNotifier{writer: w}
}

// Name returns the name of the notifier.
func (c *ConsoleNotifier) Name() string {
	return "console"
}

// SendAlerts prints the full alert batch as one block.
func (c *ConsoleNotifier) SendAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	header := color.New(color.FgYellow, color.Bold)
	fmt.Fprintln(c.writer, header.Sprintf("PRICE ALERTS TRIGGERED (%d)", len(alerts)))

	for _, a := range alerts {
		var line string
		switch a.ThresholdType {
		case models.BelowMinimum:
			line = color.RedString("%s fell below %.2f (current: %.2f)", a.Symbol, a.ThresholdValue, a.CurrentPrice)
		case models.AboveMaximum:
			line = color.GreenString("%s exceeded %.2f (current: %.2f)", a.Symbol, a.ThresholdValue, a.CurrentPrice)
		default:
			line = fmt.Sprintf("%s crossed %.2f (current: %.2f)", a.Symbol, a.ThresholdValue, a.CurrentPrice)
		}
		fmt.Fprintf(c.writer, "  %s [%s] at %s\n", line, a.Severity, a.Timestamp)
	}

	return nil
}
