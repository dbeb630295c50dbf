// Package notify delivers triggered price alerts to configured sinks.
package notify

import (
	"context"
	"fmt"
	"strings"

	"marketwatch/internal/config"
	"marketwatch/internal/models"
)

// Notifier delivers one run's alerts. Sinks are called once per run with
// the full batch, never per alert.
type Notifier interface {
	Name() string
	SendAlerts(ctx context.Context, alerts []models.Alert) error
}

// MultiNotifier fans one alert batch out to several sinks. A failing sink
// does not prevent delivery to the others.
type MultiNotifier struct {
	sinks []Notifier
}

// NewMultiNotifier builds the sink set from configuration.
func NewMultiNotifier(cfg config.NotificationConfig) *MultiNotifier {
	mn := &MultiNotifier{}
	if cfg.Console {
		mn.sinks = append(mn.sinks, NewConsoleNotifier(nil))
	}
	if cfg.Email.Enabled {
		mn.sinks = append(mn.sinks, NewEmailNotifier(cfg.Email))
	}
	return mn
}

// AddSink adds a sink.
func (mn *MultiNotifier) AddSink(n Notifier) {
	mn.sinks = append(mn.sinks, n)
}

// Name returns the name of the notifier.
func (mn *MultiNotifier) Name() string {
	return "multi"
}

// SendAlerts delivers the batch to every sink.
func (mn *MultiNotifier) SendAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	var errs []string
	for _, sink := range mn.sinks {
		if err := sink.SendAlerts(ctx, alerts); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", sink.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// NoOpNotifier discards alerts (for tests and disabled notifications).
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Name returns the name of the notifier.
func (n *NoOpNotifier) Name() string {
	return "noop"
}

// SendAlerts does nothing.
func (n *NoOpNotifier) SendAlerts(ctx context.Context, alerts []models.Alert) error {
	return nil
}
