package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketwatch/internal/config"
	"marketwatch/internal/models"
)

func testAlerts() []models.Alert {
	return []models.Alert{
		{
			Symbol:         "AAPL",
			CurrentPrice:   148.5,
			ThresholdType:  models.BelowMinimum,
			ThresholdValue: 150.0,
			Timestamp:      "2026-08-25T14:30:00Z",
			Severity:       models.SeverityMedium,
		},
		{
			Symbol:         "MSFT",
			CurrentPrice:   460.0,
			ThresholdType:  models.AboveMaximum,
			ThresholdValue: 400.0,
			Timestamp:      "2026-08-25T14:30:00Z",
			Severity:       models.SeverityHigh,
		},
	}
}

func TestConsoleNotifierOutput(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	c := NewConsoleNotifier(&buf)

	require.NoError(t, c.SendAlerts(context.Background(), testAlerts()))

	out := buf.String()
	assert.Contains(t, out, "PRICE ALERTS TRIGGERED (2)")
	assert.Contains(t, out, "AAPL fell below 150.00 (current: 148.50)")
	assert.Contains(t, out, "MSFT exceeded 400.00 (current: 460.00)")
	assert.Contains(t, out, "[MEDIUM]")
	assert.Contains(t, out, "[HIGH]")
}

func TestConsoleNotifierEmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleNotifier(&buf)

	require.NoError(t, c.SendAlerts(context.Background(), nil))
	assert.Empty(t, buf.String())
}

type failingSink struct{}

func (failingSink) Name() string { return "failing" }

func (failingSink) SendAlerts(ctx context.Context, alerts []models.Alert) error {
	return errors.New("boom")
}

type countingSink struct {
	calls int
}

func (s *countingSink) Name() string { return "counting" }

func (s *countingSink) SendAlerts(ctx context.Context, alerts []models.Alert) error {
	s.calls++
	return nil
}

func TestMultiNotifierDeliversDespiteFailingSink(t *testing.T) {
	counting := &countingSink{}

	mn := &MultiNotifier{}
	mn.AddSink(failingSink{})
	mn.AddSink(counting)

	err := mn.SendAlerts(context.Background(), testAlerts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
	assert.Equal(t, 1, counting.calls)
}

func TestMultiNotifierEmptyBatchSkipsSinks(t *testing.T) {
	counting := &countingSink{}
	mn := &MultiNotifier{}
	mn.AddSink(counting)

	require.NoError(t, mn.SendAlerts(context.Background(), nil))
	assert.Equal(t, 0, counting.calls)
}

func TestNewMultiNotifierFromConfig(t *testing.T) {
	mn := NewMultiNotifier(config.NotificationConfig{Console: true})
	require.Len(t, mn.sinks, 1)
	assert.Equal(t, "console", mn.sinks[0].Name())

	mn = NewMultiNotifier(config.NotificationConfig{})
	assert.Empty(t, mn.sinks)
}
