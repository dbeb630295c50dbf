// Package pipeline orchestrates one fetch-persist-alert cycle.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"marketwatch/internal/alert"
	"marketwatch/internal/export"
	"marketwatch/internal/fetch"
	"marketwatch/internal/logging"
	"marketwatch/internal/models"
	"marketwatch/internal/notify"
	"marketwatch/internal/store"
	"marketwatch/internal/transform"
)

// RunSummary reports the outcome of one pipeline run.
type RunSummary struct {
	Fetched    int            `json:"fetched"`
	Invalid    int            `json:"invalid"`
	Accepted   int            `json:"accepted"`
	Duplicates int            `json:"duplicates"`
	Alerts     []models.Alert `json:"alerts"`
	Duration   time.Duration  `json:"duration"`
}

// Runner wires the pipeline stages together. The store is the only stage
// whose failure aborts a run; the mirror and the notifiers degrade to a
// logged error so a full database never loses data over a side channel.
type Runner struct {
	fetcher     fetch.Fetcher
	transformer *transform.Transformer
	store       store.QuoteStore
	registry    *alert.Registry
	mirror      *export.Mirror
	notifier    notify.Notifier
	logger      zerolog.Logger
}

// NewRunner creates a pipeline runner. The mirror and notifier may be nil
// to disable those stages.
func NewRunner(
	fetcher fetch.Fetcher,
	transformer *transform.Transformer,
	st store.QuoteStore,
	registry *alert.Registry,
	mirror *export.Mirror,
	notifier notify.Notifier,
	logger zerolog.Logger,
) *Runner {
	if notifier == nil {
		notifier = notify.NewNoOpNotifier()
	}
	return &Runner{
		fetcher:     fetcher,
		transformer: transformer,
		store:       st,
		registry:    registry,
		mirror:      mirror,
		notifier:    notifier,
		logger:      logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes one cycle for the given symbols: fetch, normalize, persist,
// mirror the accepted rows, evaluate thresholds over the normalized batch,
// notify.
func (r *Runner) Run(ctx context.Context, symbols []string) (*RunSummary, error) {
	start := time.Now()

	raw, err := r.fetcher.FetchQuotes(ctx, symbols)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Int("fetched", len(raw)).Str("provider", r.fetcher.Name()).Msg("Fetched raw quotes")

	quotes, rejected := r.transformer.Normalize(raw)

	result, err := r.store.SaveBatch(ctx, quotes)
	if err != nil {
		return nil, err
	}

	if r.mirror != nil && len(result.Accepted) > 0 {
		if err := r.mirror.ExportAccepted(result.Accepted); err != nil {
			r.logger.Error().Err(err).Str("path", r.mirror.Path()).Msg("Mirror export failed")
		}
	}

	// Thresholds are checked against every normalized quote, not just the
	// newly persisted ones: a price that stays out of band must alert on
	// every run even when the store absorbs the row as a duplicate.
	alerts := alert.EvaluateBatch(quotes, r.registry)
	for _, a := range alerts {
		logging.LogAlert(r.logger, a.Symbol, string(a.ThresholdType), a.CurrentPrice, a.ThresholdValue)
	}

	if len(alerts) > 0 {
		if err := r.notifier.SendAlerts(ctx, alerts); err != nil {
			r.logger.Error().Err(err).Msg("Alert delivery failed")
		}
	}

	summary := &RunSummary{
		Fetched:    len(raw),
		Invalid:    rejected + result.Dropped,
		Accepted:   result.AcceptedCount(),
		Duplicates: result.Duplicates,
		Alerts:     alerts,
		Duration:   time.Since(start),
	}
	logging.LogRun(r.logger, summary.Fetched, summary.Accepted, summary.Duplicates,
		summary.Invalid, len(summary.Alerts), summary.Duration)

	return summary, nil
}
