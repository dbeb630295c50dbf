// Package transform normalizes raw provider records into validated quotes.
package transform

import (
	"time"

	"github.com/rs/zerolog"

	"marketwatch/internal/models"
)

// timestampLayouts are the raw forms providers are known to emit.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Transformer converts raw records into the canonical Quote shape: symbols
// upper-cased, prices validated, volumes defaulted, timestamps normalized
// to UTC RFC3339. One malformed record is rejected and logged; it never
// aborts the rest of the batch.
type Transformer struct {
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a Transformer.
func New(logger zerolog.Logger) *Transformer {
	return &Transformer{
		logger: logger.With().Str("component", "transform").Logger(),
		now:    time.Now,
	}
}

// Normalize validates and canonicalizes a batch. It returns the clean
// quotes and the number of records rejected.
func (t *Transformer) Normalize(raw []models.RawQuote) ([]models.Quote, int) {
	quotes := make([]models.Quote, 0, len(raw))
	rejected := 0

	processedAt := t.now().UTC()
	for _, r := range raw {
		ts, err := parseTimestamp(r.Timestamp, processedAt)
		if err != nil {
			t.logger.Warn().Str("symbol", r.Symbol).Str("timestamp", r.Timestamp).
				Msg("Rejecting record with malformed timestamp")
			rejected++
			continue
		}

		q, err := models.NewQuote(r.Symbol, r.Price, r.Volume, ts, r.Provider, processedAt)
		if err != nil {
			t.logger.Warn().Err(err).Str("symbol", r.Symbol).Msg("Rejecting invalid record")
			rejected++
			continue
		}
		quotes = append(quotes, q)
	}

	return quotes, rejected
}

// parseTimestamp parses a raw timestamp, falling back to the processing
// time when the provider omitted one entirely.
func parseTimestamp(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, raw)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
