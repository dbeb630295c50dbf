// Package models provides domain models for the market data pipeline.
package models

import (
	"strings"
	"time"

	"marketwatch/internal/errors"
)

// TimestampLayout is the canonical textual form for quote timestamps.
// RFC3339 in UTC sorts lexicographically, which the store relies on.
const TimestampLayout = time.RFC3339

// RawQuote is one record as produced by a data provider, before
// normalization. Field values may be missing or malformed.
type RawQuote struct {
	Symbol    string
	Price     float64
	Volume    int64
	Timestamp string
	Provider  string
}

// Quote represents one validated price observation. The pair
// (Symbol, Timestamp) uniquely identifies a quote in the store.
type Quote struct {
	ID          int64   `csv:"-"`
	Symbol      string  `csv:"symbol"`
	Price       float64 `csv:"price"`
	Volume      int64   `csv:"volume"`
	Timestamp   string  `csv:"timestamp"`
	Provider    string  `csv:"provider"`
	ProcessedAt string  `csv:"processed_at"`
}

// NewQuote constructs a validated Quote. The symbol is upper-cased, the
// timestamp is normalized to UTC RFC3339 and processedAt records when the
// pipeline accepted the observation.
func NewQuote(symbol string, price float64, volume int64, timestamp time.Time, provider string, processedAt time.Time) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, errors.NewValidationError("symbol", symbol, "must not be empty")
	}
	if price <= 0 {
		return Quote{}, errors.NewValidationError("price", price, "must be positive")
	}
	if volume < 0 {
		return Quote{}, errors.NewValidationError("volume", volume, "must not be negative")
	}
	if timestamp.IsZero() {
		return Quote{}, errors.NewValidationError("timestamp", timestamp, "must be set")
	}

	return Quote{
		Symbol:      symbol,
		Price:       price,
		Volume:      volume,
		Timestamp:   timestamp.UTC().Format(TimestampLayout),
		Provider:    provider,
		ProcessedAt: processedAt.UTC().Format(TimestampLayout),
	}, nil
}

// Time parses the quote's canonical timestamp.
func (q Quote) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, q.Timestamp)
}
