// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"marketwatch/internal/models"
)

// SaveResult describes the outcome of one SaveBatch call. Accepted holds
// exactly the rows newly persisted, in submission order, so callers can
// mirror them without re-querying.
type SaveResult struct {
	Accepted   []models.Quote
	Duplicates int
	Dropped    int
}

// AcceptedCount returns the number of rows newly persisted.
func (r *SaveResult) AcceptedCount() int {
	return len(r.Accepted)
}

// QuoteStore defines the interface for durable, deduplicated quote persistence.
type QuoteStore interface {
	// SaveBatch persists a batch of validated quotes. Rows whose
	// (symbol, timestamp) pair already exists are absorbed silently,
	// counted as duplicates and excluded from the accepted set.
	SaveBatch(ctx context.Context, quotes []models.Quote) (*SaveResult, error)

	// LatestPrices returns the most recent quote per distinct symbol.
	LatestPrices(ctx context.Context) ([]models.Quote, error)

	// History returns quotes ordered by timestamp descending, optionally
	// filtered and capped by the filter.
	History(ctx context.Context, filter QuoteFilter) ([]models.Quote, error)

	// Statistics reports aggregate counts over the stored data.
	Statistics(ctx context.Context) (*Stats, error)

	// Prune deletes rows whose timestamp predates now minus olderThanDays
	// days and returns the number of rows removed.
	Prune(ctx context.Context, olderThanDays int) (int, error)

	// Lifecycle
	Close() error
}

// QuoteFilter represents filters for querying quote history.
type QuoteFilter struct {
	Symbol string
	Limit  int
}

// Stats represents aggregate statistics over the stored quotes.
//
// RunAccepted counts rows accepted through this store handle since it was
// opened. It is an in-process counter, not a persisted value: a fresh
// handle (such as the stats CLI command in its own process) reports 0.
type Stats struct {
	TotalCount      int            `json:"total_count"`
	DistinctSymbols int            `json:"distinct_symbols"`
	Earliest        string         `json:"earliest_timestamp"`
	Latest          string         `json:"latest_timestamp"`
	PerSymbol       map[string]int `json:"per_symbol"`
	RunAccepted     int            `json:"run_accepted,omitempty"`
}
