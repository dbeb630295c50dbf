// Package fetch retrieves raw quote data from market data providers.
package fetch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"marketwatch/internal/config"
	"marketwatch/internal/models"
)

// Fetcher retrieves current quotes for a set of symbols. A per-symbol
// failure is not fatal: implementations log the failure, skip the symbol
// and return whatever they could fetch.
type Fetcher interface {
	Name() string
	FetchQuotes(ctx context.Context, symbols []string) ([]models.RawQuote, error)
}

// NewFromConfig builds the provider named in the configuration.
func NewFromConfig(cfg config.ProviderConfig, logger zerolog.Logger) (Fetcher, error) {
	switch cfg.Name {
	case "alphavantage":
		return NewAlphaVantageFetcher(cfg, logger), nil
	case "static":
		return NewStaticFetcher(nil), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
	}
}
