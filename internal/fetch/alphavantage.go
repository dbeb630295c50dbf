package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"marketwatch/internal/config"
	"marketwatch/internal/errors"
	"marketwatch/internal/models"
	"marketwatch/internal/resilience"
	"marketwatch/pkg/utils"
)

const defaultAlphaVantageURL = "https://www.alphavantage.co/query"

// AlphaVantageFetcher fetches quotes from the Alpha Vantage GLOBAL_QUOTE
// endpoint, one request per symbol.
type AlphaVantageFetcher struct {
	apiKey  string
	baseURL string
	client  *http.Client
	retry   utils.RetryConfig
	breaker *resilience.Breaker
	logger  zerolog.Logger
}

// NewAlphaVantageFetcher creates a fetcher from provider configuration.
func NewAlphaVantageFetcher(cfg config.ProviderConfig, logger zerolog.Logger) *AlphaVantageFetcher {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAlphaVantageURL
	}

	retry := utils.DefaultRetryConfig()
	if cfg.RetryAttempts > 0 {
		retry.MaxAttempts = cfg.RetryAttempts
	}
	if cfg.RetryDelay > 0 {
		retry.InitialDelay = cfg.RetryDelay
	}

	return &AlphaVantageFetcher{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		retry:   retry,
		breaker: resilience.NewBreaker("alphavantage", resilience.DefaultBreakerConfig()),
		logger:  logger.With().Str("component", "fetch").Str("provider", "alphavantage").Logger(),
	}
}

// Name returns the provider name.
func (f *AlphaVantageFetcher) Name() string {
	return "alphavantage"
}

// FetchQuotes fetches each symbol in turn. Symbols that fail after the
// bounded retries are logged and skipped. A run of failures opens the
// circuit breaker and the remaining symbols fail fast.
func (f *AlphaVantageFetcher) FetchQuotes(ctx context.Context, symbols []string) ([]models.RawQuote, error) {
	quotes := make([]models.RawQuote, 0, len(symbols))
	for _, symbol := range symbols {
		var q models.RawQuote
		err := f.breaker.Do(func() error {
			var fetchErr error
			q, fetchErr = utils.RetryWithResult(ctx, f.retry, func() (models.RawQuote, error) {
				return f.fetchOne(ctx, symbol)
			})
			return fetchErr
		})
		if err != nil {
			f.logger.Error().Err(err).Str("symbol", symbol).Msg("Failed to fetch quote, skipping symbol")
			continue
		}
		f.logger.Debug().Str("symbol", symbol).Float64("price", q.Price).Msg("Fetched quote")
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// globalQuoteResponse mirrors the GLOBAL_QUOTE payload shape.
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
		Volume string `json:"06. volume"`
	} `json:"Global Quote"`
	Note string `json:"Note"`
}

func (f *AlphaVantageFetcher) fetchOne(ctx context.Context, symbol string) (models.RawQuote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.RawQuote{}, errors.NewFetchError(f.Name(), symbol, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return models.RawQuote{}, errors.NewFetchError(f.Name(), symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.RawQuote{}, errors.NewFetchError(f.Name(), symbol,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.RawQuote{}, errors.NewFetchError(f.Name(), symbol, err)
	}

	if payload.Note != "" {
		return models.RawQuote{}, errors.NewFetchError(f.Name(), symbol, errors.ErrRateLimited)
	}
	if payload.GlobalQuote.Price == "" {
		return models.RawQuote{}, errors.NewFetchError(f.Name(), symbol,
			fmt.Errorf("empty quote payload"))
	}

	price, err := strconv.ParseFloat(payload.GlobalQuote.Price, 64)
	if err != nil {
		return models.RawQuote{}, errors.NewFetchError(f.Name(), symbol,
			fmt.Errorf("malformed price %q", payload.GlobalQuote.Price))
	}

	var volume int64
	if payload.GlobalQuote.Volume != "" {
		volume, _ = strconv.ParseInt(payload.GlobalQuote.Volume, 10, 64)
	}

	return models.RawQuote{
		Symbol:    symbol,
		Price:     price,
		Volume:    volume,
		Timestamp: time.Now().UTC().Format(models.TimestampLayout),
		Provider:  f.Name(),
	}, nil
}

var _ Fetcher = (*AlphaVantageFetcher)(nil)
