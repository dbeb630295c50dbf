package fetch

import (
	"context"
	"time"

	"marketwatch/internal/models"
)

// StaticFetcher serves a fixed set of quotes. It backs dry runs and tests
// where no network provider should be touched.
type StaticFetcher struct {
	quotes map[string]models.RawQuote
}

// NewStaticFetcher creates a fetcher serving the given quotes, keyed by
// symbol. A nil map yields a fetcher that knows no symbols.
func NewStaticFetcher(quotes map[string]models.RawQuote) *StaticFetcher {
	if quotes == nil {
		quotes = make(map[string]models.RawQuote)
	}
	return &StaticFetcher{quotes: quotes}
}

// Name returns the provider name.
func (f *StaticFetcher) Name() string {
	return "static"
}

// SetQuote registers or replaces the quote served for a symbol.
func (f *StaticFetcher) SetQuote(q models.RawQuote) {
	f.quotes[q.Symbol] = q
}

// FetchQuotes returns the configured quote for each requested symbol that
// has one; unknown symbols are skipped.
func (f *StaticFetcher) FetchQuotes(ctx context.Context, symbols []string) ([]models.RawQuote, error) {
	quotes := make([]models.RawQuote, 0, len(symbols))
	for _, symbol := range symbols {
		q, ok := f.quotes[symbol]
		if !ok {
			continue
		}
		if q.Timestamp == "" {
			q.Timestamp = time.Now().UTC().Format(models.TimestampLayout)
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

var _ Fetcher = (*StaticFetcher)(nil)
