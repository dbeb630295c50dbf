package transform

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketwatch/internal/models"
)

func newTestTransformer(now time.Time) *Transformer {
	tr := New(zerolog.Nop())
	tr.now = func() time.Time { return now }
	return tr
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC)
	tr := newTestTransformer(now)

	quotes, rejected := tr.Normalize([]models.RawQuote{
		{Symbol: "aapl", Price: 175.5, Volume: 1000, Timestamp: "2026-08-25T14:30:00Z", Provider: "static"},
	})
	require.Len(t, quotes, 1)
	assert.Equal(t, 0, rejected)

	q := quotes[0]
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 175.5, q.Price)
	assert.Equal(t, "2026-08-25T14:30:00Z", q.Timestamp)
	assert.Equal(t, "2026-08-25T15:00:00Z", q.ProcessedAt)
}

func TestNormalizeTimestampLayouts(t *testing.T) {
	now := time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC)
	tr := newTestTransformer(now)

	cases := map[string]string{
		"2026-08-25T14:30:00Z":      "2026-08-25T14:30:00Z",
		"2026-08-25T14:30:00":       "2026-08-25T14:30:00Z",
		"2026-08-25 14:30:00":       "2026-08-25T14:30:00Z",
		"2026-08-25":                "2026-08-25T00:00:00Z",
		"2026-08-25T14:30:00+02:00": "2026-08-25T12:30:00Z",
	}

	for raw, want := range cases {
		quotes, rejected := tr.Normalize([]models.RawQuote{
			{Symbol: "AAPL", Price: 175.5, Timestamp: raw, Provider: "static"},
		})
		require.Len(t, quotes, 1, "timestamp %q", raw)
		assert.Equal(t, 0, rejected)
		assert.Equal(t, want, quotes[0].Timestamp, "timestamp %q", raw)
	}
}

func TestNormalizeEmptyTimestampFallsBack(t *testing.T) {
	now := time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC)
	tr := newTestTransformer(now)

	quotes, rejected := tr.Normalize([]models.RawQuote{
		{Symbol: "AAPL", Price: 175.5, Provider: "static"},
	})
	require.Len(t, quotes, 1)
	assert.Equal(t, 0, rejected)
	assert.Equal(t, "2026-08-25T15:00:00Z", quotes[0].Timestamp)
}

func TestNormalizeRejectsMalformedRecords(t *testing.T) {
	tr := newTestTransformer(time.Now().UTC())

	quotes, rejected := tr.Normalize([]models.RawQuote{
		{Symbol: "AAPL", Price: 175.5, Timestamp: "not-a-timestamp"},
		{Symbol: "", Price: 175.5, Timestamp: "2026-08-25T14:30:00Z"},
		{Symbol: "AAPL", Price: -5, Timestamp: "2026-08-25T14:30:00Z"},
		{Symbol: "AAPL", Price: 175.5, Volume: -1, Timestamp: "2026-08-25T14:30:00Z"},
		{Symbol: "MSFT", Price: 410.0, Timestamp: "2026-08-25T14:30:00Z"},
	})

	// One bad record never aborts the batch.
	require.Len(t, quotes, 1)
	assert.Equal(t, "MSFT", quotes[0].Symbol)
	assert.Equal(t, 4, rejected)
}

func TestNormalizeEmptyBatch(t *testing.T) {
	tr := newTestTransformer(time.Now().UTC())

	quotes, rejected := tr.Normalize(nil)
	assert.Empty(t, quotes)
	assert.Equal(t, 0, rejected)
}
