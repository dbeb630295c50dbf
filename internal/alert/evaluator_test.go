package alert

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketwatch/internal/models"
)

func f(v float64) *float64 { return &v }

func mustRegistry(t *testing.T, specs ...string) *Registry {
	t.Helper()
	r, err := NewRegistryFromSpecs(specs)
	require.NoError(t, err)
	return r
}

func quote(symbol string, price float64) models.Quote {
	return models.Quote{
		Symbol:    symbol,
		Price:     price,
		Volume:    1000,
		Timestamp: "2026-08-25T14:30:00Z",
		Provider:  "static",
	}
}

func TestEvaluateBelowMinimum(t *testing.T) {
	r := mustRegistry(t, "AAPL:150.0:200.0")

	alerts := Evaluate(quote("AAPL", 148.5), r)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "AAPL", a.Symbol)
	assert.Equal(t, 148.5, a.CurrentPrice)
	assert.Equal(t, models.BelowMinimum, a.ThresholdType)
	assert.Equal(t, 150.0, a.ThresholdValue)
	assert.Equal(t, "2026-08-25T14:30:00Z", a.Timestamp)
	// 1.5 off a 150 bound is a 1% deviation, well inside the 10% band.
	assert.Equal(t, models.SeverityMedium, a.Severity)
}

func TestEvaluateAboveMaximum(t *testing.T) {
	r := mustRegistry(t, "AAPL:150.0:200.0")

	alerts := Evaluate(quote("AAPL", 230.0), r)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, models.AboveMaximum, a.ThresholdType)
	assert.Equal(t, 200.0, a.ThresholdValue)
	// 30 off a 200 bound is a 15% deviation.
	assert.Equal(t, models.SeverityHigh, a.Severity)
}

func TestEvaluateInRange(t *testing.T) {
	r := mustRegistry(t, "AAPL:150.0:200.0")

	assert.Empty(t, Evaluate(quote("AAPL", 175.0), r))
	// Prices exactly on a bound do not alert.
	assert.Empty(t, Evaluate(quote("AAPL", 150.0), r))
	assert.Empty(t, Evaluate(quote("AAPL", 200.0), r))
}

func TestEvaluateNoBandConfigured(t *testing.T) {
	r := mustRegistry(t, "AAPL:150.0:200.0")

	assert.Empty(t, Evaluate(quote("MSFT", 1.0), r))
	assert.Empty(t, Evaluate(quote("MSFT", 1e9), r))
}

func TestEvaluateOneSidedBands(t *testing.T) {
	r := mustRegistry(t, "BTC-USD:30000:", "ETH-USD::2000")

	require.Len(t, Evaluate(quote("BTC-USD", 25000), r), 1)
	assert.Empty(t, Evaluate(quote("BTC-USD", 1e12), r))

	require.Len(t, Evaluate(quote("ETH-USD", 2500), r), 1)
	assert.Empty(t, Evaluate(quote("ETH-USD", 0.01), r))
}

func TestSeverityBoundary(t *testing.T) {
	r := mustRegistry(t, "AAPL:100.0:200.0")

	// Exactly 10% below the minimum is still MEDIUM; the deviation must
	// exceed the fraction to grade HIGH.
	alerts := Evaluate(quote("AAPL", 90.0), r)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityMedium, alerts[0].Severity)

	alerts = Evaluate(quote("AAPL", 89.99), r)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
}

func TestEvaluateBatchPreservesOrder(t *testing.T) {
	r := mustRegistry(t, "AAPL:150.0:200.0", "MSFT:300.0:400.0")

	quotes := []models.Quote{
		quote("MSFT", 250.0),
		quote("AAPL", 175.0),
		quote("AAPL", 148.5),
	}

	alerts := EvaluateBatch(quotes, r)
	require.Len(t, alerts, 2)
	assert.Equal(t, "MSFT", alerts[0].Symbol)
	assert.Equal(t, "AAPL", alerts[1].Symbol)
}

// Evaluate is pure: a price inside the band never alerts, a price outside
// always alerts exactly once, regardless of the concrete values.
func TestEvaluateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("in-band prices never alert", prop.ForAll(
		func(min, width, frac float64) bool {
			max := min + width
			r := NewRegistry()
			if err := r.Register("SYM", f(min), f(max)); err != nil {
				return true
			}
			price := min + frac*width
			if price < min || price > max {
				return true
			}
			return len(Evaluate(quote("SYM", price), r)) == 0
		},
		gen.Float64Range(1, 1e6),
		gen.Float64Range(0.01, 1e6),
		gen.Float64Range(0, 1),
	))

	properties.Property("out-of-band prices alert exactly once", prop.ForAll(
		func(min, width, excess float64) bool {
			max := min + width
			r := NewRegistry()
			if err := r.Register("SYM", f(min), f(max)); err != nil {
				return true
			}

			below := Evaluate(quote("SYM", min-excess), r)
			above := Evaluate(quote("SYM", max+excess), r)

			return len(below) == 1 && below[0].ThresholdType == models.BelowMinimum &&
				len(above) == 1 && above[0].ThresholdType == models.AboveMaximum
		},
		gen.Float64Range(1, 1e6),
		gen.Float64Range(0.01, 1e6),
		gen.Float64Range(0.001, 1e6),
	))

	properties.TestingRun(t)
}
