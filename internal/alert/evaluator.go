package alert

import (
	"math"

	"marketwatch/internal/models"
)

// highSeverityDeviation is the fraction of the breached bound beyond which
// an alert is graded HIGH instead of MEDIUM.
const highSeverityDeviation = 0.10

// Evaluate checks one quote against the registry and returns zero or more
// alerts. It is a pure function of its inputs: no store or network access,
// no state carried between calls. Symbols without a configured band never
// alert. The min and max checks are independent, though a valid registry
// (min < max) yields at most one alert per quote.
func Evaluate(quote models.Quote, registry *Registry) []models.Alert {
	band, ok := registry.Lookup(quote.Symbol)
	if !ok {
		return nil
	}

	var alerts []models.Alert

	if band.Min != nil && quote.Price < *band.Min {
		alerts = append(alerts, models.Alert{
			Symbol:         quote.Symbol,
			CurrentPrice:   quote.Price,
			ThresholdType:  models.BelowMinimum,
			ThresholdValue: *band.Min,
			Timestamp:      quote.Timestamp,
			Severity:       severity(quote.Price, *band.Min),
		})
	}

	if band.Max != nil && quote.Price > *band.Max {
		alerts = append(alerts, models.Alert{
			Symbol:         quote.Symbol,
			CurrentPrice:   quote.Price,
			ThresholdType:  models.AboveMaximum,
			ThresholdValue: *band.Max,
			Timestamp:      quote.Timestamp,
			Severity:       severity(quote.Price, *band.Max),
		})
	}

	return alerts
}

// EvaluateBatch applies Evaluate to each quote independently and
// concatenates the results in input order.
func EvaluateBatch(quotes []models.Quote, registry *Registry) []models.Alert {
	var all []models.Alert
	for _, q := range quotes {
		all = append(all, Evaluate(q, registry)...)
	}
	return all
}

// severity grades a breach HIGH when the price deviates from the bound by
// more than highSeverityDeviation of the bound's magnitude, MEDIUM otherwise.
func severity(price, bound float64) models.Severity {
	if math.Abs(price-bound) > highSeverityDeviation*math.Abs(bound) {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}
