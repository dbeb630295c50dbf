package models

// ThresholdType identifies which bound of a threshold band was breached.
type ThresholdType string

const (
	BelowMinimum ThresholdType = "BELOW_MINIMUM"
	AboveMaximum ThresholdType = "ABOVE_MAXIMUM"
)

// Severity grades how far a price moved past its bound.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
)

// Threshold is a per-symbol monitoring band. A nil bound means that side
// is not checked. When both bounds are set, Min < Max holds.
type Threshold struct {
	Symbol string
	Min    *float64
	Max    *float64
}

// Alert is a derived, ephemeral event raised when a quote's price exits
// its configured band. Alerts are never persisted; each run re-evaluates
// the latest observations independently.
type Alert struct {
	Symbol         string        `json:"symbol"`
	CurrentPrice   float64       `json:"current_price"`
	ThresholdType  ThresholdType `json:"threshold_type"`
	ThresholdValue float64       `json:"threshold_value"`
	Timestamp      string        `json:"timestamp"`
	Severity       Severity      `json:"severity"`
}
