// Package alert provides threshold bands and price alert evaluation.
package alert

import (
	"strconv"
	"strings"

	"marketwatch/internal/errors"
	"marketwatch/internal/models"
)

// Registry maps symbols to their configured threshold bands. It is built
// once from configuration before any run and is read-only afterwards.
type Registry struct {
	bands map[string]models.Threshold
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{bands: make(map[string]models.Threshold)}
}

// NewRegistryFromSpecs parses band specs of the form "symbol:min:max" and
// registers each one. Any malformed spec is a configuration error that
// aborts loading; partial application is never silently accepted.
func NewRegistryFromSpecs(specs []string) (*Registry, error) {
	r := NewRegistry()
	for _, spec := range specs {
		band, err := ParseBand(spec)
		if err != nil {
			return nil, err
		}
		if err := r.Register(band.Symbol, band.Min, band.Max); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ParseBand parses one "symbol:min:max" spec. Either bound may be empty to
// mean "no bound on that side".
func ParseBand(spec string) (models.Threshold, error) {
	parts := strings.Split(strings.TrimSpace(spec), ":")
	if len(parts) != 3 {
		return models.Threshold{}, errors.NewConfigError("watch.thresholds",
			"band must have the form symbol:min:max, got "+strconv.Quote(spec))
	}

	symbol := strings.ToUpper(strings.TrimSpace(parts[0]))
	if symbol == "" {
		return models.Threshold{}, errors.NewConfigError("watch.thresholds",
			"band symbol must not be empty in "+strconv.Quote(spec))
	}

	parseBound := func(raw string) (*float64, error) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.NewConfigError("watch.thresholds",
				"band bound "+strconv.Quote(raw)+" is not a number in "+strconv.Quote(spec))
		}
		return &v, nil
	}

	min, err := parseBound(parts[1])
	if err != nil {
		return models.Threshold{}, err
	}
	max, err := parseBound(parts[2])
	if err != nil {
		return models.Threshold{}, err
	}

	return models.Threshold{Symbol: symbol, Min: min, Max: max}, nil
}

// Register adds a band for a symbol. A band with no bounds is meaningless
// and rejected; when both bounds are given, min must be strictly below max.
func (r *Registry) Register(symbol string, min, max *float64) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return errors.NewConfigError("watch.thresholds", "threshold symbol must not be empty")
	}
	if min == nil && max == nil {
		return errors.NewConfigError("watch.thresholds",
			"threshold for "+symbol+" has no bounds")
	}
	if min != nil && max != nil && *min >= *max {
		return errors.NewConfigError("watch.thresholds",
			"threshold for "+symbol+" requires min < max")
	}

	r.bands[symbol] = models.Threshold{Symbol: symbol, Min: min, Max: max}
	return nil
}

// Lookup returns the band for a symbol, if one is configured.
func (r *Registry) Lookup(symbol string) (models.Threshold, bool) {
	band, ok := r.bands[strings.ToUpper(symbol)]
	return band, ok
}

// Len returns the number of configured bands.
func (r *Registry) Len() int {
	return len(r.bands)
}

// Bands returns all configured bands, for display purposes.
func (r *Registry) Bands() []models.Threshold {
	out := make([]models.Threshold, 0, len(r.bands))
	for _, band := range r.bands {
		out = append(out, band)
	}
	return out
}
