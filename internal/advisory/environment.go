package advisory

import (
	"fmt"

	"yield-advisor/internal/features"
)

// Reading selects one raw value of features.Readings.
type Reading string

const (
	ReadingTemperature  Reading = "temperature"
	ReadingHumidity     Reading = "humidity"
	ReadingSoilMoisture Reading = "soil_moisture"
)

func (r Reading) value(in features.Readings) (float64, error) {
	switch r {
	case ReadingTemperature:
		return in.Temperature, nil
	case ReadingHumidity:
		return in.Humidity, nil
	case ReadingSoilMoisture:
		return in.SoilMoisture, nil
	default:
		return 0, fmt.Errorf("unknown reading %q", r)
	}
}

// Comparison is the direction of an environmental threshold. Both are strict.
type Comparison string

const (
	Above Comparison = "above"
	Below Comparison = "below"
)

// EnvironmentalRule fires when a reading crosses its threshold.
type EnvironmentalRule struct {
	Kind       string
	Reading    Reading
	Comparison Comparison
	Threshold  float64
	Message    string
}

func (r EnvironmentalRule) validate() error {
	if r.Kind == "" || r.Message == "" {
		return fmt.Errorf("environmental rule needs a kind and message")
	}
	if _, err := r.Reading.value(features.Readings{}); err != nil {
		return fmt.Errorf("rule %s: %w", r.Kind, err)
	}
	if r.Comparison != Above && r.Comparison != Below {
		return fmt.Errorf("rule %s: unknown comparison %q", r.Kind, r.Comparison)
	}
	return nil
}

// Fires reports whether the rule applies to the readings.
func (r EnvironmentalRule) Fires(in features.Readings) bool {
	v, err := r.Reading.value(in)
	if err != nil {
		return false
	}
	switch r.Comparison {
	case Above:
		return v > r.Threshold
	case Below:
		return v < r.Threshold
	default:
		return false
	}
}

// EnvironmentalAdvisory is a fired rule.
type EnvironmentalAdvisory struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
