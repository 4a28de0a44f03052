package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"yield-advisor/internal/advisory"
	"yield-advisor/internal/encoding"
	"yield-advisor/internal/features"
)

// YieldUnit is the unit of every yield value the API returns.
const YieldUnit = "tonnes"

// AreaUnit is the unit of the cultivated area in a request.
const AreaUnit = "acres"

// Range is an inclusive plausible interval for a numeric input.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Plausible ranges accepted by the request layer. The core does not enforce them.
var (
	TemperatureRange  = Range{Min: 0, Max: 50}
	HumidityRange     = Range{Min: 0, Max: 100}
	SoilMoistureRange = Range{Min: 0, Max: 100}
	CropYearRange     = Range{Min: 2000, Max: 3000}
	AreaRange         = Range{Min: 0.1, Max: 1000}
)

// Ranges lists the plausible ranges by input name, as reported by the catalog endpoint.
func Ranges() map[string]Range {
	return map[string]Range{
		"temperature":   TemperatureRange,
		"humidity":      HumidityRange,
		"soil_moisture": SoilMoistureRange,
		"crop_year":     CropYearRange,
		"area":          AreaRange,
	}
}

// PredictionRequest is one crop yield prediction query
type PredictionRequest struct {
	Location     string  `json:"location"`
	SubLocation  string  `json:"sublocation"`
	Season       string  `json:"season"`
	Crop         string  `json:"crop"`
	CropYear     int     `json:"crop_year"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	SoilMoisture float64 `json:"soil_moisture"`
	Area         float64 `json:"area"`
}

// Validate checks required fields and plausible ranges. The first problem is returned.
func (r *PredictionRequest) Validate() error {
	required := []struct {
		field, value string
	}{
		{"location", r.Location},
		{"sublocation", r.SubLocation},
		{"season", r.Season},
		{"crop", r.Crop},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Value: f.value, Message: f.field + " is required"}
		}
	}

	if !CropYearRange.Contains(float64(r.CropYear)) {
		return outOfRange("crop_year", float64(r.CropYear), CropYearRange)
	}

	return validateReadings(r.Readings())
}

// Selection returns the categorical part of the request.
func (r *PredictionRequest) Selection() encoding.Selection {
	return encoding.Selection{
		Location:    r.Location,
		SubLocation: r.SubLocation,
		Season:      r.Season,
		Crop:        r.Crop,
	}
}

// Readings returns the numeric part of the request.
func (r *PredictionRequest) Readings() features.Readings {
	return features.Readings{
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		SoilMoisture: r.SoilMoisture,
		Area:         r.Area,
	}
}

// PredictionResponse is the result of a successful prediction
type PredictionResponse struct {
	ID       string             `json:"id"`
	Yield    float64            `json:"yield"`
	Unit     string             `json:"unit"`
	Display  string             `json:"display"`
	Features map[string]float64 `json:"features"`
	Advisory advisory.Result    `json:"advisory"`
	Inputs   PredictionRequest  `json:"inputs"`
}

// AdviseRequest asks for advice on a yield obtained elsewhere
type AdviseRequest struct {
	Yield        float64 `json:"yield"`
	Crop         string  `json:"crop"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	SoilMoisture float64 `json:"soil_moisture"`
}

// Validate rejects non-finite yields and implausible readings. Unknown crops are allowed.
func (r *AdviseRequest) Validate() error {
	if math.IsNaN(r.Yield) || math.IsInf(r.Yield, 0) {
		return &ValidationError{Field: "yield", Value: formatFloat(r.Yield), Message: "yield must be a finite number"}
	}
	readings := r.Readings()
	readings.Area = AreaRange.Min
	return validateReadings(readings)
}

// Readings returns the environmental readings of the request.
func (r *AdviseRequest) Readings() features.Readings {
	return features.Readings{
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		SoilMoisture: r.SoilMoisture,
	}
}

// AdviseResponse is the advisory for a supplied yield
type AdviseResponse struct {
	Yield    float64         `json:"yield"`
	Display  string          `json:"display"`
	Advisory advisory.Result `json:"advisory"`
}

// FormatArea renders a cultivated area with its unit, e.g. "4.0 acres".
func FormatArea(area float64) string {
	return fmt.Sprintf("%.1f %s", area, AreaUnit)
}

// FormatYield renders a yield the way it is shown to users, e.g. "2.35 Tons" for 2.346.
func FormatYield(yield float64) string {
	return fmt.Sprintf("%.2f Tons", yield)
}

func validateReadings(in features.Readings) error {
	checks := []struct {
		field string
		value float64
		rng   Range
	}{
		{"temperature", in.Temperature, TemperatureRange},
		{"humidity", in.Humidity, HumidityRange},
		{"soil_moisture", in.SoilMoisture, SoilMoistureRange},
		{"area", in.Area, AreaRange},
	}
	for _, c := range checks {
		if !c.rng.Contains(c.value) {
			return outOfRange(c.field, c.value, c.rng)
		}
	}
	return nil
}

func outOfRange(field string, v float64, r Range) error {
	return &ValidationError{
		Field:   field,
		Value:   formatFloat(v),
		Message: fmt.Sprintf("%s must be between %s and %s", field, formatFloat(r.Min), formatFloat(r.Max)),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ValidationError represents a request validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
