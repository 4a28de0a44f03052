package config

import (
	"fmt"
	"os"
	"time"

	"yield-advisor/internal/features"
)

const (
	EnvPredictorMode     = "YIELD_PREDICTOR_MODE"
	EnvPredictorEndpoint = "YIELD_PREDICTOR_ENDPOINT"
	EnvPredictorTimeout  = "YIELD_PREDICTOR_TIMEOUT"

	PredictorModeHTTP   = "http"
	PredictorModeLinear = "linear"
)

// DefaultLinearWeights and DefaultLinearIntercept give the stand-in model a
// plausible output range of a few tonnes for typical inputs.
var (
	DefaultLinearWeights   = []float64{-0.02, 0.01, 0.02, 0.004, 0.05, 0.05, 0.01, 0.05}
	DefaultLinearIntercept = 1.2
)

// PredictorConfig selects and parameterizes the yield model.
type PredictorConfig struct {
	Mode      string    `toml:"mode"`
	Endpoint  string    `toml:"endpoint"`
	Timeout   string    `toml:"timeout"`
	Weights   []float64 `toml:"weights"`
	Intercept float64   `toml:"intercept"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *PredictorConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// LinearWeights returns Weights as a fixed-width array.
func (c *PredictorConfig) LinearWeights() [features.Width]float64 {
	var w [features.Width]float64
	copy(w[:], c.Weights)
	return w
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PredictorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Weights and intercept travel together.
func (c *PredictorConfig) Merge(overlay *PredictorConfig) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if len(overlay.Weights) > 0 {
		c.Weights = append([]float64(nil), overlay.Weights...)
		c.Intercept = overlay.Intercept
	}
}

func (c *PredictorConfig) loadDefaults() {
	if c.Mode == "" {
		c.Mode = PredictorModeLinear
	}
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
	if len(c.Weights) == 0 {
		c.Weights = append([]float64(nil), DefaultLinearWeights...)
		c.Intercept = DefaultLinearIntercept
	}
}

func (c *PredictorConfig) loadEnv() {
	if v := os.Getenv(EnvPredictorMode); v != "" {
		c.Mode = v
	}
	if v := os.Getenv(EnvPredictorEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvPredictorTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *PredictorConfig) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	switch c.Mode {
	case PredictorModeHTTP:
		if c.Endpoint == "" {
			return fmt.Errorf("mode %q requires an endpoint", c.Mode)
		}
	case PredictorModeLinear:
		if len(c.Weights) != features.Width {
			return fmt.Errorf("linear mode needs %d weights, got %d", features.Width, len(c.Weights))
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}
