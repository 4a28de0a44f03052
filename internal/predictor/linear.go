package predictor

import (
	"context"

	"yield-advisor/internal/features"
)

// Linear is an in-process stand-in model: a weighted sum of the vector plus an intercept.
// It lets the service run without a model server, e.g. in demos and tests.
type Linear struct {
	Weights   [features.Width]float64
	Intercept float64
}

// NewLinear returns a Linear model with the given coefficients.
func NewLinear(weights [features.Width]float64, intercept float64) *Linear {
	return &Linear{Weights: weights, Intercept: intercept}
}

// Predict computes the weighted sum. It honours cancellation of ctx.
func (l *Linear) Predict(ctx context.Context, v features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &UnavailableError{Reason: "timeout", Err: err}
	}
	y := l.Intercept
	for i, w := range l.Weights {
		y += w * v[i]
	}
	return checkFinite(y)
}
