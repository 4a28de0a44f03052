// Package predictor defines the opaque yield model boundary and its implementations.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"yield-advisor/internal/features"
)

// Predictor turns an assembled feature vector into an estimated yield in tonnes.
// Implementations must be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, v features.Vector) (float64, error)
}

// ErrUnavailable is matched by every UnavailableError.
var ErrUnavailable = errors.New("predictor unavailable")

// UnavailableError reports that no usable estimate could be obtained.
type UnavailableError struct {
	// Reason is a short metric-friendly label: "timeout", "transport", "status", "decode", "non_finite".
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("predictor unavailable (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("predictor unavailable (%s)", e.Reason)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnavailable) hold.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// IsTransient returns true as the same request may succeed later
func (e *UnavailableError) IsTransient() bool {
	return true
}

// Reason extracts the failure reason of err, or "unknown".
func Reason(err error) string {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	return "unknown"
}

// checkFinite rejects NaN and infinite estimates, which the advisory ladder would
// otherwise classify without complaint.
func checkFinite(y float64) (float64, error) {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, &UnavailableError{Reason: "non_finite", Err: fmt.Errorf("model returned %v", y)}
	}
	return y, nil
}

// Func adapts a function to the Predictor interface.
type Func func(ctx context.Context, v features.Vector) (float64, error)

// Predict calls f and applies the finiteness check.
func (f Func) Predict(ctx context.Context, v features.Vector) (float64, error) {
	y, err := f(ctx, v)
	if err != nil {
		return 0, err
	}
	return checkFinite(y)
}
