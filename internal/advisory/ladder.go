package advisory

import (
	"errors"
	"fmt"
	"math"
)

// Band is one rung of the yield ladder. A band covers [LowerBound, next band's LowerBound).
type Band struct {
	LowerBound float64
	Category   string
	Guidance   string
	// Elaborations holds crop-specific advice, with generic advice as its fallback.
	Elaborations Table
}

// Ladder is an ascending list of bands. The first band starts at -Inf and the
// last one is open-ended, so every value lands in exactly one band.
type Ladder []Band

// NewLadder validates bands and returns them as a Ladder.
func NewLadder(bands ...Band) (Ladder, error) {
	if len(bands) == 0 {
		return nil, errors.New("ladder needs at least one band")
	}
	if !math.IsInf(bands[0].LowerBound, -1) {
		return nil, fmt.Errorf("first band must start at -Inf, got %v", bands[0].LowerBound)
	}
	for i, b := range bands {
		if b.Category == "" || b.Guidance == "" {
			return nil, fmt.Errorf("band %d needs a category and guidance", i)
		}
		if i > 0 && !(b.LowerBound > bands[i-1].LowerBound) {
			return nil, fmt.Errorf("band %d lower bound %v is not above %v", i, b.LowerBound, bands[i-1].LowerBound)
		}
	}
	return append(Ladder(nil), bands...), nil
}

// Classify returns the band containing yield. NaN lands in the first band.
func (l Ladder) Classify(yield float64) Band {
	chosen := l[0]
	for _, b := range l[1:] {
		if !(yield >= b.LowerBound) {
			break
		}
		chosen = b
	}
	return chosen
}

// Boundaries returns the finite lower bounds, i.e. the thresholds between bands.
func (l Ladder) Boundaries() []float64 {
	out := make([]float64, 0, len(l)-1)
	for _, b := range l[1:] {
		out = append(out, b.LowerBound)
	}
	return out
}
