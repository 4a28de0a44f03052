// Package advisory turns a yield estimate into a category and human-readable guidance.
//
// Engine.Advise is total: any yield, including negative, NaN or huge values, and any
// crop string produce a complete Result through fallback text.
package advisory

import (
	"fmt"

	"yield-advisor/internal/features"
)

// Result is the advisory derived from one yield estimate.
type Result struct {
	Category      string                  `json:"category"`
	Guidance      string                  `json:"guidance"`
	CropGuidance  string                  `json:"crop_guidance"`
	Environmental []EnvironmentalAdvisory `json:"environmental"`
	HarvestWindow string                  `json:"harvest_window"`
	Fertilizer    string                  `json:"fertilizer"`
}

// Engine applies an immutable Rules set.
type Engine struct {
	rules Rules
}

// NewEngine validates rules and takes a private copy of the slices.
func NewEngine(rules Rules) (*Engine, error) {
	if len(rules.Ladder) == 0 {
		return nil, fmt.Errorf("rules have no ladder")
	}
	if _, err := NewLadder(rules.Ladder...); err != nil {
		return nil, fmt.Errorf("invalid ladder: %w", err)
	}
	for _, r := range rules.Environmental {
		if err := r.validate(); err != nil {
			return nil, err
		}
	}
	if rules.Harvest.Fallback() == "" || rules.Fertilizer.Fallback() == "" {
		return nil, fmt.Errorf("reference tables need fallback text")
	}

	rules.Ladder = append(Ladder(nil), rules.Ladder...)
	rules.Environmental = append([]EnvironmentalRule(nil), rules.Environmental...)

	return &Engine{rules: rules}, nil
}

// Default returns an Engine over DefaultRules.
func Default() *Engine {
	e, err := NewEngine(DefaultRules())
	if err != nil {
		panic("advisory: " + err.Error())
	}
	return e
}

// Ladder returns the yield ladder in use.
func (e *Engine) Ladder() Ladder {
	return append(Ladder(nil), e.rules.Ladder...)
}

// Advise derives the advisory for a yield estimate.
func (e *Engine) Advise(yield float64, crop string, readings features.Readings) Result {
	band := e.rules.Ladder.Classify(yield)

	return Result{
		Category:      band.Category,
		Guidance:      band.Guidance,
		CropGuidance:  band.Elaborations.Lookup(crop),
		Environmental: e.Environmental(readings),
		HarvestWindow: e.rules.Harvest.Lookup(crop),
		Fertilizer:    e.rules.Fertilizer.Lookup(crop),
	}
}

// Environmental evaluates every environmental rule independently, in rule order.
// The result is never nil.
func (e *Engine) Environmental(readings features.Readings) []EnvironmentalAdvisory {
	out := make([]EnvironmentalAdvisory, 0, len(e.rules.Environmental))
	for _, r := range e.rules.Environmental {
		if r.Fires(readings) {
			out = append(out, EnvironmentalAdvisory{Kind: r.Kind, Message: r.Message})
		}
	}
	return out
}
