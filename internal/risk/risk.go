// Package risk applies volatility targeting and regime gating to position series.
package risk

import (
	"errors"
	"fmt"
	"math"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/indicator"
)

// Errors returned by overlay validation.
var (
	ErrInvalidTarget  = errors.New("target volatility must be positive")
	ErrInvalidWindow  = errors.New("volatility window must be at least 2")
	ErrInvalidBounds  = errors.New("leverage bounds must satisfy 0 < min <= max")
	ErrInvalidPeriods = errors.New("periods per year must be positive")
	ErrLengthMismatch = errors.New("position and input series must have equal length")
)

// VolTarget configures volatility scaling.
type VolTarget struct {
	Target         float64 // annualized volatility target, e.g. 0.15
	Window         int     // rolling window for realized vol, e.g. 20
	PeriodsPerYear float64 // annualization factor, e.g. 252
	MinLeverage    float64 // lower multiplier clamp, inclusive
	MaxLeverage    float64 // upper multiplier clamp, inclusive
}

// DefaultVolTarget returns the standard daily configuration.
func DefaultVolTarget() VolTarget {
	return VolTarget{
		Target:         0.15,
		Window:         20,
		PeriodsPerYear: 252,
		MinLeverage:    0.25,
		MaxLeverage:    3.0,
	}
}

// Validate checks the configuration.
func (v VolTarget) Validate() error {
	if !(v.Target > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, v.Target)
	}
	if v.Window < 2 {
		return fmt.Errorf("%w: %d", ErrInvalidWindow, v.Window)
	}
	if !(v.PeriodsPerYear > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidPeriods, v.PeriodsPerYear)
	}
	if !(v.MinLeverage > 0) || v.MinLeverage > v.MaxLeverage {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidBounds, v.MinLeverage, v.MaxLeverage)
	}
	return nil
}

// RealizedVol returns annualized rolling volatility of returns.
// It is undefined until Window defined returns are available.
func RealizedVol(returns domain.Series, window int, periodsPerYear float64) domain.Series {
	std := indicator.RollingStd(returns, window)
	factor := math.Sqrt(periodsPerYear)
	for i, v := range std {
		if domain.IsDefined(v) {
			std[i] = v * factor
		}
	}
	return std
}

// Multiplier returns the clamped leverage multiplier per step.
// Zero realized vol clamps to MaxLeverage.
func Multiplier(returns domain.Series, v VolTarget) domain.Series {
	vol := RealizedVol(returns, v.Window, v.PeriodsPerYear)
	out := domain.NewUndefinedSeries(len(vol))
	for i, sigma := range vol {
		if !domain.IsDefined(sigma) {
			continue
		}
		m := v.MaxLeverage
		if sigma > 0 {
			m = v.Target / sigma
		}
		out[i] = clamp(m, v.MinLeverage, v.MaxLeverage)
	}
	return out
}

// Scale multiplies position by the volatility-target multiplier. Steps where
// the multiplier is undefined produce an undefined position.
func Scale(position, returns domain.Series, v VolTarget) (domain.Series, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if len(position) != len(returns) {
		return nil, fmt.Errorf("%w: %d positions, %d returns",
			ErrLengthMismatch, len(position), len(returns))
	}
	mult := Multiplier(returns, v)
	out := domain.NewUndefinedSeries(len(position))
	for i := range position {
		if !domain.IsDefined(mult[i]) || !domain.IsDefined(position[i]) {
			continue
		}
		out[i] = position[i] * mult[i]
	}
	return out, nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
