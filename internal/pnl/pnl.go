// Package pnl converts managed positions into net-of-cost strategy returns.
package pnl

import (
	"errors"
	"fmt"
	"math"

	"walkforward-lab/internal/domain"
)

// Errors returned by Compute.
var (
	ErrLengthMismatch = errors.New("position and return series must have equal length")
	ErrNegativeCost   = errors.New("transaction cost rate must be non-negative")
)

// DefaultCost is the flat per-unit-turnover cost rate.
const DefaultCost = 0.00015

// Turnover returns |position[t] - position[t-1]| per step. An undefined
// position counts as flat, so entering from nothing is charged.
func Turnover(position domain.Series) domain.Series {
	out := make(domain.Series, len(position))
	prev := 0.0
	for t, p := range position {
		cur := p
		if !domain.IsDefined(cur) {
			cur = 0
		}
		out[t] = math.Abs(cur - prev)
		prev = cur
	}
	return out
}

// Compute returns pnl[t] = position[t]*returns[t] - tcost*|position[t]-position[t-1]|.
// pnl[t] is undefined when position[t] or returns[t] is undefined.
func Compute(position, returns domain.Series, tcost float64) (domain.Series, error) {
	if len(position) != len(returns) {
		return nil, fmt.Errorf("%w: %d positions, %d returns",
			ErrLengthMismatch, len(position), len(returns))
	}
	if tcost < 0 || math.IsNaN(tcost) {
		return nil, fmt.Errorf("%w: %v", ErrNegativeCost, tcost)
	}

	turnover := Turnover(position)
	out := domain.NewUndefinedSeries(len(position))
	for t := range position {
		if !domain.IsDefined(position[t]) || !domain.IsDefined(returns[t]) {
			continue
		}
		out[t] = position[t]*returns[t] - tcost*turnover[t]
	}
	return out, nil
}
