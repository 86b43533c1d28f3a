package risk

import (
	"fmt"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/indicator"
)

// Regime selects which market state a strategy family may trade in.
type Regime string

// Regimes.
const (
	RegimeAny      Regime = "any"
	RegimeTrending Regime = "trending"
	RegimeSideways Regime = "sideways"
)

// DefaultRegimeWindow is the SMA length used to classify trend.
const DefaultRegimeWindow = 200

// Trending reports price > SMA(window). Steps where the SMA is undefined are
// not trending.
func Trending(prices domain.Series, window int) []bool {
	sma := indicator.SMA(prices, window)
	out := make([]bool, len(prices))
	for i := range prices {
		out[i] = domain.IsDefined(sma[i]) && domain.IsDefined(prices[i]) && prices[i] > sma[i]
	}
	return out
}

// Sideways is the complement of Trending.
func Sideways(prices domain.Series, window int) []bool {
	trending := Trending(prices, window)
	out := make([]bool, len(trending))
	for i, v := range trending {
		out[i] = !v
	}
	return out
}

// Classify returns the regime mask for r. RegimeAny permits every step.
func Classify(r Regime, prices domain.Series, window int) []bool {
	switch r {
	case RegimeTrending:
		return Trending(prices, window)
	case RegimeSideways:
		return Sideways(prices, window)
	default:
		out := make([]bool, len(prices))
		for i := range out {
			out[i] = true
		}
		return out
	}
}

// Lag shifts a regime mask by one step: out[t] = regime[t-1], out[0] = false.
func Lag(regime []bool) []bool {
	out := make([]bool, len(regime))
	for t := 1; t < len(regime); t++ {
		out[t] = regime[t-1]
	}
	return out
}

// Gate zeroes position wherever the previous step's regime was false.
// Undefined positions stay undefined where the gate is open.
func Gate(position domain.Series, regime []bool) (domain.Series, error) {
	if len(position) != len(regime) {
		return nil, fmt.Errorf("%w: %d positions, %d regime flags",
			ErrLengthMismatch, len(position), len(regime))
	}
	permitted := Lag(regime)
	out := make(domain.Series, len(position))
	for t := range position {
		if permitted[t] {
			out[t] = position[t]
		}
	}
	return out, nil
}
