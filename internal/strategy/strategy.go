// Package strategy implements the raw signal generators evaluated by the
// walk-forward engine. Each generator maps a price series to a RawSignal in
// {-1, 0, +1} using only data available before the bar it signals.
package strategy

import (
	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/risk"
)

// Strategy produces a raw directional signal from prices.
type Strategy interface {
	// Signal returns one value per price, aligned to the price index.
	// Undefined values mean "no opinion yet".
	Signal(prices domain.Series) domain.Series

	// ID returns the strategy name (includes parameters), e.g. "20D_momentum".
	ID() string

	// Family returns the strategy family.
	Family() Family
}

// Family groups strategies that share a rule and a permitted regime.
type Family string

// Families.
const (
	FamilyMomentum    Family = "momentum"
	FamilyMeanRev     Family = "meanrev"
	FamilyMACrossover Family = "ma_crossover"
	FamilyBollinger   Family = "bollinger"
	FamilyRSI         Family = "rsi"
	FamilyBreakout    Family = "breakout"
)

// Regime returns the market regime the family may trade in.
// Momentum trades only trending markets, mean reversion only sideways ones.
func (f Family) Regime() risk.Regime {
	switch f {
	case FamilyMomentum:
		return risk.RegimeTrending
	case FamilyMeanRev:
		return risk.RegimeSideways
	default:
		return risk.RegimeAny
	}
}
