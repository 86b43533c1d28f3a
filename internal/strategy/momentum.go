package strategy

import (
	"fmt"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/indicator"
)

// MomentumStrategy goes long when the trailing compounded return is positive.
type MomentumStrategy struct {
	Lookback int  // trailing window in bars
	Inverted bool // mean-reversion variant: short strength, long weakness
}

// NewMomentumStrategy creates a trend-following strategy.
func NewMomentumStrategy(lookback int) *MomentumStrategy {
	return &MomentumStrategy{Lookback: lookback}
}

// NewMeanReversionStrategy creates the inverted momentum strategy.
func NewMeanReversionStrategy(lookback int) *MomentumStrategy {
	return &MomentumStrategy{Lookback: lookback, Inverted: true}
}

// ID returns "{m}D_momentum" or "{m}D_meanrev".
func (s *MomentumStrategy) ID() string {
	if s.Inverted {
		return fmt.Sprintf("%dD_meanrev", s.Lookback)
	}
	return fmt.Sprintf("%dD_momentum", s.Lookback)
}

// Family returns momentum or meanrev.
func (s *MomentumStrategy) Family() Family {
	if s.Inverted {
		return FamilyMeanRev
	}
	return FamilyMomentum
}

// Signal uses the compounded return over the Lookback bars ending at t-1.
func (s *MomentumStrategy) Signal(prices domain.Series) domain.Series {
	trailing := indicator.Shift(indicator.RollingCompound(returnsOf(prices), s.Lookback), 1)
	out := make(domain.Series, len(trailing))
	for t, r := range trailing {
		out[t] = sign(r)
		if s.Inverted && domain.IsDefined(out[t]) {
			out[t] = -out[t]
		}
	}
	return out
}
