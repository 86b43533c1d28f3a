package strategy

import (
	"fmt"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/indicator"
)

// BreakoutStrategy follows closes that reach the Window-bar high or low
// (Donchian channel), holding the last side in between.
type BreakoutStrategy struct {
	Window int
}

// NewBreakoutStrategy creates a channel breakout strategy.
func NewBreakoutStrategy(window int) *BreakoutStrategy {
	return &BreakoutStrategy{Window: window}
}

// ID returns "{w}D_breakout".
func (s *BreakoutStrategy) ID() string {
	return fmt.Sprintf("%dD_breakout", s.Window)
}

// Family returns breakout.
func (s *BreakoutStrategy) Family() Family {
	return FamilyBreakout
}

// Signal compares the t-1 close with the channel as of t-2.
func (s *BreakoutStrategy) Signal(prices domain.Series) domain.Series {
	prev := indicator.Shift(prices, 1)
	high := indicator.Shift(indicator.RollingMax(prices, s.Window), 2)
	low := indicator.Shift(indicator.RollingMin(prices, s.Window), 2)

	triggers := domain.NewUndefinedSeries(len(prices))
	for t := range prices {
		if !domain.IsDefined(prev[t]) {
			continue
		}
		switch {
		case domain.IsDefined(high[t]) && prev[t] >= high[t]:
			triggers[t] = 1
		case domain.IsDefined(low[t]) && prev[t] <= low[t]:
			triggers[t] = -1
		}
	}
	return latched(triggers)
}
