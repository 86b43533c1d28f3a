package strategy

import (
	"fmt"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/indicator"
)

// MACrossoverStrategy is long while the short SMA is above the long SMA.
type MACrossoverStrategy struct {
	ShortWindow int
	LongWindow  int
}

// NewMACrossoverStrategy creates a moving-average crossover strategy.
func NewMACrossoverStrategy(shortWindow, longWindow int) *MACrossoverStrategy {
	return &MACrossoverStrategy{ShortWindow: shortWindow, LongWindow: longWindow}
}

// ID returns "{s}_{l}_ma_crossover".
func (s *MACrossoverStrategy) ID() string {
	return fmt.Sprintf("%d_%d_ma_crossover", s.ShortWindow, s.LongWindow)
}

// Family returns ma_crossover.
func (s *MACrossoverStrategy) Family() Family {
	return FamilyMACrossover
}

// Signal compares the averages as of t-1.
func (s *MACrossoverStrategy) Signal(prices domain.Series) domain.Series {
	short := indicator.Shift(indicator.SMA(prices, s.ShortWindow), 1)
	long := indicator.Shift(indicator.SMA(prices, s.LongWindow), 1)
	out := domain.NewUndefinedSeries(len(prices))
	for t := range prices {
		if !domain.IsDefined(short[t]) || !domain.IsDefined(long[t]) {
			continue
		}
		out[t] = sign(short[t] - long[t])
	}
	return out
}
