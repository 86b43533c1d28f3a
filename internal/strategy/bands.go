package strategy

import (
	"fmt"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/indicator"
)

// BollingerStrategy fades closes outside a band of BandWidth standard
// deviations around the Window SMA: long below the lower band, short above
// the upper band, holding the last side in between.
type BollingerStrategy struct {
	Window    int
	BandWidth float64
}

// NewBollingerStrategy creates a Bollinger band reversion strategy.
func NewBollingerStrategy(window int, bandWidth float64) *BollingerStrategy {
	return &BollingerStrategy{Window: window, BandWidth: bandWidth}
}

// ID returns "{w}D_bollinger".
func (s *BollingerStrategy) ID() string {
	return fmt.Sprintf("%dD_bollinger", s.Window)
}

// Family returns bollinger.
func (s *BollingerStrategy) Family() Family {
	return FamilyBollinger
}

// Signal compares the t-1 close with the t-1 bands.
func (s *BollingerStrategy) Signal(prices domain.Series) domain.Series {
	mid := indicator.SMA(prices, s.Window)
	std := indicator.RollingStd(prices, s.Window)
	prev := indicator.Shift(prices, 1)
	midPrev := indicator.Shift(mid, 1)
	stdPrev := indicator.Shift(std, 1)

	triggers := domain.NewUndefinedSeries(len(prices))
	for t := range prices {
		if !domain.IsDefined(prev[t]) || !domain.IsDefined(midPrev[t]) || !domain.IsDefined(stdPrev[t]) {
			continue
		}
		lower := midPrev[t] - s.BandWidth*stdPrev[t]
		upper := midPrev[t] + s.BandWidth*stdPrev[t]
		switch {
		case prev[t] < lower:
			triggers[t] = 1
		case prev[t] > upper:
			triggers[t] = -1
		}
	}
	return latched(triggers)
}

// RSIStrategy buys oversold and sells overbought readings of a simple-average
// relative strength index, holding the last side in between.
type RSIStrategy struct {
	Window     int
	Oversold   float64
	Overbought float64
}

// NewRSIStrategy creates an RSI reversion strategy.
func NewRSIStrategy(window int, oversold, overbought float64) *RSIStrategy {
	return &RSIStrategy{Window: window, Oversold: oversold, Overbought: overbought}
}

// ID returns "{w}D_rsi".
func (s *RSIStrategy) ID() string {
	return fmt.Sprintf("%dD_rsi", s.Window)
}

// Family returns rsi.
func (s *RSIStrategy) Family() Family {
	return FamilyRSI
}

// Signal reads the RSI as of t-1.
func (s *RSIStrategy) Signal(prices domain.Series) domain.Series {
	rsi := indicator.Shift(RSI(prices, s.Window), 1)
	triggers := domain.NewUndefinedSeries(len(prices))
	for t, v := range rsi {
		switch {
		case !domain.IsDefined(v):
		case v < s.Oversold:
			triggers[t] = 1
		case v > s.Overbought:
			triggers[t] = -1
		}
	}
	return latched(triggers)
}

// RSI computes 100 - 100/(1+avgGain/avgLoss) with simple rolling averages.
// A window with losses of zero reads 100; a window without any movement is
// undefined.
func RSI(prices domain.Series, window int) domain.Series {
	delta := indicator.Diff(prices)
	gains := make(domain.Series, len(delta))
	losses := make(domain.Series, len(delta))
	for t, d := range delta {
		switch {
		case !domain.IsDefined(d):
			gains[t], losses[t] = domain.Undefined, domain.Undefined
		case d > 0:
			gains[t] = d
		case d < 0:
			losses[t] = -d
		}
	}
	avgGain := indicator.SMA(gains, window)
	avgLoss := indicator.SMA(losses, window)

	out := domain.NewUndefinedSeries(len(prices))
	for t := range out {
		g, l := avgGain[t], avgLoss[t]
		if !domain.IsDefined(g) || !domain.IsDefined(l) {
			continue
		}
		switch {
		case l == 0 && g == 0:
		case l == 0:
			out[t] = 100
		default:
			out[t] = 100 - 100/(1+g/l)
		}
	}
	return out
}
