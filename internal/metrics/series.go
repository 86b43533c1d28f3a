package metrics

import (
	"math"

	"walkforward-lab/internal/domain"
)

// GrowthCurve returns the cumulative growth of 1 unit. Entries with an
// undefined return are undefined and leave the curve unchanged.
func GrowthCurve(returns domain.Series) domain.Series {
	out := domain.NewUndefinedSeries(len(returns))
	growth := 1.0
	for t, v := range returns {
		if domain.IsDefined(v) {
			growth *= 1 + v
			out[t] = growth
		}
	}
	return out
}

// DrawdownSeries returns (cum - peak)/peak per defined entry.
func DrawdownSeries(returns domain.Series) domain.Series {
	growth := GrowthCurve(returns)
	out := domain.NewUndefinedSeries(len(returns))
	peak := math.Inf(-1)
	for t, g := range growth {
		if !domain.IsDefined(g) {
			continue
		}
		peak = math.Max(peak, g)
		if peak != 0 {
			out[t] = (g - peak) / peak
		}
	}
	return out
}

// RollingSharpe returns the annualized Sharpe ratio over a trailing window
// of window entries. A window containing undefined returns is undefined; a
// window with zero variance reads 0.
func RollingSharpe(returns domain.Series, window int, tradingDays float64) domain.Series {
	out := domain.NewUndefinedSeries(len(returns))
	if window < 2 {
		return out
	}
	for t := window - 1; t < len(returns); t++ {
		w := returns[t+1-window : t+1]
		if w.CountDefined() != window {
			continue
		}
		std := computeStddev(w, computeMean(w))
		if std == 0 {
			out[t] = 0
			continue
		}
		out[t] = computeMean(w) / std * math.Sqrt(tradingDays)
	}
	return out
}
