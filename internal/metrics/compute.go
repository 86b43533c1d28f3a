// Package metrics derives performance statistics from a completed return
// series. Undefined entries are dropped before any computation.
package metrics

import (
	"math"

	"walkforward-lab/internal/domain"
)

// TradingDays is the default annualization factor for daily returns.
const TradingDays = 252

// DefaultRollingWindow is the window used for the rolling Sharpe series.
const DefaultRollingWindow = 126

// Compute calculates the performance summary of returns.
// Every division by zero resolves to a documented fallback:
// Sharpe 0 on zero vol, Calmar 0 on zero drawdown, profit factor +Inf when
// there are no losing periods. An empty series yields a zero summary.
func Compute(returns domain.Series, tradingDays float64) domain.PerformanceSummary {
	r := returns.Defined()
	n := len(r)
	if n == 0 {
		return domain.PerformanceSummary{}
	}

	total := computeTotalReturn(r)
	annReturn := math.Pow(1+total, tradingDays/float64(n)) - 1
	annVol := computeStddev(r, computeMean(r)) * math.Sqrt(tradingDays)
	maxDD := computeMaxDrawdown(r)

	best, worst := r[0], r[0]
	for _, v := range r[1:] {
		best = math.Max(best, v)
		worst = math.Min(worst, v)
	}

	return domain.PerformanceSummary{
		TotalReturn:      total,
		AnnualizedReturn: annReturn,
		AnnualizedVol:    annVol,
		Sharpe:           safeDiv(annReturn, annVol),
		MaxDrawdown:      maxDD,
		Calmar:           safeDiv(annReturn, math.Abs(maxDD)),
		WinRate:          computeWinRate(r),
		ProfitFactor:     computeProfitFactor(r),
		BestPeriod:       best,
		WorstPeriod:      worst,
		Observations:     n,
	}
}

// computeTotalReturn compounds returns: prod(1+r) - 1.
func computeTotalReturn(r []float64) float64 {
	g := 1.0
	for _, v := range r {
		g *= 1 + v
	}
	return g - 1
}

// computeMean calculates the arithmetic mean.
func computeMean(r []float64) float64 {
	if len(r) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range r {
		sum += v
	}
	return sum / float64(len(r))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(r []float64, mean float64) float64 {
	n := len(r)
	if n < 2 {
		return 0 // Need at least 2 samples for sample stddev
	}
	sumSq := 0.0
	for _, v := range r {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computeMaxDrawdown returns the worst (cum - peak)/peak of the growth curve.
// The result is <= 0.
func computeMaxDrawdown(r []float64) float64 {
	growth := 1.0
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, v := range r {
		growth *= 1 + v
		if growth > peak {
			peak = growth
		}
		if peak == 0 {
			continue
		}
		if dd := (growth - peak) / peak; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// computeWinRate is the share of strictly positive periods.
func computeWinRate(r []float64) float64 {
	if len(r) == 0 {
		return 0
	}
	wins := 0
	for _, v := range r {
		if v > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(r))
}

// computeProfitFactor is gross gains over gross losses.
func computeProfitFactor(r []float64) float64 {
	gains, losses := 0.0, 0.0
	for _, v := range r {
		switch {
		case v > 0:
			gains += v
		case v < 0:
			losses -= v
		}
	}
	if losses == 0 {
		return math.Inf(1)
	}
	return gains / losses
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
