package walkforward

import (
	"fmt"
	"math"
	"sort"

	"walkforward-lab/internal/indicator"
)

// ScoreFunc ranks a strategy from its defined lookback returns. Higher is
// better. It is only called with at least two observations.
type ScoreFunc func(returns []float64) float64

// Registered score names.
const (
	ScoreSharpe      = "sharpe"
	ScoreSortino     = "sortino"
	ScoreMean        = "mean"
	ScoreTotalReturn = "total_return"
)

var scores = map[string]ScoreFunc{
	ScoreSharpe:      Sharpe,
	ScoreSortino:     Sortino,
	ScoreMean:        indicator.Mean,
	ScoreTotalReturn: TotalReturn,
}

// LookupScore returns the named score function.
func LookupScore(name string) (ScoreFunc, error) {
	fn, ok := scores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownScore, name, ScoreNames())
	}
	return fn, nil
}

// ScoreNames lists registered score names in sorted order.
func ScoreNames() []string {
	out := make([]string, 0, len(scores))
	for name := range scores {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Sharpe is mean / sample std, unannualized. Zero variance scores 0.
func Sharpe(returns []float64) float64 {
	std := indicator.SampleStd(returns)
	if std == 0 {
		return 0
	}
	return indicator.Mean(returns) / std
}

// Sortino is mean / downside deviation, where downside deviation is the
// root mean square of negative returns. No downside scores 0.
func Sortino(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
		}
	}
	dd := math.Sqrt(sumSq / float64(len(returns)))
	if dd == 0 {
		return 0
	}
	return indicator.Mean(returns) / dd
}

// TotalReturn is the compounded return prod(1+r) - 1.
func TotalReturn(returns []float64) float64 {
	g := 1.0
	for _, r := range returns {
		g *= 1 + r
	}
	return g - 1
}
