package domain

import "time"

// RebalancePeriod describes one walk-forward step.
// The forward window is [Start, End); the lookback window is the closed
// interval [LookbackStart, LookbackEnd] with LookbackEnd = Start - 1 day.
type RebalancePeriod struct {
	Seq           int       // 0-based position in the generated schedule
	Start         time.Time // first date of the forward window (inclusive)
	End           time.Time // end of the forward window (exclusive)
	LookbackStart time.Time // first date of the scoring window (inclusive)
	LookbackEnd   time.Time // last date of the scoring window (inclusive)
}

// StrategyScore is one strategy's score over a lookback window.
type StrategyScore struct {
	Name         string  // strategy name
	Score        float64 // NaN when the strategy had too few observations
	Observations int     // defined returns inside the lookback window
}

// RebalanceRecord is the audit entry for one non-skipped period.
type RebalanceRecord struct {
	Period       RebalancePeriod
	Scores       []StrategyScore // every strategy, in universe order
	Selected     []string        // top-N by score, in rank order
	EnsembleMean float64         // mean ensemble return over the forward window
	EnsembleStd  float64         // sample std of ensemble return over the forward window
	Observations int             // defined ensemble returns in the forward window
}

// ScoreOf returns the recorded score for name.
func (r *RebalanceRecord) ScoreOf(name string) (float64, bool) {
	for _, s := range r.Scores {
		if s.Name == name {
			return s.Score, true
		}
	}
	return 0, false
}

// PortfolioPnL is the stitched walk-forward ensemble return stream.
// Dates before the first recorded period are undefined.
type PortfolioPnL struct {
	Index   Index
	Returns Series
}
