// Package verification replays stored runs and checks the stored results
// match a fresh computation bit for bit (within FloatTolerance).
package verification

import (
	"fmt"
	"math"
	"strings"

	"walkforward-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string // e.g. "records[3].selected"
	Expected any    // stored value
	Actual   any    // replayed value
}

// VerificationResult contains the result of verifying a single run.
type VerificationResult struct {
	RunID       string
	Match       bool
	Divergences []FieldDivergence
	Periods     int // stored rebalance records compared
	Points      int // stored portfolio entries compared
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalRuns     int
	MatchedRuns   int
	DivergentRuns int
	Results       []VerificationResult
}

// CompareRecords compares stored and replayed rebalance records.
func CompareRecords(stored, replayed []domain.RebalanceRecord) []FieldDivergence {
	var divergences []FieldDivergence

	if len(stored) != len(replayed) {
		return append(divergences, FieldDivergence{
			Field:    "records.len",
			Expected: len(stored),
			Actual:   len(replayed),
		})
	}

	for i := range stored {
		divergences = append(divergences, compareRecord(fmt.Sprintf("records[%d]", i), stored[i], replayed[i])...)
	}
	return divergences
}

func compareRecord(prefix string, s, r domain.RebalanceRecord) []FieldDivergence {
	var divergences []FieldDivergence
	add := func(field string, expected, actual any) {
		divergences = append(divergences, FieldDivergence{Field: prefix + "." + field, Expected: expected, Actual: actual})
	}

	if s.Period.Seq != r.Period.Seq {
		add("seq", s.Period.Seq, r.Period.Seq)
	}
	if !s.Period.Start.Equal(r.Period.Start) {
		add("start", s.Period.Start, r.Period.Start)
	}
	if !s.Period.End.Equal(r.Period.End) {
		add("end", s.Period.End, r.Period.End)
	}
	if !s.Period.LookbackStart.Equal(r.Period.LookbackStart) {
		add("lookback_start", s.Period.LookbackStart, r.Period.LookbackStart)
	}
	if !s.Period.LookbackEnd.Equal(r.Period.LookbackEnd) {
		add("lookback_end", s.Period.LookbackEnd, r.Period.LookbackEnd)
	}
	if strings.Join(s.Selected, ",") != strings.Join(r.Selected, ",") {
		add("selected", s.Selected, r.Selected)
	}
	if !floatEquals(s.EnsembleMean, r.EnsembleMean) {
		add("ensemble_mean", s.EnsembleMean, r.EnsembleMean)
	}
	if !floatEquals(s.EnsembleStd, r.EnsembleStd) {
		add("ensemble_std", s.EnsembleStd, r.EnsembleStd)
	}
	if s.Observations != r.Observations {
		add("observations", s.Observations, r.Observations)
	}

	if len(s.Scores) != len(r.Scores) {
		add("scores.len", len(s.Scores), len(r.Scores))
		return divergences
	}
	for j := range s.Scores {
		ss, rs := s.Scores[j], r.Scores[j]
		if ss.Name != rs.Name {
			add(fmt.Sprintf("scores[%d].name", j), ss.Name, rs.Name)
			continue
		}
		if !floatEquals(ss.Score, rs.Score) {
			add(fmt.Sprintf("scores[%s].score", ss.Name), ss.Score, rs.Score)
		}
		if ss.Observations != rs.Observations {
			add(fmt.Sprintf("scores[%s].observations", ss.Name), ss.Observations, rs.Observations)
		}
	}
	return divergences
}

// ComparePortfolio checks every stored entry against the replayed series at
// the same date. Stored portfolios hold defined entries only, so replayed
// dates with a defined return that are missing from storage also diverge.
func ComparePortfolio(stored, replayed domain.PortfolioPnL) []FieldDivergence {
	var divergences []FieldDivergence

	byDate := make(map[string]float64, len(replayed.Index))
	defined := 0
	for i, d := range replayed.Index {
		byDate[d.Format(domain.DateLayout)] = replayed.Returns[i]
		if domain.IsDefined(replayed.Returns[i]) {
			defined++
		}
	}

	for i, d := range stored.Index {
		key := d.Format(domain.DateLayout)
		actual, ok := byDate[key]
		if !ok {
			divergences = append(divergences, FieldDivergence{
				Field:    "portfolio[" + key + "]",
				Expected: stored.Returns[i],
				Actual:   nil,
			})
			continue
		}
		if !floatEquals(stored.Returns[i], actual) {
			divergences = append(divergences, FieldDivergence{
				Field:    "portfolio[" + key + "]",
				Expected: stored.Returns[i],
				Actual:   actual,
			})
		}
	}

	if defined != len(stored.Index) {
		divergences = append(divergences, FieldDivergence{
			Field:    "portfolio.len",
			Expected: len(stored.Index),
			Actual:   defined,
		})
	}
	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
// Two undefined values are equal; infinities must match exactly.
func floatEquals(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= FloatTolerance
}
