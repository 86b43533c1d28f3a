package walkforward

import (
	"time"

	"walkforward-lab/internal/domain"
)

// MonthEnd returns the last calendar day of t's month.
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts t by n calendar months, clamping the day to the length of
// the target month (Mar 31 - 1 month = Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := MonthEnd(first).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// Boundaries returns month-end dates spaced every `every` months, starting
// at the first month end on or after first and ending at the last one on or
// before last + every months.
func Boundaries(first, last time.Time, every int) []time.Time {
	first = domain.Truncate(first)
	limit := AddMonths(domain.Truncate(last), every)
	var out []time.Time
	for k := 0; ; k++ {
		b := MonthEnd(time.Date(first.Year(), first.Month()+time.Month(k*every), 1, 0, 0, 0, 0, time.UTC))
		if b.After(limit) {
			return out
		}
		out = append(out, b)
	}
}

// Schedule builds the rebalance periods for an index. Periods whose start
// lies after the last date are dropped: the timeline is exhausted.
func Schedule(index domain.Index, lookbackMonths, rebalanceMonths int) []domain.RebalancePeriod {
	if len(index) == 0 {
		return nil
	}
	bounds := Boundaries(index.First(), index.Last(), rebalanceMonths)
	var out []domain.RebalancePeriod
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		if start.After(index.Last()) {
			break
		}
		lookbackEnd := start.AddDate(0, 0, -1)
		out = append(out, domain.RebalancePeriod{
			Seq:           len(out),
			Start:         start,
			End:           end,
			LookbackStart: AddMonths(lookbackEnd, -lookbackMonths),
			LookbackEnd:   lookbackEnd,
		})
	}
	return out
}
