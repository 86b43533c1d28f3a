// Package walkforward runs the rolling select-and-hold loop over a strategy
// universe: score every strategy on a trailing window, hold the top-N
// equal-weighted over the next window, repeat.
package walkforward

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/indicator"
	"walkforward-lab/internal/lookup"
)

// Result is the output of one walk-forward run.
type Result struct {
	Portfolio domain.PortfolioPnL      // ensemble returns over the full index
	Records   []domain.RebalanceRecord // one per processed period, in period order
	Skipped   int                      // warm-up periods without enough lookback history
	Scheduled int                      // periods generated by the calendar
}

// FirstRecord returns the earliest processed period, if any.
func (r *Result) FirstRecord() (domain.RebalanceRecord, bool) {
	if len(r.Records) == 0 {
		return domain.RebalanceRecord{}, false
	}
	return r.Records[0], true
}

// Ensembler evaluates a fixed universe under one validated configuration.
type Ensembler struct {
	universe *domain.StrategyUniverse
	cfg      resolved
}

// New validates cfg against universe. All configuration errors surface here.
func New(universe *domain.StrategyUniverse, cfg Config) (*Ensembler, error) {
	if universe == nil {
		return nil, ErrNilUniverse
	}
	if universe.Len() == 0 {
		return nil, ErrEmptyUniverse
	}
	r, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	return &Ensembler{universe: universe, cfg: r}, nil
}

// ScoreName returns the resolved score function name.
func (e *Ensembler) ScoreName() string {
	return e.cfg.scoreName
}

// Schedule returns every generated period, including warm-up periods that
// Run will skip.
func (e *Ensembler) Schedule() []domain.RebalancePeriod {
	return Schedule(e.universe.Dates(), e.cfg.lookbackMonths, e.cfg.rebalanceMonths)
}

// periodResult is the outcome of one evaluated period.
type periodResult struct {
	record  domain.RebalanceRecord
	lo, hi  int
	returns []float64
	skipped bool
}

// Run executes the loop. Periods are independent and read the universe
// only, so with Workers > 1 they are evaluated concurrently and assembled in
// period order afterwards; the output is identical either way.
func (e *Ensembler) Run() (*Result, error) {
	index := e.universe.Dates()
	schedule := e.Schedule()
	results := make([]periodResult, len(schedule))

	if e.cfg.workers > 1 {
		var g errgroup.Group
		g.SetLimit(e.cfg.workers)
		for i := range schedule {
			i := i
			g.Go(func() error {
				results[i] = e.evaluate(schedule[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range schedule {
			results[i] = e.evaluate(schedule[i])
		}
	}

	portfolio := domain.NewUndefinedSeries(len(index))
	res := &Result{Scheduled: len(schedule)}
	for _, pr := range results {
		if pr.skipped {
			res.Skipped++
			continue
		}
		copy(portfolio[pr.lo:pr.hi], pr.returns)
		res.Records = append(res.Records, pr.record)
	}
	res.Portfolio = domain.PortfolioPnL{Index: index.Clone(), Returns: portfolio}
	return res, nil
}

func (e *Ensembler) evaluate(p domain.RebalancePeriod) periodResult {
	index := e.universe.Dates()
	if !e.cfg.skipCheck && p.LookbackStart.Before(index.First()) {
		return periodResult{skipped: true}
	}

	scores := e.scorePeriod(p)
	selected := selectTop(scores, e.cfg.topN)

	lo, hi := lookup.HalfOpen(index, p.Start, p.End)
	ensemble := e.ensemble(selected, lo, hi)
	defined := domain.Series(ensemble).Defined()

	rec := domain.RebalanceRecord{
		Period:       p,
		Scores:       scores,
		Selected:     selected,
		EnsembleMean: domain.Undefined,
		EnsembleStd:  domain.Undefined,
		Observations: len(defined),
	}
	if len(defined) > 0 {
		rec.EnsembleMean = indicator.Mean(defined)
	}
	if len(defined) > 1 {
		rec.EnsembleStd = indicator.SampleStd(defined)
	}
	return periodResult{record: rec, lo: lo, hi: hi, returns: ensemble}
}

// scorePeriod scores every strategy on the closed lookback window. Fewer
// than two defined returns leave the score undefined.
func (e *Ensembler) scorePeriod(p domain.RebalancePeriod) []domain.StrategyScore {
	lo, hi := lookup.Closed(e.universe.Dates(), p.LookbackStart, p.LookbackEnd)
	out := make([]domain.StrategyScore, e.universe.Len())
	for i := range out {
		s := e.universe.At(i)
		window := domain.Series(s.Returns[lo:hi]).Defined()
		score := domain.Undefined
		if len(window) >= 2 {
			score = e.cfg.score(window)
		}
		out[i] = domain.StrategyScore{Name: s.Name, Score: score, Observations: len(window)}
	}
	return out
}

// selectTop returns up to n names with the highest defined scores. Ties keep
// universe order.
func selectTop(scores []domain.StrategyScore, n int) []string {
	candidates := make([]domain.StrategyScore, 0, len(scores))
	for _, s := range scores {
		if domain.IsDefined(s.Score) {
			candidates = append(candidates, s)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Name
	}
	return out
}

// ensemble averages the defined returns of selected strategies per date.
func (e *Ensembler) ensemble(selected []string, lo, hi int) []float64 {
	out := make([]float64, hi-lo)
	series := make([]domain.Series, 0, len(selected))
	for _, name := range selected {
		if s, ok := e.universe.Get(name); ok {
			series = append(series, s.Returns)
		}
	}
	for t := lo; t < hi; t++ {
		sum, n := 0.0, 0
		for _, s := range series {
			if v := s[t]; domain.IsDefined(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			out[t-lo] = domain.Undefined
			continue
		}
		out[t-lo] = sum / float64(n)
	}
	return out
}
