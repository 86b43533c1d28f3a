package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/metrics"
	"walkforward-lab/internal/storage"
)

// Generator produces reports from run results or stored runs.
type Generator struct {
	runStore       storage.RunStore
	rebalanceStore storage.RebalanceRecordStore
	portfolioStore storage.PortfolioSeriesStore
	tradingDays    float64
	now            func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	runStore storage.RunStore,
	rebalanceStore storage.RebalanceRecordStore,
	portfolioStore storage.PortfolioSeriesStore,
) *Generator {
	return &Generator{
		runStore:       runStore,
		rebalanceStore: rebalanceStore,
		portfolioStore: portfolioStore,
		tradingDays:    metrics.TradingDays,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTradingDays sets the annualization factor.
func (g *Generator) WithTradingDays(days float64) *Generator {
	g.tradingDays = days
	return g
}

// Generate rebuilds the report of a stored run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	records, err := g.rebalanceStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load rebalances %s: %w", runID, err)
	}

	// A run without recorded periods stores no portfolio entries.
	portfolio, err := g.portfolioStore.GetByRunID(ctx, runID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		portfolio = &domain.PortfolioPnL{}
	case err != nil:
		return nil, fmt.Errorf("load portfolio %s: %w", runID, err)
	}

	return g.Build(*run, *portfolio, records, nil), nil
}

// Build assembles a report from in-memory results. universe may be nil.
func (g *Generator) Build(run domain.RunRecord, portfolio domain.PortfolioPnL, records []domain.RebalanceRecord, universe *domain.StrategyUniverse) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		Run:         run,
		Summary:     metrics.Compute(portfolio.Returns, g.tradingDays),
		Portfolio:   portfolio,
		Rebalances:  records,
		Selections:  selectionCounts(records),
	}

	if universe != nil {
		for i := 0; i < universe.Len(); i++ {
			s := universe.At(i)
			r.Strategies = append(r.Strategies, StrategyRow{
				Name:    s.Name,
				Family:  s.Family,
				Summary: metrics.Compute(s.Returns, g.tradingDays),
			})
		}
	}

	return r
}

// selectionCounts tallies ensemble membership across periods.
func selectionCounts(records []domain.RebalanceRecord) []SelectionRow {
	counts := make(map[string]int)
	for _, rec := range records {
		for _, name := range rec.Selected {
			counts[name]++
		}
	}

	rows := make([]SelectionRow, 0, len(counts))
	for name, n := range counts {
		rows = append(rows, SelectionRow{
			Name:    name,
			Periods: n,
			Share:   float64(n) / float64(len(records)),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Periods != rows[j].Periods {
			return rows[i].Periods > rows[j].Periods
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
