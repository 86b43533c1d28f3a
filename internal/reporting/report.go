package reporting

import (
	"time"

	"walkforward-lab/internal/domain"
)

// Report is everything one walk-forward run produces.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Run         domain.RunRecord

	// Portfolio performance
	Summary   domain.PerformanceSummary
	Portfolio domain.PortfolioPnL

	// Audit trail, ordered by seq
	Rebalances []domain.RebalanceRecord

	// How often each strategy was held (sorted by count desc, name asc)
	Selections []SelectionRow

	// Standalone full-history performance per strategy, in universe order.
	// Empty when the report is rebuilt from storage.
	Strategies []StrategyRow
}

// SelectionRow counts the periods a strategy was in the ensemble.
type SelectionRow struct {
	Name    string
	Periods int
	Share   float64 // Periods / recorded periods
}

// StrategyRow summarizes one strategy's own PnL over the whole history.
type StrategyRow struct {
	Name    string
	Family  string
	Summary domain.PerformanceSummary
}
