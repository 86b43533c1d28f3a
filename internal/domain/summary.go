package domain

import "time"

// PerformanceSummary holds standard statistics for a return series.
type PerformanceSummary struct {
	TotalReturn      float64 // compounded total return
	AnnualizedReturn float64 // geometric annualized return
	AnnualizedVol    float64 // sample std * sqrt(trading days)
	Sharpe           float64 // annualized return / annualized vol, 0 when vol is 0
	MaxDrawdown      float64 // worst peak-to-trough fall of the growth curve, <= 0
	Calmar           float64 // annualized return / |max drawdown|, 0 when drawdown is 0
	WinRate          float64 // share of periods with positive return
	ProfitFactor     float64 // gross gains / gross losses, +Inf when no losses
	BestPeriod       float64 // largest single-period return
	WorstPeriod      float64 // smallest single-period return
	Observations     int     // defined periods used
}

// RunRecord is the persisted header of one walk-forward run.
type RunRecord struct {
	RunID      string             // deterministic base58 id of config + prices
	Symbol     string             // instrument label
	Strategies int                // universe size
	Periods    int                // recorded (non-skipped) rebalance periods
	FirstDate  time.Time          // first price date
	LastDate   time.Time          // last price date
	Config     []byte             // JSON snapshot of the effective run config
	Summary    PerformanceSummary // portfolio performance
	CreatedAt  time.Time          // wall-clock time the run was stored
}
