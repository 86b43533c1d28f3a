package storage

import (
	"context"
	"time"

	"walkforward-lab/internal/domain"
)

// PriceSeriesStore provides access to price_series storage.
type PriceSeriesStore interface {
	// InsertBulk adds observations for a symbol. Fails entire batch on duplicate (symbol, date).
	InsertBulk(ctx context.Context, symbol string, points []domain.PricePoint) error

	// GetBySymbol retrieves the full series ordered by date ASC. Returns ErrNotFound if empty.
	GetBySymbol(ctx context.Context, symbol string) (*domain.PriceSeries, error)

	// GetByDateRange retrieves the series within [start, end] (inclusive). Returns ErrNotFound if empty.
	GetByDateRange(ctx context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error)

	// ListSymbols returns stored symbols in ASC order.
	ListSymbols(ctx context.Context) ([]string, error)
}

// RunStore provides access to walkforward_runs storage.
type RunStore interface {
	// Insert adds a run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunRecord) error

	// GetByID retrieves a run by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunRecord, error)

	// List returns up to limit runs, newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*domain.RunRecord, error)
}

// RebalanceRecordStore provides access to rebalance_records storage.
type RebalanceRecordStore interface {
	// InsertBulk adds a run's records atomically. Fails entire batch on duplicate (run_id, seq).
	InsertBulk(ctx context.Context, runID string, records []domain.RebalanceRecord) error

	// GetByRunID retrieves a run's records ordered by seq ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.RebalanceRecord, error)
}

// PortfolioSeriesStore provides access to portfolio_series storage.
type PortfolioSeriesStore interface {
	// InsertBulk stores the defined entries of a run's portfolio. Fails on duplicate (run_id, date).
	InsertBulk(ctx context.Context, runID string, p domain.PortfolioPnL) error

	// GetByRunID retrieves the stored entries ordered by date ASC. Returns ErrNotFound if empty.
	GetByRunID(ctx context.Context, runID string) (*domain.PortfolioPnL, error)
}

// Stores bundles the stores a walk-forward run persists into.
type Stores struct {
	Prices     PriceSeriesStore
	Runs       RunStore
	Rebalances RebalanceRecordStore
	Portfolios PortfolioSeriesStore
}
