// Package memory provides in-memory implementations of the storage
// interfaces for tests and single-process runs.
package memory

import "walkforward-lab/internal/storage"

// NewStores returns a fresh set of in-memory stores.
func NewStores() storage.Stores {
	return storage.Stores{
		Prices:     NewPriceSeriesStore(),
		Runs:       NewRunStore(),
		Rebalances: NewRebalanceRecordStore(),
		Portfolios: NewPortfolioSeriesStore(),
	}
}
