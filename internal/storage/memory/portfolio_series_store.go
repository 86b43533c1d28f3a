package memory

import (
	"context"
	"sync"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

// PortfolioSeriesStore is an in-memory implementation of storage.PortfolioSeriesStore.
type PortfolioSeriesStore struct {
	mu   sync.RWMutex
	data map[string]domain.PortfolioPnL // run_id -> defined entries
}

// NewPortfolioSeriesStore creates a new in-memory portfolio series store.
func NewPortfolioSeriesStore() *PortfolioSeriesStore {
	return &PortfolioSeriesStore{
		data: make(map[string]domain.PortfolioPnL),
	}
}

// InsertBulk stores the defined entries of p. A run can be stored once.
func (s *PortfolioSeriesStore) InsertBulk(_ context.Context, runID string, p domain.PortfolioPnL) error {
	if runID == "" || len(p.Index) != len(p.Returns) {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; exists {
		return storage.ErrDuplicateKey
	}
	var kept domain.PortfolioPnL
	for i, v := range p.Returns {
		if domain.IsDefined(v) {
			kept.Index = append(kept.Index, p.Index[i])
			kept.Returns = append(kept.Returns, v)
		}
	}
	if len(kept.Index) == 0 {
		return nil
	}
	s.data[runID] = kept
	return nil
}

// GetByRunID retrieves the stored entries ordered by date ASC.
func (s *PortfolioSeriesStore) GetByRunID(_ context.Context, runID string) (*domain.PortfolioPnL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &domain.PortfolioPnL{Index: p.Index.Clone(), Returns: p.Returns.Clone()}, nil
}

var _ storage.PortfolioSeriesStore = (*PortfolioSeriesStore)(nil)
