package memory

import (
	"context"
	"sort"
	"sync"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

// RebalanceRecordStore is an in-memory implementation of storage.RebalanceRecordStore.
type RebalanceRecordStore struct {
	mu   sync.RWMutex
	data map[string]map[int]domain.RebalanceRecord // run_id -> seq -> record
}

// NewRebalanceRecordStore creates a new in-memory rebalance record store.
func NewRebalanceRecordStore() *RebalanceRecordStore {
	return &RebalanceRecordStore{
		data: make(map[string]map[int]domain.RebalanceRecord),
	}
}

// InsertBulk adds records atomically. Fails entire batch on duplicate (run_id, seq).
func (s *RebalanceRecordStore) InsertBulk(_ context.Context, runID string, records []domain.RebalanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[runID]
	batch := make(map[int]struct{}, len(records))
	for _, r := range records {
		if _, exists := existing[r.Period.Seq]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[r.Period.Seq]; exists {
			return storage.ErrDuplicateKey
		}
		batch[r.Period.Seq] = struct{}{}
	}

	if existing == nil {
		existing = make(map[int]domain.RebalanceRecord, len(records))
		s.data[runID] = existing
	}
	for _, r := range records {
		existing[r.Period.Seq] = copyRecord(r)
	}
	return nil
}

// GetByRunID retrieves a run's records ordered by seq ASC.
func (s *RebalanceRecordStore) GetByRunID(_ context.Context, runID string) ([]domain.RebalanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RebalanceRecord, 0, len(s.data[runID]))
	for _, r := range s.data[runID] {
		out = append(out, copyRecord(r))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Period.Seq < out[j].Period.Seq
	})
	return out, nil
}

func copyRecord(r domain.RebalanceRecord) domain.RebalanceRecord {
	r.Scores = append([]domain.StrategyScore(nil), r.Scores...)
	r.Selected = append([]string(nil), r.Selected...)
	return r
}

var _ storage.RebalanceRecordStore = (*RebalanceRecordStore)(nil)
