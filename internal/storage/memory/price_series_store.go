package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

// PriceSeriesStore is an in-memory implementation of storage.PriceSeriesStore.
type PriceSeriesStore struct {
	mu   sync.RWMutex
	data map[string]map[time.Time]float64 // symbol -> date -> price
}

// NewPriceSeriesStore creates a new in-memory price series store.
func NewPriceSeriesStore() *PriceSeriesStore {
	return &PriceSeriesStore{
		data: make(map[string]map[time.Time]float64),
	}
}

// InsertBulk adds observations. Fails entire batch on duplicate.
func (s *PriceSeriesStore) InsertBulk(_ context.Context, symbol string, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[symbol]

	// First pass: check for duplicates (existing + intra-batch)
	batch := make(map[time.Time]struct{}, len(points))
	for _, p := range points {
		d := domain.Truncate(p.Date)
		if _, exists := existing[d]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[d]; exists {
			return storage.ErrDuplicateKey
		}
		batch[d] = struct{}{}
	}

	// Second pass: insert all
	if existing == nil {
		existing = make(map[time.Time]float64, len(points))
		s.data[symbol] = existing
	}
	for _, p := range points {
		existing[domain.Truncate(p.Date)] = p.Price
	}
	return nil
}

// GetBySymbol retrieves the full series ordered by date ASC.
func (s *PriceSeriesStore) GetBySymbol(ctx context.Context, symbol string) (*domain.PriceSeries, error) {
	return s.GetByDateRange(ctx, symbol, time.Time{}, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC))
}

// GetByDateRange retrieves the series within [start, end] (inclusive).
func (s *PriceSeriesStore) GetByDateRange(_ context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var points []domain.PricePoint
	for d, price := range s.data[symbol] {
		if d.Before(start) || d.After(end) {
			continue
		}
		points = append(points, domain.PricePoint{Date: d, Price: price})
	}
	if len(points) == 0 {
		return nil, storage.ErrNotFound
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return domain.NewPriceSeries(symbol, points)
}

// ListSymbols returns stored symbols in ASC order.
func (s *PriceSeriesStore) ListSymbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for symbol := range s.data {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out, nil
}

var _ storage.PriceSeriesStore = (*PriceSeriesStore)(nil)
