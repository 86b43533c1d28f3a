package clickhouse

import (
	"context"
	"fmt"
	"time"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

// PriceSeriesStore implements storage.PriceSeriesStore using ClickHouse.
type PriceSeriesStore struct {
	conn *Conn
}

// NewPriceSeriesStore creates a new PriceSeriesStore.
func NewPriceSeriesStore(conn *Conn) *PriceSeriesStore {
	return &PriceSeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceSeriesStore = (*PriceSeriesStore)(nil)

// InsertBulk adds observations. Fails entire batch on duplicate (symbol, date).
func (s *PriceSeriesStore) InsertBulk(ctx context.Context, symbol string, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	// Check for intra-batch duplicates
	seen := make(map[time.Time]struct{}, len(points))
	for _, p := range points {
		d := domain.Truncate(p.Date)
		if _, exists := seen[d]; exists {
			return storage.ErrDuplicateKey
		}
		seen[d] = struct{}{}
	}

	// MergeTree does not enforce keys, so check existing rows explicitly.
	first, last := points[0].Date, points[0].Date
	for _, p := range points[1:] {
		if p.Date.Before(first) {
			first = p.Date
		}
		if p.Date.After(last) {
			last = p.Date
		}
	}
	existing, err := s.dates(ctx, symbol, first, last)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	for _, d := range existing {
		if _, dup := seen[d]; dup {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO price_series (symbol, date, price)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(symbol, domain.Truncate(p.Date), p.Price); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySymbol retrieves the full series ordered by date ASC.
func (s *PriceSeriesStore) GetBySymbol(ctx context.Context, symbol string) (*domain.PriceSeries, error) {
	query := `
		SELECT date, price
		FROM price_series
		WHERE symbol = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	return scanPriceSeries(symbol, rows)
}

// GetByDateRange retrieves the series within [start, end] (inclusive).
func (s *PriceSeriesStore) GetByDateRange(ctx context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	query := `
		SELECT date, price
		FROM price_series
		WHERE symbol = ? AND date >= toDate32(?) AND date <= toDate32(?)
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanPriceSeries(symbol, rows)
}

// ListSymbols returns stored symbols in ASC order.
func (s *PriceSeriesStore) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT symbol FROM price_series ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}
	return symbols, nil
}

// dates returns the stored dates for symbol within [start, end].
func (s *PriceSeriesStore) dates(ctx context.Context, symbol string, start, end time.Time) ([]time.Time, error) {
	query := `
		SELECT date FROM price_series
		WHERE symbol = ? AND date >= toDate32(?) AND date <= toDate32(?)
	`

	rows, err := s.conn.Query(ctx, query, symbol, start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, domain.Truncate(d))
	}
	return out, rows.Err()
}

// scanPriceSeries scans (date, price) rows into a validated series.
func scanPriceSeries(symbol string, rows chRows) (*domain.PriceSeries, error) {
	var points []domain.PricePoint

	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Date, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prices: %w", err)
	}
	if len(points) == 0 {
		return nil, storage.ErrNotFound
	}

	return domain.NewPriceSeries(symbol, points)
}
