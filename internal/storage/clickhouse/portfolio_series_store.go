package clickhouse

import (
	"context"
	"fmt"
	"time"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

// PortfolioSeriesStore implements storage.PortfolioSeriesStore using ClickHouse.
// Only defined returns are stored.
type PortfolioSeriesStore struct {
	conn *Conn
}

// NewPortfolioSeriesStore creates a new PortfolioSeriesStore.
func NewPortfolioSeriesStore(conn *Conn) *PortfolioSeriesStore {
	return &PortfolioSeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PortfolioSeriesStore = (*PortfolioSeriesStore)(nil)

// InsertBulk stores the defined entries of p. A run can be stored once.
func (s *PortfolioSeriesStore) InsertBulk(ctx context.Context, runID string, p domain.PortfolioPnL) error {
	if runID == "" || len(p.Index) != len(p.Returns) {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	if p.Returns.CountDefined() == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO portfolio_series (run_id, date, ret)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i, v := range p.Returns {
		if !domain.IsDefined(v) {
			continue
		}
		if err := batch.Append(runID, p.Index[i], v); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves the stored entries ordered by date ASC.
func (s *PortfolioSeriesStore) GetByRunID(ctx context.Context, runID string) (*domain.PortfolioPnL, error) {
	query := `
		SELECT date, ret
		FROM portfolio_series
		WHERE run_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanPortfolio(rows)
}

func (s *PortfolioSeriesStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM portfolio_series WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanPortfolio(rows chRows) (*domain.PortfolioPnL, error) {
	var p domain.PortfolioPnL

	for rows.Next() {
		var date time.Time
		var ret float64
		if err := rows.Scan(&date, &ret); err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		p.Index = append(p.Index, domain.Truncate(date))
		p.Returns = append(p.Returns, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolio: %w", err)
	}
	if len(p.Index) == 0 {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}
