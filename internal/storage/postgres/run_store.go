package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	run_id, symbol, strategies, periods, first_date, last_date, config,
	total_return, annualized_return, annualized_vol, sharpe, max_drawdown, calmar,
	win_rate, profit_factor, best_period, worst_period, observations,
	created_at`

// Insert adds a run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunRecord) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO walkforward_runs (` + runColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19
		)
	`

	config := r.Config
	if len(config) == 0 {
		config = []byte("{}")
	}
	m := r.Summary
	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.Symbol, r.Strategies, r.Periods, r.FirstDate, r.LastDate, string(config),
		m.TotalReturn, m.AnnualizedReturn, m.AnnualizedVol, m.Sharpe, m.MaxDrawdown, m.Calmar,
		m.WinRate, m.ProfitFactor, m.BestPeriod, m.WorstPeriod, m.Observations,
		r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM walkforward_runs WHERE run_id = $1`

	r, err := scanRun(s.pool.QueryRow(ctx, query, runID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return r, nil
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (s *RunStore) List(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM walkforward_runs ORDER BY created_at DESC, run_id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*domain.RunRecord, error) {
	var r domain.RunRecord
	var config string
	m := &r.Summary
	err := row.Scan(
		&r.RunID, &r.Symbol, &r.Strategies, &r.Periods, &r.FirstDate, &r.LastDate, &config,
		&m.TotalReturn, &m.AnnualizedReturn, &m.AnnualizedVol, &m.Sharpe, &m.MaxDrawdown, &m.Calmar,
		&m.WinRate, &m.ProfitFactor, &m.BestPeriod, &m.WorstPeriod, &m.Observations,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Config = []byte(config)
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}
