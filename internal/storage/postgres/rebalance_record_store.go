package postgres

import (
	"context"
	"fmt"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

// RebalanceRecordStore implements storage.RebalanceRecordStore using PostgreSQL.
// Per-strategy scores live in the child table rebalance_scores.
type RebalanceRecordStore struct {
	pool *Pool
}

// NewRebalanceRecordStore creates a new RebalanceRecordStore.
func NewRebalanceRecordStore(pool *Pool) *RebalanceRecordStore {
	return &RebalanceRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RebalanceRecordStore = (*RebalanceRecordStore)(nil)

// InsertBulk adds a run's records atomically. Fails entire batch on any duplicate.
func (s *RebalanceRecordStore) InsertBulk(ctx context.Context, runID string, records []domain.RebalanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	if runID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	recordQuery := `
		INSERT INTO rebalance_records (
			run_id, seq, period_start, period_end, lookback_start, lookback_end,
			selected, ensemble_mean, ensemble_std, observations
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	scoreQuery := `
		INSERT INTO rebalance_scores (
			run_id, seq, position, strategy, score, observations
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, r := range records {
		p := r.Period
		selected := r.Selected
		if selected == nil {
			selected = []string{}
		}
		_, err := tx.Exec(ctx, recordQuery,
			runID, p.Seq, p.Start, p.End, p.LookbackStart, p.LookbackEnd,
			selected, r.EnsembleMean, r.EnsembleStd, r.Observations,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert rebalance record: %w", err)
		}

		for i, sc := range r.Scores {
			if _, err := tx.Exec(ctx, scoreQuery, runID, p.Seq, i, sc.Name, sc.Score, sc.Observations); err != nil {
				if isDuplicateKeyError(err) {
					return storage.ErrDuplicateKey
				}
				return fmt.Errorf("insert rebalance score: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByRunID retrieves a run's records ordered by seq ASC.
func (s *RebalanceRecordStore) GetByRunID(ctx context.Context, runID string) ([]domain.RebalanceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, period_start, period_end, lookback_start, lookback_end,
			selected, ensemble_mean, ensemble_std, observations
		FROM rebalance_records
		WHERE run_id = $1
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get rebalance records: %w", err)
	}
	defer rows.Close()

	records := []domain.RebalanceRecord{}
	bySeq := make(map[int]int)
	for rows.Next() {
		var r domain.RebalanceRecord
		p := &r.Period
		if err := rows.Scan(
			&p.Seq, &p.Start, &p.End, &p.LookbackStart, &p.LookbackEnd,
			&r.Selected, &r.EnsembleMean, &r.EnsembleStd, &r.Observations,
		); err != nil {
			return nil, fmt.Errorf("scan rebalance record: %w", err)
		}
		bySeq[p.Seq] = len(records)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rebalance records: %w", err)
	}
	if len(records) == 0 {
		return records, nil
	}

	scoreRows, err := s.pool.Query(ctx, `
		SELECT seq, strategy, score, observations
		FROM rebalance_scores
		WHERE run_id = $1
		ORDER BY seq ASC, position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get rebalance scores: %w", err)
	}
	defer scoreRows.Close()

	for scoreRows.Next() {
		var seq int
		var sc domain.StrategyScore
		if err := scoreRows.Scan(&seq, &sc.Name, &sc.Score, &sc.Observations); err != nil {
			return nil, fmt.Errorf("scan rebalance score: %w", err)
		}
		if i, ok := bySeq[seq]; ok {
			records[i].Scores = append(records[i].Scores, sc)
		}
	}
	if err := scoreRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rebalance scores: %w", err)
	}

	return records, nil
}
