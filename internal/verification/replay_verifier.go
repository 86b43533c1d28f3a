package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"walkforward-lab/internal/config"
	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/pipeline"
	"walkforward-lab/internal/storage"
)

var (
	// ErrRunNotFound is returned when the run ID doesn't exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrPricesNotFound is returned when the run's prices are not stored.
	ErrPricesNotFound = errors.New("run prices not found")
)

// ReplayVerifier re-runs stored runs from their config snapshot and the
// stored prices.
type ReplayVerifier struct {
	stores storage.Stores
	log    zerolog.Logger
}

// NewReplayVerifier creates a new ReplayVerifier. Runs, Rebalances and
// Prices must be set; Portfolios is optional.
func NewReplayVerifier(stores storage.Stores, log zerolog.Logger) *ReplayVerifier {
	return &ReplayVerifier{
		stores: stores,
		log:    log.With().Str("component", "verifier").Logger(),
	}
}

// VerifyRun verifies a single run by replaying it.
func (v *ReplayVerifier) VerifyRun(ctx context.Context, runID string) (*VerificationResult, error) {
	// 1. Load stored run
	stored, err := v.stores.Runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	// 2. Replay
	replayed, err := v.replay(ctx, stored)
	if err != nil {
		return nil, err
	}

	// 3. Compare results
	result := &VerificationResult{RunID: runID}
	if replayed.Run.RunID != stored.RunID {
		result.Divergences = append(result.Divergences, FieldDivergence{
			Field:    "run_id",
			Expected: stored.RunID,
			Actual:   replayed.Run.RunID,
		})
	}

	records, err := v.stores.Rebalances.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load rebalances: %w", err)
	}
	result.Periods = len(records)
	result.Divergences = append(result.Divergences, CompareRecords(records, replayed.Records)...)

	if v.stores.Portfolios != nil {
		portfolio, err := v.stores.Portfolios.GetByRunID(ctx, runID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			portfolio = &domain.PortfolioPnL{}
		case err != nil:
			return nil, fmt.Errorf("load portfolio: %w", err)
		}
		result.Points = len(portfolio.Index)
		result.Divergences = append(result.Divergences, ComparePortfolio(*portfolio, replayed.Portfolio)...)
	}

	result.Match = len(result.Divergences) == 0
	v.log.Info().
		Str("run_id", runID).
		Bool("match", result.Match).
		Int("divergences", len(result.Divergences)).
		Msg("run verified")
	return result, nil
}

// VerifyAll verifies up to limit stored runs, newest first. limit <= 0
// verifies all.
func (v *ReplayVerifier) VerifyAll(ctx context.Context, limit int) (*VerificationReport, error) {
	runs, err := v.stores.Runs.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		TotalRuns: len(runs),
		Results:   make([]VerificationResult, 0, len(runs)),
	}

	for _, run := range runs {
		result, err := v.VerifyRun(ctx, run.RunID)
		if err != nil {
			// Record error as divergence
			report.Results = append(report.Results, VerificationResult{
				RunID: run.RunID,
				Divergences: []FieldDivergence{
					{Field: "error", Expected: nil, Actual: err.Error()},
				},
			})
			report.DivergentRuns++
			continue
		}

		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedRuns++
		} else {
			report.DivergentRuns++
		}
	}

	return report, nil
}

// replay re-executes the pipeline with the stored config over the stored
// prices of the run's date range. Nothing is persisted.
func (v *ReplayVerifier) replay(ctx context.Context, stored *domain.RunRecord) (*pipeline.Result, error) {
	cfg, err := config.FromRunJSON(stored.Config)
	if err != nil {
		return nil, err
	}

	prices, err := v.stores.Prices.GetByDateRange(ctx, stored.Symbol, stored.FirstDate, stored.LastDate)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPricesNotFound, stored.Symbol)
		}
		return nil, err
	}

	p, err := pipeline.New(pipeline.Options{Config: cfg, Logger: v.log})
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, prices)
}
