package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"walkforward-lab/internal/verification"
)

// Verify command flags
var (
	verifyRunID string
	verifyLimit int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay stored runs and compare with their stored results",
	Long: `Rebuild each run from its stored config snapshot and the stored prices,
then compare run ID, rebalance records and portfolio series.

Examples:
  backtest verify --run-id 7pXv...
  backtest verify --limit 10`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyRunID, "run-id", "", "Verify one run (default: all)")
	verifyCmd.Flags().IntVar(&verifyLimit, "limit", 0, "Verify at most N most recent runs (0 = all)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer closeStores()

	v := verification.NewReplayVerifier(stores, logger)
	out := cmd.OutOrStdout()

	if verifyRunID != "" {
		res, err := v.VerifyRun(ctx, verifyRunID)
		if err != nil {
			return err
		}
		printResult(cmd, *res)
		if !res.Match {
			return errors.New("run diverged")
		}
		return nil
	}

	report, err := v.VerifyAll(ctx, verifyLimit)
	if err != nil {
		return err
	}
	for _, res := range report.Results {
		printResult(cmd, res)
	}
	fmt.Fprintf(out, "%d runs: %d matched, %d divergent\n", report.TotalRuns, report.MatchedRuns, report.DivergentRuns)
	if report.DivergentRuns > 0 {
		return fmt.Errorf("%d runs diverged", report.DivergentRuns)
	}
	return nil
}

func printResult(cmd *cobra.Command, res verification.VerificationResult) {
	out := cmd.OutOrStdout()
	status := "OK"
	if !res.Match {
		status = "DIVERGED"
	}
	fmt.Fprintf(out, "%s %s (%d periods, %d points)\n", status, res.RunID, res.Periods, res.Points)
	for _, d := range res.Divergences {
		fmt.Fprintf(out, "  %s: stored=%v replayed=%v\n", d.Field, d.Expected, d.Actual)
	}
}
