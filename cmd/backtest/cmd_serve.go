package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"walkforward-lab/internal/api"
	"walkforward-lab/internal/observability"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored runs and Prometheus metrics over HTTP",
	Long: `Start a read-only HTTP API:

  GET /health
  GET /metrics
  GET /runs?limit=N
  GET /runs/{id}
  GET /runs/{id}/rebalances
  GET /runs/{id}/portfolio`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address; overrides server.addr")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer closeStores()

	srv := api.NewServer(stores, observability.Handler(), logger)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
