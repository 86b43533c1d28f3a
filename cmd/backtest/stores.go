package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"walkforward-lab/internal/cache"
	"walkforward-lab/internal/config"
	"walkforward-lab/internal/storage"
	"walkforward-lab/internal/storage/clickhouse"
	"walkforward-lab/internal/storage/memory"
	"walkforward-lab/internal/storage/migrations"
	"walkforward-lab/internal/storage/postgres"
)

// openStores connects the configured backends and applies migrations.
// Postgres holds runs and rebalance records, ClickHouse holds prices and
// portfolio series; a missing DSN leaves that half in memory.
func openStores(ctx context.Context, c *config.Config, log zerolog.Logger) (storage.Stores, func(), error) {
	stores := memory.NewStores()
	if c.Storage.UseMemory {
		log.Info().Msg("using in-memory storage")
		return stores, func() {}, nil
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if dsn := c.Storage.PostgresDSN; dsn != "" {
		pool, err := postgres.NewPool(ctx, dsn)
		if err != nil {
			return storage.Stores{}, nil, err
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return storage.Stores{}, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.Runs = postgres.NewRunStore(pool)
		stores.Rebalances = postgres.NewRebalanceRecordStore(pool)
		log.Info().Msg("postgres stores ready")
	} else {
		log.Warn().Msg("no postgres dsn, runs are kept in memory")
	}

	if dsn := c.Storage.ClickhouseDSN; dsn != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
		if err != nil {
			cleanup()
			return storage.Stores{}, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		stores.Prices = clickhouse.NewPriceSeriesStore(conn)
		stores.Portfolios = clickhouse.NewPortfolioSeriesStore(conn)
		log.Info().Msg("clickhouse stores ready")
	} else {
		log.Warn().Msg("no clickhouse dsn, prices and portfolio series are kept in memory")
	}

	return stores, cleanup, nil
}

// openCache returns the Redis universe cache when configured, otherwise an
// in-process cache.
func openCache(ctx context.Context, c *config.Config, log zerolog.Logger) (cache.UniverseCache, func(), error) {
	if c.Cache.RedisAddr == "" {
		return cache.NewMemoryCache(), func() {}, nil
	}
	rc, err := cache.NewRedisCache(ctx, c.Cache.RedisAddr, c.Cache.Prefix)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", c.Cache.RedisAddr).Msg("redis universe cache ready")
	return rc, func() { rc.Close() }, nil
}
