// Package pipeline runs a walk-forward backtest end to end.
// It coordinates: prices → strategy PnL universe → walk-forward → metrics →
// persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"walkforward-lab/internal/cache"
	"walkforward-lab/internal/config"
	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/idhash"
	"walkforward-lab/internal/loader"
	"walkforward-lab/internal/metrics"
	"walkforward-lab/internal/observability"
	"walkforward-lab/internal/reporting"
	"walkforward-lab/internal/storage"
	"walkforward-lab/internal/strategy"
	"walkforward-lab/internal/walkforward"
)

// Phase names used for logging and duration metrics.
const (
	PhaseUniverse    = "universe"
	PhaseWalkForward = "walkforward"
	PhaseMetrics     = "metrics"
	PhasePersist     = "persist"
)

// ErrNoPriceSource is returned by LoadPrices when neither a CSV path nor a
// price store is configured.
var ErrNoPriceSource = errors.New("no price source: set data.prices_csv or configure a price store")

// Pipeline coordinates one configuration's walk-forward runs.
type Pipeline struct {
	cfg        *config.Config
	strategies []strategy.Strategy
	chain      Chain

	// Stores; any may be nil, which skips that part of persistence
	stores storage.Stores

	cache   cache.UniverseCache // optional
	metrics *observability.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// Options for creating a Pipeline.
type Options struct {
	Config  *config.Config
	Stores  storage.Stores
	Cache   cache.UniverseCache    // optional universe cache
	Metrics *observability.Metrics // defaults to an unregistered set
	Logger  zerolog.Logger
}

// New validates the configuration and builds the strategy set.
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline: config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	strategies, err := strategy.FromConfigs(opts.Config.StrategyConfigs())
	if err != nil {
		return nil, fmt.Errorf("strategies: %w", err)
	}

	chain := ChainFromConfig(opts.Config)
	if err := chain.Validate(); err != nil {
		return nil, err
	}

	m := opts.Metrics
	if m == nil {
		m = observability.NewMetrics("", prometheus.NewRegistry())
	}

	return &Pipeline{
		cfg:        opts.Config,
		strategies: strategies,
		chain:      chain,
		stores:     opts.Stores,
		cache:      opts.Cache,
		metrics:    m,
		log:        opts.Logger.With().Str("component", "pipeline").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock sets a custom clock function for deterministic run timestamps.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Result is the outcome of one run.
type Result struct {
	Run       domain.RunRecord
	Prices    *domain.PriceSeries
	Universe  *domain.StrategyUniverse
	Portfolio domain.PortfolioPnL
	Records   []domain.RebalanceRecord
	Skipped   int  // warm-up periods
	Scheduled int  // periods generated by the calendar
	CacheHit  bool // universe came from the cache
	Stored    bool // run persisted by this call
}

// LoadPrices reads the configured CSV, or the configured symbol from the
// price store.
func (p *Pipeline) LoadPrices(ctx context.Context) (*domain.PriceSeries, error) {
	if path := p.cfg.Data.PricesCSV; path != "" {
		ps, err := loader.LoadCSV(path, loader.Options{Symbol: p.cfg.Data.Symbol})
		if err != nil {
			return nil, fmt.Errorf("load prices: %w", err)
		}
		return ps, nil
	}
	if p.stores.Prices == nil {
		return nil, ErrNoPriceSource
	}

	start := time.Now()
	ps, err := p.stores.Prices.GetBySymbol(ctx, p.cfg.Data.Symbol)
	p.metrics.RecordStoreOp("prices", "get_by_symbol", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load prices %s: %w", p.cfg.Data.Symbol, err)
	}
	return ps, nil
}

// Run executes the full pipeline over prices.
// Phases:
//  1. Build (or fetch from cache) the strategy universe
//  2. Walk-forward selection and ensemble stitching
//  3. Portfolio metrics
//  4. Persist run, rebalance records and portfolio series
func (p *Pipeline) Run(ctx context.Context, prices *domain.PriceSeries) (res *Result, err error) {
	started := time.Now()
	defer func() {
		if err != nil {
			p.metrics.RecordRun(observability.StatusError, 0, 0)
		}
	}()

	if prices == nil {
		return nil, domain.ErrEmptySeries
	}
	if err := prices.Validate(); err != nil {
		return nil, fmt.Errorf("prices: %w", err)
	}

	runJSON, err := p.cfg.RunJSON()
	if err != nil {
		return nil, fmt.Errorf("encode run config: %w", err)
	}
	runID := idhash.ComputeRunID(runJSON, prices)
	log := p.log.With().Str("run_id", runID).Str("symbol", prices.Symbol).Logger()

	log.Info().
		Int("observations", prices.Len()).
		Int("strategies", len(p.strategies)).
		Msg("starting walk-forward run")

	// Phase 1: universe
	phase := time.Now()
	universe, hit, err := p.universe(ctx, prices)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (universe): %w", err)
	}
	p.metrics.ObservePhase(PhaseUniverse, time.Since(phase))
	log.Debug().Bool("cache_hit", hit).Dur("duration", time.Since(phase)).Msg("universe ready")

	// Phase 2: walk-forward
	phase = time.Now()
	ens, err := walkforward.New(universe, p.cfg.Ensembler())
	if err != nil {
		return nil, fmt.Errorf("phase 2 (walkforward): %w", err)
	}
	wf, err := ens.Run()
	if err != nil {
		return nil, fmt.Errorf("phase 2 (walkforward): %w", err)
	}
	p.metrics.ObservePhase(PhaseWalkForward, time.Since(phase))
	p.metrics.RecordRebalances(len(wf.Records), wf.Skipped)

	event := log.Info().
		Int("periods", len(wf.Records)).
		Int("skipped", wf.Skipped).
		Str("score", ens.ScoreName())
	if first, ok := wf.FirstRecord(); ok {
		event = event.Str("first_period", first.Period.Start.Format(domain.DateLayout))
	}
	event.Msg("walk-forward complete")

	// Phase 3: metrics
	phase = time.Now()
	summary := metrics.Compute(wf.Portfolio.Returns, p.cfg.WalkForward.TradingDays)
	p.metrics.ObservePhase(PhaseMetrics, time.Since(phase))

	res = &Result{
		Run: domain.RunRecord{
			RunID:      runID,
			Symbol:     prices.Symbol,
			Strategies: universe.Len(),
			Periods:    len(wf.Records),
			FirstDate:  prices.Index.First(),
			LastDate:   prices.Index[prices.Len()-1],
			Config:     runJSON,
			Summary:    summary,
			CreatedAt:  p.now(),
		},
		Prices:    prices,
		Universe:  universe,
		Portfolio: wf.Portfolio,
		Records:   wf.Records,
		Skipped:   wf.Skipped,
		Scheduled: wf.Scheduled,
		CacheHit:  hit,
	}

	// Phase 4: persistence
	phase = time.Now()
	if res.Stored, err = p.persist(ctx, res); err != nil {
		return nil, fmt.Errorf("phase 4 (persist): %w", err)
	}
	p.metrics.ObservePhase(PhasePersist, time.Since(phase))

	p.metrics.RecordRun(observability.StatusOK, summary.Sharpe, summary.MaxDrawdown)
	log.Info().
		Float64("sharpe", summary.Sharpe).
		Float64("total_return", summary.TotalReturn).
		Bool("stored", res.Stored).
		Dur("duration", time.Since(started)).
		Msg("walk-forward run finished")

	return res, nil
}

// Report builds the report of a finished run, including standalone
// strategy rows.
func (p *Pipeline) Report(res *Result) *reporting.Report {
	gen := reporting.NewGenerator(p.stores.Runs, p.stores.Rebalances, p.stores.Portfolios).
		WithClock(p.now).
		WithTradingDays(p.cfg.WalkForward.TradingDays)
	return gen.Build(res.Run, res.Portfolio, res.Records, res.Universe)
}

// WriteReport builds the report of res and writes it to the output directory.
func (p *Pipeline) WriteReport(res *Result) ([]string, error) {
	paths, err := reporting.WriteAll(p.cfg.Output.Dir, p.Report(res), p.cfg.WalkForward.TradingDays)
	if err != nil {
		return nil, err
	}
	p.metrics.ReportsGenerated.Inc()
	p.log.Info().Str("run_id", res.Run.RunID).Str("dir", p.cfg.Output.Dir).Msg("report written")
	return paths, nil
}

// universe returns the cached universe for these prices and settings, or
// builds and caches it. Cache failures only cost a rebuild.
func (p *Pipeline) universe(ctx context.Context, prices *domain.PriceSeries) (*domain.StrategyUniverse, bool, error) {
	if p.cache == nil {
		u, err := p.BuildUniverse(ctx, prices)
		return u, false, err
	}

	settings, err := p.cfg.UniverseJSON()
	if err != nil {
		return nil, false, fmt.Errorf("encode universe settings: %w", err)
	}
	key := idhash.ComputeUniverseKey(settings, prices)

	u, err := p.cache.Get(ctx, key)
	switch {
	case err == nil:
		p.metrics.RecordCache(observability.CacheHit)
		return u, true, nil
	case errors.Is(err, cache.ErrCacheMiss):
		p.metrics.RecordCache(observability.CacheMiss)
	default:
		p.metrics.RecordCache(observability.CacheError)
		p.log.Warn().Err(err).Str("key", key).Msg("universe cache lookup failed")
	}

	u, err = p.BuildUniverse(ctx, prices)
	if err != nil {
		return nil, false, err
	}
	if err := p.cache.Set(ctx, key, u, p.cfg.Cache.TTL); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("universe cache store failed")
	}
	return u, false, nil
}

// BuildUniverse computes every strategy's PnL in parallel. The universe is
// assembled only after all strategies finish.
func (p *Pipeline) BuildUniverse(ctx context.Context, prices *domain.PriceSeries) (*domain.StrategyUniverse, error) {
	returns := prices.Returns()
	masks := p.chain.Masks(prices.Prices, p.strategies)
	results := make([]domain.StrategyPnL, len(p.strategies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.WalkForward.Workers)
	for i, s := range p.strategies {
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := p.chain.Run(s, prices.Prices, returns, masks[s.Family().Regime()])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.metrics.StrategiesEvaluated.Add(float64(len(results)))

	return domain.NewUniverse(prices.Index, results)
}

// persist stores the run's prices, records and portfolio, then the run
// header. The header marks a complete run: a run ID already present is left
// untouched. Writes left behind by an earlier failed attempt are accepted as
// they are, since one run ID always carries the same data.
func (p *Pipeline) persist(ctx context.Context, res *Result) (bool, error) {
	if p.stores.Runs == nil {
		return false, nil
	}
	runID := res.Run.RunID

	_, err := p.stores.Runs.GetByID(ctx, runID)
	if err == nil {
		p.log.Info().Str("run_id", runID).Msg("run already stored, skipping persistence")
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("get run: %w", err)
	}

	if err := p.storePrices(ctx, res.Prices); err != nil {
		return false, fmt.Errorf("insert prices: %w", err)
	}

	if p.stores.Rebalances != nil && len(res.Records) > 0 {
		err := p.timed("rebalances", "insert_bulk", func() error {
			return p.stores.Rebalances.InsertBulk(ctx, runID, res.Records)
		})
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return false, fmt.Errorf("insert rebalances: %w", err)
		}
	}

	if p.stores.Portfolios != nil {
		err := p.timed("portfolios", "insert_bulk", func() error {
			return p.stores.Portfolios.InsertBulk(ctx, runID, res.Portfolio)
		})
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return false, fmt.Errorf("insert portfolio: %w", err)
		}
	}

	err = p.timed("runs", "insert", func() error {
		return p.stores.Runs.Insert(ctx, &res.Run)
	})
	if errors.Is(err, storage.ErrDuplicateKey) {
		// A concurrent writer completed the same run.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert run: %w", err)
	}
	return true, nil
}

// storePrices writes the observations of prices the price store does not
// hold yet, so a stored run can always be replayed from the store.
func (p *Pipeline) storePrices(ctx context.Context, prices *domain.PriceSeries) error {
	if p.stores.Prices == nil || prices == nil || prices.Len() == 0 {
		return nil
	}

	have := make(map[string]struct{})
	stored, err := p.stores.Prices.GetByDateRange(ctx, prices.Symbol, prices.Index.First(), prices.Index.Last())
	switch {
	case err == nil:
		for _, d := range stored.Index {
			have[d.Format(domain.DateLayout)] = struct{}{}
		}
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	var missing []domain.PricePoint
	for _, pt := range prices.Points() {
		if _, ok := have[pt.Date.Format(domain.DateLayout)]; !ok {
			missing = append(missing, pt)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	err = p.timed("prices", "insert_bulk", func() error {
		return p.stores.Prices.InsertBulk(ctx, prices.Symbol, missing)
	})
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil
	}
	return err
}

func (p *Pipeline) timed(store, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.RecordStoreOp(store, op, time.Since(start), err)
	return err
}
