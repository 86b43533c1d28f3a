// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Run metrics
	RunsTotal           *prometheus.CounterVec
	PhaseDuration       *prometheus.HistogramVec
	StrategiesEvaluated prometheus.Counter
	RebalancesTotal     *prometheus.CounterVec
	ReportsGenerated    prometheus.Counter

	// Cache metrics
	CacheRequests *prometheus.CounterVec

	// Storage metrics
	StoreDuration *prometheus.HistogramVec
	StoreErrors   *prometheus.CounterVec

	// Result metrics
	LastSharpe        prometheus.Gauge
	LastMaxDrawdown   prometheus.Gauge
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "walkforward_lab"
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of walk-forward runs by status",
		}, []string{"status"}),
		PhaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "phase_duration_seconds",
			Help:      "Pipeline phase duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"phase"}),
		StrategiesEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "strategies_evaluated_total",
			Help:      "Total number of strategy PnL series computed",
		}),
		RebalancesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "walkforward",
			Name:      "rebalances_total",
			Help:      "Rebalance periods by outcome (recorded, skipped)",
		}, []string{"outcome"}),
		ReportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of report sets written",
		}),

		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Universe cache lookups by result (hit, miss, error)",
		}, []string{"result"}),

		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_errors_total",
			Help:      "Total number of failed store operations",
		}, []string{"store", "operation"}),

		LastSharpe: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "last_sharpe",
			Help:      "Sharpe ratio of the most recent run's portfolio",
		}),
		LastMaxDrawdown: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "last_max_drawdown",
			Help:      "Max drawdown of the most recent run's portfolio",
		}),
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordRun records the outcome of a run.
func (m *Metrics) RecordRun(status string, sharpe, maxDrawdown float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	if status != StatusOK {
		return
	}
	m.LastSharpe.Set(sharpe)
	m.LastMaxDrawdown.Set(maxDrawdown)
	m.LastSuccessfulRun.Set(float64(time.Now().Unix()))
}

// ObservePhase records how long a pipeline phase took.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	m.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordRebalances adds recorded and skipped period counts.
func (m *Metrics) RecordRebalances(recorded, skipped int) {
	m.RebalancesTotal.WithLabelValues("recorded").Add(float64(recorded))
	m.RebalancesTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordCache records a universe cache lookup.
func (m *Metrics) RecordCache(result string) {
	m.CacheRequests.WithLabelValues(result).Inc()
}

// RecordStoreOp records store operation metrics.
func (m *Metrics) RecordStoreOp(store, operation string, d time.Duration, err error) {
	m.StoreDuration.WithLabelValues(store, operation).Observe(d.Seconds())
	if err != nil {
		m.StoreErrors.WithLabelValues(store, operation).Inc()
	}
}

// Run statuses and cache results used as label values.
const (
	StatusOK    = "ok"
	StatusError = "error"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)
