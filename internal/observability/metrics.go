// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Backtest metrics
	BacktestsRun       *prometheus.CounterVec
	BacktestDuration   *prometheus.HistogramVec
	TradesSimulated    *prometheus.CounterVec
	OptimizationsRun   *prometheus.CounterVec
	CombinationsTested prometheus.Counter

	// Market data metrics
	PricesFetched    *prometheus.CounterVec
	FetchErrors      *prometheus.CounterVec
	APICallLatency   *prometheus.HistogramVec
	TicksReceived    *prometheus.CounterVec
	LastTickReceived prometheus.Gauge

	// Storage metrics
	StoreQueryDuration *prometheus.HistogramVec
	StoreQueryErrors   *prometheus.CounterVec
	CachedPriceRows    *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "grid_trade_lab"
	}

	return &Metrics{
		// Backtest metrics
		BacktestsRun: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Total number of backtests run by strategy",
		}, []string{"strategy"}),
		BacktestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "duration_seconds",
			Help:      "Backtest execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		TradesSimulated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "trades_simulated_total",
			Help:      "Total number of trades simulated by strategy",
		}, []string{"strategy"}),
		OptimizationsRun: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimize",
			Name:      "runs_total",
			Help:      "Total number of parameter optimizations run by strategy",
		}, []string{"strategy"}),
		CombinationsTested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimize",
			Name:      "combinations_tested_total",
			Help:      "Total number of parameter combinations backtested",
		}),

		// Market data metrics
		PricesFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "prices_fetched_total",
			Help:      "Total number of daily prices fetched by symbol",
		}, []string{"symbol"}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "fetch_errors_total",
			Help:      "Total number of market data fetch errors by symbol",
		}, []string{"symbol"}),
		APICallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "api_call_latency_seconds",
			Help:      "Market data API call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		TicksReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "ticks_received_total",
			Help:      "Total number of live ticks received by symbol",
		}, []string{"symbol"}),
		LastTickReceived: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "last_tick_received_timestamp",
			Help:      "Unix timestamp of last live tick received",
		}),

		// Storage metrics
		StoreQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Price store query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		StoreQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_errors_total",
			Help:      "Total number of price store query errors",
		}, []string{"backend", "operation"}),
		CachedPriceRows: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "cached_price_rows",
			Help:      "Number of cached price rows by symbol",
		}, []string{"symbol"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordBacktest records a completed backtest run.
func RecordBacktest(strategy string, trades int, durationSeconds float64) {
	DefaultMetrics.BacktestsRun.WithLabelValues(strategy).Inc()
	DefaultMetrics.BacktestDuration.WithLabelValues(strategy).Observe(durationSeconds)
	DefaultMetrics.TradesSimulated.WithLabelValues(strategy).Add(float64(trades))
}

// RecordOptimization records a completed optimization run.
func RecordOptimization(strategy string, combinations int) {
	DefaultMetrics.OptimizationsRun.WithLabelValues(strategy).Inc()
	DefaultMetrics.CombinationsTested.Add(float64(combinations))
}

// RecordPricesFetched records fetched daily prices for a symbol.
func RecordPricesFetched(symbol string, count int) {
	DefaultMetrics.PricesFetched.WithLabelValues(symbol).Add(float64(count))
}

// RecordFetchError records a market data fetch error.
func RecordFetchError(symbol string) {
	DefaultMetrics.FetchErrors.WithLabelValues(symbol).Inc()
}

// RecordAPILatency records a market data API call latency.
func RecordAPILatency(endpoint string, seconds float64) {
	DefaultMetrics.APICallLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordTick records a received live tick.
func RecordTick(symbol string, receivedAtUnix float64) {
	DefaultMetrics.TicksReceived.WithLabelValues(symbol).Inc()
	DefaultMetrics.LastTickReceived.Set(receivedAtUnix)
}

// RecordCachedRows records the number of cached price rows for a symbol.
func RecordCachedRows(symbol string, rows int) {
	DefaultMetrics.CachedPriceRows.WithLabelValues(symbol).Set(float64(rows))
}

// RecordStoreQuery records price store query metrics.
func RecordStoreQuery(backend, operation string, seconds float64, err error) {
	DefaultMetrics.StoreQueryDuration.WithLabelValues(backend, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.StoreQueryErrors.WithLabelValues(backend, operation).Inc()
	}
}
