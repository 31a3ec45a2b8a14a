// Package metrics provides the centralized Prometheus metrics registry.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crypto_backtester",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by strategy and status",
	}, []string{"strategy", "status"})

	TradesExecutedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crypto_backtester",
		Name:      "trades_executed_total",
		Help:      "Total number of simulated trades by strategy and exit reason",
	}, []string{"strategy", "exit_reason"})

	DataFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crypto_backtester",
		Name:      "data_fetches_total",
		Help:      "Total number of market data fetches by source and status",
	}, []string{"source", "status"})

	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crypto_backtester",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of HTTP circuit breaker trips",
	})
)

// Gauge metrics
var (
	LastRunFinalCapital = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "crypto_backtester",
		Name:      "last_run_final_capital",
		Help:      "Final capital of the most recent run per strategy",
	}, []string{"strategy"})

	CachedCandles = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "crypto_backtester",
		Name:      "cached_candles",
		Help:      "Number of candles held in the on-disk cache per pair",
	}, []string{"symbol", "interval"})
)

// Histogram metrics
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "crypto_backtester",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})

	DataFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "crypto_backtester",
		Name:      "data_fetch_duration_seconds",
		Help:      "Duration of market data fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	TradesPerRun = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crypto_backtester",
		Name:      "trades_per_run",
		Help:      "Number of completed trades per backtest run",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 250, 500},
	}, []string{"strategy"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(TradesExecutedTotal)
		registry.MustRegister(DataFetchesTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(LastRunFinalCapital)
		registry.MustRegister(CachedCandles)

		registry.MustRegister(BacktestDuration)
		registry.MustRegister(DataFetchDuration)
		registry.MustRegister(TradesPerRun)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordBacktestRun records a completed or failed run.
// status should be one of: "success", "failure"
func RecordBacktestRun(strategy, status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(strategy, status).Inc()
	BacktestDuration.Observe(durationSeconds)
}

// RecordTrade records one simulated trade.
func RecordTrade(strategy, exitReason string) {
	TradesExecutedTotal.WithLabelValues(strategy, exitReason).Inc()
}

// RecordDataFetch records a market data fetch attempt.
func RecordDataFetch(source, status string, durationSeconds float64) {
	DataFetchesTotal.WithLabelValues(source, status).Inc()
	DataFetchDuration.Observe(durationSeconds)
}

// UpdateFinalCapital updates the final capital gauge for a strategy.
func UpdateFinalCapital(strategy string, amount float64) {
	LastRunFinalCapital.WithLabelValues(strategy).Set(amount)
}

// UpdateCachedCandles updates the cached candle count for a pair.
func UpdateCachedCandles(symbol, interval string, count float64) {
	CachedCandles.WithLabelValues(symbol, interval).Set(count)
}
