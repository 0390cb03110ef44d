// Package metrics provides the centralized Prometheus metrics registry for the
// analysis engines.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "true_odds"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Total number of analysis runs by status",
	}, []string{"status"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_cache_hits_total",
		Help:      "Total number of simulation cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_cache_misses_total",
		Help:      "Total number of simulation cache misses",
	})
)

// Gauge metrics
var (
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "simulation_cache_hit_ratio",
		Help:      "Hit ratio of the simulation result cache",
	})
	CacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "simulation_cache_entries",
		Help:      "Number of simulation results currently cached",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Duration of full analysis runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(AnalysesTotal)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)
		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(CacheEntries)
		registry.MustRegister(AnalysisDuration)

		// Register simulation metrics
		registry.MustRegister(SimulationsTotal)
		registry.MustRegister(SimulatedIterationsTotal)
		registry.MustRegister(SimulationDuration)
		registry.MustRegister(CalibrationFactor)
		registry.MustRegister(CalibrationSkippedTotal)

		// Register value metrics
		registry.MustRegister(PatternPredictionsTotal)
		registry.MustRegister(SkippedRecordsTotal)
		registry.MustRegister(OpportunitiesTotal)
		registry.MustRegister(ConsensusConfidence)
		registry.MustRegister(StakeSuggestionsTotal)
		registry.MustRegister(KellyFraction)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestBetsTotal)
		registry.MustRegister(BacktestRPS)
		registry.MustRegister(BacktestROI)
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

// WriteTextfile writes every registered metric to path in the text exposition
// format, for a node-exporter textfile collector. The file is replaced
// atomically.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, GetRegistry()); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// RecordAnalysis records a finished analysis run.
// status should be one of: "success", "degraded", "failure"
func RecordAnalysis(status string, durationSeconds float64) {
	AnalysesTotal.WithLabelValues(status).Inc()
	AnalysisDuration.Observe(durationSeconds)
}

// RecordCacheLookup records a simulation cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHitsTotal.Inc()
		return
	}
	CacheMissesTotal.Inc()
}

// UpdateCacheStats updates the cache gauges.
func UpdateCacheStats(hitRatio float64, entries int) {
	CacheHitRatio.Set(hitRatio)
	CacheEntries.Set(float64(entries))
}
