package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})

	BacktestBetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_bets_total",
		Help:      "Total number of flat backtest bets by outcome",
	}, []string{"outcome"})
)

// Backtest gauge vectors
var (
	BacktestRPS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_mean_rps",
		Help:      "Mean rank probability score of the last backtest by forecast",
	}, []string{"forecast"})

	BacktestROI = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_roi",
		Help:      "Flat stake return on investment of the last backtest",
	})
)

// RecordBacktestRun records a finished backtest.
// status should be one of: "success", "error"
func RecordBacktestRun(status string, rawRPS, calibratedRPS, roi float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	if status != "success" {
		return
	}
	BacktestRPS.WithLabelValues("raw").Set(rawRPS)
	BacktestRPS.WithLabelValues("calibrated").Set(calibratedRPS)
	BacktestROI.Set(roi)
}

// RecordBacktestBets records settled flat bets by outcome
func RecordBacktestBets(outcome string, n int) {
	if n > 0 {
		BacktestBetsTotal.WithLabelValues(outcome).Add(float64(n))
	}
}
