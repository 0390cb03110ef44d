package metrics

import "github.com/prometheus/client_golang/prometheus"

// Simulation counter vectors
var (
	SimulationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulations_total",
		Help:      "Total number of simulation runs by distribution and status",
	}, []string{"distribution", "status"})

	SimulatedIterationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulated_iterations_total",
		Help:      "Total number of simulated matches by distribution",
	}, []string{"distribution"})

	CalibrationSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calibration_skipped_total",
		Help:      "Total number of tables left uncalibrated for lack of iterations",
	})
)

// Simulation histogram vectors
var (
	SimulationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_duration_seconds",
		Help:      "Duration of simulation runs in seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"distribution"})

	CalibrationFactor = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "calibration_factor",
		Help:      "Shrinkage factor applied to simulated probabilities",
		Buckets:   []float64{0.75, 0.8, 0.85, 0.9, 0.95, 1.0},
	})
)

// RecordSimulation records a simulation run.
// status should be one of: "success", "cancelled", "failure", "cached"
func RecordSimulation(distribution, status string, iterations int, durationSeconds float64) {
	SimulationsTotal.WithLabelValues(distribution, status).Inc()
	if status != "success" {
		return
	}
	SimulatedIterationsTotal.WithLabelValues(distribution).Add(float64(iterations))
	SimulationDuration.WithLabelValues(distribution).Observe(durationSeconds)
}

// RecordCalibration records the factor applied to a table.
func RecordCalibration(factor float64, skipped bool) {
	if skipped {
		CalibrationSkippedTotal.Inc()
		return
	}
	CalibrationFactor.Observe(factor)
}
