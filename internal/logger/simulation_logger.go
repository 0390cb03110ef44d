package logger

import (
	"github.com/sirupsen/logrus"
)

// SimulationLogger provides dedicated logging for simulation runs.
type SimulationLogger struct {
	*logrus.Entry
}

// NewSimulationLogger creates a new simulation logger.
func NewSimulationLogger(baseLogger *logrus.Logger) *SimulationLogger {
	return &SimulationLogger{
		Entry: baseLogger.WithField("component", "simulation"),
	}
}

// LogRunStarted logs the resolved parameters of a run. The seed is always
// logged so the run can be replayed.
func (sl *SimulationLogger) LogRunStarted(seed int64, distribution string, iterations, batches, workers int, homeRate, awayRate float64) {
	sl.WithFields(logrus.Fields{
		"seed":         seed,
		"distribution": distribution,
		"iterations":   iterations,
		"batches":      batches,
		"workers":      workers,
		"home_rate":    homeRate,
		"away_rate":    awayRate,
	}).Info("Simulation started")
}

// LogBatchProgress logs sampling progress.
func (sl *SimulationLogger) LogBatchProgress(batch, done, total int) {
	sl.WithFields(logrus.Fields{
		"batch":   batch,
		"sampled": done,
		"total":   total,
	}).Debug("Simulation progress")
}

// LogRunAborted logs a run stopped by cancellation or a sampling error.
func (sl *SimulationLogger) LogRunAborted(done, total int, err error) {
	sl.WithFields(logrus.Fields{
		"sampled": done,
		"total":   total,
	}).WithError(err).Warn("Simulation aborted")
}

// LogRunCompleted logs a finished run.
func (sl *SimulationLogger) LogRunCompleted(iterations int, durationMs, avgHomeGoals, avgAwayGoals float64) {
	sl.WithFields(logrus.Fields{
		"iterations":         iterations,
		"duration_ms":        durationMs,
		"average_home_goals": avgHomeGoals,
		"average_away_goals": avgAwayGoals,
	}).Info("Simulation completed")
}

// LogCalibration logs the shrinkage applied to a simulated table.
func (sl *SimulationLogger) LogCalibration(factor, expectedRPS, confidence float64, skipped bool) {
	entry := sl.WithFields(logrus.Fields{
		"calibration_factor": factor,
		"expected_rps":       expectedRPS,
		"confidence":         confidence,
		"skipped":            skipped,
	})
	if skipped {
		entry.Warn("Calibration skipped, too few iterations")
		return
	}
	entry.Info("Calibration applied")
}
