package logger

import (
	"github.com/sirupsen/logrus"
)

// PatternLogger provides dedicated logging for historical pattern matching.
type PatternLogger struct {
	*logrus.Entry
}

// NewPatternLogger creates a new pattern logger.
func NewPatternLogger(baseLogger *logrus.Logger) *PatternLogger {
	return &PatternLogger{
		Entry: baseLogger.WithField("component", "pattern"),
	}
}

// LogRecordSkipped logs a malformed historical record.
func (pl *PatternLogger) LogRecordSkipped(role string, index int, err error) {
	pl.WithFields(logrus.Fields{
		"role":  role,
		"index": index,
	}).WithError(err).Warn("Historical record skipped")
}

// LogPatternMatched logs a completed pattern prediction.
func (pl *PatternLogger) LogPatternMatched(patternID string, sampleSize, skipped int, confidence float64, quality string) {
	pl.WithFields(logrus.Fields{
		"pattern_id":  patternID,
		"sample_size": sampleSize,
		"skipped":     skipped,
		"confidence":  confidence,
		"quality":     quality,
	}).Info("Pattern prediction completed")
}

// LogInsufficientHistory logs a corpus with nothing usable in it.
func (pl *PatternLogger) LogInsufficientHistory(records, skipped int) {
	pl.WithFields(logrus.Fields{
		"records": records,
		"skipped": skipped,
	}).Warn("Insufficient history for pattern prediction")
}
