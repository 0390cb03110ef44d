package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger records what each analysis was asked to do, so any result can
// be reproduced from the log alone.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogAnalysisRequest logs the inputs of an analysis run.
func (al *AuditLogger) LogAnalysisRequest(runID, fixture string, seed int64, iterations int, distribution string, historyRecords, pricedMarkets int, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"run_id":          runID,
		"fixture":         fixture,
		"seed":            seed,
		"iterations":      iterations,
		"distribution":    distribution,
		"history_records": historyRecords,
		"priced_markets":  pricedMarkets,
		"timestamp":       timestamp.Unix(),
	}).Info("Analysis requested")
}

// LogCacheEvent logs a simulation cache hit or miss.
func (al *AuditLogger) LogCacheEvent(runID, key string, hit bool) {
	al.WithFields(logrus.Fields{
		"run_id":    runID,
		"cache_key": key,
		"cache_hit": hit,
	}).Debug("Simulation cache lookup")
}
