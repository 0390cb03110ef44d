package logger

import (
	"github.com/sirupsen/logrus"
)

// ValueLogger provides dedicated logging for value detection and staking.
type ValueLogger struct {
	*logrus.Entry
}

// NewValueLogger creates a new value logger.
func NewValueLogger(baseLogger *logrus.Logger) *ValueLogger {
	return &ValueLogger{
		Entry: baseLogger.WithField("component", "value"),
	}
}

// LogConsensus logs the cross-engine agreement for an analysis.
func (vl *ValueLogger) LogConsensus(runID, level string, agreement, confidence, boost float64, opportunities, conflicts int) {
	vl.WithFields(logrus.Fields{
		"run_id":             runID,
		"agreement_level":    level,
		"agreement_fraction": agreement,
		"overall_confidence": confidence,
		"confidence_boost":   boost,
		"opportunities":      opportunities,
		"conflicts":          conflicts,
	}).Info("Consensus computed")
}

// LogOpportunity logs one value opportunity.
func (vl *ValueLogger) LogOpportunity(runID, market, tier, recommendation string, edge, confidence, odds float64) {
	vl.WithFields(logrus.Fields{
		"run_id":         runID,
		"market":         market,
		"tier":           tier,
		"recommendation": recommendation,
		"edge":           edge,
		"confidence":     confidence,
		"odds":           odds,
	}).Debug("Value opportunity detected")
}

// LogWeakConsensus logs a market one engine flagged but the blended edge does not support.
func (vl *ValueLogger) LogWeakConsensus(runID, market string, maxEdge, consensusEdge float64) {
	vl.WithFields(logrus.Fields{
		"run_id":         runID,
		"market":         market,
		"max_edge":       maxEdge,
		"consensus_edge": consensusEdge,
	}).Debug("Flagged market dropped on consensus edge")
}

// LogStakeDecision logs a Kelly stake suggestion.
func (vl *ValueLogger) LogStakeDecision(market, priority string, odds, edgePercentage, kellyFraction, stake float64) {
	vl.WithFields(logrus.Fields{
		"market":          market,
		"priority":        priority,
		"odds":            odds,
		"edge_percentage": edgePercentage,
		"kelly_fraction":  kellyFraction,
		"stake_amount":    stake,
	}).Info("Stake suggested")
}

// LogEngineDegraded logs an engine dropped from an analysis.
func (vl *ValueLogger) LogEngineDegraded(runID, engine, reason string) {
	vl.WithFields(logrus.Fields{
		"run_id": runID,
		"engine": engine,
		"reason": reason,
	}).Warn("Engine unavailable, continuing without it")
}
