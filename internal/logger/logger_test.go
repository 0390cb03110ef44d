package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug", "json")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger("nonsense", "text")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestNewLoggerProductionDefaultsToJSON(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	log := NewLogger("info", "")
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestSimulationLoggerRunStarted(t *testing.T) {
	log, buf := setupTestLogger()
	simLogger := NewSimulationLogger(log)

	simLogger.LogRunStarted(42, "poisson", 100000, 10, 4, 1.5, 1.1)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "simulation", logEntry["component"])
	assert.Equal(t, float64(42), logEntry["seed"])
	assert.Equal(t, "poisson", logEntry["distribution"])
}

func TestSimulationLoggerRunAborted(t *testing.T) {
	log, buf := setupTestLogger()
	simLogger := NewSimulationLogger(log)

	simLogger.LogRunAborted(20000, 100000, errors.New("context canceled"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "context canceled", logEntry["error"])
}

func TestSimulationLoggerCalibrationSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	NewSimulationLogger(log).LogCalibration(1.0, 0.2, 0.35, true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, true, logEntry["skipped"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestPatternLoggerMatched(t *testing.T) {
	log, buf := setupTestLogger()
	NewPatternLogger(log).LogPatternMatched("a1b2c3d4e5f60718", 12, 1, 0.6, "MEDIUM")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pattern", logEntry["component"])
	assert.Equal(t, float64(12), logEntry["sample_size"])
}

func TestValueLoggerEngineDegraded(t *testing.T) {
	log, buf := setupTestLogger()
	NewValueLogger(log).LogEngineDegraded("run-1", "pattern", "insufficient history")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pattern", logEntry["engine"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestValueLoggerStakeDecision(t *testing.T) {
	log, buf := setupTestLogger()
	NewValueLogger(log).LogStakeDecision("over_2_5", "MEDIUM", 1.9, 6.4, 0.0711, 17.77)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "over_2_5", logEntry["market"])
	assert.Equal(t, 17.77, logEntry["stake_amount"])
}

func TestValueLoggerWeakConsensus(t *testing.T) {
	log, buf := setupTestLogger()
	NewValueLogger(log).LogWeakConsensus("run-1", "over_2_5", 0.2, -0.3)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "over_2_5", logEntry["market"])
	assert.Equal(t, -0.3, logEntry["consensus_edge"])
	assert.Equal(t, "debug", logEntry["level"])
}

func TestAuditLoggerAnalysisRequest(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogAnalysisRequest(
		"run-1",
		"Arsenal v Chelsea",
		42,
		100000,
		"poisson",
		18,
		6,
		time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC),
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "Arsenal v Chelsea", logEntry["fixture"])
}

func BenchmarkValueLoggerOpportunity(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	log.SetLevel(logrus.DebugLevel)
	valueLogger := NewValueLogger(log)

	for i := 0; i < b.N; i++ {
		valueLogger.LogOpportunity("run-1", "over_2_5", "high", "BUY", 0.09, 0.7, 2.1)
	}
}
