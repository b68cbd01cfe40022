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

func TestNewLoggerWithOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("debug", "production", buf)

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log.Info("hello")
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "hello", logEntry["msg"])
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	log := NewLoggerWithOutput("loud", "development", &bytes.Buffer{})

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestResolveEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, "production", resolveEnvironment("production"))
	assert.Equal(t, "development", resolveEnvironment("development"))

	t.Setenv("ENVIRONMENT", "production")
	assert.Equal(t, "production", resolveEnvironment("development"))
}

func TestNewLoggerUsesConfiguredEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	log := NewLogger("info", "production")
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestRatingLoggerSeasonReplayed(t *testing.T) {
	log, buf := setupTestLogger()
	ratingLogger := NewRatingLogger(log)

	ratingLogger.LogSeasonReplayed(20192020, 380, 800, 250, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "rating", logEntry["component"])
	assert.Equal(t, float64(20192020), logEntry["season"])
	assert.Equal(t, float64(250), logEntry["samples"])
	assert.Equal(t, "Season replayed", logEntry["msg"])
}

func TestRatingLoggerUpdateStarted(t *testing.T) {
	log, buf := setupTestLogger()
	ratingLogger := NewRatingLogger(log)

	ratingLogger.LogUpdateStarted("run-1", time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC), []int{20192020})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "run-1", logEntry["run_id"])
	assert.Equal(t, "2020-03-01", logEntry["through_date"])
}

func TestRatingLoggerUpdateFailed(t *testing.T) {
	log, buf := setupTestLogger()
	ratingLogger := NewRatingLogger(log)

	ratingLogger.LogUpdateFailed("run-2", 20192020, errors.New("no baseline"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "no baseline", logEntry["error"])
}

func TestEstimationLoggerLowConfidence(t *testing.T) {
	log, buf := setupTestLogger()
	estimationLogger := NewEstimationLogger(log)

	estimationLogger.LogLowConfidence(42, 12.5, 7, 20)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "estimation", logEntry["component"])
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, float64(7), logEntry["sample_size"])
}

func TestEstimationLoggerFailure(t *testing.T) {
	log, buf := setupTestLogger()
	estimationLogger := NewEstimationLogger(log)

	estimationLogger.LogEstimateFailure(7, "insufficient history", errors.New("empty neighborhood"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(7), logEntry["game_id"])
	assert.Equal(t, "insufficient history", logEntry["reason"])
	assert.Equal(t, "empty neighborhood", logEntry["error"])
}

func TestEstimationLoggerFailureWithoutCause(t *testing.T) {
	log, buf := setupTestLogger()
	estimationLogger := NewEstimationLogger(log)

	assert.NotPanics(t, func() {
		estimationLogger.LogEstimateFailure(9, "home and away team are the same", nil)
	})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(9), logEntry["game_id"])
	assert.NotContains(t, logEntry, "error")
}

func TestCalibrationLoggerMarginsFitted(t *testing.T) {
	log, buf := setupTestLogger()
	calibrationLogger := NewCalibrationLogger(log)

	calibrationLogger.LogMarginsFitted(10, 380, 1.8, 1.6)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "calibration", logEntry["component"])
	assert.Equal(t, 1.8, logEntry["home_win_margin"])
}
