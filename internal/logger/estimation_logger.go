// Package logger provides estimation-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// EstimationLogger provides dedicated logging for outcome estimation.
type EstimationLogger struct {
	*logrus.Entry
}

// NewEstimationLogger creates a new estimation logger.
func NewEstimationLogger(baseLogger *logrus.Logger) *EstimationLogger {
	return &EstimationLogger{
		Entry: baseLogger.WithField("component", "estimation"),
	}
}

// LogEstimate logs a completed estimate.
func (el *EstimationLogger) LogEstimate(gameID int64, pointsDiff float64, sampleSize int, fallback, cacheHit bool) {
	el.WithFields(logrus.Fields{
		"game_id":     gameID,
		"points_diff": pointsDiff,
		"sample_size": sampleSize,
		"fallback":    fallback,
		"cache_hit":   cacheHit,
	}).Debug("Outcome estimate computed")
}

// LogLowConfidence logs an estimate priced from a thin neighborhood.
func (el *EstimationLogger) LogLowConfidence(gameID int64, pointsDiff float64, sampleSize, minSamples int) {
	el.WithFields(logrus.Fields{
		"game_id":     gameID,
		"points_diff": pointsDiff,
		"sample_size": sampleSize,
		"min_samples": minSamples,
	}).Warn("Low sample confidence")
}

// LogEstimateFailure logs a fixture that could not be estimated.
func (el *EstimationLogger) LogEstimateFailure(gameID int64, reason string, err error) {
	fields := logrus.Fields{
		"game_id": gameID,
		"reason":  reason,
	}
	// validation failures carry no cause
	if err != nil {
		fields[logrus.ErrorKey] = err.Error()
	}
	el.WithFields(fields).Warn("Fixture estimate failed")
}

// LogBatchEstimated logs the outcome of an estimate batch.
func (el *EstimationLogger) LogBatchEstimated(fixtures, estimated, failed int) {
	el.WithFields(logrus.Fields{
		"fixtures":  fixtures,
		"estimated": estimated,
		"failed":    failed,
	}).Info("Estimate batch completed")
}
