// Package logger provides rating-update logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RatingLogger provides dedicated logging for rating update passes.
type RatingLogger struct {
	*logrus.Entry
}

// NewRatingLogger creates a new rating logger.
func NewRatingLogger(baseLogger *logrus.Logger) *RatingLogger {
	return &RatingLogger{
		Entry: baseLogger.WithField("component", "rating"),
	}
}

// LogUpdateStarted logs the start of an update pass.
func (rl *RatingLogger) LogUpdateStarted(runID string, throughDate time.Time, seasons []int) {
	rl.WithFields(logrus.Fields{
		"run_id":       runID,
		"through_date": throughDate.Format("2006-01-02"),
		"seasons":      seasons,
	}).Info("Rating update started")
}

// LogUpdateSkipped logs an update pass with nothing to replay.
func (rl *RatingLogger) LogUpdateSkipped(runID string, latestDate time.Time) {
	rl.WithFields(logrus.Fields{
		"run_id":      runID,
		"latest_date": latestDate.Format("2006-01-02"),
	}).Debug("Ratings already up to date")
}

// LogSeasonInitialized logs the seeding of a season.
func (rl *RatingLogger) LogSeasonInitialized(season int, teams, carriedOver int) {
	rl.WithFields(logrus.Fields{
		"season":       season,
		"teams":        teams,
		"carried_over": carriedOver,
	}).Info("Season initialized")
}

// LogSeasonReplayed logs the replay of a season's games.
func (rl *RatingLogger) LogSeasonReplayed(season int, games, entries, samples int, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"season":      season,
		"games":       games,
		"entries":     entries,
		"samples":     samples,
		"duration_ms": durationMs,
	}).Info("Season replayed")
}

// LogBatchCommitted logs a persisted season batch.
func (rl *RatingLogger) LogBatchCommitted(season int, entries, samples int) {
	rl.WithFields(logrus.Fields{
		"season":  season,
		"entries": entries,
		"samples": samples,
	}).Info("Season batch committed")
}

// LogUpdateFailed logs an aborted update pass.
func (rl *RatingLogger) LogUpdateFailed(runID string, season int, err error) {
	rl.WithFields(logrus.Fields{
		"run_id": runID,
		"season": season,
		"error":  err.Error(),
	}).Error("Rating update aborted")
}
