// Package logger provides calibration logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// CalibrationLogger records offline fits of league calibration constants.
type CalibrationLogger struct {
	*logrus.Entry
}

// NewCalibrationLogger creates a new calibration logger.
func NewCalibrationLogger(baseLogger *logrus.Logger) *CalibrationLogger {
	return &CalibrationLogger{
		Entry: baseLogger.WithField("component", "calibration"),
	}
}

// LogMarginsFitted logs a fitted expected-margin-by-sign table.
func (cl *CalibrationLogger) LogMarginsFitted(leagueID int64, games int, homeWin, awayWin float64) {
	cl.WithFields(logrus.Fields{
		"league_id":       leagueID,
		"games":           games,
		"home_win_margin": homeWin,
		"away_win_margin": awayWin,
	}).Info("Expected margins fitted")
}

// LogMarginModelFitted logs a fitted linear margin model.
func (cl *CalibrationLogger) LogMarginModelFitted(leagueID int64, samples int, intercept, coef float64) {
	cl.WithFields(logrus.Fields{
		"league_id": leagueID,
		"samples":   samples,
		"intercept": intercept,
		"coef":      coef,
	}).Info("Margin model fitted")
}
