package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key violation")
	ErrMissingBaseline   = errors.New("no baseline rating for team")
	ErrUnknownLeague     = errors.New("league has no calibration record")
	ErrNotChronological  = errors.New("rating entry predates the team's latest entry")
	ErrGameNotCompleted  = errors.New("game has no final score")
	ErrUnknownMarket     = errors.New("unknown market")
	ErrInvalidParameters = errors.New("invalid parameters")
)

// InsufficientHistoryError reports an empty neighborhood of historical samples
// around a fixture's points difference.
type InsufficientHistoryError struct {
	GameID     int64
	PointsDiff float64
	Tolerance  float64
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient historical data for rating gap %.2f (±%.1f) in game %d",
		e.PointsDiff, e.Tolerance, e.GameID)
}

// FixtureError isolates a failure to a single fixture of an estimate batch.
type FixtureError struct {
	GameID int64
	Reason string
	Err    error
}

func (e *FixtureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("game %d: %s: %v", e.GameID, e.Reason, e.Err)
	}
	return fmt.Sprintf("game %d: %s", e.GameID, e.Reason)
}

func (e *FixtureError) Unwrap() error {
	return e.Err
}

// NewFixtureError creates a new fixture error
func NewFixtureError(gameID int64, reason string, err error) *FixtureError {
	return &FixtureError{GameID: gameID, Reason: reason, Err: err}
}
