package rating

import (
	"fmt"

	"github.com/b0yank/betting-recommender/internal/models"
)

// CalibrationTable holds the per-league calibration records, read-only once
// built.
type CalibrationTable struct {
	leagues map[int64]*models.LeagueCalibration
}

// NewCalibrationTable validates and indexes league calibrations
func NewCalibrationTable(calibrations []*models.LeagueCalibration) (*CalibrationTable, error) {
	t := &CalibrationTable{leagues: make(map[int64]*models.LeagueCalibration, len(calibrations))}
	for _, c := range calibrations {
		if err := validateCalibration(c); err != nil {
			return nil, err
		}
		if _, dup := t.leagues[c.LeagueID]; dup {
			return nil, fmt.Errorf("%w: league %d calibrated twice", models.ErrInvalidParameters, c.LeagueID)
		}
		cp := *c
		t.leagues[c.LeagueID] = &cp
	}
	return t, nil
}

func validateCalibration(c *models.LeagueCalibration) error {
	switch {
	case c.Coef == 0:
		return fmt.Errorf("%w: league %d margin coefficient is zero", models.ErrInvalidParameters, c.LeagueID)
	case c.StartingRating <= 0:
		return fmt.Errorf("%w: league %d starting rating must be positive", models.ErrInvalidParameters, c.LeagueID)
	case c.MarginBySign.HomeWin <= 0 || c.MarginBySign.AwayWin <= 0:
		return fmt.Errorf("%w: league %d expected margins must be positive", models.ErrInvalidParameters, c.LeagueID)
	}
	return nil
}

// Get returns a league's calibration
func (t *CalibrationTable) Get(leagueID int64) (*models.LeagueCalibration, error) {
	c, ok := t.leagues[leagueID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownLeague, leagueID)
	}
	return c, nil
}

// Len returns the number of calibrated leagues
func (t *CalibrationTable) Len() int {
	return len(t.leagues)
}
