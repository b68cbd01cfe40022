package models

// LeagueCalibration holds the per-league constants the rating update needs.
type LeagueCalibration struct {
	LeagueID          int64   `db:"league_id" json:"league_id" validate:"required"`
	StartingRating    float64 `db:"starting_rating" json:"starting_rating" validate:"gt=0"`
	ExpectedAdvantage float64 `db:"expected_advantage" json:"expected_advantage"`
	Intercept         float64 `db:"intercept" json:"intercept"`
	Coef              float64 `db:"coef" json:"coef" validate:"ne=0"`
	MarginBySign      MarginExpectationBySign `json:"margin_by_sign"`
}

// MarginExpectationBySign holds the expected absolute goal margin of home and
// away wins.
type MarginExpectationBySign struct {
	HomeWin float64 `db:"home_win" json:"home_win" validate:"gt=0"`
	AwayWin float64 `db:"away_win" json:"away_win" validate:"gt=0"`
}

// For returns the expected margin for a decisive sign. Draws have none.
func (m MarginExpectationBySign) For(sign Sign) (float64, bool) {
	switch sign {
	case SignHome:
		return m.HomeWin, true
	case SignAway:
		return m.AwayWin, true
	default:
		return 0, false
	}
}

// ExpectedMargin returns the goal margin the linear model predicts for a
// points difference.
func (c *LeagueCalibration) ExpectedMargin(pointsDiff float64) float64 {
	return c.Intercept + c.Coef*pointsDiff
}

// PointsDiffForMargin inverts the linear margin model.
func (c *LeagueCalibration) PointsDiffForMargin(margin float64) float64 {
	return (margin - c.Intercept) / c.Coef
}
