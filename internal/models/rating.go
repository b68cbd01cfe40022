package models

import "time"

// TeamRatingEntry is one version of a team's rating and form, valid from Date
// until the team's next entry.
type TeamRatingEntry struct {
	TeamID         int64     `db:"team_id" json:"team_id"`
	LeagueID       int64     `db:"league_id" json:"league_id"`
	Rating         float64   `db:"rating" json:"rating"`
	HomeFormDelta  float64   `db:"home_form_delta" json:"home_form_delta"`
	AwayFormDelta  float64   `db:"away_form_delta" json:"away_form_delta"`
	HomeGamesCount int       `db:"home_games_count" json:"home_games_count"`
	AwayGamesCount int       `db:"away_games_count" json:"away_games_count"`
	IsCalibrating  bool      `db:"is_calibrating" json:"is_calibrating"`
	Date           time.Time `db:"date" json:"date"`
}

// GamesPlayed returns the number of games the team has played this season
func (e *TeamRatingEntry) GamesPlayed() int {
	return e.HomeGamesCount + e.AwayGamesCount
}

// HomeStrength returns the rating adjusted by home form
func (e *TeamRatingEntry) HomeStrength() float64 {
	return e.Rating + e.HomeFormDelta
}

// AwayStrength returns the rating adjusted by away form
func (e *TeamRatingEntry) AwayStrength() float64 {
	return e.Rating + e.AwayFormDelta
}

// OutcomeSample is a completed game of two non-calibrating teams, keyed by
// the points difference at kickoff.
type OutcomeSample struct {
	Score
	PointsDiff float64   `db:"points_diff" json:"points_diff"`
	LeagueID   int64     `db:"league_id" json:"league_id"`
	Season     Season    `db:"season" json:"season"`
	Date       time.Time `db:"date" json:"date"`
}

// SeasonBatch holds the rows produced by replaying one season, committed
// together.
type SeasonBatch struct {
	Season  Season
	Entries []*TeamRatingEntry
	Samples []*OutcomeSample
}

// IsEmpty checks whether the batch has nothing to commit
func (b *SeasonBatch) IsEmpty() bool {
	return len(b.Entries) == 0 && len(b.Samples) == 0
}
