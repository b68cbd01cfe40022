package models

import "time"

// Sign is a match result from the home team's perspective.
type Sign string

const (
	SignHome Sign = "1"
	SignDraw Sign = "X"
	SignAway Sign = "2"
)

// Score holds the half-time and full-time goals of a completed game
type Score struct {
	FTHome int `db:"ft_home" json:"ft_home" validate:"gte=0"`
	FTAway int `db:"ft_away" json:"ft_away" validate:"gte=0"`
	HTHome int `db:"ht_home" json:"ht_home" validate:"gte=0"`
	HTAway int `db:"ht_away" json:"ht_away" validate:"gte=0"`
}

// Sign returns the full-time result sign
func (s Score) Sign() Sign {
	return signOf(s.FTHome, s.FTAway)
}

// HalfTimeSign returns the half-time result sign
func (s Score) HalfTimeSign() Sign {
	return signOf(s.HTHome, s.HTAway)
}

// Margin returns the signed full-time goal difference
func (s Score) Margin() int {
	return s.FTHome - s.FTAway
}

// TotalGoals returns the full-time goal count
func (s Score) TotalGoals() int {
	return s.FTHome + s.FTAway
}

func signOf(home, away int) Sign {
	switch {
	case home > away:
		return SignHome
	case home < away:
		return SignAway
	default:
		return SignDraw
	}
}

// Game is a completed game or an upcoming fixture supplied by the game feed.
type Game struct {
	ID         int64     `db:"id" json:"id"`
	LeagueID   int64     `db:"league_id" json:"league_id" validate:"required"`
	Season     Season    `db:"season" json:"season" validate:"required"`
	Date       time.Time `db:"date" json:"date" validate:"required"`
	HomeTeamID int64     `db:"home_team_id" json:"home_team_id" validate:"required"`
	AwayTeamID int64     `db:"away_team_id" json:"away_team_id" validate:"required,nefield=HomeTeamID"`
	Score      *Score    `json:"score,omitempty"`
}

// IsCompleted checks whether the game has a final score
func (g *Game) IsCompleted() bool {
	return g.Score != nil
}
