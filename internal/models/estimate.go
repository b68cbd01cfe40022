package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutcomeEstimate holds the empirical market probabilities for one fixture.
type OutcomeEstimate struct {
	ID            uuid.UUID          `json:"id"`
	GameID        int64              `json:"game_id"`
	LeagueID      int64              `json:"league_id"`
	Season        Season             `json:"season"`
	Date          time.Time          `json:"date"`
	HomeTeamID    int64              `json:"home_team_id"`
	AwayTeamID    int64              `json:"away_team_id"`
	PointsDiff    float64            `json:"points_diff"`
	SampleSize    int                `json:"sample_size"`
	LowConfidence bool               `json:"low_confidence"`
	UsedFallback  bool               `json:"used_fallback"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// Probability returns the probability of a market and whether it is known
func (e *OutcomeEstimate) Probability(market string) (float64, bool) {
	p, ok := e.Probabilities[market]
	return p, ok
}

// FairCoefficient returns the decimal coefficient 1/p rounded to two places.
// A market with zero probability has no fair coefficient.
func (e *OutcomeEstimate) FairCoefficient(market string) (decimal.Decimal, bool) {
	p, ok := e.Probabilities[market]
	if !ok || p <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(1).Div(decimal.NewFromFloat(p)).Round(2), true
}
