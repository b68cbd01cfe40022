package estimator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/b0yank/betting-recommender/internal/market"
	"github.com/b0yank/betting-recommender/internal/models"
)

// Defaults for neighborhood selection.
const (
	DefaultTolerance  = 30.0
	DefaultMinSamples = 20
)

// Ratings answers "latest rating strictly before" queries
type Ratings interface {
	LatestBefore(teamID int64, date time.Time) (*models.TeamRatingEntry, bool)
}

// Config holds the neighborhood parameters
type Config struct {
	Tolerance  float64
	MinSamples int
}

// DefaultConfig returns the default neighborhood parameters
func DefaultConfig() Config {
	return Config{Tolerance: DefaultTolerance, MinSamples: DefaultMinSamples}
}

// Neighborhood is the set of samples a fixture is priced from.
type Neighborhood struct {
	Samples  []*models.OutcomeSample
	Fallback bool
}

// LowConfidence reports whether the neighborhood is thinner than required
func (n Neighborhood) LowConfidence(minSamples int) bool {
	return len(n.Samples) < minSamples
}

// OutcomeEstimator prices fixtures from the outcome sample table.
type OutcomeEstimator struct {
	tolerance  float64
	minSamples int
	catalog    *market.Catalog
}

// NewOutcomeEstimator validates the configuration and creates an estimator
func NewOutcomeEstimator(cfg Config, catalog *market.Catalog) (*OutcomeEstimator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("market catalog is required")
	}
	if cfg.Tolerance <= 0 {
		return nil, fmt.Errorf("%w: points difference tolerance must be positive", models.ErrInvalidParameters)
	}
	if cfg.MinSamples <= 0 {
		return nil, fmt.Errorf("%w: minimum sample count must be positive", models.ErrInvalidParameters)
	}
	return &OutcomeEstimator{tolerance: cfg.Tolerance, minSamples: cfg.MinSamples, catalog: catalog}, nil
}

// Catalog returns the markets the estimator prices
func (e *OutcomeEstimator) Catalog() *market.Catalog {
	return e.catalog
}

// MinSamples returns the neighborhood size below which estimates are flagged
func (e *OutcomeEstimator) MinSamples() int {
	return e.minSamples
}

// PointsDiff returns the rating gap of a fixture from each team's latest
// entry before kickoff, optionally including form.
func (e *OutcomeEstimator) PointsDiff(game *models.Game, ratings Ratings, useForm bool) (float64, error) {
	home, ok := ratings.LatestBefore(game.HomeTeamID, game.Date)
	if !ok {
		return 0, fmt.Errorf("%w: home team %d before %s", models.ErrMissingBaseline, game.HomeTeamID, game.Date.Format("2006-01-02"))
	}
	away, ok := ratings.LatestBefore(game.AwayTeamID, game.Date)
	if !ok {
		return 0, fmt.Errorf("%w: away team %d before %s", models.ErrMissingBaseline, game.AwayTeamID, game.Date.Format("2006-01-02"))
	}

	if useForm {
		return home.HomeStrength() - away.AwayStrength(), nil
	}
	return home.Rating - away.Rating, nil
}

// Neighborhood selects the samples within tolerance of pointsDiff. A thin
// window lying below the top of the table is replaced by the samples with
// the largest points difference.
func (e *OutcomeEstimator) Neighborhood(pointsDiff float64, samples *SampleTable) Neighborhood {
	lo, hi := pointsDiff-e.tolerance, pointsDiff+e.tolerance
	window := samples.Range(lo, hi)

	n := len(window)
	if n == 0 || n >= e.minSamples {
		return Neighborhood{Samples: window}
	}
	if top, ok := samples.Max(); ok && hi < top {
		return Neighborhood{Samples: samples.Top(e.minSamples), Fallback: true}
	}
	return Neighborhood{Samples: window}
}

// Estimate prices every catalog market for a fixture.
func (e *OutcomeEstimator) Estimate(game *models.Game, ratings Ratings, samples *SampleTable, useForm bool) (*models.OutcomeEstimate, error) {
	pointsDiff, err := e.PointsDiff(game, ratings, useForm)
	if err != nil {
		return nil, err
	}

	hood := e.Neighborhood(pointsDiff, samples)
	if len(hood.Samples) == 0 {
		return nil, &models.InsufficientHistoryError{GameID: game.ID, PointsDiff: pointsDiff, Tolerance: e.tolerance}
	}

	scores := make([]models.Score, len(hood.Samples))
	for i, s := range hood.Samples {
		scores[i] = s.Score
	}

	return &models.OutcomeEstimate{
		ID:            uuid.New(),
		GameID:        game.ID,
		LeagueID:      game.LeagueID,
		Season:        game.Season,
		Date:          game.Date,
		HomeTeamID:    game.HomeTeamID,
		AwayTeamID:    game.AwayTeamID,
		PointsDiff:    pointsDiff,
		SampleSize:    len(hood.Samples),
		LowConfidence: hood.LowConfidence(e.minSamples),
		UsedFallback:  hood.Fallback,
		Probabilities: e.catalog.Probabilities(scores),
	}, nil
}
