package repository

import (
	"context"
	"time"

	"github.com/b0yank/betting-recommender/internal/models"
)

// GameRepository defines the interface for historical game data access.
// It serves as the game feed of rating updates and estimates.
type GameRepository interface {
	Seasons(ctx context.Context) ([]models.Season, error)
	GamesInSeason(ctx context.Context, season models.Season) ([]*models.Game, error)
	ProvideGames(ctx context.Context, leagueIDs []int64, start, end time.Time) ([]*models.Game, error)
	InsertBatch(ctx context.Context, games []*models.Game) error
}

// RatingRepository defines the interface for team rating history access
type RatingRepository interface {
	// GetAll returns every entry ordered by date, oldest first
	GetAll(ctx context.Context) ([]*models.TeamRatingEntry, error)
	GetLatestAsOf(ctx context.Context, teamID int64, date time.Time) (*models.TeamRatingEntry, error)
	InsertBatch(ctx context.Context, entries []*models.TeamRatingEntry) error
}

// SampleRepository defines the interface for outcome sample access
type SampleRepository interface {
	GetAll(ctx context.Context) ([]*models.OutcomeSample, error)
	GetByPointsDiffRange(ctx context.Context, lo, hi float64) ([]*models.OutcomeSample, error)
	InsertBatch(ctx context.Context, samples []*models.OutcomeSample) error
}

// CalibrationRepository defines the interface for per-league calibration access
type CalibrationRepository interface {
	GetAll(ctx context.Context) ([]*models.LeagueCalibration, error)
	Upsert(ctx context.Context, calibration *models.LeagueCalibration) error
}

// StateCommitter persists one season's rating entries and samples atomically
type StateCommitter interface {
	CommitSeason(ctx context.Context, batch *models.SeasonBatch) error
}
