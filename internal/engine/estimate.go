package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/b0yank/betting-recommender/internal/metrics"
	"github.com/b0yank/betting-recommender/internal/models"
)

// Failure reasons reported for fixtures that could not be estimated
const (
	ReasonSameTeam            = "home and away team are the same"
	ReasonMissingDate         = "fixture has no date"
	ReasonLeagueNotRequested  = "league outside the request"
	ReasonNoRatingHistory     = "team has no rating history"
	ReasonInsufficientHistory = "no historical games near the rating gap"
	ReasonEstimateFailed      = "estimate failed"
)

// EstimateRequest selects the fixtures to estimate
type EstimateRequest struct {
	LeagueIDs []int64
	Start     time.Time
	End       time.Time
	UseForm   bool
}

// Validate checks the request
func (r EstimateRequest) Validate() error {
	if len(r.LeagueIDs) == 0 {
		return fmt.Errorf("%w: at least one league is required", models.ErrInvalidParameters)
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", models.ErrInvalidParameters)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: end date before start date", models.ErrInvalidParameters)
	}
	return nil
}

// EstimateBatch is the result of one estimate run. A fixture that fails is
// reported in Failures and never affects the others.
type EstimateBatch struct {
	Estimates []*models.OutcomeEstimate
	Failures  []*models.FixtureError
}

// EstimateOdds updates ratings through the current date and then estimates
// every fixture in the requested leagues and date range.
func (e *Engine) EstimateOdds(ctx context.Context, req EstimateRequest) (*EstimateBatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := e.UpdateRatings(ctx, e.opts.Clock()); err != nil {
		return nil, fmt.Errorf("failed to update ratings before estimating: %w", err)
	}

	fixtures, err := e.feed.ProvideGames(ctx, req.LeagueIDs, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	leagues := make(map[int64]bool, len(req.LeagueIDs))
	for _, id := range req.LeagueIDs {
		leagues[id] = true
	}

	batch := &EstimateBatch{}
	for _, game := range fixtures {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		est, ferr := e.estimateFixture(game, leagues, req.UseForm)
		if ferr != nil {
			batch.Failures = append(batch.Failures, ferr)
			e.estimationLog.LogEstimateFailure(game.ID, ferr.Reason, ferr.Err)
			metrics.RecordEstimate(metrics.EstimateStatusFailed, 0)
			continue
		}
		batch.Estimates = append(batch.Estimates, est)
	}

	e.estimationLog.LogBatchEstimated(len(fixtures), len(batch.Estimates), len(batch.Failures))
	return batch, nil
}

func (e *Engine) estimateFixture(game *models.Game, leagues map[int64]bool, useForm bool) (*models.OutcomeEstimate, *models.FixtureError) {
	switch {
	case game.HomeTeamID == game.AwayTeamID:
		return nil, models.NewFixtureError(game.ID, ReasonSameTeam, nil)
	case game.Date.IsZero():
		return nil, models.NewFixtureError(game.ID, ReasonMissingDate, nil)
	case !leagues[game.LeagueID]:
		return nil, models.NewFixtureError(game.ID, ReasonLeagueNotRequested, nil)
	}

	key := NewCacheKey(game, useForm)
	if e.cache != nil {
		if est, ok := e.cache.Get(key); ok {
			e.logLowConfidence(est)
			e.estimationLog.LogEstimate(game.ID, est.PointsDiff, est.SampleSize, est.UsedFallback, true)
			return est, nil
		}
	}

	est, err := e.estimator.Estimate(game, e.store, e.samples, useForm)
	if err != nil {
		var insufficient *models.InsufficientHistoryError
		switch {
		case errors.As(err, &insufficient):
			return nil, models.NewFixtureError(game.ID, ReasonInsufficientHistory, err)
		case errors.Is(err, models.ErrMissingBaseline):
			return nil, models.NewFixtureError(game.ID, ReasonNoRatingHistory, err)
		default:
			return nil, models.NewFixtureError(game.ID, ReasonEstimateFailed, err)
		}
	}

	status := metrics.EstimateStatusOK
	switch {
	case est.UsedFallback:
		status = metrics.EstimateStatusFallback
	case est.LowConfidence:
		status = metrics.EstimateStatusLowConfidence
	}
	metrics.RecordEstimate(status, est.SampleSize)
	e.logLowConfidence(est)
	e.estimationLog.LogEstimate(game.ID, est.PointsDiff, est.SampleSize, est.UsedFallback, false)

	if e.cache != nil {
		e.cache.Set(key, est)
	}
	return est, nil
}

func (e *Engine) logLowConfidence(est *models.OutcomeEstimate) {
	if est.LowConfidence {
		e.estimationLog.LogLowConfidence(est.GameID, est.PointsDiff, est.SampleSize, e.estimator.MinSamples())
	}
}
