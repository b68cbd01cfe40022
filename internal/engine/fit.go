package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/b0yank/betting-recommender/internal/models"
	"github.com/b0yank/betting-recommender/internal/rating"
)

// FitDefaults seeds the calibration of a league that has none yet
type FitDefaults struct {
	StartingRating    float64
	ExpectedAdvantage float64
}

// FitCalibration refits a league's calibration from history and persists it.
// Expected margins by sign come from every completed feed game of the
// league; the margin model is refit from the league's outcome samples when
// there are enough of them, otherwise the stored model is kept.
func (e *Engine) FitCalibration(ctx context.Context, leagueID int64, defaults FitDefaults) (*models.LeagueCalibration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	cal := &models.LeagueCalibration{
		LeagueID:          leagueID,
		StartingRating:    defaults.StartingRating,
		ExpectedAdvantage: defaults.ExpectedAdvantage,
	}
	if existing, err := e.calibration.Get(leagueID); err == nil {
		*cal = *existing
	} else if !errors.Is(err, models.ErrUnknownLeague) {
		return nil, err
	}

	seasons, err := e.feed.Seasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed seasons: %w", err)
	}
	var games []*models.Game
	for _, s := range seasons {
		inSeason, err := e.feed.GamesInSeason(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("failed to load games for season %s: %w", s, err)
		}
		for _, g := range inSeason {
			if g.LeagueID == leagueID {
				games = append(games, g)
			}
		}
	}

	bySign, err := rating.FitMarginBySign(games)
	if err != nil {
		return nil, fmt.Errorf("failed to fit margins for league %d: %w", leagueID, err)
	}
	cal.MarginBySign = bySign
	e.calibrationLog.LogMarginsFitted(leagueID, len(games), bySign.HomeWin, bySign.AwayWin)

	var samples []*models.OutcomeSample
	for _, s := range e.samples.All() {
		if s.LeagueID == leagueID {
			samples = append(samples, s)
		}
	}
	if intercept, coef, err := rating.FitMarginModel(samples); err == nil && coef != 0 {
		cal.Intercept, cal.Coef = intercept, coef
		e.calibrationLog.LogMarginModelFitted(leagueID, len(samples), intercept, coef)
	} else if cal.Coef == 0 {
		return nil, fmt.Errorf("%w: league %d has no margin model and %d samples are not enough to fit one",
			models.ErrInvalidParameters, leagueID, len(samples))
	}

	if _, err := rating.NewCalibrationTable([]*models.LeagueCalibration{cal}); err != nil {
		return nil, fmt.Errorf("fitted calibration for league %d is invalid: %w", leagueID, err)
	}
	if err := e.repos.Calibrations.Upsert(ctx, cal); err != nil {
		return nil, fmt.Errorf("failed to save calibration for league %d: %w", leagueID, err)
	}
	if err := e.loadCalibrations(ctx); err != nil {
		return nil, err
	}
	return cal, nil
}
