package rating

import (
	"fmt"
	"math"

	"github.com/b0yank/betting-recommender/internal/models"
)

// Default update constants.
const (
	DefaultKFactor   = 20.0
	DefaultMaxMargin = 5
	ratingScale      = 400.0
)

// UpdaterConfig holds the tunable constants of the match update
type UpdaterConfig struct {
	KFactor          float64
	MaxMargin        int
	FormLearningRate float64
}

// DefaultUpdaterConfig returns the default update constants
func DefaultUpdaterConfig() UpdaterConfig {
	return UpdaterConfig{
		KFactor:          DefaultKFactor,
		MaxMargin:        DefaultMaxMargin,
		FormLearningRate: DefaultFormLearningRate,
	}
}

// ExpectedScore returns the logistic expected score of a side leading by
// pointsDiff rating points.
func ExpectedScore(pointsDiff float64) float64 {
	return 1 / (1 + math.Pow(10, -pointsDiff/ratingScale))
}

// MatchUpdate is the outcome of replaying one game.
type MatchUpdate struct {
	Home        *models.TeamRatingEntry
	Away        *models.TeamRatingEntry
	Sample      *models.OutcomeSample
	PointsDiff  float64
	ScaleFactor float64
}

// MatchRatingUpdater applies the per-game rating and form update.
type MatchRatingUpdater struct {
	kFactor     float64
	maxMargin   int
	form        *FormTracker
	calibration *CalibrationTable
}

// Validate checks the update constants
func (c UpdaterConfig) Validate() error {
	if c.KFactor <= 0 {
		return fmt.Errorf("%w: k factor must be positive", models.ErrInvalidParameters)
	}
	if c.MaxMargin <= 0 {
		return fmt.Errorf("%w: max margin must be positive", models.ErrInvalidParameters)
	}
	if c.FormLearningRate < 0 || c.FormLearningRate > 1 {
		return fmt.Errorf("%w: form learning rate must be within [0, 1]", models.ErrInvalidParameters)
	}
	return nil
}

// NewMatchRatingUpdater validates the configuration and creates an updater
func NewMatchRatingUpdater(cfg UpdaterConfig, calibration *CalibrationTable) (*MatchRatingUpdater, error) {
	if calibration == nil {
		return nil, fmt.Errorf("calibration table is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	form, err := NewFormTracker(cfg.FormLearningRate)
	if err != nil {
		return nil, err
	}

	return &MatchRatingUpdater{
		kFactor:     cfg.KFactor,
		maxMargin:   cfg.MaxMargin,
		form:        form,
		calibration: calibration,
	}, nil
}

// Update replays one completed game against the working set. Both teams must
// already have an entry in the working set.
func (u *MatchRatingUpdater) Update(ws *WorkingSet, game *models.Game) (*MatchUpdate, error) {
	if !game.IsCompleted() {
		return nil, fmt.Errorf("%w: game %d", models.ErrGameNotCompleted, game.ID)
	}
	cal, err := u.calibration.Get(game.LeagueID)
	if err != nil {
		return nil, err
	}
	home, err := ws.Current(game.HomeTeamID)
	if err != nil {
		return nil, err
	}
	away, err := ws.Current(game.AwayTeamID)
	if err != nil {
		return nil, err
	}

	score := *game.Score
	pointsDiff := home.Rating - away.Rating + cal.ExpectedAdvantage

	var homeResult float64
	switch score.Sign() {
	case models.SignHome:
		homeResult = 1
	case models.SignDraw:
		homeResult = 0.5
	}
	awayResult := 1 - homeResult

	deltaHome := (homeResult - ExpectedScore(pointsDiff)) * u.kFactor
	deltaAway := (awayResult - ExpectedScore(-pointsDiff)) * u.kFactor

	margin := u.clampMargin(score.Margin())
	factor, err := u.scaleFactor(cal, score.Sign(), margin)
	if err != nil {
		return nil, err
	}

	correction := u.form.Correction(cal, margin, pointsDiff)
	homeForm, awayForm := u.form.Update(home.HomeFormDelta, away.AwayFormDelta, correction)

	newHome := &models.TeamRatingEntry{
		TeamID:         home.TeamID,
		LeagueID:       home.LeagueID,
		Rating:         home.Rating + deltaHome*factor,
		HomeFormDelta:  homeForm,
		AwayFormDelta:  home.AwayFormDelta,
		HomeGamesCount: home.HomeGamesCount + 1,
		AwayGamesCount: home.AwayGamesCount,
		Date:           game.Date,
	}
	newAway := &models.TeamRatingEntry{
		TeamID:         away.TeamID,
		LeagueID:       away.LeagueID,
		Rating:         away.Rating + deltaAway*factor,
		HomeFormDelta:  away.HomeFormDelta,
		AwayFormDelta:  awayForm,
		HomeGamesCount: away.HomeGamesCount,
		AwayGamesCount: away.AwayGamesCount + 1,
		Date:           game.Date,
	}

	rounds := ws.Rounds(game.LeagueID)
	newHome.IsCalibrating = newHome.GamesPlayed() <= rounds
	newAway.IsCalibrating = newAway.GamesPlayed() <= rounds

	var sample *models.OutcomeSample
	if !newHome.IsCalibrating && !newAway.IsCalibrating {
		sample = &models.OutcomeSample{
			Score:      score,
			PointsDiff: (home.Rating + homeForm) - (away.Rating + awayForm),
			LeagueID:   game.LeagueID,
			Season:     game.Season,
			Date:       game.Date,
		}
	}

	ws.record(newHome, newAway, sample)

	return &MatchUpdate{
		Home:        newHome,
		Away:        newAway,
		Sample:      sample,
		PointsDiff:  pointsDiff,
		ScaleFactor: factor,
	}, nil
}

// ReplaySeason replays games league by league in date order. Any failure
// aborts the replay since later games depend on earlier ones.
func (u *MatchRatingUpdater) ReplaySeason(ws *WorkingSet, games []*models.Game) (int, error) {
	ordered := append([]*models.Game(nil), games...)
	sortGames(ordered)

	for i, g := range ordered {
		if _, err := u.Update(ws, g); err != nil {
			return i, fmt.Errorf("failed to replay game %d on %s: %w", g.ID, g.Date.Format("2006-01-02"), err)
		}
	}
	return len(ordered), nil
}

func (u *MatchRatingUpdater) clampMargin(margin int) int {
	if margin > u.maxMargin {
		return u.maxMargin
	}
	if margin < -u.maxMargin {
		return -u.maxMargin
	}
	return margin
}

func (u *MatchRatingUpdater) scaleFactor(cal *models.LeagueCalibration, sign models.Sign, margin int) (float64, error) {
	if margin == 0 {
		return 1, nil
	}
	expected, ok := cal.MarginBySign.For(sign)
	if !ok || expected <= 0 {
		return 0, fmt.Errorf("%w: league %d has no expected margin for sign %s",
			models.ErrInvalidParameters, cal.LeagueID, sign)
	}
	return math.Sqrt(math.Abs(float64(margin)) / expected), nil
}
