// Package engine ties the rating store, the outcome sample table and the
// persisted state together behind the two public operations: rating updates
// and fixture estimation.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/b0yank/betting-recommender/internal/config"
	"github.com/b0yank/betting-recommender/internal/estimator"
	"github.com/b0yank/betting-recommender/internal/logger"
	"github.com/b0yank/betting-recommender/internal/market"
	"github.com/b0yank/betting-recommender/internal/metrics"
	"github.com/b0yank/betting-recommender/internal/models"
	"github.com/b0yank/betting-recommender/internal/rating"
	"github.com/b0yank/betting-recommender/internal/repository"
)

// HistoricalGameFeed provides the games ratings are replayed from and the
// fixtures estimates are produced for.
type HistoricalGameFeed interface {
	Seasons(ctx context.Context) ([]models.Season, error)
	GamesInSeason(ctx context.Context, season models.Season) ([]*models.Game, error)
	ProvideGames(ctx context.Context, leagueIDs []int64, start, end time.Time) ([]*models.Game, error)
}

// Options holds the engine's tunable parameters
type Options struct {
	Updater   rating.UpdaterConfig
	Schedule  rating.CalibrationSchedule
	Estimator estimator.Config
	GoalLines []float64
	// CacheSize of zero disables the estimate cache
	CacheSize int
	CacheTTL  time.Duration
	Clock     func() time.Time
}

// DefaultOptions returns the default engine parameters
func DefaultOptions() Options {
	return Options{
		Updater:   rating.DefaultUpdaterConfig(),
		Schedule:  rating.DefaultCalibrationSchedule(),
		Estimator: estimator.DefaultConfig(),
		GoalLines: market.DefaultGoalLines,
		CacheSize: 10000,
		CacheTTL:  time.Hour,
		Clock:     time.Now,
	}
}

// OptionsFromConfig maps application configuration onto engine options
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.Updater = rating.UpdaterConfig{
		KFactor:          cfg.Rating.KFactor,
		MaxMargin:        cfg.Rating.MaxMargin,
		FormLearningRate: cfg.Rating.FormLearningRate,
	}
	opts.Schedule = rating.CalibrationSchedule{
		InitialRounds: cfg.Rating.InitialCalibrationRounds,
		Rounds:        cfg.Rating.CalibrationRounds,
	}
	opts.Estimator = estimator.Config{
		Tolerance:  cfg.Estimator.PointsDiffTolerance,
		MinSamples: cfg.Estimator.MinSamples,
	}
	opts.GoalLines = cfg.Estimator.GoalLines
	opts.CacheSize = 0
	if cfg.Cache.Enabled {
		opts.CacheSize = cfg.Cache.MaxSize
		opts.CacheTTL = cfg.CacheTTL()
	}
	return opts
}

// Engine owns the in-memory rating snapshot. Updates take the write lock for
// the whole pass; estimates share the read lock.
type Engine struct {
	mu sync.RWMutex

	feed  HistoricalGameFeed
	repos *repository.Repositories
	opts  Options

	estimator *estimator.OutcomeEstimator
	cache     *EstimateCache

	// populated by load
	loaded      bool
	calibration *rating.CalibrationTable
	updater     *rating.MatchRatingUpdater
	initializer *rating.SeasonInitializer
	store       *rating.Store
	samples     *estimator.SampleTable
	firstSeason map[int64]models.Season
	lastUpdate  time.Time

	ratingLog      *logger.RatingLogger
	estimationLog  *logger.EstimationLogger
	calibrationLog *logger.CalibrationLogger
}

// New validates the options and creates an engine. State is read from the
// repositories on first use or by an explicit Load.
func New(feed HistoricalGameFeed, repos *repository.Repositories, opts Options, log *logrus.Logger) (*Engine, error) {
	if feed == nil {
		return nil, fmt.Errorf("game feed is required")
	}
	if repos == nil || repos.Ratings == nil || repos.Samples == nil || repos.Calibrations == nil || repos.Committer == nil {
		return nil, fmt.Errorf("rating, sample, calibration and commit repositories are required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Schedule.InitialRounds < 0 || opts.Schedule.Rounds < 0 {
		return nil, fmt.Errorf("%w: calibration rounds must not be negative", models.ErrInvalidParameters)
	}

	catalog, err := market.NewCatalog(opts.GoalLines)
	if err != nil {
		return nil, fmt.Errorf("failed to build market catalog: %w", err)
	}
	est, err := estimator.NewOutcomeEstimator(opts.Estimator, catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to create outcome estimator: %w", err)
	}

	if err := opts.Updater.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rating update options: %w", err)
	}

	e := &Engine{
		feed:           feed,
		repos:          repos,
		opts:           opts,
		estimator:      est,
		ratingLog:      logger.NewRatingLogger(log),
		estimationLog:  logger.NewEstimationLogger(log),
		calibrationLog: logger.NewCalibrationLogger(log),
	}
	if opts.CacheSize > 0 {
		e.cache = NewEstimateCache(opts.CacheTTL, opts.CacheSize)
	}
	return e, nil
}

// Load reads calibrations, rating history and outcome samples from the
// repositories, replacing any in-memory state.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(ctx)
}

func (e *Engine) ensureLoaded(ctx context.Context) error {
	if e.loaded {
		return nil
	}
	return e.load(ctx)
}

func (e *Engine) load(ctx context.Context) error {
	if err := e.loadCalibrations(ctx); err != nil {
		return err
	}

	entries, err := e.repos.Ratings.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rating history: %w", err)
	}
	store := rating.NewStore()
	if err := store.Append(entries...); err != nil {
		return fmt.Errorf("failed to rebuild rating store: %w", err)
	}

	samples, err := e.repos.Samples.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load outcome samples: %w", err)
	}

	firstSeason := make(map[int64]models.Season)
	for _, entry := range entries {
		s := models.SeasonOf(entry.Date)
		if first, ok := firstSeason[entry.LeagueID]; !ok || s < first {
			firstSeason[entry.LeagueID] = s
		}
	}

	e.store = store
	e.samples = estimator.NewSampleTable(samples)
	e.firstSeason = firstSeason
	e.loaded = true
	if e.cache != nil {
		e.cache.Clear()
	}
	metrics.UpdateStateSize(len(store.Teams()), e.samples.Len())
	return nil
}

func (e *Engine) loadCalibrations(ctx context.Context) error {
	records, err := e.repos.Calibrations.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load league calibrations: %w", err)
	}
	table, err := rating.NewCalibrationTable(records)
	if err != nil {
		return fmt.Errorf("invalid league calibration: %w", err)
	}
	updater, err := rating.NewMatchRatingUpdater(e.opts.Updater, table)
	if err != nil {
		return fmt.Errorf("failed to create rating updater: %w", err)
	}
	initializer, err := rating.NewSeasonInitializer(table)
	if err != nil {
		return fmt.Errorf("failed to create season initializer: %w", err)
	}

	e.calibration = table
	e.updater = updater
	e.initializer = initializer
	return nil
}

// RatingAt returns a team's rating entry in effect on date
func (e *Engine) RatingAt(ctx context.Context, teamID int64, date time.Time) (*models.TeamRatingEntry, error) {
	if err := e.loadIfNeeded(ctx); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.store.LatestAsOf(teamID, date)
	if !ok {
		return nil, fmt.Errorf("%w: no rating for team %d on %s", models.ErrNotFound, teamID, date.Format("2006-01-02"))
	}
	return entry, nil
}

// LastUpdate returns when the last update pass finished, zero if none ran
func (e *Engine) LastUpdate() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastUpdate
}

// Catalog returns the markets estimates are priced for
func (e *Engine) Catalog() *market.Catalog {
	return e.estimator.Catalog()
}

// loadIfNeeded loads state under the write lock when nothing is loaded yet
func (e *Engine) loadIfNeeded(ctx context.Context) error {
	e.mu.RLock()
	loaded := e.loaded
	e.mu.RUnlock()
	if loaded {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensureLoaded(ctx)
}
