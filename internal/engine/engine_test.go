package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b0yank/betting-recommender/internal/config"
	"github.com/b0yank/betting-recommender/internal/models"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Rating: config.RatingConfig{
			KFactor: 25, FormLearningRate: 0.3, InitialCalibrationRounds: 10, CalibrationRounds: 4, MaxMargin: 4,
		},
		Estimator: config.EstimatorConfig{PointsDiffTolerance: 15, MinSamples: 30, GoalLines: []float64{2.5}},
		Cache:     config.CacheConfig{Enabled: true, TTLSeconds: 90, MaxSize: 50},
	}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 25.0, opts.Updater.KFactor)
	assert.Equal(t, 0.3, opts.Updater.FormLearningRate)
	assert.Equal(t, 4, opts.Updater.MaxMargin)
	assert.Equal(t, 10, opts.Schedule.InitialRounds)
	assert.Equal(t, 4, opts.Schedule.Rounds)
	assert.Equal(t, 15.0, opts.Estimator.Tolerance)
	assert.Equal(t, 30, opts.Estimator.MinSamples)
	assert.Equal(t, []float64{2.5}, opts.GoalLines)
	assert.Equal(t, 50, opts.CacheSize)
	assert.Equal(t, 90*time.Second, opts.CacheTTL)
	assert.NotNil(t, opts.Clock)

	cfg.Cache.Enabled = false
	assert.Zero(t, OptionsFromConfig(cfg).CacheSize)
}

func TestEngineWithoutCache(t *testing.T) {
	env := newTestEnv(t)
	opts := testOptions(env)
	opts.CacheSize = 0

	e, err := New(env.repos.Games, env.repos, opts, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, e.cache)

	kickoff := at(2020, time.August, 15)
	require.NoError(t, env.repos.Games.InsertBatch(context.Background(), []*models.Game{fixture(900, leagueA, 1, 2, kickoff)}))

	req := EstimateRequest{LeagueIDs: []int64{leagueA}, Start: kickoff, End: kickoff}
	first, err := e.EstimateOdds(context.Background(), req)
	require.NoError(t, err)
	second, err := e.EstimateOdds(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.Estimates[0].ID, second.Estimates[0].ID)
	assert.Equal(t, first.Estimates[0].Probabilities, second.Estimates[0].Probabilities)
}

func TestRatingAtBeforeAnyUpdate(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.RatingAt(context.Background(), 1, env.now)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.True(t, env.engine.LastUpdate().IsZero())
}
