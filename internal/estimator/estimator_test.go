package estimator

import (
	"errors"
	"testing"
	"time"

	"github.com/b0yank/betting-recommender/internal/market"
	"github.com/b0yank/betting-recommender/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRatings map[int64]*models.TeamRatingEntry

func (f fakeRatings) LatestBefore(teamID int64, date time.Time) (*models.TeamRatingEntry, bool) {
	e, ok := f[teamID]
	if !ok || !e.Date.Before(date) {
		return nil, false
	}
	return e, true
}

var kickoff = time.Date(2020, time.February, 1, 15, 0, 0, 0, time.UTC)

func fixture() *models.Game {
	return &models.Game{ID: 42, LeagueID: 10, Season: 20192020, Date: kickoff, HomeTeamID: 1, AwayTeamID: 2}
}

func ratingsFor(home, away float64) fakeRatings {
	before := kickoff.AddDate(0, 0, -7)
	return fakeRatings{
		1: {TeamID: 1, Rating: home, HomeFormDelta: 15, AwayFormDelta: -40, Date: before},
		2: {TeamID: 2, Rating: away, HomeFormDelta: 40, AwayFormDelta: -5, Date: before},
	}
}

func newTestEstimator(t *testing.T, lines []float64) *OutcomeEstimator {
	t.Helper()
	catalog, err := market.NewCatalog(lines)
	require.NoError(t, err)
	e, err := NewOutcomeEstimator(DefaultConfig(), catalog)
	require.NoError(t, err)
	return e
}

func scoredSample(pd float64, ftHome, ftAway, htHome, htAway int) *models.OutcomeSample {
	return &models.OutcomeSample{
		Score:      models.Score{FTHome: ftHome, FTAway: ftAway, HTHome: htHome, HTAway: htAway},
		PointsDiff: pd,
	}
}

func TestPointsDiff(t *testing.T) {
	e := newTestEstimator(t, market.DefaultGoalLines)
	ratings := ratingsFor(1600, 1500)

	pd, err := e.PointsDiff(fixture(), ratings, false)
	require.NoError(t, err)
	assert.Equal(t, 100.0, pd)

	// home form of the home side, away form of the away side
	pd, err = e.PointsDiff(fixture(), ratings, true)
	require.NoError(t, err)
	assert.Equal(t, 120.0, pd)
}

func TestPointsDiffIgnoresEntriesOnKickoffDay(t *testing.T) {
	e := newTestEstimator(t, market.DefaultGoalLines)
	ratings := ratingsFor(1600, 1500)
	ratings[2] = &models.TeamRatingEntry{TeamID: 2, Rating: 1500, Date: kickoff}

	_, err := e.PointsDiff(fixture(), ratings, false)
	assert.ErrorIs(t, err, models.ErrMissingBaseline)
}

func TestEstimateOverUnderScenario(t *testing.T) {
	e := newTestEstimator(t, []float64{1.5, 2.5, 3.5})

	samples := make([]*models.OutcomeSample, 0, 20)
	for i := 0; i < 8; i++ {
		samples = append(samples, scoredSample(float64(i), 2, 1, 1, 1))
	}
	for i := 0; i < 12; i++ {
		samples = append(samples, scoredSample(float64(-i), 1, 0, 0, 0))
	}

	est, err := e.Estimate(fixture(), ratingsFor(1500, 1500), NewSampleTable(samples), false)
	require.NoError(t, err)

	assert.Equal(t, 20, est.SampleSize)
	assert.False(t, est.LowConfidence)
	assert.False(t, est.UsedFallback)
	assert.Equal(t, 0.4, est.Probabilities["over_2.5"])
	assert.Equal(t, 0.6, est.Probabilities["under_2.5"])
	assert.Equal(t, 1.0, est.Probabilities["1"])
	assert.Equal(t, int64(42), est.GameID)
	assert.Equal(t, int64(10), est.LeagueID)
	assert.Equal(t, kickoff, est.Date)
	assert.NotEmpty(t, est.ID)
	assert.Len(t, est.Probabilities, e.Catalog().Len())
}

func TestEstimateProbabilitiesMatchNeighborhoodCounts(t *testing.T) {
	e := newTestEstimator(t, market.DefaultGoalLines)

	scores := [][4]int{{2, 1, 1, 1}, {0, 0, 0, 0}, {1, 3, 1, 0}, {2, 2, 0, 1}, {4, 0, 2, 0}}
	var samples []*models.OutcomeSample
	for i := 0; i < 25; i++ {
		s := scores[i%len(scores)]
		samples = append(samples, scoredSample(float64(i-12), s[0], s[1], s[2], s[3]))
	}
	// far outside the window, must not be counted
	samples = append(samples, scoredSample(-500, 9, 0, 9, 0))

	est, err := e.Estimate(fixture(), ratingsFor(1500, 1500), NewSampleTable(samples), false)
	require.NoError(t, err)
	require.Equal(t, 25, est.SampleSize)

	for _, m := range e.Catalog().Markets() {
		count := 0
		for _, s := range samples[:25] {
			if m.Matches(s.Score) {
				count++
			}
		}
		assert.Equal(t, float64(count)/25, est.Probabilities[m.Name()], m.Name())
	}

	p := est.Probabilities
	assert.InDelta(t, 1.0, p["1"]+p["X"]+p["2"], 1e-12)
	assert.InDelta(t, 1.0, p["ht_1"]+p["ht_X"]+p["ht_2"], 1e-12)
	var combos float64
	for _, half := range []string{"1", "X", "2"} {
		for _, full := range []string{"1", "X", "2"} {
			combos += p[half+"-"+full]
		}
	}
	assert.InDelta(t, 1.0, combos, 1e-12)
}

func TestEstimateWidensThinWindowBelowTableMax(t *testing.T) {
	e := newTestEstimator(t, market.DefaultGoalLines)

	var samples []*models.OutcomeSample
	for i := 0; i < 5; i++ {
		samples = append(samples, scoredSample(float64(i), 0, 0, 0, 0))
	}
	for i := 0; i < 30; i++ {
		samples = append(samples, scoredSample(float64(200+i), 3, 0, 1, 0))
	}
	table := NewSampleTable(samples)

	hood := e.Neighborhood(0, table)
	assert.True(t, hood.Fallback)
	require.Len(t, hood.Samples, 20)
	assert.Equal(t, 210.0, hood.Samples[0].PointsDiff)
	assert.Equal(t, 229.0, hood.Samples[19].PointsDiff)

	est, err := e.Estimate(fixture(), ratingsFor(1500, 1500), table, false)
	require.NoError(t, err)
	assert.True(t, est.UsedFallback)
	assert.False(t, est.LowConfidence)
	assert.Equal(t, 20, est.SampleSize)
	assert.Equal(t, 1.0, est.Probabilities["1"])
}

func TestEstimateThinWindowAtTableTopIsLowConfidence(t *testing.T) {
	e := newTestEstimator(t, market.DefaultGoalLines)

	var samples []*models.OutcomeSample
	for i := 0; i < 30; i++ {
		samples = append(samples, scoredSample(float64(-200-i), 0, 2, 0, 1))
	}
	for i := 0; i < 5; i++ {
		samples = append(samples, scoredSample(float64(i), 1, 1, 0, 0))
	}

	est, err := e.Estimate(fixture(), ratingsFor(1500, 1500), NewSampleTable(samples), false)
	require.NoError(t, err)
	assert.False(t, est.UsedFallback)
	assert.True(t, est.LowConfidence)
	assert.Equal(t, 5, est.SampleSize)
	assert.Equal(t, 1.0, est.Probabilities["X"])
}

func TestEstimateEmptyNeighborhood(t *testing.T) {
	e := newTestEstimator(t, market.DefaultGoalLines)
	samples := []*models.OutcomeSample{scoredSample(500, 1, 0, 0, 0), scoredSample(-500, 0, 1, 0, 0)}

	est, err := e.Estimate(fixture(), ratingsFor(1500, 1500), NewSampleTable(samples), false)
	assert.Nil(t, est)

	var insufficient *models.InsufficientHistoryError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(42), insufficient.GameID)
	assert.Equal(t, 0.0, insufficient.PointsDiff)
}

func TestNewOutcomeEstimatorRejectsInvalidConfig(t *testing.T) {
	catalog, err := market.NewCatalog(market.DefaultGoalLines)
	require.NoError(t, err)

	_, err = NewOutcomeEstimator(Config{Tolerance: 0, MinSamples: 20}, catalog)
	assert.ErrorIs(t, err, models.ErrInvalidParameters)

	_, err = NewOutcomeEstimator(Config{Tolerance: -5, MinSamples: 20}, catalog)
	assert.ErrorIs(t, err, models.ErrInvalidParameters)

	_, err = NewOutcomeEstimator(Config{Tolerance: 30, MinSamples: 0}, catalog)
	assert.ErrorIs(t, err, models.ErrInvalidParameters)

	_, err = NewOutcomeEstimator(DefaultConfig(), nil)
	assert.Error(t, err)
}
