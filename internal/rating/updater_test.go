package rating

import (
	"math"
	"testing"

	"github.com/b0yank/betting-recommender/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedScore(t *testing.T) {
	assert.Equal(t, 0.5, ExpectedScore(0))
	assert.InDelta(t, 1/(1+math.Pow(10, -0.25)), ExpectedScore(100), 1e-15)
	assert.InDelta(t, 1.0, ExpectedScore(100)+ExpectedScore(-100), 1e-15)
}

func TestUpdateEvenTeamsHomeWin(t *testing.T) {
	// expected margin of 2 makes the margin scale factor exactly 1
	u := newTestUpdater(t, testCalibration(2, 2))
	ws := seededWorkingSet(DefaultInitialCalibrationRounds, 1, 2)

	res, err := u.Update(ws, completedGame(1, day(0), 1, 2, models.Score{FTHome: 2, FTAway: 0, HTHome: 1, HTAway: 0}))
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.PointsDiff)
	assert.Equal(t, 1.0, res.ScaleFactor)
	assert.Equal(t, 1510.0, res.Home.Rating)
	assert.Equal(t, 1490.0, res.Away.Rating)
	assert.Equal(t, day(0), res.Home.Date)
	assert.Equal(t, 1, res.Home.HomeGamesCount)
	assert.Equal(t, 0, res.Home.AwayGamesCount)
	assert.Equal(t, 0, res.Away.HomeGamesCount)
	assert.Equal(t, 1, res.Away.AwayGamesCount)

	current, err := ws.Current(1)
	require.NoError(t, err)
	assert.Same(t, res.Home, current)
}

func TestUpdateMarginScaling(t *testing.T) {
	u := newTestUpdater(t, testCalibration(1.5, 1.5))
	ws := seededWorkingSet(DefaultInitialCalibrationRounds, 1, 2)

	res, err := u.Update(ws, completedGame(1, day(0), 1, 2, models.Score{FTHome: 2, FTAway: 0, HTHome: 1, HTAway: 0}))
	require.NoError(t, err)

	factor := math.Sqrt(2 / 1.5)
	assert.InDelta(t, factor, res.ScaleFactor, 1e-12)
	assert.InDelta(t, 1500+10*factor, res.Home.Rating, 1e-9)
	assert.InDelta(t, 1500-10*factor, res.Away.Rating, 1e-9)
	assert.NotEqual(t, 10.0, res.Home.Rating-1500)
	assert.InDelta(t, res.Home.Rating-1500, 1500-res.Away.Rating, 1e-9)
}

func TestUpdateClampsMargin(t *testing.T) {
	u := newTestUpdater(t, testCalibration(2, 2))
	ws := seededWorkingSet(DefaultInitialCalibrationRounds, 1, 2)

	res, err := u.Update(ws, completedGame(1, day(0), 1, 2, models.Score{FTHome: 0, FTAway: 9, HTHome: 0, HTAway: 4}))
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt(5.0/2), res.ScaleFactor, 1e-12)
	assert.Less(t, res.Home.Rating, 1500.0)
}

func TestUpdateDrawKeepsEvenRatings(t *testing.T) {
	u := newTestUpdater(t, testCalibration(2, 2))
	ws := seededWorkingSet(DefaultInitialCalibrationRounds, 1, 2)

	res, err := u.Update(ws, completedGame(1, day(0), 1, 2, models.Score{FTHome: 1, FTAway: 1}))
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.ScaleFactor)
	assert.Equal(t, 1500.0, res.Home.Rating)
	assert.Equal(t, 1500.0, res.Away.Rating)
}

func TestUpdateForm(t *testing.T) {
	u := newTestUpdater(t, testCalibration(2, 2))
	ws := seededWorkingSet(DefaultInitialCalibrationRounds, 1, 2)

	// margin 2 at coef 0.01 implies a 200 point gap; the teams were level
	res, err := u.Update(ws, completedGame(1, day(0), 1, 2, models.Score{FTHome: 2, FTAway: 0}))
	require.NoError(t, err)

	assert.InDelta(t, 20.0, res.Home.HomeFormDelta, 1e-9)
	assert.InDelta(t, -20.0, res.Away.AwayFormDelta, 1e-9)
	assert.Equal(t, 0.0, res.Home.AwayFormDelta)
	assert.Equal(t, 0.0, res.Away.HomeFormDelta)
}

func TestUpdateCarriesUntouchedFormSideBitForBit(t *testing.T) {
	u := newTestUpdater(t, testCalibration(2, 2))
	ws := seededWorkingSet(DefaultInitialCalibrationRounds, 1, 2)

	homeAway := 0.1 + 0.2
	awayHome := -1.0 / 3
	ws.current[1].AwayFormDelta = homeAway
	ws.current[2].HomeFormDelta = awayHome

	for i := 0; i < 5; i++ {
		_, err := u.Update(ws, completedGame(int64(i+1), day(i), 1, 2, models.Score{FTHome: i % 3, FTAway: 1}))
		require.NoError(t, err)
	}

	home, err := ws.Current(1)
	require.NoError(t, err)
	away, err := ws.Current(2)
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(homeAway), math.Float64bits(home.AwayFormDelta))
	assert.Equal(t, math.Float64bits(awayHome), math.Float64bits(away.HomeFormDelta))
	assert.Equal(t, 5, home.HomeGamesCount)
	assert.Equal(t, 0, home.AwayGamesCount)
	assert.Equal(t, 5, away.AwayGamesCount)
}

func TestUpdateCalibrationGate(t *testing.T) {
	u := newTestUpdater(t, testCalibration(2, 2))
	ws := seededWorkingSet(1, 1, 2)

	first, err := u.Update(ws, completedGame(1, day(0), 1, 2, models.Score{FTHome: 1, FTAway: 0}))
	require.NoError(t, err)
	assert.True(t, first.Home.IsCalibrating)
	assert.True(t, first.Away.IsCalibrating)
	assert.Nil(t, first.Sample)

	second, err := u.Update(ws, completedGame(2, day(7), 2, 1, models.Score{FTHome: 3, FTAway: 1, HTHome: 1, HTAway: 1}))
	require.NoError(t, err)
	assert.False(t, second.Home.IsCalibrating)
	assert.False(t, second.Away.IsCalibrating)
	require.NotNil(t, second.Sample)

	// pre-game base ratings with the freshly updated form terms
	wantDiff := (first.Away.Rating + second.Home.HomeFormDelta) - (first.Home.Rating + second.Away.AwayFormDelta)
	assert.Equal(t, wantDiff, second.Sample.PointsDiff)
	assert.Equal(t, models.Score{FTHome: 3, FTAway: 1, HTHome: 1, HTAway: 1}, second.Sample.Score)
	assert.Equal(t, testLeague, second.Sample.LeagueID)
	assert.Equal(t, models.Season(20192020), second.Sample.Season)

	batch := ws.Batch()
	assert.Len(t, batch.Entries, 6)
	assert.Len(t, batch.Samples, 1)
}

func TestUpdateSkipsSampleWhileEitherTeamCalibrates(t *testing.T) {
	u := newTestUpdater(t, testCalibration(2, 2))
	ws := seededWorkingSet(2, 1, 2, 3)

	games := []*models.Game{
		completedGame(1, day(0), 1, 2, models.Score{FTHome: 1}),
		completedGame(2, day(1), 2, 1, models.Score{FTHome: 1}),
		completedGame(3, day(2), 1, 2, models.Score{FTHome: 1}),
		// team 1 has three games, team 3 its first
		completedGame(4, day(3), 1, 3, models.Score{FTHome: 1}),
	}
	for _, g := range games[:3] {
		_, err := u.Update(ws, g)
		require.NoError(t, err)
	}

	res, err := u.Update(ws, games[3])
	require.NoError(t, err)
	assert.False(t, res.Home.IsCalibrating)
	assert.True(t, res.Away.IsCalibrating)
	assert.Nil(t, res.Sample)
}

func TestUpdateMissingBaseline(t *testing.T) {
	u := newTestUpdater(t, testCalibration(2, 2))
	ws := seededWorkingSet(DefaultInitialCalibrationRounds, 1)

	_, err := u.Update(ws, completedGame(1, day(0), 1, 99, models.Score{FTHome: 1}))
	assert.ErrorIs(t, err, models.ErrMissingBaseline)
	assert.Empty(t, ws.Batch().Samples)
	assert.Len(t, ws.Batch().Entries, 1)
}

func TestUpdateRejectsFixture(t *testing.T) {
	u := newTestUpdater(t, testCalibration(2, 2))
	ws := seededWorkingSet(DefaultInitialCalibrationRounds, 1, 2)

	fixture := completedGame(1, day(0), 1, 2, models.Score{})
	fixture.Score = nil

	_, err := u.Update(ws, fixture)
	assert.ErrorIs(t, err, models.ErrGameNotCompleted)
}

func TestReplaySeasonCalibrationIsMonotone(t *testing.T) {
	u := newTestUpdater(t, testCalibration(1.7, 1.4))
	teams := []int64{1, 2, 3, 4}
	ws := seededWorkingSet(3, teams...)

	var games []*models.Game
	id := int64(1)
	for round := 0; round < 6; round++ {
		for i := 0; i < len(teams); i += 2 {
			home, away := teams[(i+round)%4], teams[(i+round+1)%4]
			games = append(games, completedGame(id, day(round*7), home, away,
				models.Score{FTHome: int(id % 4), FTAway: int(id % 3)}))
			id++
		}
	}
	// replay must sort these back into date order
	games[0], games[len(games)-1] = games[len(games)-1], games[0]

	n, err := u.ReplaySeason(ws, games)
	require.NoError(t, err)
	assert.Equal(t, len(games), n)

	perTeam := make(map[int64][]*models.TeamRatingEntry)
	for _, e := range ws.Batch().Entries {
		perTeam[e.TeamID] = append(perTeam[e.TeamID], e)
	}

	for _, teamID := range teams {
		entries := perTeam[teamID]
		require.NotEmpty(t, entries)
		transitions := 0
		for i := 1; i < len(entries); i++ {
			prev, cur := entries[i-1], entries[i]
			assert.False(t, !prev.IsCalibrating && cur.IsCalibrating, "team %d left stable state", teamID)
			if prev.IsCalibrating && !cur.IsCalibrating {
				transitions++
			}
			assert.False(t, cur.Date.Before(prev.Date))
			assert.GreaterOrEqual(t, cur.HomeGamesCount, prev.HomeGamesCount)
			assert.GreaterOrEqual(t, cur.AwayGamesCount, prev.AwayGamesCount)
		}
		assert.Equal(t, 1, transitions, "team %d", teamID)
	}
	assert.NotEmpty(t, ws.Batch().Samples)
}

func TestNewMatchRatingUpdaterRejectsInvalidConfig(t *testing.T) {
	table, err := NewCalibrationTable([]*models.LeagueCalibration{testCalibration(2, 2)})
	require.NoError(t, err)

	tests := []struct {
		name string
		cfg  UpdaterConfig
	}{
		{"learning rate above one", UpdaterConfig{KFactor: 20, MaxMargin: 5, FormLearningRate: 1.2}},
		{"negative learning rate", UpdaterConfig{KFactor: 20, MaxMargin: 5, FormLearningRate: -0.1}},
		{"zero k factor", UpdaterConfig{KFactor: 0, MaxMargin: 5, FormLearningRate: 0.2}},
		{"zero max margin", UpdaterConfig{KFactor: 20, MaxMargin: 0, FormLearningRate: 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatchRatingUpdater(tt.cfg, table)
			assert.ErrorIs(t, err, models.ErrInvalidParameters)
		})
	}

	_, err = NewMatchRatingUpdater(DefaultUpdaterConfig(), nil)
	assert.Error(t, err)
}
