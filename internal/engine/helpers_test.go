package engine

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/b0yank/betting-recommender/internal/estimator"
	"github.com/b0yank/betting-recommender/internal/models"
	"github.com/b0yank/betting-recommender/internal/rating"
	"github.com/b0yank/betting-recommender/internal/repository"
)

const (
	leagueA int64 = 1
	leagueB int64 = 2
)

var scorePatterns = []models.Score{
	{FTHome: 2, FTAway: 0, HTHome: 1, HTAway: 0},
	{FTHome: 1, FTAway: 1, HTHome: 0, HTAway: 1},
	{FTHome: 0, FTAway: 1, HTHome: 0, HTAway: 0},
	{FTHome: 3, FTAway: 1, HTHome: 2, HTAway: 0},
	{FTHome: 1, FTAway: 2, HTHome: 1, HTAway: 1},
}

func testCalibrations() []*models.LeagueCalibration {
	return []*models.LeagueCalibration{
		{
			LeagueID: leagueA, StartingRating: 1500, ExpectedAdvantage: 50, Intercept: 0.2, Coef: 0.005,
			MarginBySign: models.MarginExpectationBySign{HomeWin: 1.6, AwayWin: 1.4},
		},
		{
			LeagueID: leagueB, StartingRating: 1400, ExpectedAdvantage: 40, Intercept: 0.1, Coef: 0.004,
			MarginBySign: models.MarginExpectationBySign{HomeWin: 1.5, AwayWin: 1.3},
		},
	}
}

// roundRobin schedules every ordered pair of teams once, one game a week
func roundRobin(firstID, league int64, start time.Time, teams ...int64) []*models.Game {
	var games []*models.Game
	id, date := firstID, start
	for _, home := range teams {
		for _, away := range teams {
			if home == away {
				continue
			}
			score := scorePatterns[int(id)%len(scorePatterns)]
			games = append(games, &models.Game{
				ID: id, LeagueID: league, Season: models.SeasonOf(date), Date: date,
				HomeTeamID: home, AwayTeamID: away, Score: &score,
			})
			id++
			date = date.AddDate(0, 0, 7)
		}
	}
	return games
}

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 0, 0, 0, time.UTC)
}

type testEnv struct {
	engine *Engine
	repos  *repository.Repositories
	store  *repository.MemoryStore
	now    time.Time
}

func testOptions(env *testEnv) Options {
	opts := DefaultOptions()
	opts.Schedule = rating.CalibrationSchedule{InitialRounds: 3, Rounds: 1}
	opts.Estimator = estimator.Config{Tolerance: 10000, MinSamples: 2}
	opts.Clock = func() time.Time { return env.now }
	return opts
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestEnv builds an engine over an in-memory store holding two seasons of
// league A and one season of league B
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	repos := &repository.Repositories{
		Games:        store.Games(),
		Ratings:      store.Ratings(),
		Samples:      store.Samples(),
		Calibrations: store.Calibrations(),
		Committer:    store,
	}
	for _, c := range testCalibrations() {
		require.NoError(t, repos.Calibrations.Upsert(ctx, c))
	}

	require.NoError(t, repos.Games.InsertBatch(ctx, roundRobin(100, leagueA, at(2018, time.August, 4), 1, 2, 3, 4)))
	require.NoError(t, repos.Games.InsertBatch(ctx, roundRobin(200, leagueA, at(2019, time.August, 3), 1, 2, 3, 4)))
	require.NoError(t, repos.Games.InsertBatch(ctx, roundRobin(300, leagueB, at(2019, time.August, 4), 5, 6)))

	env := &testEnv{repos: repos, store: store, now: at(2020, time.June, 30)}
	e, err := New(repos.Games, repos, testOptions(env), quietLogger())
	require.NoError(t, err)
	env.engine = e
	return env
}

type failingCommitter struct{ err error }

func (f failingCommitter) CommitSeason(context.Context, *models.SeasonBatch) error { return f.err }

// fixtureFeed returns a fixed fixture list regardless of the query
type fixtureFeed struct {
	HistoricalGameFeed
	fixtures []*models.Game
}

func (f fixtureFeed) ProvideGames(context.Context, []int64, time.Time, time.Time) ([]*models.Game, error) {
	return f.fixtures, nil
}
