package rating

import (
	"testing"
	"time"

	"github.com/b0yank/betting-recommender/internal/models"
	"github.com/stretchr/testify/require"
)

const testLeague int64 = 10

func testCalibration(homeWin, awayWin float64) *models.LeagueCalibration {
	return &models.LeagueCalibration{
		LeagueID:          testLeague,
		StartingRating:    1500,
		ExpectedAdvantage: 0,
		Intercept:         0,
		Coef:              0.01,
		MarginBySign:      models.MarginExpectationBySign{HomeWin: homeWin, AwayWin: awayWin},
	}
}

func newTestUpdater(t *testing.T, cal *models.LeagueCalibration) *MatchRatingUpdater {
	t.Helper()
	table, err := NewCalibrationTable([]*models.LeagueCalibration{cal})
	require.NoError(t, err)
	u, err := NewMatchRatingUpdater(DefaultUpdaterConfig(), table)
	require.NoError(t, err)
	return u
}

func seededWorkingSet(rounds int, teams ...int64) *WorkingSet {
	season := models.Season(20192020)
	ws := NewWorkingSet(season, map[int64]int{testLeague: rounds})
	seeds := make([]*models.TeamRatingEntry, 0, len(teams))
	for _, id := range teams {
		seeds = append(seeds, &models.TeamRatingEntry{
			TeamID:        id,
			LeagueID:      testLeague,
			Rating:        1500,
			IsCalibrating: true,
			Date:          season.StartDate(),
		})
	}
	ws.Seed(seeds)
	return ws
}

func day(n int) time.Time {
	return time.Date(2019, time.August, 1, 15, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func completedGame(id int64, date time.Time, home, away int64, score models.Score) *models.Game {
	return &models.Game{
		ID:         id,
		LeagueID:   testLeague,
		Season:     models.SeasonOf(date),
		Date:       date,
		HomeTeamID: home,
		AwayTeamID: away,
		Score:      &score,
	}
}
