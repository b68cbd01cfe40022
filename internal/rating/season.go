package rating

import (
	"fmt"
	"sort"
	"time"

	"github.com/b0yank/betting-recommender/internal/models"
)

// Default calibration windows, in games played this season.
const (
	DefaultInitialCalibrationRounds = 20
	DefaultCalibrationRounds        = 8
)

// History answers point-in-time rating queries
type History interface {
	LatestBefore(teamID int64, date time.Time) (*models.TeamRatingEntry, bool)
}

// CalibrationSchedule decides how many games a team plays before its games
// feed the outcome sample table.
type CalibrationSchedule struct {
	InitialRounds int
	Rounds        int
}

// DefaultCalibrationSchedule returns the default calibration windows
func DefaultCalibrationSchedule() CalibrationSchedule {
	return CalibrationSchedule{
		InitialRounds: DefaultInitialCalibrationRounds,
		Rounds:        DefaultCalibrationRounds,
	}
}

// RoundsFor returns the window for a league in a season, given the first
// season the league appears in.
func (c CalibrationSchedule) RoundsFor(season, leagueFirstSeason models.Season) int {
	if season > leagueFirstSeason {
		return c.Rounds
	}
	return c.InitialRounds
}

// TeamLeagues maps every team appearing in games to the league it plays in.
// A team's league is taken from its earliest game.
func TeamLeagues(games []*models.Game) map[int64]int64 {
	ordered := append([]*models.Game(nil), games...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].ID < ordered[j].ID
	})

	teams := make(map[int64]int64)
	for _, g := range ordered {
		if _, ok := teams[g.HomeTeamID]; !ok {
			teams[g.HomeTeamID] = g.LeagueID
		}
		if _, ok := teams[g.AwayTeamID]; !ok {
			teams[g.AwayTeamID] = g.LeagueID
		}
	}
	return teams
}

// SeasonInitializer seeds every team's rating at the start of a season.
type SeasonInitializer struct {
	calibration *CalibrationTable
}

// NewSeasonInitializer creates a season initializer
func NewSeasonInitializer(calibration *CalibrationTable) (*SeasonInitializer, error) {
	if calibration == nil {
		return nil, fmt.Errorf("calibration table is required")
	}
	return &SeasonInitializer{calibration: calibration}, nil
}

// Initialize returns one seed entry per team, dated at the season start.
// A team keeps its rating if its latest entry is from the previous season in
// the same league; otherwise it starts from the league default. Form and
// game counters always start from zero.
func (si *SeasonInitializer) Initialize(season models.Season, teams map[int64]int64, history History) ([]*models.TeamRatingEntry, error) {
	start := season.StartDate()
	previous := season.Previous()

	ids := make([]int64, 0, len(teams))
	for id := range teams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	seeds := make([]*models.TeamRatingEntry, 0, len(ids))
	for _, teamID := range ids {
		leagueID := teams[teamID]
		cal, err := si.calibration.Get(leagueID)
		if err != nil {
			return nil, fmt.Errorf("failed to seed team %d: %w", teamID, err)
		}

		rating := cal.StartingRating
		if last, ok := history.LatestBefore(teamID, start); ok &&
			last.LeagueID == leagueID && models.SeasonOf(last.Date) == previous {
			rating = last.Rating
		}

		seeds = append(seeds, &models.TeamRatingEntry{
			TeamID:        teamID,
			LeagueID:      leagueID,
			Rating:        rating,
			IsCalibrating: true,
			Date:          start,
		})
	}
	return seeds, nil
}

// WorkingSet is the in-memory state of one season's replay: each team's
// current entry plus the rows produced so far.
type WorkingSet struct {
	season  models.Season
	rounds  map[int64]int
	current map[int64]*models.TeamRatingEntry
	batch   *models.SeasonBatch
}

// NewWorkingSet creates the working set for a season. rounds holds the
// calibration window of every league played in the season.
func NewWorkingSet(season models.Season, rounds map[int64]int) *WorkingSet {
	return &WorkingSet{
		season:  season,
		rounds:  rounds,
		current: make(map[int64]*models.TeamRatingEntry),
		batch:   &models.SeasonBatch{Season: season},
	}
}

// Seed installs season seed entries; they are part of the season's batch.
func (w *WorkingSet) Seed(entries []*models.TeamRatingEntry) {
	for _, e := range entries {
		w.current[e.TeamID] = e
		w.batch.Entries = append(w.batch.Entries, e)
	}
}

// Resume installs already persisted entries when continuing a season.
func (w *WorkingSet) Resume(entries []*models.TeamRatingEntry) {
	for _, e := range entries {
		w.current[e.TeamID] = e
	}
}

// Current returns a team's entry as of the last replayed game
func (w *WorkingSet) Current(teamID int64) (*models.TeamRatingEntry, error) {
	e, ok := w.current[teamID]
	if !ok {
		return nil, fmt.Errorf("%w: team %d in season %s", models.ErrMissingBaseline, teamID, w.season)
	}
	return e, nil
}

// Rounds returns the calibration window of a league
func (w *WorkingSet) Rounds(leagueID int64) int {
	return w.rounds[leagueID]
}

// Season returns the season being replayed
func (w *WorkingSet) Season() models.Season {
	return w.season
}

// Batch returns the rows produced so far
func (w *WorkingSet) Batch() *models.SeasonBatch {
	return w.batch
}

func (w *WorkingSet) record(home, away *models.TeamRatingEntry, sample *models.OutcomeSample) {
	w.current[home.TeamID] = home
	w.current[away.TeamID] = away
	w.batch.Entries = append(w.batch.Entries, home, away)
	if sample != nil {
		w.batch.Samples = append(w.batch.Samples, sample)
	}
}

// sortGames orders games by league, then date, then id.
func sortGames(games []*models.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if a.LeagueID != b.LeagueID {
			return a.LeagueID < b.LeagueID
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
}
