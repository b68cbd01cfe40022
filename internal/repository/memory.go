package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/b0yank/betting-recommender/internal/models"
)

// MemoryStore keeps games, rating state and calibrations in process memory.
// It backs tests and dry runs.
type MemoryStore struct {
	mu           sync.RWMutex
	games        map[int64]*models.Game
	entries      []*models.TeamRatingEntry
	samples      []*models.OutcomeSample
	calibrations map[int64]*models.LeagueCalibration
	commits      int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:        make(map[int64]*models.Game),
		calibrations: make(map[int64]*models.LeagueCalibration),
	}
}

// Games returns the store's GameRepository view
func (m *MemoryStore) Games() GameRepository { return memoryGames{m} }

// Ratings returns the store's RatingRepository view
func (m *MemoryStore) Ratings() RatingRepository { return memoryRatings{m} }

// Samples returns the store's SampleRepository view
func (m *MemoryStore) Samples() SampleRepository { return memorySamples{m} }

// Calibrations returns the store's CalibrationRepository view
func (m *MemoryStore) Calibrations() CalibrationRepository { return memoryCalibrations{m} }

// CommitSeason appends a season's entries and samples
func (m *MemoryStore) CommitSeason(ctx context.Context, batch *models.SeasonBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if batch.IsEmpty() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, batch.Entries...)
	m.samples = append(m.samples, batch.Samples...)
	m.commits++
	return nil
}

// Commits returns how many non-empty batches were committed
func (m *MemoryStore) Commits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits
}

type memoryGames struct{ m *MemoryStore }

func (r memoryGames) Seasons(ctx context.Context) ([]models.Season, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	seen := make(map[models.Season]bool)
	var seasons []models.Season
	for _, g := range r.m.games {
		if !seen[g.Season] {
			seen[g.Season] = true
			seasons = append(seasons, g.Season)
		}
	}
	sort.Slice(seasons, func(i, j int) bool { return seasons[i] < seasons[j] })
	return seasons, nil
}

func (r memoryGames) GamesInSeason(ctx context.Context, season models.Season) ([]*models.Game, error) {
	return r.filter(func(g *models.Game) bool { return g.Season == season }), nil
}

func (r memoryGames) ProvideGames(ctx context.Context, leagueIDs []int64, start, end time.Time) ([]*models.Game, error) {
	leagues := make(map[int64]bool, len(leagueIDs))
	for _, id := range leagueIDs {
		leagues[id] = true
	}
	games := r.filter(func(g *models.Game) bool {
		return leagues[g.LeagueID] && !g.Date.Before(start) && !g.Date.After(end)
	})
	sort.SliceStable(games, func(i, j int) bool {
		if !games[i].Date.Equal(games[j].Date) {
			return games[i].Date.Before(games[j].Date)
		}
		return games[i].ID < games[j].ID
	})
	return games, nil
}

func (r memoryGames) InsertBatch(ctx context.Context, games []*models.Game) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, g := range games {
		cp := *g
		r.m.games[g.ID] = &cp
	}
	return nil
}

// filter returns matching games ordered by league, date and id
func (r memoryGames) filter(keep func(*models.Game) bool) []*models.Game {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var games []*models.Game
	for _, g := range r.m.games {
		if keep(g) {
			cp := *g
			games = append(games, &cp)
		}
	}
	sort.Slice(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if a.LeagueID != b.LeagueID {
			return a.LeagueID < b.LeagueID
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
	return games
}

type memoryRatings struct{ m *MemoryStore }

func (r memoryRatings) GetAll(ctx context.Context) ([]*models.TeamRatingEntry, error) {
	r.m.mu.RLock()
	entries := append([]*models.TeamRatingEntry(nil), r.m.entries...)
	r.m.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}

func (r memoryRatings) GetLatestAsOf(ctx context.Context, teamID int64, date time.Time) (*models.TeamRatingEntry, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var latest *models.TeamRatingEntry
	for _, e := range r.m.entries {
		if e.TeamID != teamID || e.Date.After(date) {
			continue
		}
		if latest == nil || !e.Date.Before(latest.Date) {
			latest = e
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return latest, nil
}

func (r memoryRatings) InsertBatch(ctx context.Context, entries []*models.TeamRatingEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.entries = append(r.m.entries, entries...)
	return nil
}

type memorySamples struct{ m *MemoryStore }

func (r memorySamples) GetAll(ctx context.Context) ([]*models.OutcomeSample, error) {
	return r.GetByPointsDiffRange(ctx, math.Inf(-1), math.Inf(1))
}

func (r memorySamples) GetByPointsDiffRange(ctx context.Context, lo, hi float64) ([]*models.OutcomeSample, error) {
	r.m.mu.RLock()
	var samples []*models.OutcomeSample
	for _, s := range r.m.samples {
		if s.PointsDiff >= lo && s.PointsDiff <= hi {
			samples = append(samples, s)
		}
	}
	r.m.mu.RUnlock()

	sort.SliceStable(samples, func(i, j int) bool { return samples[i].PointsDiff < samples[j].PointsDiff })
	return samples, nil
}

func (r memorySamples) InsertBatch(ctx context.Context, samples []*models.OutcomeSample) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.samples = append(r.m.samples, samples...)
	return nil
}

type memoryCalibrations struct{ m *MemoryStore }

func (r memoryCalibrations) GetAll(ctx context.Context) ([]*models.LeagueCalibration, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	calibrations := make([]*models.LeagueCalibration, 0, len(r.m.calibrations))
	for _, c := range r.m.calibrations {
		cp := *c
		calibrations = append(calibrations, &cp)
	}
	sort.Slice(calibrations, func(i, j int) bool { return calibrations[i].LeagueID < calibrations[j].LeagueID })
	return calibrations, nil
}

func (r memoryCalibrations) Upsert(ctx context.Context, c *models.LeagueCalibration) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *c
	r.m.calibrations[c.LeagueID] = &cp
	return nil
}
