package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/b0yank/betting-recommender/internal/metrics"
	"github.com/b0yank/betting-recommender/internal/models"
	"github.com/b0yank/betting-recommender/internal/rating"
)

// UpdateRatings brings the rating state up to throughDate. With no stored
// state every feed season up to the current one is replayed; with state
// from an earlier season the later seasons are seeded and replayed;
// otherwise only games after the latest stored date are replayed. Each
// season is committed as one batch before it is merged into memory.
func (e *Engine) UpdateRatings(ctx context.Context, throughDate time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	status := metrics.UpdateStatusSuccess
	defer func() {
		metrics.RecordRatingUpdate(status, time.Since(start).Seconds())
	}()

	runID := uuid.NewString()
	replayed, err := e.update(ctx, runID, throughDate)
	switch {
	case err != nil:
		status = metrics.UpdateStatusFailed
		return err
	case replayed == 0:
		status = metrics.UpdateStatusSkipped
	}
	e.lastUpdate = e.opts.Clock()
	return nil
}

// seasonPlan is one season of an update pass
type seasonPlan struct {
	season models.Season
	seed   bool
	after  time.Time
}

func (e *Engine) update(ctx context.Context, runID string, throughDate time.Time) (int, error) {
	if err := e.ensureLoaded(ctx); err != nil {
		return 0, err
	}

	plans, err := e.plan(ctx, throughDate)
	if err != nil {
		return 0, err
	}
	if len(plans) == 0 {
		latest, _ := e.store.LatestDate()
		e.ratingLog.LogUpdateSkipped(runID, latest)
		return 0, nil
	}

	seasons := make([]int, len(plans))
	for i, p := range plans {
		seasons[i] = int(p.season)
	}
	e.ratingLog.LogUpdateStarted(runID, throughDate, seasons)

	var written int
	for _, p := range plans {
		n, err := e.replay(ctx, p, throughDate)
		if err != nil {
			e.ratingLog.LogUpdateFailed(runID, int(p.season), err)
			return written, err
		}
		written += n
	}

	if written == 0 {
		latest, _ := e.store.LatestDate()
		e.ratingLog.LogUpdateSkipped(runID, latest)
	}
	return written, nil
}

// plan decides which seasons an update pass touches
func (e *Engine) plan(ctx context.Context, throughDate time.Time) ([]seasonPlan, error) {
	current := models.SeasonOf(throughDate)
	latest, hasState := e.store.LatestDate()

	if hasState && models.SeasonOf(latest) >= current {
		if !throughDate.After(latest) {
			return nil, nil
		}
		return []seasonPlan{{season: models.SeasonOf(latest), after: latest}}, nil
	}

	feedSeasons, err := e.feed.Seasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed seasons: %w", err)
	}

	var plans []seasonPlan
	for _, s := range feedSeasons {
		if s > current {
			continue
		}
		if hasState && s <= models.SeasonOf(latest) {
			continue
		}
		plans = append(plans, seasonPlan{season: s, seed: true})
	}
	return plans, nil
}

// replay runs one season and returns the number of rows it wrote
func (e *Engine) replay(ctx context.Context, p seasonPlan, throughDate time.Time) (int, error) {
	started := time.Now()

	all, err := e.feed.GamesInSeason(ctx, p.season)
	if err != nil {
		return 0, fmt.Errorf("failed to load games for season %s: %w", p.season, err)
	}

	var games []*models.Game
	for _, g := range all {
		if !g.IsCompleted() || g.Date.After(throughDate) {
			continue
		}
		if !p.seed && !g.Date.After(p.after) {
			continue
		}
		games = append(games, g)
	}
	if !p.seed && len(games) == 0 {
		return 0, nil
	}

	rounds := make(map[int64]int)
	for _, g := range all {
		if _, ok := rounds[g.LeagueID]; ok {
			continue
		}
		first, ok := e.firstSeason[g.LeagueID]
		if !ok || p.season < first {
			first = p.season
		}
		rounds[g.LeagueID] = e.opts.Schedule.RoundsFor(p.season, first)
	}

	ws := rating.NewWorkingSet(p.season, rounds)
	if p.seed {
		teams := rating.TeamLeagues(all)
		seeds, err := e.initializer.Initialize(p.season, teams, e.store)
		if err != nil {
			return 0, fmt.Errorf("failed to initialize season %s: %w", p.season, err)
		}
		ws.Seed(seeds)
		e.ratingLog.LogSeasonInitialized(int(p.season), len(seeds), e.carriedOver(p.season, seeds))
		metrics.RecordSeasonInitialized()
	} else {
		var current []*models.TeamRatingEntry
		for _, teamID := range e.store.Teams() {
			if entry, ok := e.store.Latest(teamID); ok && models.SeasonOf(entry.Date) == p.season {
				current = append(current, entry)
			}
		}
		ws.Resume(current)
	}

	n, err := e.updater.ReplaySeason(ws, games)
	if err != nil {
		return 0, fmt.Errorf("failed to replay season %s after %d games: %w", p.season, n, err)
	}

	batch := ws.Batch()
	elapsed := time.Since(started)
	e.ratingLog.LogSeasonReplayed(int(p.season), n, len(batch.Entries), len(batch.Samples), float64(elapsed.Milliseconds()))
	if batch.IsEmpty() {
		return 0, nil
	}

	if err := e.commit(ctx, batch); err != nil {
		return 0, err
	}
	for leagueID := range rounds {
		if first, ok := e.firstSeason[leagueID]; !ok || p.season < first {
			e.firstSeason[leagueID] = p.season
		}
	}
	metrics.RecordSeasonReplayed(n, len(batch.Entries), len(batch.Samples), elapsed.Seconds())
	return len(batch.Entries) + len(batch.Samples), nil
}

// commit persists a batch and then merges it into the in-memory snapshot
func (e *Engine) commit(ctx context.Context, batch *models.SeasonBatch) error {
	if err := e.repos.Committer.CommitSeason(ctx, batch); err != nil {
		return err
	}
	if err := e.store.Append(batch.Entries...); err != nil {
		// The database is ahead of memory; reload before the next pass
		e.loaded = false
		return fmt.Errorf("failed to merge season %s: %w", batch.Season, err)
	}
	e.samples.Add(batch.Samples...)
	if e.cache != nil {
		e.cache.Clear()
	}

	e.ratingLog.LogBatchCommitted(int(batch.Season), len(batch.Entries), len(batch.Samples))
	metrics.UpdateStateSize(len(e.store.Teams()), e.samples.Len())
	return nil
}

func (e *Engine) carriedOver(season models.Season, seeds []*models.TeamRatingEntry) int {
	var n int
	for _, s := range seeds {
		last, ok := e.store.LatestBefore(s.TeamID, season.StartDate())
		if ok && last.LeagueID == s.LeagueID && models.SeasonOf(last.Date) == season.Previous() {
			n++
		}
	}
	return n
}
