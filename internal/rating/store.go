// Package rating implements the Elo-style team rating engine: the versioned
// rating store, season seeding, form tracking and the per-game update.
package rating

import (
	"fmt"
	"sort"
	"time"

	"github.com/b0yank/betting-recommender/internal/models"
)

// Store is an append-only log of rating entries per team, ordered by date.
// It is not safe for concurrent writers; callers serialize updates.
type Store struct {
	entries map[int64][]*models.TeamRatingEntry
	latest  time.Time
	size    int
}

// NewStore creates an empty rating store
func NewStore() *Store {
	return &Store{entries: make(map[int64][]*models.TeamRatingEntry)}
}

// Append adds entries to the store. Entries for a team must not predate that
// team's latest entry; if any entry violates this nothing is appended.
func (s *Store) Append(entries ...*models.TeamRatingEntry) error {
	last := make(map[int64]time.Time)
	for _, e := range entries {
		prev, ok := last[e.TeamID]
		if !ok {
			if l, found := s.Latest(e.TeamID); found {
				prev, ok = l.Date, true
			}
		}
		if ok && e.Date.Before(prev) {
			return fmt.Errorf("%w: team %d entry at %s before %s",
				models.ErrNotChronological, e.TeamID, e.Date.Format("2006-01-02"), prev.Format("2006-01-02"))
		}
		last[e.TeamID] = e.Date
	}

	for _, e := range entries {
		s.entries[e.TeamID] = append(s.entries[e.TeamID], e)
		if e.Date.After(s.latest) {
			s.latest = e.Date
		}
	}
	s.size += len(entries)
	return nil
}

// LatestAsOf returns the team's latest entry dated on or before date.
func (s *Store) LatestAsOf(teamID int64, date time.Time) (*models.TeamRatingEntry, bool) {
	history := s.entries[teamID]
	i := sort.Search(len(history), func(i int) bool {
		return history[i].Date.After(date)
	})
	if i == 0 {
		return nil, false
	}
	return history[i-1], true
}

// LatestBefore returns the team's latest entry dated strictly before date.
func (s *Store) LatestBefore(teamID int64, date time.Time) (*models.TeamRatingEntry, bool) {
	history := s.entries[teamID]
	i := sort.Search(len(history), func(i int) bool {
		return !history[i].Date.Before(date)
	})
	if i == 0 {
		return nil, false
	}
	return history[i-1], true
}

// Latest returns the team's most recent entry
func (s *Store) Latest(teamID int64) (*models.TeamRatingEntry, bool) {
	history := s.entries[teamID]
	if len(history) == 0 {
		return nil, false
	}
	return history[len(history)-1], true
}

// History returns a copy of the team's entries in chronological order
func (s *Store) History(teamID int64) []*models.TeamRatingEntry {
	return append([]*models.TeamRatingEntry(nil), s.entries[teamID]...)
}

// LatestDate returns the date of the most recent entry across all teams
func (s *Store) LatestDate() (time.Time, bool) {
	return s.latest, s.size > 0
}

// Teams returns the ids of all teams with at least one entry
func (s *Store) Teams() []int64 {
	ids := make([]int64, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the total number of entries
func (s *Store) Len() int {
	return s.size
}
