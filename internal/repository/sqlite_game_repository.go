package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/b0yank/betting-recommender/internal/database"
	"github.com/b0yank/betting-recommender/internal/models"
)

// sqliteTimeLayout is fixed width so that text comparison orders chronologically
const sqliteTimeLayout = "2006-01-02T15:04:05Z"

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored date %q: %w", s, err)
	}
	return t, nil
}

// SQLiteGameRepository implements GameRepository for SQLite
type SQLiteGameRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteGameRepository creates a new game repository
func NewSQLiteGameRepository(db *database.SQLiteDB) GameRepository {
	return &SQLiteGameRepository{db: db}
}

// Seasons returns every season with at least one game, oldest first
func (r *SQLiteGameRepository) Seasons(ctx context.Context) ([]models.Season, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `SELECT DISTINCT season FROM games ORDER BY season ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}
	defer rows.Close()

	var seasons []models.Season
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, models.Season(s))
	}

	return seasons, rows.Err()
}

// GamesInSeason retrieves every game of a season
func (r *SQLiteGameRepository) GamesInSeason(ctx context.Context, season models.Season) ([]*models.Game, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE season = ?
		ORDER BY league_id ASC, date ASC, id ASC
	`, int(season))
	if err != nil {
		return nil, fmt.Errorf("failed to query games for season %s: %w", season, err)
	}
	defer rows.Close()

	return collectSQLiteGames(rows)
}

// ProvideGames retrieves games of the given leagues dated within [start, end]
func (r *SQLiteGameRepository) ProvideGames(ctx context.Context, leagueIDs []int64, start, end time.Time) ([]*models.Game, error) {
	if len(leagueIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(leagueIDs)), ", ")
	args := make([]interface{}, 0, len(leagueIDs)+2)
	for _, id := range leagueIDs {
		args = append(args, id)
	}
	args = append(args, formatSQLiteTime(start), formatSQLiteTime(end))

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE league_id IN (`+placeholders+`) AND date >= ? AND date <= ?
		ORDER BY date ASC, id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	return collectSQLiteGames(rows)
}

// InsertBatch inserts games, overwriting known ones so results can be filled in later
func (r *SQLiteGameRepository) InsertBatch(ctx context.Context, games []*models.Game) error {
	if len(games) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO games (`+gameColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare game insert: %w", err)
		}
		defer stmt.Close()

		for _, g := range games {
			ftHome, ftAway, htHome, htAway := scoreColumns(g.Score)
			_, err := stmt.ExecContext(ctx, g.ID, g.LeagueID, int(g.Season), formatSQLiteTime(g.Date),
				g.HomeTeamID, g.AwayTeamID, ftHome, ftAway, htHome, htAway)
			if err != nil {
				return fmt.Errorf("failed to insert game %d: %w", g.ID, err)
			}
		}
		return nil
	})
}

func collectSQLiteGames(rows *sql.Rows) ([]*models.Game, error) {
	var games []*models.Game
	for rows.Next() {
		var (
			g                              models.Game
			season                         int
			date                           string
			ftHome, ftAway, htHome, htAway sql.NullInt64
		)
		err := rows.Scan(&g.ID, &g.LeagueID, &season, &date, &g.HomeTeamID, &g.AwayTeamID,
			&ftHome, &ftAway, &htHome, &htAway)
		if err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		if g.Date, err = parseSQLiteTime(date); err != nil {
			return nil, err
		}
		g.Season = models.Season(season)
		g.Score = scoreFromColumns(nullableInt(ftHome), nullableInt(ftAway), nullableInt(htHome), nullableInt(htAway))
		games = append(games, &g)
	}

	return games, rows.Err()
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
