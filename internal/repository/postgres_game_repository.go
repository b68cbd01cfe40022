package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/b0yank/betting-recommender/internal/database"
	"github.com/b0yank/betting-recommender/internal/models"
)

const (
	gameColumns  = "id, league_id, season, date, home_team_id, away_team_id, ft_home, ft_away, ht_home, ht_away"
	errScanGame  = "failed to scan game: %w"
	errScanEntry = "failed to scan rating entry: %w"
)

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// Seasons returns every season with at least one game, oldest first
func (r *PostgresGameRepository) Seasons(ctx context.Context) ([]models.Season, error) {
	rows, err := r.db.GetPool().Query(ctx, `SELECT DISTINCT season FROM games ORDER BY season ASC`)
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
func (r *PostgresGameRepository) GamesInSeason(ctx context.Context, season models.Season) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE season = $1
		ORDER BY league_id ASC, date ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, int(season))
	if err != nil {
		return nil, fmt.Errorf("failed to query games for season %s: %w", season, err)
	}
	defer rows.Close()

	return collectPostgresGames(rows)
}

// ProvideGames retrieves games of the given leagues dated within [start, end]
func (r *PostgresGameRepository) ProvideGames(ctx context.Context, leagueIDs []int64, start, end time.Time) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE league_id = ANY($1) AND date >= $2 AND date <= $3
		ORDER BY date ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, leagueIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	return collectPostgresGames(rows)
}

// InsertBatch inserts games, overwriting known ones so results can be filled in later
func (r *PostgresGameRepository) InsertBatch(ctx context.Context, games []*models.Game) error {
	if len(games) == 0 {
		return nil
	}

	query := `
		INSERT INTO games (` + gameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			league_id = EXCLUDED.league_id, season = EXCLUDED.season, date = EXCLUDED.date,
			home_team_id = EXCLUDED.home_team_id, away_team_id = EXCLUDED.away_team_id,
			ft_home = EXCLUDED.ft_home, ft_away = EXCLUDED.ft_away,
			ht_home = EXCLUDED.ht_home, ht_away = EXCLUDED.ht_away
	`

	batch := &pgx.Batch{}
	for _, g := range games {
		ftHome, ftAway, htHome, htAway := scoreColumns(g.Score)
		batch.Queue(query, g.ID, g.LeagueID, int(g.Season), g.Date, g.HomeTeamID, g.AwayTeamID,
			ftHome, ftAway, htHome, htAway)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range games {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}
	}

	return nil
}

func collectPostgresGames(rows pgx.Rows) ([]*models.Game, error) {
	var games []*models.Game
	for rows.Next() {
		var (
			g                              models.Game
			season                         int
			ftHome, ftAway, htHome, htAway *int
		)
		err := rows.Scan(&g.ID, &g.LeagueID, &season, &g.Date, &g.HomeTeamID, &g.AwayTeamID,
			&ftHome, &ftAway, &htHome, &htAway)
		if err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		g.Season = models.Season(season)
		g.Date = g.Date.UTC()
		g.Score = scoreFromColumns(ftHome, ftAway, htHome, htAway)
		games = append(games, &g)
	}

	return games, rows.Err()
}

// scoreColumns splits a score into nullable columns
func scoreColumns(s *models.Score) (ftHome, ftAway, htHome, htAway *int) {
	if s == nil {
		return nil, nil, nil, nil
	}
	return &s.FTHome, &s.FTAway, &s.HTHome, &s.HTAway
}

// scoreFromColumns rebuilds a score; a missing full-time result means the game is a fixture
func scoreFromColumns(ftHome, ftAway, htHome, htAway *int) *models.Score {
	if ftHome == nil || ftAway == nil {
		return nil
	}
	s := &models.Score{FTHome: *ftHome, FTAway: *ftAway}
	if htHome != nil && htAway != nil {
		s.HTHome, s.HTAway = *htHome, *htAway
	}
	return s
}
