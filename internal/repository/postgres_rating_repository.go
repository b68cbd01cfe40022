package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/b0yank/betting-recommender/internal/database"
	"github.com/b0yank/betting-recommender/internal/models"
)

var ratingColumns = []string{
	"team_id", "league_id", "rating", "home_form_delta", "away_form_delta",
	"home_games_count", "away_games_count", "is_calibrating", "date",
}

const ratingSelect = `
	SELECT team_id, league_id, rating, home_form_delta, away_form_delta,
	       home_games_count, away_games_count, is_calibrating, date
	FROM team_ratings
`

// copier is satisfied by both the pool and a transaction
type copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// PostgresRatingRepository implements RatingRepository for PostgreSQL
type PostgresRatingRepository struct {
	db *database.DB
}

// NewPostgresRatingRepository creates a new rating repository
func NewPostgresRatingRepository(db *database.DB) RatingRepository {
	return &PostgresRatingRepository{db: db}
}

// GetAll retrieves the full rating history in append order
func (r *PostgresRatingRepository) GetAll(ctx context.Context) ([]*models.TeamRatingEntry, error) {
	rows, err := r.db.GetPool().Query(ctx, ratingSelect+` ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var entries []*models.TeamRatingEntry
	for rows.Next() {
		e, err := scanPostgresEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetLatestAsOf retrieves a team's latest entry dated on or before date
func (r *PostgresRatingRepository) GetLatestAsOf(ctx context.Context, teamID int64, date time.Time) (*models.TeamRatingEntry, error) {
	query := ratingSelect + `
		WHERE team_id = $1 AND date <= $2
		ORDER BY date DESC, id DESC
		LIMIT 1
	`

	e, err := scanPostgresEntry(r.db.GetPool().QueryRow(ctx, query, teamID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return e, nil
}

// InsertBatch appends rating entries using COPY
func (r *PostgresRatingRepository) InsertBatch(ctx context.Context, entries []*models.TeamRatingEntry) error {
	return copyRatingEntries(ctx, r.db.GetPool(), entries)
}

func copyRatingEntries(ctx context.Context, c copier, entries []*models.TeamRatingEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(entries))
	for i, e := range entries {
		rows[i] = []interface{}{
			e.TeamID, e.LeagueID, e.Rating, e.HomeFormDelta, e.AwayFormDelta,
			e.HomeGamesCount, e.AwayGamesCount, e.IsCalibrating, e.Date,
		}
	}

	count, err := c.CopyFrom(ctx, pgx.Identifier{"team_ratings"}, ratingColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to batch insert rating entries: %w", err)
	}
	if count != int64(len(entries)) {
		return fmt.Errorf("inserted %d rating entries, expected %d", count, len(entries))
	}

	return nil
}

func scanPostgresEntry(row pgx.Row) (*models.TeamRatingEntry, error) {
	e := &models.TeamRatingEntry{}
	err := row.Scan(
		&e.TeamID, &e.LeagueID, &e.Rating, &e.HomeFormDelta, &e.AwayFormDelta,
		&e.HomeGamesCount, &e.AwayGamesCount, &e.IsCalibrating, &e.Date,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf(errScanEntry, err)
	}
	e.Date = e.Date.UTC()
	return e, nil
}
