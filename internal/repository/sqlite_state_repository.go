package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/b0yank/betting-recommender/internal/database"
	"github.com/b0yank/betting-recommender/internal/models"
)

// preparer is satisfied by both *sql.DB and *sql.Tx
type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// SQLiteRatingRepository implements RatingRepository for SQLite
type SQLiteRatingRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteRatingRepository creates a new rating repository
func NewSQLiteRatingRepository(db *database.SQLiteDB) RatingRepository {
	return &SQLiteRatingRepository{db: db}
}

// GetAll retrieves the full rating history in append order
func (r *SQLiteRatingRepository) GetAll(ctx context.Context) ([]*models.TeamRatingEntry, error) {
	rows, err := r.db.Conn().QueryContext(ctx, ratingSelect+` ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var entries []*models.TeamRatingEntry
	for rows.Next() {
		e, err := scanSQLiteEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetLatestAsOf retrieves a team's latest entry dated on or before date
func (r *SQLiteRatingRepository) GetLatestAsOf(ctx context.Context, teamID int64, date time.Time) (*models.TeamRatingEntry, error) {
	row := r.db.Conn().QueryRowContext(ctx, ratingSelect+`
		WHERE team_id = ? AND date <= ?
		ORDER BY date DESC, id DESC
		LIMIT 1
	`, teamID, formatSQLiteTime(date))

	e, err := scanSQLiteEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return e, err
}

// InsertBatch appends rating entries in one transaction
func (r *SQLiteRatingRepository) InsertBatch(ctx context.Context, entries []*models.TeamRatingEntry) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return insertSQLiteEntries(ctx, tx, entries)
	})
}

func insertSQLiteEntries(ctx context.Context, p preparer, entries []*models.TeamRatingEntry) error {
	if len(entries) == 0 {
		return nil
	}

	stmt, err := p.PrepareContext(ctx, `
		INSERT INTO team_ratings (`+strings.Join(ratingColumns, ", ")+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare rating insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx, e.TeamID, e.LeagueID, e.Rating, e.HomeFormDelta, e.AwayFormDelta,
			e.HomeGamesCount, e.AwayGamesCount, e.IsCalibrating, formatSQLiteTime(e.Date))
		if err != nil {
			return fmt.Errorf("failed to insert rating entry for team %d: %w", e.TeamID, err)
		}
	}
	return nil
}

func scanSQLiteEntry(row rowScanner) (*models.TeamRatingEntry, error) {
	e := &models.TeamRatingEntry{}
	var date string
	err := row.Scan(
		&e.TeamID, &e.LeagueID, &e.Rating, &e.HomeFormDelta, &e.AwayFormDelta,
		&e.HomeGamesCount, &e.AwayGamesCount, &e.IsCalibrating, &date,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf(errScanEntry, err)
	}
	if e.Date, err = parseSQLiteTime(date); err != nil {
		return nil, err
	}
	return e, nil
}

// SQLiteSampleRepository implements SampleRepository for SQLite
type SQLiteSampleRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteSampleRepository creates a new outcome sample repository
func NewSQLiteSampleRepository(db *database.SQLiteDB) SampleRepository {
	return &SQLiteSampleRepository{db: db}
}

// GetAll retrieves every sample ordered by points difference
func (r *SQLiteSampleRepository) GetAll(ctx context.Context) ([]*models.OutcomeSample, error) {
	rows, err := r.db.Conn().QueryContext(ctx, sampleSelect+` ORDER BY points_diff ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome samples: %w", err)
	}
	defer rows.Close()

	return collectSQLiteSamples(rows)
}

// GetByPointsDiffRange retrieves samples with lo <= points_diff <= hi
func (r *SQLiteSampleRepository) GetByPointsDiffRange(ctx context.Context, lo, hi float64) ([]*models.OutcomeSample, error) {
	rows, err := r.db.Conn().QueryContext(ctx, sampleSelect+`
		WHERE points_diff >= ? AND points_diff <= ?
		ORDER BY points_diff ASC, id ASC
	`, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome samples by range: %w", err)
	}
	defer rows.Close()

	return collectSQLiteSamples(rows)
}

// InsertBatch appends samples in one transaction
func (r *SQLiteSampleRepository) InsertBatch(ctx context.Context, samples []*models.OutcomeSample) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return insertSQLiteSamples(ctx, tx, samples)
	})
}

func insertSQLiteSamples(ctx context.Context, p preparer, samples []*models.OutcomeSample) error {
	if len(samples) == 0 {
		return nil
	}

	stmt, err := p.PrepareContext(ctx, `
		INSERT INTO outcome_samples (`+strings.Join(sampleColumns, ", ")+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		_, err := stmt.ExecContext(ctx, s.FTHome, s.FTAway, s.HTHome, s.HTAway, s.PointsDiff,
			s.LeagueID, int(s.Season), formatSQLiteTime(s.Date))
		if err != nil {
			return fmt.Errorf("failed to insert outcome sample: %w", err)
		}
	}
	return nil
}

func collectSQLiteSamples(rows *sql.Rows) ([]*models.OutcomeSample, error) {
	var samples []*models.OutcomeSample
	for rows.Next() {
		s := &models.OutcomeSample{}
		var (
			season int
			date   string
		)
		err := rows.Scan(&s.FTHome, &s.FTAway, &s.HTHome, &s.HTAway, &s.PointsDiff, &s.LeagueID, &season, &date)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome sample: %w", err)
		}
		if s.Date, err = parseSQLiteTime(date); err != nil {
			return nil, err
		}
		s.Season = models.Season(season)
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// SQLiteCalibrationRepository implements CalibrationRepository for SQLite
type SQLiteCalibrationRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteCalibrationRepository creates a new calibration repository
func NewSQLiteCalibrationRepository(db *database.SQLiteDB) CalibrationRepository {
	return &SQLiteCalibrationRepository{db: db}
}

// GetAll retrieves every league calibration record
func (r *SQLiteCalibrationRepository) GetAll(ctx context.Context) ([]*models.LeagueCalibration, error) {
	rows, err := r.db.Conn().QueryContext(ctx, calibrationSelect)
	if err != nil {
		return nil, fmt.Errorf("failed to query league calibrations: %w", err)
	}
	defer rows.Close()

	var calibrations []*models.LeagueCalibration
	for rows.Next() {
		c := &models.LeagueCalibration{}
		err := rows.Scan(&c.LeagueID, &c.StartingRating, &c.ExpectedAdvantage, &c.Intercept, &c.Coef,
			&c.MarginBySign.HomeWin, &c.MarginBySign.AwayWin)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league calibration: %w", err)
		}
		calibrations = append(calibrations, c)
	}

	return calibrations, rows.Err()
}

// Upsert writes a league's margin model and its per-sign expectations in one transaction
func (r *SQLiteCalibrationRepository) Upsert(ctx context.Context, c *models.LeagueCalibration) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO league_margins (league_id, starting_rating, expected_advantage, intercept, coef)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (league_id) DO UPDATE SET
				starting_rating = excluded.starting_rating,
				expected_advantage = excluded.expected_advantage,
				intercept = excluded.intercept,
				coef = excluded.coef
		`, c.LeagueID, c.StartingRating, c.ExpectedAdvantage, c.Intercept, c.Coef)
		if err != nil {
			return fmt.Errorf("failed to upsert league margin: %w", err)
		}

		for sign, margin := range signMargins(c.MarginBySign) {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO league_margin_by_sign (league_id, sign, expected_margin)
				VALUES (?, ?, ?)
				ON CONFLICT (league_id, sign) DO UPDATE SET expected_margin = excluded.expected_margin
			`, c.LeagueID, string(sign), margin)
			if err != nil {
				return fmt.Errorf("failed to upsert margin for sign %s: %w", sign, err)
			}
		}
		return nil
	})
}

// SQLiteStateCommitter commits season batches to SQLite
type SQLiteStateCommitter struct {
	db *database.SQLiteDB
}

// NewSQLiteStateCommitter creates a new state committer
func NewSQLiteStateCommitter(db *database.SQLiteDB) StateCommitter {
	return &SQLiteStateCommitter{db: db}
}

// CommitSeason writes a season's entries and samples inside one transaction
func (c *SQLiteStateCommitter) CommitSeason(ctx context.Context, batch *models.SeasonBatch) error {
	if batch.IsEmpty() {
		return nil
	}

	err := c.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := insertSQLiteEntries(ctx, tx, batch.Entries); err != nil {
			return err
		}
		return insertSQLiteSamples(ctx, tx, batch.Samples)
	})
	if err != nil {
		return fmt.Errorf("failed to commit season %s: %w", batch.Season, err)
	}

	return nil
}
