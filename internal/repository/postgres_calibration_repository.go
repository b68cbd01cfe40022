package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/b0yank/betting-recommender/internal/database"
	"github.com/b0yank/betting-recommender/internal/models"
)

const calibrationSelect = `
	SELECT m.league_id, m.starting_rating, m.expected_advantage, m.intercept, m.coef,
	       COALESCE(h.expected_margin, 0), COALESCE(a.expected_margin, 0)
	FROM league_margins m
	LEFT JOIN league_margin_by_sign h ON h.league_id = m.league_id AND h.sign = '1'
	LEFT JOIN league_margin_by_sign a ON a.league_id = m.league_id AND a.sign = '2'
	ORDER BY m.league_id ASC
`

// PostgresCalibrationRepository implements CalibrationRepository for PostgreSQL
type PostgresCalibrationRepository struct {
	db *database.DB
}

// NewPostgresCalibrationRepository creates a new calibration repository
func NewPostgresCalibrationRepository(db *database.DB) CalibrationRepository {
	return &PostgresCalibrationRepository{db: db}
}

// GetAll retrieves every league calibration record
func (r *PostgresCalibrationRepository) GetAll(ctx context.Context) ([]*models.LeagueCalibration, error) {
	rows, err := r.db.GetPool().Query(ctx, calibrationSelect)
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
func (r *PostgresCalibrationRepository) Upsert(ctx context.Context, c *models.LeagueCalibration) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO league_margins (league_id, starting_rating, expected_advantage, intercept, coef)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (league_id) DO UPDATE SET
				starting_rating = EXCLUDED.starting_rating,
				expected_advantage = EXCLUDED.expected_advantage,
				intercept = EXCLUDED.intercept,
				coef = EXCLUDED.coef
		`, c.LeagueID, c.StartingRating, c.ExpectedAdvantage, c.Intercept, c.Coef)
		if err != nil {
			return fmt.Errorf("failed to upsert league margin: %w", err)
		}

		for sign, margin := range signMargins(c.MarginBySign) {
			_, err := tx.Exec(ctx, `
				INSERT INTO league_margin_by_sign (league_id, sign, expected_margin)
				VALUES ($1, $2, $3)
				ON CONFLICT (league_id, sign) DO UPDATE SET expected_margin = EXCLUDED.expected_margin
			`, c.LeagueID, string(sign), margin)
			if err != nil {
				return fmt.Errorf("failed to upsert margin for sign %s: %w", sign, err)
			}
		}
		return nil
	})
}

func signMargins(m models.MarginExpectationBySign) map[models.Sign]float64 {
	return map[models.Sign]float64{
		models.SignHome: m.HomeWin,
		models.SignAway: m.AwayWin,
	}
}
