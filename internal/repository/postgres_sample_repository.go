package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/b0yank/betting-recommender/internal/database"
	"github.com/b0yank/betting-recommender/internal/models"
)

var sampleColumns = []string{
	"ft_home", "ft_away", "ht_home", "ht_away", "points_diff", "league_id", "season", "date",
}

const sampleSelect = `
	SELECT ft_home, ft_away, ht_home, ht_away, points_diff, league_id, season, date
	FROM outcome_samples
`

// PostgresSampleRepository implements SampleRepository for PostgreSQL
type PostgresSampleRepository struct {
	db *database.DB
}

// NewPostgresSampleRepository creates a new outcome sample repository
func NewPostgresSampleRepository(db *database.DB) SampleRepository {
	return &PostgresSampleRepository{db: db}
}

// GetAll retrieves every sample ordered by points difference
func (r *PostgresSampleRepository) GetAll(ctx context.Context) ([]*models.OutcomeSample, error) {
	rows, err := r.db.GetPool().Query(ctx, sampleSelect+` ORDER BY points_diff ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome samples: %w", err)
	}
	defer rows.Close()

	return collectPostgresSamples(rows)
}

// GetByPointsDiffRange retrieves samples with lo <= points_diff <= hi
func (r *PostgresSampleRepository) GetByPointsDiffRange(ctx context.Context, lo, hi float64) ([]*models.OutcomeSample, error) {
	query := sampleSelect + `
		WHERE points_diff >= $1 AND points_diff <= $2
		ORDER BY points_diff ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome samples by range: %w", err)
	}
	defer rows.Close()

	return collectPostgresSamples(rows)
}

// InsertBatch appends samples using COPY
func (r *PostgresSampleRepository) InsertBatch(ctx context.Context, samples []*models.OutcomeSample) error {
	return copySamples(ctx, r.db.GetPool(), samples)
}

func copySamples(ctx context.Context, c copier, samples []*models.OutcomeSample) error {
	if len(samples) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(samples))
	for i, s := range samples {
		rows[i] = []interface{}{
			s.FTHome, s.FTAway, s.HTHome, s.HTAway, s.PointsDiff, s.LeagueID, int(s.Season), s.Date,
		}
	}

	count, err := c.CopyFrom(ctx, pgx.Identifier{"outcome_samples"}, sampleColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to batch insert outcome samples: %w", err)
	}
	if count != int64(len(samples)) {
		return fmt.Errorf("inserted %d outcome samples, expected %d", count, len(samples))
	}

	return nil
}

func collectPostgresSamples(rows pgx.Rows) ([]*models.OutcomeSample, error) {
	var samples []*models.OutcomeSample
	for rows.Next() {
		s := &models.OutcomeSample{}
		var season int
		err := rows.Scan(&s.FTHome, &s.FTAway, &s.HTHome, &s.HTAway, &s.PointsDiff, &s.LeagueID, &season, &s.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome sample: %w", err)
		}
		s.Season = models.Season(season)
		s.Date = s.Date.UTC()
		samples = append(samples, s)
	}

	return samples, rows.Err()
}
