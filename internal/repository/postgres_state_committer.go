package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/b0yank/betting-recommender/internal/database"
	"github.com/b0yank/betting-recommender/internal/models"
)

// PostgresStateCommitter commits season batches to PostgreSQL
type PostgresStateCommitter struct {
	db *database.DB
}

// NewPostgresStateCommitter creates a new state committer
func NewPostgresStateCommitter(db *database.DB) StateCommitter {
	return &PostgresStateCommitter{db: db}
}

// CommitSeason copies a season's entries and samples inside one transaction
func (c *PostgresStateCommitter) CommitSeason(ctx context.Context, batch *models.SeasonBatch) error {
	if batch.IsEmpty() {
		return nil
	}

	err := c.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := copyRatingEntries(ctx, tx, batch.Entries); err != nil {
			return err
		}
		return copySamples(ctx, tx, batch.Samples)
	})
	if err != nil {
		return fmt.Errorf("failed to commit season %s: %w", batch.Season, err)
	}

	return nil
}
