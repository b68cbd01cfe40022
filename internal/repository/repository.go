package repository

import (
	"fmt"

	"github.com/b0yank/betting-recommender/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Games        GameRepository
	Ratings      RatingRepository
	Samples      SampleRepository
	Calibrations CalibrationRepository
	Committer    StateCommitter
}

// NewRepositories creates the PostgreSQL repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Games:        NewPostgresGameRepository(db),
		Ratings:      NewPostgresRatingRepository(db),
		Samples:      NewPostgresSampleRepository(db),
		Calibrations: NewPostgresCalibrationRepository(db),
		Committer:    NewPostgresStateCommitter(db),
	}, nil
}

// NewSQLiteRepositories creates the SQLite repository implementations
func NewSQLiteRepositories(db *database.SQLiteDB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Games:        NewSQLiteGameRepository(db),
		Ratings:      NewSQLiteRatingRepository(db),
		Samples:      NewSQLiteSampleRepository(db),
		Calibrations: NewSQLiteCalibrationRepository(db),
		Committer:    NewSQLiteStateCommitter(db),
	}, nil
}

// NewMemoryRepositories creates repositories backed by a single in-memory store
func NewMemoryRepositories() *Repositories {
	m := NewMemoryStore()
	return &Repositories{
		Games:        m.Games(),
		Ratings:      m.Ratings(),
		Samples:      m.Samples(),
		Calibrations: m.Calibrations(),
		Committer:    m,
	}
}
