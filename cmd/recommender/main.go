// Package main provides the betting recommender command line.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/b0yank/betting-recommender/internal/config"
	"github.com/b0yank/betting-recommender/internal/database"
	"github.com/b0yank/betting-recommender/internal/engine"
	"github.com/b0yank/betting-recommender/internal/health"
	"github.com/b0yank/betting-recommender/internal/logger"
	"github.com/b0yank/betting-recommender/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const dateLayout = "2006-01-02"

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	repos      *repository.Repositories
	pinger     health.DatabasePinger
	closeDB    func()
	eng        *engine.Engine
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(newUpdateCmd(), newEstimateCmd(), newRatingCmd(), newFitCmd(), newServeCmd())
}

var rootCmd = &cobra.Command{
	Use:           "recommender",
	Short:         "Football Elo ratings and empirical outcome probabilities",
	Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if closeDB != nil {
		closeDB()
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	// .env is optional
	_ = godotenv.Load()

	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.ApplySecrets(ctx, cfg); err != nil {
		return err
	}
	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"driver":      cfg.Database.Driver,
	}).Debug("Configuration loaded")

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return err
		}
		if repos, err = repository.NewRepositories(db); err != nil {
			db.Close()
			return err
		}
		pinger, closeDB = db, db.Close
	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(cfg.Database.Path)
		if err != nil {
			return err
		}
		if repos, err = repository.NewSQLiteRepositories(db); err != nil {
			_ = db.Close()
			return err
		}
		pinger = db
		closeDB = func() {
			if err := db.Close(); err != nil {
				appLog.WithError(err).Error("Failed to close database")
			}
		}
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	var err error
	eng, err = engine.New(repos.Games, repos, engine.OptionsFromConfig(cfg), appLog)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	return nil
}

// parseDate reads a YYYY-MM-DD flag value as UTC midnight; empty means now
func parseDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}

// endOfDay moves a date to its last second so date-only bounds include
// games that kick off that day
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
