// Package config provides configuration management for the betting recommender.
package config

import (
	"fmt"
	"time"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Rating    RatingConfig    `mapstructure:"rating" validate:"required"`
	Estimator EstimatorConfig `mapstructure:"estimator" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration. Postgres uses
// the connection fields; SQLite only needs Path.
type DatabaseConfig struct {
	Driver             string `mapstructure:"driver" validate:"required,dbdriver"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
	Path               string `mapstructure:"path"`
}

// RatingConfig represents the rating update constants
type RatingConfig struct {
	KFactor                  float64 `mapstructure:"k_factor" validate:"gt=0"`
	FormLearningRate         float64 `mapstructure:"form_learning_rate" validate:"gte=0,lte=1"`
	InitialCalibrationRounds int     `mapstructure:"initial_calibration_rounds" validate:"gte=0"`
	CalibrationRounds        int     `mapstructure:"calibration_rounds" validate:"gte=0"`
	MaxMargin                int     `mapstructure:"max_margin" validate:"gt=0"`
}

// EstimatorConfig represents outcome estimation configuration
type EstimatorConfig struct {
	PointsDiffTolerance float64   `mapstructure:"points_diff_tolerance" validate:"gt=0"`
	MinSamples          int       `mapstructure:"min_samples" validate:"gt=0"`
	GoalLines           []float64 `mapstructure:"goal_lines" validate:"required,min=1,goallines"`
	UseForm             bool      `mapstructure:"use_form"`
}

// CacheConfig represents estimate cache configuration
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" validate:"required_if=Enabled true,gte=0"`
	MaxSize    int  `mapstructure:"max_size" validate:"required_if=Enabled true,gte=0"`
}

// SchedulerConfig represents scheduled rating update configuration
type SchedulerConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	UpdateCron string `mapstructure:"update_cron" validate:"required_if=Enabled true"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required_if=Enabled true,gte=0,max=65535"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// SecretsConfig represents the AWS Secrets Manager overlay configuration
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// CacheTTL returns the estimate cache entry lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
