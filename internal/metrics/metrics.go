// Package metrics provides centralized Prometheus metrics registry for the rating engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "betting_recommender"

// Update pass outcomes
const (
	UpdateStatusSuccess = "success"
	UpdateStatusSkipped = "skipped"
	UpdateStatusFailed  = "failed"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RatingUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rating_updates_total",
		Help:      "Total number of rating update passes by status",
	}, []string{"status"})
	GamesReplayedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_replayed_total",
		Help:      "Total number of completed games replayed into ratings",
	})
	SeasonsInitializedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seasons_initialized_total",
		Help:      "Total number of seasons seeded",
	})
	RatingEntriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rating_entries_total",
		Help:      "Total number of rating entries committed",
	})
	OutcomeSamplesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outcome_samples_total",
		Help:      "Total number of outcome samples committed",
	})
)

// Gauge metrics
var (
	OutcomeSampleTableSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "outcome_sample_table_size",
		Help:      "Number of samples in the outcome sample table",
	})
	RatedTeams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rated_teams",
		Help:      "Number of teams with rating history",
	})
)

// Histogram metrics
var (
	SeasonReplayDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "season_replay_duration_seconds",
		Help:      "Duration of replaying one season in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
	RatingUpdateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rating_update_duration_seconds",
		Help:      "Duration of a full rating update pass in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register rating metrics
		registry.MustRegister(RatingUpdatesTotal)
		registry.MustRegister(GamesReplayedTotal)
		registry.MustRegister(SeasonsInitializedTotal)
		registry.MustRegister(RatingEntriesTotal)
		registry.MustRegister(OutcomeSamplesTotal)
		registry.MustRegister(OutcomeSampleTableSize)
		registry.MustRegister(RatedTeams)
		registry.MustRegister(SeasonReplayDuration)
		registry.MustRegister(RatingUpdateDuration)

		// Register estimation metrics
		registry.MustRegister(EstimatesTotal)
		registry.MustRegister(NeighborhoodSize)
		registry.MustRegister(EstimateCacheHitRatio)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRatingUpdate records the outcome of an update pass.
func RecordRatingUpdate(status string, durationSeconds float64) {
	RatingUpdatesTotal.WithLabelValues(status).Inc()
	RatingUpdateDuration.Observe(durationSeconds)
}

// RecordSeasonInitialized records a seeded season.
func RecordSeasonInitialized() {
	SeasonsInitializedTotal.Inc()
}

// RecordSeasonReplayed records a replayed and committed season.
func RecordSeasonReplayed(games, entries, samples int, durationSeconds float64) {
	GamesReplayedTotal.Add(float64(games))
	RatingEntriesTotal.Add(float64(entries))
	OutcomeSamplesTotal.Add(float64(samples))
	SeasonReplayDuration.Observe(durationSeconds)
}

// UpdateStateSize updates the rating state gauges.
func UpdateStateSize(teams, samples int) {
	RatedTeams.Set(float64(teams))
	OutcomeSampleTableSize.Set(float64(samples))
}
