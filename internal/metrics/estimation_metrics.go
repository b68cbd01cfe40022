// Package metrics defines estimation-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Estimate outcomes
const (
	EstimateStatusOK            = "ok"
	EstimateStatusLowConfidence = "low_confidence"
	EstimateStatusFallback      = "fallback"
	EstimateStatusFailed        = "failed"
)

// Estimation metrics
var (
	EstimatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimates_total",
		Help:      "Total number of fixture estimates by status",
	}, []string{"status"})
	NeighborhoodSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "neighborhood_size",
		Help:      "Number of historical samples an estimate was priced from",
		Buckets:   []float64{1, 5, 10, 20, 50, 100, 250, 500, 1000},
	})
	EstimateCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "estimate_cache_hit_ratio",
		Help:      "Hit ratio of the estimate cache",
	})
)

// RecordEstimate records a fixture estimate.
func RecordEstimate(status string, sampleSize int) {
	EstimatesTotal.WithLabelValues(status).Inc()
	if sampleSize > 0 {
		NeighborhoodSize.Observe(float64(sampleSize))
	}
}

// UpdateEstimateCacheHitRatio updates the estimate cache hit ratio gauge.
func UpdateEstimateCacheHitRatio(ratio float64) {
	EstimateCacheHitRatio.Set(ratio)
}
