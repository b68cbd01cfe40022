// Package estimator derives market probabilities for fixtures from the
// empirical outcomes of historical games played at a similar rating gap.
package estimator

import (
	"sort"

	"github.com/b0yank/betting-recommender/internal/models"
)

// SampleTable holds outcome samples ordered by points difference. Samples
// with equal points difference keep their insertion order.
type SampleTable struct {
	samples []*models.OutcomeSample
}

// NewSampleTable creates a sample table from unordered samples
func NewSampleTable(samples []*models.OutcomeSample) *SampleTable {
	t := &SampleTable{}
	t.Add(samples...)
	return t
}

// Add merges new samples into the table.
func (t *SampleTable) Add(samples ...*models.OutcomeSample) {
	if len(samples) == 0 {
		return
	}
	incoming := append([]*models.OutcomeSample(nil), samples...)
	sort.SliceStable(incoming, func(i, j int) bool {
		return incoming[i].PointsDiff < incoming[j].PointsDiff
	})

	merged := make([]*models.OutcomeSample, 0, len(t.samples)+len(incoming))
	i, j := 0, 0
	for i < len(t.samples) && j < len(incoming) {
		if incoming[j].PointsDiff < t.samples[i].PointsDiff {
			merged = append(merged, incoming[j])
			j++
		} else {
			merged = append(merged, t.samples[i])
			i++
		}
	}
	merged = append(merged, t.samples[i:]...)
	merged = append(merged, incoming[j:]...)
	t.samples = merged
}

// Range returns the samples with lo <= points_diff <= hi.
func (t *SampleTable) Range(lo, hi float64) []*models.OutcomeSample {
	start := sort.Search(len(t.samples), func(i int) bool {
		return t.samples[i].PointsDiff >= lo
	})
	end := sort.Search(len(t.samples), func(i int) bool {
		return t.samples[i].PointsDiff > hi
	})
	if start >= end {
		return nil
	}
	return t.samples[start:end]
}

// Top returns the n samples with the largest points difference.
func (t *SampleTable) Top(n int) []*models.OutcomeSample {
	if n > len(t.samples) {
		n = len(t.samples)
	}
	return t.samples[len(t.samples)-n:]
}

// Max returns the largest recorded points difference
func (t *SampleTable) Max() (float64, bool) {
	if len(t.samples) == 0 {
		return 0, false
	}
	return t.samples[len(t.samples)-1].PointsDiff, true
}

// Len returns the number of samples
func (t *SampleTable) Len() int {
	return len(t.samples)
}

// All returns the samples in points difference order
func (t *SampleTable) All() []*models.OutcomeSample {
	return append([]*models.OutcomeSample(nil), t.samples...)
}
