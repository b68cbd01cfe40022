package rating

import (
	"fmt"

	"github.com/b0yank/betting-recommender/internal/models"
)

// marginBucketCap is the value margins above five goals are counted at.
const marginBucketCap = 6

// FitMarginBySign estimates the expected absolute goal margin of home wins and
// away wins from completed games. Margins above five goals share one bucket.
func FitMarginBySign(games []*models.Game) (models.MarginExpectationBySign, error) {
	var sums, counts [2]float64
	for _, g := range games {
		if !g.IsCompleted() {
			continue
		}
		margin := g.Score.Margin()
		var idx int
		switch {
		case margin > 0:
			idx = 0
		case margin < 0:
			idx = 1
			margin = -margin
		default:
			continue
		}
		if margin > marginBucketCap {
			margin = marginBucketCap
		}
		sums[idx] += float64(margin)
		counts[idx]++
	}

	if counts[0] == 0 || counts[1] == 0 {
		return models.MarginExpectationBySign{}, fmt.Errorf("%w: need both home and away wins to fit margins",
			models.ErrInvalidParameters)
	}

	return models.MarginExpectationBySign{
		HomeWin: sums[0] / counts[0],
		AwayWin: sums[1] / counts[1],
	}, nil
}

// FitMarginModel fits goal margin = intercept + coef * points_diff by
// ordinary least squares over outcome samples.
func FitMarginModel(samples []*models.OutcomeSample) (intercept, coef float64, err error) {
	n := float64(len(samples))
	if n < 2 {
		return 0, 0, fmt.Errorf("%w: need at least two samples to fit margin model", models.ErrInvalidParameters)
	}

	var meanX, meanY float64
	for _, s := range samples {
		meanX += s.PointsDiff
		meanY += float64(s.Margin())
	}
	meanX /= n
	meanY /= n

	var sxx, sxy float64
	for _, s := range samples {
		dx := s.PointsDiff - meanX
		sxx += dx * dx
		sxy += dx * (float64(s.Margin()) - meanY)
	}
	if sxx == 0 {
		return 0, 0, fmt.Errorf("%w: samples share a single points difference", models.ErrInvalidParameters)
	}

	coef = sxy / sxx
	return meanY - coef*meanX, coef, nil
}
