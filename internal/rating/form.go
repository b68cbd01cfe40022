package rating

import (
	"fmt"

	"github.com/b0yank/betting-recommender/internal/models"
)

// DefaultFormLearningRate is the EWMA weight of the latest game's correction.
const DefaultFormLearningRate = 0.2

// FormTracker updates the short-term home and away corrections to a team's
// rating.
type FormTracker struct {
	learningRate float64
}

// NewFormTracker creates a form tracker. The learning rate must be in [0, 1].
func NewFormTracker(learningRate float64) (*FormTracker, error) {
	if learningRate < 0 || learningRate > 1 {
		return nil, fmt.Errorf("%w: form learning rate %v outside [0, 1]", models.ErrInvalidParameters, learningRate)
	}
	return &FormTracker{learningRate: learningRate}, nil
}

// LearningRate returns the tracker's EWMA weight
func (f *FormTracker) LearningRate() float64 {
	return f.learningRate
}

// Correction compares the points difference a game was played at with the
// one its goal margin implies under the league's margin model. Positive
// values mean the home side underperformed its rating.
func (f *FormTracker) Correction(cal *models.LeagueCalibration, margin int, truePointsDiff float64) float64 {
	expected := cal.PointsDiffForMargin(float64(margin))
	return (truePointsDiff - expected) / 2
}

// Update returns the home team's new home form and the away team's new away
// form. The other side of each team's form is not touched.
func (f *FormTracker) Update(homeForm, awayForm, correction float64) (float64, float64) {
	lr := f.learningRate
	return (1-lr)*homeForm - lr*correction, (1-lr)*awayForm + lr*correction
}
