package market

import (
	"fmt"
	"math"
	"sort"

	"github.com/b0yank/betting-recommender/internal/models"
)

// DefaultGoalLines are the accepted goal lines when none are configured.
var DefaultGoalLines = []float64{1.5, 2.5, 3.5, 4.5}

// totalAndBTTSMinLine is the lowest goal line offered combined with btts.
const totalAndBTTSMinLine = 1.5

var (
	fullTimeSigns = []models.Sign{models.SignHome, models.SignDraw, models.SignAway}
	doubleChances = [][2]models.Sign{
		{models.SignHome, models.SignDraw},
		{models.SignDraw, models.SignAway},
		{models.SignHome, models.SignAway},
	}
)

// Catalog is the fixed, ordered set of markets priced for every fixture.
type Catalog struct {
	markets []Market
	index   map[string]int
	lines   []float64
}

// NewCatalog builds the market catalog for a set of goal lines. Lines must be
// positive half-goal values so that over and under partition every score.
func NewCatalog(goalLines []float64) (*Catalog, error) {
	if len(goalLines) == 0 {
		return nil, fmt.Errorf("%w: at least one goal line is required", models.ErrInvalidParameters)
	}

	lines := append([]float64(nil), goalLines...)
	sort.Float64s(lines)
	for i, line := range lines {
		if line <= 0 || math.Mod(line, 1) != 0.5 {
			return nil, fmt.Errorf("%w: goal line %v is not a positive half-goal value", models.ErrInvalidParameters, line)
		}
		if i > 0 && lines[i-1] == line {
			return nil, fmt.Errorf("%w: duplicate goal line %v", models.ErrInvalidParameters, line)
		}
	}

	c := &Catalog{lines: lines, index: make(map[string]int)}

	for _, sign := range fullTimeSigns {
		c.add(MainResult(sign))
	}
	c.add(BTTS(true), BTTS(false))
	for _, sign := range fullTimeSigns {
		c.add(HalfTimeResult(sign))
	}
	c.add(FirstHalfBTTS(true), FirstHalfBTTS(false))
	c.add(SecondHalfBTTS(true), SecondHalfBTTS(false))
	for _, dc := range doubleChances {
		c.add(DoubleChance(dc[0], dc[1]))
	}
	for _, dc := range doubleChances {
		c.add(HalfTimeDoubleChance(dc[0], dc[1]))
	}
	for _, half := range fullTimeSigns {
		for _, full := range fullTimeSigns {
			c.add(HalfTimeFullTime(half, full))
		}
	}

	for _, line := range lines {
		c.add(OverUnder(Over, line), OverUnder(Under, line))
		for _, side := range []models.Sign{models.SignHome, models.SignAway} {
			c.add(TeamAndTotal(side, Over, line), TeamAndTotal(side, Under, line))
		}
		if line > totalAndBTTSMinLine {
			for _, dir := range []Direction{Over, Under} {
				c.add(TotalAndBTTS(dir, line, true), TotalAndBTTS(dir, line, false))
			}
		}
	}

	return c, nil
}

func (c *Catalog) add(markets ...Market) {
	for _, m := range markets {
		c.index[m.Name()] = len(c.markets)
		c.markets = append(c.markets, m)
	}
}

// Markets returns the catalog in its fixed order
func (c *Catalog) Markets() []Market {
	return append([]Market(nil), c.markets...)
}

// Names returns the market names in catalog order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.markets))
	for i, m := range c.markets {
		names[i] = m.Name()
	}
	return names
}

// GoalLines returns the accepted goal lines in ascending order
func (c *Catalog) GoalLines() []float64 {
	return append([]float64(nil), c.lines...)
}

// Len returns the number of markets
func (c *Catalog) Len() int {
	return len(c.markets)
}

// Lookup finds a market by name
func (c *Catalog) Lookup(name string) (Market, bool) {
	i, ok := c.index[name]
	if !ok {
		return Market{}, false
	}
	return c.markets[i], true
}

// Probabilities returns, for every market, the share of scores that win it.
// All markets are counted over the same scores in a single pass.
func (c *Catalog) Probabilities(scores []models.Score) map[string]float64 {
	probs := make(map[string]float64, len(c.markets))
	if len(scores) == 0 {
		return probs
	}

	counts := make([]int, len(c.markets))
	for _, s := range scores {
		for i, m := range c.markets {
			if m.Matches(s) {
				counts[i]++
			}
		}
	}

	n := float64(len(scores))
	for i, m := range c.markets {
		probs[m.Name()] = float64(counts[i]) / n
	}
	return probs
}

// Settle reports whether the named market was won by a final score.
func (c *Catalog) Settle(name string, score models.Score) (bool, error) {
	m, ok := c.Lookup(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", models.ErrUnknownMarket, name)
	}
	return m.Matches(score), nil
}
