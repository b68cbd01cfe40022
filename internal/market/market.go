// Package market defines the bettable outcomes the estimator prices and the
// predicates that settle them against a final score.
package market

import (
	"fmt"
	"strconv"

	"github.com/b0yank/betting-recommender/internal/models"
)

// Kind tags the family a market belongs to
type Kind int

const (
	KindMainResult Kind = iota
	KindHalfTimeResult
	KindDoubleChance
	KindHalfTimeDoubleChance
	KindBTTS
	KindFirstHalfBTTS
	KindSecondHalfBTTS
	KindOverUnder
	KindTeamAndTotal
	KindTotalAndBTTS
	KindHalfTimeFullTime
)

// Direction selects the side of a goal line
type Direction int

const (
	Over Direction = iota
	Under
)

func (d Direction) String() string {
	if d == Under {
		return "under"
	}
	return "over"
}

// Market identifies one bettable outcome. Which fields are meaningful depends
// on Kind; use the constructors below rather than building values by hand.
type Market struct {
	Kind      Kind
	Sign      models.Sign // result sign, team side, or full-time sign of a combo
	Other     models.Sign // second sign of a double chance, half-time sign of a combo
	Line      float64
	Direction Direction
	Yes       bool
}

// MainResult is the full-time result market for a sign.
func MainResult(sign models.Sign) Market {
	return Market{Kind: KindMainResult, Sign: sign}
}

// HalfTimeResult is the half-time result market for a sign.
func HalfTimeResult(sign models.Sign) Market {
	return Market{Kind: KindHalfTimeResult, Sign: sign}
}

// DoubleChance wins when the full-time result is either sign.
func DoubleChance(a, b models.Sign) Market {
	return Market{Kind: KindDoubleChance, Sign: a, Other: b}
}

// HalfTimeDoubleChance wins when the half-time result is either sign.
func HalfTimeDoubleChance(a, b models.Sign) Market {
	return Market{Kind: KindHalfTimeDoubleChance, Sign: a, Other: b}
}

// BTTS is the both-teams-to-score market over the full game.
func BTTS(yes bool) Market {
	return Market{Kind: KindBTTS, Yes: yes}
}

// FirstHalfBTTS is the both-teams-to-score market for the first half.
func FirstHalfBTTS(yes bool) Market {
	return Market{Kind: KindFirstHalfBTTS, Yes: yes}
}

// SecondHalfBTTS is the both-teams-to-score market for the second half.
func SecondHalfBTTS(yes bool) Market {
	return Market{Kind: KindSecondHalfBTTS, Yes: yes}
}

// OverUnder is a full-time goal total on one side of line.
func OverUnder(dir Direction, line float64) Market {
	return Market{Kind: KindOverUnder, Direction: dir, Line: line}
}

// TeamAndTotal is a win for side (SignHome or SignAway) combined with a goal
// total on the given side of the line.
func TeamAndTotal(side models.Sign, dir Direction, line float64) Market {
	return Market{Kind: KindTeamAndTotal, Sign: side, Direction: dir, Line: line}
}

// TotalAndBTTS combines a goal total with a both-teams-to-score outcome.
func TotalAndBTTS(dir Direction, line float64, yes bool) Market {
	return Market{Kind: KindTotalAndBTTS, Direction: dir, Line: line, Yes: yes}
}

// HalfTimeFullTime wins when both the half-time and full-time signs match.
func HalfTimeFullTime(half, full models.Sign) Market {
	return Market{Kind: KindHalfTimeFullTime, Sign: full, Other: half}
}

// Name returns the market's column name, e.g. "ht_1/X", "home_&over_2.5".
func (m Market) Name() string {
	switch m.Kind {
	case KindMainResult:
		return string(m.Sign)
	case KindHalfTimeResult:
		return "ht_" + string(m.Sign)
	case KindDoubleChance:
		return string(m.Sign) + "/" + string(m.Other)
	case KindHalfTimeDoubleChance:
		return "ht_" + string(m.Sign) + "/" + string(m.Other)
	case KindBTTS:
		return "btts_" + yesNo(m.Yes)
	case KindFirstHalfBTTS:
		return "first_half_btts_" + yesNo(m.Yes)
	case KindSecondHalfBTTS:
		return "second_half_btts_" + yesNo(m.Yes)
	case KindOverUnder:
		return m.Direction.String() + "_" + formatLine(m.Line)
	case KindTeamAndTotal:
		return sideName(m.Sign) + "_&" + m.Direction.String() + "_" + formatLine(m.Line)
	case KindTotalAndBTTS:
		return m.Direction.String() + "_" + formatLine(m.Line) + "_btts_" + yesNo(m.Yes)
	case KindHalfTimeFullTime:
		return string(m.Other) + "-" + string(m.Sign)
	default:
		return fmt.Sprintf("unknown(%d)", m.Kind)
	}
}

func (m Market) String() string {
	return m.Name()
}

// Matches reports whether the market is won by the given score.
func (m Market) Matches(s models.Score) bool {
	switch m.Kind {
	case KindMainResult:
		return s.Sign() == m.Sign
	case KindHalfTimeResult:
		return s.HalfTimeSign() == m.Sign
	case KindDoubleChance:
		sign := s.Sign()
		return sign == m.Sign || sign == m.Other
	case KindHalfTimeDoubleChance:
		sign := s.HalfTimeSign()
		return sign == m.Sign || sign == m.Other
	case KindBTTS:
		return bothScored(s.FTHome, s.FTAway) == m.Yes
	case KindFirstHalfBTTS:
		return bothScored(s.HTHome, s.HTAway) == m.Yes
	case KindSecondHalfBTTS:
		return bothScored(s.FTHome-s.HTHome, s.FTAway-s.HTAway) == m.Yes
	case KindOverUnder:
		return onSide(s.TotalGoals(), m.Direction, m.Line)
	case KindTeamAndTotal:
		return s.Sign() == m.Sign && onSide(s.TotalGoals(), m.Direction, m.Line)
	case KindTotalAndBTTS:
		return onSide(s.TotalGoals(), m.Direction, m.Line) && bothScored(s.FTHome, s.FTAway) == m.Yes
	case KindHalfTimeFullTime:
		return s.HalfTimeSign() == m.Other && s.Sign() == m.Sign
	default:
		return false
	}
}

func onSide(goals int, dir Direction, line float64) bool {
	if dir == Under {
		return float64(goals) < line
	}
	return float64(goals) > line
}

func bothScored(home, away int) bool {
	return home > 0 && away > 0
}

func yesNo(yes bool) string {
	if yes {
		return "yes"
	}
	return "no"
}

func sideName(side models.Sign) string {
	if side == models.SignAway {
		return "away"
	}
	return "home"
}

func formatLine(line float64) string {
	return strconv.FormatFloat(line, 'f', -1, 64)
}
