package models

import (
	"fmt"
	"time"
)

// Season identifies a football season as the concatenation of its start and
// end years, e.g. 20192020.
type Season int

// SeasonStartMonth is the month in which a new season begins.
const SeasonStartMonth = time.July

// SeasonOf returns the season a date belongs to.
func SeasonOf(t time.Time) Season {
	year := t.Year()
	if t.Month() >= SeasonStartMonth {
		return Season(year*10000 + year + 1)
	}
	return Season((year-1)*10000 + year)
}

// StartYear returns the calendar year in which the season starts.
func (s Season) StartYear() int {
	return int(s) / 10000
}

// Previous returns the immediately preceding season.
func (s Season) Previous() Season {
	return s - 10001
}

// Next returns the immediately following season.
func (s Season) Next() Season {
	return s + 10001
}

// StartDate returns July 1 of the start year, the date seed entries carry.
func (s Season) StartDate() time.Time {
	return time.Date(s.StartYear(), SeasonStartMonth, 1, 0, 0, 0, 0, time.UTC)
}

// Valid checks that the end year directly follows the start year.
func (s Season) Valid() bool {
	start := s.StartYear()
	return start > 0 && int(s)%10000 == start+1
}

// String returns the season in "2019/2020" form
func (s Season) String() string {
	return fmt.Sprintf("%d/%d", s.StartYear(), int(s)%10000)
}
