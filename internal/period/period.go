// Package period labels chart rows with calendar months or weeks.
package period

import (
	"fmt"
	"strings"
)

// Unit is the spacing between consecutive observations.
type Unit string

const (
	Month Unit = "month"
	Week  Unit = "week"

	// WeeksPerYear is fixed; leap weeks are not modelled.
	WeeksPerYear = 52
)

// ParseUnit accepts "month"/"months" and "week"/"weeks", case-insensitively.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "month", "months":
		return Month, nil
	case "week", "weeks":
		return Week, nil
	}
	return "", fmt.Errorf("unknown time unit %q (want month or week)", s)
}

// MaxStart is the largest valid starting period for the unit.
func (u Unit) MaxStart() int {
	if u == Week {
		return WeeksPerYear
	}
	return 12
}

// TimePeriod is the label attached to the row with the same Index.
type TimePeriod struct {
	Index  int
	Year   int
	Period int
	Label  string
}

// Generate returns n consecutive periods starting at startYear/startPeriod.
//
// Weeks are counted from startPeriod itself, so week 52 of one year rolls to
// week 52 labelled with the following year. Period 0 is shown as 52.
func Generate(startYear, startPeriod int, unit Unit, n int) []TimePeriod {
	periods := make([]TimePeriod, n)
	for i := range periods {
		var year, p int
		var label string
		if unit == Week {
			total := startPeriod + i
			year = startYear + total/WeeksPerYear
			p = total % WeeksPerYear
			if p == 0 {
				p = WeeksPerYear
			}
			label = fmt.Sprintf("%d-W%02d", year, p)
		} else {
			total := startPeriod - 1 + i
			year = startYear + total/12
			p = total%12 + 1
			label = fmt.Sprintf("%d-%02d", year, p)
		}
		periods[i] = TimePeriod{Index: i, Year: year, Period: p, Label: label}
	}
	return periods
}

// Labels returns just the display labels.
func Labels(periods []TimePeriod) []string {
	out := make([]string, len(periods))
	for i, p := range periods {
		out[i] = p.Label
	}
	return out
}
