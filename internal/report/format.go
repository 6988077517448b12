package report

import (
	"strconv"

	"github.com/user/pbc_analyzer_go/internal/analysis"
)

// FormatLimit renders a stored limit with 2 decimals.
func FormatLimit(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatDataPoint renders an observation the way it was entered.
func FormatDataPoint(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatMovingRange renders the row's moving range, "-" for the first row.
func FormatMovingRange(row analysis.ControlRow) string {
	if !row.HasMovingRange() {
		return "-"
	}
	return FormatLimit(row.MovingRange)
}

// FormatSignal is "1" for flagged rows and empty otherwise.
func FormatSignal(row analysis.ControlRow) string {
	if row.Signal {
		return "1"
	}
	return ""
}
