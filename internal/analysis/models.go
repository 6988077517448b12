package analysis

import (
	"math"

	"github.com/samber/lo"
)

// Rule identifies which rule last recalculated a row's limits.
type Rule string

const (
	RuleBaseline Rule = "Baseline"
	Rule2        Rule = "Rule2" // 8-point shift
	Rule3        Rule = "Rule3" // 3 of 4 points beyond a midline
)

// Label is the human-readable form used in tables and exports.
func (r Rule) Label() string {
	switch r {
	case Rule2:
		return "Rule 2"
	case Rule3:
		return "Rule 3"
	default:
		return string(r)
	}
}

// Limits holds the values derived from a baseline window. All fields are
// stored rounded to 2 decimal places.
type Limits struct {
	CenterAverage   float64 // DPA
	RangeAverage    float64 // MRA
	LowerLimit      float64 // LCL
	UpperLimit      float64 // UCL
	LowerMidline    float64 // DLA
	UpperMidline    float64 // DUA
	RangeUpperLimit float64 // MRUCL
}

// ControlRow is the chart row for one observation.
type ControlRow struct {
	Index     int
	DataPoint float64
	// MovingRange is |x[i]-x[i-1]| rounded to 2 decimals; NaN for the first row.
	MovingRange float64
	Limits
	RuleApplied Rule
	Signal      bool
}

// HasMovingRange reports whether the row carries a moving range.
func (r ControlRow) HasMovingRange() bool {
	return !math.IsNaN(r.MovingRange)
}

// MessageKind enumerates the events the engine reports.
type MessageKind int

const (
	BaselineEstablished MessageKind = iota
	Rule1Triggered
	Rule2Triggered
	Rule3Triggered
)

func (k MessageKind) String() string {
	switch k {
	case BaselineEstablished:
		return "baseline_established"
	case Rule1Triggered:
		return "rule1_triggered"
	case Rule2Triggered:
		return "rule2_triggered"
	case Rule3Triggered:
		return "rule3_triggered"
	}
	return "unknown"
}

// Message is a rule-trigger event. Index is the row that triggered it.
type Message struct {
	Kind  MessageKind
	Index int
}

// Result holds everything one Compute call produces.
type Result struct {
	Rows     []ControlRow
	Messages []Message
}

// SignalPoints returns the indices of rows flagged by the single-point rule.
func (r *Result) SignalPoints() []int {
	return lo.FilterMap(r.Rows, func(row ControlRow, _ int) (int, bool) {
		return row.Index, row.Signal
	})
}

// MessagesOf returns the messages of the given kind in chronological order.
func (r *Result) MessagesOf(kind MessageKind) []Message {
	return lo.Filter(r.Messages, func(m Message, _ int) bool {
		return m.Kind == kind
	})
}

// Counts tallies the messages per kind.
func (r *Result) Counts() map[MessageKind]int {
	counts := make(map[MessageKind]int)
	for _, m := range r.Messages {
		counts[m.Kind]++
	}
	return counts
}
