package analysis

import (
	"math"
	"math/big"
)

const (
	// BaselineSize is the number of leading observations the baseline is built from.
	BaselineSize = 8

	shiftWindow = 8 // Rule 2
	trendWindow = 4 // Rule 3
	trendHits   = 3

	sigmaUnits = 3.0
	d2         = 1.128 // bias correction for moving ranges of two points
	d4         = 3.267 // upper range factor for moving ranges of two points
)

// Compute builds the process behavior chart for values, which must be finite
// and hold at least BaselineSize entries.
//
// Rows 0..7 form the baseline. Every later row is evaluated against the limits
// already stored on the row before it:
//   - Rule 1 flags a point outside LCL/UCL whose moving range exceeds MRUCL.
//     It never changes limits.
//   - Rule 2 fires when the last 8 points all sit above or all below DPA. Limits
//     are recomputed from that window and written back over it.
//   - Rule 3 is only checked when Rule 2 did not fire. It fires when 3 of the
//     last 4 points are above DUA or 3 are below DLA, and recomputes from the
//     4-point window.
//   - Otherwise the previous row's limits and rule tag carry forward.
//
// Back-patching stops at the baseline: rows 0..7 keep their baseline limits.
func Compute(values []float64) (*Result, error) {
	if len(values) < BaselineSize {
		return nil, &InsufficientDataError{Have: len(values), Need: BaselineSize}
	}

	rows := make([]ControlRow, len(values))
	for i, v := range values {
		rows[i] = ControlRow{Index: i, DataPoint: v, MovingRange: math.NaN()}
		if i > 0 {
			rows[i].MovingRange = round2(math.Abs(v - values[i-1]))
		}
	}

	baseline := limitsFor(rows[:BaselineSize])
	for i := 0; i < BaselineSize; i++ {
		rows[i].Limits = baseline
		rows[i].RuleApplied = RuleBaseline
	}
	messages := []Message{{Kind: BaselineEstablished, Index: BaselineSize - 1}}

	for i := BaselineSize; i < len(rows); i++ {
		prev := rows[i-1]
		row := &rows[i]

		// Rule 1 compares the unrounded moving range.
		mr := math.Abs(row.DataPoint - prev.DataPoint)
		if (row.DataPoint > prev.UpperLimit || row.DataPoint < prev.LowerLimit) && mr > prev.RangeUpperLimit {
			row.Signal = true
			messages = append(messages, Message{Kind: Rule1Triggered, Index: i})
		}

		switch {
		case shifted(rows[i-shiftWindow+1:i+1], prev.CenterAverage):
			recalculate(rows, i, shiftWindow, Rule2)
			messages = append(messages, Message{Kind: Rule2Triggered, Index: i})
		case trending(rows[i-trendWindow+1:i+1], prev.Limits):
			recalculate(rows, i, trendWindow, Rule3)
			messages = append(messages, Message{Kind: Rule3Triggered, Index: i})
		default:
			row.Limits = prev.Limits
			row.RuleApplied = prev.RuleApplied
		}
	}

	out := make([]ControlRow, len(rows))
	copy(out, rows)
	return &Result{Rows: out, Messages: messages}, nil
}

// shifted reports whether every point in window is strictly above, or every
// point strictly below, center.
func shifted(window []ControlRow, center float64) bool {
	above, below := true, true
	for _, r := range window {
		above = above && r.DataPoint > center
		below = below && r.DataPoint < center
	}
	return above || below
}

func trending(window []ControlRow, lim Limits) bool {
	var above, below int
	for _, r := range window {
		if r.DataPoint > lim.UpperMidline {
			above++
		}
		if r.DataPoint < lim.LowerMidline {
			below++
		}
	}
	return above >= trendHits || below >= trendHits
}

// recalculate derives limits from the size rows ending at i and writes them to
// every non-baseline row of that window.
func recalculate(rows []ControlRow, i, size int, rule Rule) {
	start := i - size + 1
	lim := limitsFor(rows[start : i+1])
	for j := max(start, BaselineSize); j <= i; j++ {
		rows[j].Limits = lim
		rows[j].RuleApplied = rule
	}
}

// limitsFor computes the chart limits of a window. The moving ranges are the
// rounded values already stored on the rows; the first row's missing range is
// skipped.
func limitsFor(window []ControlRow) Limits {
	var sum float64
	for _, r := range window {
		sum += r.DataPoint
	}
	center := sum / float64(len(window))

	var rangeSum float64
	var n int
	for _, r := range window {
		if !r.HasMovingRange() {
			continue
		}
		rangeSum += r.MovingRange
		n++
	}
	var mra float64
	if n > 0 {
		mra = rangeSum / float64(n)
	}

	lcl := center - mra*sigmaUnits/d2
	ucl := center + mra*sigmaUnits/d2
	return Limits{
		CenterAverage:   round2(center),
		RangeAverage:    round2(mra),
		LowerLimit:      round2(lcl),
		UpperLimit:      round2(ucl),
		LowerMidline:    round2((lcl + center) / 2),
		UpperMidline:    round2((center + ucl) / 2),
		RangeUpperLimit: round2(mra * d4),
	}
}

// round2 rounds x to 2 decimal places, halves away from zero, working on the
// exact binary value of x. Results feed back into later rule checks.
// TODO: decide whether to carry full precision internally and round only for
// display; that would change outputs, so the stored values stay rounded.
func round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := new(big.Float).SetPrec(256).SetFloat64(x)
	f.Mul(f, big.NewFloat(100))
	if f.Sign() < 0 {
		f.Sub(f, big.NewFloat(0.5))
	} else {
		f.Add(f, big.NewFloat(0.5))
	}
	n, _ := f.Int(nil)
	v, _ := new(big.Rat).SetFrac(n, big.NewInt(100)).Float64()
	return v
}
