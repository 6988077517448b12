package analysis

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alternating baseline: DPA 10, MRA 2, LCL 4.68, UCL 15.32, DLA 7.34, DUA 12.66, MRUCL 6.53.
var alternating = []float64{11, 9, 11, 9, 11, 9, 11, 9}

func series(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func requireLimits(t *testing.T, want, got Limits) {
	t.Helper()
	assert.Equal(t, want.CenterAverage, got.CenterAverage, "DPA")
	assert.Equal(t, want.RangeAverage, got.RangeAverage, "MRA")
	assert.Equal(t, want.LowerLimit, got.LowerLimit, "LCL")
	assert.Equal(t, want.UpperLimit, got.UpperLimit, "UCL")
	assert.Equal(t, want.LowerMidline, got.LowerMidline, "DLA")
	assert.Equal(t, want.UpperMidline, got.UpperMidline, "DUA")
	// MRA*D4 can land on a rounding edge, e.g. 1.5*3.267
	assert.InDelta(t, want.RangeUpperLimit, got.RangeUpperLimit, 0.011, "MRUCL")
}

func TestCompute_InsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		res, err := Compute(make([]float64, n))
		require.Error(t, err)
		require.Nil(t, res)
		require.True(t, errors.Is(err, ErrInsufficientData))

		var ide *InsufficientDataError
		require.True(t, errors.As(err, &ide))
		assert.Equal(t, n, ide.Have)
		assert.Equal(t, BaselineSize, ide.Need)
	}
}

func TestCompute_BaselineOnly(t *testing.T) {
	res, err := Compute(alternating)
	require.NoError(t, err)
	require.Len(t, res.Rows, 8)
	require.Equal(t, []Message{{Kind: BaselineEstablished, Index: 7}}, res.Messages)

	want := Limits{
		CenterAverage:   10,
		RangeAverage:    2,
		LowerLimit:      4.68,
		UpperLimit:      15.32,
		LowerMidline:    7.34,
		UpperMidline:    12.66,
		RangeUpperLimit: 6.53,
	}
	for _, row := range res.Rows {
		requireLimits(t, want, row.Limits)
		assert.Equal(t, RuleBaseline, row.RuleApplied)
		assert.False(t, row.Signal)
	}
	assert.False(t, res.Rows[0].HasMovingRange())
	assert.Equal(t, 2.0, res.Rows[1].MovingRange)
}

func TestCompute_EndToEndSignal(t *testing.T) {
	res, err := Compute([]float64{10, 12, 11, 13, 12, 11, 14, 12, 30})
	require.NoError(t, err)
	require.Len(t, res.Rows, 9)

	baseline := Limits{
		CenterAverage:   11.88,
		RangeAverage:    1.71,
		LowerLimit:      7.32,
		UpperLimit:      16.43,
		LowerMidline:    9.6,
		UpperMidline:    14.15,
		RangeUpperLimit: 5.6,
	}
	requireLimits(t, baseline, res.Rows[0].Limits)

	last := res.Rows[8]
	assert.True(t, last.Signal)
	assert.Equal(t, 18.0, last.MovingRange)
	assert.Equal(t, RuleBaseline, last.RuleApplied)
	assert.Equal(t, res.Rows[7].Limits, last.Limits)

	assert.Equal(t, []int{8}, res.SignalPoints())
	assert.Equal(t, []Message{
		{Kind: BaselineEstablished, Index: 7},
		{Kind: Rule1Triggered, Index: 8},
	}, res.Messages)
}

func TestCompute_CarryForward(t *testing.T) {
	res, err := Compute([]float64{10, 12, 11, 13, 12, 11, 14, 12, 12, 11})
	require.NoError(t, err)

	for i := 8; i < len(res.Rows); i++ {
		assert.Equal(t, res.Rows[i-1].Limits, res.Rows[i].Limits, "row %d", i)
		assert.Equal(t, RuleBaseline, res.Rows[i].RuleApplied)
		assert.False(t, res.Rows[i].Signal)
	}
	assert.Len(t, res.Messages, 1)
}

func TestCompute_Rule3Trend(t *testing.T) {
	res, err := Compute(series(alternating, []float64{13, 13, 13}))
	require.NoError(t, err)

	want := Limits{
		CenterAverage:   12,
		RangeAverage:    1.5,
		LowerLimit:      8.01,
		UpperLimit:      15.99,
		LowerMidline:    10.01,
		UpperMidline:    13.99,
		RangeUpperLimit: 4.9,
	}
	for i := 8; i <= 10; i++ {
		requireLimits(t, want, res.Rows[i].Limits)
		assert.Equal(t, Rule3, res.Rows[i].RuleApplied, "row %d", i)
	}
	// the window reaches row 7 but baseline rows are not rewritten
	assert.Equal(t, RuleBaseline, res.Rows[7].RuleApplied)
	assert.Equal(t, 10.0, res.Rows[7].CenterAverage)

	assert.Equal(t, []Message{
		{Kind: BaselineEstablished, Index: 7},
		{Kind: Rule3Triggered, Index: 10},
	}, res.Messages)
}

func TestCompute_Rule2TakesPrecedenceOverRule3(t *testing.T) {
	// At row 15 the last 8 points are all above DPA and 3 of the last 4 are above DUA.
	res, err := Compute(series(alternating, []float64{11, 11, 11, 11, 11, 13, 13, 13}))
	require.NoError(t, err)

	want := Limits{
		CenterAverage:   11.75,
		RangeAverage:    0.5,
		LowerLimit:      10.42,
		UpperLimit:      13.08,
		LowerMidline:    11.09,
		UpperMidline:    12.41,
		RangeUpperLimit: 1.63,
	}
	for i := 8; i <= 15; i++ {
		assert.Equal(t, Rule2, res.Rows[i].RuleApplied, "row %d", i)
		requireLimits(t, want, res.Rows[i].Limits)
		assert.Equal(t, res.Rows[15].Limits, res.Rows[i].Limits, "row %d", i)
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, RuleBaseline, res.Rows[i].RuleApplied)
	}

	assert.Empty(t, res.MessagesOf(Rule3Triggered))
	assert.Equal(t, []Message{{Kind: Rule2Triggered, Index: 15}}, res.MessagesOf(Rule2Triggered))
	assert.Equal(t, map[MessageKind]int{BaselineEstablished: 1, Rule2Triggered: 1}, res.Counts())
}

func TestCompute_Rule2BelowCenter(t *testing.T) {
	res, err := Compute(series(alternating, []float64{9, 9, 9, 9, 9, 9, 9}))
	require.NoError(t, err)

	// row 14 is the first whose 8-point window (rows 7..14) holds only 9s
	assert.Equal(t, []Message{
		{Kind: BaselineEstablished, Index: 7},
		{Kind: Rule2Triggered, Index: 14},
	}, res.Messages)
	assert.Equal(t, 9.0, res.Rows[14].CenterAverage)
	assert.Equal(t, 0.25, res.Rows[14].RangeAverage)
	for i := 8; i <= 14; i++ {
		assert.Equal(t, Rule2, res.Rows[i].RuleApplied, "row %d", i)
	}
}

func TestCompute_Rule1IsIndependentOfRecalculation(t *testing.T) {
	t.Run("with rule 3", func(t *testing.T) {
		res, err := Compute(series(alternating, []float64{13, 13, 30}))
		require.NoError(t, err)
		row := res.Rows[10]
		assert.True(t, row.Signal)
		assert.Equal(t, Rule3, row.RuleApplied)
		assert.Equal(t, []Message{
			{Kind: BaselineEstablished, Index: 7},
			{Kind: Rule1Triggered, Index: 10},
			{Kind: Rule3Triggered, Index: 10},
		}, res.Messages)
	})

	t.Run("with rule 2", func(t *testing.T) {
		res, err := Compute(series(alternating, []float64{11, 11, 11, 11, 11, 11, 11, 30}))
		require.NoError(t, err)
		row := res.Rows[15]
		assert.True(t, row.Signal)
		assert.Equal(t, Rule2, row.RuleApplied)
		assert.Equal(t, []int{15}, res.SignalPoints())
	})

	t.Run("outside limits but small range", func(t *testing.T) {
		// 16 is above UCL 14.81 but its range of 5 is below MRUCL 5.60
		res, err := Compute(series([]float64{11, 9, 11, 9, 11, 9, 11, 11}, []float64{16}))
		require.NoError(t, err)
		assert.Empty(t, res.SignalPoints())
	})
}

func TestCompute_BaselineIsStableForRandomSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 50; n++ {
		values := make([]float64, 8+rng.Intn(60))
		for i := range values {
			values[i] = math.Round(rng.NormFloat64()*500+1000) / 100
		}

		res, err := Compute(values)
		require.NoError(t, err)
		require.Len(t, res.Rows, len(values))

		for i, row := range res.Rows {
			assert.Equal(t, i, row.Index)
			assert.Equal(t, values[i], row.DataPoint)
			assert.Contains(t, []Rule{RuleBaseline, Rule2, Rule3}, row.RuleApplied)
			if i < BaselineSize {
				assert.Equal(t, RuleBaseline, row.RuleApplied)
				assert.Equal(t, res.Rows[0].Limits, row.Limits)
			}
		}
		assert.Equal(t, BaselineEstablished, res.Messages[0].Kind)
	}
}

func TestCompute_DoesNotShareState(t *testing.T) {
	values := series(alternating, []float64{13, 13, 13})
	input := append([]float64(nil), values...)

	first, err := Compute(values)
	require.NoError(t, err)
	first.Rows[9].CenterAverage = -1

	second, err := Compute(values)
	require.NoError(t, err)
	assert.Equal(t, 12.0, second.Rows[9].CenterAverage)
	assert.Equal(t, input, values)
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{11.875, 11.88},
		{0.125, 0.13},
		{-0.125, -0.13},
		{1.005, 1},
		{2.675, 2.67},
		{12.0 / 7.0, 1.71},
		{0, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, round2(c.in), "round2(%v)", c.in)
	}
	assert.True(t, math.IsNaN(round2(math.NaN())))
}
