package calculator

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/pbc_analyzer_go/internal/analysis"
	"github.com/user/pbc_analyzer_go/internal/config"
	"github.com/user/pbc_analyzer_go/internal/i18n"
	"github.com/user/pbc_analyzer_go/internal/parser"
	"github.com/user/pbc_analyzer_go/internal/period"
)

func newTestCalculator() *Calculator {
	c := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	c.newID = func() string { return "run-1" }
	return c
}

func signalRequest() Request {
	return Request{
		Text:        "10\n12\n11\n13\n12\n11\n14\n12\n30",
		StartYear:   2023,
		StartPeriod: 11,
		Unit:        period.Month,
		Lang:        i18n.English,
		Thresholds: []parser.RawThreshold{
			{Value: "20"},
			{Value: ""},
			{Value: "5", Label: "Floor"},
		},
	}
}

func TestRun(t *testing.T) {
	out, err := newTestCalculator().Run(context.Background(), signalRequest())
	require.NoError(t, err)

	assert.Equal(t, "run-1", out.RunID)
	assert.Len(t, out.Result.Rows, 9)
	assert.Len(t, out.Periods, 9)
	assert.Equal(t, "2023-11", out.Periods[0].Label)
	assert.Equal(t, "2024-07", out.Periods[8].Label)
	assert.Equal(t, []int{8}, out.SignalPoints)
	assert.Equal(t, []string{
		"Baseline established with first 8 data points",
		"Rule 1 triggered: Data point outside control limits and MR > MRUCL",
	}, out.Messages)
	assert.Equal(t, []parser.Threshold{
		{Value: 20, Label: "Threshold 1"},
		{Value: 5, Label: "Floor"},
	}, out.Thresholds)
}

func TestRun_RawEntriesSkipInvalid(t *testing.T) {
	req := Request{
		Raw:  []string{"1", "", "abc", "2", "3", "4", "5", "6", "7", "8"},
		Lang: i18n.Spanish,
	}
	out, err := newTestCalculator().Run(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, out.Result.Rows, 8)
	assert.Equal(t, period.Month, out.Unit)
	assert.Equal(t, []string{"Línea base establecida con los primeros 8 puntos de datos"}, out.Messages)
}

func TestRun_InsufficientData(t *testing.T) {
	out, err := newTestCalculator().Run(context.Background(), Request{Text: "1,2,3"})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, analysis.ErrInsufficientData))

	assert.Equal(t, "Not enough data. Need at least 8 data points.", UserMessage(err, i18n.English))
	assert.Equal(t, "Datos insuficientes. Se necesitan al menos 8 puntos de datos.", UserMessage(err, i18n.Spanish))
	assert.Equal(t, "boom", UserMessage(errors.New("boom"), i18n.English))
}

func TestRunsAreIndependent(t *testing.T) {
	c := New(nil)
	first, err := c.Run(context.Background(), signalRequest())
	require.NoError(t, err)
	second, err := c.Run(context.Background(), signalRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Result.Rows, second.Result.Rows)
}

func TestTable(t *testing.T) {
	out, err := newTestCalculator().Run(context.Background(), signalRequest())
	require.NoError(t, err)

	table := out.Table()
	require.Len(t, table, 9)
	assert.Equal(t, "-", table[0].MovingRange)
	assert.Equal(t, "11.88", table[0].CenterAverage)
	assert.Equal(t, "Baseline", table[0].RuleApplied)

	last := table[8]
	assert.Equal(t, "2024-07", last.Label)
	assert.Equal(t, "30", last.DataPoint)
	assert.Equal(t, "18.00", last.MovingRange)
	assert.True(t, last.Signal)
}

func TestExportCSV(t *testing.T) {
	out, err := newTestCalculator().Run(context.Background(), signalRequest())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, out.ExportCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2+9)
	assert.Equal(t, "A", records[0][0])
}

func TestCharts(t *testing.T) {
	out, err := newTestCalculator().Run(context.Background(), signalRequest())
	require.NoError(t, err)

	control, ranges, err := out.Charts()
	require.NoError(t, err)
	pngMagic := []byte("\x89PNG")
	assert.True(t, bytes.HasPrefix(control, pngMagic))
	assert.True(t, bytes.HasPrefix(ranges, pngMagic))
}

func TestWriteOutputs(t *testing.T) {
	out, err := newTestCalculator().Run(context.Background(), signalRequest())
	require.NoError(t, err)

	dir := t.TempDir()
	files := config.OutputConfig{
		CSV:        filepath.Join(dir, "out.csv"),
		Chart:      filepath.Join(dir, "chart.png"),
		RangeChart: filepath.Join(dir, "range.png"),
		PDF:        filepath.Join(dir, "report.pdf"),
	}
	written, err := out.WriteOutputs(files)
	require.NoError(t, err)
	assert.Equal(t, []string{files.CSV, files.Chart, files.RangeChart, files.PDF}, written)

	for _, p := range written {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Positive(t, info.Size(), p)
	}

	written, err = out.WriteOutputs(config.OutputConfig{})
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestRequestFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Language = "en-US"
	cfg.TimeUnit = "week"
	cfg.StartYear = 2022
	cfg.StartPeriod = 51
	cfg.Thresholds = []config.ThresholdConfig{{Value: "3.5", Label: "Target"}}

	req := RequestFromConfig(cfg, "1 2")
	assert.Equal(t, "1 2", req.Text)
	assert.Equal(t, i18n.English, req.Lang)
	assert.Equal(t, period.Week, req.Unit)
	assert.Equal(t, 2022, req.StartYear)
	assert.Equal(t, 51, req.StartPeriod)
	assert.Equal(t, []parser.RawThreshold{{Value: "3.5", Label: "Target"}}, req.Thresholds)
}
