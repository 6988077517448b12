package calculator

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/lo"

	"github.com/user/pbc_analyzer_go/internal/analysis"
	"github.com/user/pbc_analyzer_go/internal/config"
	"github.com/user/pbc_analyzer_go/internal/period"
	"github.com/user/pbc_analyzer_go/internal/report"
)

// TableRow is a display-ready row, formatted like the CSV export.
type TableRow struct {
	Index           int    `json:"index"`
	Label           string `json:"label"`
	DataPoint       string `json:"dataPoint"`
	MovingRange     string `json:"movingRange"`
	CenterAverage   string `json:"dpa"`
	RangeAverage    string `json:"mra"`
	LowerLimit      string `json:"lcl"`
	LowerMidline    string `json:"dla"`
	UpperMidline    string `json:"dua"`
	UpperLimit      string `json:"ucl"`
	RangeUpperLimit string `json:"mrucl"`
	RuleApplied     string `json:"ruleApplied"`
	Signal          bool   `json:"signal"`
}

// Table returns the rows formatted for display.
func (o *Outcome) Table() []TableRow {
	return lo.Map(o.Result.Rows, func(row analysis.ControlRow, i int) TableRow {
		return TableRow{
			Index:           row.Index,
			Label:           o.Periods[i].Label,
			DataPoint:       report.FormatDataPoint(row.DataPoint),
			MovingRange:     report.FormatMovingRange(row),
			CenterAverage:   report.FormatLimit(row.CenterAverage),
			RangeAverage:    report.FormatLimit(row.RangeAverage),
			LowerLimit:      report.FormatLimit(row.LowerLimit),
			LowerMidline:    report.FormatLimit(row.LowerMidline),
			UpperMidline:    report.FormatLimit(row.UpperMidline),
			UpperLimit:      report.FormatLimit(row.UpperLimit),
			RangeUpperLimit: report.FormatLimit(row.RangeUpperLimit),
			RuleApplied:     row.RuleApplied.Label(),
			Signal:          row.Signal,
		}
	})
}

// ExportCSV writes the CSV export to w.
func (o *Outcome) ExportCSV(w io.Writer) error {
	return report.WriteCSV(w, o.Result.Rows, o.Periods, o.Translator, o.Unit)
}

func (o *Outcome) chartInput() report.ChartInput {
	return report.ChartInput{
		Rows:       o.Result.Rows,
		Labels:     period.Labels(o.Periods),
		Thresholds: o.Thresholds,
		Translator: o.Translator,
	}
}

// ControlChart renders the individuals chart as PNG.
func (o *Outcome) ControlChart() ([]byte, error) {
	return report.CreateControlChart(o.chartInput())
}

// RangeChart renders the moving range chart as PNG.
func (o *Outcome) RangeChart() ([]byte, error) {
	return report.CreateRangeChart(o.chartInput())
}

// Charts renders both charts. It fails if either one does.
func (o *Outcome) Charts() (control, ranges []byte, err error) {
	if control, err = o.ControlChart(); err != nil {
		return nil, nil, fmt.Errorf("control chart: %w", err)
	}
	if ranges, err = o.RangeChart(); err != nil {
		return nil, nil, fmt.Errorf("range chart: %w", err)
	}
	return control, ranges, nil
}

// WriteReport renders both charts and writes the PDF report to path. A chart
// that fails to render is left out of the report.
func (o *Outcome) WriteReport(path string) error {
	control, err := o.ControlChart()
	if err != nil {
		slog.Error("control chart", "run_id", o.RunID, "err", err)
	}
	ranges, err := o.RangeChart()
	if err != nil {
		slog.Error("range chart", "run_id", o.RunID, "err", err)
	}
	return report.BuildPDFReport(path, report.ReportInput{
		RunID:        o.RunID,
		GeneratedAt:  o.CreatedAt,
		Unit:         o.Unit,
		Rows:         o.Result.Rows,
		Periods:      o.Periods,
		Messages:     o.Messages,
		Thresholds:   o.Thresholds,
		Translator:   o.Translator,
		ControlChart: control,
		RangeChart:   ranges,
	})
}

// WriteOutputs writes every file named in out and returns the paths written.
func (o *Outcome) WriteOutputs(out config.OutputConfig) ([]string, error) {
	var written []string

	if out.CSV != "" {
		f, err := os.Create(out.CSV)
		if err != nil {
			return written, fmt.Errorf("create csv: %w", err)
		}
		err = o.ExportCSV(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, err
		}
		written = append(written, out.CSV)
	}

	charts := []struct {
		path   string
		render func() ([]byte, error)
	}{
		{out.Chart, o.ControlChart},
		{out.RangeChart, o.RangeChart},
	}
	for _, c := range charts {
		if c.path == "" {
			continue
		}
		img, err := c.render()
		if err != nil {
			return written, fmt.Errorf("render %s: %w", c.path, err)
		}
		if err := os.WriteFile(c.path, img, 0o644); err != nil {
			return written, fmt.Errorf("write chart: %w", err)
		}
		written = append(written, c.path)
	}

	if out.PDF != "" {
		if err := o.WriteReport(out.PDF); err != nil {
			return written, fmt.Errorf("write report: %w", err)
		}
		written = append(written, out.PDF)
	}
	return written, nil
}
