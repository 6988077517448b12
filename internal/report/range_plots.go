package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/pbc_analyzer_go/internal/analysis"
	"github.com/user/pbc_analyzer_go/internal/i18n"
)

// CreateRangeChart draws the moving range chart: each row's moving range
// against its MRA and MRUCL. The first row has no range and is skipped.
func CreateRangeChart(in ChartInput) ([]byte, error) {
	if len(in.Rows) < 2 {
		return nil, fmt.Errorf("need at least two rows for a moving range chart")
	}
	tr := in.Translator

	p := plot.New()
	p.Title.Text = tr.Text(i18n.RangeChartTitle)
	p.X.Label.Text = tr.Text(i18n.Period)
	p.Y.Label.Text = tr.Text(i18n.MovingRange)
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	withRange := in.Rows[1:]

	mra, err := plotter.NewLine(rowXYs(in.Rows, func(r analysis.ControlRow) float64 { return r.RangeAverage }))
	if err != nil {
		return nil, fmt.Errorf("failed to create MRA line: %v", err)
	}
	mra.Color = centerColor
	mra.LineStyle.Width = vg.Points(1.5)
	p.Add(mra)
	p.Legend.Add(tr.Text(i18n.MRA), mra)

	mrucl, err := plotter.NewLine(rowXYs(in.Rows, func(r analysis.ControlRow) float64 { return r.RangeUpperLimit }))
	if err != nil {
		return nil, fmt.Errorf("failed to create MRUCL line: %v", err)
	}
	mrucl.Color = limitColor
	mrucl.LineStyle.Width = vg.Points(1.5)
	p.Add(mrucl)
	p.Legend.Add(tr.Text(i18n.MRUCL), mrucl)

	ranges, points, err := plotter.NewLinePoints(rowXYs(withRange, func(r analysis.ControlRow) float64 { return r.MovingRange }))
	if err != nil {
		return nil, fmt.Errorf("failed to create moving range line: %v", err)
	}
	ranges.Color = dataColor
	ranges.LineStyle.Width = vg.Points(1.5)
	points.GlyphStyle.Color = dataColor
	points.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(ranges, points)
	p.Legend.Add(tr.Text(i18n.MovingRange), ranges, points)

	setPeriodAxis(p, in.Labels, len(in.Rows))
	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(10)

	return renderPNG(p, vg.Points(900), vg.Points(300))
}
