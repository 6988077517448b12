package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/user/pbc_analyzer_go/internal/analysis"
	"github.com/user/pbc_analyzer_go/internal/i18n"
	"github.com/user/pbc_analyzer_go/internal/parser"
)

var (
	dataColor      = color.RGBA{R: 0, G: 102, B: 204, A: 255} // #0066cc
	limitColor     = color.RGBA{R: 255, A: 255}               // #ff0000
	centerColor    = color.RGBA{G: 136, A: 255}               // #008800
	thresholdColor = color.RGBA{R: 255, G: 193, B: 7, A: 255} // #ffc107
	signalFill     = color.NRGBA{R: 255, A: 51}               // translucent red
	zeroColor      = color.Black
)

const maxTickLabels = 24

// ChartInput is what both chart builders draw from.
type ChartInput struct {
	Rows       []analysis.ControlRow
	Labels     []string // one per row
	Thresholds []parser.Threshold
	Translator i18n.Translator
}

// CreateControlChart draws the individuals chart: data points, LCL/UCL, DPA,
// the DLA/DUA midlines, shaded signal columns and threshold lines. It returns
// PNG bytes.
func CreateControlChart(in ChartInput) ([]byte, error) {
	if len(in.Rows) == 0 {
		return nil, fmt.Errorf("no rows to plot")
	}
	tr := in.Translator

	p := plot.New()
	p.Title.Text = tr.Text(i18n.XChartTitle)
	p.X.Label.Text = tr.Text(i18n.Period)
	p.Y.Label.Text = tr.Text(i18n.DataPoint)
	p.Add(plotter.NewGrid())

	yMin, yMax := valueRange(in)
	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = 1
	}
	yMin, yMax = yMin-pad, yMax+pad
	p.Y.Min, p.Y.Max = yMin, yMax

	for _, row := range in.Rows {
		if !row.Signal {
			continue
		}
		x := float64(row.Index)
		col, err := plotter.NewPolygon(plotter.XYs{
			{X: x - 0.5, Y: yMin}, {X: x + 0.5, Y: yMin},
			{X: x + 0.5, Y: yMax}, {X: x - 0.5, Y: yMax},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create signal column: %v", err)
		}
		col.Color = signalFill
		col.LineStyle.Width = 0
		p.Add(col)
	}

	if yMin <= 0 && yMax >= 0 {
		zero, err := plotter.NewLine(plotter.XYs{{X: -0.5, Y: 0}, {X: float64(len(in.Rows)) - 0.5, Y: 0}})
		if err != nil {
			return nil, fmt.Errorf("failed to create zero line: %v", err)
		}
		zero.Color = zeroColor
		zero.LineStyle.Width = vg.Points(1)
		p.Add(zero)
	}

	series := []struct {
		key    i18n.Key
		value  func(analysis.ControlRow) float64
		color  color.Color
		dashed bool
	}{
		{i18n.LCL, func(r analysis.ControlRow) float64 { return r.LowerLimit }, limitColor, false},
		{i18n.UCL, func(r analysis.ControlRow) float64 { return r.UpperLimit }, limitColor, false},
		{i18n.DPA, func(r analysis.ControlRow) float64 { return r.CenterAverage }, centerColor, false},
		{i18n.DLA, func(r analysis.ControlRow) float64 { return r.LowerMidline }, centerColor, true},
		{i18n.DUA, func(r analysis.ControlRow) float64 { return r.UpperMidline }, centerColor, true},
	}
	for _, s := range series {
		line, err := plotter.NewLine(rowXYs(in.Rows, s.value))
		if err != nil {
			return nil, fmt.Errorf("failed to create line for %s: %v", s.key, err)
		}
		line.Color = s.color
		line.LineStyle.Width = vg.Points(1.5)
		if s.dashed {
			line.LineStyle.Width = vg.Points(1)
			line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		}
		p.Add(line)
		p.Legend.Add(tr.Text(s.key), line)
	}

	data, points, err := plotter.NewLinePoints(rowXYs(in.Rows, func(r analysis.ControlRow) float64 { return r.DataPoint }))
	if err != nil {
		return nil, fmt.Errorf("failed to create data line: %v", err)
	}
	data.Color = dataColor
	data.LineStyle.Width = vg.Points(1.5)
	points.GlyphStyle.Color = dataColor
	points.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(data, points)
	p.Legend.Add(tr.Text(i18n.DataPoint), data, points)

	for _, th := range in.Thresholds {
		line, err := plotter.NewLine(plotter.XYs{{X: -0.5, Y: th.Value}, {X: float64(len(in.Rows)) - 0.5, Y: th.Value}})
		if err != nil {
			return nil, fmt.Errorf("failed to create threshold line %q: %v", th.Label, err)
		}
		line.Color = thresholdColor
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(th.Label, line)
	}

	setPeriodAxis(p, in.Labels, len(in.Rows))
	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(10)

	return renderPNG(p, vg.Points(900), vg.Points(450))
}

// valueRange spans the data, the limits and every threshold.
func valueRange(in ChartInput) (float64, float64) {
	low, high := math.Inf(1), math.Inf(-1)
	for _, r := range in.Rows {
		for _, v := range []float64{r.DataPoint, r.LowerLimit, r.UpperLimit} {
			low = math.Min(low, v)
			high = math.Max(high, v)
		}
	}
	for _, th := range in.Thresholds {
		low = math.Min(low, th.Value)
		high = math.Max(high, th.Value)
	}
	return low, high
}

func rowXYs(rows []analysis.ControlRow, value func(analysis.ControlRow) float64) plotter.XYs {
	pts := make(plotter.XYs, len(rows))
	for i, r := range rows {
		pts[i] = plotter.XY{X: float64(r.Index), Y: value(r)}
	}
	return pts
}

// setPeriodAxis labels the x axis with period labels, thinning them out so at
// most maxTickLabels are printed.
func setPeriodAxis(p *plot.Plot, labels []string, n int) {
	p.X.Min = -0.5
	p.X.Max = float64(n) - 0.5
	p.X.Tick.Marker = plot.ConstantTicks(periodTicks(labels, n))
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}

func periodTicks(labels []string, n int) []plot.Tick {
	step := 1
	if n > maxTickLabels {
		step = (n + maxTickLabels - 1) / maxTickLabels
	}
	ticks := make([]plot.Tick, 0, n)
	for i := 0; i < n; i++ {
		label := ""
		if i%step == 0 {
			label = fmt.Sprintf("%d", i+1)
			if i < len(labels) {
				label = labels[i]
			}
		}
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: label})
	}
	return ticks
}

func renderPNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %v", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %v", err)
	}
	return buf.Bytes(), nil
}
