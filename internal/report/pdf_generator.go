package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/pbc_analyzer_go/internal/analysis"
	"github.com/user/pbc_analyzer_go/internal/i18n"
	"github.com/user/pbc_analyzer_go/internal/parser"
	"github.com/user/pbc_analyzer_go/internal/period"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// ReportInput is everything the PDF report shows.
type ReportInput struct {
	RunID        string
	GeneratedAt  time.Time
	Unit         period.Unit
	Rows         []analysis.ControlRow
	Periods      []period.TimePeriod
	Messages     []string // already localized
	Thresholds   []parser.Threshold
	Translator   i18n.Translator
	ControlChart []byte // PNG, optional
	RangeChart   []byte // PNG, optional
}

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	utf8        func(string) string // core fonts are cp1252
	styles      map[string]func()
	lineHeight  float64
	currentY    float64 // To manually track Y position for flowing content
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		utf8:        pdf.UnicodeTranslatorFromDescriptor(""),
		styles:      make(map[string]func()),
		lineHeight:  6,
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 13)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["small"] = func() {
		s.pdf.SetFont("Arial", "", 8)
		s.pdf.SetTextColor(90, 90, 90)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 7)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 7)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellRed"] = func() { // rows flagged by rule 1
		s.pdf.SetFont("Arial", "B", 7)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := s.pdf.SplitLines([]byte(s.utf8(text)), pdfContentWidth)
	s.checkAddPage(float64(len(lines)) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, s.utf8(text), "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width, height float64) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))
	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}
	s.checkAddPage(height)
	s.pdf.Image(imageName, pdfMargin+(pdfContentWidth-width)/2, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height
	s.addSpacer(2)
}

// table writes a bordered table, repeating the header after page breaks.
// highlight marks rows drawn in the red style.
func (s *pdfStyler) table(headers []string, widths []float64, rows [][]string, highlight func(int) bool) {
	writeHeader := func() {
		s.applyStyle("tableHeader")
		x := pdfMargin
		for i, h := range headers {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, s.utf8(h), "1", 0, "C", true, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(2 * s.lineHeight)
	writeHeader()
	for r, row := range rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			writeHeader()
		}
		style := "tableCell"
		if highlight != nil && highlight(r) {
			style = "tableCellRed"
		}
		s.applyStyle(style)
		x := pdfMargin
		for i, cell := range row {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, s.utf8(cell), "1", 0, "C", false, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}
}

// BuildPDFReport creates the PDF report at filepath.
func BuildPDFReport(filepath string, in ReportInput) error {
	if len(in.Periods) != len(in.Rows) {
		return fmt.Errorf("pdf report: %d periods for %d rows", len(in.Periods), len(in.Rows))
	}
	tr := in.Translator

	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(tr.Text(i18n.Title), true)
	pdf.SetSubject(in.RunID, true)
	pdf.SetCreator("pbc_analyzer_go", true)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph(tr.Text(i18n.Title), "h1", "C")
	styler.writeParagraph(fmt.Sprintf("%s: %s   %s: %s", tr.Text(i18n.RunID), in.RunID,
		tr.Text(i18n.GeneratedAt), in.GeneratedAt.Format("2006-01-02 15:04")), "small", "C")
	styler.addSpacer(3)

	styler.writeParagraph(tr.Text(i18n.Results), "h2", "L")
	for _, msg := range in.Messages {
		styler.writeParagraph("- "+msg, "normal", "L")
	}
	signals := make([]string, 0)
	for i, row := range in.Rows {
		if row.Signal {
			signals = append(signals, in.Periods[i].Label)
		}
	}
	if len(signals) > 0 {
		styler.writeParagraph(fmt.Sprintf("%s: %s", tr.Text(i18n.SignalPointsLabel), strings.Join(signals, ", ")), "normal", "L")
	}
	styler.addSpacer(3)

	styler.writeParagraph(tr.Text(i18n.Thresholds), "h2", "L")
	if len(in.Thresholds) == 0 {
		styler.writeParagraph(tr.Text(i18n.NoThresholds), "normal", "L")
	}
	for _, th := range in.Thresholds {
		styler.writeParagraph(fmt.Sprintf("%s: %s", th.Label, FormatDataPoint(th.Value)), "normal", "L")
	}

	chartWidth := pdfContentWidth * 0.9
	charts := []struct {
		name   string
		title  i18n.Key
		png    []byte
		aspect float64
	}{
		{"control_chart", i18n.XChartTitle, in.ControlChart, 450.0 / 900.0},
		{"range_chart", i18n.RangeChartTitle, in.RangeChart, 300.0 / 900.0},
	}
	styler.newPage()
	for _, c := range charts {
		styler.writeParagraph(tr.Text(c.title), "h2", "L")
		if len(c.png) == 0 {
			slog.Warn("pdf report: chart missing", "chart", c.name)
			styler.writeParagraph(tr.Text(i18n.ChartUnavailable), "normal", "L")
			continue
		}
		styler.addImage(c.png, c.name, chartWidth, chartWidth*c.aspect)
	}

	styler.newPage()
	headers := []string{
		"No.", tr.PeriodHeader(in.Unit) + "/" + tr.Text(i18n.StartYear), tr.Text(i18n.DataPoint), "MR", "DPA", "MRA",
		"LCL", "DLA", "DUA", "UCL", "MRUCL", tr.Text(i18n.RuleApplied), tr.Text(i18n.Signal),
	}
	rel := []float64{0.05, 0.13, 0.08, 0.07, 0.07, 0.07, 0.07, 0.07, 0.07, 0.07, 0.08, 0.09, 0.06}
	widths := make([]float64, len(rel))
	for i, r := range rel {
		widths[i] = r * pdfContentWidth
	}
	cells := make([][]string, len(in.Rows))
	for i, row := range in.Rows {
		cells[i] = []string{
			fmt.Sprintf("%d", i+1),
			in.Periods[i].Label,
			FormatDataPoint(row.DataPoint),
			FormatMovingRange(row),
			FormatLimit(row.CenterAverage),
			FormatLimit(row.RangeAverage),
			FormatLimit(row.LowerLimit),
			FormatLimit(row.LowerMidline),
			FormatLimit(row.UpperMidline),
			FormatLimit(row.UpperLimit),
			FormatLimit(row.RangeUpperLimit),
			row.RuleApplied.Label(),
			FormatSignal(row),
		}
	}
	styler.table(headers, widths, cells, func(r int) bool { return in.Rows[r].Signal })

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf report: %w", err)
	}
	return pdf.OutputFileAndClose(filepath)
}
