package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/user/pbc_analyzer_go/internal/analysis"
	"github.com/user/pbc_analyzer_go/internal/i18n"
	"github.com/user/pbc_analyzer_go/internal/period"
)

// CSVColumns is the number of fields on every exported line.
const CSVColumns = 15

// WriteCSV writes the rows as a spreadsheet-friendly CSV: a line of column
// letters, the localized header, then one line per row. Every line has
// CSVColumns fields.
func WriteCSV(w io.Writer, rows []analysis.ControlRow, periods []period.TimePeriod, tr i18n.Translator, unit period.Unit) error {
	if len(periods) != len(rows) {
		return fmt.Errorf("csv export: %d periods for %d rows", len(periods), len(rows))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(i18n.ColumnLetters); err != nil {
		return fmt.Errorf("csv export: write letters: %w", err)
	}
	if err := cw.Write(tr.CSVHeader(unit)); err != nil {
		return fmt.Errorf("csv export: write header: %w", err)
	}

	for i, row := range rows {
		p := periods[i]
		record := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(p.Year),
			strconv.Itoa(p.Period),
			FormatDataPoint(row.DataPoint),
			FormatLimit(row.CenterAverage),
			FormatMovingRange(row),
			FormatLimit(row.RangeAverage),
			FormatLimit(row.LowerLimit),
			FormatLimit(row.LowerMidline),
			FormatLimit(row.UpperMidline),
			FormatLimit(row.UpperLimit),
			FormatLimit(row.RangeUpperLimit),
			row.RuleApplied.Label(),
			"",
			FormatSignal(row),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv export: write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv export: flush: %w", err)
	}
	return nil
}
