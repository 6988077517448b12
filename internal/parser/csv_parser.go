package parser

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// bulkSeparators matches the characters a pasted column may be split on.
var bulkSeparators = regexp.MustCompile(`[\n\r,\t]+`)

// SplitBulk splits pasted text into entries: one value per line, or values
// separated by commas or tabs. Blank entries are dropped.
func SplitBulk(text string) []string {
	return lo.FilterMap(bulkSeparators.Split(text, -1), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
}

// parseValue converts one entry to a finite float.
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}

// ParseObservations keeps the entries that are finite numbers. Rejected
// entries are reported in Skipped and ParseErrors; they never fail the parse.
func ParseObservations(raw []string) *ParsedSeries {
	series := NewParsedSeries()
	for pos, entry := range raw {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		v, err := parseValue(entry)
		if err != nil {
			series.Skipped = append(series.Skipped, entry)
			series.ParseErrors = append(series.ParseErrors, fmt.Sprintf("Warning: entry %d (%q) is not a number and was skipped.", pos+1, entry))
			continue
		}
		series.Observations = append(series.Observations, Observation{Index: len(series.Observations), Value: v})
	}
	return series
}

// ParseText splits pasted text and parses the entries.
func ParseText(text string) *ParsedSeries {
	return ParseObservations(SplitBulk(text))
}

// ParseSeriesFile reads a file of values laid out the way a pasted column is
// and parses it.
func ParseSeriesFile(filepath string) (*ParsedSeries, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read series file: %w", err)
	}
	return ParseText(string(data)), nil
}

// ParseThresholds drops thresholds whose value is not a finite number. A blank
// label is replaced by defaultLabel(n), n being the 1-based position among the
// valid thresholds.
func ParseThresholds(raw []RawThreshold, defaultLabel func(n int) string) []Threshold {
	valid := lo.FilterMap(raw, func(r RawThreshold, _ int) (Threshold, bool) {
		v, err := parseValue(r.Value)
		if err != nil {
			return Threshold{}, false
		}
		return Threshold{Value: v, Label: strings.TrimSpace(r.Label)}, true
	})
	for i := range valid {
		if valid[i].Label == "" && defaultLabel != nil {
			valid[i].Label = defaultLabel(i + 1)
		}
	}
	return valid
}
