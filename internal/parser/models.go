package parser

import "github.com/samber/lo"

// Observation is one accepted numeric input, indexed by its position among
// the accepted values.
type Observation struct {
	Index int
	Value float64
}

// ParsedSeries holds the accepted observations and any entries that were dropped.
type ParsedSeries struct {
	Observations []Observation
	Skipped      []string // raw entries that were not finite numbers
	ParseErrors  []string // To collect any non-fatal errors during parsing
}

// NewParsedSeries initializes an empty ParsedSeries.
func NewParsedSeries() *ParsedSeries {
	return &ParsedSeries{
		Observations: make([]Observation, 0),
		Skipped:      make([]string, 0),
		ParseErrors:  make([]string, 0),
	}
}

// Values returns the observation values in order.
func (s *ParsedSeries) Values() []float64 {
	return lo.Map(s.Observations, func(o Observation, _ int) float64 {
		return o.Value
	})
}

// RawThreshold is a threshold as entered by the user, before validation.
type RawThreshold struct {
	Value string
	Label string
}

// Threshold is a horizontal reference line drawn on the chart.
type Threshold struct {
	Value float64
	Label string
}
