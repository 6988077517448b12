// Package calculator runs the full analysis pipeline: parse input, compute the
// chart, label periods and write exports.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/user/pbc_analyzer_go/internal/analysis"
	"github.com/user/pbc_analyzer_go/internal/config"
	"github.com/user/pbc_analyzer_go/internal/i18n"
	"github.com/user/pbc_analyzer_go/internal/parser"
	"github.com/user/pbc_analyzer_go/internal/period"
)

// Request is one calculation as submitted by a front end.
type Request struct {
	// Text is pasted data. When empty, Raw is used instead.
	Text string
	// Raw holds individually entered values.
	Raw []string

	StartYear   int
	StartPeriod int
	Unit        period.Unit
	Lang        i18n.Lang
	Thresholds  []parser.RawThreshold
}

// RequestFromConfig builds a request for the data in text using cfg's settings.
func RequestFromConfig(cfg *config.Config, text string) Request {
	return Request{
		Text:        text,
		StartYear:   cfg.StartYear,
		StartPeriod: cfg.StartPeriod,
		Unit:        cfg.Unit(),
		Lang:        cfg.Lang(),
		Thresholds:  cfg.RawThresholds(),
	}
}

// Outcome is a finished calculation.
type Outcome struct {
	RunID        string
	CreatedAt    time.Time
	Unit         period.Unit
	Translator   i18n.Translator
	Series       *parser.ParsedSeries
	Result       *analysis.Result
	Periods      []period.TimePeriod
	Thresholds   []parser.Threshold
	Messages     []string
	SignalPoints []int
}

// Calculator runs requests. It holds no per-run state.
type Calculator struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// New returns a Calculator logging to logger, or to slog.Default when nil.
func New(logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Run parses and analyzes req. A series shorter than the baseline returns an
// error matching analysis.ErrInsufficientData and no outcome.
func (c *Calculator) Run(ctx context.Context, req Request) (*Outcome, error) {
	var series *parser.ParsedSeries
	if req.Text != "" {
		series = parser.ParseText(req.Text)
	} else {
		series = parser.ParseObservations(req.Raw)
	}
	for _, e := range series.ParseErrors {
		c.logger.WarnContext(ctx, e)
	}

	runID := c.newID()
	result, err := analysis.Compute(series.Values())
	if err != nil {
		c.logError(ctx, err, slog.String("run_id", runID))
		return nil, fmt.Errorf("calculate: %w", err)
	}

	unit := req.Unit
	if unit == "" {
		unit = period.Month
	}
	tr := i18n.New(req.Lang)
	out := &Outcome{
		RunID:        runID,
		CreatedAt:    c.now(),
		Unit:         unit,
		Translator:   tr,
		Series:       series,
		Result:       result,
		Periods:      period.Generate(req.StartYear, req.StartPeriod, unit, len(result.Rows)),
		Thresholds:   parser.ParseThresholds(req.Thresholds, tr.ThresholdLabel),
		Messages:     tr.Messages(result.Messages),
		SignalPoints: result.SignalPoints(),
	}

	counts := result.Counts()
	c.logger.InfoContext(ctx, "calculation complete",
		slog.String("run_id", runID),
		slog.Int("points", len(result.Rows)),
		slog.Int("skipped", len(series.Skipped)),
		slog.Int("signals", counts[analysis.Rule1Triggered]),
		slog.Int("rule2", counts[analysis.Rule2Triggered]),
		slog.Int("rule3", counts[analysis.Rule3Triggered]),
	)
	return out, nil
}

type attrser interface {
	Attrs() []slog.Attr
}

func (c *Calculator) logError(ctx context.Context, err error, attrs ...slog.Attr) {
	var a attrser
	if errors.As(err, &a) {
		attrs = append(attrs, a.Attrs()...)
	}
	c.logger.LogAttrs(ctx, slog.LevelError, err.Error(), attrs...)
}

// UserMessage turns a Run error into text for the user in lang.
func UserMessage(err error, lang i18n.Lang) string {
	if errors.Is(err, analysis.ErrInsufficientData) {
		return i18n.New(lang).InsufficientData()
	}
	return err.Error()
}
