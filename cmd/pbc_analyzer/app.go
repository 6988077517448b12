package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/user/pbc_analyzer_go/internal/calculator"
	"github.com/user/pbc_analyzer_go/internal/i18n"
	"github.com/user/pbc_analyzer_go/internal/parser"
	"github.com/user/pbc_analyzer_go/internal/period"
)

// App is bound to the frontend. It keeps the last successful calculation so
// exports always match what is on screen.
type App struct {
	ctx  context.Context
	calc *calculator.Calculator

	mu   sync.Mutex
	last *calculator.Outcome
}

// NewApp creates the bound application struct.
func NewApp(calc *calculator.Calculator) *App {
	return &App{calc: calc}
}

// Startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	runtime.WindowSetTitle(a.ctx, i18n.New(i18n.Spanish).Text(i18n.Title))
}

// CalculateRequest mirrors the form fields.
type CalculateRequest struct {
	Data        string               `json:"data"`
	Values      []string             `json:"values"`
	TimeUnit    string               `json:"timeUnit"`
	StartYear   int                  `json:"startYear"`
	StartPeriod int                  `json:"startPeriod"`
	Language    string               `json:"language"`
	Thresholds  []ThresholdFormEntry `json:"thresholds"`
}

// ThresholdFormEntry is one threshold row of the form.
type ThresholdFormEntry struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CalculateResponse is what the frontend renders after a calculation.
type CalculateResponse struct {
	RunID        string                `json:"runId"`
	Messages     []string              `json:"messages"`
	SignalPoints []int                 `json:"signalPoints"`
	Warnings     []string              `json:"warnings"`
	Rows         []calculator.TableRow `json:"rows"`
	ControlChart string                `json:"controlChart"` // data URI
	RangeChart   string                `json:"rangeChart"`   // data URI
}

// Texts returns the UI strings for the language tag, so the frontend can
// switch language without a round trip per label.
func (a *App) Texts(language string) map[string]string {
	tr := i18n.New(i18n.Match(language))
	keys := []i18n.Key{
		i18n.Title, i18n.TimeUnit, i18n.Months, i18n.Weeks, i18n.StartYear,
		i18n.DataPoints, i18n.Results, i18n.Thresholds, i18n.XChartTitle,
		i18n.RangeChartTitle, i18n.DataPoint, i18n.MovingRange, i18n.RuleApplied,
		i18n.Signal, i18n.SignalPointsLabel,
	}
	out := make(map[string]string, len(keys)+1)
	for _, k := range keys {
		out[string(k)] = tr.Text(k)
	}
	out["lang"] = string(tr.Lang())
	return out
}

// Calculate runs the analysis and returns the table, messages and charts.
func (a *App) Calculate(req CalculateRequest) (*CalculateResponse, error) {
	unit, err := period.ParseUnit(req.TimeUnit)
	if err != nil {
		return nil, err
	}
	lang := i18n.Match(req.Language)
	thresholds := make([]parser.RawThreshold, len(req.Thresholds))
	for i, th := range req.Thresholds {
		thresholds[i] = parser.RawThreshold{Value: th.Value, Label: th.Label}
	}

	out, err := a.calc.Run(a.context(), calculator.Request{
		Text:        req.Data,
		Raw:         req.Values,
		StartYear:   req.StartYear,
		StartPeriod: req.StartPeriod,
		Unit:        unit,
		Lang:        lang,
		Thresholds:  thresholds,
	})
	if err != nil {
		return nil, errors.New(calculator.UserMessage(err, lang))
	}

	a.mu.Lock()
	a.last = out
	a.mu.Unlock()

	resp := &CalculateResponse{
		RunID:        out.RunID,
		Messages:     out.Messages,
		SignalPoints: out.SignalPoints,
		Warnings:     out.Series.ParseErrors,
		Rows:         out.Table(),
	}
	control, ranges, err := out.Charts()
	if err != nil {
		slog.Error("charts", "run_id", out.RunID, "err", err)
		return resp, nil
	}
	resp.ControlChart = pngDataURI(control)
	resp.RangeChart = pngDataURI(ranges)
	return resp, nil
}

// ExportCSV asks for a destination and writes the last calculation as CSV.
// An empty path means the dialog was cancelled.
func (a *App) ExportCSV() (string, error) {
	out, err := a.lastOutcome()
	if err != nil {
		return "", err
	}
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		DefaultFilename: "process_behavior_chart.csv",
		Filters:         []runtime.FileFilter{{DisplayName: "CSV (*.csv)", Pattern: "*.csv"}},
	})
	if err != nil || path == "" {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	err = out.ExportCSV(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	a.sendStatus(fmt.Sprintf("CSV written: %s", path))
	return path, nil
}

// GenerateReport asks for a destination and writes the PDF report of the last
// calculation in the background. Progress is reported via events.
func (a *App) GenerateReport() (string, error) {
	out, err := a.lastOutcome()
	if err != nil {
		return "", err
	}
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		DefaultFilename: "process_behavior_chart.pdf",
		Filters:         []runtime.FileFilter{{DisplayName: "PDF (*.pdf)", Pattern: "*.pdf"}},
	})
	if err != nil || path == "" {
		return "", err
	}

	a.clearLog()
	go func() { // Run the main logic in a goroutine to avoid blocking the UI
		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("PANIC recovered: %v", r)
				a.sendStatus(errMsg)
				runtime.EventsEmit(a.ctx, "generationComplete", false, errMsg)
			}
		}()

		runtime.EventsEmit(a.ctx, "generationStart")
		a.sendStatus(fmt.Sprintf("Generating PDF: %s...", path))
		if err := out.WriteReport(path); err != nil {
			errMsg := fmt.Sprintf("Error generating PDF report: %v", err)
			a.sendStatus(errMsg)
			runtime.EventsEmit(a.ctx, "generationComplete", false, errMsg)
			return
		}
		successMsg := fmt.Sprintf("PDF report successfully generated: %s", path)
		a.sendStatus(successMsg)
		runtime.EventsEmit(a.ctx, "generationComplete", true, successMsg)
	}()

	return "Report generation started in background.", nil
}

func (a *App) lastOutcome() (*calculator.Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return nil, errors.New("nothing to export, run a calculation first")
	}
	return a.last, nil
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

func (a *App) sendStatus(message string) {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "statusUpdate", message)
	}
	slog.Info(message)
}

func (a *App) clearLog() {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "clearLog")
	}
}

func pngDataURI(img []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
}
