// Command pbc_cli computes a process behavior chart from a data file and
// writes the CSV, chart images and PDF report named in the config or flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/user/pbc_analyzer_go/internal/calculator"
	"github.com/user/pbc_analyzer_go/internal/config"
	"github.com/user/pbc_analyzer_go/internal/parser"
)

type options struct {
	configPath  string
	input       string
	lang        string
	unit        string
	startYear   int
	startPeriod int
	csv         string
	chart       string
	rangeChart  string
	pdf         string
	watch       bool
	verbose     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML or TOML config file")
	flag.StringVar(&opts.input, "input", "", "data file, overrides the config")
	flag.StringVar(&opts.lang, "lang", "", "output language (es, en)")
	flag.StringVar(&opts.unit, "unit", "", "time unit (month, week)")
	flag.IntVar(&opts.startYear, "start-year", 0, "year of the first observation")
	flag.IntVar(&opts.startPeriod, "start-period", 0, "month or week of the first observation")
	flag.StringVar(&opts.csv, "csv", "", "write the CSV export here")
	flag.StringVar(&opts.chart, "chart", "", "write the control chart PNG here")
	flag.StringVar(&opts.rangeChart, "range-chart", "", "write the moving range chart PNG here")
	flag.StringVar(&opts.pdf, "pdf", "", "write the PDF report here")
	flag.BoolVar(&opts.watch, "watch", false, "recompute whenever the config or data file changes")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, opts); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("pbc_cli failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	calc := calculator.New(logger)

	if !opts.watch {
		return process(ctx, calc, cfg)
	}
	if opts.configPath == "" {
		return errors.New("-watch needs -config")
	}

	if err := process(ctx, calc, cfg); err != nil {
		logger.Error("calculation failed", "err", err)
	}
	return config.Watch(ctx, opts.configPath, func(changed *config.Config) {
		applyFlags(changed, opts)
		if err := changed.Validate(); err != nil {
			logger.Error("invalid config", "err", err)
			return
		}
		if err := process(ctx, calc, changed); err != nil {
			logger.Error("calculation failed", "err", err)
		}
	})
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Defaults()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Input == "" {
		return nil, errors.New("no input file, set -input or input in the config")
	}
	return cfg, nil
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(cfg *config.Config, opts options) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Input, opts.input)
	set(&cfg.Language, opts.lang)
	set(&cfg.TimeUnit, opts.unit)
	set(&cfg.Output.CSV, opts.csv)
	set(&cfg.Output.Chart, opts.chart)
	set(&cfg.Output.RangeChart, opts.rangeChart)
	set(&cfg.Output.PDF, opts.pdf)
	if opts.startYear != 0 {
		cfg.StartYear = opts.startYear
	}
	if opts.startPeriod != 0 {
		cfg.StartPeriod = opts.startPeriod
	}
}

func process(ctx context.Context, calc *calculator.Calculator, cfg *config.Config) error {
	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to read series file: %w", err)
	}
	req := calculator.RequestFromConfig(cfg, string(data))
	if len(parser.SplitBulk(req.Text)) == 0 {
		return fmt.Errorf("%s holds no data", cfg.Input)
	}

	out, err := calc.Run(ctx, req)
	if err != nil {
		return errors.New(calculator.UserMessage(err, req.Lang))
	}
	for _, msg := range out.Messages {
		fmt.Println(msg)
	}

	written, err := out.WriteOutputs(cfg.Output)
	for _, p := range written {
		slog.Info("written", "path", p, "run_id", out.RunID)
	}
	return err
}
