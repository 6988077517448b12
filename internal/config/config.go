// Package config loads the analyzer settings from YAML or TOML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/user/pbc_analyzer_go/internal/i18n"
	"github.com/user/pbc_analyzer_go/internal/parser"
	"github.com/user/pbc_analyzer_go/internal/period"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultLanguage    = "es"
	DefaultTimeUnit    = "month"
	DefaultStartPeriod = 1
)

// Config holds the settings of one analysis run.
type Config struct {
	// Language is a BCP 47 tag; it is matched against the supported languages.
	Language string `yaml:"language" toml:"language"`

	// TimeUnit is month or week.
	TimeUnit string `yaml:"time_unit" toml:"time_unit"`

	// StartYear and StartPeriod label the first observation. StartPeriod is a
	// month (1-12) or a week (1-52).
	StartYear   int `yaml:"start_year" toml:"start_year"`
	StartPeriod int `yaml:"start_period" toml:"start_period"`

	// Input is the path of the data file, one value per line or comma/tab separated.
	Input string `yaml:"input" toml:"input"`

	// Thresholds are reference lines drawn on the chart.
	Thresholds []ThresholdConfig `yaml:"thresholds" toml:"thresholds"`

	Output OutputConfig `yaml:"output" toml:"output"`
}

// ThresholdConfig is a threshold as written in the file. Value is kept as a
// string so that blank or invalid entries can be skipped like form input.
type ThresholdConfig struct {
	Value string `yaml:"value" toml:"value"`
	Label string `yaml:"label" toml:"label"`
}

// OutputConfig lists the files to write. Empty paths are skipped.
type OutputConfig struct {
	CSV        string `yaml:"csv" toml:"csv"`
	Chart      string `yaml:"chart" toml:"chart"`
	RangeChart string `yaml:"range_chart" toml:"range_chart"`
	PDF        string `yaml:"pdf" toml:"pdf"`
}

// Unit returns the parsed time unit. Load has already validated it.
func (c *Config) Unit() period.Unit {
	u, err := period.ParseUnit(c.TimeUnit)
	if err != nil {
		return period.Month
	}
	return u
}

// Lang returns the matched display language.
func (c *Config) Lang() i18n.Lang {
	return i18n.Match(c.Language)
}

// RawThresholds converts the configured thresholds for parser.ParseThresholds.
func (c *Config) RawThresholds() []parser.RawThreshold {
	out := make([]parser.RawThreshold, len(c.Thresholds))
	for i, th := range c.Thresholds {
		out[i] = parser.RawThreshold{Value: th.Value, Label: th.Label}
	}
	return out
}

// Load reads and parses the config file at path. The format follows the file
// extension: .toml for TOML, anything else for YAML. Missing optional fields
// are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config: parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if cfg.Input != "" && !filepath.IsAbs(cfg.Input) {
		cfg.Input = filepath.Join(filepath.Dir(path), cfg.Input)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a Config pre-populated with default values. The start year
// is the current year.
func Defaults() *Config {
	return &Config{
		Language:    DefaultLanguage,
		TimeUnit:    DefaultTimeUnit,
		StartYear:   time.Now().Year(),
		StartPeriod: DefaultStartPeriod,
	}
}

// Validate checks field values and structural constraints.
func (c *Config) Validate() error {
	unit, err := period.ParseUnit(c.TimeUnit)
	if err != nil {
		return fmt.Errorf("time_unit: %w", err)
	}
	if c.StartPeriod < 1 || c.StartPeriod > unit.MaxStart() {
		return fmt.Errorf("start_period %d out of range 1-%d for %s", c.StartPeriod, unit.MaxStart(), unit)
	}
	if c.StartYear <= 0 {
		return fmt.Errorf("start_year must be positive, got %d", c.StartYear)
	}
	return nil
}
