package api

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kitaplan/capacity-engine/capacity"
	"github.com/kitaplan/capacity-engine/generic"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config is the server configuration. It is read from an optional YAML file;
// command-line flags override individual values (see cmd/server).
//
//	port: 8080
//	database: ./data/kita.db
//	autosave: 30s
//	cors_origins:
//	  - http://localhost:5173
//	chart:
//	  day_start: "07:00"
//	  day_end: "17:00"
//	  segment_minutes: 30
type Config struct {
	Port        int           `yaml:"port"`
	Database    string        `yaml:"database"`
	Autosave    time.Duration `yaml:"autosave"`
	CORSOrigins []string      `yaml:"cors_origins"`
	Chart       ChartSettings `yaml:"chart"`
}

// ChartSettings configures the weekly chart grid.
type ChartSettings struct {
	DayStart       string `yaml:"day_start"`
	DayEnd         string `yaml:"day_end"`
	SegmentMinutes int    `yaml:"segment_minutes"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Port:        8080,
		Database:    "kita.db",
		Autosave:    30 * time.Second,
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		Chart: ChartSettings{
			DayStart:       "07:00",
			DayEnd:         "17:00",
			SegmentMinutes: 30,
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys missing from
// the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := cfg.ChartConfig(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ChartConfig converts the chart settings for the ratio engine.
func (c Config) ChartConfig() (capacity.ChartConfig, error) {
	start, ok := generic.ParseClock(c.Chart.DayStart)
	if !ok {
		return capacity.ChartConfig{}, fmt.Errorf("%w: chart.day_start %q", generic.ErrInvalidInput, c.Chart.DayStart)
	}
	end, ok := generic.ParseClock(c.Chart.DayEnd)
	if !ok {
		return capacity.ChartConfig{}, fmt.Errorf("%w: chart.day_end %q", generic.ErrInvalidInput, c.Chart.DayEnd)
	}
	if end <= start {
		return capacity.ChartConfig{}, fmt.Errorf("%w: chart day ends before it starts", generic.ErrInvalidInput)
	}
	if c.Chart.SegmentMinutes <= 0 {
		return capacity.ChartConfig{}, fmt.Errorf("%w: chart.segment_minutes must be positive", generic.ErrInvalidInput)
	}
	return capacity.ChartConfig{DayStart: start, DayEnd: end, SegmentMinutes: c.Chart.SegmentMinutes}, nil
}
