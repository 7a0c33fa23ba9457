/*
Package config loads the server configuration.

SOURCES (later wins):
  1. DefaultConfig()
  2. YAML file (missing file = defaults)
  3. RECURRENCE_* environment variables
  4. Command-line flags (cmd/server)

EXAMPLE FILE:
  listen: ":8080"
  db_path: "recurrence.db"
  log_level: "info"
  calendar: "us-federal"
  materialize_cron: "0 3 * * *"
  horizon_years: 1
  max_range_days: 3660
  allowed_origins: ["http://localhost:5173"]
  plans:
    - id: support-retainer
      rule: first-of-month
      amount: "1250.00"
      cycle: quarterly
      roll_forward: true

SEE ALSO:
  - factory/plan.go: PlanJSON, the plan entry format
  - cmd/server/main.go: Flag overrides
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"github.com/warp/recurrence-engine/factory"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" env:"RECURRENCE_LISTEN"`

	// DBPath is the SQLite database path; ":memory:" keeps nothing on disk.
	DBPath string `yaml:"db_path" env:"RECURRENCE_DB_PATH"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"RECURRENCE_LOG_LEVEL"`

	// Calendar is the holiday calendar ID served and materialized.
	Calendar string `yaml:"calendar" env:"RECURRENCE_CALENDAR"`

	// MaterializeCron is a standard 5-field cron spec (or @daily etc.).
	MaterializeCron string `yaml:"materialize_cron" env:"RECURRENCE_MATERIALIZE_CRON"`

	// HorizonYears is how many years after the current one are materialized.
	HorizonYears int `yaml:"horizon_years" env:"RECURRENCE_HORIZON_YEARS"`

	// MaxRangeDays caps the span a single API request may iterate.
	MaxRangeDays int `yaml:"max_range_days" env:"RECURRENCE_MAX_RANGE_DAYS"`

	// MaxRangePoints caps how many dates a request's step may produce.
	MaxRangePoints int `yaml:"max_range_points" env:"RECURRENCE_MAX_RANGE_POINTS"`

	AllowedOrigins []string `yaml:"allowed_origins" env:"RECURRENCE_ALLOWED_ORIGINS" envSeparator:","`

	Plans []factory.PlanJSON `yaml:"plans" env:"-"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          ":8080",
		DBPath:          "recurrence.db",
		LogLevel:        "info",
		Calendar:        "us-federal",
		MaterializeCron: "@daily",
		HorizonYears:    1,
		MaxRangeDays:    3660,
		MaxRangePoints:  100_000,
		AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
	}
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.Calendar == "" {
		c.Calendar = d.Calendar
	}
	if c.MaterializeCron == "" {
		c.MaterializeCron = d.MaterializeCron
	}
	if c.HorizonYears < 0 {
		c.HorizonYears = 0
	}
	if c.MaxRangeDays <= 0 {
		c.MaxRangeDays = d.MaxRangeDays
	}
	if c.MaxRangePoints <= 0 {
		c.MaxRangePoints = d.MaxRangePoints
	}
	if c.AllowedOrigins == nil {
		c.AllowedOrigins = d.AllowedOrigins
	}
}

// Validate checks values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.MaterializeCron); err != nil {
		return fmt.Errorf("materialize_cron %q: %w", c.MaterializeCron, err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Plans))
	for _, p := range c.Plans {
		if seen[p.ID] {
			return fmt.Errorf("plans: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Load reads path (if it exists), applies environment overrides, then
// normalizes and validates.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseLevel maps a level name to slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", s, err)
	}
	return level, nil
}
