// Package config loads remedy run configuration.
package config

import (
	"errors"
	"fmt"

	"remedy/internal/logging"
)

// Color modes for console output.
const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)

// Config is the full run configuration.
type Config struct {
	Log     logging.Config `koanf:"log"`
	Fix     FixConfig      `koanf:"fix"`
	Cache   CacheConfig    `koanf:"cache"`
	Metrics MetricsConfig  `koanf:"metrics"`
	Report  ReportConfig   `koanf:"report"`
}

// FixConfig tunes the remediation loop.
type FixConfig struct {
	// MaxIterations caps selected findings per unit; 0 means unbounded.
	MaxIterations int  `koanf:"max_iterations"`
	Bulk          bool `koanf:"bulk"`
	FailFast      bool `koanf:"fail_fast"`
	// DryRun is accepted but not supported yet.
	DryRun bool `koanf:"dry_run"`
	// Jobs limits concurrent project loading.
	Jobs int `koanf:"jobs"`
}

// CacheConfig controls the converged-unit cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}

// ReportConfig controls run reporting.
type ReportConfig struct {
	// Path receives the JSON report when set.
	Path  string `koanf:"path"`
	Color string `koanf:"color"`
}

// Validate checks ranges and enums.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Fix.MaxIterations < 0 {
		return fmt.Errorf("fix.max_iterations must not be negative, got %d", c.Fix.MaxIterations)
	}
	if c.Fix.Jobs < 0 {
		return fmt.Errorf("fix.jobs must not be negative, got %d", c.Fix.Jobs)
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return errors.New("cache.dir is required when the cache is enabled")
	}
	switch c.Report.Color {
	case ColorAuto, ColorOn, ColorOff:
	default:
		return fmt.Errorf("report.color must be auto, on or off, got %q", c.Report.Color)
	}
	return nil
}
