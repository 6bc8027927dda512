package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/edslo/pkg/analyzer/timing"
	"github.com/panbanda/edslo/pkg/models"
)

var (
	// ErrUnknownMode is returned for an analysis mode outside details/week/overall.
	ErrUnknownMode = errors.New("unknown analysis mode")

	// ErrUnknownFormat is returned for an unsupported output format.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrInvalidTimezone is returned when the configured zone cannot be loaded.
	ErrInvalidTimezone = errors.New("invalid timezone")
)

// Formats lists the supported output formats.
var Formats = []string{"text", "markdown", "json", "toon", "prometheus"}

// Config holds all configuration options for edslo.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis" yaml:"analysis"`

	// SLO thresholds
	SLO SLOConfig `koanf:"slo" toml:"slo" yaml:"slo"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output"`
}

// AnalysisConfig controls how threads are partitioned and timed.
type AnalysisConfig struct {
	Mode                string   `koanf:"mode" toml:"mode" yaml:"mode"`
	Categorize          bool     `koanf:"categorize" toml:"categorize" yaml:"categorize"`
	CountUnconfirmed    bool     `koanf:"count_unconfirmed" toml:"count_unconfirmed" yaml:"count_unconfirmed"`
	SkipWeekends        bool     `koanf:"skip_weekends" toml:"skip_weekends" yaml:"skip_weekends"`
	ExcludeWeekendPosts bool     `koanf:"exclude_weekend_posts" toml:"exclude_weekend_posts" yaml:"exclude_weekend_posts"`
	Timezone            string   `koanf:"timezone" toml:"timezone" yaml:"timezone"`
	Categories          []string `koanf:"categories" toml:"categories" yaml:"categories"`
}

// SLOConfig defines response-time thresholds in hours.
type SLOConfig struct {
	Thresholds []float64 `koanf:"thresholds" toml:"thresholds" yaml:"thresholds"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format" yaml:"format"` // text, markdown, json, toon, prometheus
	Color   bool   `koanf:"color" toml:"color" yaml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose" yaml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Mode:     string(models.ModeOverall),
			Timezone: timing.DefaultTimezone,
		},
		SLO: SLOConfig{
			Thresholds: models.DefaultThresholds(),
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	// Lists replace the defaults rather than merging element-wise.
	if k.Exists("slo.thresholds") {
		cfg.SLO.Thresholds = k.Float64s("slo.thresholds")
	}

	return cfg, nil
}

// configNames are searched in order in each of searchDirs.
var (
	configNames = []string{
		"edslo.toml",
		"edslo.yaml",
		"edslo.yml",
		"edslo.json",
		".edslo.toml",
		".edslo.yaml",
		".edslo.yml",
		".edslo.json",
	}
	searchDirs = []string{".", ".edslo"}
)

// Find returns the first config file found in the standard locations, or "".
func Find() string {
	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads path if given, otherwise the first config file found
// in the standard locations, otherwise the defaults. It returns the path
// that was used, empty for defaults.
func LoadOrDefault(path string) (*Config, string, error) {
	if path == "" {
		path = Find()
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate checks values that cannot be expressed in the file format.
func (c *Config) Validate() error {
	if !models.Mode(c.Analysis.Mode).Valid() {
		return fmt.Errorf("%w: %q (want one of details, week, overall)", ErrUnknownMode, c.Analysis.Mode)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if err := models.ValidateThresholds(c.SLO.Thresholds); err != nil {
		return err
	}
	if !validFormat(c.Output.Format) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, c.Output.Format, strings.Join(Formats, ", "))
	}
	return nil
}

// Location loads the configured timezone. An empty timezone means UTC.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Analysis.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, c.Analysis.Timezone, err)
	}
	return loc, nil
}

func validFormat(format string) bool {
	for _, f := range Formats {
		if strings.EqualFold(f, format) || (format == "md" && f == "markdown") {
			return true
		}
	}
	return false
}
