// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Detail modes select how detail pages are retrieved.
const (
	DetailModeBrowser = "browser"
	DetailModeHTTP    = "http"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CEREBRO_"

// Config represents the run configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs and outputs
	Targets      string `json:"targets,omitempty" yaml:"targets,omitempty"`             // Catalog path or http(s) URL
	CatalogToken string `json:"catalog_token,omitempty" yaml:"catalog_token,omitempty"` // Bearer token for a remote catalog
	OutDir       string `json:"out_dir,omitempty" yaml:"out_dir,omitempty"`             // File vault directory
	DatabaseURL  string `json:"database_url,omitempty" yaml:"database_url,omitempty"`   // PostgreSQL vault; overrides OutDir

	// Retrieval
	UserAgent      string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	AcceptLanguage string `json:"accept_language,omitempty" yaml:"accept_language,omitempty"`
	DetailMode     string `json:"detail_mode,omitempty" yaml:"detail_mode,omitempty"` // browser or http
	Headless       *bool  `json:"headless,omitempty" yaml:"headless,omitempty"`

	// Timing
	NavigateTimeout Duration `json:"navigate_timeout,omitempty" yaml:"navigate_timeout,omitempty"`
	SelectorTimeout Duration `json:"selector_timeout,omitempty" yaml:"selector_timeout,omitempty"`
	DetailTimeout   Duration `json:"detail_timeout,omitempty" yaml:"detail_timeout,omitempty"`
	DetailDelay     Duration `json:"detail_delay,omitempty" yaml:"detail_delay,omitempty"`
	SourceDelay     Duration `json:"source_delay,omitempty" yaml:"source_delay,omitempty"`

	// Behavior
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Verbose  bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print the run summary box
}

// Default returns the built-in configuration.
func Default() Config {
	headless := true
	return Config{
		Targets:         "targets.json",
		OutDir:          "vault",
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		AcceptLanguage:  "es-CL,es;q=0.9,en;q=0.8",
		DetailMode:      DetailModeBrowser,
		Headless:        &headless,
		NavigateTimeout: Duration(30 * time.Second),
		SelectorTimeout: Duration(15 * time.Second),
		DetailTimeout:   Duration(30 * time.Second),
		DetailDelay:     Duration(1 * time.Second),
		SourceDelay:     Duration(1 * time.Second),
		LogLevel:        "info",
	}
}

// LoadConfig loads configuration from a JSON or YAML file; the format follows
// the extension (.yaml/.yml, anything else is JSON).
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from CEREBRO_* variables. DATABASE_URL is honored
// when CEREBRO_DATABASE_URL is unset.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	strs := map[string]*string{
		"TARGETS":         &c.Targets,
		"CATALOG_TOKEN":   &c.CatalogToken,
		"OUT_DIR":         &c.OutDir,
		"DATABASE_URL":    &c.DatabaseURL,
		"USER_AGENT":      &c.UserAgent,
		"ACCEPT_LANGUAGE": &c.AcceptLanguage,
		"DETAIL_MODE":     &c.DetailMode,
		"LOG_LEVEL":       &c.LogLevel,
	}
	for name, field := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*field = v
		}
	}
	if _, ok := lookup(EnvPrefix + "DATABASE_URL"); !ok {
		if v, ok := lookup("DATABASE_URL"); ok && v != "" {
			c.DatabaseURL = v
		}
	}

	durations := map[string]*Duration{
		"NAVIGATE_TIMEOUT": &c.NavigateTimeout,
		"SELECTOR_TIMEOUT": &c.SelectorTimeout,
		"DETAIL_TIMEOUT":   &c.DetailTimeout,
		"DETAIL_DELAY":     &c.DetailDelay,
		"SOURCE_DELAY":     &c.SourceDelay,
	}
	for name, field := range durations {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		if err := field.parse(v); err != nil {
			return fmt.Errorf("config error: %s%s: %w", EnvPrefix, name, err)
		}
	}

	if v, ok := lookup(EnvPrefix + "HEADLESS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: %sHEADLESS: %w", EnvPrefix, err)
		}
		c.Headless = &b
	}
	if v, ok := lookup(EnvPrefix + "VERBOSE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: %sVERBOSE: %w", EnvPrefix, err)
		}
		c.Verbose = b
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	switch c.DetailMode {
	case "", DetailModeBrowser, DetailModeHTTP:
	default:
		return fmt.Errorf("config error: 'detail_mode' must be %q or %q, got %q", DetailModeBrowser, DetailModeHTTP, c.DetailMode)
	}

	durations := []struct {
		name string
		d    Duration
	}{
		{"navigate_timeout", c.NavigateTimeout},
		{"selector_timeout", c.SelectorTimeout},
		{"detail_timeout", c.DetailTimeout},
		{"detail_delay", c.DetailDelay},
		{"source_delay", c.SourceDelay},
	}
	for _, field := range durations {
		if field.d < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", field.name)
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
	}

	return nil
}

// IsHeadless reports whether the browser runs without a window. Unset means headless.
func (c *Config) IsHeadless() bool {
	return c.Headless == nil || *c.Headless
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Targets == "" {
		result.Targets = defaults.Targets
	}
	if result.CatalogToken == "" {
		result.CatalogToken = defaults.CatalogToken
	}
	if result.OutDir == "" {
		result.OutDir = defaults.OutDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.AcceptLanguage == "" {
		result.AcceptLanguage = defaults.AcceptLanguage
	}
	if result.DetailMode == "" {
		result.DetailMode = defaults.DetailMode
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.Headless == nil {
		result.Headless = defaults.Headless
	}

	// Duration fields: use default if zero
	if result.NavigateTimeout == 0 {
		result.NavigateTimeout = defaults.NavigateTimeout
	}
	if result.SelectorTimeout == 0 {
		result.SelectorTimeout = defaults.SelectorTimeout
	}
	if result.DetailTimeout == 0 {
		result.DetailTimeout = defaults.DetailTimeout
	}
	if result.DetailDelay == 0 {
		result.DetailDelay = defaults.DetailDelay
	}
	if result.SourceDelay == 0 {
		result.SourceDelay = defaults.SourceDelay
	}

	// Verbose cannot distinguish unset from false, so it is not merged
	// (CLI flags should always win for bools)

	return result
}
