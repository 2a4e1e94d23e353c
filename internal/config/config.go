// Package config provides configuration management for the normalization tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingInputPath     = errors.New("input.path is required")
	ErrNoNullValues         = errors.New("input.null_values must contain at least one token")
	ErrInvalidIDBase        = errors.New("normalization.id_base must be 0 or 1")
	ErrNoOutputTarget       = errors.New("at least one of output.folder or output.sqlite_path is required")
	ErrInvalidBusyTimeout   = errors.New("output.busy_timeout_ms must be non-negative")
	ErrInvalidSampleSize    = errors.New("sample.departments must be at least 1")
	ErrMissingSampleMask    = errors.New("sample.mask is required when sample.hidden_columns is set")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidPreviewLimit  = errors.New("logging.preview_rows must be non-negative")
	ErrDuplicateHiddenField = errors.New("sample.hidden_columns contains a duplicate")
)

// DefaultNullValues mirrors the tokens a CSV loader treats as missing.
var DefaultNullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<NA>", "None"}

// Config represents the complete tool configuration.
type Config struct {
	Input         InputConfig         `yaml:"input"`
	Normalization NormalizationConfig `yaml:"normalization"`
	Output        OutputConfig        `yaml:"output"`
	Sample        SampleConfig        `yaml:"sample"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// InputConfig describes the raw flat file.
type InputConfig struct {
	Path       string   `yaml:"path"`
	NullValues []string `yaml:"null_values"`
	UnicodeNFC bool     `yaml:"unicode_nfc"`
}

// NormalizationConfig toggles the optional checks of the normalizer.
type NormalizationConfig struct {
	IDBase           int  `yaml:"id_base"`
	StrictIntegrity  bool `yaml:"strict_integrity"`
	CheckConsistency bool `yaml:"check_consistency"`
}

// OutputConfig defines where normalized tables are persisted.
type OutputConfig struct {
	Folder        string `yaml:"folder"`
	SQLitePath    string `yaml:"sqlite_path"`
	BusyTimeoutMs int    `yaml:"busy_timeout_ms"`
}

// SampleConfig drives the department sampler.
type SampleConfig struct {
	Source        string   `yaml:"source"`
	Output        string   `yaml:"output"`
	Mask          string   `yaml:"mask"`
	HiddenColumns []string `yaml:"hidden_columns"`
	Departments   int      `yaml:"departments"`
	Seed          uint64   `yaml:"seed"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Verbose     bool   `yaml:"verbose"`
	PreviewRows int    `yaml:"preview_rows"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:       "data/aarc_sample.csv",
			NullValues: append([]string(nil), DefaultNullValues...),
		},
		Output: OutputConfig{
			Folder:        "data/normalized",
			SQLitePath:    "data/aarc.db",
			BusyTimeoutMs: 5000,
		},
		Sample: SampleConfig{
			Source:        "data/aarc_full.csv",
			Output:        "data/aarc_sample.csv",
			Mask:          "<hidden>",
			HiddenColumns: []string{"PersonName"},
			Departments:   40,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Verbose:     true,
			PreviewRows: 5,
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return ErrMissingInputPath
	}

	if len(c.Input.NullValues) == 0 {
		return ErrNoNullValues
	}

	if c.Normalization.IDBase != 0 && c.Normalization.IDBase != 1 {
		return ErrInvalidIDBase
	}

	if c.Output.Folder == "" && c.Output.SQLitePath == "" {
		return ErrNoOutputTarget
	}

	if c.Output.BusyTimeoutMs < 0 {
		return ErrInvalidBusyTimeout
	}

	if c.Sample.Departments < 1 {
		return ErrInvalidSampleSize
	}

	if len(c.Sample.HiddenColumns) > 0 && c.Sample.Mask == "" {
		return ErrMissingSampleMask
	}

	seen := make(map[string]bool, len(c.Sample.HiddenColumns))
	for _, col := range c.Sample.HiddenColumns {
		if seen[col] {
			return fmt.Errorf("%w: %s", ErrDuplicateHiddenField, col)
		}

		seen[col] = true
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.PreviewRows < 0 {
		return ErrInvalidPreviewLimit
	}

	return nil
}

// BusyTimeout returns the SQLite busy timeout duration.
func (o *OutputConfig) BusyTimeout() time.Duration {
	return time.Duration(o.BusyTimeoutMs) * time.Millisecond
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Input: %s, Folder: %s, SQLite: %s, Strict: %t}",
		c.Input.Path,
		c.Output.Folder,
		c.Output.SQLitePath,
		c.Normalization.StrictIntegrity,
	)
}
