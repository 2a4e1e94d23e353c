package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

const validConfigYAML = `
input:
  path: "raw/aarc.csv"
  null_values: ["", "NA"]
normalization:
  id_base: 1
  strict_integrity: true
output:
  folder: "./normalized"
  sqlite_path: ""
  busy_timeout_ms: 250
sample:
  departments: 3
  seed: 7
  hidden_columns: ["PersonName", "Gender"]
logging:
  level: "debug"
  preview_rows: 2
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Input.Path != "raw/aarc.csv" {
		t.Errorf("Input.Path = %q, want raw/aarc.csv", cfg.Input.Path)
	}

	if len(cfg.Input.NullValues) != 2 {
		t.Errorf("Expected 2 null values, got %d", len(cfg.Input.NullValues))
	}

	if cfg.Normalization.IDBase != 1 || !cfg.Normalization.StrictIntegrity {
		t.Errorf("Normalization = %+v, want id_base 1 and strict", cfg.Normalization)
	}

	if cfg.Output.BusyTimeout() != 250*time.Millisecond {
		t.Errorf("BusyTimeout = %v, want 250ms", cfg.Output.BusyTimeout())
	}

	if cfg.Sample.Seed != 7 || cfg.Sample.Departments != 3 {
		t.Errorf("Sample = %+v", cfg.Sample)
	}

	// Unset keys keep their defaults.
	if cfg.Sample.Mask != "<hidden>" {
		t.Errorf("Sample.Mask = %q, want default <hidden>", cfg.Sample.Mask)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	configPath := createTempConfigFile(t, "logging:\n  level: verbose\n")

	_, err := LoadConfig(configPath)
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("LoadConfig error = %v, want ErrInvalidLogLevel", err)
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default config failed validation: %v", err)
	}
}

func TestLoadConfig_Example(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "aarcnorm.yaml"))
	if err != nil {
		t.Fatalf("example config failed to load: %v", err)
	}

	if !cfg.Input.UnicodeNFC || !cfg.Normalization.StrictIntegrity {
		t.Errorf("example config flags not applied: %+v", cfg.Input)
	}

	if cfg.Sample.Departments != 40 || cfg.Sample.HiddenColumns[0] != "PersonName" {
		t.Errorf("sample config = %+v", cfg.Sample)
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "Missing input path",
			mutate:  func(c *Config) { c.Input.Path = "" },
			wantErr: ErrMissingInputPath,
		},
		{
			name:    "No null values",
			mutate:  func(c *Config) { c.Input.NullValues = nil },
			wantErr: ErrNoNullValues,
		},
		{
			name:    "Invalid id base",
			mutate:  func(c *Config) { c.Normalization.IDBase = 5 },
			wantErr: ErrInvalidIDBase,
		},
		{
			name: "No output target",
			mutate: func(c *Config) {
				c.Output.Folder = ""
				c.Output.SQLitePath = ""
			},
			wantErr: ErrNoOutputTarget,
		},
		{
			name:    "Negative busy timeout",
			mutate:  func(c *Config) { c.Output.BusyTimeoutMs = -1 },
			wantErr: ErrInvalidBusyTimeout,
		},
		{
			name:    "Zero sample size",
			mutate:  func(c *Config) { c.Sample.Departments = 0 },
			wantErr: ErrInvalidSampleSize,
		},
		{
			name:    "Missing mask",
			mutate:  func(c *Config) { c.Sample.Mask = "" },
			wantErr: ErrMissingSampleMask,
		},
		{
			name:    "Duplicate hidden column",
			mutate:  func(c *Config) { c.Sample.HiddenColumns = []string{"PersonName", "PersonName"} },
			wantErr: ErrDuplicateHiddenField,
		},
		{
			name:    "Invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "Negative preview rows",
			mutate:  func(c *Config) { c.Logging.PreviewRows = -3 },
			wantErr: ErrInvalidPreviewLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	cfg := Default()
	cfg.Normalization.CheckConsistency = true
	cfg.Sample.Seed = 42

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !loaded.Normalization.CheckConsistency || loaded.Sample.Seed != 42 {
		t.Errorf("Round-tripped config lost values: %+v", loaded)
	}
}

func TestConfig_String(t *testing.T) {
	s := Default().String()
	if s == "" {
		t.Error("String returned empty value")
	}
}
