package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig tests creating a config with defaults
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	if cfg == nil {
		t.Fatal("NewConfig() returned nil")
	}

	if cfg.Project.Root != "." {
		t.Errorf("Expected default project root '.', got %q", cfg.Project.Root)
	}
	if cfg.Project.ConfigPath != "config.yaml" {
		t.Errorf("Expected default config path 'config.yaml', got %q", cfg.Project.ConfigPath)
	}
	if cfg.Output.GeneratedDir != "generated" {
		t.Errorf("Expected default generated dir 'generated', got %q", cfg.Output.GeneratedDir)
	}
	if cfg.Output.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.Output.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level 'info', got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Expected default log format 'console', got %q", cfg.Log.Format)
	}
	if cfg.Metrics.File != "" {
		t.Errorf("Expected metrics file to be disabled, got %q", cfg.Metrics.File)
	}
}

// TestConfigValidation tests configuration validation
func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Project: ProjectConfig{Root: "/srv/indexer", ConfigPath: "config.yaml"},
			Output:  OutputConfig{GeneratedDir: "generated", Timeout: time.Minute},
			Log:     LogConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "nested generated dir",
			mutate:  func(c *Config) { c.Output.GeneratedDir = "build/generated" },
			wantErr: false,
		},
		{
			name:    "absolute generated dir inside root",
			mutate:  func(c *Config) { c.Output.GeneratedDir = "/srv/indexer/out" },
			wantErr: false,
		},
		{
			name:    "missing project root",
			mutate:  func(c *Config) { c.Project.Root = "" },
			wantErr: true,
			errMsg:  "project root is required",
		},
		{
			name:    "missing config path",
			mutate:  func(c *Config) { c.Project.ConfigPath = "" },
			wantErr: true,
			errMsg:  "config path is required",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Output.Timeout = 0 },
			wantErr: true,
			errMsg:  "timeout must be positive",
		},
		{
			name:    "generated dir escapes root",
			mutate:  func(c *Config) { c.Output.GeneratedDir = "../elsewhere" },
			wantErr: true,
			errMsg:  "must be inside the project root",
		},
		{
			name:    "generated dir is the root",
			mutate:  func(c *Config) { c.Output.GeneratedDir = "." },
			wantErr: true,
			errMsg:  "must be inside the project root",
		},
		{
			name:    "absolute generated dir outside root",
			mutate:  func(c *Config) { c.Output.GeneratedDir = "/tmp/generated" },
			wantErr: true,
			errMsg:  "must be inside the project root",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: true,
			errMsg:  "invalid log level",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errMsg:  "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.errMsg)
			}
		})
	}
}

// TestLoadFromFile tests loading configuration from a YAML file
func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "codegen.yaml")

	content := `project:
  root: /srv/indexer
  config: indexer.yaml
output:
  generated: out
  timeout: 10s
log:
  level: debug
  format: json
metrics:
  file: /var/lib/node_exporter/codegen.prom
`
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg := NewConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Project.Root != "/srv/indexer" {
		t.Errorf("Project.Root = %q, want /srv/indexer", cfg.Project.Root)
	}
	if cfg.Project.ConfigPath != "indexer.yaml" {
		t.Errorf("Project.ConfigPath = %q, want indexer.yaml", cfg.Project.ConfigPath)
	}
	if cfg.Output.GeneratedDir != "out" {
		t.Errorf("Output.GeneratedDir = %q, want out", cfg.Output.GeneratedDir)
	}
	if cfg.Output.Timeout != 10*time.Second {
		t.Errorf("Output.Timeout = %v, want 10s", cfg.Output.Timeout)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
	if cfg.Metrics.File != "/var/lib/node_exporter/codegen.prom" {
		t.Errorf("Metrics.File = %q", cfg.Metrics.File)
	}
}

// TestLoadFromFileErrors tests file loading failures
func TestLoadFromFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if err := NewConfig().LoadFromFile(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("LoadFromFile() expected error for missing file")
	}

	unknown := filepath.Join(tmpDir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("workers: 4\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	if err := NewConfig().LoadFromFile(unknown); err == nil {
		t.Error("LoadFromFile() expected error for unknown field")
	}

	empty := filepath.Join(tmpDir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	if err := NewConfig().LoadFromFile(empty); err != nil {
		t.Errorf("LoadFromFile() error = %v for empty file", err)
	}
}

// TestLoadFromEnv tests loading configuration from environment variables
func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CODEGEN_PROJECT_ROOT", "/work/project")
	t.Setenv("CODEGEN_CONFIG", "indexer.yaml")
	t.Setenv("CODEGEN_GENERATED", "gen")
	t.Setenv("CODEGEN_TIMEOUT", "5s")
	t.Setenv("CODEGEN_LOG_LEVEL", "warn")
	t.Setenv("CODEGEN_LOG_FORMAT", "json")
	t.Setenv("CODEGEN_METRICS_FILE", "codegen.prom")

	cfg := NewConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Project.Root != "/work/project" {
		t.Errorf("Project.Root = %q", cfg.Project.Root)
	}
	if cfg.Project.ConfigPath != "indexer.yaml" {
		t.Errorf("Project.ConfigPath = %q", cfg.Project.ConfigPath)
	}
	if cfg.Output.GeneratedDir != "gen" {
		t.Errorf("Output.GeneratedDir = %q", cfg.Output.GeneratedDir)
	}
	if cfg.Output.Timeout != 5*time.Second {
		t.Errorf("Output.Timeout = %v", cfg.Output.Timeout)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Metrics.File != "codegen.prom" {
		t.Errorf("Metrics.File = %q", cfg.Metrics.File)
	}
}

// TestLoadFromEnvInvalidTimeout tests duration parsing errors
func TestLoadFromEnvInvalidTimeout(t *testing.T) {
	t.Setenv("CODEGEN_TIMEOUT", "soon")

	if err := NewConfig().LoadFromEnv(); err == nil {
		t.Error("LoadFromEnv() expected error for invalid timeout")
	}
}

// TestLoad tests the full load ladder with environment overriding the file
func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "codegen.yaml")

	content := `project:
  root: ` + tmpDir + `
log:
  level: debug
`
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv("CODEGEN_LOG_LEVEL", "error")

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
	if got, want := cfg.ConfigFile(), filepath.Join(tmpDir, "config.yaml"); got != want {
		t.Errorf("ConfigFile() = %q, want %q", got, want)
	}

	generated, err := cfg.GeneratedPath()
	if err != nil {
		t.Fatalf("GeneratedPath() error = %v", err)
	}
	if want := filepath.Join(tmpDir, "generated"); generated != want {
		t.Errorf("GeneratedPath() = %q, want %q", generated, want)
	}
}

// TestLoadInvalid tests that Load reports validation failures
func TestLoadInvalid(t *testing.T) {
	t.Setenv("CODEGEN_GENERATED", "../outside")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() expected error")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Load() error = %q", err.Error())
	}
}

// TestConfigFileAbsolute tests that absolute config paths are kept
func TestConfigFileAbsolute(t *testing.T) {
	cfg := NewConfig()
	cfg.Project.Root = "/srv/indexer"
	cfg.Project.ConfigPath = "/etc/indexer/config.yaml"

	if got := cfg.ConfigFile(); got != "/etc/indexer/config.yaml" {
		t.Errorf("ConfigFile() = %q", got)
	}
}

// TestConfigFileOutsideRoot tests that only the generated dir is contained
func TestConfigFileOutsideRoot(t *testing.T) {
	cfg := NewConfig()
	cfg.Project.Root = "/srv/indexer"
	cfg.Project.ConfigPath = "../shared/config.yaml"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got := cfg.ConfigFile(); got != "/srv/shared/config.yaml" {
		t.Errorf("ConfigFile() = %q, want /srv/shared/config.yaml", got)
	}
}
