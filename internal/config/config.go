package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/0xmhha/indexer-codegen/internal/constants"
)

// Config holds all configuration for the code generator. It describes where
// the project lives and how a run behaves; the indexer itself is described by
// the project's config.yaml.
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ProjectConfig locates the indexer project
type ProjectConfig struct {
	// Root is the project directory. Relative paths below resolve against it
	Root string `yaml:"root"`
	// ConfigPath is the indexer config file
	ConfigPath string `yaml:"config"`
}

// OutputConfig controls generated artifacts
type OutputConfig struct {
	// GeneratedDir receives the generated files and must stay inside Root
	GeneratedDir string `yaml:"generated"`
	// Timeout bounds a whole run
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds run metrics configuration
type MetricsConfig struct {
	// File receives the run metrics in Prometheus text format. Empty disables it
	File string `yaml:"file"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults sets default values for any unset configuration
func (c *Config) SetDefaults() {
	if c.Project.Root == "" {
		c.Project.Root = "."
	}
	if c.Project.ConfigPath == "" {
		c.Project.ConfigPath = constants.DefaultConfigFile
	}

	if c.Output.GeneratedDir == "" {
		c.Output.GeneratedDir = constants.DefaultGeneratedDir
	}
	if c.Output.Timeout == 0 {
		c.Output.Timeout = constants.DefaultTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = constants.DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = constants.DefaultLogFormat
	}
}

// LoadFromEnv overrides configuration from CODEGEN_* environment variables
func (c *Config) LoadFromEnv() error {
	if root := os.Getenv(constants.EnvPrefix + "PROJECT_ROOT"); root != "" {
		c.Project.Root = root
	}
	if path := os.Getenv(constants.EnvPrefix + "CONFIG"); path != "" {
		c.Project.ConfigPath = path
	}

	if dir := os.Getenv(constants.EnvPrefix + "GENERATED"); dir != "" {
		c.Output.GeneratedDir = dir
	}
	if timeout := os.Getenv(constants.EnvPrefix + "TIMEOUT"); timeout != "" {
		duration, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT: %w", constants.EnvPrefix, err)
		}
		c.Output.Timeout = duration
	}

	if level := os.Getenv(constants.EnvPrefix + "LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv(constants.EnvPrefix + "LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}

	if file := os.Getenv(constants.EnvPrefix + "METRICS_FILE"); file != "" {
		c.Metrics.File = file
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Project.Root == "" {
		return fmt.Errorf("project root is required")
	}
	if c.Project.ConfigPath == "" {
		return fmt.Errorf("config path is required")
	}
	if c.Output.GeneratedDir == "" {
		return fmt.Errorf("generated directory is required")
	}
	if c.Output.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if _, err := c.GeneratedPath(); err != nil {
		return err
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Log.Level)
	}

	validLogFormats := map[string]bool{
		"json":    true,
		"console": true,
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format %q, must be one of: json, console", c.Log.Format)
	}

	return nil
}

// ConfigFile returns the indexer config path resolved against the project
// root. Unlike the generated directory it may live outside the root.
func (c *Config) ConfigFile() string {
	return c.resolve(c.Project.ConfigPath)
}

// GeneratedPath returns the generated directory resolved against the project
// root. It fails when the directory escapes the root.
func (c *Config) GeneratedPath() (string, error) {
	root, err := filepath.Abs(c.Project.Root)
	if err != nil {
		return "", fmt.Errorf("invalid project root %q: %w", c.Project.Root, err)
	}
	dir, err := filepath.Abs(c.resolve(c.Output.GeneratedDir))
	if err != nil {
		return "", fmt.Errorf("invalid generated directory %q: %w", c.Output.GeneratedDir, err)
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("generated directory %q must be inside the project root %q", c.Output.GeneratedDir, c.Project.Root)
	}
	return dir, nil
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Project.Root, path)
}

// Load is a convenience method that loads configuration in the following order:
// 1. Set defaults
// 2. Load from file (if provided)
// 3. Load from environment variables (override file)
// 4. Validate
func Load(configFile string) (*Config, error) {
	cfg := NewConfig()

	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
