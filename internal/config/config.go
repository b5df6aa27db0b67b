// Package config loads and validates bioremcore runtime configuration from
// YAML, with environment overrides applied after the file is read.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"bioremcore/internal/pipeline"
)

// Configuration validation errors.
var (
	ErrInvalidSeparator      = errors.New("separator must be a single character")
	ErrInvalidLogLevel       = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrUnknownOutputDriver   = errors.New("output.driver must be one of: fs, memory, s3")
	ErrUnknownRegistryDriver = errors.New("registry.driver must be one of: memory, sqlite, postgres")
	ErrUnknownSource         = errors.New("data.references keys must name known sources")
)

// Environment overrides. Driver variables share their names with the
// factories that also read them directly.
const (
	EnvDataDir        = "BIOREMCORE_DATA_DIR"
	EnvOutputDir      = "BIOREMCORE_OUTPUT_DIR"
	EnvLogLevel       = "BIOREMCORE_LOG_LEVEL"
	EnvOutputDriver   = "BIOREMCORE_ARTIFACT_DRIVER"
	EnvRegistryDriver = "BIOREMCORE_REGISTRY_DRIVER"
	EnvSQLitePath     = "BIOREMCORE_REGISTRY_SQLITE_PATH"
	EnvPostgresDSN    = "BIOREMCORE_REGISTRY_POSTGRES_DSN"
)

// Config is the complete runtime configuration.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Output   OutputConfig   `yaml:"output"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Registry RegistryConfig `yaml:"registry"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig locates the reference knowledge bases.
type DataConfig struct {
	Dir        string            `yaml:"dir"`
	Separator  string            `yaml:"separator"`
	References map[string]string `yaml:"references"` // per-source path overrides
}

// OutputConfig controls result persistence.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Separator string `yaml:"separator"`
	Timestamp bool   `yaml:"timestamp"`
	Driver    string `yaml:"driver"` // fs (default), memory, s3
}

// PipelineConfig tunes enrichment behavior.
type PipelineConfig struct {
	NormalizeTypes bool     `yaml:"normalize_types"`
	Processors     []string `yaml:"processors"` // built-in processors to enable
}

// RegistryConfig selects the run report backend.
type RegistryConfig struct {
	Driver      string `yaml:"driver"` // memory (default), sqlite, postgres
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Data:    DataConfig{Dir: "data", Separator: ";"},
		Output:  OutputConfig{Dir: "outputs", Separator: ";"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path, applies environment overrides, fills
// defaults, and validates the result. An empty path loads pure defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvOutputDriver); v != "" {
		c.Output.Driver = v
	}
	if v := os.Getenv(EnvRegistryDriver); v != "" {
		c.Registry.Driver = v
	}
	if v := os.Getenv(EnvSQLitePath); v != "" {
		c.Registry.SQLitePath = v
	}
	if v := os.Getenv(EnvPostgresDSN); v != "" {
		c.Registry.PostgresDSN = v
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Data.Dir == "" {
		c.Data.Dir = def.Data.Dir
	}
	if c.Data.Separator == "" {
		c.Data.Separator = def.Data.Separator
	}
	if c.Output.Dir == "" {
		c.Output.Dir = def.Output.Dir
	}
	if c.Output.Separator == "" {
		c.Output.Separator = def.Output.Separator
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

// Validate checks separators, enums and reference keys.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Data.Separator) != 1 {
		return fmt.Errorf("%w: data.separator %q", ErrInvalidSeparator, c.Data.Separator)
	}
	if utf8.RuneCountInString(c.Output.Separator) != 1 {
		return fmt.Errorf("%w: output.separator %q", ErrInvalidSeparator, c.Output.Separator)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	switch c.Output.Driver {
	case "", "fs", "memory", "s3":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutputDriver, c.Output.Driver)
	}
	switch c.Registry.Driver {
	case "", "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRegistryDriver, c.Registry.Driver)
	}
	for name := range c.Data.References {
		if !pipeline.KnownSource(name) {
			return fmt.Errorf("%w: %q", ErrUnknownSource, name)
		}
	}
	return nil
}

// DataSeparator returns the reference field separator as a rune.
func (c Config) DataSeparator() rune { return firstRune(c.Data.Separator) }

// OutputSeparator returns the persisted field separator as a rune.
func (c Config) OutputSeparator() rune { return firstRune(c.Output.Separator) }

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
