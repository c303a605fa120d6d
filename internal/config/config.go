// Package config loads, validates and persists the vlist configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Default values written by New and `vlist config init`.
const (
	DefaultKeeps           = 30
	DefaultEstimateSize    = 1.0
	DefaultTopThreshold    = 0.0
	DefaultBottomThreshold = 0.0
	DefaultOutputFormat    = "table"
	DefaultPrecision       = 2
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"

	configFileName = "config.yaml"
)

var (
	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownKey is returned by Get and Set for keys that do not exist.
	ErrUnknownKey = errors.New("unknown configuration key")
)

//nolint:gochecknoglobals // Lookup tables.
var (
	validOutputFormats = []string{"table", "json", "ndjson"}
	validLogLevels     = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}
	validLogFormats    = []string{"console", "json"}
)

// Config is the vlist configuration file.
type Config struct {
	List    ListConfig    `yaml:"list"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`

	configPath string
}

// ListConfig holds the defaults handed to the range engine and scroll controller.
type ListConfig struct {
	Keeps           int     `yaml:"keeps"`
	EstimateSize    float64 `yaml:"estimate_size"`
	TopThreshold    float64 `yaml:"top_threshold"`
	BottomThreshold float64 `yaml:"bottom_threshold"`
}

// OutputConfig controls how CLI results are printed.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// LoggingConfig controls the CLI logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// Defaults returns a Config holding only the built-in defaults.
func Defaults() *Config {
	return &Config{
		List: ListConfig{
			Keeps:           DefaultKeeps,
			EstimateSize:    DefaultEstimateSize,
			TopThreshold:    DefaultTopThreshold,
			BottomThreshold: DefaultBottomThreshold,
		},
		Output: OutputConfig{
			DefaultFormat: DefaultOutputFormat,
			Precision:     DefaultPrecision,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// New returns the defaults overlaid with the config file in the config directory (when present)
// and the VLIST_* environment overrides. A broken config file is logged and skipped.
func New() *Config {
	cfg := Defaults()

	dir, err := GetConfigDir()
	if err == nil {
		cfg.configPath = filepath.Join(dir, configFileName)
		if _, statErr := os.Stat(cfg.configPath); statErr == nil {
			if mergeErr := ShallowMergeYAML(cfg, cfg.configPath); mergeErr != nil {
				Logger.Warn().
					Str("path", cfg.configPath).
					Err(mergeErr).
					Msg("ignoring unreadable config file, using defaults")
			}
		}
	}

	cfg.ApplyEnv()
	return cfg
}

// Load reads path on top of the defaults. Unlike New it reports parse errors.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if err := ShallowMergeYAML(cfg, path); err != nil {
		return nil, err
	}
	cfg.configPath = path
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv applies VLIST_LOG_LEVEL, VLIST_LOG_FORMAT and VLIST_OUTPUT_FORMAT.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("VLIST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("VLIST_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("VLIST_OUTPUT_FORMAT"); v != "" {
		c.Output.DefaultFormat = v
	}
}

// ConfigPath returns the file Save writes to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file Save writes to.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the configuration as YAML, creating the parent directory.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("no configuration path set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file %s: %w", c.configPath, err)
	}
	return nil
}

// Validate checks every field and returns the first problem wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.List.Keeps < 1:
		return fmt.Errorf("%w: list.keeps must be >= 1, got %d", ErrInvalidConfig, c.List.Keeps)
	case c.List.EstimateSize <= 0:
		return fmt.Errorf("%w: list.estimate_size must be > 0, got %g", ErrInvalidConfig, c.List.EstimateSize)
	case c.List.TopThreshold < 0:
		return fmt.Errorf("%w: list.top_threshold must be >= 0, got %g", ErrInvalidConfig, c.List.TopThreshold)
	case c.List.BottomThreshold < 0:
		return fmt.Errorf("%w: list.bottom_threshold must be >= 0, got %g",
			ErrInvalidConfig, c.List.BottomThreshold)
	case !slices.Contains(validOutputFormats, c.Output.DefaultFormat):
		return fmt.Errorf("%w: output.default_format must be one of %v, got %q",
			ErrInvalidConfig, validOutputFormats, c.Output.DefaultFormat)
	case c.Output.Precision < 0:
		return fmt.Errorf("%w: output.precision must be >= 0, got %d", ErrInvalidConfig, c.Output.Precision)
	case !slices.Contains(validLogLevels, c.Logging.Level):
		return fmt.Errorf("%w: logging.level must be one of %v, got %q",
			ErrInvalidConfig, validLogLevels, c.Logging.Level)
	case !slices.Contains(validLogFormats, c.Logging.Format):
		return fmt.Errorf("%w: logging.format must be one of %v, got %q",
			ErrInvalidConfig, validLogFormats, c.Logging.Format)
	}
	return nil
}
