// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBasePath is where generated files land when output.base_path is unset.
const DefaultBasePath = "app/javascript/types/__generated__"

// Config is the root configuration structure.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// OutputConfig configures where and how generated files are written.
type OutputConfig struct {
	BasePath  string `yaml:"base_path"`
	Extension string `yaml:"extension"`
	// Clean wipes BasePath before each generation run. A pointer so an
	// explicit false in the file survives defaulting.
	Clean *bool `yaml:"clean"`
}

// ShouldClean reports whether the output base is wiped before generating.
func (o OutputConfig) ShouldClean() bool {
	return o.Clean == nil || *o.Clean
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// ServerConfig configures the introspection HTTP server.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Expose the metrics endpoint from serve
	Path    string `yaml:"path"`    // default: /metrics
	Prefix  string `yaml:"prefix"`  // metric name prefix, default: typesmith
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes. Environment references in
// the text are expanded and TYPESMITH_* variables override file values.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	TYPESMITH_OUTPUT_BASE_PATH  - Output directory (default: app/javascript/types/__generated__)
//	TYPESMITH_OUTPUT_EXTENSION  - Generated file extension (default: .ts)
//	TYPESMITH_OUTPUT_CLEAN      - Wipe the output directory first (default: true)
//	TYPESMITH_LOG_LEVEL         - Log level: debug, info, warn, error (default: info)
//	TYPESMITH_LOG_FORMAT        - Log format: json or console (default: console)
//	TYPESMITH_SERVER_HOST       - Server host (default: 127.0.0.1)
//	TYPESMITH_SERVER_PORT       - Server port (default: 8080)
//	TYPESMITH_METRICS_ENABLED   - Expose /metrics from serve (default: false)
//	TYPESMITH_METRICS_PATH      - Metrics path (default: /metrics)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads the file when it exists and otherwise builds the
// configuration from the environment and defaults.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies TYPESMITH_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Output configuration
	if v := os.Getenv("TYPESMITH_OUTPUT_BASE_PATH"); v != "" {
		cfg.Output.BasePath = v
	}
	if v := os.Getenv("TYPESMITH_OUTPUT_EXTENSION"); v != "" {
		cfg.Output.Extension = v
	}
	if v := os.Getenv("TYPESMITH_OUTPUT_CLEAN"); v != "" {
		clean := parseBool(v)
		cfg.Output.Clean = &clean
	}

	// Logging configuration
	if v := os.Getenv("TYPESMITH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TYPESMITH_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Server configuration
	if v := os.Getenv("TYPESMITH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("TYPESMITH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TYPESMITH_SERVER_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Metrics configuration
	if v := os.Getenv("TYPESMITH_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("TYPESMITH_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Output.BasePath == "" {
		cfg.Output.BasePath = DefaultBasePath
	}
	if cfg.Output.Extension == "" {
		cfg.Output.Extension = ".ts"
	}
	if !strings.HasPrefix(cfg.Output.Extension, ".") {
		cfg.Output.Extension = "." + cfg.Output.Extension
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Prefix == "" {
		cfg.Metrics.Prefix = "typesmith"
	}
}

func validate(cfg *Config) error {
	base := path.Clean(strings.ReplaceAll(cfg.Output.BasePath, "\\", "/"))
	if base == "." || base == "/" {
		return fmt.Errorf("output.base_path must name a directory below the project root, got %q", cfg.Output.BasePath)
	}
	if strings.ContainsAny(cfg.Output.Extension[1:], "./\\") || len(cfg.Output.Extension) == 1 {
		return fmt.Errorf("output.extension must be a single file suffix, got %q", cfg.Output.Extension)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}

	return nil
}
