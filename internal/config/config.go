// Package config loads sfdecode's configuration from a YAML file plus
// environment overrides via github.com/spf13/viper, replacing the
// teacher's hand-rolled YAML line scanner with the same job done by a
// maintained library.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// SourceConfig names where journal blobs are read from.
type SourceConfig struct {
	// Type is "s3" or "local".
	Type   string `mapstructure:"type"`
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
	// LocalRoot is used when Type is "local".
	LocalRoot string `mapstructure:"localRoot"`
}

// OutputConfig names where decoded JSONL is written to.
type OutputConfig struct {
	// Type is "s3" or "local".
	Type      string `mapstructure:"type"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	LocalRoot string `mapstructure:"localRoot"`
}

// LogConfig controls internal/logger.
type LogConfig struct {
	Dir     string `mapstructure:"dir"`
	Level   string `mapstructure:"level"`
	Verbose bool   `mapstructure:"verbose"`
}

// StatusServerConfig controls the optional internal/statusserver HTTP
// endpoint.
type StatusServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// MetricsConfig controls the optional Prometheus /metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Config is sfdecode's full runtime configuration.
type Config struct {
	Source       SourceConfig       `mapstructure:"source"`
	Output       OutputConfig       `mapstructure:"output"`
	Concurrency  int                `mapstructure:"concurrency"`
	RateLimitRPS float64            `mapstructure:"rateLimitRps"`
	Log          LogConfig          `mapstructure:"log"`
	StatusServer StatusServerConfig `mapstructure:"statusServer"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`

	path string
}

// ValidationError collects configuration issues found by Validate.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid configuration")
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	for _, err := range e.Errors {
		b.WriteString("\n - ")
		b.WriteString(err)
	}
	return b.String()
}

// Load reads path (if non-empty) as a YAML config file, layers
// SFDECODE_-prefixed environment variables on top via viper, applies
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("sfdecode")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("config: resolve path %q: %w", path, err)
		}
		v.SetConfigFile(absPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", absPath, err)
		}
		path = absPath
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.path = path

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields with sfdecode's defaults.
func (c *Config) ApplyDefaults() {
	if c.Source.Type == "" {
		c.Source.Type = "local"
	}
	if c.Output.Type == "" {
		c.Output.Type = "local"
	}
	if c.Output.Prefix == "" {
		c.Output.Prefix = "decoded/"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.StatusServer.Addr == "" {
		c.StatusServer.Addr = ":8090"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
}

// Validate ensures the config is usable for a decode run.
func (c *Config) Validate() error {
	var errs []string

	switch c.Source.Type {
	case "s3":
		if c.Source.Bucket == "" {
			errs = append(errs, "source.bucket is required when source.type is s3")
		}
	case "local":
		if c.Source.LocalRoot == "" {
			errs = append(errs, "source.localRoot is required when source.type is local")
		}
	default:
		errs = append(errs, fmt.Sprintf("source.type must be s3 or local, got %q", c.Source.Type))
	}

	switch c.Output.Type {
	case "s3":
		if c.Output.Bucket == "" {
			errs = append(errs, "output.bucket is required when output.type is s3")
		}
	case "local":
		if c.Output.LocalRoot == "" {
			errs = append(errs, "output.localRoot is required when output.type is local")
		}
	default:
		errs = append(errs, fmt.Sprintf("output.type must be s3 or local, got %q", c.Output.Type))
	}

	if c.Concurrency <= 0 {
		errs = append(errs, "concurrency must be > 0")
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, "rateLimitRps must be >= 0")
	}

	if len(errs) > 0 {
		return &ValidationError{Path: c.path, Errors: errs}
	}
	return nil
}

// ResolvePath resolves path relative to the config file's directory,
// or returns it unchanged if already absolute or no config file was
// loaded.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.path == "" {
		return path
	}
	return filepath.Clean(filepath.Join(filepath.Dir(c.path), path))
}

// Summary returns a one-line overview suitable for a startup log line.
func (c *Config) Summary() string {
	return fmt.Sprintf(
		"source=%s(%s) output=%s(%s) concurrency=%d rateLimitRps=%.2f logLevel=%s",
		c.Source.Type, c.sourceLocation(),
		c.Output.Type, c.outputLocation(),
		c.Concurrency, c.RateLimitRPS, c.Log.Level,
	)
}

func (c *Config) sourceLocation() string {
	if c.Source.Type == "s3" {
		return fmt.Sprintf("s3://%s/%s", c.Source.Bucket, c.Source.Prefix)
	}
	return c.Source.LocalRoot
}

func (c *Config) outputLocation() string {
	if c.Output.Type == "s3" {
		return fmt.Sprintf("s3://%s/%s", c.Output.Bucket, c.Output.Prefix)
	}
	return filepath.Join(c.Output.LocalRoot, c.Output.Prefix)
}
