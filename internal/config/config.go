// Package config provides configuration management for templight using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with the TEMPLIGHT_ prefix, and validation. It manages the
// template source directory, cache staleness window, synonym table
// overrides, and watch/sweep settings.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Templates  TemplatesConfig  `yaml:"templates" mapstructure:"templates"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

type TemplatesConfig struct {
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	Extension string        `yaml:"extension" mapstructure:"extension"`
	Names     []string      `yaml:"names" mapstructure:"names"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

type ValidationConfig struct {
	SynonymsFile string `yaml:"synonyms_file" mapstructure:"synonyms_file"`
}

type WatchConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	Debounce      time.Duration `yaml:"debounce" mapstructure:"debounce"`
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Apply defaults only where nothing was explicitly set
	if config.Templates.Dir == "" {
		config.Templates.Dir = "./templates"
	}
	if config.Templates.Extension == "" {
		config.Templates.Extension = ".md"
	}
	if config.Templates.TTL == 0 {
		config.Templates.TTL = 10 * time.Minute
	}

	// Handle names set via viper (workaround for viper slice handling)
	if viper.IsSet("templates.names") && len(config.Templates.Names) == 0 {
		names := viper.GetStringSlice("templates.names")
		if len(names) > 0 {
			config.Templates.Names = names
		}
	}

	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = 300 * time.Millisecond
	}
	if config.Watch.SweepInterval == 0 {
		config.Watch.SweepInterval = 5 * time.Minute
	}
	if !viper.IsSet("watch.enabled") {
		config.Watch.Enabled = true
	}

	if config.Log.Level == "" {
		config.Log.Level = viper.GetString("log-level")
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validatePath(config.Templates.Dir); err != nil {
		return fmt.Errorf("templates dir: %w", err)
	}

	if config.Validation.SynonymsFile != "" {
		if err := validatePath(config.Validation.SynonymsFile); err != nil {
			return fmt.Errorf("synonyms file: %w", err)
		}
	}

	if !strings.HasPrefix(config.Templates.Extension, ".") {
		return fmt.Errorf("template extension must start with a dot: %s", config.Templates.Extension)
	}

	if config.Templates.TTL < 0 {
		return fmt.Errorf("templates ttl must not be negative: %s", config.Templates.TTL)
	}

	for _, name := range config.Templates.Names {
		if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("template name contains path characters: %s", name)
		}
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json: %s", config.Log.Format)
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
