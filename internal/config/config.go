// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"prodman/internal/appdir"
)

// Default values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for prodman.
type Config struct {
	// Paths
	DataFile  string `toml:"data_file"`
	ExportDir string `toml:"export_dir"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // text, json, logfmt
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (TOML)
// 3. Environment variables
// 4. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	configFile := findConfigFile()
	if configFile != "" {
		if err := loadConfigFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configFile, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	finalizeConfig(cfg)

	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataFile = appdir.DataPath()
	cfg.ExportDir = ""
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// findConfigFile looks for a config file in the current directory, then in
// the application data directory.
func findConfigFile() string {
	names := []string{"prodman.toml", ".prodman.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	if path := appdir.ConfigPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("PRODMAN_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("PRODMAN_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv("PRODMAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PRODMAN_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// parseFlags defines and parses CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("prodman", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to board data file")
	fs.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "Default directory for markdown exports")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")

	return fs.Parse(args)
}

// finalizeConfig expands and normalizes paths.
func finalizeConfig(cfg *Config) {
	cfg.DataFile = expandPath(cfg.DataFile)
	cfg.ExportDir = expandPath(cfg.ExportDir)
	if cfg.ExportDir == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.ExportDir = wd
		} else {
			cfg.ExportDir = "."
		}
	}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	if p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return home
	}
	return p
}
