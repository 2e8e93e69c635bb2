// Package config provides configuration management for the ClipForge
// agent. Defaults are overridden by an optional YAML file, then by
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultPort           = 8797
	DefaultLogLevel       = "info"
	DefaultDataDir        = ".clipforge"
	DefaultSaveDebounceMs = 1500

	// Environment variable names
	EnvPort         = "CLIPFORGE_PORT"
	EnvLogLevel     = "CLIPFORGE_LOG_LEVEL"
	EnvDataDir      = "CLIPFORGE_DATA_DIR"
	EnvConfigFile   = "CLIPFORGE_CONFIG_FILE"
	EnvSaveDebounce = "CLIPFORGE_SAVE_DEBOUNCE_MS"
	EnvHeadless     = "CLIPFORGE_HEADLESS"

	// Database filename
	DBFilename = "clipforge.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	SaveDebounce() time.Duration
	Headless() bool
}

// fileConfig mirrors the optional YAML config file.
type fileConfig struct {
	Port           int    `yaml:"port"`
	LogLevel       string `yaml:"log_level"`
	DataDir        string `yaml:"data_dir"`
	SaveDebounceMs int    `yaml:"save_debounce_ms"`
	Headless       *bool  `yaml:"headless"`
}

// EnvConfig layers environment variables over an optional config file
// over built-in defaults.
type EnvConfig struct {
	port           int
	logLevel       string
	dataDir        string
	saveDebounceMs int
	headless       bool
}

// New builds the effective configuration. The config file path comes
// from CLIPFORGE_CONFIG_FILE; a missing file is not an error, a
// malformed one is.
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:           DefaultPort,
		logLevel:       DefaultLogLevel,
		dataDir:        defaultDataDir(),
		saveDebounceMs: DefaultSaveDebounceMs,
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.port = port
	}
	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if d := os.Getenv(EnvSaveDebounce); d != "" {
		ms, err := strconv.Atoi(d)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid %s: must be a non-negative integer", EnvSaveDebounce)
		}
		cfg.saveDebounceMs = ms
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	return cfg, nil
}

func (c *EnvConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Port != 0 {
		c.port = fc.Port
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.DataDir != "" {
		c.dataDir = fc.DataDir
	}
	if fc.SaveDebounceMs != 0 {
		c.saveDebounceMs = fc.SaveDebounceMs
	}
	if fc.Headless != nil {
		c.headless = *fc.Headless
	}
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// SaveDebounce returns the delay between the last edit and the
// automatic state save.
func (c *EnvConfig) SaveDebounce() time.Duration {
	return time.Duration(c.saveDebounceMs) * time.Millisecond
}

// Headless reports whether the system tray should be skipped.
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
