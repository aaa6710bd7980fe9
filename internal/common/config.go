// Package common provides shared utilities for the bridge
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the bridge
type Config struct {
	Environment string         `toml:"environment"`
	Portfolio   string         `toml:"portfolio"`
	Universe    UniverseConfig `toml:"universe"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Engine      EngineConfig   `toml:"engine"`
	Macro       MacroConfig    `toml:"macro"`
	Logging     LoggingConfig  `toml:"logging"`
}

// UniverseConfig locates the instrument universe source.
type UniverseConfig struct {
	Path string `toml:"path"` // CSV export of the universe spreadsheet
}

// StorageConfig holds persistent store configuration.
// Backend "badger" stores locally under Path; "surrealdb" connects to Address.
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path"`
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	DataPath  string `toml:"data_path"` // raw artifacts (charts)
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo YahooConfig `toml:"yahoo"`
}

// YahooConfig holds Yahoo Finance API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
	ProxyURL  string `toml:"proxy_url"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EngineConfig holds the enrichment engine's tunables.
//
// StaleAfterDays and MaxStaleAgeYears bound the STALE window of the data
// quality classifier: quotes older than StaleAfterDays are STALE, but a
// quote older than MaxStaleAgeYears is treated as a broken timestamp and
// repaired instead. MinPlausibleYear guards against epoch/uninitialized
// timestamps.
type EngineConfig struct {
	HistoryRange     string `toml:"history_range"`      // chart range for the short-horizon series
	TrendRange       string `toml:"trend_range"`        // chart range for the long-horizon trend series
	StaleAfterDays   int    `toml:"stale_after_days"`
	MaxStaleAgeYears int    `toml:"max_stale_age_years"`
	MinPlausibleYear int    `toml:"min_plausible_year"`
	Charts           bool   `toml:"charts"`
}

// MacroConfig controls the macro hub sync.
type MacroConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Portfolio:   "main",
		Universe: UniverseConfig{
			Path: "config/universe.csv",
		},
		Storage: StorageConfig{
			Backend:  "badger",
			Path:     "data/store",
			DataPath: "data/artifacts",
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Engine: EngineConfig{
			HistoryRange:     "2y",
			TrendRange:       "max",
			StaleAfterDays:   7,
			MaxStaleAgeYears: 10,
			MinPlausibleYear: 2000,
			Charts:           true,
		},
		Macro: MacroConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("BRIDGE_ENV"); env != "" {
		config.Environment = env
	}

	if pf := os.Getenv("BRIDGE_PORTFOLIO"); pf != "" {
		config.Portfolio = pf
	}

	if path := os.Getenv("BRIDGE_UNIVERSE_PATH"); path != "" {
		config.Universe.Path = path
	}

	if level := os.Getenv("BRIDGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("BRIDGE_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if path := os.Getenv("BRIDGE_STORAGE_PATH"); path != "" {
		config.Storage.Path = path
	}
	if addr := os.Getenv("BRIDGE_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if v := os.Getenv("BRIDGE_STORAGE_NAMESPACE"); v != "" {
		config.Storage.Namespace = v
	}
	if v := os.Getenv("BRIDGE_STORAGE_DATABASE"); v != "" {
		config.Storage.Database = v
	}
	if v := os.Getenv("BRIDGE_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("BRIDGE_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}

	if v := os.Getenv("BRIDGE_YAHOO_BASE_URL"); v != "" {
		config.Clients.Yahoo.BaseURL = v
	}
	if v := os.Getenv("BRIDGE_YAHOO_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Clients.Yahoo.RateLimit = n
		}
	}

	if v := os.Getenv("BRIDGE_MACRO_ENABLED"); v != "" {
		config.Macro.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
}

// Validate checks the configuration the batch cannot run without.
// A failure here is the whole-run fatal error: it is reported before any
// instrument processing begins.
func (c *Config) Validate() error {
	if c.Portfolio == "" {
		return fmt.Errorf("portfolio name is required")
	}
	if c.Universe.Path == "" {
		return fmt.Errorf("universe source path is required")
	}
	switch c.Storage.Backend {
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the badger backend")
		}
	case "surrealdb":
		if c.Storage.Address == "" {
			return fmt.Errorf("storage address is required for the surrealdb backend")
		}
		if c.Storage.Namespace == "" || c.Storage.Database == "" {
			return fmt.Errorf("storage namespace and database are required for the surrealdb backend")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s (supported: badger, surrealdb)", c.Storage.Backend)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// StaleAfter returns the calendar-day window after which a valid quote
// is considered STALE.
func (c *EngineConfig) StaleAfter() time.Duration {
	days := c.StaleAfterDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// MaxStaleAge returns the age beyond which a quote timestamp is treated
// as implausible rather than stale.
func (c *EngineConfig) MaxStaleAge() time.Duration {
	years := c.MaxStaleAgeYears
	if years <= 0 {
		years = 10
	}
	return time.Duration(years) * 365 * 24 * time.Hour
}
