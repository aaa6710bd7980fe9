// Package app wires configuration, storage, clients and the enrichment
// service into a runnable batch.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/clients/yahoo"
	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/enrich"
	"github.com/HaliroESG/portfolio-project/internal/interfaces"
	"github.com/HaliroESG/portfolio-project/internal/storage"
	"github.com/HaliroESG/portfolio-project/internal/universe"
)

// App holds the initialized config, storage, clients and services.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Storage     interfaces.StorageManager
	Market      interfaces.MarketDataClient
	Universe    interfaces.UniverseSource
	Enrichment  interfaces.EnrichmentService
	StartupTime time.Time

	clock func() time.Time
}

// SetClock overrides the time source for run and record timestamps, so
// the snapshot date and every record's as-of time come from one clock.
// Used in tests.
func (a *App) SetClock(now func() time.Time) {
	a.clock = now
	a.Enrichment.SetClock(now)
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients and services from configuration.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, BRIDGE_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("BRIDGE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "bridge.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/bridge.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Storage.DataPath != "" && !filepath.IsAbs(config.Storage.DataPath) {
		config.Storage.DataPath = filepath.Join(binDir, config.Storage.DataPath)
	}

	// Initialize logger
	logger := common.NewLoggerFromConfig(config.Logging)

	// Initialize storage
	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize market data client
	yahooOpts := []yahoo.ClientOption{
		yahoo.WithLogger(logger),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	}
	if config.Clients.Yahoo.BaseURL != "" {
		yahooOpts = append(yahooOpts, yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL))
	}
	if config.Clients.Yahoo.RateLimit > 0 {
		yahooOpts = append(yahooOpts, yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit))
	}
	if config.Clients.Yahoo.ProxyURL != "" {
		yahooOpts = append(yahooOpts, yahoo.WithProxy(config.Clients.Yahoo.ProxyURL))
	}
	marketClient := yahoo.NewClient(yahooOpts...)

	// Initialize universe source
	universeSource := universe.NewCSVSource(config.Universe.Path, logger)

	// Initialize enrichment service
	enrichService := enrich.NewService(marketClient, storageManager, config.Engine, logger)

	logger.Info().
		Str("portfolio", config.Portfolio).
		Str("backend", config.Storage.Backend).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		Market:      marketClient,
		Universe:    universeSource,
		Enrichment:  enrichService,
		StartupTime: startupStart,
		clock:       time.Now,
	}, nil
}

// Close releases storage resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
