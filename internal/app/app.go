// Package app wires configuration, clients and services into a runnable core
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/marketpulse/internal/clients/alphavantage"
	"github.com/bobmcallan/marketpulse/internal/common"
	"github.com/bobmcallan/marketpulse/internal/interfaces"
	"github.com/bobmcallan/marketpulse/internal/metrics"
	"github.com/bobmcallan/marketpulse/internal/services/calculator"
	"github.com/bobmcallan/marketpulse/internal/services/marketdata"
)

// App holds all initialized services and clients.
// It is the shared core used by cmd/marketpulse-server.
type App struct {
	Config            *common.Config
	Logger            *common.Logger
	Metrics           *metrics.Metrics
	QuoteClient       interfaces.QuoteClient // nil when no API key is configured
	MarketData        interfaces.MarketDataService
	CalculatorService interfaces.CalculatorService
	StartupTime       time.Time

	sweeper *Sweeper
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, MARKETPULSE_CONFIG,
// marketpulse.toml next to the binary, then config/marketpulse.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("MARKETPULSE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "marketpulse.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/marketpulse.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes all services.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	return NewAppWithConfig(config, common.NewLoggerFromConfig(config.Logging))
}

// NewAppWithConfig initializes all services from an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	if logger == nil {
		logger = common.NewSilentLogger()
	}
	m := metrics.New()

	ensureJWTSecret(config, logger)

	// Initialize API client
	var quoteClient interfaces.QuoteClient
	if config.HasAPIKey() {
		av := config.Clients.AlphaVantage
		quoteClient = alphavantage.NewClient(strings.TrimSpace(av.APIKey),
			alphavantage.WithBaseURL(av.BaseURL),
			alphavantage.WithLogger(logger),
			alphavantage.WithRateLimit(av.RateLimit),
			alphavantage.WithTimeout(av.GetTimeout()),
			alphavantage.WithMetrics(m),
		)
	} else {
		logger.Warn().Msg("Alpha Vantage API key not configured - serving mock market data")
	}

	// Initialize services
	marketData := marketdata.NewService(quoteClient, logger,
		marketdata.WithMetrics(m),
		marketdata.WithTTLs(config.Cache.GetQuoteTTL(), config.Cache.GetHistoryTTL()),
	)
	calculatorService := calculator.NewService(logger)

	a := &App{
		Config:            config,
		Logger:            logger,
		Metrics:           m,
		QuoteClient:       quoteClient,
		MarketData:        marketData,
		CalculatorService: calculatorService,
		StartupTime:       startupStart,
	}

	if schedule := strings.TrimSpace(config.Cache.SweepSchedule); schedule != "" {
		sweeper, err := NewSweeper(schedule, marketData, logger)
		if err != nil {
			return nil, err
		}
		a.sweeper = sweeper
	}

	logger.Info().
		Bool("live_data", quoteClient != nil).
		Dur("quote_ttl", config.Cache.GetQuoteTTL()).
		Dur("history_ttl", config.Cache.GetHistoryTTL()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// StartSweeper launches the cache sweeper, if one is configured.
func (a *App) StartSweeper() {
	if a.sweeper != nil {
		a.sweeper.Start()
	}
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.sweeper != nil {
		a.sweeper.Stop()
		a.sweeper = nil
	}
}
