// Package common provides shared utilities for MarketPulse
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for MarketPulse
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Clients     ClientsConfig `toml:"clients"`
	Cache       CacheConfig   `toml:"cache"`
	Logging     LoggingConfig `toml:"logging"`
	Auth        AuthConfig    `toml:"auth"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // requests per minute
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AlphaVantageConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// CacheConfig holds the freshness windows for cached market data
type CacheConfig struct {
	QuoteTTL      string `toml:"quote_ttl"`
	HistoryTTL    string `toml:"history_ttl"`
	SweepSchedule string `toml:"sweep_schedule"` // cron spec, empty disables the sweeper
}

// GetQuoteTTL parses and returns the quote freshness window
func (c *CacheConfig) GetQuoteTTL() time.Duration {
	d, err := time.ParseDuration(c.QuoteTTL)
	if err != nil || d <= 0 {
		return FreshnessQuote
	}
	return d
}

// GetHistoryTTL parses and returns the history freshness window
func (c *CacheConfig) GetHistoryTTL() time.Duration {
	d, err := time.ParseDuration(c.HistoryTTL)
	if err != nil || d <= 0 {
		return FreshnessHistory
	}
	return d
}

// AuthConfig holds admin token configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"` // "console" or "json"
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			AlphaVantage: AlphaVantageConfig{
				BaseURL:   "https://www.alphavantage.co",
				RateLimit: 5,
				Timeout:   "10s",
			},
		},
		Cache: CacheConfig{
			QuoteTTL:      "60s",
			HistoryTTL:    "5m",
			SweepSchedule: "@every 10m",
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Outputs:    []string{"console"},
			FilePath:   "./logs/marketpulse.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first, without overriding
// variables already present in the environment.
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
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
	if env := os.Getenv("MARKETPULSE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("MARKETPULSE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("MARKETPULSE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("MARKETPULSE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("MARKETPULSE_ALPHAVANTAGE_BASE_URL"); v != "" {
		config.Clients.AlphaVantage.BaseURL = v
	}

	// First match wins; the NEXT_PUBLIC_ name is what the website deployment exports
	for _, name := range []string{"MARKETPULSE_ALPHAVANTAGE_API_KEY", "ALPHA_VANTAGE_API_KEY", "NEXT_PUBLIC_ALPHA_VANTAGE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.AlphaVantage.APIKey = v
			break
		}
	}

	if v := os.Getenv("MARKETPULSE_CACHE_SWEEP_SCHEDULE"); v != "" {
		config.Cache.SweepSchedule = v
	}

	if v := os.Getenv("MARKETPULSE_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("MARKETPULSE_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// HasAPIKey reports whether live market data can be requested.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.Clients.AlphaVantage.APIKey) != ""
}
