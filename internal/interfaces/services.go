// Package interfaces defines service contracts for MarketPulse
package interfaces

import (
	"context"

	"github.com/bobmcallan/marketpulse/internal/models"
)

// MarketDataService serves index data to presentation code. Every accessor
// resolves to renderable data: failures degrade to cached or mock values.
type MarketDataService interface {
	// FetchStockData returns the current quote for a logical symbol
	FetchStockData(ctx context.Context, symbol string) models.MarketQuote

	// FetchHistoricalData returns up to 30 daily points in ascending date order
	FetchHistoricalData(ctx context.Context, symbol string) []models.HistoricalPoint

	// FetchMarketMovers returns the illustrative gainers and losers lists
	FetchMarketMovers() models.MarketMovers

	// FetchMutualFunds returns the illustrative fund rankings
	FetchMutualFunds() []models.MutualFund

	// RenderIndexChart renders the SENSEX and NIFTY history as a PNG
	RenderIndexChart(ctx context.Context) ([]byte, error)

	// CheckUpstream queries the upstream API directly, bypassing cache and fallback
	CheckUpstream(ctx context.Context) (*models.UpstreamStatus, error)

	// CacheStats describes the freshness cache
	CacheStats() models.CacheStats

	// PurgeCache drops every cached entry and returns how many were removed
	PurgeCache() int

	// SweepCache drops entries past their freshness window
	SweepCache() int
}

// CalculatorService projects investment outcomes
type CalculatorService interface {
	// Calculate runs the projection named by calcType ("sip" or "lumpsum")
	Calculate(calcType string, amount float64, years int, rate float64) (*models.CalculationResult, error)
}
