// Package interfaces defines service contracts for MarketPulse
package interfaces

import (
	"context"

	"github.com/bobmcallan/marketpulse/internal/models"
)

// QuoteClient provides access to the upstream quote API
type QuoteClient interface {
	// GetGlobalQuote retrieves the latest quote for a tradable ticker
	GetGlobalQuote(ctx context.Context, ticker string) (*models.ProxyQuote, error)

	// GetDailySeries retrieves daily closes, most recent first
	GetDailySeries(ctx context.Context, ticker string) ([]models.DailyBar, error)
}
