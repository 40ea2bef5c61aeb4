// Package models defines data structures for MarketPulse
package models

import "time"

// Data origins recorded on MarketQuote.Source
const (
	SourceAlphaVantage = "alphavantage"
	SourceMock         = "mock"
)

// MarketQuote is a normalized index quote in index-point scale
type MarketQuote struct {
	Symbol        string  `json:"symbol"` // logical symbol, e.g. ^BSESN
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`         // absolute, same scale as Price
	ChangePercent float64 `json:"change_percent"` // unit-less, never rescaled
	Source        string  `json:"source,omitempty"`
}

// HistoricalPoint is one daily close in index-point scale
type HistoricalPoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Price float64 `json:"price"`
}

// ProxyQuote is a parsed GLOBAL_QUOTE for a proxy instrument, before rescaling
type ProxyQuote struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// DailyBar is one row of a daily time series, before rescaling
type DailyBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// MarketMover is a top gainer or loser as displayed on the dashboard
type MarketMover struct {
	Ticker           string `json:"ticker"`
	Price            string `json:"price"`
	ChangePercentage string `json:"change_percentage"`
}

// MarketMovers groups the day's top gainers and losers
type MarketMovers struct {
	Gainers []MarketMover `json:"gainers"`
	Losers  []MarketMover `json:"losers"`
}

// MutualFund is a fund ranking row
type MutualFund struct {
	Name            string  `json:"name"`
	OneYearReturn   float64 `json:"one_year_return"`
	ThreeYearReturn float64 `json:"three_year_return"`
	AUM             string  `json:"aum"`
}

// MarketOverview is the combined dashboard payload
type MarketOverview struct {
	Sensex MarketQuote  `json:"sensex"`
	Nifty  MarketQuote  `json:"nifty"`
	Movers MarketMovers `json:"movers"`
	Funds  []MutualFund `json:"funds"`
}

// UpstreamStatus reports a direct connectivity check against the quote API
type UpstreamStatus struct {
	OK        bool          `json:"ok"`
	Ticker    string        `json:"ticker"`
	Message   string        `json:"message,omitempty"`
	Price     float64       `json:"price,omitempty"`
	Latency   time.Duration `json:"-"`
	LatencyMS int64         `json:"latency_ms"`
	CheckedAt time.Time     `json:"checked_at"`
}

// CacheStats summarizes the freshness cache
type CacheStats struct {
	Entries int      `json:"entries"`
	Keys    []string `json:"keys"`
}
