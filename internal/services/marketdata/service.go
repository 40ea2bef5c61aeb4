// Package marketdata serves index quotes and history with cache and mock fallback
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/bobmcallan/marketpulse/internal/cache"
	"github.com/bobmcallan/marketpulse/internal/clients/alphavantage"
	"github.com/bobmcallan/marketpulse/internal/common"
	"github.com/bobmcallan/marketpulse/internal/interfaces"
	"github.com/bobmcallan/marketpulse/internal/metrics"
	"github.com/bobmcallan/marketpulse/internal/models"
)

// Kinds of cached data, also used as metric labels
const (
	KindQuote   = "quote"
	KindHistory = "history"
)

// ErrNoUpstream is returned by CheckUpstream when no API client is configured.
var ErrNoUpstream = errors.New("upstream client not configured")

// QuoteKey and HistoryKey build cache keys from an upstream ticker.
func QuoteKey(ticker string) string   { return "quote_" + ticker }
func HistoryKey(ticker string) string { return "historical_" + ticker }

// Service implements MarketDataService on top of an optional upstream client.
type Service struct {
	client     interfaces.QuoteClient
	logger     *common.Logger
	metrics    *metrics.Metrics
	quotes     *cache.Cache[models.MarketQuote]
	history    *cache.Cache[[]models.HistoricalPoint]
	quoteTTL   time.Duration
	historyTTL time.Duration
	now        func() time.Time // injectable clock for testing
}

// Option configures the service
type Option func(*Service)

// WithMetrics records lookups and served sources
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTTLs overrides the freshness windows. Non-positive values keep the default.
func WithTTLs(quote, history time.Duration) Option {
	return func(s *Service) {
		if quote > 0 {
			s.quoteTTL = quote
		}
		if history > 0 {
			s.historyTTL = history
		}
	}
}

// WithClock replaces time.Now for the service and its caches
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a market data service.
// client may be nil, in which case every request is served from cache or mock data.
func NewService(client interfaces.QuoteClient, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		client:     client,
		logger:     logger,
		quoteTTL:   common.FreshnessQuote,
		historyTTL: common.FreshnessHistory,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = common.NewSilentLogger()
	}

	s.quotes = cache.New(cache.WithClock[models.MarketQuote](s.now))
	s.history = cache.New(cache.WithClock[[]models.HistoricalPoint](s.now))
	return s
}

// FetchStockData returns the current quote for a logical symbol in index points.
// Upstream failures fall back to a cached value, then to a fixed mock quote.
func (s *Service) FetchStockData(ctx context.Context, symbol string) models.MarketQuote {
	ticker := ResolveTicker(symbol)
	key := QuoteKey(ticker)

	quote, from := firstOf(ctx,
		source[models.MarketQuote]{name: sourceCache, fetch: func(context.Context) (models.MarketQuote, bool) {
			q, ok := s.quotes.Get(key, s.quoteTTL)
			s.metrics.CacheLookup(KindQuote, ok)
			return q, ok
		}},
		source[models.MarketQuote]{name: sourceLive, fetch: func(ctx context.Context) (models.MarketQuote, bool) {
			return s.liveQuote(ctx, symbol, ticker, key)
		}},
		source[models.MarketQuote]{name: sourceCache, fetch: func(context.Context) (models.MarketQuote, bool) {
			return s.quotes.Get(key, s.quoteTTL)
		}},
		source[models.MarketQuote]{name: sourceMock, fetch: func(context.Context) (models.MarketQuote, bool) {
			q := mockQuote(symbol)
			s.quotes.Set(key, q)
			return q, true
		}},
	)

	s.metrics.Served(KindQuote, from)
	s.logger.Debug().Str("symbol", symbol).Str("ticker", ticker).Str("from", from).Float64("price", quote.Price).Msg("Quote served")
	return quote
}

func (s *Service) liveQuote(ctx context.Context, symbol, ticker, key string) (models.MarketQuote, bool) {
	if s.client == nil {
		return models.MarketQuote{}, false
	}

	raw, err := s.client.GetGlobalQuote(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Str("ticker", ticker).
			Str("category", alphavantage.ErrorCategory(err)).Msg("Quote fetch failed, falling back")
		return models.MarketQuote{}, false
	}

	factor := ProfileFor(symbol).Base / raw.Price
	q := models.MarketQuote{
		Symbol:        symbol,
		Price:         raw.Price * factor,
		Change:        raw.Change * factor,
		ChangePercent: raw.ChangePercent,
		Source:        models.SourceAlphaVantage,
	}
	s.quotes.Set(key, q)
	return q, true
}

// FetchHistoricalData returns up to HistoryLength daily points for a logical
// symbol in ascending date order. It falls back like FetchStockData.
func (s *Service) FetchHistoricalData(ctx context.Context, symbol string) []models.HistoricalPoint {
	ticker := ResolveTicker(symbol)
	key := HistoryKey(ticker)

	points, from := firstOf(ctx,
		source[[]models.HistoricalPoint]{name: sourceCache, fetch: func(context.Context) ([]models.HistoricalPoint, bool) {
			p, ok := s.history.Get(key, s.historyTTL)
			s.metrics.CacheLookup(KindHistory, ok)
			return p, ok
		}},
		source[[]models.HistoricalPoint]{name: sourceLive, fetch: func(ctx context.Context) ([]models.HistoricalPoint, bool) {
			return s.liveHistory(ctx, symbol, ticker, key)
		}},
		source[[]models.HistoricalPoint]{name: sourceCache, fetch: func(context.Context) ([]models.HistoricalPoint, bool) {
			return s.history.Get(key, s.historyTTL)
		}},
		source[[]models.HistoricalPoint]{name: sourceMock, fetch: func(context.Context) ([]models.HistoricalPoint, bool) {
			p := mockHistory(symbol, s.now())
			s.history.Set(key, p)
			return p, true
		}},
	)

	s.metrics.Served(KindHistory, from)
	s.logger.Debug().Str("symbol", symbol).Str("ticker", ticker).Str("from", from).Int("points", len(points)).Msg("History served")
	return slices.Clone(points)
}

func (s *Service) liveHistory(ctx context.Context, symbol, ticker, key string) ([]models.HistoricalPoint, bool) {
	if s.client == nil {
		return nil, false
	}

	bars, err := s.client.GetDailySeries(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Str("ticker", ticker).
			Str("category", alphavantage.ErrorCategory(err)).Msg("History fetch failed, falling back")
		return nil, false
	}
	if len(bars) == 0 {
		return nil, false
	}

	// Most recent first, regardless of what the client hands back
	bars = slices.Clone(bars)
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.After(bars[j].Date) })
	if len(bars) > HistoryLength {
		bars = bars[:HistoryLength]
	}

	latest := bars[0].Close
	if latest <= 0 {
		s.logger.Warn().Str("symbol", symbol).Str("ticker", ticker).Float64("close", latest).
			Str("category", alphavantage.CategoryMalformed).Msg("History has non-positive latest close, falling back")
		return nil, false
	}
	factor := ProfileFor(symbol).Base / latest

	points := make([]models.HistoricalPoint, 0, len(bars))
	for i := len(bars) - 1; i >= 0; i-- {
		points = append(points, models.HistoricalPoint{
			Date:  bars[i].Date.Format("2006-01-02"),
			Price: bars[i].Close * factor,
		})
	}

	s.history.Set(key, points)
	return points, true
}

// CheckUpstream issues one live quote request for the SENSEX proxy, bypassing
// the cache and mock fallback. Upstream failures are reported in the status.
func (s *Service) CheckUpstream(ctx context.Context) (*models.UpstreamStatus, error) {
	if s.client == nil {
		return nil, ErrNoUpstream
	}

	start := s.now()
	raw, err := s.client.GetGlobalQuote(ctx, TickerSensexProxy)
	elapsed := s.now().Sub(start)

	status := &models.UpstreamStatus{
		Ticker:    TickerSensexProxy,
		Latency:   elapsed,
		LatencyMS: elapsed.Milliseconds(),
		CheckedAt: s.now(),
	}
	if err != nil {
		status.Message = fmt.Sprintf("%s: %v", alphavantage.ErrorCategory(err), err)
		s.logger.Warn().Err(err).Str("ticker", TickerSensexProxy).Msg("Upstream check failed")
		return status, nil
	}

	status.OK = true
	status.Price = raw.Price
	status.Message = "upstream reachable"
	s.logger.Info().Str("ticker", TickerSensexProxy).Int64("latency_ms", status.LatencyMS).Msg("Upstream check succeeded")
	return status, nil
}

// CacheStats describes both caches
func (s *Service) CacheStats() models.CacheStats {
	keys := append(s.quotes.Keys(), s.history.Keys()...)
	sort.Strings(keys)
	return models.CacheStats{
		Entries: len(keys),
		Keys:    keys,
	}
}

// PurgeCache drops every entry
func (s *Service) PurgeCache() int {
	n := s.quotes.Purge() + s.history.Purge()
	s.logger.Info().Int("removed", n).Msg("Cache purged")
	return n
}

// SweepCache drops entries past their kind's freshness window
func (s *Service) SweepCache() int {
	n := s.quotes.Sweep(s.quoteTTL) + s.history.Sweep(s.historyTTL)
	s.metrics.Swept(n)
	if n > 0 {
		s.logger.Debug().Int("removed", n).Msg("Cache swept")
	}
	return n
}

// Ensure Service implements MarketDataService
var _ interfaces.MarketDataService = (*Service)(nil)
