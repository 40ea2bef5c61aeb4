package marketdata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/marketpulse/internal/clients/alphavantage"
	"github.com/bobmcallan/marketpulse/internal/common"
	"github.com/bobmcallan/marketpulse/internal/models"
)

// mockQuoteClient is a hand-written QuoteClient for service tests
type mockQuoteClient struct {
	mu          sync.Mutex
	quoteFn     func(ticker string) (*models.ProxyQuote, error)
	seriesFn    func(ticker string) ([]models.DailyBar, error)
	quoteCalls  int
	seriesCalls int
}

func (m *mockQuoteClient) GetGlobalQuote(_ context.Context, ticker string) (*models.ProxyQuote, error) {
	m.mu.Lock()
	m.quoteCalls++
	m.mu.Unlock()
	if m.quoteFn == nil {
		return nil, errors.New("not configured")
	}
	return m.quoteFn(ticker)
}

func (m *mockQuoteClient) GetDailySeries(_ context.Context, ticker string) ([]models.DailyBar, error) {
	m.mu.Lock()
	m.seriesCalls++
	m.mu.Unlock()
	if m.seriesFn == nil {
		return nil, errors.New("not configured")
	}
	return m.seriesFn(ticker)
}

// testClock is a settable clock shared by the service and its caches
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestService(client *mockQuoteClient, clock *testClock) *Service {
	if client == nil {
		return NewService(nil, common.NewSilentLogger(), WithClock(clock.Now))
	}
	return NewService(client, common.NewSilentLogger(), WithClock(clock.Now))
}

func proxyQuote(ticker string, price, change, pct float64) func(string) (*models.ProxyQuote, error) {
	return func(string) (*models.ProxyQuote, error) {
		return &models.ProxyQuote{Ticker: ticker, Price: price, Change: change, ChangePercent: pct}, nil
	}
}

// dailyBars builds n bars ending at end, most recent first, with close = start + index from oldest
func dailyBars(end time.Time, n int, start float64) []models.DailyBar {
	bars := make([]models.DailyBar, n)
	for i := 0; i < n; i++ {
		bars[i] = models.DailyBar{
			Date:  end.AddDate(0, 0, -i),
			Close: start + float64(n-1-i),
		}
	}
	return bars
}

func TestResolveTicker(t *testing.T) {
	assert.Equal(t, "SENSEXBEES.BSE", ResolveTicker("^BSESN"))
	assert.Equal(t, "NIFTYBEES.BSE", ResolveTicker("^NSEI"))
	assert.Equal(t, "RELIANCE.BSE", ResolveTicker("RELIANCE.BSE"))
	assert.Equal(t, "", ResolveTicker(""))
}

func TestProfileFor_DefaultIsNiftyScale(t *testing.T) {
	p := ProfileFor("TCS.BSE")
	assert.Equal(t, 21800.0, p.Base)
	assert.Equal(t, 21848.75, p.MockPrice)
	assert.Zero(t, p.MockChange)
	assert.Zero(t, p.MockChangePercent)
	assert.Equal(t, 0.6, p.Volatility)
}

func TestFetchStockData_RateLimitFallsBackToMock(t *testing.T) {
	clock := newTestClock()
	client := &mockQuoteClient{quoteFn: func(string) (*models.ProxyQuote, error) {
		return nil, &alphavantage.RateLimitError{Message: "Thank you for using Alpha Vantage!"}
	}}
	svc := newTestService(client, clock)

	q := svc.FetchStockData(context.Background(), "^BSESN")

	assert.Equal(t, "^BSESN", q.Symbol)
	assert.Equal(t, 72156.42, q.Price)
	assert.Equal(t, 156.42, q.Change)
	assert.Equal(t, 0.22, q.ChangePercent)
	assert.Equal(t, models.SourceMock, q.Source)

	cached, ok := svc.quotes.Get("quote_SENSEXBEES.BSE", common.FreshnessQuote)
	require.True(t, ok, "mock quote should be cached under the proxy ticker")
	assert.Equal(t, q, cached)
}

func TestFetchStockData_RescalesProxyPrice(t *testing.T) {
	clock := newTestClock()
	client := &mockQuoteClient{quoteFn: proxyQuote("NIFTYBEES.BSE", 100, 2, 2.04)}
	svc := newTestService(client, clock)

	q := svc.FetchStockData(context.Background(), "^NSEI")

	// factor = 21800 / 100 = 218
	assert.InDelta(t, 100*218.0, q.Price, 1e-6)
	assert.InDelta(t, 2*218.0, q.Change, 1e-6)
	assert.Equal(t, 2.04, q.ChangePercent)
	assert.Equal(t, models.SourceAlphaVantage, q.Source)
	assert.Equal(t, "^NSEI", q.Symbol)
}

func TestFetchStockData_SensexScale(t *testing.T) {
	clock := newTestClock()
	client := &mockQuoteClient{quoteFn: proxyQuote("SENSEXBEES.BSE", 800, -4, -0.5)}
	svc := newTestService(client, clock)

	q := svc.FetchStockData(context.Background(), "^BSESN")

	assert.InDelta(t, 72000, q.Price, 1e-6)
	assert.InDelta(t, -4*90.0, q.Change, 1e-6)
	assert.Equal(t, -0.5, q.ChangePercent)
}

func TestFetchStockData_CachedWithinWindow(t *testing.T) {
	clock := newTestClock()
	client := &mockQuoteClient{quoteFn: proxyQuote("NIFTYBEES.BSE", 250, 1, 0.4)}
	svc := newTestService(client, clock)
	ctx := context.Background()

	first := svc.FetchStockData(ctx, "^NSEI")
	clock.Advance(59 * time.Second)
	second := svc.FetchStockData(ctx, "^NSEI")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.quoteCalls)
}

func TestFetchStockData_RefetchesAfterExpiry(t *testing.T) {
	clock := newTestClock()
	client := &mockQuoteClient{quoteFn: proxyQuote("NIFTYBEES.BSE", 250, 1, 0.4)}
	svc := newTestService(client, clock)
	ctx := context.Background()

	svc.FetchStockData(ctx, "^NSEI")
	clock.Advance(61 * time.Second)
	svc.FetchStockData(ctx, "^NSEI")

	assert.Equal(t, 2, client.quoteCalls)
}

func TestFetchStockData_MockIsCachedToo(t *testing.T) {
	clock := newTestClock()
	client := &mockQuoteClient{quoteFn: func(string) (*models.ProxyQuote, error) {
		return nil, fmt.Errorf("failed to execute request: %w", context.DeadlineExceeded)
	}}
	svc := newTestService(client, clock)
	ctx := context.Background()

	first := svc.FetchStockData(ctx, "^NSEI")
	second := svc.FetchStockData(ctx, "^NSEI")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.quoteCalls, "fallback value should satisfy the next call")
}

func TestFetchStockData_UsesEntryWrittenDuringFailedFetch(t *testing.T) {
	clock := newTestClock()
	svc := newTestService(&mockQuoteClient{}, clock)

	concurrent := models.MarketQuote{Symbol: "^NSEI", Price: 22010.5, Change: 12, ChangePercent: 0.05, Source: models.SourceAlphaVantage}
	svc.client = &mockQuoteClient{quoteFn: func(string) (*models.ProxyQuote, error) {
		// another request fills the cache while this one is in flight
		svc.quotes.Set(QuoteKey(TickerNiftyProxy), concurrent)
		return nil, &alphavantage.RateLimitError{Message: "rate limited"}
	}}

	q := svc.FetchStockData(context.Background(), "^NSEI")
	assert.Equal(t, concurrent, q)
}

func TestFetchStockData_NoClientServesMock(t *testing.T) {
	svc := newTestService(nil, newTestClock())

	q := svc.FetchStockData(context.Background(), "^NSEI")
	assert.Equal(t, 21848.75, q.Price)
	assert.Equal(t, 48.75, q.Change)
	assert.Equal(t, 0.23, q.ChangePercent)

	u := svc.FetchStockData(context.Background(), "INFY.BSE")
	assert.Equal(t, 21848.75, u.Price)
	assert.Zero(t, u.Change)
	assert.Equal(t, "INFY.BSE", u.Symbol)
}

func TestFetchStockData_IndexMagnitude(t *testing.T) {
	cases := []struct {
		name   string
		client *mockQuoteClient
	}{
		{"live", &mockQuoteClient{quoteFn: proxyQuote("X", 3.7, 0.1, 1)}},
		{"mock", &mockQuoteClient{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(tc.client, newTestClock())
			sensex := svc.FetchStockData(context.Background(), "^BSESN")
			nifty := svc.FetchStockData(context.Background(), "^NSEI")
			assert.InDelta(t, 72000, sensex.Price, 1000)
			assert.InDelta(t, 21800, nifty.Price, 1000)
		})
	}
}

func TestFetchHistoricalData_LiveRescalesAndOrders(t *testing.T) {
	clock := newTestClock()
	end := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	bars := dailyBars(end, 45, 200)
	// hand them back in a scrambled order
	bars[0], bars[10] = bars[10], bars[0]

	client := &mockQuoteClient{seriesFn: func(string) ([]models.DailyBar, error) { return bars, nil }}
	svc := newTestService(client, clock)

	points := svc.FetchHistoricalData(context.Background(), "^NSEI")

	require.Len(t, points, HistoryLength)
	assert.Equal(t, "2026-03-09", points[len(points)-1].Date)
	assert.Equal(t, end.AddDate(0, 0, -29).Format("2006-01-02"), points[0].Date)
	// latest close maps exactly to the base
	assert.InDelta(t, 21800, points[len(points)-1].Price, 1e-6)

	latestClose := 200.0 + 44
	assert.InDelta(t, (200.0+15)*21800/latestClose, points[0].Price, 1e-6)

	for i := 1; i < len(points); i++ {
		assert.Less(t, points[i-1].Date, points[i].Date, "dates must be strictly ascending")
	}
}

func TestFetchHistoricalData_ShortSeries(t *testing.T) {
	end := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	client := &mockQuoteClient{seriesFn: func(string) ([]models.DailyBar, error) {
		return dailyBars(end, 5, 700), nil
	}}
	svc := newTestService(client, newTestClock())

	points := svc.FetchHistoricalData(context.Background(), "^BSESN")
	require.Len(t, points, 5)
	assert.InDelta(t, 72000, points[4].Price, 1e-6)
}

func TestFetchHistoricalData_FallbackMock(t *testing.T) {
	clock := newTestClock()
	client := &mockQuoteClient{seriesFn: func(string) ([]models.DailyBar, error) {
		return nil, fmt.Errorf("%w: empty Time Series (Daily)", alphavantage.ErrMalformedResponse)
	}}
	svc := newTestService(client, clock)

	points := svc.FetchHistoricalData(context.Background(), "^BSESN")

	require.Len(t, points, HistoryLength)
	assert.Equal(t, "2026-03-10", points[len(points)-1].Date)
	assert.Equal(t, "2026-02-09", points[0].Date)
	assert.Equal(t, 72156.42, points[0].Price)

	expected := GeneratePriceMovements(72156.42, HistoryLength, 0.8)
	for i, p := range points {
		assert.Equal(t, expected[i], p.Price)
	}

	_, ok := svc.history.Get("historical_SENSEXBEES.BSE", common.FreshnessHistory)
	assert.True(t, ok)
}

func TestFetchHistoricalData_NonPositiveLatestClose(t *testing.T) {
	end := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	bars := dailyBars(end, 10, 100)
	bars[0].Close = 0

	client := &mockQuoteClient{seriesFn: func(string) ([]models.DailyBar, error) { return bars, nil }}
	svc := newTestService(client, newTestClock())

	points := svc.FetchHistoricalData(context.Background(), "^NSEI")
	require.Len(t, points, HistoryLength)
	assert.Equal(t, 21848.75, points[0].Price, "expected the mock series")
}

func TestFetchHistoricalData_WindowAndCopy(t *testing.T) {
	clock := newTestClock()
	end := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	client := &mockQuoteClient{seriesFn: func(string) ([]models.DailyBar, error) {
		return dailyBars(end, 30, 100), nil
	}}
	svc := newTestService(client, clock)
	ctx := context.Background()

	first := svc.FetchHistoricalData(ctx, "^NSEI")
	first[0].Price = -1

	clock.Advance(4 * time.Minute)
	second := svc.FetchHistoricalData(ctx, "^NSEI")
	assert.NotEqual(t, -1.0, second[0].Price, "callers must not be able to mutate cached history")
	assert.Equal(t, 1, client.seriesCalls)

	clock.Advance(2 * time.Minute)
	svc.FetchHistoricalData(ctx, "^NSEI")
	assert.Equal(t, 2, client.seriesCalls)
}

func TestMockHistoryIsDeterministic(t *testing.T) {
	a := newTestService(nil, newTestClock()).FetchHistoricalData(context.Background(), "^NSEI")
	b := newTestService(nil, newTestClock()).FetchHistoricalData(context.Background(), "^NSEI")
	assert.Equal(t, a, b)
}

func TestGeneratePriceMovements(t *testing.T) {
	prices := GeneratePriceMovements(100, 4, 1)
	require.Len(t, prices, 4)
	assert.Equal(t, 100.0, prices[0])

	expected1 := 100 + 100*(math.Sin(0.2)*0.5/100) - 100*0.01
	assert.InDelta(t, expected1, prices[1], 1e-9)

	p := prices[1]
	expected2 := p + p*(math.Sin(0.4)*0.5/100) + p*0.01
	assert.InDelta(t, expected2, prices[2], 1e-9)

	assert.Equal(t, prices, GeneratePriceMovements(100, 4, 1))
	assert.Nil(t, GeneratePriceMovements(100, 0, 1))
	assert.Equal(t, []float64{50}, GeneratePriceMovements(50, 1, 0.8))
}

func TestStaticLists(t *testing.T) {
	svc := newTestService(nil, newTestClock())

	movers := svc.FetchMarketMovers()
	require.Len(t, movers.Gainers, 5)
	require.Len(t, movers.Losers, 5)
	assert.Equal(t, models.MarketMover{Ticker: "HDFC Bank", Price: "1475.60", ChangePercentage: "2.8"}, movers.Gainers[0])
	assert.Equal(t, "Wipro", movers.Losers[4].Ticker)

	movers.Gainers[0].Ticker = "changed"
	assert.Equal(t, "HDFC Bank", svc.FetchMarketMovers().Gainers[0].Ticker)

	funds := svc.FetchMutualFunds()
	require.Len(t, funds, 5)
	assert.Equal(t, "Quant Small Cap Fund", funds[0].Name)
	assert.Equal(t, 48.5, funds[0].OneYearReturn)
	assert.Equal(t, "₹12,456 Cr", funds[4].AUM)
}

func TestCheckUpstream(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		svc := newTestService(nil, newTestClock())
		_, err := svc.CheckUpstream(context.Background())
		assert.ErrorIs(t, err, ErrNoUpstream)
	})

	t.Run("reachable", func(t *testing.T) {
		client := &mockQuoteClient{quoteFn: proxyQuote(TickerSensexProxy, 801.25, 1, 0.1)}
		svc := newTestService(client, newTestClock())

		status, err := svc.CheckUpstream(context.Background())
		require.NoError(t, err)
		assert.True(t, status.OK)
		assert.Equal(t, TickerSensexProxy, status.Ticker)
		assert.Equal(t, 801.25, status.Price)
		assert.Empty(t, svc.CacheStats().Keys, "check must not populate the cache")
	})

	t.Run("rate limited", func(t *testing.T) {
		client := &mockQuoteClient{quoteFn: func(string) (*models.ProxyQuote, error) {
			return nil, &alphavantage.RateLimitError{Message: "slow down"}
		}}
		svc := newTestService(client, newTestClock())

		status, err := svc.CheckUpstream(context.Background())
		require.NoError(t, err)
		assert.False(t, status.OK)
		assert.Contains(t, status.Message, alphavantage.CategoryRateLimited)
	})
}

func TestCacheMaintenance(t *testing.T) {
	clock := newTestClock()
	svc := newTestService(nil, clock)
	ctx := context.Background()

	svc.FetchStockData(ctx, "^BSESN")
	svc.FetchHistoricalData(ctx, "^NSEI")

	stats := svc.CacheStats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, []string{"historical_NIFTYBEES.BSE", "quote_SENSEXBEES.BSE"}, stats.Keys)

	// quote window has passed, history has not
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, svc.SweepCache())
	assert.Equal(t, []string{"historical_NIFTYBEES.BSE"}, svc.CacheStats().Keys)

	assert.Equal(t, 1, svc.PurgeCache())
	assert.Zero(t, svc.CacheStats().Entries)
}

func TestWithTTLs(t *testing.T) {
	clock := newTestClock()
	client := &mockQuoteClient{quoteFn: proxyQuote("NIFTYBEES.BSE", 250, 1, 0.4)}
	svc := NewService(client, nil, WithClock(clock.Now), WithTTLs(5*time.Second, 0))
	ctx := context.Background()

	assert.Equal(t, common.FreshnessHistory, svc.historyTTL)

	svc.FetchStockData(ctx, "^NSEI")
	clock.Advance(6 * time.Second)
	svc.FetchStockData(ctx, "^NSEI")
	assert.Equal(t, 2, client.quoteCalls)
}

func TestConcurrentFetches(t *testing.T) {
	client := &mockQuoteClient{quoteFn: proxyQuote("NIFTYBEES.BSE", 250, 1, 0.4)}
	svc := newTestService(client, newTestClock())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := svc.FetchStockData(context.Background(), "^NSEI")
			assert.InDelta(t, 21800, q.Price, 1e-6)
		}()
	}
	wg.Wait()
}

func TestRenderIndexChart(t *testing.T) {
	svc := newTestService(nil, newTestClock())

	png, err := svc.RenderIndexChart(context.Background())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected PNG signature")
}

func TestRenderIndexChart_TooFewPoints(t *testing.T) {
	one := []models.HistoricalPoint{{Date: "2026-03-09", Price: 1}}
	_, err := renderIndexChart(one, one)
	assert.Error(t, err)
}

func TestRenderIndexChart_BadDate(t *testing.T) {
	good := []models.HistoricalPoint{{Date: "2026-03-08", Price: 1}, {Date: "2026-03-09", Price: 2}}
	bad := []models.HistoricalPoint{{Date: "08/03/2026", Price: 1}, {Date: "2026-03-09", Price: 2}}
	_, err := renderIndexChart(good, bad)
	assert.Error(t, err)
}
