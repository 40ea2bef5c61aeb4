// Package alphavantage provides a client for the Alpha Vantage quote API
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/marketpulse/internal/common"
	"github.com/bobmcallan/marketpulse/internal/interfaces"
	"github.com/bobmcallan/marketpulse/internal/metrics"
	"github.com/bobmcallan/marketpulse/internal/models"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per minute, the free-tier allowance
)

// Upstream function names
const (
	FunctionGlobalQuote = "GLOBAL_QUOTE"
	FunctionDailySeries = "TIME_SERIES_DAILY"
)

// Client implements the QuoteClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the request budget in requests per minute.
// Zero or negative disables client-side limiting.
func WithRateLimit(requestsPerMinute int) ClientOption {
	return func(c *Client) {
		if requestsPerMinute <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMetrics records every upstream call
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}
	WithRateLimit(DefaultRateLimit)(c)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// response covers every shape the query endpoint returns. Only the fields
// relevant to the requested function are populated.
type response struct {
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
	ErrorMessage string                       `json:"Error Message"`
	GlobalQuote  map[string]string            `json:"Global Quote"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
}

// get performs a budgeted GET against /query and decodes the body.
// Rate-limit notices and error payloads are turned into typed errors.
func (c *Client) get(ctx context.Context, function string, params url.Values) (*response, error) {
	start := time.Now()
	resp, err := c.do(ctx, function, params)
	c.metrics.ObserveUpstream(function, ErrorCategory(err), time.Since(start))
	return resp, err
}

func (c *Client) do(ctx context.Context, function string, params url.Values) (*response, error) {
	// A spent budget fails fast; callers fall back instead of queueing behind the limiter
	if !c.limiter.Allow() {
		return nil, &RateLimitError{Local: true}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("function", function).Str("symbol", params.Get("symbol")).Msg("Alpha Vantage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Function:   function,
		}
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w: %v", ErrMalformedResponse, err)
	}

	if msg := firstNonEmpty(out.Note, out.Information); msg != "" {
		c.logger.Warn().Str("function", function).Str("message", msg).Msg("Alpha Vantage API message")
		return nil, &RateLimitError{Message: msg}
	}
	if out.ErrorMessage != "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: out.ErrorMessage, Function: function}
	}

	return &out, nil
}

// GetGlobalQuote retrieves the latest quote for a ticker. The response must
// carry price, change and change percent, and the price must be positive.
func (c *Client) GetGlobalQuote(ctx context.Context, ticker string) (*models.ProxyQuote, error) {
	params := url.Values{}
	params.Set("symbol", ticker)

	resp, err := c.get(ctx, FunctionGlobalQuote, params)
	if err != nil {
		return nil, err
	}

	q := resp.GlobalQuote
	if len(q) == 0 {
		return nil, fmt.Errorf("%w: empty Global Quote for %s", ErrMalformedResponse, ticker)
	}

	price, err := parseField(q, "05. price")
	if err != nil {
		return nil, err
	}
	change, err := parseField(q, "09. change")
	if err != nil {
		return nil, err
	}
	changePct, err := parseField(q, "10. change percent")
	if err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: non-positive price %v for %s", ErrMalformedResponse, price, ticker)
	}

	return &models.ProxyQuote{
		Ticker:        ticker,
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
	}, nil
}

// GetDailySeries retrieves the compact daily series for a ticker, most recent
// first. Rows with an unparseable date or close are skipped.
func (c *Client) GetDailySeries(ctx context.Context, ticker string) ([]models.DailyBar, error) {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("outputsize", "compact")

	resp, err := c.get(ctx, FunctionDailySeries, params)
	if err != nil {
		return nil, err
	}

	if len(resp.TimeSeries) == 0 {
		return nil, fmt.Errorf("%w: empty Time Series (Daily) for %s", ErrMalformedResponse, ticker)
	}

	bars := make([]models.DailyBar, 0, len(resp.TimeSeries))
	for day, values := range resp.TimeSeries {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		closePrice, err := parseField(values, "4. close")
		if err != nil {
			continue
		}
		bars = append(bars, models.DailyBar{Date: date, Close: closePrice})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no usable rows in daily series for %s", ErrMalformedResponse, ticker)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.After(bars[j].Date)
	})

	return bars, nil
}

// parseField reads a numeric string field, tolerating a trailing percent sign.
func parseField(fields map[string]string, name string) (float64, error) {
	raw := strings.TrimSpace(fields[name])
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %q", ErrMalformedResponse, name)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrMalformedResponse, name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: field %q is not finite", ErrMalformedResponse, name)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Ensure Client implements QuoteClient
var _ interfaces.QuoteClient = (*Client)(nil)
