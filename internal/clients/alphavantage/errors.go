package alphavantage

import (
	"context"
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when a response lacks the fields a call
// needs or carries values that cannot be parsed.
var ErrMalformedResponse = errors.New("malformed response")

// APIError represents a non-OK HTTP status or an "Error Message" payload
type APIError struct {
	StatusCode int
	Message    string
	Function   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d, function: %s)", e.Message, e.StatusCode, e.Function)
}

// RateLimitError is returned when the upstream answers with a Note or
// Information notice, or when the client's own request budget is spent.
type RateLimitError struct {
	Message string
	Local   bool
}

func (e *RateLimitError) Error() string {
	if e.Local {
		return "Alpha Vantage rate limit: local request budget exhausted"
	}
	return fmt.Sprintf("Alpha Vantage rate limit: %s", e.Message)
}

// Error categories used in logs and metrics
const (
	CategoryRateLimited = "rate_limited"
	CategoryMalformed   = "malformed"
	CategoryAPIError    = "api_error"
	CategoryCanceled    = "canceled"
	CategoryTransport   = "transport"
)

// ErrorCategory classifies an error returned by the client.
func ErrorCategory(err error) string {
	var rl *RateLimitError
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &rl):
		return CategoryRateLimited
	case errors.Is(err, ErrMalformedResponse):
		return CategoryMalformed
	case errors.As(err, &apiErr):
		return CategoryAPIError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryCanceled
	default:
		return CategoryTransport
	}
}
