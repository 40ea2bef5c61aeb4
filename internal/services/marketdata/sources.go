package marketdata

import "context"

// Source names reported in metrics and logs
const (
	sourceCache = "cache"
	sourceLive  = "alphavantage"
	sourceMock  = "mock"
)

// source is one strategy in a fallback chain. fetch reports false when it
// has nothing to offer, and the chain moves on.
type source[T any] struct {
	name  string
	fetch func(ctx context.Context) (T, bool)
}

// firstOf tries each source in order and returns the first value produced,
// along with the name of the source that produced it.
func firstOf[T any](ctx context.Context, sources ...source[T]) (T, string) {
	for _, s := range sources {
		if v, ok := s.fetch(ctx); ok {
			return v, s.name
		}
	}
	var zero T
	return zero, ""
}
