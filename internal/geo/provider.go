package geo

import (
	"context"

	"golang.org/x/time/rate"
)

// DistanceProvider resolves a road distance for a single coordinate pair.
// Implementations may call an external routing service; errors are tolerated
// per pair by the matrix builder, which falls back to the geometric estimate.
type DistanceProvider interface {
	RoadDistanceMeters(ctx context.Context, from, to Point) (int, error)
}

// RateLimitedProvider wraps a provider with a client-side request rate limit,
// for upstream services that cap request concurrency.
type RateLimitedProvider struct {
	inner   DistanceProvider
	limiter *rate.Limiter
}

func NewRateLimitedProvider(inner DistanceProvider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{inner: inner, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (p *RateLimitedProvider) RoadDistanceMeters(ctx context.Context, from, to Point) (int, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return p.inner.RoadDistanceMeters(ctx, from, to)
}
