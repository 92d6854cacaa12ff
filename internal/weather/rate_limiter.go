package weather

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedSource wraps a Source so that current and forecast calls share
// the provider quota.
type RateLimitedSource struct {
	source  Source
	limiter *rate.Limiter
}

// NewRateLimited allows rps requests per second with bursts of up to burst.
func NewRateLimited(source Source, rps float64, burst int) *RateLimitedSource {
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedSource) Current(ctx context.Context, city string) (Current, bool, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Current{}, false, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.Current(ctx, city)
}

func (r *RateLimitedSource) Forecast(ctx context.Context, lat, lon float64) ([]ForecastDay, bool, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.Forecast(ctx, lat, lon)
}

var _ Source = (*RateLimitedSource)(nil)
