package search

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute matches the free-tier pacing devflow assumes.
const DefaultRequestsPerMinute = 10

type rateLimited struct {
	next    Searcher
	limiter *rate.Limiter
}

// RateLimited wraps next so that at most perMinute searches start per
// minute, with bursts up to perMinute. Callers block until a token is
// available or ctx is done. perMinute <= 0 returns next unchanged.
func RateLimited(next Searcher, perMinute int) Searcher {
	if perMinute <= 0 {
		return next
	}
	return &rateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

func (r *rateLimited) Search(ctx context.Context, query string, num int) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Search(ctx, query, num)
}
