package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing requests
type Limiter interface {
	// Allow reports whether a request may proceed right now, consuming a token if so
	Allow() bool
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
}

// TokenBucket is a Limiter backed by golang.org/x/time/rate
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket allows capacity requests per period, refilling evenly
func NewTokenBucket(capacity int, period time.Duration) *TokenBucket {
	if capacity <= 0 {
		capacity = 1
	}
	if period <= 0 {
		period = time.Second
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Every(period/time.Duration(capacity)), capacity),
	}
}

// PerMinute builds a limiter for requestsPerMinute with the given burst.
// A non-positive rate disables pacing and returns nil.
func PerMinute(requestsPerMinute, burst int) Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), burst),
	}
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	return tb.limiter.Allow()
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	return tb.limiter.Wait(ctx)
}

// Limit returns the refill rate in tokens per second
func (tb *TokenBucket) Limit() rate.Limit {
	return tb.limiter.Limit()
}

// Burst returns the bucket capacity
func (tb *TokenBucket) Burst() int {
	return tb.limiter.Burst()
}
