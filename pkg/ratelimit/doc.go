// Package ratelimit paces requests sent to Instagram.
//
// Pacing is off unless configured. When enabled, a token bucket from
// golang.org/x/time/rate spaces requests evenly and blocks in Wait:
//
//	limiter := ratelimit.PerMinute(30, 2)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
