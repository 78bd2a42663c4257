package dispatch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimitCheck returns a check that allows each caller a burst of
// invocations, refilling at the given rate. Useful as a global check to keep
// one user from flooding the command pipeline.
func RateLimitCheck(limit rate.Limit, burst int) CheckFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(ctx context.Context, inv *Invocation) CheckResult {
		mu.Lock()
		lim, ok := limiters[inv.Event.AuthorID]
		if !ok {
			lim = rate.NewLimiter(limit, burst)
			limiters[inv.Event.AuthorID] = lim
		}
		mu.Unlock()

		if !lim.Allow() {
			return DenyReason("rate limited")
		}
		return Allow()
	}
}
