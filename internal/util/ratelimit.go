package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces calls evenly so that at most perMinute of them go
// through in any given minute. It is cheaper than a token bucket for the
// batch-fetch pattern here, where requests arrive in a tight loop and only
// the spacing matters.
type RateLimiter struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time // earliest time the next call may proceed
}

// NewRateLimiter creates a RateLimiter allowing perMinute calls per minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{interval: time.Minute / time.Duration(perMinute)}
}

// Wait blocks until the caller's slot arrives or ctx is cancelled. The first
// call never blocks.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	now := time.Now()
	wait := rl.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	rl.next = now.Add(wait + rl.interval)
	rl.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
