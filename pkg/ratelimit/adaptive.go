// Package ratelimit provides rate limiting for outbound API calls.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults for the adaptive limiter.
const (
	DefaultBaseDelay = 1000 * time.Millisecond
	DefaultMaxDelay  = 30000 * time.Millisecond
)

// AdaptiveLimiter enforces a minimum spacing between outbound requests and
// adapts that spacing to provider feedback: each rate-limit hit doubles the
// delay up to a ceiling, each success decays it by ×0.9 down to the base.
// A single shared instance serializes calls from all concurrent callers, so
// the throttle is global rather than per-request.
type AdaptiveLimiter struct {
	mu          sync.Mutex
	lastRequest time.Time
	delay       time.Duration
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewAdaptiveLimiter creates a limiter with the given base and max delays.
// Zero values fall back to the defaults (1s base, 30s ceiling).
func NewAdaptiveLimiter(baseDelay, maxDelay time.Duration) *AdaptiveLimiter {
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	return &AdaptiveLimiter{
		delay:     baseDelay,
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
	}
}

// Wait blocks until the caller may issue the next request. Slots are reserved
// under the lock so concurrent callers are spaced out one full delay apart.
func (l *AdaptiveLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	next := l.lastRequest.Add(l.delay)
	if next.Before(now) {
		next = now
	}
	l.lastRequest = next
	l.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnRateLimited doubles the current delay up to the ceiling.
func (l *AdaptiveLimiter) OnRateLimited() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.delay *= 2
	if l.delay > l.maxDelay {
		l.delay = l.maxDelay
	}
}

// OnSuccess decays the current delay by ×0.9, floored at the base delay.
func (l *AdaptiveLimiter) OnSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.delay = time.Duration(float64(l.delay) * 0.9)
	if l.delay < l.baseDelay {
		l.delay = l.baseDelay
	}
}

// Delay returns the current inter-request delay.
func (l *AdaptiveLimiter) Delay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delay
}
