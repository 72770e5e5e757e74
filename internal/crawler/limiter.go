package crawler

import (
	"context"
	"sync"
	"time"
)

// HostLimiter enforces the politeness delay per target host rather than as
// one global pause: requests to different hosts never wait on each other.
type HostLimiter struct {
	mu    sync.Mutex
	delay time.Duration

	// next maps a host to the earliest time the next request to it may start.
	next map[string]time.Time
}

// NewHostLimiter creates a limiter with the given per-host delay.
// A zero or negative delay disables waiting entirely.
func NewHostLimiter(delay time.Duration) *HostLimiter {
	return &HostLimiter{
		delay: delay,
		next:  make(map[string]time.Time),
	}
}

// Wait blocks until a request to host is allowed, or until the context is
// cancelled. The host's slot is reserved before sleeping, so concurrent
// callers queue up behind each other instead of piling into the same slot.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if l.delay <= 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	now := time.Now()
	start := l.next[host]
	if start.Before(now) {
		start = now
	}
	l.next[host] = start.Add(l.delay)
	l.mu.Unlock()

	wait := time.Until(start)
	if wait <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
