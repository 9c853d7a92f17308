// Package ratelimit provides the per-minute request governor used by the
// enrichment batch. It is a coarse rolling-window counter, not a token
// bucket: the batch is single-threaded and only needs to stay under the
// API plan ceiling.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// WindowLimiter admits at most max calls per rolling window. When the
// ceiling is reached before the window elapses, Acquire sleeps until the
// window boundary and then opens a fresh window.
type WindowLimiter struct {
	mu          sync.Mutex
	max         int
	window      time.Duration
	count       int
	windowStart time.Time

	// Injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewWindowLimiter builds a limiter for max calls per window.
// A non-positive max or window is a configuration error: a zero ceiling
// would block forever, so it is rejected up front.
func NewWindowLimiter(max int, window time.Duration) (*WindowLimiter, error) {
	if max <= 0 {
		return nil, fmt.Errorf("rate limit ceiling must be positive, got %d", max)
	}
	if window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %s", window)
	}
	return &WindowLimiter{
		max:    max,
		window: window,
		now:    time.Now,
		sleep:  sleepContext,
	}, nil
}

// Acquire blocks until one more call is permissible, then consumes a slot.
// It returns early with the context error if ctx is cancelled during the
// wait.
func (l *WindowLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.windowStart.IsZero() {
		l.windowStart = now
	}
	if now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 0
	}

	if l.count >= l.max {
		wait := l.window - now.Sub(l.windowStart)
		if wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
		l.windowStart = l.now()
		l.count = 0
	}

	l.count++
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
