package rest

import (
	"context"
	"sync"
	"time"
)

// throttle enforces a minimum spacing between successive requests made
// through one client. It is a leaky bucket of size one, not a token bucket:
// there is no burst allowance, so the achieved rate never exceeds the
// configured maximum and drops below it when requests are slow.
type throttle struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastRequest time.Time
}

func newThrottle(maxRequestsPerSecond int) *throttle {
	return &throttle{
		minInterval: time.Duration(float64(time.Second) / float64(maxRequestsPerSecond)),
	}
}

// wait blocks until minInterval has elapsed since the last recorded request.
// The first request never waits. Cancelling the context aborts the wait.
func (t *throttle) wait(ctx context.Context) error {
	t.mu.Lock()
	last := t.lastRequest
	t.mu.Unlock()

	if last.IsZero() {
		return nil
	}

	remaining := t.minInterval - time.Since(last)
	if remaining <= 0 {
		return nil
	}

	throttleWaitSeconds.Observe(remaining.Seconds())

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// record stores the completion time of the most recent attempt. Called after
// every request, whatever the outcome; the stored timestamp only moves
// forward.
func (t *throttle) record() {
	t.mu.Lock()
	if now := time.Now(); now.After(t.lastRequest) {
		t.lastRequest = now
	}
	t.mu.Unlock()
}
