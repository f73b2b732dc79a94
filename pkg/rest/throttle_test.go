package rest

import (
	"context"
	"testing"
	"time"
)

func TestThrottle_FirstRequestNeverWaits(t *testing.T) {
	throttle := newThrottle(1) // one request per second

	start := time.Now()
	if err := throttle.wait(context.Background()); err != nil {
		t.Fatalf("wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("first wait took %v, want no wait", elapsed)
	}
}

func TestThrottle_EnforcesMinimumSpacing(t *testing.T) {
	const rate = 50 // requests per second
	throttle := newThrottle(rate)

	const attempts = 4
	start := time.Now()
	for i := 0; i < attempts; i++ {
		if err := throttle.wait(context.Background()); err != nil {
			t.Fatalf("wait() error = %v", err)
		}
		throttle.record()
	}
	elapsed := time.Since(start)

	// N attempts at rate R take at least (N-1)/R of wall-clock time.
	minimum := time.Duration(float64(attempts-1) / rate * float64(time.Second))
	if elapsed < minimum {
		t.Errorf("%d attempts took %v, want at least %v", attempts, elapsed, minimum)
	}
}

func TestThrottle_NoWaitWhenIntervalAlreadyElapsed(t *testing.T) {
	throttle := newThrottle(100) // 10ms spacing
	throttle.record()
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	if err := throttle.wait(context.Background()); err != nil {
		t.Fatalf("wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Millisecond {
		t.Errorf("wait after elapsed interval took %v, want no wait", elapsed)
	}
}

func TestThrottle_WaitHonorsContextCancellation(t *testing.T) {
	throttle := newThrottle(1) // 1s spacing
	throttle.record()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := throttle.wait(ctx)
	if err == nil {
		t.Fatal("wait() expected context error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancelled wait took %v, should abort promptly", elapsed)
	}
}

func TestThrottle_RecordOnlyMovesForward(t *testing.T) {
	throttle := newThrottle(10)

	throttle.record()
	first := throttle.lastRequest
	throttle.record()
	second := throttle.lastRequest

	if second.Before(first) {
		t.Error("lastRequest went backwards")
	}
}
