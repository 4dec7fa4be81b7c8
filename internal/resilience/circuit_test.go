package resilience

import (
	"context"
	"testing"
	"time"
)

func TestBreakerOpensOnFailureRatio(t *testing.T) {
	b := NewBreaker(4, 0.5, time.Minute).WithTarget("test")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		b.Report(ctx, true)
	}
	for i := 0; i < 2; i++ {
		b.Report(ctx, false)
	}
	if b.Allow(ctx) {
		t.Fatal("expected breaker to be open after 50% failures")
	}
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	b := NewBreaker(2, 0.5, 10*time.Millisecond).WithTarget("recover")
	ctx := context.Background()

	b.Report(ctx, false)
	b.Report(ctx, false)
	if b.Allow(ctx) {
		t.Fatal("expected open breaker")
	}

	time.Sleep(15 * time.Millisecond)
	if !b.Allow(ctx) {
		t.Fatal("expected half-open probe to be allowed")
	}
	b.Report(ctx, true)
	if !b.Allow(ctx) {
		t.Fatal("expected breaker closed after successful probe")
	}
}

func TestBackoffGrows(t *testing.T) {
	base := 100 * time.Millisecond
	if Backoff(base, 1, 0) != base {
		t.Fatal("attempt 1 should equal base")
	}
	if Backoff(base, 3, 0) != 4*base {
		t.Fatal("attempt 3 should be 4x base")
	}
}
