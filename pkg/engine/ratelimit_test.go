package engine

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterUnlimitedNeverBlocks(t *testing.T) {
	r := newRateLimiter(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := r.WaitN(ctx, 1_000_000); err != nil {
		t.Fatalf("unlimited limiter blocked: %v", err)
	}
}

func TestRateLimiterAdmitsWithinCapacityImmediately(t *testing.T) {
	r := newRateLimiter(100)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := r.WaitN(ctx, 50); err != nil {
		t.Fatalf("expected no wait within capacity: %v", err)
	}
	if time.Since(start) > 20*time.Millisecond {
		t.Fatalf("expected near-instant admission, took %v", time.Since(start))
	}
}

func TestRateLimiterBlocksPastCapacity(t *testing.T) {
	r := newRateLimiter(10) // 10/sec
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// Drain the initial bucket.
	if err := r.WaitN(ctx, 10); err != nil {
		t.Fatalf("initial drain failed: %v", err)
	}
	start := time.Now()
	if err := r.WaitN(ctx, 5); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
		t.Fatalf("expected to wait roughly 500ms for 5 tokens at 10/sec, waited %v", elapsed)
	}
}

func TestRateLimiterCancelSafe(t *testing.T) {
	r := newRateLimiter(1)
	if err := r.WaitN(context.Background(), 1); err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.WaitN(ctx, 100); err == nil {
		t.Fatal("expected WaitN to return ctx.Err() on a cancelled context")
	}
}
