package engine

import (
	"context"
	"sync"
	"time"
)

// rateLimiter is a simple token bucket used by pickers to enforce
// speed_limit (events per second; 0 means unlimited), §4.4 step 3.
// Grounded on the teacher's backoff-style retry timers in spirit
// (time.Timer driven, cancellation-safe) rather than copied from any
// one teacher file — no corpus dependency supplies a token bucket
// limiter scoped this narrowly, so it is hand-rolled per DESIGN.md.
type rateLimiter struct {
	mu         sync.Mutex
	limit      int // events/sec; 0 = unlimited
	tokens     float64
	last       time.Time
	capacity   float64
}

func newRateLimiter(eventsPerSec int) *rateLimiter {
	if eventsPerSec <= 0 {
		return &rateLimiter{limit: 0}
	}
	return &rateLimiter{
		limit:    eventsPerSec,
		tokens:   float64(eventsPerSec),
		capacity: float64(eventsPerSec),
		last:     time.Now(),
	}
}

// WaitN blocks (cancellation-safe) until n tokens are available, or
// returns ctx.Err() if ctx is done first. n is the batch size being
// admitted, since the picker rate-limits whole SourceBatches.
func (r *rateLimiter) WaitN(ctx context.Context, n int) error {
	if r.limit == 0 {
		return nil
	}
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.last).Seconds()
		r.tokens += elapsed * float64(r.limit)
		if r.tokens > r.capacity {
			r.tokens = r.capacity
		}
		r.last = now
		if r.tokens >= float64(n) {
			r.tokens -= float64(n)
			r.mu.Unlock()
			return nil
		}
		deficit := float64(n) - r.tokens
		wait := time.Duration(deficit / float64(r.limit) * float64(time.Second))
		r.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
