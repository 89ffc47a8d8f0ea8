package sink

import (
	"context"
	"sync"
	"time"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// Batcher precedes a sink backend with a bounded pending buffer. If an
// individual call's record count already exceeds BatchSize, the buffer
// is bypassed and records are sent directly — avoiding double buffering
// (§4.8 "Batching & bypass"). Otherwise records accumulate until
// BatchSize or FlushTimeout elapses, then are flushed as one call.
//
// Grounded on pkg/stream/sink.go's BufferedSink (buffer+mu, flushTimer,
// flush-on-batchSize-or-timer loop).
type Batcher struct {
	batchSize    int
	flushTimeout time.Duration
	writeBatch   func(ctx context.Context, recs []*data.DataRecord) error

	mu     sync.Mutex
	buffer []*data.DataRecord
	timer  *time.Timer
}

// NewBatcher builds a Batcher that calls writeBatch to flush.
func NewBatcher(batchSize int, flushTimeout time.Duration, writeBatch func(ctx context.Context, recs []*data.DataRecord) error) *Batcher {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Batcher{batchSize: batchSize, flushTimeout: flushTimeout, writeBatch: writeBatch}
}

// Add appends rec to the pending buffer, flushing immediately if the
// buffer has reached batchSize.
func (b *Batcher) Add(ctx context.Context, rec *data.DataRecord) error {
	b.mu.Lock()
	b.buffer = append(b.buffer, rec)
	full := len(b.buffer) >= b.batchSize
	if !full && b.timer == nil && b.flushTimeout > 0 {
		b.timer = time.AfterFunc(b.flushTimeout, func() { b.flushTimerFired(ctx) })
	}
	var toFlush []*data.DataRecord
	if full {
		toFlush = b.buffer
		b.buffer = nil
		b.stopTimerLocked()
	}
	b.mu.Unlock()
	if toFlush != nil {
		return b.writeBatch(ctx, toFlush)
	}
	return nil
}

// AddMany bypasses the pending buffer entirely when len(recs) >
// batchSize, sending directly to avoid double buffering; otherwise each
// record is added individually.
func (b *Batcher) AddMany(ctx context.Context, recs []*data.DataRecord) error {
	if len(recs) > b.batchSize {
		return b.writeBatch(ctx, recs)
	}
	for _, r := range recs {
		if err := b.Add(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (b *Batcher) flushTimerFired(ctx context.Context) {
	b.mu.Lock()
	toFlush := b.buffer
	b.buffer = nil
	b.timer = nil
	b.mu.Unlock()
	if len(toFlush) > 0 {
		_ = b.writeBatch(ctx, toFlush)
	}
}

func (b *Batcher) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Flush forces any pending records out immediately, used on Stop/drain.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	toFlush := b.buffer
	b.buffer = nil
	b.stopTimerLocked()
	b.mu.Unlock()
	if len(toFlush) == 0 {
		return nil
	}
	return b.writeBatch(ctx, toFlush)
}
