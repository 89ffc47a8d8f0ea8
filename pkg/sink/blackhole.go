package sink

import (
	"context"
	"sync/atomic"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// BlackholeBackend discards every record. Used for load testing pipeline
// stages upstream of sinking without paying for real I/O (§4.8 "blackhole").
// Grounded on pkg/stream/sink.go's ConsoleSink, with the console write
// dropped and a counter kept instead.
type BlackholeBackend struct {
	count atomic.Uint64
}

func NewBlackholeBackend(cfg Config) *BlackholeBackend {
	return &BlackholeBackend{}
}

func (b *BlackholeBackend) SinkRecord(ctx context.Context, rec *data.DataRecord) error {
	b.count.Add(1)
	return nil
}

func (b *BlackholeBackend) SinkRecords(ctx context.Context, recs []*data.DataRecord) error {
	b.count.Add(uint64(len(recs)))
	return nil
}

func (b *BlackholeBackend) Stop(ctx context.Context) error      { return nil }
func (b *BlackholeBackend) Reconnect(ctx context.Context) error { return nil }

// Count returns the number of records discarded so far.
func (b *BlackholeBackend) Count() uint64 { return b.count.Load() }

// TestRescueBackend retains every record it receives in memory, for use
// in end-to-end test harnesses that need to assert on sunk records
// without standing up a real backend (§4.8 "test_rescue").
type TestRescueBackend struct {
	mu   chan struct{}
	recs []*data.DataRecord
}

func NewTestRescueBackend(cfg Config) *TestRescueBackend {
	return &TestRescueBackend{mu: make(chan struct{}, 1)}
}

func (b *TestRescueBackend) lock()   { b.mu <- struct{}{} }
func (b *TestRescueBackend) unlock() { <-b.mu }

func (b *TestRescueBackend) SinkRecord(ctx context.Context, rec *data.DataRecord) error {
	b.lock()
	defer b.unlock()
	b.recs = append(b.recs, rec)
	return nil
}

func (b *TestRescueBackend) SinkRecords(ctx context.Context, recs []*data.DataRecord) error {
	b.lock()
	defer b.unlock()
	b.recs = append(b.recs, recs...)
	return nil
}

func (b *TestRescueBackend) Stop(ctx context.Context) error      { return nil }
func (b *TestRescueBackend) Reconnect(ctx context.Context) error { return nil }

// Records returns a snapshot of everything sunk so far.
func (b *TestRescueBackend) Records() []*data.DataRecord {
	b.lock()
	defer b.unlock()
	out := make([]*data.DataRecord, len(b.recs))
	copy(out, b.recs)
	return out
}
