package sink

import (
	"context"
	"time"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// batchedBackend wraps a Backend with a Batcher so single-record sinks
// coalesce into batch-sized writes, bypassing the buffer whenever a
// caller already hands it a full batch.
type batchedBackend struct {
	inner Backend
	b     *Batcher
}

func newBatchedBackend(inner Backend, cfg Config) Backend {
	if cfg.BatchSize <= 1 {
		return inner
	}
	bb := &batchedBackend{inner: inner}
	bb.b = NewBatcher(cfg.BatchSize, time.Duration(cfg.FlushTimeoutMS)*time.Millisecond, inner.SinkRecords)
	return bb
}

func (b *batchedBackend) SinkRecord(ctx context.Context, rec *data.DataRecord) error {
	return b.b.Add(ctx, rec)
}

func (b *batchedBackend) SinkRecords(ctx context.Context, recs []*data.DataRecord) error {
	return b.b.AddMany(ctx, recs)
}

func (b *batchedBackend) Stop(ctx context.Context) error {
	if err := b.b.Flush(ctx); err != nil {
		return err
	}
	return b.inner.Stop(ctx)
}

func (b *batchedBackend) Reconnect(ctx context.Context) error {
	return b.inner.Reconnect(ctx)
}
