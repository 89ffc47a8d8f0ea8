package sink

import (
	"context"
	"testing"
	"time"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

func TestBatcherFlushesAtBatchSize(t *testing.T) {
	var flushed [][]*data.DataRecord
	b := NewBatcher(2, time.Hour, func(ctx context.Context, recs []*data.DataRecord) error {
		flushed = append(flushed, recs)
		return nil
	})
	ctx := context.Background()
	_ = b.Add(ctx, data.NewRecord())
	if len(flushed) != 0 {
		t.Fatalf("expected no flush yet, got %d", len(flushed))
	}
	_ = b.Add(ctx, data.NewRecord())
	if len(flushed) != 1 || len(flushed[0]) != 2 {
		t.Fatalf("expected one flush of 2 records, got %v", flushed)
	}
}

func TestBatcherAddManyBypassesBufferWhenFull(t *testing.T) {
	var calls int
	b := NewBatcher(2, time.Hour, func(ctx context.Context, recs []*data.DataRecord) error {
		calls++
		return nil
	})
	recs := []*data.DataRecord{data.NewRecord(), data.NewRecord(), data.NewRecord()}
	if err := b.AddMany(context.Background(), recs); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected one direct write call bypassing the buffer, got %d", calls)
	}
}

func TestBatcherFlushSendsPartialBuffer(t *testing.T) {
	var flushed []*data.DataRecord
	b := NewBatcher(10, time.Hour, func(ctx context.Context, recs []*data.DataRecord) error {
		flushed = recs
		return nil
	})
	ctx := context.Background()
	_ = b.Add(ctx, data.NewRecord())
	if err := b.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if len(flushed) != 1 {
		t.Fatalf("expected flush to send the single pending record, got %v", flushed)
	}
}
