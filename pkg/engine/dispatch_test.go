package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/router"
	"github.com/wp-labs/wp-motor-sub001/pkg/sink"
)

// recordingBackend is a minimal sink.Backend fake that appends every
// record it receives, for dispatch assertions.
type recordingBackend struct {
	mu   sync.Mutex
	recs []*data.DataRecord
}

func (b *recordingBackend) SinkRecord(ctx context.Context, rec *data.DataRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recs = append(b.recs, rec)
	return nil
}
func (b *recordingBackend) SinkRecords(ctx context.Context, recs []*data.DataRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recs = append(b.recs, recs...)
	return nil
}
func (b *recordingBackend) Stop(ctx context.Context) error      { return nil }
func (b *recordingBackend) Reconnect(ctx context.Context) error { return nil }

func (b *recordingBackend) snapshot() []*data.DataRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*data.DataRecord, len(b.recs))
	copy(out, b.recs)
	return out
}

func newTestSink(t *testing.T, sd *shutdown, numProducers int) (*recordingBackend, *SinkRuntime) {
	t.Helper()
	b := &recordingBackend{}
	rt := NewSinkRuntime("test", b, 16, numProducers, sd, nil)
	return b, rt
}

func waitForCount(t *testing.T, b *recordingBackend, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(b.snapshot()) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d records, got %d", n, len(b.snapshot()))
}

func TestDispatchRoutesToMatchingRuleGroup(t *testing.T) {
	sd := newShutdown(context.Background())
	businessBackend, businessRT := newTestSink(t, sd, 1)
	missBackend, missRT := newTestSink(t, sd, 1)

	r, err := router.NewRouter([]router.Group{
		{Name: "billing", Rule: []string{"/app/billing"}, Sinks: []data.SinkSpec{{Name: "business"}}},
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	d := NewDispatcher(r, map[string]*SinkRuntime{"business": businessRT, InfraMiss: missRT}, nil)

	rec := data.NewRecord()
	d.Dispatch(context.Background(), 0, rec, "/app/billing", "")
	waitForCount(t, businessBackend, 1)
	if len(missBackend.snapshot()) != 0 {
		t.Fatalf("expected nothing routed to miss, got %d", len(missBackend.snapshot()))
	}

	other := data.NewRecord()
	d.Dispatch(context.Background(), 0, other, "/app/unrelated", "")
	waitForCount(t, missBackend, 1)
}

func TestDispatchFilterExcludesSink(t *testing.T) {
	sd := newShutdown(context.Background())
	backend, rt := newTestSink(t, sd, 1)
	residueBackend, residueRT := newTestSink(t, sd, 1)

	r, err := router.NewRouter([]router.Group{
		{Name: "g", Rule: []string{"/app/*"}, Sinks: []data.SinkSpec{{Name: "s", Filter: map[string]any{"kind": "const", "value": "false"}, FilterExpect: true}}},
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	filters := map[string]FilterFunc{"s": func(*data.DataRecord) (bool, error) { return false, nil }}
	d := NewDispatcher(r, map[string]*SinkRuntime{"s": rt, InfraResidue: residueRT}, filters)

	d.Dispatch(context.Background(), 0, data.NewRecord(), "/app/x", "")
	waitForCount(t, residueBackend, 1)
	if len(backend.snapshot()) != 0 {
		t.Fatalf("expected filtered sink to receive nothing, got %d", len(backend.snapshot()))
	}
}

func TestDispatchMonitorTeesEveryRecord(t *testing.T) {
	sd := newShutdown(context.Background())
	businessBackend, businessRT := newTestSink(t, sd, 1)
	monitorBackend, monitorRT := newTestSink(t, sd, 1)

	r, err := router.NewRouter([]router.Group{
		{Name: "g", Rule: []string{"/app/*"}, Sinks: []data.SinkSpec{{Name: "business"}}},
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	d := NewDispatcher(r, map[string]*SinkRuntime{"business": businessRT, InfraMonitor: monitorRT}, nil)

	d.Dispatch(context.Background(), 0, data.NewRecord(), "/app/x", "")
	waitForCount(t, businessBackend, 1)
	waitForCount(t, monitorBackend, 1)
}

func TestSinkRuntimeDrainsQueuedRecordsBeforeExit(t *testing.T) {
	sd := newShutdown(context.Background())
	backend := &recordingBackend{}
	rt := NewSinkRuntime("drain", backend, 16, 1, sd, nil)

	for i := 0; i < 5; i++ {
		rt.Input(0) <- data.NewRecord()
	}
	sd.Signal(ShutdownDrain)
	rt.CloseProducer(0)

	waitForCount(t, backend, 5)
}

var _ sink.Backend = (*recordingBackend)(nil)
