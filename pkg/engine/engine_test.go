package engine

import (
	"context"
	"testing"
	"time"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/oml"
	"github.com/wp-labs/wp-motor-sub001/pkg/router"
	"github.com/wp-labs/wp-motor-sub001/pkg/source"
	"github.com/wp-labs/wp-motor-sub001/pkg/wpl"
)

// TestEndToEndChannelSourceToSink exercises pick -> parse -> route ->
// sink for a single channel source feeding a single business sink,
// mirroring the engine's intended runtime composition (S1-style flow).
func TestEndToEndChannelSourceToSink(t *testing.T) {
	program, err := wpl.NewProgram([]struct {
		Name    string
		Pattern string
		Type    data.DataType
	}{{Name: "line", Pattern: "$", Type: data.TypeChars}})
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}

	r, err := router.NewRouter([]router.Group{
		{Name: "business", Rule: []string{"/app/test"}, Sinks: []data.SinkSpec{{Name: "out"}}},
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	e := New(context.Background(), nil)
	backend := &recordingBackend{}
	outRT := e.NewSink("out", backend, 16, 2)
	dispatcher := NewDispatcher(r, map[string]*SinkRuntime{"out": outRT}, nil)

	modelIndex := NewModelIndex([]*oml.ObjModel{
		{Name: "passthrough", Rules: []string{"/app/*"}, Stub: true},
	})

	pool := e.NewParsePool(ParseConfig{
		Workers:    2,
		Programs:   map[string]*wpl.Program{"chan1": program},
		ModelIndex: modelIndex,
		Dispatcher: dispatcher,
		RuleKeyFunc: func(rec *data.DataRecord, tags *data.Tags) string {
			return "/app/test"
		},
	})
	_ = pool

	svc, err := source.NewChannelSvc(data.SourceSpec{Name: "chan1", Kind: "channel", Params: map[string]any{"batch_lines": 1}})
	if err != nil {
		t.Fatalf("NewChannelSvc: %v", err)
	}

	e.StartPicking(PickerConfig{Pool: pool}, svc.Handles(), nil)

	for i := 0; i < 3; i++ {
		if err := source.PushEvent("chan1", data.SourceEvent{
			EventID:   data.NextID(),
			SourceKey: "chan1",
			Raw:       data.RawDataString("hello world"),
		}); err != nil {
			t.Fatalf("PushEvent: %v", err)
		}
	}

	waitForCount(t, backend, 3)

	for _, rec := range backend.snapshot() {
		fs, ok := rec.Field("line")
		if !ok {
			t.Fatalf("expected transformed record to carry a 'line' field, got %+v", rec)
		}
		if got := fs.AsField().Value.String(); got != "hello world" {
			t.Fatalf("field value = %q, want %q", got, "hello world")
		}
	}

	e.Shutdown(ShutdownImmediate)
	_ = svc.Stop()
	time.Sleep(10 * time.Millisecond)
}
