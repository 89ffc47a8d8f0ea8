package sink

import (
	"context"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// Backend is the uniform handle the pipeline runtime drives: a sink
// backend implements record sinking plus stop/reconnect control
// (§4.8's AsyncRecordSink/AsyncRawDataSink/AsyncCtrl capability sets,
// collapsed into one Go interface since Go has no trait-object-style
// capability composition — the same collapsing the teacher itself
// performs for its single Sink interface in this file, originally
// Open/Write/Flush/Close/Name/Stats).
type Backend interface {
	SinkRecord(ctx context.Context, rec *data.DataRecord) error
	SinkRecords(ctx context.Context, recs []*data.DataRecord) error
	Stop(ctx context.Context) error
	Reconnect(ctx context.Context) error
}

// Config is the resolved, per-binding sink configuration shared by every
// backend constructor.
type Config struct {
	Name           string
	Format         Format
	BatchSize      int
	FlushTimeoutMS int
	Params         map[string]any
	Drain          *DrainState
}

func stringParam(p map[string]any, key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

func intParam(p map[string]any, key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

func boolParam(p map[string]any, key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}
