package sink

import (
	"context"

	"github.com/wp-labs/wp-motor-sub001/pkg/connector"
	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// factory adapts one Backend constructor into a connector.SinkFactory,
// resolving the shared batching/format knobs out of a SinkSpec's
// params before handing the rest to the backend-specific constructor.
type factory struct {
	kind    string
	def     data.ConnectorDef
	build   func(cfg Config) (Backend, error)
}

func (f *factory) Kind() string               { return f.kind }
func (f *factory) Def() data.ConnectorDef     { return f.def }

func (f *factory) ValidateSpec(spec data.SinkSpec) error {
	return nil
}

func (f *factory) Build(ctx context.Context, spec data.SinkSpec) (connector.SinkIns, error) {
	cfg := Config{
		Name:           spec.Name,
		Format:         Format(stringParam(spec.Params, "fmt", "json")),
		BatchSize:      intParam(spec.Params, "batch_size", 1),
		FlushTimeoutMS: intParam(spec.Params, "flush_timeout_ms", 1000),
		Params:         spec.Params,
	}
	backend, err := f.build(cfg)
	if err != nil {
		return nil, err
	}
	return newBatchedBackend(backend, cfg), nil
}

// RegisterAll installs every sink kind this package provides into reg.
func RegisterAll(reg *connector.Registry) error {
	factories := []*factory{
		{kind: "file", def: data.ConnectorDef{ID: "file", Kind: "file", Scope: data.ScopeSink}, build: func(cfg Config) (Backend, error) { return NewFileBackend(cfg) }},
		{kind: "syslog", def: data.ConnectorDef{ID: "syslog", Kind: "syslog", Scope: data.ScopeSink}, build: func(cfg Config) (Backend, error) { return NewSyslogBackend(cfg) }},
		{kind: "tcp", def: data.ConnectorDef{ID: "tcp", Kind: "tcp", Scope: data.ScopeSink}, build: func(cfg Config) (Backend, error) { return NewTCPBackend(cfg) }},
		{kind: "blackhole", def: data.ConnectorDef{ID: "blackhole", Kind: "blackhole", Scope: data.ScopeSink}, build: func(cfg Config) (Backend, error) { return NewBlackholeBackend(cfg), nil }},
		{kind: "test_rescue", def: data.ConnectorDef{ID: "test_rescue", Kind: "test_rescue", Scope: data.ScopeSink}, build: func(cfg Config) (Backend, error) { return NewTestRescueBackend(cfg), nil }},
		{kind: "elasticsearch", def: data.ConnectorDef{ID: "elasticsearch", Kind: "elasticsearch", Scope: data.ScopeSink}, build: func(cfg Config) (Backend, error) { return NewElasticsearchBackend(cfg) }},
		{kind: "kafka", def: data.ConnectorDef{ID: "kafka", Kind: "kafka", Scope: data.ScopeSink}, build: func(cfg Config) (Backend, error) { return NewKafkaBackend(cfg) }},
	}
	for _, f := range factories {
		if err := reg.RegisterSink(f); err != nil {
			return err
		}
	}
	return nil
}
