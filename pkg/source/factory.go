package source

import (
	"context"

	"github.com/wp-labs/wp-motor-sub001/pkg/connector"
	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// svcHandle adapts a Svc into connector.SourceSvcIns, which only needs
// Stop() error.
type svcHandle struct{ Svc }

func (s svcHandle) Stop() error { return s.Svc.Stop() }

type factory struct {
	kind string
	def  data.ConnectorDef
}

func (f *factory) Kind() string           { return f.kind }
func (f *factory) Def() data.ConnectorDef { return f.def }

func (f *factory) ValidateSpec(spec data.SourceSpec) error { return nil }

func (f *factory) Build(ctx context.Context, spec data.SourceSpec) (connector.SourceSvcIns, error) {
	svc, err := NewSvc(ctx, spec)
	if err != nil {
		return nil, err
	}
	return svcHandle{svc}, nil
}

// RegisterAll installs every source kind this package provides into reg.
func RegisterAll(reg *connector.Registry) error {
	kinds := []string{"file", "syslog", "tcp", "channel", "kafka", "cdc"}
	for _, kind := range kinds {
		f := &factory{kind: kind, def: data.ConnectorDef{ID: kind, Kind: kind, Scope: data.ScopeSource}}
		if err := reg.RegisterSource(f); err != nil {
			return err
		}
	}
	return nil
}
