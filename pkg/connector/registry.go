// Package connector implements the connector registry and factory
// machinery: two scope-keyed kind->factory maps (source and sink, plus a
// knowledge pseudo-scope), the parameter resolver, and ${VAR}
// substitution. Grounded on the struct-decode-then-validate shape of
// pkg/config/config.go in the teacher and the recursive map-walking
// helper in pkg/schema/schema.go.
package connector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
)

// SourceFactory builds source handles from a resolved SourceSpec.
type SourceFactory interface {
	Kind() string
	ValidateSpec(spec data.SourceSpec) error
	Build(ctx context.Context, spec data.SourceSpec) (SourceSvcIns, error)
	Def() data.ConnectorDef
}

// SinkFactory builds sink backends from a resolved SinkSpec.
type SinkFactory interface {
	Kind() string
	ValidateSpec(spec data.SinkSpec) error
	Build(ctx context.Context, spec data.SinkSpec) (SinkIns, error)
	Def() data.ConnectorDef
}

// SourceSvcIns and SinkIns are minimal marker interfaces; concrete
// handle/backend contracts live in pkg/source and pkg/sink to avoid an
// import cycle (those packages import connector, not vice versa, except
// through these narrow interfaces satisfied structurally).
type SourceSvcIns interface {
	Stop() error
}

type SinkIns interface {
	Stop(ctx context.Context) error
}

// Registry holds kind->factory maps for one scope.
type Registry struct {
	mu       sync.RWMutex
	sources  map[string]SourceFactory
	sinks    map[string]SinkFactory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]SourceFactory),
		sinks:   make(map[string]SinkFactory),
	}
}

func (r *Registry) RegisterSource(f SourceFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[f.Kind()]; exists {
		return errs.NewConfigError("", fmt.Sprintf("source kind %q already registered", f.Kind()))
	}
	r.sources[f.Kind()] = f
	return nil
}

func (r *Registry) RegisterSink(f SinkFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sinks[f.Kind()]; exists {
		return errs.NewConfigError("", fmt.Sprintf("sink kind %q already registered", f.Kind()))
	}
	r.sinks[f.Kind()] = f
	return nil
}

func (r *Registry) Source(kind string) (SourceFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.sources[kind]
	return f, ok
}

func (r *Registry) Sink(kind string) (SinkFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.sinks[kind]
	return f, ok
}

// SourceKinds returns registered source kinds in sorted order, for
// diagnostics and tests.
func (r *Registry) SourceKinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources))
	for k := range r.sources {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SinkKinds returns registered sink kinds in sorted order.
func (r *Registry) SinkKinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sinks))
	for k := range r.sinks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
