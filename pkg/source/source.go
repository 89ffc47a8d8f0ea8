// Package source implements source factories and handles: file, syslog,
// tcp, channel (core), plus kafka and cdc (added, domain stack). Every
// backend exposes the same uniform async read + stop contract so the
// pick stage in pkg/engine never special-cases a source kind.
//
// Grounded on the teacher's pkg/source package layout (one flat package,
// one file per kind, a NewSource factory switch), generalized from its
// map[string]any Record shape to the SourceEvent/SourceBatch model.
package source

import (
	"context"
	"fmt"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// Handle is what a picker task drives: identity, async batch read, and
// stop. One Svc may hold several Handles (e.g. syslog UDP with multiple
// instances sharing one port).
type Handle interface {
	Identifier() string
	Read(ctx context.Context) (<-chan data.SourceBatch, <-chan error)
	Stop() error
}

// Svc is what a connector factory builds: zero or more Handles, plus
// whatever acceptor lifecycle the kind owns (TCP/syslog-TCP hold a
// listener that must also be closed on Stop).
type Svc interface {
	Handles() []Handle
	Stop() error
}

// NewSvc builds a source Svc for spec from the registered builtin kinds.
func NewSvc(ctx context.Context, spec data.SourceSpec) (Svc, error) {
	switch spec.Kind {
	case "file":
		return NewFileSvc(spec)
	case "syslog":
		return NewSyslogSvc(ctx, spec)
	case "tcp":
		return NewTCPSvc(ctx, spec)
	case "channel":
		return NewChannelSvc(spec)
	case "kafka":
		return NewKafkaSvc(ctx, spec)
	case "cdc":
		return NewCDCSvc(ctx, spec)
	default:
		return nil, &UnsupportedSourceError{Kind: spec.Kind}
	}
}

// UnsupportedSourceError reports an unregistered source kind.
type UnsupportedSourceError struct {
	Kind string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("source: unsupported kind %q", e.Kind)
}
