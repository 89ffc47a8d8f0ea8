package engine

import (
	"context"
	"log/slog"

	"github.com/wp-labs/wp-motor-sub001/pkg/sink"
	"github.com/wp-labs/wp-motor-sub001/pkg/source"
)

// Engine is the composition root for one running pipeline: it owns the
// shutdown broadcast pair and the three task groups built against it.
// Wiring (loading config, building connector instances, compiling OML
// models) is the caller's job — typically cmd/wpmotor's main, via the
// config loader; Engine only needs the already-built pieces.
type Engine struct {
	sd      *shutdown
	log     *slog.Logger
	pool    *ParseWorkerPool
	primary *PickerGroup
	derived *PickerGroup
}

// New creates an Engine whose shutdown signals are children of ctx —
// cancelling ctx itself is equivalent to an external Immediate.
func New(ctx context.Context, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{sd: newShutdown(ctx), log: log}
}

// NewSink builds a SinkRuntime bound to this engine's shutdown signals,
// for the wiring layer to place into a Dispatcher's sink map.
func (e *Engine) NewSink(name string, backend sink.Backend, capacity, numProducers int) *SinkRuntime {
	return NewSinkRuntime(name, backend, capacity, numProducers, e.sd, e.log)
}

// NewParsePool builds the parse task group bound to this engine.
func (e *Engine) NewParsePool(cfg ParseConfig) *ParseWorkerPool {
	if cfg.Logger == nil {
		cfg.Logger = e.log
	}
	e.pool = NewParseWorkerPool(cfg)
	return e.pool
}

// StartPicking starts the picker task group(s): primary handles in one
// group, derived (wp.role=derived) handles in a second so they can be
// stopped independently; if primary is empty, derived is promoted into
// it (§4.4's last paragraph).
func (e *Engine) StartPicking(cfg PickerConfig, primary, derived []source.Handle) {
	if len(primary) == 0 {
		primary, derived = derived, nil
	}
	e.primary = NewPickerGroup(cfg)
	e.primary.Run(e.sd, primary)
	if len(derived) > 0 {
		e.derived = NewPickerGroup(cfg)
		e.derived.Run(e.sd, derived)
	}
	e.pool.Run(e.sd)
}

// Shutdown broadcasts cmd to every task in every group. Pickers react
// first (they check at every suspension point); parse workers and
// sinks then wind down naturally as their upstream stops feeding them —
// this single shared signal is what produces the spec's "pickers then
// parse then sink" ordering without a separate staged handshake (§5).
func (e *Engine) Shutdown(cmd ShutdownCommand) {
	e.sd.Signal(cmd)
}
