package engine

import (
	"context"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/router"
)

// Infra sink names always addressable regardless of user-configured
// groups (§4.6 step 4).
const (
	InfraDefault = "default"
	InfraMiss    = "miss"
	InfraError   = "error"
	InfraResidue = "residue"
	InfraMonitor = "monitor"
)

// FilterFunc evaluates a per-sink boolean OML pipeline against a
// record, returning the outcome compared against the sink binding's
// FilterExpect. Compiling data.SinkSpec.Filter's way table into a
// FilterFunc is the composition root's job (cmd/wpmotor, via
// config.BuildEvaluator); the dispatcher only needs the compiled
// predicate.
type FilterFunc func(rec *data.DataRecord) (bool, error)

// Dispatcher resolves a transformed record to its sink bindings via the
// rule router, applies per-sink filters, and forwards to each sink's
// runtime, routing to infra sinks per §4.6 step 4's rules.
type Dispatcher struct {
	router       *router.Router
	sinks        map[string]*SinkRuntime
	filters      map[string]FilterFunc
}

// NewDispatcher builds a Dispatcher over the given route table, sink
// runtimes (keyed by sink spec name, including infra sinks that are
// configured), and an optional filter set (keyed by sink spec name).
func NewDispatcher(rt *router.Router, sinks map[string]*SinkRuntime, filters map[string]FilterFunc) *Dispatcher {
	if filters == nil {
		filters = map[string]FilterFunc{}
	}
	return &Dispatcher{router: rt, sinks: sinks, filters: filters}
}

// Dispatch routes one transformed record, produced for ruleKey and
// modelName (modelName is "" when no OML model matched), to its sink
// bindings. producer identifies the parse worker doing the sending, so
// it sends on that worker's dedicated channel into each sink runtime.
func (d *Dispatcher) Dispatch(ctx context.Context, producer int, rec *data.DataRecord, ruleKey, modelName string) {
	if mon, ok := d.sinks[InfraMonitor]; ok {
		d.sendTo(ctx, producer, mon, rec)
	}

	groups := d.router.Route(ruleKey, modelName)
	if len(groups) == 0 {
		d.sendInfra(ctx, producer, InfraMiss, rec)
		return
	}

	sentAny := false
	for _, g := range groups {
		for _, s := range g.Sinks {
			if f, has := d.filters[s.Name]; has {
				ok, err := f(rec)
				if err != nil {
					d.sendInfra(ctx, producer, InfraError, rec)
					continue
				}
				if ok != s.FilterExpect {
					continue
				}
			}
			rt, has := d.sinks[s.Name]
			if !has {
				continue
			}
			d.sendTo(ctx, producer, rt, rec)
			sentAny = true
		}
	}
	if !sentAny {
		d.sendInfra(ctx, producer, InfraResidue, rec)
	}
}

// DispatchError routes a record (or the raw event wrapped into one)
// that failed parse or transform to the error infra sink, if
// configured; otherwise to the default infra sink, if configured;
// otherwise it is silently dropped (§4.5, §4.6).
func (d *Dispatcher) DispatchError(ctx context.Context, producer int, rec *data.DataRecord) {
	d.sendInfra(ctx, producer, InfraError, rec)
}

func (d *Dispatcher) sendInfra(ctx context.Context, producer int, name string, rec *data.DataRecord) {
	if rt, ok := d.sinks[name]; ok {
		d.sendTo(ctx, producer, rt, rec)
		return
	}
	if name != InfraDefault {
		if rt, ok := d.sinks[InfraDefault]; ok {
			d.sendTo(ctx, producer, rt, rec)
		}
	}
}

// CloseProducer tells every sink that producer (a parse worker index)
// will never send again, so DrainState can retire that input channel.
func (d *Dispatcher) CloseProducer(producer int) {
	for _, rt := range d.sinks {
		rt.CloseProducer(producer)
	}
}

func (d *Dispatcher) sendTo(ctx context.Context, producer int, rt *SinkRuntime, rec *data.DataRecord) {
	select {
	case rt.Input(producer) <- rec:
	case <-ctx.Done():
	}
}
