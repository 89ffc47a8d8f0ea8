package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/sink"
)

// SinkRuntime owns one sink backend's inputs: one bounded channel per
// parse worker (its "data input channel" in DrainState's terms), a
// fan-in goroutine per channel, and the single goroutine that actually
// drives the backend. Closing a producer's channel signals that worker
// is done sending to this sink; DrainState distinguishes that happening
// because the operator asked to drain (§4.8, S6) from it happening
// because a worker died unexpectedly.
type SinkRuntime struct {
	name        string
	backend     sink.Backend
	drain       *sink.DrainState
	ins         []chan *data.DataRecord
	inputClosed []sync.Once
	merged      chan *data.DataRecord
	closeOnce   sync.Once
	log         *slog.Logger
}

// NewSinkRuntime starts fan-in and consumer goroutines for backend,
// with one input channel of the given capacity per producer
// (numProducers is typically the parse worker count).
func NewSinkRuntime(name string, backend sink.Backend, capacity, numProducers int, sd *shutdown, log *slog.Logger) *SinkRuntime {
	if log == nil {
		log = slog.Default()
	}
	rt := &SinkRuntime{
		name:    name,
		backend: backend,
		drain:   sink.NewDrainState(numProducers),
		ins:         make([]chan *data.DataRecord, numProducers),
		inputClosed: make([]sync.Once, numProducers),
		merged:      make(chan *data.DataRecord, capacity),
		log:         log,
	}
	for i := range rt.ins {
		rt.ins[i] = make(chan *data.DataRecord, capacity)
		go rt.forward(rt.ins[i])
	}
	go func() {
		<-sd.drain.Done()
		rt.StartDraining()
	}()
	go rt.run(sd)
	return rt
}

// Input returns the channel producer i (a parse worker index) sends
// records to this sink on. The producer must close it (via
// CloseProducer) when it will never send again.
func (rt *SinkRuntime) Input(producer int) chan<- *data.DataRecord {
	return rt.ins[producer]
}

// CloseProducer closes producer i's channel into this sink. Safe to
// call more than once for the same producer (e.g. a restarted parse
// worker re-exiting) — only the first call actually closes.
func (rt *SinkRuntime) CloseProducer(producer int) {
	rt.inputClosed[producer].Do(func() { close(rt.ins[producer]) })
}

// StartDraining marks this sink as told to drain; its merged channel
// still only closes once every producer channel has also closed.
func (rt *SinkRuntime) StartDraining() {
	rt.drain.StartDraining()
}

func (rt *SinkRuntime) forward(in chan *data.DataRecord) {
	for rec := range in {
		rt.merged <- rec
	}
	if rt.drain.ChannelClosedIsDrained() == sink.Drained {
		rt.closeOnce.Do(func() { close(rt.merged) })
	}
}

func (rt *SinkRuntime) run(sd *shutdown) {
	ctx := context.Background()
	for {
		select {
		case <-sd.immediate.Done():
			_ = rt.backend.Stop(ctx)
			return
		case rec, ok := <-rt.merged:
			if !ok {
				_ = rt.backend.Stop(ctx)
				return
			}
			if err := rt.backend.SinkRecord(ctx, rec); err != nil {
				rt.log.Error("sink write failed", "sink", rt.name, "err", err)
			}
		}
	}
}
