// Package sink implements sink backends (file, syslog, tcp, blackhole,
// test_rescue, and the added elasticsearch/kafka kinds), their record
// formatting, batching, and drain state machine.
//
// Grounded on pkg/stream/sink.go's BaseSink/BufferedSink batch+flush-
// timer structure in the teacher, generalized from its mostly-stub
// backends into real I/O, plus github.com/cenkalti/backoff/v4 for the
// reconnect policy named in §5.
package sink

import "sync"

// DrainPhase is the result of asking a DrainState whether its owning
// sink may now exit its main loop.
type DrainPhase int

const (
	// Pending: draining was requested but at least one input channel
	// remains open.
	Pending DrainPhase = iota
	// AllClosed: every input channel closed, but draining was never
	// requested — this distinguishes "upstream disappeared" from an
	// operator-commanded stop (§4.8).
	AllClosed
	// Drained: draining was requested and every input channel has since
	// closed — the sink may exit.
	Drained
)

// DrainState tracks how many of a sink's input channels remain open and
// whether the operator has asked it to drain.
type DrainState struct {
	mu            sync.Mutex
	draining      bool
	openChannels  int
}

// NewDrainState initializes state for a sink with the given number of
// data input channels.
func NewDrainState(openChannels int) *DrainState {
	return &DrainState{openChannels: openChannels}
}

// StartDraining sets the draining flag. Idempotent.
func (d *DrainState) StartDraining() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draining = true
}

// ChannelClosedIsDrained must be called whenever one input channel
// closes. It returns Pending, AllClosed, or Drained depending on
// whether draining had already been requested and whether any channels
// remain open (S6).
func (d *DrainState) ChannelClosedIsDrained() DrainPhase {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openChannels > 0 {
		d.openChannels--
	}
	switch {
	case d.openChannels > 0:
		return Pending
	case d.draining:
		return Drained
	default:
		return AllClosed
	}
}

// IsDraining reports whether draining has been requested.
func (d *DrainState) IsDraining() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draining
}
