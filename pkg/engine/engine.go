// Package engine wires the picker, parse, and sink task groups together
// into the end-to-end pipeline described in §4.4-§4.10 and run under the
// concurrency model of §5: bounded inter-stage queues, ordered shutdown
// (pickers, then parse, then sinks), and two shutdown commands per group,
// Immediate and Drain.
//
// Grounded on pkg/stream/processor.go's StreamProcessor (atomic state,
// context/cancel pair driving a select-loop, WaitGroup-tracked
// goroutines) generalized from one processor goroutine into three
// independently-shutdownable task groups. Where the teacher uses a
// single cancel() to stop everything at once, this package needs two
// distinct signals per group (Immediate vs Drain) — closing a channel
// (or cancelling a context) is Go's native broadcast primitive, so no
// separate condition-variable or pub/sub type is introduced for that;
// every task subscribes to the same two contexts the way every teacher
// goroutine already subscribes to one ctx.Done().
package engine

import (
	"context"
	"sync/atomic"
)

// RobustMode controls whether a worker panic restarts just that worker
// (robust) or brings down the owning task group (fail-fast), per §7.
type RobustMode int32

const (
	RobustOff RobustMode = iota
	RobustOn
)

// robustMode is process-global and set once at startup, matching the
// spec's "shared-resource policy: ... initialised once and thereafter
// immutable" (§5) — the engine config itself is read-only after Run.
var robustMode atomic.Int32

// SetRobustMode installs the process-wide robustness mode. Call once,
// before starting any task group.
func SetRobustMode(m RobustMode) { robustMode.Store(int32(m)) }

// CurrentRobustMode reads the process-wide robustness mode.
func CurrentRobustMode() RobustMode { return RobustMode(robustMode.Load()) }

// ShutdownCommand is one of the two commands a task group accepts (§5).
type ShutdownCommand int

const (
	// ShutdownImmediate drops in-flight work and exits at the next
	// suspension point.
	ShutdownImmediate ShutdownCommand = iota
	// ShutdownDrain stops reading new work but processes anything
	// already queued before exiting.
	ShutdownDrain
)

// shutdown is the broadcast pair every task in every group subscribes
// to: cancelling immediate preempts everyone; cancelling drain tells
// readers to stop accepting new input while letting queued work finish.
type shutdown struct {
	immediate context.Context
	cancelImm context.CancelFunc
	drain     context.Context
	cancelDrn context.CancelFunc
}

func newShutdown(parent context.Context) *shutdown {
	imm, cancelImm := context.WithCancel(parent)
	drn, cancelDrn := context.WithCancel(parent)
	return &shutdown{immediate: imm, cancelImm: cancelImm, drain: drn, cancelDrn: cancelDrn}
}

// Signal broadcasts a shutdown command to every subscriber of this
// group's contexts.
func (s *shutdown) Signal(cmd ShutdownCommand) {
	switch cmd {
	case ShutdownImmediate:
		s.cancelImm()
		s.cancelDrn()
	case ShutdownDrain:
		s.cancelDrn()
	}
}

// draining reports whether a Drain command has been issued.
func (s *shutdown) draining() bool {
	select {
	case <-s.drain.Done():
		return true
	default:
		return false
	}
}
