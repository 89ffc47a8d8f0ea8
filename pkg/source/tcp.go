package source

import (
	"context"
	"fmt"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
	"github.com/wp-labs/wp-motor-sub001/pkg/tcpframe"
)

// TCPSvc is the generic TCP source (§4.2 "TCP source (generic)"): one
// acceptor, line/len/auto framing, fanned out to a single Handle whose
// Read stream is the acceptor's decoded message stream.
type TCPSvc struct {
	acc *tcpframe.Acceptor
	h   *tcpHandle
}

type tcpHandle struct {
	key string
	acc *tcpframe.Acceptor
}

func NewTCPSvc(ctx context.Context, spec data.SourceSpec) (*TCPSvc, error) {
	addr := stringParam(spec.Params, "addr", "0.0.0.0")
	port := intParam(spec.Params, "port", 0)
	if port == 0 {
		return nil, errs.NewConfigError(spec.Name, "tcp source requires params.port")
	}
	mode, err := parseFraming(stringParam(spec.Params, "framing", "auto"))
	if err != nil {
		return nil, errs.NewConfigError(spec.Name, err.Error())
	}
	maxRecv := intParam(spec.Params, "tcp_recv_bytes", 10*1024*1024)
	instances := intParam(spec.Params, "instances", 1)
	acc, err := tcpframe.NewAcceptor(addr, port, mode, maxRecv, instances)
	if err != nil {
		return nil, errs.NewConfigError(spec.Name, err.Error())
	}
	return &TCPSvc{acc: acc, h: &tcpHandle{key: spec.Name, acc: acc}}, nil
}

func parseFraming(s string) (tcpframe.FramingMode, error) {
	switch s {
	case "auto", "":
		return tcpframe.FramingAuto, nil
	case "line":
		return tcpframe.FramingLine, nil
	case "len":
		return tcpframe.FramingLen, nil
	default:
		return 0, fmt.Errorf("invalid framing %q", s)
	}
}

func (s *TCPSvc) Handles() []Handle { return []Handle{s.h} }
func (s *TCPSvc) Stop() error       { return s.acc.Stop() }

func (h *tcpHandle) Identifier() string { return h.key }

func (h *tcpHandle) Read(ctx context.Context) (<-chan data.SourceBatch, <-chan error) {
	out := make(chan data.SourceBatch)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		msgs := h.acc.Messages()
		accErrs := h.acc.Errors()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-accErrs:
				if !ok {
					return
				}
				select {
				case errc <- err:
				default:
				}
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev := data.SourceEvent{
					EventID:   data.NextID(),
					SourceKey: h.key,
					Raw:       data.RawDataBytes(msg.Body),
				}
				select {
				case out <- data.SourceBatch{SourceKey: h.key, Events: []data.SourceEvent{ev}}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, errc
}

func (h *tcpHandle) Stop() error { return nil }
