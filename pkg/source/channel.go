package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// channelRegistry maps a channel source's name to the sender external
// code pushes events through, e.g. embedded tests or a "derived" CDC
// source feeding a downstream channel source (§4.2).
var channelRegistry = struct {
	mu       sync.Mutex
	senders  map[string]chan data.SourceEvent
}{senders: make(map[string]chan data.SourceEvent)}

// PushEvent sends ev to the named channel source's registered sender. It
// returns an error if no channel source of that name is open.
func PushEvent(name string, ev data.SourceEvent) error {
	channelRegistry.mu.Lock()
	ch, ok := channelRegistry.senders[name]
	channelRegistry.mu.Unlock()
	if !ok {
		return fmt.Errorf("source: no channel source registered as %q", name)
	}
	ch <- ev
	return nil
}

// ChannelSvc is the in-memory producer source (§4.2), typically used by
// embedded tests and by sources that derive events for a downstream
// pipeline rather than reading them from an external endpoint.
type ChannelSvc struct {
	h *channelHandle
}

type channelHandle struct {
	name       string
	capacity   int
	batchLines int
	ch         chan data.SourceEvent
}

func NewChannelSvc(spec data.SourceSpec) (*ChannelSvc, error) {
	capacity := intParam(spec.Params, "capacity", 1000)
	ch := make(chan data.SourceEvent, capacity)

	channelRegistry.mu.Lock()
	channelRegistry.senders[spec.Name] = ch
	channelRegistry.mu.Unlock()

	return &ChannelSvc{h: &channelHandle{
		name:       spec.Name,
		capacity:   capacity,
		batchLines: intParam(spec.Params, "batch_lines", 128),
		ch:         ch,
	}}, nil
}

func (s *ChannelSvc) Handles() []Handle { return []Handle{s.h} }

func (s *ChannelSvc) Stop() error {
	channelRegistry.mu.Lock()
	delete(channelRegistry.senders, s.h.name)
	channelRegistry.mu.Unlock()
	return nil
}

func (h *channelHandle) Identifier() string { return h.name }
func (h *channelHandle) Stop() error        { return nil }

func (h *channelHandle) Read(ctx context.Context) (<-chan data.SourceBatch, <-chan error) {
	out := make(chan data.SourceBatch)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		var batch []data.SourceEvent
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-h.ch:
				if !ok {
					if len(batch) > 0 {
						out <- data.SourceBatch{SourceKey: h.name, Events: batch}
					}
					return
				}
				batch = append(batch, ev)
				if len(batch) >= h.batchLines {
					select {
					case out <- data.SourceBatch{SourceKey: h.name, Events: batch}:
						batch = nil
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out, errc
}
