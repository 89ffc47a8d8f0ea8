package engine

import (
	"context"
	"log/slog"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/source"
)

// PickerGroup is the "picker" task group (§4.4): one task per source
// Handle, reading SourceBatches and fanning them out to the parse pool
// by source_key hash. Derived sources (tagged wp.role=derived) run in
// their own group so primary sources can be stopped independently; if
// only derived sources exist, they are promoted to the primary group,
// per §4.4's last paragraph.
type PickerGroup struct {
	pool      *ParseWorkerPool
	lineMax   int
	speedLim  int
	stats     Stats
	log       *slog.Logger
}

// PickerConfig configures a PickerGroup.
type PickerConfig struct {
	Pool       *ParseWorkerPool
	LineMax    int // 0 = unbounded
	SpeedLimit int // events/sec, 0 = unlimited
	Stats      Stats
	Logger     *slog.Logger
}

func NewPickerGroup(cfg PickerConfig) *PickerGroup {
	if cfg.Stats == nil {
		cfg.Stats = noopStats{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &PickerGroup{pool: cfg.Pool, lineMax: cfg.LineMax, speedLim: cfg.SpeedLimit, stats: cfg.Stats, log: cfg.Logger}
}

// Run starts one task per handle, each subscribing to sd's two
// shutdown signals. Engine.StartPicking is what decides which handles
// go into the primary vs. derived PickerGroup (§4.4's last paragraph);
// this method itself just runs whatever handle set it is given.
func (g *PickerGroup) Run(sd *shutdown, handles []source.Handle) {
	for _, h := range handles {
		go g.runHandle(sd, h)
	}
}

func (g *PickerGroup) runHandle(sd *shutdown, h source.Handle) {
	limiter := newRateLimiter(g.speedLim)
	delivered := 0

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sd.immediate.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	defer cancel()

	batches, errc := h.Read(ctx)
	for {
		select {
		case <-sd.immediate.Done():
			return
		case err, ok := <-errc:
			if !ok {
				errc = nil
				continue
			}
			g.log.Error("picker read error", "source", h.Identifier(), "err", err)
		case batch, ok := <-batches:
			if !ok {
				return
			}
			if sd.draining() {
				// Drain: stop accepting further batches from this
				// source once a Drain has been signalled (§5 "pickers
				// stop reading"); whatever was already read above is
				// still forwarded below.
				g.forward(ctx, batch)
				return
			}
			if g.lineMax > 0 {
				remaining := g.lineMax - delivered
				if remaining <= 0 {
					return
				}
				if len(batch.Events) > remaining {
					batch.Events = batch.Events[:remaining]
				}
			}
			if err := limiter.WaitN(ctx, len(batch.Events)); err != nil {
				return
			}
			delivered += len(batch.Events)
			g.stats.Incr(StagePick, "all", len(batch.Events))
			g.forward(ctx, batch)
			if g.lineMax > 0 && delivered >= g.lineMax {
				return
			}
		}
	}
}

func (g *PickerGroup) forward(ctx context.Context, batch data.SourceBatch) {
	select {
	case g.pool.InputFor(batch.SourceKey) <- batch:
	case <-ctx.Done():
	}
}
