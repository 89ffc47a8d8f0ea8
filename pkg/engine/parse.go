package engine

import (
	"context"
	"log/slog"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/wpl"
)

// RuleKeyFunc resolves a record's rule key: from its own fields, from
// the source's tags, or from static configuration (§4.5 step 3). The
// default implementation checks a "rule_key" field, then a "rule_key"
// tag, leaving "" (infra-routed to miss) as the final fallback.
type RuleKeyFunc func(rec *data.DataRecord, tags *data.Tags) string

// DefaultRuleKey is the fallback RuleKeyFunc used when the engine
// isn't configured with a more specific resolver.
func DefaultRuleKey(rec *data.DataRecord, tags *data.Tags) string {
	if fs, ok := rec.Field("rule_key"); ok {
		return fs.AsField().Value.String()
	}
	if v, ok := tags.Get("rule_key"); ok {
		return v
	}
	return ""
}

// ParseWorkerPool is the "parse" task group (§4.5): a fixed pool of
// workers, one input channel each, consuming SourceBatches a picker
// fans out by hash(source_key). Grounded on pkg/stream/processor.go's
// processLoop (ctx-select, direct-call stage chain) generalized from
// one goroutine into N, with worker-index affinity substituting for
// the teacher's single shared channel.
type ParseWorkerPool struct {
	n           int
	inputs      []chan data.SourceBatch
	programs    map[string]*wpl.Program
	modelIndex  *ModelIndex
	dispatcher  *Dispatcher
	ruleKeyFunc RuleKeyFunc
	skipParse   bool
	stats       Stats
	log         *slog.Logger
}

// ParseConfig configures a ParseWorkerPool.
type ParseConfig struct {
	Workers     int
	QueueSize   int
	Programs    map[string]*wpl.Program // keyed by source_key
	ModelIndex  *ModelIndex
	Dispatcher  *Dispatcher
	RuleKeyFunc RuleKeyFunc
	SkipParse   bool
	Stats       Stats
	Logger      *slog.Logger
}

// NewParseWorkerPool builds and starts the pool's input channels (the
// worker goroutines themselves are started by Run, so they share the
// shutdown contexts of the task group they belong to).
func NewParseWorkerPool(cfg ParseConfig) *ParseWorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.RuleKeyFunc == nil {
		cfg.RuleKeyFunc = DefaultRuleKey
	}
	if cfg.Stats == nil {
		cfg.Stats = noopStats{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	p := &ParseWorkerPool{
		n:           cfg.Workers,
		inputs:      make([]chan data.SourceBatch, cfg.Workers),
		programs:    cfg.Programs,
		modelIndex:  cfg.ModelIndex,
		dispatcher:  cfg.Dispatcher,
		ruleKeyFunc: cfg.RuleKeyFunc,
		skipParse:   cfg.SkipParse,
		stats:       cfg.Stats,
		log:         cfg.Logger,
	}
	for i := range p.inputs {
		p.inputs[i] = make(chan data.SourceBatch, cfg.QueueSize)
	}
	return p
}

// WorkerCount reports the pool size, used by pickers to hash
// source_key into a worker index and by sinks to size their
// per-producer input slice.
func (p *ParseWorkerPool) WorkerCount() int { return p.n }

// InputFor returns the channel the picker for a given source_key must
// send SourceBatches to, for consistent worker affinity (§4.4 step 5).
func (p *ParseWorkerPool) InputFor(sourceKey string) chan<- data.SourceBatch {
	return p.inputs[hashKey(sourceKey)%uint32(p.n)]
}

// Run starts one goroutine per worker, restarting a worker on panic
// (RobustOn) rather than bringing down the whole pool, per §7.
func (p *ParseWorkerPool) Run(sd *shutdown) {
	for i := 0; i < p.n; i++ {
		p.startWorker(i, sd)
	}
}

func (p *ParseWorkerPool) startWorker(idx int, sd *shutdown) {
	go func() {
		for {
			crashed := p.runWorker(idx, sd)
			if !crashed {
				return
			}
			if CurrentRobustMode() != RobustOn {
				sd.Signal(ShutdownImmediate)
				return
			}
			p.log.Warn("parse worker restarted after panic", "worker", idx)
		}
	}()
}

func (p *ParseWorkerPool) runWorker(idx int, sd *shutdown) (crashed bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("parse worker panic", "worker", idx, "recover", r)
			crashed = true
		}
	}()
	ctx := context.Background()
	in := p.inputs[idx]
	for {
		select {
		case <-sd.immediate.Done():
			p.dispatcher.CloseProducer(idx)
			return false
		case batch, ok := <-in:
			if !ok {
				p.dispatcher.CloseProducer(idx)
				return false
			}
			if sd.draining() && len(in) == 0 {
				p.processBatch(ctx, idx, batch)
				p.dispatcher.CloseProducer(idx)
				return false
			}
			p.processBatch(ctx, idx, batch)
		}
	}
}

func (p *ParseWorkerPool) processBatch(ctx context.Context, worker int, batch data.SourceBatch) {
	program := p.programs[batch.SourceKey]
	for _, ev := range batch.Events {
		p.processEvent(ctx, worker, batch.SourceKey, program, ev)
	}
}

func (p *ParseWorkerPool) processEvent(ctx context.Context, worker int, sourceKey string, program *wpl.Program, ev data.SourceEvent) {
	rec := data.NewRecord()

	if p.skipParse || program == nil {
		rec.Push(data.Owned(data.DataField{Name: sourceKey, Meta: data.TypeChars, Value: data.Chars(ev.Raw.AsString())}))
	} else {
		fields, err := program.Run(ev.Raw.AsString())
		if err != nil {
			p.stats.Incr(StageParse, "ignore", 1)
			rec.Push(data.Owned(data.DataField{Name: sourceKey, Meta: data.TypeChars, Value: data.Chars(ev.Raw.AsString())}))
			p.dispatcher.DispatchError(ctx, worker, rec)
			return
		}
		for _, f := range fields {
			rec.Push(data.Owned(f))
		}
	}

	ruleKey := p.ruleKeyFunc(rec, ev.SourceTags)
	models := p.modelIndex.Select(ruleKey)
	if len(models) == 0 {
		p.stats.Incr(StageParse, "all", 1)
		p.dispatcher.Dispatch(ctx, worker, rec, ruleKey, "")
		return
	}
	for _, m := range models {
		out, err := m.Transform(rec)
		if err != nil {
			p.stats.Incr(StageParse, "ignore", 1)
			p.dispatcher.DispatchError(ctx, worker, rec)
			continue
		}
		p.stats.Incr(StageParse, "all", 1)
		p.dispatcher.Dispatch(ctx, worker, out, ruleKey, m.Name)
	}
}

// hashKey is FNV-1a over the source key, used only for worker
// affinity — collisions across workers are fine, determinism per key
// is what matters.
func hashKey(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
