// Package stats implements StatRequires (§4.10): a startup-built set of
// per-stage counters plus, for counters that configure collect fields,
// a top-N frequency table, and a periodic dump timer when stat_print
// is enabled.
//
// Grounded on pkg/stream/processor.go's updateStats(func(*ProcessorStats))
// pattern (mutex-guarded mutator closures over one stats struct),
// generalized from one processor's fixed counter set to an arbitrary,
// configuration-driven list of StatReq entries.
package stats

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/wp-labs/wp-motor-sub001/pkg/engine"
)

// Stage names the task group a StatReq belongs to — an alias of
// engine.StageKind so a *StatRequires satisfies engine.Stats without
// a second, parallel enum.
type Stage = engine.StageKind

const (
	Pick  = engine.StagePick
	Parse = engine.StageParse
	Sink  = engine.StageSink
)

// TargetKind selects which records a StatReq counts.
type TargetKind int

const (
	TargetAll TargetKind = iota
	TargetIgnore
	TargetItem
)

// StatReq is one requested counter, built from configuration at
// startup (§4.10).
type StatReq struct {
	Stage   Stage
	Name    string
	Target  TargetKind
	Item    string // meaningful when Target == TargetItem
	Collect []string
	TopN    int
}

func (r StatReq) matchesTarget(target string) bool {
	switch r.Target {
	case TargetAll:
		return true
	case TargetIgnore:
		return target == "ignore"
	case TargetItem:
		return target == r.Item
	default:
		return false
	}
}

type counter struct {
	count int64
	freq  map[string]map[string]int64 // field -> value -> count
}

// StatRequires is the single aggregator built at startup from every
// configured StatReq; every stage reports through its Incr/Observe
// methods via the engine.Stats interface it satisfies structurally.
type StatRequires struct {
	mu       sync.Mutex
	reqs     []StatReq
	counters map[*StatReq]*counter

	statSec   time.Duration
	statPrint bool
	log       *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds a StatRequires over reqs. When statPrint is true, a
// background timer dumps the aggregate every statSec (default 60s).
func New(reqs []StatReq, statSec time.Duration, statPrint bool, log *slog.Logger) *StatRequires {
	if statSec <= 0 {
		statSec = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	s := &StatRequires{
		reqs:      reqs,
		counters:  make(map[*StatReq]*counter, len(reqs)),
		statSec:   statSec,
		statPrint: statPrint,
		log:       log,
		stopCh:    make(chan struct{}),
	}
	for i := range s.reqs {
		s.counters[&s.reqs[i]] = &counter{freq: make(map[string]map[string]int64)}
	}
	if statPrint {
		go s.printLoop()
	}
	return s
}

// Incr increments every StatReq matching (stage, target) by n.
func (s *StatRequires) Incr(stage Stage, target string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reqs {
		r := &s.reqs[i]
		if r.Stage != stage {
			continue
		}
		if !r.matchesTarget(target) {
			continue
		}
		s.counters[r].count += int64(n)
	}
}

// Observe feeds one (field, value) occurrence into every matching
// StatReq's top-N frequency table, for StatReqs whose Collect list
// includes field.
func (s *StatRequires) Observe(stage Stage, field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reqs {
		r := &s.reqs[i]
		if r.Stage != stage || len(r.Collect) == 0 {
			continue
		}
		collected := false
		for _, f := range r.Collect {
			if f == field {
				collected = true
				break
			}
		}
		if !collected {
			continue
		}
		c := s.counters[r]
		table := c.freq[field]
		if table == nil {
			table = make(map[string]int64)
			c.freq[field] = table
		}
		table[value]++
	}
}

// Snapshot is a point-in-time read of one StatReq's counter plus its
// top-N frequency table per collected field.
type Snapshot struct {
	Req   StatReq
	Count int64
	TopN  map[string][]FreqEntry
}

// FreqEntry is one (value, count) pair in a top-N table, sorted by
// descending count.
type FreqEntry struct {
	Value string
	Count int64
}

// Dump returns a snapshot of every configured StatReq.
func (s *StatRequires) Dump() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, 0, len(s.reqs))
	for i := range s.reqs {
		r := s.reqs[i]
		c := s.counters[&s.reqs[i]]
		snap := Snapshot{Req: r, Count: c.count, TopN: make(map[string][]FreqEntry)}
		for field, table := range c.freq {
			snap.TopN[field] = topN(table, r.TopN)
		}
		out = append(out, snap)
	}
	return out
}

func topN(table map[string]int64, n int) []FreqEntry {
	entries := make([]FreqEntry, 0, len(table))
	for v, c := range table {
		entries = append(entries, FreqEntry{Value: v, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func (s *StatRequires) printLoop() {
	t := time.NewTicker(s.statSec)
	defer t.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-t.C:
			for _, snap := range s.Dump() {
				s.log.Info("stat", "stage", snap.Req.Stage, "name", snap.Req.Name, "count", snap.Count)
			}
		}
	}
}

// Stop ends the periodic print loop, if running. Idempotent.
func (s *StatRequires) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
