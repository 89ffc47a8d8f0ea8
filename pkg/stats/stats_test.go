package stats

import (
	"testing"
	"time"
)

func TestIncrMatchesStageAndTarget(t *testing.T) {
	s := New([]StatReq{
		{Stage: Pick, Name: "all-pick", Target: TargetAll},
		{Stage: Parse, Name: "all-parse", Target: TargetAll},
		{Stage: Pick, Name: "ignored-only", Target: TargetIgnore},
		{Stage: Pick, Name: "item-billing", Target: TargetItem, Item: "billing"},
	}, 0, false, nil)

	s.Incr(Pick, "all", 3)
	s.Incr(Pick, "ignore", 2)
	s.Incr(Pick, "billing", 5)
	s.Incr(Parse, "all", 1)

	dump := s.Dump()
	counts := make(map[string]int64, len(dump))
	for _, snap := range dump {
		counts[snap.Req.Name] = snap.Count
	}

	if got, want := counts["all-pick"], int64(3+2+5); got != want {
		t.Fatalf("all-pick count = %d, want %d", got, want)
	}
	if got, want := counts["all-parse"], int64(1); got != want {
		t.Fatalf("all-parse count = %d, want %d", got, want)
	}
	if got, want := counts["ignored-only"], int64(2); got != want {
		t.Fatalf("ignored-only count = %d, want %d", got, want)
	}
	if got, want := counts["item-billing"], int64(5); got != want {
		t.Fatalf("item-billing count = %d, want %d", got, want)
	}
}

func TestObserveBuildsTopNFrequencyTable(t *testing.T) {
	s := New([]StatReq{
		{Stage: Sink, Name: "by-host", Target: TargetAll, Collect: []string{"host"}, TopN: 2},
	}, 0, false, nil)

	counts := map[string]int{"a": 5, "b": 3, "c": 3, "d": 1}
	for host, n := range counts {
		for i := 0; i < n; i++ {
			s.Observe(Sink, "host", host)
		}
	}
	// Fields not in Collect are ignored.
	s.Observe(Sink, "other", "noise")

	dump := s.Dump()
	if len(dump) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(dump))
	}
	top := dump[0].TopN["host"]
	if len(top) != 2 {
		t.Fatalf("expected top-2 entries, got %d: %+v", len(top), top)
	}
	if top[0].Value != "a" || top[0].Count != 5 {
		t.Fatalf("expected top entry a=5, got %+v", top[0])
	}
	// b and c tie at 3; deterministic tie-break is ascending value.
	if top[1].Value != "b" || top[1].Count != 3 {
		t.Fatalf("expected second entry b=3 (tie broken by value), got %+v", top[1])
	}
	if _, ok := dump[0].TopN["other"]; ok {
		t.Fatalf("did not expect a table for uncollected field 'other'")
	}
}

func TestObserveIgnoresReqsWithoutCollect(t *testing.T) {
	s := New([]StatReq{
		{Stage: Sink, Name: "plain", Target: TargetAll},
	}, 0, false, nil)

	s.Observe(Sink, "host", "a")
	dump := s.Dump()
	if len(dump[0].TopN) != 0 {
		t.Fatalf("expected no top-N tables for a StatReq with no Collect fields, got %+v", dump[0].TopN)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := New(nil, 10*time.Millisecond, true, nil)
	s.Stop()
	s.Stop() // must not panic on double Stop
}

func TestDumpWithNoRequestsIsEmpty(t *testing.T) {
	s := New(nil, 0, false, nil)
	s.Incr(Pick, "all", 1) // no matching StatReq, must be a no-op
	if dump := s.Dump(); len(dump) != 0 {
		t.Fatalf("expected empty dump with no configured StatReqs, got %+v", dump)
	}
}
