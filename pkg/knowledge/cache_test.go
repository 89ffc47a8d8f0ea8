package knowledge

import (
	"context"
	"testing"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

type countingStore struct {
	calls int
	rows  []KnowledgeRow
}

func (s *countingStore) Lookup(ctx context.Context, table string, where map[string]data.DataValue) ([]KnowledgeRow, error) {
	s.calls++
	return s.rows, nil
}

func (s *countingStore) Close() error { return nil }

func TestStaticStoreCachesConfiguredTables(t *testing.T) {
	inner := &countingStore{rows: []KnowledgeRow{{"id": data.Integer(1)}}}
	s := NewStaticStore(inner, []string{"countries"})
	where := map[string]data.DataValue{"code": data.Chars("KR")}

	if _, err := s.Lookup(context.Background(), "countries", where); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Lookup(context.Background(), "countries", where); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected one underlying lookup for a static table, got %d", inner.calls)
	}
}

func TestStaticStorePassesThroughNonStaticTables(t *testing.T) {
	inner := &countingStore{}
	s := NewStaticStore(inner, []string{"countries"})
	where := map[string]data.DataValue{"id": data.Integer(1)}

	if _, err := s.Lookup(context.Background(), "orders", where); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Lookup(context.Background(), "orders", where); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected every lookup against a non-static table to pass through, got %d calls", inner.calls)
	}
}

func TestStaticStoreDistinguishesWhereClauses(t *testing.T) {
	inner := &countingStore{}
	s := NewStaticStore(inner, []string{"countries"})

	if _, err := s.Lookup(context.Background(), "countries", map[string]data.DataValue{"code": data.Chars("KR")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Lookup(context.Background(), "countries", map[string]data.DataValue{"code": data.Chars("US")}); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected distinct where clauses to miss the cache, got %d calls", inner.calls)
	}
}
