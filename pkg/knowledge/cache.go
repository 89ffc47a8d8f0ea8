package knowledge

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// StaticStore wraps a Store so lookups against tables configured as
// "static" are cached for the lifetime of one model load, reusing the
// same idea as the OML static-symbol/ObjArc mechanism rather than a
// second bespoke cache: the first Lookup against a given (table, where)
// pair pays the round trip, every later one returns the cached rows.
type StaticStore struct {
	inner      Store
	staticSet  map[string]bool

	mu    sync.Mutex
	cache map[string][]KnowledgeRow
}

// NewStaticStore wraps inner, treating the named tables as static.
func NewStaticStore(inner Store, staticTables []string) *StaticStore {
	set := make(map[string]bool, len(staticTables))
	for _, t := range staticTables {
		set[t] = true
	}
	return &StaticStore{inner: inner, staticSet: set, cache: make(map[string][]KnowledgeRow)}
}

func (s *StaticStore) Lookup(ctx context.Context, table string, where map[string]data.DataValue) ([]KnowledgeRow, error) {
	if !s.staticSet[table] {
		return s.inner.Lookup(ctx, table, where)
	}
	key := cacheKey(table, where)
	s.mu.Lock()
	if rows, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return rows, nil
	}
	s.mu.Unlock()

	rows, err := s.inner.Lookup(ctx, table, where)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache[key] = rows
	s.mu.Unlock()
	return rows, nil
}

func (s *StaticStore) Close() error { return s.inner.Close() }

func cacheKey(table string, where map[string]data.DataValue) string {
	cols := whereColumns(where)
	parts := make(map[string]string, len(cols))
	for _, c := range cols {
		parts[c] = where[c].String()
	}
	b, _ := json.Marshal(struct {
		Table string
		Where map[string]string
	}{table, parts})
	return string(b)
}
