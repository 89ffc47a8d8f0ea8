package knowledge

import (
	"context"
	"fmt"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/schema"
)

// ValidatingStore wraps a Store so every row a Lookup returns is
// checked against its table's declared schema.DataSchema before
// reaching the caller, the same way StaticStore wraps a Store to add
// caching: a decorator, not a new backend.
type ValidatingStore struct {
	inner   Store
	schemas map[string]*schema.DataSchema
}

// NewValidatingStore wraps inner. Tables with no entry in schemas pass
// through unchecked.
func NewValidatingStore(inner Store, schemas map[string]*schema.DataSchema) *ValidatingStore {
	return &ValidatingStore{inner: inner, schemas: schemas}
}

func (s *ValidatingStore) Lookup(ctx context.Context, table string, where map[string]data.DataValue) ([]KnowledgeRow, error) {
	rows, err := s.inner.Lookup(ctx, table, where)
	if err != nil {
		return nil, err
	}
	ds, ok := s.schemas[table]
	if !ok {
		return rows, nil
	}
	for i, row := range rows {
		if err := ds.Validate(row); err != nil {
			return nil, fmt.Errorf("knowledge: table %q row %d: %w", table, i, err)
		}
	}
	return rows, nil
}

func (s *ValidatingStore) Close() error { return s.inner.Close() }
