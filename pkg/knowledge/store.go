// Package knowledge implements the read-only tabular lookup collaborator
// consumed by the OML Sql and Read evaluators: a connector-configured
// external store (SQL or MongoDB) that transform bindings can join
// against without the pipeline itself ever writing to it.
//
// Grounded on the teacher's pkg/schema.FieldSchema shape for describing
// tabular rows, and on pkg/stream/stage.go's EnrichStage "lookup_table
// tag" concept, generalized here into a real backend instead of a stub.
package knowledge

import (
	"context"
	"sort"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// KnowledgeRow is one read-only record returned by a lookup, keyed by
// column name.
type KnowledgeRow map[string]data.DataValue

// Store is the read-only tabular collaborator every knowledge backend
// implements. No backend exposes a write method.
type Store interface {
	Lookup(ctx context.Context, table string, where map[string]data.DataValue) ([]KnowledgeRow, error)
	Close() error
}

// whereColumns returns the column names of a where map in sorted order,
// for backends that build a parameterized equality query from it.
func whereColumns(where map[string]data.DataValue) []string {
	cols := make([]string, 0, len(where))
	for k := range where {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
