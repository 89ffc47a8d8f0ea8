package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// SQLStore is a Store backed by a relational database reached through
// database/sql, dialect selected by the connector's "driver" param
// ("mysql" or "postgres").
type SQLStore struct {
	db      *sql.DB
	driver  string
}

// NewSQLStore opens driver/dsn and verifies connectivity.
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	switch driver {
	case "mysql", "postgres":
	default:
		return nil, fmt.Errorf("knowledge: unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("knowledge: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("knowledge: ping %s: %w", driver, err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

func (s *SQLStore) placeholder(idx int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", idx)
	}
	return "?"
}

func (s *SQLStore) Lookup(ctx context.Context, table string, where map[string]data.DataValue) ([]KnowledgeRow, error) {
	cols := whereColumns(where)
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT * FROM %s", table)
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, "%s = %s", c, s.placeholder(i+1))
		args = append(args, scalarOf(where[c]))
	}
	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("knowledge: lookup %s: %w", table, err)
	}
	defer rows.Close()
	colNames, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []KnowledgeRow
	for rows.Next() {
		vals := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(KnowledgeRow, len(colNames))
		for i, name := range colNames {
			row[name] = dataValueOf(vals[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error { return s.db.Close() }

// scalarOf converts a DataValue into the plain Go value database/sql
// drivers accept as a bind argument.
func scalarOf(v data.DataValue) any {
	switch v.Kind {
	case data.KindBool:
		return v.Bool
	case data.KindInteger:
		return v.Integer
	case data.KindFloat:
		return v.Float
	case data.KindChars:
		return v.Chars
	case data.KindBytes:
		return v.Bytes
	case data.KindTime:
		return v.Time
	default:
		return nil
	}
}

// dataValueOf converts a database/sql scan result back into a DataValue.
func dataValueOf(v any) data.DataValue {
	switch t := v.(type) {
	case nil:
		return data.Ignore()
	case bool:
		return data.Bool(t)
	case int64:
		return data.Integer(t)
	case float64:
		return data.Float(t)
	case []byte:
		return data.Chars(string(t))
	case string:
		return data.Chars(t)
	default:
		return data.Chars(fmt.Sprintf("%v", t))
	}
}
