package oml

import (
	"context"
	"fmt"
	"os"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// sqlStrictKey is the context key carrying the per-goroutine ("thread
// local") strict/lax override for the Sql evaluator — Go has no native
// thread-local storage, so a context.Context value carried down the
// evaluation call stack plays that role (Open Question #2, resolved in
// DESIGN.md).
type sqlStrictKey struct{}

// WithSQLStrict returns a context carrying an explicit strict/lax
// override for Sql evaluation beneath it.
func WithSQLStrict(ctx context.Context, strict bool) context.Context {
	return context.WithValue(ctx, sqlStrictKey{}, strict)
}

// sqlStrictDefault resolves the process default from OML_SQL_STRICT
// (unset or nonzero = strict; "0" disables strict mode), per §6.
func sqlStrictDefault() bool {
	return os.Getenv("OML_SQL_STRICT") != "0"
}

func sqlStrict(ctx context.Context) bool {
	if ctx == nil {
		return sqlStrictDefault()
	}
	if v, ok := ctx.Value(sqlStrictKey{}).(bool); ok {
		return v
	}
	return sqlStrictDefault()
}

// SqlCondition is one equality predicate in the Sql evaluator's WHERE
// clause: a literal select+where over the record's columns.
type SqlCondition struct {
	Column string
	Equals string
}

// SqlEval implements the "literal select+where predicate over a small
// relational view of the record" named in §4.7. Column names are
// resolved as field names on src/dst, matching ReadEval's lookup order.
type SqlEval struct {
	Ctx     context.Context
	Select  string
	Where   []SqlCondition
}

func (s SqlEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := s.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (s SqlEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	for _, cond := range s.Where {
		fs, ok := findInDst(dst, cond.Column, false)
		if !ok {
			fs, ok = findInSrc(src, cond.Column, false)
		}
		if !ok {
			if sqlStrict(s.Ctx) {
				return nil, fmt.Errorf("oml: sql: unresolved column %q (strict mode)", cond.Column)
			}
			return nil, nil
		}
		if fs.AsField().Value.String() != cond.Equals {
			return nil, nil
		}
	}
	fs, ok := findInDst(dst, s.Select, false)
	if !ok {
		fs, ok = findInSrc(src, s.Select, false)
	}
	if !ok {
		if sqlStrict(s.Ctx) {
			return nil, fmt.Errorf("oml: sql: unresolved column %q (strict mode)", s.Select)
		}
		return nil, nil
	}
	named := fs.WithName(target.NameOr(s.Select))
	return &named, nil
}
