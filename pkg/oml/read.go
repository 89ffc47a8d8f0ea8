package oml

import "github.com/wp-labs/wp-motor-sub001/pkg/data"

// ReadEval looks up a field by name (or a list of fallback options)
// first in the partially-built destination record, then in the source,
// returning it with only a display-name overlay changed when the found
// slot is Shared. Grounded verbatim on
// original_source/crates/wp-oml/src/core/evaluator/extract/basic/read.rs.
type ReadEval struct {
	Get    *string
	Option []string
}

func (r ReadEval) key(target EvalTarget) string {
	if r.Get != nil {
		return *r.Get
	}
	return target.NameOr("_")
}

func (r ReadEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := r.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (r ReadEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	key := r.key(target)
	if fs, ok := findInDst(dst, key, false); ok {
		return &fs, nil
	}
	if fs, ok := findInSrc(src, key, false); ok {
		return &fs, nil
	}
	for _, opt := range r.Option {
		if fs, ok := findInDst(dst, opt, true); ok {
			return &fs, nil
		}
		if fs, ok := findInSrc(src, opt, true); ok {
			return &fs, nil
		}
	}
	return nil, nil
}
