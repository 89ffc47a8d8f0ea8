package oml

import "github.com/wp-labs/wp-motor-sub001/pkg/data"

// RecordEval evaluates a primary accessor; if it yields nothing, it
// falls back to the declared Default evaluator (§4.7 "Record").
type RecordEval struct {
	Accessor Evaluator
	Default  Evaluator
}

func (r RecordEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := r.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (r RecordEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	st, err := r.Accessor.ExtractStorage(target, src, dst)
	if err != nil {
		return nil, err
	}
	if st != nil {
		return st, nil
	}
	if r.Default == nil {
		return nil, nil
	}
	return r.Default.ExtractStorage(target, src, dst)
}
