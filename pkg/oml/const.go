package oml

import "github.com/wp-labs/wp-motor-sub001/pkg/data"

// ConstEval always yields the same configured value, regardless of src
// or dst. Used for Match/Record default arms and Fmt/Map literal
// arguments declared directly in a model file rather than read off the
// record.
type ConstEval struct {
	Value data.DataValue
}

func (c ConstEval) ExtractOne(target EvalTarget, _ data.DataRecordRef, _ *data.DataRecord) (*data.DataField, error) {
	storage, err := c.ExtractStorage(target, data.DataRecordRef{}, nil)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (c ConstEval) ExtractStorage(target EvalTarget, _ data.DataRecordRef, _ *data.DataRecord) (*data.FieldStorage, error) {
	v, err := data.Convert(c.Value, target.DataType)
	if err != nil {
		return nil, err
	}
	fs := data.Owned(data.DataField{Name: target.NameOr("_"), Meta: target.DataType, Value: v})
	return &fs, nil
}
