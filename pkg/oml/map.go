package oml

import "github.com/wp-labs/wp-motor-sub001/pkg/data"

// MapEval builds a new Object field from named sub-bindings, evaluated
// via ExtractStorage so that shared results are stored by reference
// inside the new object instead of being cloned (§4.7 "Map").
type MapEval struct {
	Keys   []string
	Fields map[string]Evaluator
}

func (m MapEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := m.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (m MapEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	fields := make(map[string]data.FieldStorage, len(m.Keys))
	for _, k := range m.Keys {
		sub := m.Fields[k]
		st, err := sub.ExtractStorage(NamedTarget(k, data.TypeAuto), src, dst)
		if err != nil {
			return nil, err
		}
		if st == nil {
			continue
		}
		fields[k] = st.WithName(k)
	}
	name := target.NameOr("")
	obj := data.NewObject(m.Keys, fields)
	result := data.Owned(data.DataField{Name: name, Meta: data.TypeObject, Value: obj})
	return &result, nil
}
