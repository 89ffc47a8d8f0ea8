package oml

import (
	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// Binding is one "target = evaluator" item inside a model body.
type Binding struct {
	Targets []EvalTarget
	Way     Evaluator
}

// ObjModel is either Stub (inert, rules-only) or a full model with
// bindings. HasTempFields marks models whose items include fields only
// meant to feed later bindings within the same model, not to survive
// into the output record — callers may use this to prune scratch
// fields post-transform if they choose to.
type ObjModel struct {
	Name          string
	Rules         []string
	Items         []Binding
	HasTempFields bool
	Stub          bool
}

// Transform evaluates every binding in m against src, producing a new
// destination record (§4.6 step 2). For each binding: if the result is
// Shared and no type conversion is required, it is installed with only
// the display name changed (zero-copy, S5); otherwise the owned field
// is extracted, renamed, converted, and pushed. A Stub model has no
// bindings; its destination record carries src's fields unchanged.
func (m *ObjModel) Transform(src *data.DataRecord) (*data.DataRecord, error) {
	dst := data.NewRecord()
	if m.Stub {
		dst.Items = append(dst.Items, src.Items...)
		return dst, nil
	}
	srcRef := data.RefOf(src)
	for _, binding := range m.Items {
		for _, target := range binding.Targets {
			storage, err := binding.Way.ExtractStorage(target, srcRef, dst)
			if err != nil {
				return nil, err
			}
			if storage == nil {
				continue
			}
			name := target.NameOr(storage.Name())

			if storage.IsShared() && noConversionNeeded(target, *storage) {
				dst.Push(storage.WithName(name))
				continue
			}

			f := storage.AsField()
			f.Name = name
			converted, err := data.Convert(f.Value, target.DataType)
			if err != nil {
				return nil, err
			}
			f.Value = converted
			f.Meta = target.DataType
			dst.Push(data.Owned(f))
		}
	}
	return dst, nil
}

func noConversionNeeded(target EvalTarget, storage data.FieldStorage) bool {
	if target.DataType == data.TypeAuto {
		return true
	}
	return target.DataType == storage.Underlying().Meta
}
