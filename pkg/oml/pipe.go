package oml

import (
	"fmt"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/oml/pipefn"
)

// PipeEval evaluates a source accessor, then folds a vector of pipe
// functions over the resulting field (§4.7 "Pipe"). When the chain is a
// single "get(path)" step and the source storage is Shared, the
// zero-copy StorageApply path is used instead of materializing an
// owned field first.
type PipeEval struct {
	Source Evaluator
	Steps  []string
}

func (p PipeEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := p.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (p PipeEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	st, err := p.Source.ExtractStorage(EvalTarget{}, src, dst)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, nil
	}

	cur := *st
	for _, step := range p.Steps {
		name, arg := splitStep(step)
		fn, ok := pipefn.Table[name]
		if !ok {
			return nil, fmt.Errorf("oml: unknown pipe function %q", name)
		}
		if cur.IsShared() && fn.StorageApply != nil {
			next, err := fn.StorageApply(cur, arg)
			if err != nil {
				return nil, err
			}
			cur = next
			continue
		}
		field, err := fn.Apply(cur.AsField(), arg)
		if err != nil {
			return nil, err
		}
		cur = data.Owned(field)
	}

	named := cur.WithName(target.NameOr(cur.Name()))
	return &named, nil
}

func splitStep(step string) (name, arg string) {
	for i := 0; i < len(step); i++ {
		if step[i] == '(' && step[len(step)-1] == ')' {
			return step[:i], step[i+1 : len(step)-1]
		}
	}
	return step, ""
}
