package oml

import "github.com/wp-labs/wp-motor-sub001/pkg/data"

// CmpEval reuses MatchEval's Comparator set to produce a Bool value
// instead of dispatching to a per-case Result: Source compared against
// Value (or Values, for CmpIn) is the whole evaluation.
type CmpEval struct {
	Source Evaluator
	Cmp    Comparator
	Value  string
	Values []string
}

func (c CmpEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := c.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (c CmpEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	sourceField, err := c.Source.ExtractOne(EvalTarget{}, src, dst)
	if err != nil {
		return nil, err
	}
	str := ""
	if sourceField != nil {
		str = sourceField.Value.String()
	}
	result := matchCase(MatchCase{Cmp: c.Cmp, Value: c.Value, Values: c.Values}, str)
	fs := data.Owned(data.DataField{Name: target.NameOr("_"), Meta: data.TypeBool, Value: data.Bool(result)})
	return &fs, nil
}

// boolOf evaluates e and reads back a bool, treating a nil or
// non-bool result as false rather than erroring: a filter whose
// sub-evaluator found nothing (an absent field, say) should exclude
// the record, not fail the whole pipeline.
func boolOf(e Evaluator, src data.DataRecordRef, dst *data.DataRecord) (bool, error) {
	if e == nil {
		return false, nil
	}
	f, err := e.ExtractOne(EvalTarget{DataType: data.TypeBool}, src, dst)
	if err != nil {
		return false, err
	}
	if f == nil || f.Value.Kind != data.KindBool {
		return false, nil
	}
	return f.Value.Bool, nil
}

// AndEval is true when every operand is true; empty Operands is true
// (an empty conjunction imposes no constraint).
type AndEval struct {
	Operands []Evaluator
}

func (a AndEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := a.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (a AndEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	result := true
	for _, op := range a.Operands {
		ok, err := boolOf(op, src, dst)
		if err != nil {
			return nil, err
		}
		if !ok {
			result = false
			break
		}
	}
	fs := data.Owned(data.DataField{Name: target.NameOr("_"), Meta: data.TypeBool, Value: data.Bool(result)})
	return &fs, nil
}

// OrEval is true when at least one operand is true; empty Operands is
// false (an empty disjunction satisfies nothing).
type OrEval struct {
	Operands []Evaluator
}

func (o OrEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := o.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (o OrEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	result := false
	for _, op := range o.Operands {
		ok, err := boolOf(op, src, dst)
		if err != nil {
			return nil, err
		}
		if ok {
			result = true
			break
		}
	}
	fs := data.Owned(data.DataField{Name: target.NameOr("_"), Meta: data.TypeBool, Value: data.Bool(result)})
	return &fs, nil
}

// NotEval negates Operand.
type NotEval struct {
	Operand Evaluator
}

func (n NotEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := n.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (n NotEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	ok, err := boolOf(n.Operand, src, dst)
	if err != nil {
		return nil, err
	}
	fs := data.Owned(data.DataField{Name: target.NameOr("_"), Meta: data.TypeBool, Value: data.Bool(!ok)})
	return &fs, nil
}
