package oml

import (
	"fmt"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// StaticSymbolEval is a placeholder for an unresolved static-block
// symbol. A model loader must rewrite every StaticSymbol to an ObjArc
// during the resolution pass described in §5 ("Static OML symbols")
// before the model is ever evaluated; encountering one at evaluation
// time is a bug, and both methods panic per §4.7's explicit contract.
type StaticSymbolEval struct {
	Name string
}

func (s StaticSymbolEval) ExtractOne(EvalTarget, data.DataRecordRef, *data.DataRecord) (*data.DataField, error) {
	panic(fmt.Sprintf("oml: unresolved static symbol %q reached evaluation; model resolution pass did not run", s.Name))
}

func (s StaticSymbolEval) ExtractStorage(EvalTarget, data.DataRecordRef, *data.DataRecord) (*data.FieldStorage, error) {
	panic(fmt.Sprintf("oml: unresolved static symbol %q reached evaluation; model resolution pass did not run", s.Name))
}

// ObjArcEval wraps a resolved static object as a shared reference. It is
// the result of resolving a StaticSymbolEval against the model's static
// block evaluation (performed once, at model load).
type ObjArcEval struct {
	Shared data.FieldStorage
}

func (o ObjArcEval) ExtractOne(target EvalTarget, _ data.DataRecordRef, _ *data.DataRecord) (*data.DataField, error) {
	f := o.Shared.WithName(target.NameOr(o.Shared.Name())).AsField()
	return &f, nil
}

func (o ObjArcEval) ExtractStorage(target EvalTarget, _ data.DataRecordRef, _ *data.DataRecord) (*data.FieldStorage, error) {
	named := o.Shared.WithName(target.NameOr(o.Shared.Name()))
	return &named, nil
}

// ResolveStatics rewrites each StaticSymbolEval in exp that refers to a
// name present in statics to the corresponding ObjArcEval. It recurses
// into Map, Pipe, Record and Match evaluators only; a symbol nested under
// any other evaluator kind is left unresolved. Call once per model load,
// before any record is evaluated against it.
func ResolveStatics(exp Evaluator, statics map[string]data.FieldStorage) Evaluator {
	switch e := exp.(type) {
	case StaticSymbolEval:
		if fs, ok := statics[e.Name]; ok {
			return ObjArcEval{Shared: fs}
		}
		return e
	case MapEval:
		resolved := make(map[string]Evaluator, len(e.Fields))
		for k, v := range e.Fields {
			resolved[k] = ResolveStatics(v, statics)
		}
		e.Fields = resolved
		return e
	case PipeEval:
		e.Source = ResolveStatics(e.Source, statics)
		return e
	case RecordEval:
		e.Accessor = ResolveStatics(e.Accessor, statics)
		if e.Default != nil {
			e.Default = ResolveStatics(e.Default, statics)
		}
		return e
	case MatchEval:
		e.Source = ResolveStatics(e.Source, statics)
		for i := range e.Cases {
			e.Cases[i].Result = ResolveStatics(e.Cases[i].Result, statics)
		}
		if e.Default != nil {
			e.Default = ResolveStatics(e.Default, statics)
		}
		return e
	default:
		return exp
	}
}
