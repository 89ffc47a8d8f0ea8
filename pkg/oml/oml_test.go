package oml

import (
	"testing"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

func strp(s string) *string { return &s }

func TestReadEvalPrefersDstOverSrc(t *testing.T) {
	src := data.NewRecord()
	src.Push(data.Owned(data.DataField{Name: "method", Value: data.Chars("src-value")}))
	dst := data.NewRecord()
	dst.Push(data.Owned(data.DataField{Name: "method", Value: data.Chars("dst-value")}))

	r := ReadEval{Get: strp("method")}
	f, err := r.ExtractOne(EvalTarget{}, data.RefOf(src), dst)
	if err != nil {
		t.Fatal(err)
	}
	if f.Value.Chars != "dst-value" {
		t.Fatalf("expected dst to win, got %q", f.Value.Chars)
	}
}

func TestReadEvalFallsBackToOption(t *testing.T) {
	src := data.NewRecord()
	src.Push(data.Owned(data.DataField{Name: "alt", Value: data.Chars("found")}))
	dst := data.NewRecord()

	r := ReadEval{Get: strp("missing"), Option: []string{"alt"}}
	f, err := r.ExtractOne(EvalTarget{}, data.RefOf(src), dst)
	if err != nil {
		t.Fatal(err)
	}
	if f == nil || f.Value.Chars != "found" {
		t.Fatalf("expected option fallback to find 'found', got %v", f)
	}
}

func TestStaticBlockZeroCopy(t *testing.T) {
	// S5: static { tpl = object { id = "E1", tpl = "t" } }; EventId = read(tpl) | get(id);
	idField := data.NewShared(data.DataField{Name: "id", Value: data.Chars("E1")})
	tplObj := data.NewObject([]string{"id", "tpl"}, map[string]data.FieldStorage{
		"id":  idField,
		"tpl": data.Owned(data.DataField{Name: "tpl", Value: data.Chars("t")}),
	})
	shared := data.NewShared(data.DataField{Name: "tpl", Value: tplObj})

	model := &ObjModel{
		Name: "m1",
		Items: []Binding{
			{
				Targets: []EvalTarget{NamedTarget("EventId", data.TypeAuto)},
				Way: PipeEval{
					Source: ObjArcEval{Shared: shared},
					Steps:  []string{"get(id)"},
				},
			},
		},
	}

	src := data.NewRecord()
	dst1, err := model.Transform(src)
	if err != nil {
		t.Fatal(err)
	}
	dst2, err := model.Transform(src)
	if err != nil {
		t.Fatal(err)
	}

	f1, ok := dst1.Field("EventId")
	if !ok {
		t.Fatal("EventId not produced")
	}
	if f1.AsField().Value.Chars != "E1" {
		t.Fatalf("expected E1, got %v", f1.AsField().Value)
	}

	f2, _ := dst2.Field("EventId")
	if !data.SamePointer(f1, f2) {
		t.Fatal("expected EventId in both records to share the static id storage")
	}
}

func TestMatchEvalFirstCaseWins(t *testing.T) {
	src := data.NewRecord()
	src.Push(data.Owned(data.DataField{Name: "level", Value: data.Chars("warn")}))
	dst := data.NewRecord()

	m := MatchEval{
		Source: ReadEval{Get: strp("level")},
		Cases: []MatchCase{
			{Cmp: CmpEquals, Value: "warn", Result: staticChars("W")},
			{Cmp: CmpEquals, Value: "warn", Result: staticChars("SHOULD_NOT_REACH")},
		},
		Default: staticChars("D"),
	}
	f, err := m.ExtractOne(EvalTarget{}, data.RefOf(src), dst)
	if err != nil {
		t.Fatal(err)
	}
	if f.Value.Chars != "W" {
		t.Fatalf("expected first matching case to win, got %q", f.Value.Chars)
	}
}

type constEval struct{ v data.DataValue }

func (c constEval) ExtractOne(target EvalTarget, _ data.DataRecordRef, _ *data.DataRecord) (*data.DataField, error) {
	return &data.DataField{Name: target.NameOr(""), Value: c.v}, nil
}
func (c constEval) ExtractStorage(target EvalTarget, _ data.DataRecordRef, _ *data.DataRecord) (*data.FieldStorage, error) {
	fs := data.Owned(data.DataField{Name: target.NameOr(""), Value: c.v})
	return &fs, nil
}

func staticChars(s string) Evaluator { return constEval{v: data.Chars(s)} }
