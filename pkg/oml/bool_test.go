package oml

import (
	"testing"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

func TestCmpEvalStartsWith(t *testing.T) {
	src := data.NewRecord()
	src.Push(data.Owned(data.DataField{Name: "path", Value: data.Chars("/app/login")}))

	c := CmpEval{Source: ReadEval{Get: strp("path")}, Cmp: CmpStartsWith, Value: "/app/"}
	f, err := c.ExtractOne(EvalTarget{}, data.RefOf(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Value.Kind != data.KindBool || !f.Value.Bool {
		t.Fatalf("expected true, got %v", f.Value)
	}
}

func TestCmpEvalNoMatch(t *testing.T) {
	src := data.NewRecord()
	src.Push(data.Owned(data.DataField{Name: "level", Value: data.Chars("info")}))

	c := CmpEval{Source: ReadEval{Get: strp("level")}, Cmp: CmpEquals, Value: "warn"}
	f, err := c.ExtractOne(EvalTarget{}, data.RefOf(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Value.Bool {
		t.Fatal("expected false")
	}
}

func TestAndEvalFalseIfAnyOperandFalse(t *testing.T) {
	a := AndEval{Operands: []Evaluator{
		CmpEval{Source: staticChars("warn"), Cmp: CmpEquals, Value: "warn"},
		CmpEval{Source: staticChars("x"), Cmp: CmpEquals, Value: "y"},
	}}
	f, err := a.ExtractOne(EvalTarget{}, data.DataRecordRef{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Value.Bool {
		t.Fatal("expected false: second operand does not match")
	}
}

func TestAndEvalEmptyIsTrue(t *testing.T) {
	a := AndEval{}
	f, err := a.ExtractOne(EvalTarget{}, data.DataRecordRef{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Value.Bool {
		t.Fatal("expected true for empty conjunction")
	}
}

func TestOrEvalTrueIfAnyMatches(t *testing.T) {
	o := OrEval{Operands: []Evaluator{
		CmpEval{Source: staticChars("x"), Cmp: CmpEquals, Value: "y"},
		CmpEval{Source: staticChars("warn"), Cmp: CmpEquals, Value: "warn"},
	}}
	f, err := o.ExtractOne(EvalTarget{}, data.DataRecordRef{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Value.Bool {
		t.Fatal("expected true: second operand matches")
	}
}

func TestOrEvalEmptyIsFalse(t *testing.T) {
	o := OrEval{}
	f, err := o.ExtractOne(EvalTarget{}, data.DataRecordRef{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Value.Bool {
		t.Fatal("expected false for empty disjunction")
	}
}

func TestNotEvalNegates(t *testing.T) {
	n := NotEval{Operand: CmpEval{Source: staticChars("warn"), Cmp: CmpEquals, Value: "warn"}}
	f, err := n.ExtractOne(EvalTarget{}, data.DataRecordRef{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Value.Bool {
		t.Fatal("expected false: operand was true")
	}
}
