package wpl

import (
	"fmt"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
)

// Instruction emits one named field, consuming the input up to (and
// including) the first occurrence of its locator pattern.
type Instruction struct {
	Name    string
	Locator Pattern
	Type    data.DataType
}

// Program is an ordered sequence of instructions compiled from a WPL
// source program; Run interprets it against one raw line.
type Program struct {
	Instructions []Instruction
}

// NewProgram compiles a WPL program from (name, patternText, type)
// triples, in source order.
func NewProgram(specs []struct {
	Name    string
	Pattern string
	Type    data.DataType
}) (*Program, error) {
	p := &Program{}
	for _, spec := range specs {
		loc, err := CompilePattern(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("wpl: field %q: %w", spec.Name, err)
		}
		p.Instructions = append(p.Instructions, Instruction{Name: spec.Name, Locator: loc, Type: spec.Type})
	}
	return p, nil
}

// Run interprets the program against raw, producing one DataField per
// instruction in declaration order. A non-"rest" instruction whose
// locator pattern is not found in the remaining cursor is a parse
// failure for the whole record (matching the spec's "on parse failure"
// handling at the caller).
func (p *Program) Run(raw string) ([]data.DataField, error) {
	cursor := raw
	out := make([]data.DataField, 0, len(p.Instructions))
	for _, instr := range p.Instructions {
		if instr.Locator.rest {
			out = append(out, data.DataField{Name: instr.Name, Meta: instr.Type, Value: data.Chars(cursor)})
			cursor = ""
			continue
		}
		start, end, ok := instr.Locator.locate(cursor)
		if !ok {
			return nil, errs.NewDataError("parse", 0, fmt.Errorf("wpl: field %q: locator pattern not found in %q", instr.Name, cursor))
		}
		captured := cursor[:start]
		value, err := data.Convert(data.Chars(captured), instr.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, data.DataField{Name: instr.Name, Meta: instr.Type, Value: value})
		cursor = cursor[end:]
	}
	return out, nil
}
