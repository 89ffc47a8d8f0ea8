// Package oml implements the transform runtime: the Evaluator sum type,
// EvalTarget, and ObjModel, which together evaluate target = expression
// bindings against a source record to produce a destination record.
//
// Grounded on original_source/crates/wp-oml/src/core/evaluator/extract
// (Read evaluator's dst-then-src-then-option lookup order and the
// extract_storage zero-copy contract) and on the struct-per-kind +
// factory-switch idiom used throughout pkg/stream/stage.go in the
// teacher.
package oml

import (
	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// EvalTarget declares a destination field's name and type. A nil Name
// means "no explicit name" — evaluators fall back to their own key
// (e.g. Read falls back to the evaluator's configured key).
type EvalTarget struct {
	Name       *string
	DataType   data.DataType
	SubTargets []EvalTarget
}

// NamedTarget is a convenience constructor for a plain named target.
func NamedTarget(name string, dt data.DataType) EvalTarget {
	return EvalTarget{Name: &name, DataType: dt}
}

// NameOr returns t.Name if set, else fallback.
func (t EvalTarget) NameOr(fallback string) string {
	if t.Name != nil {
		return *t.Name
	}
	return fallback
}

// Evaluator is the closed sum type of transform expressions. Every
// concrete evaluator kind in this package implements it; ExtractOne
// always materializes an owned DataField, while ExtractStorage may
// return a Shared FieldStorage when the result traces back to a static
// symbol or another zero-copy source, preserving reference sharing
// through the pipeline (P4).
type Evaluator interface {
	ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error)
	ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error)
}

// findInDst searches dst's already-built items for key. When option is
// true, a found-but-empty field is treated as not-found (matching
// find_tdc_target's "option" semantics in the original evaluator).
func findInDst(dst *data.DataRecord, key string, option bool) (data.FieldStorage, bool) {
	if dst == nil {
		return data.FieldStorage{}, false
	}
	for _, it := range dst.Items {
		if it.Name() == key {
			if option && it.AsField().Value.IsEmpty() {
				return data.FieldStorage{}, false
			}
			return it, true
		}
	}
	return data.FieldStorage{}, false
}

// findInSrc searches the borrowed source record for key, with the same
// option semantics as findInDst.
func findInSrc(src data.DataRecordRef, key string, option bool) (data.FieldStorage, bool) {
	for _, it := range src.Iter() {
		if it.Name() == key {
			if option && it.AsField().Value.IsEmpty() {
				return data.FieldStorage{}, false
			}
			return it, true
		}
	}
	return data.FieldStorage{}, false
}
