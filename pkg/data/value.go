// Package data implements the engine's in-process record model: the
// DataValue/DataField/FieldStorage/DataRecord family described by the
// transform runtime, plus the SourceEvent/Tags types carried between
// pipeline stages. Nothing here is persisted; everything lives for the
// duration of one record's trip through the pipeline.
package data

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Kind tags the variant held by a DataValue.
type Kind int

const (
	KindIgnore Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindChars
	KindBytes
	KindTime
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindIgnore:
		return "ignore"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindChars:
		return "chars"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// DataValue is the tagged union carried by every field. Only one of the
// typed fields is meaningful, selected by Kind.
type DataValue struct {
	Kind    Kind
	Bool    bool
	Integer int64
	Float   float64
	Chars   string
	Bytes   []byte
	Time    time.Time
	Array   []FieldStorage
	// Object preserves insertion order via Keys; Fields maps name -> storage.
	Keys   []string
	Fields map[string]FieldStorage
}

// Ignore returns the sentinel "no value" DataValue.
func Ignore() DataValue { return DataValue{Kind: KindIgnore} }

func Bool(b bool) DataValue     { return DataValue{Kind: KindBool, Bool: b} }
func Integer(i int64) DataValue { return DataValue{Kind: KindInteger, Integer: i} }
func Float(f float64) DataValue { return DataValue{Kind: KindFloat, Float: f} }
func Chars(s string) DataValue  { return DataValue{Kind: KindChars, Chars: s} }
func Bytes(b []byte) DataValue  { return DataValue{Kind: KindBytes, Bytes: b} }
func TimeVal(t time.Time) DataValue { return DataValue{Kind: KindTime, Time: t} }

func Array(items []FieldStorage) DataValue {
	return DataValue{Kind: KindArray, Array: items}
}

// NewObject builds an Object DataValue preserving the given key order.
func NewObject(keys []string, fields map[string]FieldStorage) DataValue {
	return DataValue{Kind: KindObject, Keys: append([]string(nil), keys...), Fields: fields}
}

// IsEmpty implements the notion used by the skip_empty pipe function:
// "", empty bytes, 0, 0.0, [], {} and Ignore are all empty; everything
// else is not.
func (v DataValue) IsEmpty() bool {
	switch v.Kind {
	case KindIgnore:
		return true
	case KindChars:
		return v.Chars == ""
	case KindInteger:
		return v.Integer == 0
	case KindFloat:
		return v.Float == 0
	case KindArray:
		return len(v.Array) == 0
	case KindObject:
		return len(v.Keys) == 0
	case KindBytes:
		return len(v.Bytes) == 0
	default:
		return false
	}
}

func (v DataValue) String() string {
	switch v.Kind {
	case KindIgnore:
		return ""
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindInteger:
		return fmt.Sprintf("%d", v.Integer)
	case KindFloat:
		return fmt.Sprintf("%v", v.Float)
	case KindChars:
		return v.Chars
	case KindBytes:
		return string(v.Bytes)
	case KindTime:
		return v.Time.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%s(%d items)", v.Kind, len(v.Array)+len(v.Keys))
	}
}

// DataType is the declared type of a field. Auto means "whatever the
// value's own Kind is" and performs no conversion.
type DataType int

const (
	TypeAuto DataType = iota
	TypeBool
	TypeInteger
	TypeFloat
	TypeChars
	TypeBytes
	TypeTime
	TypeArray
	TypeObject
)

// Convert coerces v to match dt, returning an error if the conversion is
// not representable. TypeAuto is always a no-op.
func Convert(v DataValue, dt DataType) (DataValue, error) {
	if dt == TypeAuto {
		return v, nil
	}
	want := kindOf(dt)
	if v.Kind == want {
		return v, nil
	}
	switch dt {
	case TypeChars:
		return Chars(v.String()), nil
	case TypeInteger:
		switch v.Kind {
		case KindFloat:
			return Integer(int64(v.Float)), nil
		case KindChars:
			var i int64
			if _, err := fmt.Sscanf(v.Chars, "%d", &i); err != nil {
				return v, fmt.Errorf("data: cannot convert %q to integer: %w", v.Chars, err)
			}
			return Integer(i), nil
		}
	case TypeFloat:
		switch v.Kind {
		case KindInteger:
			return Float(float64(v.Integer)), nil
		}
	}
	return v, fmt.Errorf("data: cannot convert %s to %v", v.Kind, dt)
}

func kindOf(dt DataType) Kind {
	switch dt {
	case TypeBool:
		return KindBool
	case TypeInteger:
		return KindInteger
	case TypeFloat:
		return KindFloat
	case TypeChars:
		return KindChars
	case TypeBytes:
		return KindBytes
	case TypeTime:
		return KindTime
	case TypeArray:
		return KindArray
	case TypeObject:
		return KindObject
	default:
		return KindIgnore
	}
}

// DataField is a named, typed value. Invariant: Value.Kind matches Meta
// once any declared conversion has been applied.
type DataField struct {
	Name  string
	Meta  DataType
	Value DataValue
}

var idSeq atomic.Uint64

// NextID returns a process-unique monotonic id, used for DataRecord.ID
// and SourceEvent.EventID.
func NextID() uint64 { return idSeq.Add(1) }
