// Package schema validates a knowledge.KnowledgeRow against a declared
// shape: required columns, their data.Kind, and a handful of
// per-kind constraints (string pattern/length, numeric range, enum).
//
// Narrowed from the teacher's generic map[string]any/reflect-based
// validator to operate directly on data.DataValue, since every row
// this engine validates already carries one (knowledge.Store.Lookup's
// result), and a DataValue's Kind already is the type tag a generic
// validator would otherwise have to rediscover via a type switch.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// Schema validates one row (or one field of a row) against a declared
// shape.
type Schema interface {
	Validate(row map[string]data.DataValue) error
	ValidateField(field string, value data.DataValue) error
}

// FieldSchema describes one expected column.
type FieldSchema struct {
	Name        string          `json:"name" yaml:"name"`
	Kind        data.Kind       `json:"kind" yaml:"kind"`
	Required    bool            `json:"required" yaml:"required"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Pattern     string          `json:"pattern,omitempty" yaml:"pattern,omitempty"`         // regex, Chars only
	MinLength   *int            `json:"min_length,omitempty" yaml:"min_length,omitempty"`   // Chars/Bytes
	MaxLength   *int            `json:"max_length,omitempty" yaml:"max_length,omitempty"`   // Chars/Bytes
	Min         *float64        `json:"min,omitempty" yaml:"min,omitempty"`                 // Integer/Float
	Max         *float64        `json:"max,omitempty" yaml:"max,omitempty"`                 // Integer/Float
	Enum        []data.DataValue `json:"enum,omitempty" yaml:"enum,omitempty"`
	Items       *FieldSchema    `json:"items,omitempty" yaml:"items,omitempty"` // Array element shape
}

// DataSchema is the declared shape of one knowledge table: a row is
// valid when every Required field is present with a matching Kind,
// and (when Strict) no column outside Fields appears at all.
type DataSchema struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []FieldSchema `json:"fields" yaml:"fields"`
	Strict      bool          `json:"strict" yaml:"strict"`
}

func (s *DataSchema) Validate(row map[string]data.DataValue) error {
	errs := &ValidationErrors{}

	for _, field := range s.Fields {
		value, exists := row[field.Name]
		if field.Required && !exists {
			errs.Add(field.Name, "required field is missing")
			continue
		}
		if exists {
			if err := s.validateField(&field, value); err != nil {
				errs.Add(field.Name, err.Error())
			}
		}
	}

	if s.Strict {
		declared := make(map[string]bool, len(s.Fields))
		for _, field := range s.Fields {
			declared[field.Name] = true
		}
		for name := range row {
			if !declared[name] {
				errs.Add(name, "field is not declared in the schema")
			}
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (s *DataSchema) ValidateField(fieldName string, value data.DataValue) error {
	for _, field := range s.Fields {
		if field.Name == fieldName {
			return s.validateField(&field, value)
		}
	}
	return fmt.Errorf("field %q is not declared in the schema", fieldName)
}

func (s *DataSchema) validateField(field *FieldSchema, value data.DataValue) error {
	if value.Kind == data.KindIgnore {
		if field.Required {
			return fmt.Errorf("value is missing")
		}
		return nil
	}

	if value.Kind != field.Kind {
		return fmt.Errorf("expected %s, got %s", field.Kind, value.Kind)
	}

	switch field.Kind {
	case data.KindChars:
		if field.MinLength != nil && len(value.Chars) < *field.MinLength {
			return fmt.Errorf("must be at least %d characters", *field.MinLength)
		}
		if field.MaxLength != nil && len(value.Chars) > *field.MaxLength {
			return fmt.Errorf("must be at most %d characters", *field.MaxLength)
		}
		if field.Pattern != "" {
			matched, err := regexp.MatchString(field.Pattern, value.Chars)
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", field.Pattern, err)
			}
			if !matched {
				return fmt.Errorf("does not match pattern %q", field.Pattern)
			}
		}

	case data.KindBytes:
		if field.MinLength != nil && len(value.Bytes) < *field.MinLength {
			return fmt.Errorf("must be at least %d bytes", *field.MinLength)
		}
		if field.MaxLength != nil && len(value.Bytes) > *field.MaxLength {
			return fmt.Errorf("must be at most %d bytes", *field.MaxLength)
		}

	case data.KindInteger:
		num := float64(value.Integer)
		if field.Min != nil && num < *field.Min {
			return fmt.Errorf("must be at least %v", *field.Min)
		}
		if field.Max != nil && num > *field.Max {
			return fmt.Errorf("must be at most %v", *field.Max)
		}

	case data.KindFloat:
		if field.Min != nil && value.Float < *field.Min {
			return fmt.Errorf("must be at least %v", *field.Min)
		}
		if field.Max != nil && value.Float > *field.Max {
			return fmt.Errorf("must be at most %v", *field.Max)
		}

	case data.KindArray:
		if field.Items != nil {
			for i, item := range value.Array {
				if err := s.validateField(field.Items, item.AsField().Value); err != nil {
					return fmt.Errorf("item[%d]: %w", i, err)
				}
			}
		}
	}

	if len(field.Enum) > 0 {
		found := false
		for _, allowed := range field.Enum {
			if allowed.Kind == value.Kind && allowed.String() == value.String() {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("value not in allowed set")
		}
	}

	return nil
}

// ValidationErrors collects every field failure from one Validate call,
// instead of stopping at the first.
type ValidationErrors struct {
	errors []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationErrors) Add(field, message string) {
	e.errors = append(e.errors, FieldError{Field: field, Message: message})
}

func (e *ValidationErrors) HasErrors() bool {
	return len(e.errors) > 0
}

func (e *ValidationErrors) Error() string {
	if len(e.errors) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e.errors))
	for _, err := range e.errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationErrors) Errors() []FieldError {
	return e.errors
}
