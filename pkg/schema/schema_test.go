package schema

import (
	"testing"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

func TestDataSchemaValidate(t *testing.T) {
	tests := []struct {
		name      string
		schema    DataSchema
		row       map[string]data.DataValue
		wantError bool
	}{
		{
			name: "valid row, all fields present",
			schema: DataSchema{
				Name: "test",
				Fields: []FieldSchema{
					{Name: "name", Kind: data.KindChars, Required: true},
					{Name: "age", Kind: data.KindInteger, Required: true},
				},
			},
			row: map[string]data.DataValue{
				"name": data.Chars("John"),
				"age":  data.Integer(30),
			},
			wantError: false,
		},
		{
			name: "missing required field",
			schema: DataSchema{
				Name: "test",
				Fields: []FieldSchema{
					{Name: "name", Kind: data.KindChars, Required: true},
					{Name: "email", Kind: data.KindChars, Required: true},
				},
			},
			row: map[string]data.DataValue{
				"name": data.Chars("John"),
			},
			wantError: true,
		},
		{
			name: "wrong kind",
			schema: DataSchema{
				Name: "test",
				Fields: []FieldSchema{
					{Name: "age", Kind: data.KindInteger, Required: true},
				},
			},
			row: map[string]data.DataValue{
				"age": data.Chars("thirty"),
			},
			wantError: true,
		},
		{
			name: "optional field absent is fine",
			schema: DataSchema{
				Name: "test",
				Fields: []FieldSchema{
					{Name: "name", Kind: data.KindChars, Required: true},
					{Name: "nickname", Kind: data.KindChars, Required: false},
				},
			},
			row: map[string]data.DataValue{
				"name": data.Chars("John"),
			},
			wantError: false,
		},
		{
			name: "strict rejects undeclared column",
			schema: DataSchema{
				Name:   "test",
				Strict: true,
				Fields: []FieldSchema{
					{Name: "name", Kind: data.KindChars, Required: true},
				},
			},
			row: map[string]data.DataValue{
				"name":  data.Chars("John"),
				"extra": data.Chars("nope"),
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate(tt.row)
			if (err != nil) != tt.wantError {
				t.Fatalf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestFieldSchemaStringConstraints(t *testing.T) {
	minLen, maxLen := 2, 5
	field := FieldSchema{Name: "code", Kind: data.KindChars, MinLength: &minLen, MaxLength: &maxLen, Pattern: `^[A-Z]+$`}
	s := &DataSchema{Fields: []FieldSchema{field}}

	if err := s.ValidateField("code", data.Chars("AB")); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := s.ValidateField("code", data.Chars("A")); err == nil {
		t.Fatal("expected min length violation")
	}
	if err := s.ValidateField("code", data.Chars("TOOLONGCODE")); err == nil {
		t.Fatal("expected max length violation")
	}
	if err := s.ValidateField("code", data.Chars("ab")); err == nil {
		t.Fatal("expected pattern violation")
	}
}

func TestFieldSchemaNumericRange(t *testing.T) {
	min, max := 0.0, 100.0
	field := FieldSchema{Name: "score", Kind: data.KindFloat, Min: &min, Max: &max}
	s := &DataSchema{Fields: []FieldSchema{field}}

	if err := s.ValidateField("score", data.Float(50)); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := s.ValidateField("score", data.Float(-1)); err == nil {
		t.Fatal("expected below-min violation")
	}
	if err := s.ValidateField("score", data.Float(101)); err == nil {
		t.Fatal("expected above-max violation")
	}
}

func TestFieldSchemaEnum(t *testing.T) {
	field := FieldSchema{Name: "level", Kind: data.KindChars, Enum: []data.DataValue{data.Chars("low"), data.Chars("high")}}
	s := &DataSchema{Fields: []FieldSchema{field}}

	if err := s.ValidateField("level", data.Chars("high")); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := s.ValidateField("level", data.Chars("medium")); err == nil {
		t.Fatal("expected enum violation")
	}
}

func TestFieldSchemaArrayItems(t *testing.T) {
	items := &FieldSchema{Kind: data.KindInteger}
	field := FieldSchema{Name: "ids", Kind: data.KindArray, Items: items}
	s := &DataSchema{Fields: []FieldSchema{field}}

	valid := data.Array([]data.FieldStorage{
		data.Owned(data.DataField{Name: "0", Value: data.Integer(1)}),
		data.Owned(data.DataField{Name: "1", Value: data.Integer(2)}),
	})
	if err := s.ValidateField("ids", valid); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	invalid := data.Array([]data.FieldStorage{
		data.Owned(data.DataField{Name: "0", Value: data.Chars("nope")}),
	})
	if err := s.ValidateField("ids", invalid); err == nil {
		t.Fatal("expected array item kind violation")
	}
}

func TestValidationErrorsCollectsAll(t *testing.T) {
	s := &DataSchema{
		Fields: []FieldSchema{
			{Name: "a", Kind: data.KindChars, Required: true},
			{Name: "b", Kind: data.KindChars, Required: true},
		},
	}
	err := s.Validate(map[string]data.DataValue{})
	if err == nil {
		t.Fatal("expected error")
	}
	ve, ok := err.(*ValidationErrors)
	if !ok {
		t.Fatalf("expected *ValidationErrors, got %T", err)
	}
	if len(ve.Errors()) != 2 {
		t.Fatalf("expected 2 collected errors, got %d", len(ve.Errors()))
	}
}
