package knowledge

import (
	"context"
	"testing"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/schema"
)

func TestValidatingStorePassesValidRows(t *testing.T) {
	inner := &countingStore{rows: []KnowledgeRow{{"code": data.Chars("KR"), "name": data.Chars("Korea")}}}
	schemas := map[string]*schema.DataSchema{
		"countries": {
			Name: "countries",
			Fields: []schema.FieldSchema{
				{Name: "code", Kind: data.KindChars, Required: true},
				{Name: "name", Kind: data.KindChars, Required: true},
			},
		},
	}
	s := NewValidatingStore(inner, schemas)

	rows, err := s.Lookup(context.Background(), "countries", nil)
	if err != nil {
		t.Fatalf("expected valid rows to pass, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestValidatingStoreRejectsInvalidRows(t *testing.T) {
	inner := &countingStore{rows: []KnowledgeRow{{"code": data.Integer(1)}}}
	schemas := map[string]*schema.DataSchema{
		"countries": {
			Name: "countries",
			Fields: []schema.FieldSchema{
				{Name: "code", Kind: data.KindChars, Required: true},
			},
		},
	}
	s := NewValidatingStore(inner, schemas)

	if _, err := s.Lookup(context.Background(), "countries", nil); err == nil {
		t.Fatal("expected validation error for wrong kind")
	}
}

func TestValidatingStorePassesThroughUndeclaredTables(t *testing.T) {
	inner := &countingStore{rows: []KnowledgeRow{{"anything": data.Integer(1)}}}
	s := NewValidatingStore(inner, map[string]*schema.DataSchema{})

	rows, err := s.Lookup(context.Background(), "orders", nil)
	if err != nil {
		t.Fatalf("expected no schema to mean no validation, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}
