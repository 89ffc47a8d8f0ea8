package config

import (
	"path/filepath"
	"testing"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

func TestLoadKnowledgeSchemas(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "models", "knowledge", "countries.yaml"), `
name: countries
strict: true
fields:
  - name: code
    kind: chars
    required: true
    min_length: 2
    max_length: 2
  - name: name
    kind: chars
    required: true
  - name: population
    kind: integer
    required: false
    min: 0
`)

	schemas, err := loadKnowledgeSchemas(filepath.Join(root, "models", "knowledge"))
	if err != nil {
		t.Fatalf("loadKnowledgeSchemas: %v", err)
	}
	ds, ok := schemas["countries"]
	if !ok {
		t.Fatal("expected a countries schema")
	}
	if !ds.Strict || len(ds.Fields) != 3 {
		t.Fatalf("unexpected schema: %+v", ds)
	}

	valid := map[string]data.DataValue{
		"code": data.Chars("KR"),
		"name": data.Chars("Korea"),
	}
	if err := ds.Validate(valid); err != nil {
		t.Fatalf("expected valid row, got %v", err)
	}

	invalid := map[string]data.DataValue{
		"code": data.Chars("KOR"),
		"name": data.Chars("Korea"),
	}
	if err := ds.Validate(invalid); err == nil {
		t.Fatal("expected max_length violation")
	}
}

func TestLoadKnowledgeSchemasRejectsUnknownKind(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "models", "knowledge", "bad.yaml"), `
name: bad
fields:
  - name: x
    kind: nonsense
`)

	if _, err := loadKnowledgeSchemas(filepath.Join(root, "models", "knowledge")); err == nil {
		t.Fatal("expected an error for an unknown field kind")
	}
}

func TestLoadKnowledgeSchemasEmptyDirOK(t *testing.T) {
	root := t.TempDir()
	schemas, err := loadKnowledgeSchemas(filepath.Join(root, "models", "knowledge"))
	if err != nil {
		t.Fatalf("expected no error for a missing dir, got %v", err)
	}
	if len(schemas) != 0 {
		t.Fatalf("expected no schemas, got %d", len(schemas))
	}
}
