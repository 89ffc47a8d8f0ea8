package engine

import (
	"reflect"
	"testing"

	"github.com/wp-labs/wp-motor-sub001/pkg/oml"
)

func TestModelIndexSelectsAllMatchingModelsLongestFirst(t *testing.T) {
	broad := &oml.ObjModel{Name: "broad", Rules: []string{"/app/*"}, Stub: true}
	narrow := &oml.ObjModel{Name: "narrow", Rules: []string{"/app/billing"}, Stub: true}
	unrelated := &oml.ObjModel{Name: "unrelated", Rules: []string{"/other/**"}, Stub: true}

	idx := NewModelIndex([]*oml.ObjModel{broad, narrow, unrelated})
	got := idx.Select("/app/billing")

	var names []string
	for _, m := range got {
		names = append(names, m.Name)
	}
	want := []string{"narrow", "broad"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("Select(/app/billing) = %v, want %v", names, want)
	}
}

func TestModelIndexNoMatchReturnsEmpty(t *testing.T) {
	idx := NewModelIndex([]*oml.ObjModel{{Name: "m", Rules: []string{"/app/*"}, Stub: true}})
	if got := idx.Select("/other/path"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestModelIndexDoubleStarMatchesNestedSegments(t *testing.T) {
	idx := NewModelIndex([]*oml.ObjModel{{Name: "m", Rules: []string{"/app/**"}, Stub: true}})
	got := idx.Select("/app/billing/invoice")
	if len(got) != 1 || got[0].Name != "m" {
		t.Fatalf("expected /app/** to match nested rule_key, got %v", got)
	}
}
