package connector

import (
	"strings"
	"testing"
)

func TestMergeParamsAllowedOverrideWins(t *testing.T) {
	defaults := map[string]any{"base": "/data", "file": "default.dat"}
	overrides := map[string]any{"file": "a.dat"}
	merged, err := MergeParams(defaults, overrides, []string{"base", "file"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged["file"] != "a.dat" {
		t.Fatalf("expected override to win, got %v", merged["file"])
	}
	if merged["base"] != "/data" {
		t.Fatalf("expected default to pass through, got %v", merged["base"])
	}
}

func TestMergeParamsRejectsDisallowedKey(t *testing.T) {
	// S4: connector file_json_sink with allow_override=["base","file"].
	defaults := map[string]any{"base": "/data", "file": "default.dat"}
	overrides := map[string]any{"path": "/tmp/a"}
	_, err := MergeParams(defaults, overrides, []string{"base", "file"})
	if err == nil {
		t.Fatal("expected rejection for disallowed override key")
	}
	want := "Parameter override 'path' not allowed. Permitted overrides: [base, file]"
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not contain expected message %q", err.Error(), want)
	}
}

func TestMergeParamsRejectsNestedOverride(t *testing.T) {
	defaults := map[string]any{"base": "/data"}
	overrides := map[string]any{"params": map[string]any{"x": 1}}
	_, err := MergeParams(defaults, overrides, []string{"base", "params"})
	if err == nil {
		t.Fatal("expected rejection for nested params override")
	}
}

func TestMergeParamsIdempotent(t *testing.T) {
	// L1: merge_params(merge_params(d, o, a), {}, a) == merge_params(d, o, a).
	defaults := map[string]any{"base": "/data", "file": "default.dat"}
	overrides := map[string]any{"file": "a.dat"}
	allow := []string{"base", "file"}

	once, err := MergeParams(defaults, overrides, allow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := MergeParams(once, map[string]any{}, allow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(once) != len(twice) {
		t.Fatalf("length mismatch: %v vs %v", once, twice)
	}
	for k, v := range once {
		if twice[k] != v {
			t.Fatalf("key %q mismatch: %v vs %v", k, v, twice[k])
		}
	}
}

func TestSubstituteEnvResolvesFromDict(t *testing.T) {
	dict := map[string]string{"HOME_DIR": "/srv/wp"}
	out, unresolved := SubstituteEnv(map[string]any{"path": "${HOME_DIR}/data.log"}, dict)
	if unresolved != "" {
		t.Fatalf("unexpected unresolved placeholder: %s", unresolved)
	}
	m := out.(map[string]any)
	if m["path"] != "/srv/wp/data.log" {
		t.Fatalf("unexpected substitution result: %v", m["path"])
	}
}

func TestSubstituteEnvReportsFirstUnresolved(t *testing.T) {
	_, unresolved := SubstituteEnv(map[string]any{"path": "${MISSING_VAR}/x"}, map[string]string{})
	if unresolved != "MISSING_VAR" {
		t.Fatalf("expected MISSING_VAR, got %q", unresolved)
	}
}
