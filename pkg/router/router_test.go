package router

import "testing"

func TestS3LongestMatcherWins(t *testing.T) {
	m1 := Group{Name: "m1", Oml: []string{"m1"}}
	m2 := Group{Name: "m2", Oml: []string{"/**"}}
	r, err := NewRouter([]Group{m1, m2})
	if err != nil {
		t.Fatal(err)
	}
	got := r.Route("/http/get", "m1")
	if len(got) != 1 || got[0].Name != "m1" {
		t.Fatalf("expected m1 to win on oml pattern match, got %v", got)
	}
}

func TestRuleGroupMatchedWhenNoOmlGroupMatches(t *testing.T) {
	biz := Group{Name: "biz", Rule: []string{"/http/*"}}
	r, err := NewRouter([]Group{biz})
	if err != nil {
		t.Fatal(err)
	}
	got := r.Route("/http/get", "unrelated-model")
	if len(got) != 1 || got[0].Name != "biz" {
		t.Fatalf("expected biz group via rule pattern, got %v", got)
	}
}

func TestNoMatchReturnsEmpty(t *testing.T) {
	r, err := NewRouter([]Group{{Name: "g", Rule: []string{"/only/this"}}})
	if err != nil {
		t.Fatal(err)
	}
	got := r.Route("/other/path", "m")
	if len(got) != 0 {
		t.Fatalf("expected no match, got %v", got)
	}
}

func TestTieBreaksOnConfigOrder(t *testing.T) {
	first := Group{Name: "first", Rule: []string{"/a/*"}}
	second := Group{Name: "second", Rule: []string{"/a/*"}}
	r, err := NewRouter([]Group{first, second})
	if err != nil {
		t.Fatal(err)
	}
	got := r.Route("/a/b", "m")
	if len(got) != 1 || got[0].Name != "first" {
		t.Fatalf("expected earlier-declared group to win tie, got %v", got)
	}
}

func TestValidateRejectsBothRuleAndOml(t *testing.T) {
	g := Group{Name: "bad", Rule: []string{"/a"}, Oml: []string{"m"}}
	if err := g.Validate(); err == nil {
		t.Fatal("expected validation error for mutually exclusive rule/oml")
	}
}

func TestGlobDoubleStarMatchesZeroOrMoreSegments(t *testing.T) {
	if !matchGlob("/**", "/http/get") {
		t.Fatal("expected /** to match /http/get")
	}
	if !matchGlob("/**", "/") {
		t.Fatal("expected /** to match the root")
	}
	if matchGlob("/http/*", "/http") {
		t.Fatal("expected /http/* to require exactly one more segment")
	}
}
