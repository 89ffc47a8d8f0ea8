package pipefn

import (
	"testing"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

func TestNthEmptyArrayReturnsUnchanged(t *testing.T) {
	// P7: nth(0) on an empty array returns the original field unchanged.
	in := data.DataField{Name: "items", Value: data.Array(nil)}
	out, err := nth(in, "0")
	if err != nil {
		t.Fatal(err)
	}
	if out.Value.Kind != data.KindArray || len(out.Value.Array) != 0 {
		t.Fatalf("expected unchanged empty array, got %v", out.Value)
	}
}

func TestNthInRangeReturnsNamedElement(t *testing.T) {
	items := []data.FieldStorage{
		data.Owned(data.DataField{Name: "elem", Value: data.Chars("a")}),
		data.Owned(data.DataField{Name: "elem", Value: data.Chars("b")}),
	}
	in := data.DataField{Name: "items", Value: data.Array(items)}
	out, err := nth(in, "1")
	if err != nil {
		t.Fatal(err)
	}
	if out.Name != "items" {
		t.Fatalf("expected result name to equal input field's name, got %q", out.Name)
	}
	if out.Value.Chars != "b" {
		t.Fatalf("expected b, got %q", out.Value.Chars)
	}
}

func TestSkipEmpty(t *testing.T) {
	// P8: "", 0, 0.0, [], {}, Ignore all convert to Ignore; else identity.
	cases := []data.DataValue{
		data.Chars(""),
		data.Integer(0),
		data.Float(0),
		data.Array(nil),
		data.NewObject(nil, map[string]data.FieldStorage{}),
		data.Ignore(),
	}
	for _, v := range cases {
		out, err := skipEmpty(data.DataField{Name: "f", Value: v}, "")
		if err != nil {
			t.Fatal(err)
		}
		if out.Value.Kind != data.KindIgnore {
			t.Fatalf("expected Ignore for %v, got %v", v, out.Value.Kind)
		}
	}

	nonEmpty, err := skipEmpty(data.DataField{Name: "f", Value: data.Chars("x")}, "")
	if err != nil {
		t.Fatal(err)
	}
	if nonEmpty.Value.Chars != "x" {
		t.Fatalf("expected identity for non-empty value, got %v", nonEmpty.Value)
	}
}

func TestIdempotenceMarkers(t *testing.T) {
	// L4: base64_decode, skip_empty are idempotent; base64_encode, to_str are not.
	if !Table["base64_decode"].Idempotent {
		t.Error("base64_decode should be marked idempotent")
	}
	if !Table["skip_empty"].Idempotent {
		t.Error("skip_empty should be marked idempotent")
	}
	if Table["base64_encode"].Idempotent {
		t.Error("base64_encode should not be marked idempotent")
	}
	if Table["to_str"].Idempotent {
		t.Error("to_str should not be marked idempotent")
	}
}

func TestURLHostContainsDomainWhenPortAbsent(t *testing.T) {
	// L3: url(host) contains url(domain) as a prefix iff port is absent.
	in := data.DataField{Name: "u", Value: data.Chars("https://example.com/path")}
	host, err := urlFn(in, "host")
	if err != nil {
		t.Fatal(err)
	}
	domain, err := urlFn(in, "domain")
	if err != nil {
		t.Fatal(err)
	}
	if host.Value.Chars != domain.Value.Chars {
		t.Fatalf("expected host == domain without port, got host=%q domain=%q", host.Value.Chars, domain.Value.Chars)
	}

	withPort := data.DataField{Name: "u", Value: data.Chars("https://example.com:8443/path")}
	host2, _ := urlFn(withPort, "host")
	domain2, _ := urlFn(withPort, "domain")
	if host2.Value.Chars == domain2.Value.Chars {
		t.Fatalf("expected host != domain with port present, got %q", host2.Value.Chars)
	}
}
