package wpl

import (
	"bytes"
	"testing"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

func TestDetectBOM(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want int
	}{
		{"utf8", []byte{0xEF, 0xBB, 0xBF, 'a'}, 3},
		{"utf32le", []byte{0xFF, 0xFE, 0x00, 0x00, 'a'}, 4},
		{"utf32be", []byte{0x00, 0x00, 0xFE, 0xFF, 'a'}, 4},
		{"utf16le", []byte{0xFF, 0xFE, 'a'}, 2},
		{"utf16be", []byte{0xFE, 0xFF, 'a'}, 2},
		{"none", []byte("hello"), 0},
		{"too_short", []byte{0xFF}, 0},
		{"only_bom", []byte{0xEF, 0xBB, 0xBF}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectBOM(tc.in); got != tc.want {
				t.Errorf("DetectBOM(%v) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestStripBOMIdempotent(t *testing.T) {
	// L2: strip_bom(strip_bom(x)) == strip_bom(x).
	in := []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}
	once := StripBOM(in)
	twice := StripBOM(once)
	if !bytes.Equal(once, twice) {
		t.Fatalf("strip not idempotent: once=%v twice=%v", once, twice)
	}
	if string(once) != "hi" {
		t.Fatalf("unexpected stripped content: %q", once)
	}
}

func TestPatternStarEqualsLocatesFirstEquals(t *testing.T) {
	// P6: "*=" on "key=value=extra" locates the first '='.
	p, err := CompilePattern("*=")
	if err != nil {
		t.Fatal(err)
	}
	start, end, ok := p.locate("key=value=extra")
	if !ok || start != 3 || end != 4 {
		t.Fatalf("got start=%d end=%d ok=%v, want 3 4 true", start, end, ok)
	}
}

func TestPatternBareEqualsSamePosition(t *testing.T) {
	p, err := CompilePattern("=")
	if err != nil {
		t.Fatal(err)
	}
	start, end, ok := p.locate("key=value=extra")
	if !ok || start != 3 || end != 4 {
		t.Fatalf("got start=%d end=%d ok=%v, want 3 4 true", start, end, ok)
	}
}

func TestPatternWhitespaceEqualsConsumesRun(t *testing.T) {
	p, err := CompilePattern(`\s=`)
	if err != nil {
		t.Fatal(err)
	}
	start, end, ok := p.locate("key   =value")
	if !ok || start != 3 || end != 7 {
		t.Fatalf("got start=%d end=%d ok=%v, want 3 7 true", start, end, ok)
	}
}

func TestProgramRunExtractsMethodAndPath(t *testing.T) {
	// S2: "GET /index HTTP/1.1" -> {method=GET, path=/index}.
	prog, err := NewProgram([]struct {
		Name    string
		Pattern string
		Type    data.DataType
	}{
		{"method", `\s`, data.TypeChars},
		{"path", `\s`, data.TypeChars},
		{"proto", "$", data.TypeChars},
	})
	if err != nil {
		t.Fatal(err)
	}
	fields, err := prog.Run("GET /index HTTP/1.1")
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[0].Value.Chars != "GET" {
		t.Fatalf("method = %q, want GET", fields[0].Value.Chars)
	}
	if fields[1].Value.Chars != "/index" {
		t.Fatalf("path = %q, want /index", fields[1].Value.Chars)
	}
	if fields[2].Value.Chars != "HTTP/1.1" {
		t.Fatalf("proto = %q, want HTTP/1.1", fields[2].Value.Chars)
	}
}
