package tcpframe

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"testing"
)

func TestDetectFramingPicksLenForPlausibleLength(t *testing.T) {
	var buf bytes.Buffer
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], 5)
	buf.Write(hdr[:])
	buf.WriteString("hello")
	r := bufio.NewReader(&buf)
	if mode := detectFraming(r, 0); mode != FramingLen {
		t.Fatalf("got %v, want FramingLen", mode)
	}
}

func TestDetectFramingFallsBackToLineForImplausibleLength(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("GET /\r\n")
	r := bufio.NewReader(&buf)
	if mode := detectFraming(r, 1024); mode != FramingLine {
		t.Fatalf("got %v, want FramingLine", mode)
	}
}

func TestDetectFramingRejectsOversizeLength(t *testing.T) {
	var buf bytes.Buffer
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], 1<<20)
	buf.Write(hdr[:])
	r := bufio.NewReader(&buf)
	if mode := detectFraming(r, 1024); mode != FramingLine {
		t.Fatalf("got %v, want FramingLine when length exceeds tcp_recv_bytes", mode)
	}
}

func TestTrimCRLF(t *testing.T) {
	cases := []struct{ in, want string }{
		{"abc\r\n", "abc"},
		{"abc\n", "abc"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, c := range cases {
		if got := string(trimCRLF([]byte(c.in))); got != c.want {
			t.Fatalf("trimCRLF(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
