// Package wpl interprets a compiled WPL pattern program against a raw
// input string, producing an ordered list of typed fields. The surface
// grammar (how a .wpl file's text becomes a Program) is out of scope of
// this module; only runtime interpretation over an already-parsed
// instruction list is implemented here, per the purpose-and-scope
// boundary that keeps WPL's textual syntax an external concern.
//
// Locator patterns are a tiny, closed atom language: a literal byte, or
// a "\s" whitespace-run, optionally prefixed by a cosmetic "*" marking a
// non-greedy search (the search is always leftmost/non-greedy; the
// marker exists only for readability in .wpl source and is stripped
// during compilation).
package wpl

import (
	"fmt"
	"unicode"
)

// AtomKind tags one element of a compiled locator pattern.
type AtomKind int

const (
	AtomLiteral AtomKind = iota
	AtomWhitespace
)

type atom struct {
	kind AtomKind
	lit  byte
}

// Pattern is a compiled locator: a sequence of atoms that CompilePattern
// turns raw WPL pattern text into.
type Pattern struct {
	atoms []atom
	rest  bool // "$" — capture to end of input, no further locate
}

// CompilePattern turns WPL pattern text ("*=", "=", "\\s=", "$", ...)
// into a Pattern ready for repeated use against many input lines.
func CompilePattern(src string) (Pattern, error) {
	if src == "$" {
		return Pattern{rest: true}, nil
	}
	s := src
	if len(s) > 0 && s[0] == '*' {
		s = s[1:] // cosmetic non-greedy marker; search is always leftmost
	}
	var atoms []atom
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == 's' {
			atoms = append(atoms, atom{kind: AtomWhitespace})
			i++
			continue
		}
		atoms = append(atoms, atom{kind: AtomLiteral, lit: s[i]})
	}
	if len(atoms) == 0 {
		return Pattern{}, fmt.Errorf("wpl: empty locator pattern %q", src)
	}
	return Pattern{atoms: atoms}, nil
}

// locate finds the leftmost position in s where the pattern's atom
// sequence matches, returning [start,end) of the match itself (the
// consumed separator), or ok=false if no match exists.
func (p Pattern) locate(s string) (start, end int, ok bool) {
	for start = 0; start <= len(s); start++ {
		if e, matched := p.matchAt(s, start); matched {
			return start, e, true
		}
	}
	return 0, 0, false
}

func (p Pattern) matchAt(s string, pos int) (int, bool) {
	for _, a := range p.atoms {
		switch a.kind {
		case AtomLiteral:
			if pos >= len(s) || s[pos] != a.lit {
				return 0, false
			}
			pos++
		case AtomWhitespace:
			start := pos
			for pos < len(s) && unicode.IsSpace(rune(s[pos])) {
				pos++
			}
			if pos == start {
				return 0, false
			}
		}
	}
	return pos, true
}
