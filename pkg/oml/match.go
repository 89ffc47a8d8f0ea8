package oml

import (
	"regexp"
	"strings"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// Comparator names the test applied to a case against the evaluated
// source value.
type Comparator string

const (
	CmpEquals     Comparator = "equals"
	CmpIn         Comparator = "in"
	CmpStartsWith Comparator = "starts_with"
	CmpGlob       Comparator = "glob"
	CmpRegex      Comparator = "regex"
)

// MatchCase is one arm of a Match evaluator: if Cmp(sourceValue, Value)
// holds, Result is evaluated and returned.
type MatchCase struct {
	Cmp    Comparator
	Value  string
	Values []string // used by CmpIn
	Result Evaluator
}

// MatchEval evaluates Source, tries each Case in order (first match
// wins), and falls back to Default when no case matches.
type MatchEval struct {
	Source  Evaluator
	Cases   []MatchCase
	Default Evaluator
}

func (m MatchEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := m.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	f := storage.AsField()
	return &f, nil
}

func (m MatchEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	sourceField, err := m.Source.ExtractOne(EvalTarget{}, src, dst)
	if err != nil {
		return nil, err
	}
	str := ""
	if sourceField != nil {
		str = sourceField.Value.String()
	}
	for _, c := range m.Cases {
		if matchCase(c, str) {
			return c.Result.ExtractStorage(target, src, dst)
		}
	}
	if m.Default != nil {
		return m.Default.ExtractStorage(target, src, dst)
	}
	return nil, nil
}

func matchCase(c MatchCase, value string) bool {
	switch c.Cmp {
	case CmpEquals:
		return value == c.Value
	case CmpIn:
		for _, v := range c.Values {
			if v == value {
				return true
			}
		}
		return false
	case CmpStartsWith:
		return strings.HasPrefix(value, c.Value)
	case CmpGlob:
		return globMatch(c.Value, value)
	case CmpRegex:
		ok, _ := regexp.MatchString(c.Value, value)
		return ok
	default:
		return false
	}
}

// globMatch implements a small "*" (any run) / "?" (one char) matcher,
// independent of the router's "/"-segment glob (§4.9), for case values
// that are plain string globs rather than path-shaped rule keys.
func globMatch(pattern, s string) bool {
	re := "^" + regexp.QuoteMeta(pattern) + "$"
	re = strings.ReplaceAll(re, `\*`, ".*")
	re = strings.ReplaceAll(re, `\?`, ".")
	ok, _ := regexp.MatchString(re, s)
	return ok
}
