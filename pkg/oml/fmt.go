package oml

import (
	"strings"
	"sync"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// FmtEval renders a named string template ("{host} connected from
// {ip}") against a fixed argument list, each argument itself an
// evaluator. A missing variable is recorded into the process-local
// diagnostics buffer and rendered as an empty string, matching §4.7's
// "Fmt" contract.
type FmtEval struct {
	Template string
	Args     map[string]Evaluator
}

// Diagnostics is the process-local buffer of Fmt-variable-missing
// entries, addressable by record id for the CLI's error output (§6).
var Diagnostics = newDiagBuffer()

type diagBuffer struct {
	mu      sync.Mutex
	byID    map[uint64][]string
}

func newDiagBuffer() *diagBuffer {
	return &diagBuffer{byID: make(map[uint64][]string)}
}

func (d *diagBuffer) record(recordID uint64, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[recordID] = append(d.byID[recordID], msg)
}

// For returns the diagnostics recorded against recordID, if any.
func (d *diagBuffer) For(recordID uint64) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.byID[recordID]...)
}

func (f FmtEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := f.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	df := storage.AsField()
	return &df, nil
}

func (f FmtEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	out := f.Template
	for name, eval := range f.Args {
		placeholder := "{" + name + "}"
		if !strings.Contains(out, placeholder) {
			continue
		}
		field, err := eval.ExtractOne(EvalTarget{}, src, dst)
		if err != nil {
			return nil, err
		}
		val := ""
		if field == nil {
			Diagnostics.record(dst.ID, "FmtVarMissing:"+name)
		} else {
			val = field.Value.String()
		}
		out = strings.ReplaceAll(out, placeholder, val)
	}
	result := data.Owned(data.DataField{Name: target.NameOr(""), Meta: data.TypeChars, Value: data.Chars(out)})
	return &result, nil
}
