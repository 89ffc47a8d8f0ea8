// Package pipefn implements the pipe function table consumed by the
// OML Pipe evaluator: pure value transforms taking and returning a
// single field. Each function is grounded on a direct stdlib primitive,
// the same way the teacher reaches for stdlib (regexp, strings) for
// small value transforms in pkg/filter/evaluator.go rather than a
// third-party micro-library — no pack dependency covers a pipe-function
// table this size, so this package leans fully on the standard library
// (see DESIGN.md).
package pipefn

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// Func is a pipe function: it consumes an owned field and produces a new
// one. Idempotent reports whether applying Apply twice yields the same
// result as applying it once (L4).
type Func struct {
	Name       string
	Idempotent bool
	Apply      func(in data.DataField, arg string) (data.DataField, error)
	// StorageApply, when non-nil, lets the function operate directly on
	// FieldStorage to preserve a Shared variant (used by get(path)).
	StorageApply func(in data.FieldStorage, arg string) (data.FieldStorage, error)
}

// Table is the closed registry of builtin pipe functions, keyed by name.
var Table = map[string]*Func{}

func register(f *Func) { Table[f.Name] = f }

func init() {
	register(&Func{Name: "base64_encode", Idempotent: false, Apply: base64Encode})
	register(&Func{Name: "base64_decode", Idempotent: true, Apply: base64Decode})
	register(&Func{Name: "hex_encode", Idempotent: false, Apply: hexEncode})
	register(&Func{Name: "hex_decode", Idempotent: true, Apply: hexDecode})
	register(&Func{Name: "html_escape", Idempotent: false, Apply: htmlEscape})
	register(&Func{Name: "html_unescape", Idempotent: true, Apply: htmlUnescape})
	register(&Func{Name: "str_escape", Idempotent: false, Apply: strEscape})
	register(&Func{Name: "json_escape", Idempotent: false, Apply: jsonEscape})
	register(&Func{Name: "json_unescape", Idempotent: true, Apply: jsonUnescape})
	register(&Func{Name: "time_to_ts", Idempotent: false, Apply: timeToTs("s")})
	register(&Func{Name: "time_to_ts_ms", Idempotent: false, Apply: timeToTs("ms")})
	register(&Func{Name: "time_to_ts_us", Idempotent: false, Apply: timeToTs("us")})
	register(&Func{Name: "now_time", Idempotent: false, Apply: nowTime})
	register(&Func{Name: "now_date", Idempotent: false, Apply: nowDate})
	register(&Func{Name: "now_hour", Idempotent: false, Apply: nowHour})
	register(&Func{Name: "nth", Idempotent: false, Apply: nth})
	register(&Func{Name: "get", Idempotent: false, Apply: get, StorageApply: getStorage})
	register(&Func{Name: "to_str", Idempotent: false, Apply: toStr})
	register(&Func{Name: "to_json", Idempotent: false, Apply: toJSON})
	register(&Func{Name: "skip_empty", Idempotent: true, Apply: skipEmpty})
	register(&Func{Name: "path", Idempotent: false, Apply: pathFn})
	register(&Func{Name: "url", Idempotent: false, Apply: urlFn})
	register(&Func{Name: "ip4_to_int", Idempotent: false, Apply: ip4ToInt})
	register(&Func{Name: "starts_with", Idempotent: false, Apply: startsWith})
	register(&Func{Name: "map_to", Idempotent: false, Apply: mapTo})
}

func base64Encode(in data.DataField, _ string) (data.DataField, error) {
	in.Value = data.Chars(base64.StdEncoding.EncodeToString([]byte(in.Value.String())))
	return in, nil
}

func base64Decode(in data.DataField, _ string) (data.DataField, error) {
	b, err := base64.StdEncoding.DecodeString(in.Value.String())
	if err != nil {
		return in, fmt.Errorf("pipefn: base64_decode: %w", err)
	}
	in.Value = data.Chars(string(b))
	return in, nil
}

func hexEncode(in data.DataField, _ string) (data.DataField, error) {
	in.Value = data.Chars(hex.EncodeToString([]byte(in.Value.String())))
	return in, nil
}

func hexDecode(in data.DataField, _ string) (data.DataField, error) {
	b, err := hex.DecodeString(in.Value.String())
	if err != nil {
		return in, fmt.Errorf("pipefn: hex_decode: %w", err)
	}
	in.Value = data.Chars(string(b))
	return in, nil
}

func htmlEscape(in data.DataField, _ string) (data.DataField, error) {
	in.Value = data.Chars(html.EscapeString(in.Value.String()))
	return in, nil
}

func htmlUnescape(in data.DataField, _ string) (data.DataField, error) {
	in.Value = data.Chars(html.UnescapeString(in.Value.String()))
	return in, nil
}

func strEscape(in data.DataField, _ string) (data.DataField, error) {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	in.Value = data.Chars(r.Replace(in.Value.String()))
	return in, nil
}

func jsonEscape(in data.DataField, _ string) (data.DataField, error) {
	b, err := json.Marshal(in.Value.String())
	if err != nil {
		return in, fmt.Errorf("pipefn: json_escape: %w", err)
	}
	s := string(b)
	in.Value = data.Chars(s[1 : len(s)-1]) // strip the surrounding quotes
	return in, nil
}

func jsonUnescape(in data.DataField, _ string) (data.DataField, error) {
	var s string
	if err := json.Unmarshal([]byte(`"`+in.Value.String()+`"`), &s); err != nil {
		return in, fmt.Errorf("pipefn: json_unescape: %w", err)
	}
	in.Value = data.Chars(s)
	return in, nil
}

func timeToTs(unit string) func(data.DataField, string) (data.DataField, error) {
	return func(in data.DataField, arg string) (data.DataField, error) {
		if in.Value.Kind != data.KindTime {
			return in, fmt.Errorf("pipefn: time_to_ts: field %q is not a time value", in.Name)
		}
		t := in.Value.Time
		if arg != "" {
			loc, err := time.LoadLocation(arg)
			if err != nil {
				return in, fmt.Errorf("pipefn: time_to_ts: invalid zone %q: %w", arg, err)
			}
			t = t.In(loc)
		}
		var n int64
		switch unit {
		case "s":
			n = t.Unix()
		case "ms":
			n = t.UnixMilli()
		case "us":
			n = t.UnixMicro()
		}
		in.Value = data.Integer(n)
		return in, nil
	}
}

func nowTime(in data.DataField, _ string) (data.DataField, error) {
	in.Value = data.TimeVal(time.Now())
	return in, nil
}

func nowDate(in data.DataField, _ string) (data.DataField, error) {
	s := time.Now().Format("20060102")
	n, _ := strconv.ParseInt(s, 10, 64)
	in.Value = data.Integer(n)
	return in, nil
}

func nowHour(in data.DataField, _ string) (data.DataField, error) {
	s := time.Now().Format("2006010215")
	n, _ := strconv.ParseInt(s, 10, 64)
	in.Value = data.Integer(n)
	return in, nil
}

// nth returns the i-th element of an Array field (P7). Out-of-range
// (including an empty array) returns the input field unchanged; the
// in-range result is a new DataField whose name equals the input's.
func nth(in data.DataField, arg string) (data.DataField, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return in, fmt.Errorf("pipefn: nth: invalid index %q: %w", arg, err)
	}
	if in.Value.Kind != data.KindArray || i < 0 || i >= len(in.Value.Array) {
		return in, nil
	}
	elem := in.Value.Array[i].AsField()
	return data.DataField{Name: in.Name, Meta: in.Meta, Value: elem.Value}, nil
}

// get navigates "/"-separated keys into an Object field.
func get(in data.DataField, arg string) (data.DataField, error) {
	fs, err := getStorage(data.Owned(in), arg)
	if err != nil {
		return in, err
	}
	return fs.AsField(), nil
}

// getStorage is the zero-copy form of get: when the located field is
// itself Shared, it is returned without materializing a fresh DataField.
func getStorage(in data.FieldStorage, arg string) (data.FieldStorage, error) {
	cur := in
	for _, key := range strings.Split(strings.Trim(arg, "/"), "/") {
		v := cur.AsField().Value
		if v.Kind != data.KindObject {
			return data.FieldStorage{}, fmt.Errorf("pipefn: get(%s): %q is not an object", arg, key)
		}
		next, ok := v.Fields[key]
		if !ok {
			return data.FieldStorage{}, fmt.Errorf("pipefn: get(%s): key %q not found", arg, key)
		}
		cur = next
	}
	return cur, nil
}

func toStr(in data.DataField, _ string) (data.DataField, error) {
	in.Value = data.Chars(in.Value.String())
	return in, nil
}

func toJSON(in data.DataField, _ string) (data.DataField, error) {
	v, err := toJSONValue(in.Value)
	if err != nil {
		return in, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return in, fmt.Errorf("pipefn: to_json: %w", err)
	}
	in.Value = data.Chars(string(b))
	return in, nil
}

func toJSONValue(v data.DataValue) (any, error) {
	switch v.Kind {
	case data.KindIgnore:
		return nil, nil
	case data.KindBool:
		return v.Bool, nil
	case data.KindInteger:
		return v.Integer, nil
	case data.KindFloat:
		return v.Float, nil
	case data.KindChars:
		return v.Chars, nil
	case data.KindBytes:
		return string(v.Bytes), nil
	case data.KindTime:
		return v.Time.Format(time.RFC3339), nil
	case data.KindArray:
		out := make([]any, len(v.Array))
		for i, fs := range v.Array {
			jv, err := toJSONValue(fs.AsField().Value)
			if err != nil {
				return nil, err
			}
			out[i] = jv
		}
		return out, nil
	case data.KindObject:
		out := make(map[string]any, len(v.Keys))
		for _, k := range v.Keys {
			jv, err := toJSONValue(v.Fields[k].AsField().Value)
			if err != nil {
				return nil, err
			}
			out[k] = jv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("pipefn: to_json: unsupported kind %v", v.Kind)
	}
}

// skipEmpty converts an empty value to Ignore (P8); otherwise identity.
func skipEmpty(in data.DataField, _ string) (data.DataField, error) {
	if in.Value.IsEmpty() {
		in.Value = data.Ignore()
	}
	return in, nil
}

func pathFn(in data.DataField, key string) (data.DataField, error) {
	p := in.Value.String()
	var out string
	switch key {
	case "name", "":
		out = filepath.Base(p)
	case "path":
		out = filepath.Dir(p)
	case "default":
		out = p
	default:
		return in, fmt.Errorf("pipefn: path: unknown key %q", key)
	}
	in.Value = data.Chars(out)
	return in, nil
}

func urlFn(in data.DataField, key string) (data.DataField, error) {
	u, err := url.Parse(in.Value.String())
	if err != nil {
		return in, fmt.Errorf("pipefn: url: %w", err)
	}
	var out string
	switch key {
	case "default", "":
		out = u.String()
	case "domain":
		out = u.Hostname()
	case "host":
		out = u.Host
	case "uri":
		out = u.RequestURI()
	case "path":
		out = u.Path
	case "params":
		out = u.RawQuery
	default:
		return in, fmt.Errorf("pipefn: url: unknown key %q", key)
	}
	in.Value = data.Chars(out)
	return in, nil
}

func ip4ToInt(in data.DataField, _ string) (data.DataField, error) {
	ip := net.ParseIP(in.Value.String())
	if ip == nil {
		return in, fmt.Errorf("pipefn: ip4_to_int: invalid address %q", in.Value.String())
	}
	v4 := ip.To4()
	if v4 == nil {
		return in, fmt.Errorf("pipefn: ip4_to_int: %q is not IPv4", in.Value.String())
	}
	n := int64(v4[0])<<24 | int64(v4[1])<<16 | int64(v4[2])<<8 | int64(v4[3])
	in.Value = data.Integer(n)
	return in, nil
}

func startsWith(in data.DataField, prefix string) (data.DataField, error) {
	if !strings.HasPrefix(in.Value.String(), prefix) {
		in.Value = data.Ignore()
	}
	return in, nil
}

// mapTo replaces a non-Ignore value with the literal arg; Ignore passes
// through unchanged.
func mapTo(in data.DataField, arg string) (data.DataField, error) {
	if in.Value.Kind == data.KindIgnore {
		return in, nil
	}
	in.Value = data.Chars(arg)
	return in, nil
}

// Apply folds a named sequence of pipe function calls over field,
// matching the Pipe evaluator's "fold a vector of PipeFun" contract.
// Each step is "name" or "name(arg)".
func Apply(field data.DataField, steps []string) (data.DataField, error) {
	cur := field
	for _, step := range steps {
		name, arg := splitStep(step)
		fn, ok := Table[name]
		if !ok {
			return cur, fmt.Errorf("pipefn: unknown pipe function %q", name)
		}
		next, err := fn.Apply(cur, arg)
		if err != nil {
			return cur, err
		}
		cur = next
	}
	return cur, nil
}

func splitStep(step string) (name, arg string) {
	open := strings.IndexByte(step, '(')
	if open < 0 || !strings.HasSuffix(step, ")") {
		return step, ""
	}
	return step[:open], step[open+1 : len(step)-1]
}
