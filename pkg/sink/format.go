package sink

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// Format selects the record formatter a sink's "fmt" parameter names.
type Format string

const (
	FormatJSON Format = "json"
	FormatKV   Format = "kv"
	FormatCSV  Format = "csv"
	FormatRaw  Format = "raw"
	FormatProto Format = "proto"
)

// RenderRecord formats rec as a single line of output bytes according
// to format. Only json (the default), kv and csv are rendered; raw,
// proto and any other name return an error, and every backend in this
// package renders through this function.
func RenderRecord(rec *data.DataRecord, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return renderJSON(rec)
	case FormatKV:
		return renderKV(rec), nil
	case FormatCSV:
		return renderCSV(rec), nil
	default:
		return nil, fmt.Errorf("sink: unsupported format %q", format)
	}
}

func renderJSON(rec *data.DataRecord) ([]byte, error) {
	ordered := make(map[string]any, len(rec.Items))
	keys := make([]string, 0, len(rec.Items))
	for _, it := range rec.Items {
		f := it.AsField()
		v, err := toJSONValue(f.Value)
		if err != nil {
			return nil, err
		}
		ordered[f.Name] = v
		keys = append(keys, f.Name)
	}
	// encoding/json sorts map keys alphabetically on its own; build the
	// object manually to preserve DataRecord's insertion order, which
	// matters for S2's exact expected output.
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, err := json.Marshal(ordered[k])
		if err != nil {
			return nil, err
		}
		sb.Write(kb)
		sb.WriteByte(':')
		sb.Write(vb)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
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
		return v.Time.Format("2006-01-02T15:04:05Z07:00"), nil
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
		return nil, fmt.Errorf("sink: unsupported value kind %v", v.Kind)
	}
}

func renderKV(rec *data.DataRecord) []byte {
	var sb strings.Builder
	for i, it := range rec.Items {
		if i > 0 {
			sb.WriteByte(' ')
		}
		f := it.AsField()
		fmt.Fprintf(&sb, "%s=%s", f.Name, f.Value.String())
	}
	return []byte(sb.String())
}

func renderCSV(rec *data.DataRecord) []byte {
	var sb strings.Builder
	for i, it := range rec.Items {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(it.AsField().Value.String())
	}
	return []byte(sb.String())
}
