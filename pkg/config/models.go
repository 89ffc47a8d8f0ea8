package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
	"github.com/wp-labs/wp-motor-sub001/pkg/oml"
	"github.com/wp-labs/wp-motor-sub001/pkg/wpl"
)

// The WPL and OML surface grammars are explicitly out of scope (§1
// Non-goals): rather than writing a bespoke text parser for
// models/wpl/*.wpl and models/oml/*.oml, this loader gives both a TOML
// schema that decodes directly into the structs wpl.NewProgram and
// oml.ObjModel already accept — the same BurntSushi decode §6 already
// uses everywhere else in the config tree, and no custom grammar is
// ever written.

// wplFile is one models/wpl/*.wpl file: the field program bound to one
// source key.
type wplFile struct {
	SourceKey string          `toml:"source_key"`
	Field     []wplFieldEntry `toml:"field"`
}

type wplFieldEntry struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
	Type    string `toml:"type"`
}

func loadWplPrograms(dir string) (map[string]*wpl.Program, error) {
	out := make(map[string]*wpl.Program)
	matches, err := filepath.Glob(filepath.Join(dir, "*.wpl"))
	if err != nil {
		return nil, errs.NewConfigError(dir, "glob wpl files: "+err.Error())
	}
	for _, path := range matches {
		var f wplFile
		meta, err := toml.DecodeFile(path, &f)
		if err != nil {
			return nil, errs.NewConfigError(path, "parse wpl file: "+err.Error())
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, errs.NewConfigError(path, "unknown key "+undecoded[0].String())
		}
		if f.SourceKey == "" {
			return nil, errs.NewConfigError(path, "missing source_key")
		}
		specs := make([]struct {
			Name    string
			Pattern string
			Type    data.DataType
		}, len(f.Field))
		for i, fe := range f.Field {
			dt, err := parseDataType(fe.Type)
			if err != nil {
				return nil, errs.NewConfigError(path, err.Error())
			}
			specs[i].Name = fe.Name
			specs[i].Pattern = fe.Pattern
			specs[i].Type = dt
		}
		prog, err := wpl.NewProgram(specs)
		if err != nil {
			return nil, errs.NewConfigError(path, err.Error())
		}
		if _, exists := out[f.SourceKey]; exists {
			return nil, errs.NewConfigError(path, fmt.Sprintf("duplicate wpl program for source_key %q", f.SourceKey))
		}
		out[f.SourceKey] = prog
	}
	return out, nil
}

func parseDataType(name string) (data.DataType, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return data.TypeAuto, nil
	case "bool":
		return data.TypeBool, nil
	case "integer", "int":
		return data.TypeInteger, nil
	case "float":
		return data.TypeFloat, nil
	case "chars", "string":
		return data.TypeChars, nil
	case "bytes":
		return data.TypeBytes, nil
	case "time":
		return data.TypeTime, nil
	case "array":
		return data.TypeArray, nil
	case "object":
		return data.TypeObject, nil
	default:
		return data.TypeAuto, fmt.Errorf("unknown field type %q", name)
	}
}

// omlFile is one models/oml/*.oml file: zero or more named models.
type omlFile struct {
	Model []omlModelEntry `toml:"model"`
}

type omlModelEntry struct {
	Name          string          `toml:"name"`
	Rules         []string        `toml:"rules"`
	HasTempFields bool            `toml:"has_temp_fields"`
	Stub          bool            `toml:"stub"`
	Item          []omlItemEntry  `toml:"item"`
}

type omlItemEntry struct {
	Target  string                 `toml:"target"`
	Type    string                 `toml:"type"`
	Way     map[string]any         `toml:"way"`
}

func loadOmlModels(dir string) ([]*oml.ObjModel, error) {
	var out []*oml.ObjModel
	matches, err := filepath.Glob(filepath.Join(dir, "*.oml"))
	if err != nil {
		return nil, errs.NewConfigError(dir, "glob oml files: "+err.Error())
	}
	for _, path := range matches {
		var f omlFile
		meta, err := toml.DecodeFile(path, &f)
		if err != nil {
			return nil, errs.NewConfigError(path, "parse oml file: "+err.Error())
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, errs.NewConfigError(path, "unknown key "+undecoded[0].String())
		}
		for _, me := range f.Model {
			m := &oml.ObjModel{Name: me.Name, Rules: me.Rules, HasTempFields: me.HasTempFields, Stub: me.Stub}
			if !me.Stub {
				for _, it := range me.Item {
					dt, err := parseDataType(it.Type)
					if err != nil {
						return nil, errs.NewConfigError(path, err.Error())
					}
					eval, err := BuildEvaluator(it.Way)
					if err != nil {
						return nil, errs.NewConfigError(path, fmt.Sprintf("model %q item %q: %v", me.Name, it.Target, err))
					}
					target := oml.NamedTarget(it.Target, dt)
					m.Items = append(m.Items, oml.Binding{Targets: []oml.EvalTarget{target}, Way: eval})
				}
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// BuildEvaluator recursively decodes a TOML table into the matching
// oml.Evaluator, dispatching on its "kind" key. Each branch mirrors the
// concrete evaluator structs in pkg/oml one-for-one. Used both for
// models/oml/*.oml item bindings and for a sink binding's "filter" way
// table (§4.6 step 3), since both are just an oml.Evaluator spec.
func BuildEvaluator(node map[string]any) (oml.Evaluator, error) {
	if node == nil {
		return nil, fmt.Errorf("missing way")
	}
	kind, _ := node["kind"].(string)
	switch kind {
	case "cmp":
		src, err := buildSubEvaluator(node, "source")
		if err != nil {
			return nil, err
		}
		return oml.CmpEval{
			Source: src,
			Cmp:    oml.Comparator(stringVal(node, "cmp")),
			Value:  stringVal(node, "value"),
			Values: stringSlice(node, "values"),
		}, nil

	case "and", "or":
		operandsRaw, _ := node["operands"].([]any)
		operands := make([]oml.Evaluator, 0, len(operandsRaw))
		for _, or := range operandsRaw {
			om, ok := or.(map[string]any)
			if !ok {
				continue
			}
			ev, err := BuildEvaluator(om)
			if err != nil {
				return nil, err
			}
			operands = append(operands, ev)
		}
		if kind == "and" {
			return oml.AndEval{Operands: operands}, nil
		}
		return oml.OrEval{Operands: operands}, nil

	case "not":
		operand, err := buildSubEvaluator(node, "operand")
		if err != nil {
			return nil, err
		}
		return oml.NotEval{Operand: operand}, nil

	case "read":
		get := stringPtr(node, "get")
		return oml.ReadEval{Get: get, Option: stringSlice(node, "option")}, nil

	case "const":
		return oml.ConstEval{Value: data.Chars(stringVal(node, "value"))}, nil

	case "fun":
		return oml.FunEval{Name: stringVal(node, "name")}, nil

	case "sql":
		condsRaw, _ := node["where"].([]any)
		conds := make([]oml.SqlCondition, 0, len(condsRaw))
		for _, cr := range condsRaw {
			cm, ok := cr.(map[string]any)
			if !ok {
				continue
			}
			conds = append(conds, oml.SqlCondition{Column: stringVal(cm, "column"), Equals: stringVal(cm, "equals")})
		}
		return oml.SqlEval{Select: stringVal(node, "select"), Where: conds}, nil

	case "pipe":
		src, err := buildSubEvaluator(node, "source")
		if err != nil {
			return nil, err
		}
		return oml.PipeEval{Source: src, Steps: stringSlice(node, "steps")}, nil

	case "record":
		accessor, err := buildSubEvaluator(node, "accessor")
		if err != nil {
			return nil, err
		}
		def, err := buildOptionalSubEvaluator(node, "default")
		if err != nil {
			return nil, err
		}
		return oml.RecordEval{Accessor: accessor, Default: def}, nil

	case "match":
		src, err := buildSubEvaluator(node, "source")
		if err != nil {
			return nil, err
		}
		casesRaw, _ := node["cases"].([]any)
		cases := make([]oml.MatchCase, 0, len(casesRaw))
		for _, cr := range casesRaw {
			cm, ok := cr.(map[string]any)
			if !ok {
				continue
			}
			result, err := buildSubEvaluator(cm, "result")
			if err != nil {
				return nil, err
			}
			cases = append(cases, oml.MatchCase{
				Cmp:    oml.Comparator(stringVal(cm, "cmp")),
				Value:  stringVal(cm, "value"),
				Values: stringSlice(cm, "values"),
				Result: result,
			})
		}
		def, err := buildOptionalSubEvaluator(node, "default")
		if err != nil {
			return nil, err
		}
		return oml.MatchEval{Source: src, Cases: cases, Default: def}, nil

	case "map":
		fieldsRaw, _ := node["fields"].(map[string]any)
		fields := make(map[string]oml.Evaluator, len(fieldsRaw))
		keys := make([]string, 0, len(fieldsRaw))
		for k, v := range fieldsRaw {
			sub, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("map field %q: not a table", k)
			}
			ev, err := BuildEvaluator(sub)
			if err != nil {
				return nil, fmt.Errorf("map field %q: %w", k, err)
			}
			fields[k] = ev
			keys = append(keys, k)
		}
		return oml.MapEval{Keys: keys, Fields: fields}, nil

	case "fmt":
		argsRaw, _ := node["args"].(map[string]any)
		args := make(map[string]oml.Evaluator, len(argsRaw))
		for k, v := range argsRaw {
			sub, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("fmt arg %q: not a table", k)
			}
			ev, err := BuildEvaluator(sub)
			if err != nil {
				return nil, fmt.Errorf("fmt arg %q: %w", k, err)
			}
			args[k] = ev
		}
		return oml.FmtEval{Template: stringVal(node, "template"), Args: args}, nil

	default:
		return nil, fmt.Errorf("unknown evaluator kind %q", kind)
	}
}

func buildSubEvaluator(node map[string]any, key string) (oml.Evaluator, error) {
	sub, ok := node[key].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing %q", key)
	}
	return BuildEvaluator(sub)
}

func buildOptionalSubEvaluator(node map[string]any, key string) (oml.Evaluator, error) {
	sub, ok := node[key].(map[string]any)
	if !ok {
		return nil, nil
	}
	return BuildEvaluator(sub)
}

func stringPtr(node map[string]any, key string) *string {
	s, ok := node[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func stringVal(node map[string]any, key string) string {
	s, _ := node[key].(string)
	return s
}

func stringSlice(node map[string]any, key string) []string {
	raw, _ := node[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
