package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
	"github.com/wp-labs/wp-motor-sub001/pkg/schema"
)

// knowledgeSchemaFile is the YAML shape of one models/knowledge/*.yaml
// file: a single table's DataSchema, decoded straight off disk rather
// than through BurntSushi/toml, since §6 reserves YAML for these
// standalone schema documents (every other config fragment is TOML).
type knowledgeSchemaFile struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Strict      bool                 `yaml:"strict"`
	Fields      []knowledgeFieldFile `yaml:"fields"`
}

type knowledgeFieldFile struct {
	Name        string               `yaml:"name"`
	Kind        string               `yaml:"kind"`
	Required    bool                 `yaml:"required"`
	Description string               `yaml:"description"`
	Pattern     string               `yaml:"pattern"`
	MinLength   *int                 `yaml:"min_length"`
	MaxLength   *int                 `yaml:"max_length"`
	Min         *float64             `yaml:"min"`
	Max         *float64             `yaml:"max"`
	Enum        []string             `yaml:"enum"`
	Items       *knowledgeFieldFile  `yaml:"items"`
}

func loadKnowledgeSchemas(dir string) (map[string]*schema.DataSchema, error) {
	out := make(map[string]*schema.DataSchema)
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, errs.NewConfigError(dir, "glob knowledge schema files: "+err.Error())
	}
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.NewConfigError(path, "read knowledge schema: "+err.Error())
		}
		var f knowledgeSchemaFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, errs.NewConfigError(path, "parse knowledge schema: "+err.Error())
		}
		if f.Name == "" {
			return nil, errs.NewConfigError(path, "missing name")
		}
		ds, err := convertKnowledgeSchema(f)
		if err != nil {
			return nil, errs.NewConfigError(path, err.Error())
		}
		if _, exists := out[f.Name]; exists {
			return nil, errs.NewConfigError(path, "duplicate knowledge schema for table "+f.Name)
		}
		out[f.Name] = ds
	}
	return out, nil
}

func convertKnowledgeSchema(f knowledgeSchemaFile) (*schema.DataSchema, error) {
	ds := &schema.DataSchema{Name: f.Name, Description: f.Description, Strict: f.Strict}
	for _, ff := range f.Fields {
		field, err := convertKnowledgeField(ff)
		if err != nil {
			return nil, err
		}
		ds.Fields = append(ds.Fields, *field)
	}
	return ds, nil
}

func convertKnowledgeField(ff knowledgeFieldFile) (*schema.FieldSchema, error) {
	kind, err := parseKnowledgeKind(ff.Kind)
	if err != nil {
		return nil, err
	}
	field := &schema.FieldSchema{
		Name:        ff.Name,
		Kind:        kind,
		Required:    ff.Required,
		Description: ff.Description,
		Pattern:     ff.Pattern,
		MinLength:   ff.MinLength,
		MaxLength:   ff.MaxLength,
		Min:         ff.Min,
		Max:         ff.Max,
	}
	for _, raw := range ff.Enum {
		field.Enum = append(field.Enum, knowledgeValueForKind(kind, raw))
	}
	if ff.Items != nil {
		items, err := convertKnowledgeField(*ff.Items)
		if err != nil {
			return nil, err
		}
		field.Items = items
	}
	return field, nil
}

func parseKnowledgeKind(name string) (data.Kind, error) {
	switch name {
	case "bool":
		return data.KindBool, nil
	case "integer":
		return data.KindInteger, nil
	case "float":
		return data.KindFloat, nil
	case "chars":
		return data.KindChars, nil
	case "bytes":
		return data.KindBytes, nil
	case "time":
		return data.KindTime, nil
	case "array":
		return data.KindArray, nil
	case "object":
		return data.KindObject, nil
	default:
		return data.KindIgnore, errs.NewConfigError("", "unknown field kind "+name)
	}
}

func knowledgeValueForKind(kind data.Kind, raw string) data.DataValue {
	switch kind {
	case data.KindBool:
		b, _ := strconv.ParseBool(raw)
		return data.Bool(b)
	case data.KindInteger:
		i, _ := strconv.ParseInt(raw, 10, 64)
		return data.Integer(i)
	case data.KindFloat:
		v, _ := strconv.ParseFloat(raw, 64)
		return data.Float(v)
	default:
		return data.Chars(raw)
	}
}
