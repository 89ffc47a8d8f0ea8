package config

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
)

// connectorFile is the shape of one connectors/{source,sink}.d/*.toml
// file: one or more connector definitions, each naming the kind it
// adapts, its default params, and the subset of keys a topology binding
// may override (§4.1, S4).
type connectorFile struct {
	Connector []connectorEntry `toml:"connector"`
}

type connectorEntry struct {
	ID            string         `toml:"id"`
	Kind          string         `toml:"kind"`
	AllowOverride []string       `toml:"allow_override"`
	Params        map[string]any `toml:"params"`
}

func loadConnectorDefs(dir string, scope data.Scope) (map[string]data.ConnectorDef, error) {
	out := make(map[string]data.ConnectorDef)
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, errs.NewConfigError(dir, "glob connector defs: "+err.Error())
	}
	for _, path := range matches {
		var f connectorFile
		meta, err := toml.DecodeFile(path, &f)
		if err != nil {
			return nil, errs.NewConfigError(path, "parse connector file: "+err.Error())
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, errs.NewConfigError(path, "unknown key "+undecoded[0].String())
		}
		for _, c := range f.Connector {
			if c.ID == "" {
				return nil, errs.NewConfigError(path, "connector entry missing id")
			}
			if _, exists := out[c.ID]; exists {
				return nil, errs.NewConfigError(path, fmt.Sprintf("connector id %q already defined", c.ID))
			}
			out[c.ID] = data.ConnectorDef{
				ID:            c.ID,
				Kind:          c.Kind,
				Scope:         scope,
				AllowOverride: c.AllowOverride,
				DefaultParams: c.Params,
				Origin:        path,
			}
		}
	}
	return out, nil
}
