package config

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/wp-labs/wp-motor-sub001/pkg/connector"
	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
	"github.com/wp-labs/wp-motor-sub001/pkg/router"
)

// wpsrcFile is topology/sources/wpsrc.toml (§6): the list of source
// bindings, each naming the connector it connects through and the
// params it overrides.
type wpsrcFile struct {
	Sources []sourceBinding `toml:"sources"`
}

type sourceBinding struct {
	Key            string         `toml:"key"`
	Connect        string         `toml:"connect"`
	Enable         *bool          `toml:"enable"`
	Tags           []string       `toml:"tags"`
	ParamsOverride map[string]any `toml:"params_override"`
}

func resolveSources(path string, defs map[string]data.ConnectorDef, envDict map[string]string) ([]data.SourceSpec, error) {
	var f wpsrcFile
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, errs.NewConfigError(path, "parse wpsrc: "+err.Error())
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errs.NewConfigError(path, "unknown key "+undecoded[0].String())
	}

	var out []data.SourceSpec
	for _, b := range f.Sources {
		if b.Enable != nil && !*b.Enable {
			continue
		}
		def, ok := defs[b.Connect]
		if !ok {
			return nil, errs.NewConfigError(path, fmt.Sprintf("source %q: unknown connector %q", b.Key, b.Connect))
		}
		merged, err := connector.MergeParams(def.DefaultParams, b.ParamsOverride, def.AllowOverride)
		if err != nil {
			return nil, err
		}
		resolved, unresolved := connector.SubstituteEnv(merged, envDict)
		if unresolved != "" {
			return nil, errs.NewConfigError(path, fmt.Sprintf("source %q: unresolved ${%s}", b.Key, unresolved))
		}
		out = append(out, data.SourceSpec{
			Name:        b.Key,
			Kind:        def.Kind,
			ConnectorID: def.ID,
			Params:      resolved.(map[string]any),
			Tags:        data.NewTags(b.Tags...),
		})
	}
	return out, nil
}

// sinkGroupFile is one topology/sinks/{business,infra}.d/*.toml file:
// exactly one named group with its member sink bindings (§4.9, §6).
type sinkGroupFile struct {
	Group sinkGroupEntry `toml:"sink_group"`
}

type sinkGroupEntry struct {
	Name     string             `toml:"name"`
	Rule     []string           `toml:"rule"`
	Oml      []string           `toml:"oml"`
	Tags     []string           `toml:"tags"`
	Parallel int                `toml:"parallel"`
	Sinks    []sinkBindingEntry `toml:"sinks"`
}

type sinkBindingEntry struct {
	Name         string         `toml:"name"`
	Connect      string         `toml:"connect"`
	Params       map[string]any `toml:"params"`
	Filter       map[string]any `toml:"filter"`
	FilterExpect bool           `toml:"filter_expect"`
	Tags         []string       `toml:"tags"`
}

// sinkDefaultsFile is topology/sinks/defaults.toml: per-connector
// baseline params applied under a binding's own params, and a
// fallback group parallelism used when a group entry omits it.
type sinkDefaultsFile struct {
	Parallel int                       `toml:"parallel"`
	Defaults map[string]map[string]any `toml:"defaults"`
}

func loadSinkDefaults(path string) (sinkDefaultsFile, error) {
	var f sinkDefaultsFile
	if !fileExists(path) {
		return f, nil
	}
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return f, errs.NewConfigError(path, "parse sink defaults: "+err.Error())
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return f, errs.NewConfigError(path, "unknown key "+undecoded[0].String())
	}
	return f, nil
}

// resolvedGroup pairs a router.Group (ready for the Router) with the
// FilterFunc-bearing bindings a caller still needs to compile OML
// filter evaluators for (§4.6 step 3).
type resolvedGroup struct {
	Group   router.Group
	Filters map[string]map[string]any // sink name -> filter "way" table, when set
}

func resolveSinkGroups(dir string, defs map[string]data.ConnectorDef, defaults sinkDefaultsFile, envDict map[string]string) ([]resolvedGroup, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, errs.NewConfigError(dir, "glob sink groups: "+err.Error())
	}
	var out []resolvedGroup
	for _, path := range matches {
		var f sinkGroupFile
		meta, err := toml.DecodeFile(path, &f)
		if err != nil {
			return nil, errs.NewConfigError(path, "parse sink group: "+err.Error())
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, errs.NewConfigError(path, "unknown key "+undecoded[0].String())
		}
		g := f.Group
		if g.Parallel == 0 {
			g.Parallel = defaults.Parallel
		}

		rg := resolvedGroup{
			Group:   router.Group{Name: g.Name, Rule: g.Rule, Oml: g.Oml},
			Filters: map[string]map[string]any{},
		}
		for _, sb := range g.Sinks {
			def, ok := defs[sb.Connect]
			if !ok {
				return nil, errs.NewConfigError(path, fmt.Sprintf("sink %q: unknown connector %q", sb.Name, sb.Connect))
			}
			base := def.DefaultParams
			if d, ok := defaults.Defaults[sb.Connect]; ok {
				layered := make(map[string]any, len(d)+len(def.DefaultParams))
				for k, v := range d {
					layered[k] = v
				}
				for k, v := range def.DefaultParams {
					layered[k] = v
				}
				base = layered
			}
			merged, err := connector.MergeParams(base, sb.Params, def.AllowOverride)
			if err != nil {
				return nil, err
			}
			resolved, unresolved := connector.SubstituteEnv(merged, envDict)
			if unresolved != "" {
				return nil, errs.NewConfigError(path, fmt.Sprintf("sink %q: unresolved ${%s}", sb.Name, unresolved))
			}
			rg.Group.Sinks = append(rg.Group.Sinks, data.SinkSpec{
				Name:         sb.Name,
				Kind:         def.Kind,
				ConnectorID:  def.ID,
				Params:       resolved.(map[string]any),
				Filter:       sb.Filter,
				FilterExpect: sb.FilterExpect,
			})
			if len(sb.Filter) > 0 {
				rg.Filters[sb.Name] = sb.Filter
			}
		}
		if err := rg.Group.Validate(); err != nil {
			return nil, err
		}
		out = append(out, rg)
	}
	return out, nil
}
