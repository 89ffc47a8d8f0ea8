// Package config loads the on-disk configuration tree (§6): connector
// definitions, source/sink topology bindings, WPL/OML model files, and
// the engine-wide TOML document, resolving every ${VAR} placeholder and
// merging per-binding parameter overrides under each connector's
// allow-list before handing the result to the engine and connector
// registries.
//
// Grounded on pkg/config/config.go's Load/Parse/Validate shape in the
// teacher, re-keyed from YAML to TOML per §6 and using
// BurntSushi/toml's MetaData-aware decode so unknown keys are reported
// (a ConfigError) rather than silently accepted.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
	"github.com/wp-labs/wp-motor-sub001/pkg/oml"
	"github.com/wp-labs/wp-motor-sub001/pkg/schema"
	"github.com/wp-labs/wp-motor-sub001/pkg/wpl"
)

// Tree is everything §6's configuration layer produces: the engine
// knobs, resolved source/sink specs, the rule router's group list (plus
// the filter source text a caller still needs to compile), and the
// WPL/OML model sets keyed the way the parse/transform stages expect.
type Tree struct {
	Engine EngineConfig

	Sources []data.SourceSpec
	Groups  []resolvedGroup

	Programs map[string]*wpl.Program // source_key -> WPL program
	Models   []*oml.ObjModel

	SourceDefs map[string]data.ConnectorDef
	SinkDefs   map[string]data.ConnectorDef

	// KnowledgeSchemas is keyed by table name (one models/knowledge/*.yaml
	// file per table), for a knowledge.Store to validate Lookup rows
	// against.
	KnowledgeSchemas map[string]*schema.DataSchema
}

// Load reads the full configuration tree rooted at workRoot (§6's
// run-argument "work_root"):
//
//	connectors/source.d/*.toml, connectors/sink.d/*.toml
//	topology/sources/wpsrc.toml
//	topology/sinks/business.d/*.toml, topology/sinks/infra.d/*.toml
//	topology/sinks/defaults.toml
//	models/wpl/*.wpl, models/oml/*.oml
//	engine.toml
func Load(workRoot string) (*Tree, error) {
	envDict := envDict()

	sourceDefs, err := loadConnectorDefs(filepath.Join(workRoot, "connectors", "source.d"), data.ScopeSource)
	if err != nil {
		return nil, err
	}
	sinkDefs, err := loadConnectorDefs(filepath.Join(workRoot, "connectors", "sink.d"), data.ScopeSink)
	if err != nil {
		return nil, err
	}

	sources, err := resolveSources(filepath.Join(workRoot, "topology", "sources", "wpsrc.toml"), sourceDefs, envDict)
	if err != nil {
		return nil, err
	}

	sinkDefaults, err := loadSinkDefaults(filepath.Join(workRoot, "topology", "sinks", "defaults.toml"))
	if err != nil {
		return nil, err
	}
	var groups []resolvedGroup
	for _, sub := range []string{"business.d", "infra.d"} {
		gs, err := resolveSinkGroups(filepath.Join(workRoot, "topology", "sinks", sub), sinkDefs, sinkDefaults, envDict)
		if err != nil {
			return nil, err
		}
		groups = append(groups, gs...)
	}

	programs, err := loadWplPrograms(filepath.Join(workRoot, "models", "wpl"))
	if err != nil {
		return nil, err
	}
	models, err := loadOmlModels(filepath.Join(workRoot, "models", "oml"))
	if err != nil {
		return nil, err
	}

	engineCfg, err := loadEngineConfig(filepath.Join(workRoot, "engine.toml"))
	if err != nil {
		return nil, err
	}

	knowledgeSchemas, err := loadKnowledgeSchemas(filepath.Join(workRoot, "models", "knowledge"))
	if err != nil {
		return nil, err
	}

	return &Tree{
		Engine:           engineCfg,
		Sources:          sources,
		Groups:           groups,
		Programs:         programs,
		Models:           models,
		SourceDefs:       sourceDefs,
		SinkDefs:         sinkDefs,
		KnowledgeSchemas: knowledgeSchemas,
	}, nil
}

func loadEngineConfig(path string) (EngineConfig, error) {
	cfg := defaultEngineConfig()
	if !fileExists(path) {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errs.NewConfigError(path, "parse engine config: "+err.Error())
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, errs.NewConfigError(path, "unknown key "+undecoded[0].String())
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// envDict builds the ${VAR} substitution dictionary from the process
// environment; connector.SubstituteEnv also falls back to os.Getenv
// directly, so this dict only needs to win ties for names the caller
// wants guaranteed present regardless of the real environment (tests).
func envDict() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			out[kv[:i]] = kv[i+1:]
		}
	}
	return out
}
