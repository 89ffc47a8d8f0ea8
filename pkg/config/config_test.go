package config

import (
	"os"
	"path/filepath"
	"testing"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeFixtureTree(t *testing.T, root string) {
	t.Helper()

	mustWrite(t, filepath.Join(root, "connectors", "source.d", "file.toml"), `
[[connector]]
id = "file1"
kind = "file"
allow_override = ["path", "batch_lines"]
[connector.params]
batch_lines = 128
encode = "text"
`)

	mustWrite(t, filepath.Join(root, "connectors", "sink.d", "file.toml"), `
[[connector]]
id = "out1"
kind = "file"
allow_override = ["path"]
[connector.params]
fmt = "json"
`)

	mustWrite(t, filepath.Join(root, "topology", "sources", "wpsrc.toml"), `
[[sources]]
key = "access_log"
connect = "file1"
tags = ["env:test"]
[sources.params_override]
path = "/var/log/access.log"
`)

	mustWrite(t, filepath.Join(root, "topology", "sinks", "business.d", "web.toml"), `
[sink_group]
name = "web"
rule = ["/app/web"]
parallel = 2

[[sink_group.sinks]]
name = "web_out"
connect = "out1"
[sink_group.sinks.params]
path = "/var/log/out.ndjson"
`)

	mustWrite(t, filepath.Join(root, "models", "wpl", "access.wpl"), `
source_key = "access_log"

[[field]]
name = "method"
pattern = "\\s"
type = "chars"

[[field]]
name = "path"
pattern = "$"
type = "chars"
`)

	mustWrite(t, filepath.Join(root, "models", "oml", "web.oml"), `
[[model]]
name = "web"
rules = ["/app/web"]

[[model.item]]
target = "http_method"
type = "chars"
[model.item.way]
kind = "read"
get = "method"
`)

	mustWrite(t, filepath.Join(root, "engine.toml"), `
robust = true
parallel = 4
speed_limit = 1000

[stat]
window_sec = 30
print = true

[[stat.pick]]
name = "all"
target = "all"
`)
}

func TestLoadBuildsFullTree(t *testing.T) {
	root := t.TempDir()
	writeFixtureTree(t, root)

	tree, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !tree.Engine.Robust || tree.Engine.Parallel != 4 || tree.Engine.SpeedLimit != 1000 {
		t.Fatalf("unexpected engine config: %+v", tree.Engine)
	}
	if tree.Engine.Stat.WindowSec != 30 || !tree.Engine.Stat.Print {
		t.Fatalf("unexpected stat config: %+v", tree.Engine.Stat)
	}
	if len(tree.Engine.Stat.Pick) != 1 || tree.Engine.Stat.Pick[0].Name != "all" {
		t.Fatalf("unexpected stat.pick: %+v", tree.Engine.Stat.Pick)
	}

	if len(tree.Sources) != 1 {
		t.Fatalf("expected one resolved source, got %d", len(tree.Sources))
	}
	src := tree.Sources[0]
	if src.Name != "access_log" || src.Kind != "file" {
		t.Fatalf("unexpected source spec: %+v", src)
	}
	if src.Params["path"] != "/var/log/access.log" {
		t.Fatalf("override did not take effect: %+v", src.Params)
	}
	if src.Params["batch_lines"] != int64(128) {
		t.Fatalf("default param did not survive merge: %+v", src.Params)
	}
	if v, _ := src.Tags.Get("env"); v != "test" {
		t.Fatalf("expected tag env=test, got %+v", src.Tags)
	}

	if len(tree.Groups) != 1 {
		t.Fatalf("expected one sink group, got %d", len(tree.Groups))
	}
	g := tree.Groups[0].Group
	if g.Name != "web" || len(g.Sinks) != 1 || g.Sinks[0].Name != "web_out" {
		t.Fatalf("unexpected sink group: %+v", g)
	}
	if g.Sinks[0].Params["fmt"] != "json" {
		t.Fatalf("sink connector default did not merge: %+v", g.Sinks[0].Params)
	}

	prog, ok := tree.Programs["access_log"]
	if !ok {
		t.Fatalf("expected a wpl program for access_log")
	}
	fields, err := prog.Run("GET /index")
	if err != nil {
		t.Fatalf("program run: %v", err)
	}
	if len(fields) != 2 || fields[0].Value.String() != "GET" || fields[1].Value.String() != "/index" {
		t.Fatalf("unexpected parsed fields: %+v", fields)
	}

	if len(tree.Models) != 1 || tree.Models[0].Name != "web" {
		t.Fatalf("unexpected models: %+v", tree.Models)
	}
}

func TestLoadRejectsUnknownConnector(t *testing.T) {
	root := t.TempDir()
	writeFixtureTree(t, root)
	mustWrite(t, filepath.Join(root, "topology", "sources", "wpsrc.toml"), `
[[sources]]
key = "bad"
connect = "does_not_exist"
`)

	if _, err := Load(root); err == nil {
		t.Fatal("expected an error for an unresolved connector id")
	}
}

func TestLoadRejectsDisallowedOverride(t *testing.T) {
	root := t.TempDir()
	writeFixtureTree(t, root)
	mustWrite(t, filepath.Join(root, "topology", "sources", "wpsrc.toml"), `
[[sources]]
key = "access_log"
connect = "file1"
[sources.params_override]
chunk_bytes = 99999
`)

	if _, err := Load(root); err == nil {
		t.Fatal("expected an error for a param override outside the connector's allow-list")
	}
}

func TestParseDataType(t *testing.T) {
	cases := map[string]bool{
		"chars": true, "integer": true, "": true, "auto": true,
		"bogus": false,
	}
	for in, wantOK := range cases {
		_, err := parseDataType(in)
		if (err == nil) != wantOK {
			t.Errorf("parseDataType(%q) err=%v, want ok=%v", in, err, wantOK)
		}
	}
}
