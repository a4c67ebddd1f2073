package mods

import (
	"keel/common"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const geometryManifest = `
name: geometry
implicit-namespaces: [Geometry]
types:
  - namespace: Geometry
    name: Units
    sealed: true
    methods:
      - {name: Meters, static: true, returns: double, params: [{name: x, type: int}]}
`

const geometrySource = `
- {node: let, name: m, value: {node: invoke, static: Units, name: Meters, args: [{node: int, value: "3"}]}}
- {node: ident, name: m}
`

func writeFiles(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}

		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write `%s`: %v", name, err)
		}
	}

	return dir
}

func TestLoadModule(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		common.KeelModuleFileName: `
name = "demo"
source = "main.ast.yaml"
source-text = "main.kl"
libraries = ["libs/geometry.yaml"]
namespaces = ["System.Text"]
output = "out/demo.ll"

[options]
unroll-constants = false
allow-save = true
max-prepare-attempts = 3
`,
		"main.ast.yaml":      geometrySource,
		"main.kl":            "let m = Units.Meters(3)\nm\n",
		"libs/geometry.yaml": geometryManifest,
	})

	mod, err := LoadModule(dir)
	if err != nil {
		t.Fatalf("failed to load module: %v", err)
	}

	if mod.Name != "demo" || mod.SourcePath != filepath.Join(dir, "main.ast.yaml") || mod.OutputPath != filepath.Join(dir, "out", "demo.ll") {
		t.Fatalf("module attributes were not loaded correctly: %+v", mod)
	}

	opts := mod.Options
	if opts.UnrollConstants || !opts.AllowSave || opts.MaxPrepareAttempts != 3 {
		t.Fatalf("options were not loaded correctly: %+v", opts)
	}

	if len(opts.Namespaces) != 1 || opts.Namespaces[0] != "System.Text" {
		t.Fatalf("namespaces were not loaded correctly: %v", opts.Namespaces)
	}

	nodes, src, err := mod.LoadSource()
	if err != nil {
		t.Fatalf("failed to load source: %v", err)
	}

	if len(nodes) != 2 || src.Path != filepath.Join(dir, "main.kl") || !strings.HasPrefix(src.Text, "let m") {
		t.Fatalf("source was not loaded correctly: %d nodes from %s", len(nodes), src.Path)
	}

	s, err := mod.NewSession()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	u, err := s.Compile(nodes)
	if err != nil {
		t.Fatalf("failed to compile against the module's libraries: %v", err)
	}

	if len(u.Graph.Methods()) == 0 {
		t.Fatalf("unit has no methods")
	}
}

func TestModuleDefaults(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		common.KeelModuleFileName: "name = \"demo\"\nsource = \"main.ast.yaml\"\n",
		"main.ast.yaml":           "- {node: int, value: \"1\"}\n",
	})

	mod, err := LoadModule(dir)
	if err != nil {
		t.Fatalf("failed to load module: %v", err)
	}

	opts := mod.Options
	if !opts.UnrollConstants || opts.AllowSave || opts.MaxPrepareAttempts != common.DefaultMaxPrepareAttempts {
		t.Fatalf("options do not have their default values: %+v", opts)
	}

	_, src, err := mod.LoadSource()
	if err != nil {
		t.Fatalf("failed to load source: %v", err)
	}

	if src.Path != mod.SourcePath || src.Text != "" {
		t.Fatalf("source file without text is %+v", src)
	}
}

func TestInvalidModules(t *testing.T) {
	tests := []struct {
		name, file, msg string
	}{
		{"missing name", `source = "a.yaml"`, "missing module name"},
		{"bad name", "name = \"1abc\"\nsource = \"a.yaml\"", "valid identifier"},
		{"missing source", `name = "demo"`, "source syntax tree"},
		{"bad namespace", "name = \"demo\"\nsource = \"a.yaml\"\nnamespaces = [\"System..Text\"]", "invalid namespace"},
		{"bad attempts", "name = \"demo\"\nsource = \"a.yaml\"\n[options]\nmax-prepare-attempts = 0", "must be positive"},
		{"bad toml", "name = ", "decoding module file"},
	}

	for _, test := range tests {
		dir := writeFiles(t, map[string]string{common.KeelModuleFileName: test.file})

		_, err := LoadModule(dir)
		if err == nil {
			t.Fatalf("%s: module loaded without error", test.name)
		}

		if !strings.Contains(err.Error(), test.msg) {
			t.Fatalf("%s: unexpected error: %v", test.name, err)
		}
	}
}

func TestMissingLibrary(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		common.KeelModuleFileName: "name = \"demo\"\nsource = \"main.ast.yaml\"\nlibraries = [\"nope.yaml\"]\n",
	})

	mod, err := LoadModule(dir)
	if err != nil {
		t.Fatalf("failed to load module: %v", err)
	}

	if _, err := mod.NewSession(); err == nil || !strings.Contains(err.Error(), "nope.yaml") {
		t.Fatalf("missing library was not reported: %v", err)
	}
}

func TestInitModule(t *testing.T) {
	dir := t.TempDir()
	if err := InitModule("demo", dir); err != nil {
		t.Fatalf("failed to initialize module: %v", err)
	}

	if err := InitModule("demo", dir); err == nil {
		t.Fatalf("module initialized twice")
	}

	mod, err := LoadModule(dir)
	if err != nil {
		t.Fatalf("failed to load initialized module: %v", err)
	}

	if mod.Name != "demo" || mod.SourcePath != filepath.Join(dir, "demo.ast.yaml") || mod.SourceTextPath != filepath.Join(dir, "demo.kl") {
		t.Fatalf("initialized module is %+v", mod)
	}

	if !mod.Options.UnrollConstants || mod.Options.AllowSave {
		t.Fatalf("initialized module has options %+v", mod.Options)
	}

	if err := InitModule("not valid", t.TempDir()); err == nil {
		t.Fatalf("module initialized with an invalid name")
	}
}
