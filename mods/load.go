package mods

import (
	"errors"
	"fmt"
	"io/ioutil"
	"keel/build"
	"keel/common"
	"keel/report"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
)

// tomlModule represents a Keel module as it is encoded in TOML
type tomlModule struct {
	Name       string       `toml:"name"`
	Source     string       `toml:"source"`
	SourceText string       `toml:"source-text,omitempty"`
	Libraries  []string     `toml:"libraries,omitempty"`
	Namespaces []string     `toml:"namespaces,omitempty"`
	Output     string       `toml:"output,omitempty"`
	Version    string       `toml:"keel-version,omitempty"`
	Options    *tomlOptions `toml:"options,omitempty"`
}

// tomlOptions represents the compilation options as they are encoded in TOML.
// Options which are not given keep their default values.
type tomlOptions struct {
	UnrollConstants    *bool `toml:"unroll-constants,omitempty"`
	AllowSave          *bool `toml:"allow-save,omitempty"`
	MaxPrepareAttempts *int  `toml:"max-prepare-attempts,omitempty"`
}

// LoadModule loads and validates the module whose module file is in the
// directory at `path`.
func LoadModule(path string) (*KeelModule, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	// open file
	f, err := os.Open(filepath.Join(root, common.KeelModuleFileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// unmarshal the contents
	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tm := &tomlModule{}
	if err := toml.Unmarshal(buff, tm); err != nil {
		return nil, fmt.Errorf("error decoding module file: %w", err)
	}

	keelMod := &KeelModule{
		// module root is the directory enclosing the module file
		ModuleRoot: root,
		Options:    build.DefaultOptions(),
	}

	// ensure that the module is valid
	if err := validateModule(keelMod, tm); err != nil {
		return nil, err
	}

	// move all the relevant TOML module attributes over to the Keel module
	keelMod.Name = tm.Name
	keelMod.SourcePath = keelMod.abs(tm.Source)
	keelMod.SourceTextPath = keelMod.abs(tm.SourceText)
	keelMod.OutputPath = keelMod.abs(tm.Output)

	for _, lib := range tm.Libraries {
		keelMod.LibraryPaths = append(keelMod.LibraryPaths, keelMod.abs(lib))
	}

	keelMod.Options.Namespaces = tm.Namespaces
	if tm.Options != nil {
		if tm.Options.UnrollConstants != nil {
			keelMod.Options.UnrollConstants = *tm.Options.UnrollConstants
		}

		if tm.Options.AllowSave != nil {
			keelMod.Options.AllowSave = *tm.Options.AllowSave
		}

		if tm.Options.MaxPrepareAttempts != nil {
			keelMod.Options.MaxPrepareAttempts = *tm.Options.MaxPrepareAttempts
		}
	}

	return keelMod, nil
}

// validateModule checks that the module contents are valid
func validateModule(kmod *KeelModule, mod *tomlModule) error {
	if mod.Name == "" {
		return fmt.Errorf("missing module name for module at %s", kmod.ModuleRoot)
	}

	if !IsValidIdentifier(mod.Name) {
		return errors.New("module name must be a valid identifier")
	}

	if mod.Source == "" {
		return fmt.Errorf("module %s must specify a source syntax tree", mod.Name)
	}

	for _, ns := range mod.Namespaces {
		if !isValidNamespace(ns) {
			return fmt.Errorf("invalid namespace `%s` in module %s", ns, mod.Name)
		}
	}

	if mod.Options != nil && mod.Options.MaxPrepareAttempts != nil && *mod.Options.MaxPrepareAttempts < 1 {
		return fmt.Errorf("max-prepare-attempts of module %s must be positive", mod.Name)
	}

	if mod.Version != "" && mod.Version != common.KeelVersion {
		report.ReportWarning(
			"module",
			"version of module `%s` (v%s) does not match current keel version (v%s)", mod.Name, mod.Version, common.KeelVersion,
		)
	}

	return nil
}

// isValidNamespace returns whether ns is a dotted sequence of identifiers.
func isValidNamespace(ns string) bool {
	for _, part := range strings.Split(ns, ".") {
		if !IsValidIdentifier(part) {
			return false
		}
	}

	return true
}
