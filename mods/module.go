package mods

import (
	"keel/build"
	"path/filepath"
)

// KeelModule is a loaded and validated module file: where the syntax tree of
// the unit and its platform libraries live and how the unit is compiled.  All
// paths are absolute.
type KeelModule struct {
	// Name is the name of the module.
	Name string

	// ModuleRoot is the directory enclosing the module file.
	ModuleRoot string

	// SourcePath is the path to the YAML syntax tree produced by the parser.
	SourcePath string

	// SourceTextPath is the path to the source text the syntax tree was
	// parsed from.  It may be empty in which case errors are displayed
	// without the offending source lines.
	SourceTextPath string

	// LibraryPaths are the paths to the YAML manifests of the platform
	// libraries the unit is compiled against (in addition to the core
	// library).
	LibraryPaths []string

	// OutputPath is the path emitters save their output to.  It may be empty.
	OutputPath string

	// Options are the compilation options of the unit.
	Options build.Options
}

// abs makes a path from the module file absolute.
func (m *KeelModule) abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(m.ModuleRoot, path)
}

// IsValidIdentifier returns whether or not a given string would be a valid
// identifier (module name, etc.)
func IsValidIdentifier(idstr string) bool {
	if idstr == "" {
		return false
	}

	if idstr[0] == '_' || ('a' <= idstr[0] && idstr[0] <= 'z') || ('A' <= idstr[0] && idstr[0] <= 'Z') {
		for _, c := range idstr[1:] {
			if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
				continue
			}

			return false
		}

		return true
	}

	return false
}
