package mods

import (
	"fmt"
	"io/ioutil"
	"keel/ast"
	"keel/build"
	"keel/report"
	"keel/typing"
	"os"
)

// LoadSource decodes the syntax tree of the module.  It also returns the
// source file used to display errors: the source text if the module names
// one, otherwise just the path of the syntax tree.
func (m *KeelModule) LoadSource() ([]ast.Node, *report.SourceFile, error) {
	f, err := os.Open(m.SourcePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	nodes, err := ast.DecodeYAML(f)
	if err != nil {
		return nil, nil, fmt.Errorf("error decoding syntax tree `%s`: %w", m.SourcePath, err)
	}

	src := &report.SourceFile{Path: m.SourcePath}
	if m.SourceTextPath != "" {
		text, err := ioutil.ReadFile(m.SourceTextPath)
		if err != nil {
			return nil, nil, fmt.Errorf("error reading source text: %w", err)
		}

		src.Path = m.SourceTextPath
		src.Text = string(text)
	}

	return nodes, src, nil
}

// LoadLibraries loads the platform libraries of the module.
func (m *KeelModule) LoadLibraries() ([]*typing.Library, error) {
	libs := make([]*typing.Library, len(m.LibraryPaths))
	for i, path := range m.LibraryPaths {
		lib, err := typing.LoadLibraryFile(path)
		if err != nil {
			return nil, fmt.Errorf("error loading library `%s`: %w", path, err)
		}

		libs[i] = lib
	}

	return libs, nil
}

// NewSession creates a compilation session for the module: its platform
// libraries are loaded and its options applied.
func (m *KeelModule) NewSession() (*build.Session, error) {
	libs, err := m.LoadLibraries()
	if err != nil {
		return nil, err
	}

	return build.NewSession(m.Options, libs...)
}
