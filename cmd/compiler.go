package cmd

import (
	"keel/build"
	"keel/mods"
	"keel/report"
	"os"
)

// compiler drives the compilation of a single module for the CLI.  All
// errors are reported as they occur.
type compiler struct {
	mod *mods.KeelModule

	// src is the source file errors are displayed against.
	src *report.SourceFile

	session *build.Session
	unit    *build.Unit
}

// newCompiler loads the module at modulePath.  A module that cannot be loaded
// is a fatal error.
func newCompiler(modulePath string) *compiler {
	mod, err := mods.LoadModule(modulePath)
	if err != nil {
		report.ReportFatal("failed to load module: %s", err)
	}

	return &compiler{mod: mod, src: &report.SourceFile{Path: mod.SourcePath}}
}

// analyze loads the syntax tree and platform libraries of the module and
// compiles it.  It returns whether compilation succeeded.
func (c *compiler) analyze() bool {
	nodes, src, err := c.mod.LoadSource()
	if err != nil {
		report.ReportStdError("Source Error", err)
		return false
	}

	c.src = src

	c.session, err = c.mod.NewSession()
	if err != nil {
		report.ReportStdError("Library Error", err)
		return false
	}

	c.unit, err = c.session.Compile(nodes)
	if err != nil {
		report.ReportError(c.src, err)
		return false
	}

	return true
}

// emit runs an emitter over the compiled unit.  It returns whether emission
// succeeded.
func (c *compiler) emit(e build.Emitter) bool {
	if err := c.session.Emit(c.unit, e); err != nil {
		report.ReportError(c.src, err)
		return false
	}

	return true
}

// finish displays the closing summary and exits with a failure status if any
// errors were reported.
func (c *compiler) finish() {
	report.ReportCompilationFinished()

	if report.AnyErrors() {
		os.Exit(1)
	}
}
