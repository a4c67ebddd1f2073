package build

import (
	"errors"
	"fmt"
	"keel/ast"
	"keel/common"
	"keel/depm"
	"keel/report"
	"keel/typing"
	"keel/walk"
)

// Options are the options a compilation unit is compiled with.
type Options struct {
	// UnrollConstants makes immutable bindings to literals constants: they
	// are rematerialized at each use instead of being stored or captured.
	UnrollConstants bool

	// AllowSave allows emitters to write their output to disk.
	AllowSave bool

	// MaxPrepareAttempts bounds the number of times a single entity may fail
	// to prepare before the unit is considered cyclic.
	MaxPrepareAttempts int

	// Namespaces are opened for the whole unit before any declaration.
	Namespaces []string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		UnrollConstants:    true,
		MaxPrepareAttempts: common.DefaultMaxPrepareAttempts,
	}
}

// Unit is a fully resolved compilation unit.  Its entity graph is frozen:
// emitters consume it but never change it.
type Unit struct {
	Graph    *depm.Graph
	Universe *typing.Universe
	Result   *walk.Result
	Options  Options
}

// Emitter turns a resolved compilation unit into some output: an executable
// form, a textual listing, an in-memory evaluation.
type Emitter interface {
	Emit(u *Unit) error
}

// -----------------------------------------------------------------------------

// Session is the explicit context of a single compilation: it owns the type
// universe, the name generator for synthesized entities and the options.  A
// session compiles exactly one unit since the universe records the unit's
// in-progress types and opened namespaces.
type Session struct {
	opts  Options
	uni   *typing.Universe
	names *common.NameGenerator

	compiled bool
}

// NewSession creates a new session over the core library and the given
// additional platform libraries.
func NewSession(opts Options, libs ...*typing.Library) (*Session, error) {
	uni, err := typing.NewUniverse(libs...)
	if err != nil {
		return nil, fmt.Errorf("error creating type universe: %w", err)
	}

	for _, ns := range opts.Namespaces {
		if !uni.HasNamespace(ns) {
			return nil, fmt.Errorf("unknown namespace `%s` in options", ns)
		}

		uni.OpenNamespace(ns)
	}

	return &Session{
		opts:  opts,
		uni:   uni,
		names: &common.NameGenerator{},
	}, nil
}

// Universe returns the type universe of the session.
func (s *Session) Universe() *typing.Universe {
	return s.uni
}

// Options returns the options of the session.
func (s *Session) Options() Options {
	return s.opts
}

// Compile declares, prepares and resolves the top level nodes of a unit.
// Compilation aborts on the first error.
func (s *Session) Compile(nodes []ast.Node) (*Unit, error) {
	if s.compiled {
		return nil, errors.New("session has already compiled a unit")
	}
	s.compiled = true

	g := depm.NewGraph(s.uni, s.opts.MaxPrepareAttempts)

	if err := phase("Declaring", func() error {
		return depm.NewBuilder(g).Declare(nodes)
	}); err != nil {
		return nil, err
	}

	if err := phase("Preparing", g.PrepareAll); err != nil {
		return nil, err
	}

	var result *walk.Result
	if err := phase("Resolving", func() (err error) {
		result, err = walk.NewWalker(g, s.names, s.opts.UnrollConstants).WalkAll()
		return
	}); err != nil {
		return nil, err
	}

	g.Freeze()

	return &Unit{
		Graph:    g,
		Universe: s.uni,
		Result:   result,
		Options:  s.opts,
	}, nil
}

// Emit hands a compiled unit to an emitter.
func (s *Session) Emit(u *Unit, e Emitter) error {
	return phase("Emitting", func() (err error) {
		defer report.CatchErrors(&err)
		return e.Emit(u)
	})
}

// phase runs a single compilation phase.
func phase(name string, fn func() error) error {
	report.ReportBeginPhase(name)

	if err := fn(); err != nil {
		return err
	}

	report.ReportEndPhase()
	return nil
}
