package build

import (
	"errors"
	"keel/ast"
	"keel/depm"
	"keel/report"
	"strings"
	"testing"
)

func decode(t *testing.T, src string) []ast.Node {
	nodes, err := ast.DecodeYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to decode syntax tree: %v", err)
	}

	return nodes
}

func newSession(t *testing.T, opts Options) *Session {
	s, err := NewSession(opts)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	return s
}

type recordingEmitter struct {
	unit *Unit
	err  error
}

func (re *recordingEmitter) Emit(u *Unit) error {
	re.unit = u
	return re.err
}

type panickingEmitter struct{}

func (panickingEmitter) Emit(u *Unit) error {
	panic(report.Raise(report.InvalidOperation, nil, "cannot emit"))
}

func TestCompileFreezesUnit(t *testing.T) {
	s := newSession(t, DefaultOptions())
	u, err := s.Compile(decode(t, `
- {node: record, name: P, fields: [{name: X, type: int}]}
- {node: func, name: f, args: [{name: p, type: P}], returns: int, body: [{node: get, target: {node: ident, name: p}, name: X}]}
- {node: var, name: a, value: {node: int, value: "1"}}
- {node: let, name: g, value: {node: lambda, body: [{node: ident, name: a}]}}
- {node: call, func: {node: ident, name: f}, args: [{node: new, type: P, args: [{node: call, func: {node: ident, name: g}}]}]}
`))
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	for _, te := range u.Graph.Types() {
		if te.Phase != depm.PhaseCompiled {
			t.Fatalf("type `%s` is %s after compilation", te.Name, te.Phase)
		}
	}

	for _, me := range u.Graph.Methods() {
		if me.Phase != depm.PhaseCompiled {
			t.Fatalf("method `%s` is %s after compilation", me.Name, me.Phase)
		}
	}

	carriers := 0
	for _, te := range u.Graph.Types() {
		if te.Kind == depm.TypeCarrier {
			carriers++
		}
	}

	if carriers != 1 {
		t.Fatalf("expected one closure carrier, got %d", carriers)
	}

	e := &recordingEmitter{}
	if err := s.Emit(u, e); err != nil || e.unit != u {
		t.Fatalf("emitter did not receive the unit: %v", err)
	}
}

func TestCompileOnce(t *testing.T) {
	s := newSession(t, DefaultOptions())
	if _, err := s.Compile(nil); err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	if _, err := s.Compile(nil); err == nil {
		t.Fatalf("second compilation should fail")
	}
}

func TestCompileStopsAtFirstError(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind report.ErrorKind
	}{
		{"declaration", `[{node: record, name: int, fields: []}]`, report.ReservedNameUsed},
		{"preparation", `[{node: record, name: A, fields: [{name: B, type: Missing}]}]`, report.TypeNotFound},
		{"resolution", `[{node: ident, name: missing}]`, report.NameNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := newSession(t, DefaultOptions()).Compile(decode(t, test.src))
			if !report.IsKind(err, test.kind) {
				t.Fatalf("expected %s error, got %v", test.kind, err)
			}
		})
	}
}

func TestSessionNamespaces(t *testing.T) {
	if _, err := NewSession(Options{Namespaces: []string{"No.Such.Namespace"}}); err == nil {
		t.Fatalf("unknown namespace should be rejected")
	}

	if _, err := NewSession(Options{Namespaces: []string{"System.Text"}}); err != nil {
		t.Fatalf("core namespace rejected: %v", err)
	}

	s, err := NewSession(Options{Namespaces: []string{"System.Text", "System.Text"}})
	if err != nil {
		t.Fatalf("repeated namespace rejected: %v", err)
	}

	if !s.Universe().HasNamespace("System.Text") {
		t.Fatalf("namespace was not opened")
	}
}

func TestEmitErrors(t *testing.T) {
	s := newSession(t, DefaultOptions())
	u, err := s.Compile(nil)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	want := errors.New("disk full")
	if err := s.Emit(u, &recordingEmitter{err: want}); err != want {
		t.Fatalf("emitter error was not returned: %v", err)
	}

	if err := s.Emit(u, panickingEmitter{}); !report.IsKind(err, report.InvalidOperation) {
		t.Fatalf("raised emitter error was not caught: %v", err)
	}
}
