package typing

import (
	"keel/report"
	"strings"
	"testing"
)

// fakeLocals is a stand-in for the entity graph.
type fakeLocals map[string]*Type

func (fl fakeLocals) LookupLocalType(name string) (*Type, bool) {
	t, ok := fl[name]
	return t, ok
}

func newTestUniverse(t *testing.T, manifests ...string) *Universe {
	var libs []*Library
	for _, manifest := range manifests {
		lib, err := LoadLibrary(strings.NewReader(manifest))
		if err != nil {
			t.Fatalf("failed to load manifest: %v", err)
		}

		libs = append(libs, lib)
	}

	u, err := NewUniverse(libs...)
	if err != nil {
		t.Fatalf("failed to create universe: %v", err)
	}

	return u
}

func mustResolve(t *testing.T, u *Universe, sig string) *Type {
	typ, err := u.Resolve(sig, nil)
	if err != nil {
		t.Fatalf("failed to resolve `%s`: %v", sig, err)
	}

	return typ
}

func TestResolveIsIdempotent(t *testing.T) {
	u := newTestUniverse(t)

	for _, sig := range []string{"int", "string[]", "List<int>", "Dictionary<string, List<int>>", "int?", "double~"} {
		a := mustResolve(t, u, sig)
		b := mustResolve(t, u, sig)
		if a != b {
			t.Fatalf("resolving `%s` twice yielded different descriptors", sig)
		}
	}

	if mustResolve(t, u, "int") != mustResolve(t, u, "System.Int32") {
		t.Fatalf("alias and full name resolved to different descriptors")
	}

	if mustResolve(t, u, "List<int>") != mustResolve(t, u, "System.Collections.Generic.List<System.Int32>") {
		t.Fatalf("short and qualified generic names resolved to different descriptors")
	}
}

func TestResolvePostfix(t *testing.T) {
	u := newTestUniverse(t)

	arr := mustResolve(t, u, "int[]")
	if arr.Kind != KindArray || arr.Elem != u.Builtin("int") {
		t.Fatalf("`int[]` resolved to %s", arr)
	}

	seq := mustResolve(t, u, "string~")
	if !seq.IsGenericInstance() || seq.Def.Name != "IEnumerable`1" || seq.Args[0] != u.Builtin("string") {
		t.Fatalf("`string~` resolved to %s", seq)
	}

	nullArr := mustResolve(t, u, "int?[]")
	if nullArr.Kind != KindArray || !u.IsNullable(nullArr.Elem) {
		t.Fatalf("`int?[]` resolved to %s", nullArr)
	}

	if _, err := u.Resolve("string?", nil); !report.IsKind(err, report.TypeMismatch) {
		t.Fatalf("expected nullable reference type to fail but got %v", err)
	}

	if _, err := u.Resolve("int[]?", nil); !report.IsKind(err, report.TypeMismatch) {
		t.Fatalf("expected nullable array to fail but got %v", err)
	}
}

func TestResolveErrors(t *testing.T) {
	u := newTestUniverse(t)
	span := &report.TextSpan{StartLine: 2, StartCol: 4, EndLine: 2, EndCol: 9}

	tests := []struct {
		sig  string
		kind report.ErrorKind
	}{
		{"Foo", report.TypeNotFound},
		{"List<int, int>", report.TypeNotFound},
		{"Dictionary<string>", report.TypeNotFound},
		{"List<Foo>", report.TypeNotFound},
		{"List<int", report.TypeNotFound},
		{"int[", report.TypeNotFound},
		{"System..Int32", report.TypeNotFound},
		{"List`2<int>", report.TypeMismatch},
	}

	for _, test := range tests {
		_, err := u.Resolve(test.sig, span)
		if !report.IsKind(err, test.kind) {
			t.Fatalf("resolving `%s`: expected %s but got %v", test.sig, test.kind, err)
		}

		if cerr := err.(*report.CompileError); cerr.Span != span {
			t.Fatalf("resolving `%s`: error lost its span", test.sig)
		}
	}
}

const geometryA = `
name: geometry-a
implicit-namespaces: [Geometry]
types:
  - namespace: Geometry
    name: Point
    kind: value
`

const geometryB = `
name: geometry-b
implicit-namespaces: [Geometry]
types:
  - namespace: Geometry
    name: Point
    kind: value
  - namespace: Geometry
    name: Line
`

func TestResolveAmbiguous(t *testing.T) {
	u := newTestUniverse(t, geometryA, geometryB)

	_, err := u.Resolve("Point", nil)
	if !report.IsKind(err, report.TypeAmbiguous) {
		t.Fatalf("expected ambiguity but got %v", err)
	}

	if !strings.Contains(err.Error(), "geometry-a") || !strings.Contains(err.Error(), "geometry-b") {
		t.Fatalf("ambiguity error does not name both candidates: %v", err)
	}

	if mustResolve(t, u, "Line").Def.Library.Name != "geometry-b" {
		t.Fatalf("`Line` resolved to the wrong library")
	}
}

func TestResolveInProgressFirst(t *testing.T) {
	u := newTestUniverse(t, geometryA)

	shape := u.DeclareInProgress("Shape", 0, false, false)
	point := u.DeclareInProgress("Point", 1, true, true)
	u.SetLocalTypes(fakeLocals{"Shape": shape, "Point": point})

	if mustResolve(t, u, "Shape") != shape {
		t.Fatalf("in-progress type was not found")
	}

	// the in-progress type shadows the platform type of the same name
	if mustResolve(t, u, "Point") != point {
		t.Fatalf("in-progress type did not shadow the platform type")
	}

	list := mustResolve(t, u, "List<Shape>")
	if list.Args[0] != shape {
		t.Fatalf("in-progress type argument resolved to %s", list.Args[0])
	}

	if _, err := u.Resolve("Shape<int>", nil); !report.IsKind(err, report.TypeMismatch) {
		t.Fatalf("expected generic use of in-progress type to fail but got %v", err)
	}
}

func TestOpenNamespace(t *testing.T) {
	u := newTestUniverse(t, `
name: shapes
types:
  - namespace: Shapes.Round
    name: Circle
`)

	if _, err := u.Resolve("Circle", nil); !report.IsKind(err, report.TypeNotFound) {
		t.Fatalf("expected unopened namespace to hide `Circle` but got %v", err)
	}

	mustResolve(t, u, "Shapes.Round.Circle")

	u.OpenNamespace("Shapes.Round")
	mustResolve(t, u, "Circle")
}

func TestDistance(t *testing.T) {
	u := newTestUniverse(t)

	tests := []struct {
		to, from string
		dist     int
	}{
		{"int", "int", 0},
		{"long", "int", 1},
		{"double", "int", 3},
		{"double", "float", 1},
		{"int", "long", Incompatible},
		{"object", "int", BoxingDistance},
		{"object", "string", 1},
		{"IEnumerable<int>", "List<int>", InterfaceDistance},
		{"IEnumerable<int>", "int[]", InterfaceDistance},
		{"IEnumerable<long>", "List<int>", Incompatible},
		{"int?", "int", NullableDistance},
		{"long?", "int", 1 + NullableDistance},
		{"string", "int", Incompatible},
	}

	for _, test := range tests {
		to, from := mustResolve(t, u, test.to), mustResolve(t, u, test.from)
		if dist := u.Distance(to, from); dist != test.dist {
			t.Fatalf("distance from %s to %s: expected %d but got %d", test.from, test.to, test.dist, dist)
		}
	}

	if u.Distance(u.Builtin("string"), u.Null()) != NullDistance {
		t.Fatalf("null should convert to string")
	}

	if u.Distance(u.Builtin("int"), u.Null()) != Incompatible {
		t.Fatalf("null should not convert to int")
	}
}

func TestDelegate(t *testing.T) {
	u := newTestUniverse(t)

	fn, err := u.Delegate([]*Type{u.Builtin("int")}, u.Builtin("string"), nil)
	if err != nil {
		t.Fatalf("failed to create delegate: %v", err)
	}

	if fn != mustResolve(t, u, "Func<int, string>") {
		t.Fatalf("delegate resolved to %s", fn)
	}

	action, err := u.Delegate(nil, u.Builtin("unit"), nil)
	if err != nil || action != mustResolve(t, u, "Action") {
		t.Fatalf("unit delegate resolved to %v (%v)", action, err)
	}

	sig := u.MethodSignature(fn, fn.Def.Methods[0])
	if len(sig.Params) != 1 || sig.Params[0] != u.Builtin("int") || sig.Returns != u.Builtin("string") {
		t.Fatalf("Invoke has the wrong signature: %v -> %v", sig.Params, sig.Returns)
	}

	if u.MethodSignature(fn, fn.Def.Methods[0]) != sig {
		t.Fatalf("method signatures are not memoized")
	}
}

func TestParseSignature(t *testing.T) {
	tests := []struct {
		text, canonical string
	}{
		{"int", "int"},
		{" List < int > ", "List<int>"},
		{"Dictionary<string,int[]>?", "Dictionary<string, int[]>?"},
		{"System.Collections.Generic.List`1<int>~", "System.Collections.Generic.List`1<int>~"},
	}

	for _, test := range tests {
		sig, err := ParseSignature(test.text)
		if err != nil {
			t.Fatalf("failed to parse `%s`: %v", test.text, err)
		}

		if sig.String() != test.canonical {
			t.Fatalf("`%s` parsed as `%s`", test.text, sig)
		}
	}

	for _, bad := range []string{"", "List<>", "a.", "int]", "List<int,>"} {
		if _, err := ParseSignature(bad); err == nil {
			t.Fatalf("expected `%s` to fail to parse", bad)
		}
	}
}
