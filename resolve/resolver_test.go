package resolve

import (
	"keel/ast"
	"keel/depm"
	"keel/report"
	"keel/typing"
	"strings"
	"testing"
)

const shapesManifest = `
name: shapes
implicit-namespaces: [Shapes]
types:
  - {namespace: Shapes, name: IA, kind: interface}
  - {namespace: Shapes, name: IB, kind: interface}
  - namespace: Shapes
    name: Both
    interfaces: [IA, IB]
    ctors: [{params: []}]
  - namespace: Shapes
    name: Printer
    sealed: true
    methods:
      - {name: m, static: true, params: [{name: a, type: IA}]}
      - {name: m, static: true, params: [{name: b, type: IB}]}
      - {name: pick, static: true, type-params: [T], params: [{name: a, type: T}, {name: b, type: T}], returns: T}
      - {name: make, static: true, type-params: [T], returns: T}
      - {name: first, static: true, type-params: [T], params: [{name: items, type: "T[]"}], returns: T}
`

type fixture struct {
	uni *typing.Universe
	g   *depm.Graph
	r   *Resolver
}

func newFixture(t *testing.T, src string, manifests ...string) *fixture {
	var libs []*typing.Library
	for _, manifest := range manifests {
		lib, err := typing.LoadLibrary(strings.NewReader(manifest))
		if err != nil {
			t.Fatalf("failed to load manifest: %v", err)
		}

		libs = append(libs, lib)
	}

	uni, err := typing.NewUniverse(libs...)
	if err != nil {
		t.Fatalf("failed to create universe: %v", err)
	}

	nodes, err := ast.DecodeYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to decode syntax tree: %v", err)
	}

	g := depm.NewGraph(uni, 0)
	if err := depm.NewBuilder(g).Build(nodes); err != nil {
		t.Fatalf("failed to build declarations: %v", err)
	}

	return &fixture{uni: uni, g: g, r: NewResolver(g)}
}

func (f *fixture) typ(t *testing.T, sig string) *typing.Type {
	typ, err := f.uni.Resolve(sig, nil)
	if err != nil {
		t.Fatalf("failed to resolve `%s`: %v", sig, err)
	}

	return typ
}

func (f *fixture) types(t *testing.T, sigs ...string) []*typing.Type {
	types := make([]*typing.Type, len(sigs))
	for i, sig := range sigs {
		types[i] = f.typ(t, sig)
	}

	return types
}

func TestAmbiguousOverload(t *testing.T) {
	f := newFixture(t, "[]", shapesManifest)

	_, err := f.r.Method(f.typ(t, "Printer"), "m", true, f.types(t, "Both"), nil, nil)
	if !report.IsKind(err, report.MemberAmbiguous) {
		t.Fatalf("expected an ambiguous overload, got %v", err)
	}

	cand, err := f.r.Method(f.typ(t, "Printer"), "m", true, f.types(t, "IA"), nil, nil)
	if err != nil {
		t.Fatalf("exact match failed: %v", err)
	}

	if cand.Params[0] != f.typ(t, "IA") || cand.Distance != 0 {
		t.Fatalf("selected the wrong overload: %s", cand)
	}
}

// permutations returns every ordering of the indices 0..n-1.
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}

	var result [][]int
	for _, perm := range permutations(n - 1) {
		for i := 0; i <= len(perm); i++ {
			next := append(append(append([]int(nil), perm[:i]...), n-1), perm[i:]...)
			result = append(result, next)
		}
	}

	return result
}

func TestOverloadOrderIndependence(t *testing.T) {
	overloads := []struct{ param, returns string }{
		{"int", "int"},
		{"long", "long"},
		{"double", "double"},
		{"object", "object"},
	}

	cases := []struct {
		arg, want string
		ambiguous bool
	}{
		{"int", "int", false},
		{"byte", "int", false},
		{"long", "long", false},
		{"float", "double", false},
		{"string", "object", false},
	}

	for _, perm := range permutations(len(overloads)) {
		var methods []*typing.MethodInfo
		for _, i := range perm {
			methods = append(methods, &typing.MethodInfo{
				Name:    "n",
				Params:  []*typing.ParamInfo{{Name: "a", Type: overloads[i].param}},
				Returns: overloads[i].returns,
				Static:  true,
			})
		}

		lib, err := typing.NewLibrary("perm", []string{"Perm"}, &typing.PlatformType{
			Namespace: "Perm",
			Name:      "Numbers",
			Parent:    "object",
			Methods:   methods,
		})
		if err != nil {
			t.Fatalf("failed to create library: %v", err)
		}

		uni, err := typing.NewUniverse(lib)
		if err != nil {
			t.Fatalf("failed to create universe: %v", err)
		}

		r := NewResolver(depm.NewGraph(uni, 0))
		recv, _ := uni.Resolve("Numbers", nil)

		for _, c := range cases {
			arg, _ := uni.Resolve(c.arg, nil)
			cand, err := r.Method(recv, "n", true, []*typing.Type{arg}, nil, nil)
			if err != nil {
				t.Fatalf("%v: n(%s) failed: %v", perm, c.arg, err)
			}

			want, _ := uni.Resolve(c.want, nil)
			if cand.Type != want {
				t.Fatalf("%v: n(%s) selected %s, want the %s overload", perm, c.arg, cand, c.want)
			}
		}
	}
}

func TestGenericInference(t *testing.T) {
	f := newFixture(t, "[]", shapesManifest)
	printer := f.typ(t, "Printer")

	cand, err := f.r.Method(printer, "pick", true, f.types(t, "int", "int"), nil, nil)
	if err != nil {
		t.Fatalf("pick(int, int) failed: %v", err)
	}

	if len(cand.GenericArgs) != 1 || cand.GenericArgs[0] != f.typ(t, "int") || cand.Type != f.typ(t, "int") {
		t.Fatalf("pick(int, int) inferred %s", cand)
	}

	cand, err = f.r.Method(printer, "first", true, f.types(t, "string[]"), nil, nil)
	if err != nil || cand.Type != f.typ(t, "string") {
		t.Fatalf("first(string[]) should return string: %v", err)
	}

	cand, err = f.r.Method(printer, "make", true, nil, f.types(t, "string"), nil)
	if err != nil || cand.Type != f.typ(t, "string") {
		t.Fatalf("make<string>() should return string: %v", err)
	}

	failures := []struct {
		name     string
		args     []string
		typeArgs []string
	}{
		{"pick", []string{"int", "string"}, nil},
		{"make", nil, nil},
		{"make", nil, []string{"int", "int"}},
		{"m", []string{"IA"}, []string{"int"}},
	}

	for _, fc := range failures {
		_, err := f.r.Method(printer, fc.name, true, f.types(t, fc.args...), f.types(t, fc.typeArgs...), nil)
		if !report.IsKind(err, report.GenericInferenceFailed) {
			t.Fatalf("%s%v<%v>: expected inference to fail, got %v", fc.name, fc.args, fc.typeArgs, err)
		}
	}
}

func TestExtensionFallback(t *testing.T) {
	f := newFixture(t, "[]")
	list := f.typ(t, "List<int>")

	cand, err := f.r.Method(list, "Count", false, nil, nil, nil)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}

	if cand.Kind != ExtensionMember || cand.Type != f.typ(t, "int") || cand.GenericArgs[0] != f.typ(t, "int") {
		t.Fatalf("Count() resolved to %s", cand)
	}

	if len(cand.ExplicitParams()) != 0 || cand.Params[0] != f.typ(t, "IEnumerable<int>") {
		t.Fatalf("receiver was not excluded from the explicit parameters")
	}

	cand, err = f.r.Method(list, "Contains", false, f.types(t, "int"), nil, nil)
	if err != nil || cand.Kind != MethodMember {
		t.Fatalf("instance methods should win over extension methods: %v", err)
	}

	cand, err = f.r.Method(list, "Select", false, f.types(t, "Func<int, string>"), nil, nil)
	if err != nil || cand.Type != f.typ(t, "IEnumerable<string>") {
		t.Fatalf("Select inferred the wrong result: %v", err)
	}

	cand, err = f.r.Method(f.typ(t, "int[]"), "Sum", false, nil, nil, nil)
	if err != nil || cand.Type != f.typ(t, "int") {
		t.Fatalf("Sum over an array failed: %v", err)
	}

	_, err = f.r.Method(list, "Missing", false, nil, nil, nil)
	if !report.IsKind(err, report.NameNotFound) {
		t.Fatalf("expected member not found, got %v", err)
	}
}

func TestInheritedMembers(t *testing.T) {
	f := newFixture(t, "[]")

	cand, err := f.r.Method(f.typ(t, "string"), "ToString", false, nil, nil, nil)
	if err != nil {
		t.Fatalf("ToString() failed: %v", err)
	}

	if cand.Owner != f.typ(t, "string") {
		t.Fatalf("override was not preferred: %s", cand)
	}

	cand, err = f.r.Method(f.typ(t, "List<int>"), "GetHashCode", false, nil, nil, nil)
	if err != nil || cand.Owner != f.typ(t, "object") {
		t.Fatalf("inherited method not found: %v", err)
	}

	cand, err = f.r.Member(f.typ(t, "int[]"), "Length", false, nil)
	if err != nil || cand.Kind != PropertyMember {
		t.Fatalf("array length not found: %v", err)
	}

	cand, err = f.r.Member(f.typ(t, "int"), "MaxValue", true, nil)
	if err != nil || cand.Kind != FieldMember || !cand.Field.Literal {
		t.Fatalf("static literal field not found: %v", err)
	}

	cand, err = f.r.Method(f.typ(t, "Console"), "WriteLine", true, f.types(t, "int"), nil, nil)
	if err != nil || cand.Params[0] != f.typ(t, "object") || cand.Distance != typing.BoxingDistance {
		t.Fatalf("WriteLine(int) should box to object: %v", err)
	}
}

func TestInProgressMembers(t *testing.T) {
	f := newFixture(t, `
- {node: record, name: Point, fields: [{name: X, type: int}, {name: Y, type: int}]}
- {node: func, name: norm, args: [{name: p, type: Point}], returns: double}
- {node: func, name: norm, args: [{name: x, type: double}], returns: double}
`)

	point := f.typ(t, "Point")
	cand, err := f.r.Member(point, "Y", false, nil)
	if err != nil || cand.EntityField == nil || cand.Type != f.typ(t, "int") {
		t.Fatalf("record field not found: %v", err)
	}

	if _, err := f.r.Method(point, "ToString", false, nil, nil, nil); !report.IsKind(err, report.NameNotFound) {
		t.Fatalf("in-progress types should only expose their own members, got %v", err)
	}

	cand, err = f.r.Ctor(point, f.types(t, "int", "int"), nil)
	if err != nil || cand.Kind != CtorMember || cand.EntityMethod == nil {
		t.Fatalf("record constructor not found: %v", err)
	}

	script := f.g.Script.Type
	cand, err = f.r.Method(script, "norm", true, f.types(t, "int"), nil, nil)
	if err != nil || cand.Params[0] != f.typ(t, "double") {
		t.Fatalf("norm(int) should widen to double: %v", err)
	}

	cand, err = f.r.Method(script, "norm", true, []*typing.Type{point}, nil, nil)
	if err != nil || cand.Params[0] != point {
		t.Fatalf("norm(Point) failed: %v", err)
	}
}

func TestCtors(t *testing.T) {
	f := newFixture(t, "[]")

	if _, err := f.r.Ctor(f.typ(t, "Nullable<int>"), f.types(t, "int"), nil); err != nil {
		t.Fatalf("nullable constructor failed: %v", err)
	}

	if _, err := f.r.Ctor(f.typ(t, "IEnumerable<int>"), nil, nil); !report.IsKind(err, report.InvalidOperation) {
		t.Fatalf("constructing an interface should fail, got %v", err)
	}

	if _, err := f.r.Ctor(f.typ(t, "List<int>"), f.types(t, "int"), nil); !report.IsKind(err, report.NameNotFound) {
		t.Fatalf("constructor arity mismatch should fail, got %v", err)
	}
}
