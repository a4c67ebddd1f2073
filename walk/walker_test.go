package walk

import (
	"keel/ast"
	"keel/common"
	"keel/depm"
	"keel/report"
	"keel/scope"
	"keel/typing"
	"strings"
	"testing"
)

func walkSource(t *testing.T, src string, unroll bool) (*depm.Graph, *Result, error) {
	uni, err := typing.NewUniverse()
	if err != nil {
		t.Fatalf("failed to create universe: %v", err)
	}

	nodes, err := ast.DecodeYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to decode syntax tree: %v", err)
	}

	g := depm.NewGraph(uni, 0)
	if err := depm.NewBuilder(g).Build(nodes); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	res, err := NewWalker(g, &common.NameGenerator{}, unroll).WalkAll()
	return g, res, err
}

func mustWalk(t *testing.T, src string) (*depm.Graph, *Result) {
	g, res, err := walkSource(t, src, false)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	return g, res
}

func stmt(g *depm.Graph, i int) ast.Expr {
	return g.Entry.Body.Stmts[i]
}

func builtin(g *depm.Graph, alias string) *typing.Type {
	return g.Universe().Builtin(alias)
}

func TestScriptTypes(t *testing.T) {
	g, res := mustWalk(t, `
- {node: let, name: a, value: {node: int, value: "1"}}
- {node: let, name: b, value: {node: int, value: "3000000000"}}
- {node: binary, op: +, lhs: {node: ident, name: a}, rhs: {node: ident, name: b}}
`)

	long := builtin(g, "long")
	sum := stmt(g, 2).(*ast.BinaryOp)
	if res.Types[sum] != long {
		t.Fatalf("sum has type %s, want %s", res.Types[sum], long)
	}

	if res.Conversions[sum.Lhs] != long {
		t.Fatalf("int operand was not widened to long")
	}

	if res.Conversions[sum] != builtin(g, "object") {
		t.Fatalf("script value was not boxed")
	}

	if g.Entry.Phase != depm.PhaseCompiled {
		t.Fatalf("entry method is %s after walking", g.Entry.Phase)
	}
}

func TestLambdaCapture(t *testing.T) {
	g, res := mustWalk(t, `
- {node: var, name: a, value: {node: int, value: "1"}}
- {node: let, name: f, value: {node: lambda, body: [{node: assign, name: a, value: {node: int, value: "2"}}]}}
- {node: call, func: {node: ident, name: f}}
- {node: ident, name: a}
`)

	acc := res.Accesses[stmt(g, 3)]
	if !acc.Local.IsClosured() || acc.Local.Storage().Kind != scope.FieldStorage {
		t.Fatalf("captured local `a` should be stored in a carrier field")
	}

	lambda := stmt(g, 1).(*ast.VarDef).Value.(*ast.Lambda)
	frame := res.Lambdas[lambda]
	if frame == nil || !frame.Captures() {
		t.Fatalf("lambda should capture `a`")
	}

	if frame.Method.IsStatic || frame.Method.Owner != frame.This().Entity.ID {
		t.Fatalf("capturing lambda should be an instance method of its carrier")
	}

	if frame.Method.ReturnType != builtin(g, "unit") {
		t.Fatalf("lambda returns %s, want unit", frame.Method.ReturnType)
	}

	ft := res.Types[lambda]
	if !ft.IsDelegate() || ft.Def.FullName() != "System.Action" {
		t.Fatalf("lambda has type %s, want an action", ft)
	}

	call := stmt(g, 2).(*ast.Call)
	if cand := res.Members[call]; cand == nil || cand.Name != "Invoke" {
		t.Fatalf("call through a delegate should invoke it")
	}
}

func TestNonCapturingLambdaIsStatic(t *testing.T) {
	g, res := mustWalk(t, `
- {node: let, name: f, value: {node: lambda, args: [{name: x, type: int}], body: [{node: binary, op: "*", lhs: {node: ident, name: x}, rhs: {node: int, value: "2"}}]}}
- {node: call, func: {node: ident, name: f}, args: [{node: int, value: "21"}]}
`)

	lambda := stmt(g, 0).(*ast.VarDef).Value.(*ast.Lambda)
	frame := res.Lambdas[lambda]
	if frame.Captures() || !frame.Method.IsStatic || frame.Method.Owner != g.Script.ID {
		t.Fatalf("non-capturing lambda should be a static method of the script")
	}

	if res.Types[stmt(g, 1)] != builtin(g, "int") {
		t.Fatalf("invocation has type %s, want int", res.Types[stmt(g, 1)])
	}
}

func TestFunctionCalls(t *testing.T) {
	g, res := mustWalk(t, `
- {node: func, name: scale, args: [{name: x, type: int}], returns: int, body: [{node: binary, op: "*", lhs: {node: ident, name: x}, rhs: {node: int, value: "2"}}]}
- {node: func, name: scale, args: [{name: x, type: double}], returns: double, body: [{node: ident, name: x}]}
- {node: func, name: bump, args: [{name: x, type: int, ref: true}], body: [{node: assign, name: x, value: {node: int, value: "1"}}]}
- {node: call, func: {node: ident, name: scale}, args: [{node: int, value: "1"}]}
- {node: call, func: {node: ident, name: scale}, args: [{node: float, value: "1.5"}]}
- {node: var, name: n, value: {node: int, value: "0"}}
- {node: call, func: {node: ident, name: bump}, args: [{node: ref, name: n}]}
`)

	if res.Types[stmt(g, 0)] != builtin(g, "int") {
		t.Fatalf("int overload was not selected")
	}

	if res.Types[stmt(g, 1)] != builtin(g, "double") {
		t.Fatalf("double overload was not selected")
	}

	ref := stmt(g, 3).(*ast.Call).Args[0]
	if res.Types[ref] != g.Universe().RefTo(builtin(g, "int")) {
		t.Fatalf("by-reference argument has type %s", res.Types[ref])
	}

	for _, me := range g.Functions("scale") {
		if me.Phase != depm.PhaseCompiled || res.Frames[me.ID] == nil {
			t.Fatalf("function `scale` was not walked")
		}
	}
}

func TestFunctionAsValue(t *testing.T) {
	g, res := mustWalk(t, `
- {node: func, name: twice, args: [{name: x, type: int}], returns: int, body: [{node: binary, op: "+", lhs: {node: ident, name: x}, rhs: {node: ident, name: x}}]}
- {node: let, name: f, value: {node: ident, name: twice}}
- {node: call, func: {node: ident, name: f}, args: [{node: int, value: "4"}]}
`)

	id := stmt(g, 0).(*ast.VarDef).Value
	if cand := res.Members[id]; cand == nil || cand.EntityMethod == nil || cand.EntityMethod.Name != "twice" {
		t.Fatalf("function value should refer to `twice`")
	}

	if ft := res.Types[id]; !ft.IsDelegate() || ft.Def.FullName() != "System.Func`2" {
		t.Fatalf("function value has type %s", ft)
	}
}

func TestForLoop(t *testing.T) {
	g, res := mustWalk(t, `
- {node: var, name: sum, value: {node: int, value: "0"}}
- {node: for, var: i, from: {node: int, value: "1"}, to: {node: int, value: "10"}, body: [{node: assign, name: sum, value: {node: binary, op: +, lhs: {node: ident, name: sum}, rhs: {node: ident, name: i}}}]}
- {node: ident, name: sum}
`)

	fl := stmt(g, 1).(*ast.ForLoop)
	info := res.Loops[fl]
	if info == nil {
		t.Fatalf("loop information missing")
	}

	if !info.Counter.Local.IsImplicit || !info.Bound.Local.IsImplicit {
		t.Fatalf("counter and bound should be implicit locals")
	}

	if info.Var.Local.Owner != res.Scopes[fl] || res.Scopes[fl].Kind != scope.Loop {
		t.Fatalf("loop variable should be declared in the loop scope")
	}

	if info.Counter.Local.Owner == info.Var.Local.Owner {
		t.Fatalf("counter should live outside the loop scope")
	}
}

func TestSumTypes(t *testing.T) {
	g, res := mustWalk(t, `
- {node: sum, name: Option, labels: [{name: Some, tag: int}, {name: None}]}
- {node: let, name: a, type: Option, value: {node: call, func: {node: ident, name: Some}, args: [{node: int, value: "1"}]}}
- {node: let, name: b, type: Option, value: {node: ident, name: None}}
- {node: get, target: {node: call, func: {node: ident, name: Some}, args: [{node: int, value: "2"}]}, name: Tag}
`)

	option, _ := g.LookupLocalType("Option")
	a := stmt(g, 0).(*ast.VarDef)
	if res.Conversions[a.Value] != option {
		t.Fatalf("label was not converted to its sum type")
	}

	b := stmt(g, 1).(*ast.VarDef)
	if gp := res.Globals[b.Value.(*ast.Identifier)]; gp == nil || gp.Name != "None" {
		t.Fatalf("singleton label should be a global property")
	}

	if res.Types[stmt(g, 2)] != builtin(g, "int") {
		t.Fatalf("tag has type %s, want int", res.Types[stmt(g, 2)])
	}
}

func TestIfUnifiesBranches(t *testing.T) {
	g, res := mustWalk(t, `
- {node: let, name: x, value: {node: if, cond: {node: bool, value: "true"}, then: [{node: int, value: "1"}], else: [{node: float, value: "2.5"}]}}
- {node: let, name: s, type: string, value: {node: if, cond: {node: bool, value: "false"}, then: [{node: null}], else: [{node: string, value: "s"}]}}
`)

	ie := stmt(g, 0).(*ast.VarDef).Value.(*ast.IfExpr)
	if res.Types[ie] != builtin(g, "double") {
		t.Fatalf("conditional has type %s, want double", res.Types[ie])
	}

	if res.Conversions[ie.Then] != builtin(g, "double") {
		t.Fatalf("int branch was not widened")
	}

	ie = stmt(g, 1).(*ast.VarDef).Value.(*ast.IfExpr)
	if res.Types[ie] != builtin(g, "string") {
		t.Fatalf("conditional has type %s, want string", res.Types[ie])
	}
}

func TestConstantsAreUnrolled(t *testing.T) {
	g, res, err := walkSource(t, `
- {node: let, name: k, value: {node: int, value: "7"}}
- {node: let, name: f, value: {node: lambda, body: [{node: ident, name: k}]}}
`, true)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	lambda := stmt(g, 1).(*ast.VarDef).Value.(*ast.Lambda)
	if res.Lambdas[lambda].Captures() {
		t.Fatalf("unrolled constants should not be captured")
	}

	if res.Accesses[stmt(g, 0)].Local.Storage().Kind != scope.ConstantStorage {
		t.Fatalf("constant should have constant storage")
	}
}

func TestWalkErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind report.ErrorKind
	}{
		{
			"assign immutable",
			`[{node: let, name: a, value: {node: int, value: "1"}}, {node: assign, name: a, value: {node: int, value: "2"}}]`,
			report.InvalidOperation,
		},
		{
			"undefined name",
			`[{node: ident, name: nope}]`,
			report.NameNotFound,
		},
		{
			"undefined function",
			`[{node: call, func: {node: ident, name: nope}}]`,
			report.NameNotFound,
		},
		{
			"condition not bool",
			`[{node: if, cond: {node: int, value: "1"}, then: []}]`,
			report.TypeMismatch,
		},
		{
			"untyped null",
			`[{node: let, name: a, value: {node: null}}]`,
			report.TypeMismatch,
		},
		{
			"missing return value",
			`[{node: func, name: f, returns: int, body: []}]`,
			report.TypeMismatch,
		},
		{
			"ref of immutable",
			`[{node: func, name: f, args: [{name: x, type: int, ref: true}], body: []}, {node: let, name: a, value: {node: int, value: "1"}}, {node: call, func: {node: ident, name: f}, args: [{node: ref, name: a}]}]`,
			report.InvalidOperation,
		},
		{
			"call non-delegate",
			`[{node: let, name: a, value: {node: int, value: "1"}}, {node: call, func: {node: ident, name: a}}]`,
			report.InvalidOperation,
		},
		{
			"assign record field",
			`[{node: record, name: P, fields: [{name: X, type: int}]}, {node: let, name: p, value: {node: new, type: P, args: [{node: int, value: "1"}]}}, {node: set, target: {node: ident, name: p}, name: X, value: {node: int, value: "2"}}]`,
			report.InvalidOperation,
		},
		{
			"overloaded function value",
			`[{node: func, name: f, args: [{name: x, type: int}], body: []}, {node: func, name: f, args: [{name: x, type: string}], body: []}, {node: let, name: g, value: {node: ident, name: f}}]`,
			report.MemberAmbiguous,
		},
		{
			"capture by reference",
			`[{node: func, name: f, args: [{name: x, type: int, ref: true}], body: [{node: lambda, body: [{node: ident, name: x}]}]}]`,
			report.ClosureViolation,
		},
		{
			"unit variable",
			`[{node: func, name: f, body: []}, {node: let, name: a, value: {node: call, func: {node: ident, name: f}}}]`,
			report.TypeMismatch,
		},
		{
			"mismatched arithmetic",
			`[{node: binary, op: "-", lhs: {node: string, value: "a"}, rhs: {node: int, value: "1"}}]`,
			report.TypeMismatch,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := walkSource(t, test.src, false)
			if !report.IsKind(err, test.kind) {
				t.Fatalf("expected %s error, got %v", test.kind, err)
			}
		})
	}
}
