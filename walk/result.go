package walk

import (
	"keel/ast"
	"keel/depm"
	"keel/resolve"
	"keel/scope"
	"keel/typing"
)

// Result holds every decision made while resolving the bodies of a
// compilation unit, keyed by the syntax node the decision was made for.  It
// is what emitters consume: no emitter ever repeats a resolution.
type Result struct {
	// Types is the type of every expression.
	Types map[ast.Expr]*typing.Type

	// TypeLabels is the resolved type of every type label in a body.
	TypeLabels map[*ast.TypeLabel]*typing.Type

	// Conversions holds the type an expression is implicitly converted to
	// after it is evaluated, for expressions whose type differs from the type
	// expected by their context.
	Conversions map[ast.Expr]*typing.Type

	// Accesses locates the local read or written by identifiers, assignments,
	// definitions and by-reference arguments.
	Accesses map[ast.Node]*scope.Access

	// Members is the member selected for member accesses, member
	// assignments, calls, constructions and functions used as values.
	Members map[ast.Node]*resolve.Candidate

	// Globals is the global property named by an identifier.
	Globals map[*ast.Identifier]*depm.GlobalProperty

	// Scopes is the scope opened by blocks and loops.
	Scopes map[ast.Node]*scope.Scope

	// Lambdas is the frame of every lambda.
	Lambdas map[*ast.Lambda]*scope.Frame

	// Loops holds the implicit locals of every counting loop.
	Loops map[*ast.ForLoop]*ForLoopInfo

	// Frames is the frame of every method with a body.
	Frames map[depm.MethodID]*scope.Frame
}

// ForLoopInfo holds the locals a counting loop is compiled with.  Counter and
// Bound are implicit locals of the scope enclosing the loop; Var is the loop
// variable declared anew in each iteration.
type ForLoopInfo struct {
	Counter, Bound *scope.Access
	Var            *scope.Access
}

func newResult() *Result {
	return &Result{
		Types:       make(map[ast.Expr]*typing.Type),
		TypeLabels:  make(map[*ast.TypeLabel]*typing.Type),
		Conversions: make(map[ast.Expr]*typing.Type),
		Accesses:    make(map[ast.Node]*scope.Access),
		Members:     make(map[ast.Node]*resolve.Candidate),
		Globals:     make(map[*ast.Identifier]*depm.GlobalProperty),
		Scopes:      make(map[ast.Node]*scope.Scope),
		Lambdas:     make(map[*ast.Lambda]*scope.Frame),
		Loops:       make(map[*ast.ForLoop]*ForLoopInfo),
		Frames:      make(map[depm.MethodID]*scope.Frame),
	}
}
