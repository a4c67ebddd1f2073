package walk

import (
	"keel/ast"
	"keel/common"
	"keel/depm"
	"keel/report"
	"keel/resolve"
	"keel/scope"
	"keel/typing"
)

// Walker is responsible for resolving the bodies of every method of a
// compilation unit once all signatures have been prepared.  It drives the
// scope tree, the member resolver and the type universe, resolving each body
// strictly left to right and outer to inner.
type Walker struct {
	g   *depm.Graph
	uni *typing.Universe
	res *resolve.Resolver

	// The scope tree of the method being walked.
	tree *scope.Tree

	names           *common.NameGenerator
	unrollConstants bool

	result *Result
}

// NewWalker creates a new walker for the prepared entity graph g.
func NewWalker(g *depm.Graph, names *common.NameGenerator, unrollConstants bool) *Walker {
	return &Walker{
		g:               g,
		uni:             g.Universe(),
		res:             resolve.NewResolver(g),
		names:           names,
		unrollConstants: unrollConstants,
		result:          newResult(),
	}
}

// WalkAll resolves the body of every method with a user-written body.  Walking
// aborts on the first error.
func (w *Walker) WalkAll() (result *Result, err error) {
	defer report.CatchErrors(&err)

	// closure methods are added to the graph while walking: they are walked
	// as part of their enclosing body
	methods := append([]*depm.MethodEntity(nil), w.g.Methods()...)
	for _, me := range methods {
		if me.Body != nil && me.Synthetic == depm.NotSynthetic && me.Lambda == nil {
			w.walkFunction(me)
		}
	}

	return w.result, nil
}

// -----------------------------------------------------------------------------

// error aborts walking with a compile error on the given span.
func (w *Walker) error(kind report.ErrorKind, span *report.TextSpan, msg string, args ...interface{}) {
	panic(report.Raise(kind, span, msg, args...))
}

// must raises err if it is not nil.
func (w *Walker) must(err error) {
	if err != nil {
		panic(err)
	}
}

// setType records the type of an expression.
func (w *Walker) setType(expr ast.Expr, typ *typing.Type) *typing.Type {
	w.result.Types[expr] = typ
	return typ
}

// typeOf returns the recorded type of an expression.
func (w *Walker) typeOf(expr ast.Expr) *typing.Type {
	typ, ok := w.result.Types[expr]
	if !ok {
		panic(report.ICE("type of expression at %s requested before it was walked", expr.Span()))
	}

	return typ
}

// resolveType resolves a type label.
func (w *Walker) resolveType(label *ast.TypeLabel) *typing.Type {
	typ, err := w.uni.Resolve(label.Signature, label.Span())
	w.must(err)

	w.result.TypeLabels[label] = typ
	return typ
}

func (w *Walker) unitType() *typing.Type {
	return w.uni.Builtin("unit")
}

func (w *Walker) boolType() *typing.Type {
	return w.uni.Builtin("bool")
}
