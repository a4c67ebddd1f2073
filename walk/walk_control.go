package walk

import (
	"keel/ast"
)

func (w *Walker) walkIf(ie *ast.IfExpr) {
	w.walkExpr(ie.Cond)
	w.mustConvert(ie.Cond, w.boolType())

	w.walkBlock(ie.Then)
	if ie.Else == nil {
		w.setType(ie, w.unitType())
		return
	}

	w.walkBlock(ie.Else)
	w.setType(ie, w.mustUnify(ie.Then, ie.Else, ie.Span()))
}

// walkWhile resolves a while loop.  The condition is evaluated in the
// enclosing scope; the body is a loop scope entered anew on each iteration.
func (w *Walker) walkWhile(wl *ast.WhileLoop) {
	w.walkExpr(wl.Cond)
	w.mustConvert(wl.Cond, w.boolType())

	loop := w.tree.EnterLoop(wl.Body.Span())
	w.result.Scopes[wl] = loop
	w.result.Scopes[wl.Body] = loop

	w.setType(wl.Body, w.walkStmts(wl.Body.Stmts))

	w.tree.Exit()
	w.setType(wl, w.unitType())
}

// walkFor resolves a counting loop.  The counter and the bound are implicit
// locals of the enclosing scope; the loop variable is an immutable local of
// the loop scope so that each iteration binds it anew.
func (w *Walker) walkFor(fl *ast.ForLoop) {
	intType := w.uni.Builtin("int")

	w.walkExpr(fl.From)
	w.mustConvert(fl.From, intType)
	w.walkExpr(fl.To)
	w.mustConvert(fl.To, intType)

	counter := w.tree.DeclareImplicit(intType)
	bound := w.tree.DeclareImplicit(intType)
	info := &ForLoopInfo{
		Counter: w.tree.Reference(counter, fl.Span()),
		Bound:   w.tree.Reference(bound, fl.Span()),
	}

	loop := w.tree.EnterLoop(fl.Body.Span())
	w.result.Scopes[fl] = loop
	w.result.Scopes[fl.Body] = loop

	v := w.tree.Declare(fl.Var, intType, true, false, fl.Span())
	info.Var = w.tree.Reference(v, fl.Span())

	w.setType(fl.Body, w.walkStmts(fl.Body.Stmts))

	w.tree.Exit()
	w.result.Loops[fl] = info
	w.setType(fl, w.unitType())
}
