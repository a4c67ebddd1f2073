package walk

import (
	"keel/ast"
	"keel/depm"
	"keel/report"
	"keel/scope"
	"keel/typing"
)

// walkFunction resolves the body of a top level method.
func (w *Walker) walkFunction(me *depm.MethodEntity) {
	w.tree = scope.NewTree(w.g, w.names, w.unrollConstants)
	defer func() {
		w.tree = nil
	}()

	root := w.tree.EnterFunction(me)
	w.result.Scopes[me.Body] = root

	for i, arg := range me.Args {
		typ := arg.Type
		if arg.ByRef {
			typ = typ.Elem
		}

		w.tree.DeclareArg(arg.Name, typ, arg.ByRef, i, arg.Span)
	}

	bodyType := w.walkStmts(me.Body.Stmts)
	w.setType(me.Body, bodyType)

	if me == w.g.Entry {
		// the entry method yields its last value boxed as an object
		if bodyType != w.unitType() {
			w.mustBeValue(lastStmt(me.Body))
			w.mustConvert(lastStmt(me.Body), me.ReturnType)
		}
	} else if me.ReturnType != w.unitType() {
		last := lastStmt(me.Body)
		if last == nil || bodyType == w.unitType() {
			w.error(
				report.TypeMismatch,
				me.Span,
				"function `%s` must yield a value of type `%s`",
				me.Name,
				me.ReturnType,
			)
		}

		w.mustConvert(last, me.ReturnType)
	}

	frame := w.tree.ExitFunction()
	w.result.Frames[me.ID] = frame
	w.g.MarkCompiled(me)
}

// walkLambda resolves a lambda.  Lambdas are typed as delegates whose return
// type is the type of the lambda's body.
func (w *Walker) walkLambda(l *ast.Lambda) *typing.Type {
	argTypes := make([]*typing.Type, len(l.Args))
	args := make([]*depm.ArgDef, len(l.Args))
	for i, arg := range l.Args {
		if arg.ByRef {
			w.error(report.InvalidOperation, arg.Span(), "lambda arguments cannot be passed by reference")
		}

		argTypes[i] = w.resolveType(arg.Type)
		args[i] = &depm.ArgDef{
			Name:    arg.Name,
			TypeSig: arg.Type.Signature,
			Span:    arg.Span(),
			Type:    argTypes[i],
		}
	}

	root := w.tree.EnterLambda(l.Span())
	w.result.Scopes[l.Body] = root

	for i, arg := range args {
		w.tree.DeclareArg(arg.Name, arg.Type, false, i, arg.Span)
	}

	ret := w.walkStmts(l.Body.Stmts)
	w.setType(l.Body, ret)
	if ret != w.unitType() {
		ret = w.mustBeValue(lastStmt(l.Body))
		if ret.Kind == typing.KindNull {
			w.error(report.TypeMismatch, l.Span(), "unable to infer the return type of a lambda yielding null")
		}
	}

	me := w.tree.ExitLambda(l, args, ret)
	w.g.MarkCompiled(me)
	w.result.Lambdas[l] = root.Frame
	w.result.Frames[me.ID] = root.Frame

	delegate, err := w.uni.Delegate(argTypes, ret, l.Span())
	w.must(err)
	return w.setType(l, delegate)
}

// -----------------------------------------------------------------------------

// walkStmts walks a sequence of statements in the current scope and returns
// the type of the last one.
func (w *Walker) walkStmts(stmts []ast.Expr) *typing.Type {
	if len(stmts) == 0 {
		return w.unitType()
	}

	for _, stmt := range stmts {
		w.walkExpr(stmt)
	}

	return w.typeOf(stmts[len(stmts)-1])
}

// walkBlock walks a block in a new block scope.
func (w *Walker) walkBlock(b *ast.Block) *typing.Type {
	s := w.tree.EnterBlock(b.Span())
	w.result.Scopes[b] = s

	typ := w.walkStmts(b.Stmts)

	w.tree.Exit()
	return w.setType(b, typ)
}

func lastStmt(b *ast.Block) ast.Expr {
	if len(b.Stmts) == 0 {
		return nil
	}

	return b.Stmts[len(b.Stmts)-1]
}
