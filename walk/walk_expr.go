package walk

import (
	"keel/ast"
	"keel/report"
	"keel/typing"
)

// walkExpr resolves an expression and records its type.
func (w *Walker) walkExpr(expr ast.Expr) *typing.Type {
	switch v := expr.(type) {
	case *ast.Block:
		return w.walkBlock(v)
	case *ast.VarDef:
		w.walkVarDef(v)
	case *ast.Assign:
		w.walkAssign(v)
	case *ast.Identifier:
		w.walkIdentifier(v)
	case *ast.Literal:
		w.walkLiteral(v)
	case *ast.UnaryOp:
		w.walkUnaryOp(v)
	case *ast.BinaryOp:
		w.walkBinaryOp(v)
	case *ast.IfExpr:
		w.walkIf(v)
	case *ast.WhileLoop:
		w.walkWhile(v)
	case *ast.ForLoop:
		w.walkFor(v)
	case *ast.Lambda:
		w.walkLambda(v)
	case *ast.Call:
		w.walkCall(v)
	case *ast.MemberAccess:
		w.walkMemberAccess(v)
	case *ast.MemberAssign:
		w.walkMemberAssign(v)
	case *ast.MemberCall:
		w.walkMemberCall(v)
	case *ast.NewExpr:
		w.walkNew(v)
	case *ast.DefaultExpr:
		w.setType(v, w.resolveType(v.Type))
	case *ast.RefArg:
		w.walkRefArg(v)
	default:
		panic(report.ICE("walking not implemented for %T", expr))
	}

	return w.typeOf(expr)
}

// -----------------------------------------------------------------------------

func (w *Walker) walkVarDef(vd *ast.VarDef) {
	w.walkExpr(vd.Value)

	var typ *typing.Type
	if vd.Type != nil {
		typ = w.resolveType(vd.Type)
		if typ == w.unitType() || typ.Kind == typing.KindRef {
			w.error(report.TypeMismatch, vd.Type.Span(), "variables cannot be of type `%s`", typ)
		}

		w.mustBeValue(vd.Value)
		w.mustConvert(vd.Value, typ)
	} else {
		typ = w.mustBeValue(vd.Value)
		if typ.Kind == typing.KindNull {
			w.error(report.TypeMismatch, vd.Span(), "unable to infer type for null: `%s` needs a type label", vd.Name)
		}
	}

	lit, isLit := vd.Value.(*ast.Literal)
	if isLit && vd.Immutable && lit.Kind != ast.LitNull && w.typeOf(lit) == typ {
		local := w.tree.DeclareConstant(vd.Name, typ, lit, vd.Span())
		w.result.Accesses[vd] = w.tree.Reference(local, vd.Span())
	} else {
		local := w.tree.Declare(vd.Name, typ, vd.Immutable, false, vd.Span())
		w.result.Accesses[vd] = w.tree.Reference(local, vd.Span())
	}

	w.setType(vd, w.unitType())
}

func (w *Walker) walkAssign(a *ast.Assign) {
	w.walkExpr(a.Value)

	local, _ := w.tree.Lookup(a.Name)
	if local == nil {
		w.error(report.NameNotFound, a.Span(), "undefined local `%s`", a.Name)
	} else if local.IsConst {
		w.error(report.InvalidOperation, a.Span(), "cannot assign to immutable local `%s`", a.Name)
	}

	w.mustBeValue(a.Value)
	w.mustConvert(a.Value, local.Type)

	w.result.Accesses[a] = w.tree.Reference(local, a.Span())
	w.setType(a, w.unitType())
}

// walkIdentifier resolves a name used as a value.  Locals shadow global
// properties which in turn shadow free functions.
func (w *Walker) walkIdentifier(id *ast.Identifier) {
	if local, _ := w.tree.Lookup(id.Name); local != nil {
		w.result.Accesses[id] = w.tree.Reference(local, id.Span())
		w.setType(id, local.Type)
		return
	}

	if gp, ok := w.g.Global(id.Name); ok {
		w.result.Globals[id] = gp
		w.setType(id, gp.Type)
		return
	}

	if len(w.g.Functions(id.Name)) > 0 {
		cand, err := w.res.MethodGroup(w.g.Script.Type, id.Name, true, id.Span())
		w.must(err)

		delegate, err := w.uni.Delegate(cand.Params, cand.Type, id.Span())
		w.must(err)

		w.result.Members[id] = cand
		w.setType(id, delegate)
		return
	}

	w.error(report.NameNotFound, id.Span(), "undefined name `%s`", id.Name)
}

func (w *Walker) walkRefArg(ra *ast.RefArg) {
	local, _ := w.tree.Lookup(ra.Name)
	if local == nil {
		w.error(report.NameNotFound, ra.Span(), "undefined local `%s`", ra.Name)
	} else if local.IsConst {
		w.error(report.InvalidOperation, ra.Span(), "immutable local `%s` cannot be passed by reference", ra.Name)
	}

	w.result.Accesses[ra] = w.tree.Reference(local, ra.Span())
	w.setType(ra, w.uni.RefTo(local.Type))
}
