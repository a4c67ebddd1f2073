package walk

import (
	"keel/ast"
	"keel/report"
	"keel/resolve"
	"keel/typing"
)

// walkCall resolves a call.  A call through a name that is neither a local
// nor a global property calls a free function; anything else must be a
// delegate value, which is invoked.
func (w *Walker) walkCall(c *ast.Call) {
	if id, ok := c.Func.(*ast.Identifier); ok && w.isFunctionName(id) {
		argTypes := w.walkArgs(c.Args)

		cand, err := w.res.Method(w.g.Script.Type, id.Name, true, argTypes, nil, c.Span())
		w.must(err)

		w.bindArgs(c.Args, cand)
		w.result.Members[c] = cand
		w.setType(c, cand.Type)
		return
	}

	w.walkExpr(c.Func)
	ft := w.mustBeValue(c.Func)
	if !ft.IsDelegate() {
		w.error(report.InvalidOperation, c.Func.Span(), "value of type `%s` cannot be called", ft)
	}

	argTypes := w.walkArgs(c.Args)
	cand, err := w.res.Method(ft, "Invoke", false, argTypes, nil, c.Span())
	w.must(err)

	w.bindArgs(c.Args, cand)
	w.result.Members[c] = cand
	w.setType(c, cand.Type)
}

// isFunctionName returns whether id denotes a free function in the current
// scope.
func (w *Walker) isFunctionName(id *ast.Identifier) bool {
	if local, _ := w.tree.Lookup(id.Name); local != nil {
		return false
	}

	if _, ok := w.g.Global(id.Name); ok {
		return false
	}

	if len(w.g.Functions(id.Name)) == 0 {
		w.error(report.NameNotFound, id.Span(), "undefined function `%s`", id.Name)
	}

	return true
}

func (w *Walker) walkMemberAccess(ma *ast.MemberAccess) {
	recv, static := w.walkReceiver(ma.Target, ma.Static)

	cand, err := w.res.Member(recv, ma.Name, static, ma.Span())
	w.must(err)

	if cand.Kind == resolve.PropertyMember && !cand.Property.CanGet {
		w.error(report.InvalidOperation, ma.Span(), "property `%s` of `%s` cannot be read", ma.Name, cand.Owner)
	}

	w.result.Members[ma] = cand
	w.setType(ma, cand.Type)
}

// walkMemberAssign resolves an assignment to a member.  Only mutable platform
// fields and settable properties of reference types or static members can be
// assigned to.
func (w *Walker) walkMemberAssign(ma *ast.MemberAssign) {
	recv, static := w.walkReceiver(ma.Target, ma.Static)
	w.walkExpr(ma.Value)
	w.mustBeValue(ma.Value)

	cand, err := w.res.Member(recv, ma.Name, static, ma.Span())
	w.must(err)

	switch {
	case cand.EntityField != nil:
		w.error(report.InvalidOperation, ma.Span(), "field `%s` of `%s` is immutable", ma.Name, recv)
	case cand.Kind == resolve.FieldMember && cand.Field.Literal:
		w.error(report.InvalidOperation, ma.Span(), "constant `%s` of `%s` cannot be assigned to", ma.Name, cand.Owner)
	case cand.Kind == resolve.PropertyMember && !cand.Property.CanSet:
		w.error(report.InvalidOperation, ma.Span(), "property `%s` of `%s` cannot be assigned to", ma.Name, cand.Owner)
	case !static && recv.IsValue:
		w.error(report.InvalidOperation, ma.Span(), "members of value `%s` cannot be assigned to", recv)
	}

	w.mustConvert(ma.Value, cand.Type)
	w.result.Members[ma] = cand
	w.setType(ma, w.unitType())
}

func (w *Walker) walkMemberCall(mc *ast.MemberCall) {
	recv, static := w.walkReceiver(mc.Target, mc.Static)

	typeArgs := make([]*typing.Type, len(mc.TypeArgs))
	for i, ta := range mc.TypeArgs {
		typeArgs[i] = w.resolveType(ta)
	}

	argTypes := w.walkArgs(mc.Args)

	cand, err := w.res.Method(recv, mc.Name, static, argTypes, typeArgs, mc.Span())
	w.must(err)

	if cand.Kind == resolve.ExtensionMember {
		w.mustConvert(mc.Target, cand.Params[0])
	}

	w.bindArgs(mc.Args, cand)
	w.result.Members[mc] = cand
	w.setType(mc, cand.Type)
}

func (w *Walker) walkNew(ne *ast.NewExpr) {
	typ := w.resolveType(ne.Type)
	argTypes := w.walkArgs(ne.Args)

	cand, err := w.res.Ctor(typ, argTypes, ne.Span())
	w.must(err)

	w.bindArgs(ne.Args, cand)
	w.result.Members[ne] = cand
	w.setType(ne, typ)
}

// -----------------------------------------------------------------------------

// walkReceiver resolves the receiver of a member operation: the type named by
// static for static members or the type of target for instance members.
func (w *Walker) walkReceiver(target ast.Expr, static *ast.TypeLabel) (*typing.Type, bool) {
	if static != nil {
		return w.resolveType(static), true
	}

	w.walkExpr(target)
	typ := w.mustBeValue(target)
	if typ.Kind == typing.KindNull {
		w.error(report.InvalidOperation, target.Span(), "null has no members")
	}

	return typ, false
}

// walkArgs walks the arguments of a call left to right and returns their
// types.
func (w *Walker) walkArgs(args []ast.Expr) []*typing.Type {
	types := make([]*typing.Type, len(args))
	for i, arg := range args {
		types[i] = w.walkExpr(arg)
		if types[i] == w.unitType() {
			w.error(report.TypeMismatch, arg.Span(), "expression yields no value")
		}
	}

	return types
}

// bindArgs records the conversions of the arguments of a call to the
// parameters of the selected member.
func (w *Walker) bindArgs(args []ast.Expr, cand *resolve.Candidate) {
	params := cand.ExplicitParams()
	for i, arg := range args {
		w.mustConvert(arg, params[i])
	}
}
