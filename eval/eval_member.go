package eval

import (
	"keel/ast"
	"keel/report"
	"keel/resolve"
)

func (e *Evaluator) evalArgs(act *activation, args []ast.Expr) []Value {
	vals := make([]Value, len(args))
	for i, arg := range args {
		vals[i] = e.eval(act, arg)
	}

	return vals
}

// evalCall evaluates a call to a free function or the invocation of a
// delegate value.
func (e *Evaluator) evalCall(act *activation, c *ast.Call) Value {
	cand := e.res.Members[c]
	if cand.EntityMethod != nil {
		return e.invoke(cand.EntityMethod, nil, e.evalArgs(act, c.Args))
	}

	d, _ := e.eval(act, c.Func).(*Delegate)
	return e.callDelegate(d, e.evalArgs(act, c.Args), c.Span())
}

func (e *Evaluator) evalMemberAccess(act *activation, ma *ast.MemberAccess) Value {
	cand := e.res.Members[ma]

	var recv Value
	if ma.Target != nil {
		recv = e.eval(act, ma.Target)
		if recv == nil && !e.uni.IsNullable(cand.Owner) {
			throw(ma.Span(), "reading `%s` of null", ma.Name)
		}
	}

	switch {
	case cand.EntityField != nil:
		return recv.(*Object).Fields[cand.EntityField.Name]
	case cand.Field != nil:
		return e.loadPlatformField(cand, recv)
	default:
		return e.callIntrinsic(cand, recv, nil, ma.Span())
	}
}

func (e *Evaluator) loadPlatformField(cand *resolve.Candidate, recv Value) Value {
	switch {
	case cand.Field.Literal:
		return convert(cand.Field.Value, cand.Type)
	case cand.Field.Static:
		if v, ok := e.statics[cand.Field]; ok {
			return v
		}

		return e.zeroValue(cand.Type)
	}

	if v, ok := recv.(*Object).Fields[cand.Field.Name]; ok {
		return v
	}

	return e.zeroValue(cand.Type)
}

func (e *Evaluator) evalMemberAssign(act *activation, ma *ast.MemberAssign) {
	cand := e.res.Members[ma]

	var recv Value
	if ma.Target != nil {
		recv = e.eval(act, ma.Target)
		if recv == nil {
			throw(ma.Span(), "assigning `%s` of null", ma.Name)
		}
	}

	v := e.eval(act, ma.Value)

	switch {
	case cand.Field != nil && cand.Field.Static:
		e.statics[cand.Field] = v
	case cand.Field != nil:
		recv.(*Object).set(cand.Field.Name, v)
	default:
		e.callIntrinsic(cand, recv, []Value{v}, ma.Span())
	}
}

func (e *Evaluator) evalMemberCall(act *activation, mc *ast.MemberCall) Value {
	cand := e.res.Members[mc]

	var recv Value
	if mc.Target != nil {
		recv = e.eval(act, mc.Target)
	}

	args := e.evalArgs(act, mc.Args)
	switch {
	case cand.Kind == resolve.ExtensionMember:
		return e.callIntrinsic(cand, nil, append([]Value{recv}, args...), mc.Span())
	case cand.EntityMethod != nil:
		obj, _ := recv.(*Object)
		return e.invoke(cand.EntityMethod, obj, args)
	case !cand.IsStatic && recv == nil && !e.uni.IsNullable(cand.Owner):
		throw(mc.Span(), "calling `%s` on null", mc.Name)
	}

	return e.callIntrinsic(cand, recv, args, mc.Span())
}

func (e *Evaluator) evalNew(act *activation, ne *ast.NewExpr) Value {
	cand := e.res.Members[ne]
	args := e.evalArgs(act, ne.Args)

	if cand.EntityMethod != nil {
		return e.construct(cand.EntityMethod, args)
	}

	if cand.Intrinsic() == "" {
		return newObject(cand.Owner)
	}

	return e.callIntrinsic(cand, nil, args, ne.Span())
}

// callIntrinsic runs the native implementation of a platform member.
func (e *Evaluator) callIntrinsic(cand *resolve.Candidate, recv Value, args []Value, span *report.TextSpan) Value {
	name := cand.Intrinsic()
	fn, ok := intrinsics[name]
	if !ok {
		throw(span, "`%s.%s` has no implementation", cand.Owner, cand.Name)
	}

	return fn(&call{e: e, cand: cand, recv: recv, args: args, span: span})
}
