package resolve

import (
	"keel/report"
	"keel/typing"
)

// WildcardDistance is the cost of passing an argument to a parameter that is a
// naked type variable.  It makes a generic method rank behind a non-generic
// overload that accepts the argument exactly.
const WildcardDistance = 1

// applyTypeArgs substitutes explicit generic arguments for the type variables
// of p.
func (r *Resolver) applyTypeArgs(p *proto, typeArgs []*typing.Type) *proto {
	subs := make(map[*typing.Type]*typing.Type, len(p.vars))
	for i, v := range p.vars {
		subs[v] = typeArgs[i]
	}

	cand := *p.cand
	cand.Params = r.substituteAll(cand.Params, subs)
	cand.Type = r.uni.Substitute(cand.Type, subs)
	cand.GenericArgs = typeArgs
	return &proto{cand: &cand, recv: p.recv}
}

func (r *Resolver) substituteAll(types []*typing.Type, subs map[*typing.Type]*typing.Type) []*typing.Type {
	result := make([]*typing.Type, len(types))
	for i, t := range types {
		result[i] = r.uni.Substitute(t, subs)
	}

	return result
}

// mentionsVars returns whether t mentions any of the type variables vars.
func mentionsVars(t *typing.Type, vars []*typing.Type) bool {
	switch t.Kind {
	case typing.KindTypeParam:
		for _, v := range vars {
			if v == t {
				return true
			}
		}
	case typing.KindArray, typing.KindRef:
		return mentionsVars(t.Elem, vars)
	case typing.KindPlatform:
		for _, arg := range t.Args {
			if mentionsVars(arg, vars) {
				return true
			}
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// matchCost is the distance of passing an argument of type arg to a parameter
// of type param which may mention the type variables vars.  Type variables act
// as wildcards: a parameter mentioning them matches structurally.
func (r *Resolver) matchCost(param, arg *typing.Type, vars []*typing.Type) int {
	if !mentionsVars(param, vars) {
		return r.uni.Distance(param, arg)
	}

	if arg == r.uni.Builtin("unit") || (arg.Kind == typing.KindRef) != (param.Kind == typing.KindRef) {
		return typing.Incompatible
	}

	switch param.Kind {
	case typing.KindTypeParam:
		return WildcardDistance
	case typing.KindArray:
		if arg.Kind == typing.KindNull {
			return typing.NullDistance
		} else if arg.Kind == typing.KindArray {
			return r.matchInvariant(param.Elem, arg.Elem, vars)
		}
	case typing.KindRef:
		return r.matchInvariant(param.Elem, arg.Elem, vars)
	case typing.KindPlatform:
		if arg.Kind == typing.KindNull {
			if !param.IsValue {
				return typing.NullDistance
			}

			return typing.Incompatible
		}

		inst := r.findInstance(arg, param.Def)
		if inst == nil {
			return typing.Incompatible
		}

		total := 0
		if inst != arg {
			total = r.uni.Distance(inst, arg)
		}

		for i, pa := range param.Args {
			cost := r.matchInvariant(pa, inst.Args[i], vars)
			if cost == typing.Incompatible {
				return typing.Incompatible
			}

			total += cost
		}

		return total
	}

	return typing.Incompatible
}

// matchInvariant matches a type argument position: the argument must have the
// exact structure of the parameter.
func (r *Resolver) matchInvariant(param, arg *typing.Type, vars []*typing.Type) int {
	if !mentionsVars(param, vars) {
		if param == arg {
			return 0
		}

		return typing.Incompatible
	}

	switch param.Kind {
	case typing.KindTypeParam:
		if arg.Kind == typing.KindRef || arg.Kind == typing.KindNull {
			return typing.Incompatible
		}

		return WildcardDistance
	case typing.KindArray, typing.KindRef:
		if arg.Kind == param.Kind {
			return r.matchInvariant(param.Elem, arg.Elem, vars)
		}
	case typing.KindPlatform:
		if arg.Kind == typing.KindPlatform && arg.Def == param.Def {
			total := 0
			for i, pa := range param.Args {
				cost := r.matchInvariant(pa, arg.Args[i], vars)
				if cost == typing.Incompatible {
					return typing.Incompatible
				}

				total += cost
			}

			return total
		}
	}

	return typing.Incompatible
}

// findInstance finds the instantiation of the generic definition def that t
// is or derives from or implements.
func (r *Resolver) findInstance(t *typing.Type, def *typing.PlatformType) *typing.Type {
	for bt := t; bt != nil; bt = r.uni.Base(bt) {
		if bt.Kind == typing.KindPlatform && bt.Def == def {
			return bt
		}
	}

	for _, iface := range r.uni.Interfaces(t) {
		if iface.Def == def {
			return iface
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// infer binds the type variables of the selected generic candidate by
// unifying its parameters with the arguments and instantiates the candidate.
func (r *Resolver) infer(name string, p *proto, args []*typing.Type, span *report.TextSpan) (*Candidate, error) {
	bindings := make(map[*typing.Type]*typing.Type)

	params, actual := p.explicitParams(), args
	if p.cand.Kind == ExtensionMember {
		params, actual = p.cand.Params, append([]*typing.Type{p.recv}, args...)
	}

	for i, param := range params {
		if v, a, b, ok := r.unify(param, actual[i], p.vars, bindings); !ok {
			return nil, report.Raise(
				report.GenericInferenceFailed,
				span,
				"type parameter `%s` of `%s` is inferred as both `%s` and `%s`",
				v, name, a, b,
			)
		}
	}

	genericArgs := make([]*typing.Type, len(p.vars))
	for i, v := range p.vars {
		bound, ok := bindings[v]
		if !ok {
			return nil, report.Raise(
				report.GenericInferenceFailed,
				span,
				"cannot infer type parameter `%s` of `%s` from its arguments",
				v, name,
			)
		}

		genericArgs[i] = bound
	}

	cand := *p.cand
	cand.Params = r.substituteAll(cand.Params, bindings)
	cand.Type = r.uni.Substitute(cand.Type, bindings)
	cand.GenericArgs = genericArgs

	total := 0
	for i, param := range cand.Params {
		dist := r.uni.Distance(param, actual[i])
		if dist == typing.Incompatible {
			return nil, report.Raise(
				report.GenericInferenceFailed,
				span,
				"`%s` inferred as %s does not accept an argument of type `%s`",
				name, cand.String(), actual[i],
			)
		}

		if cand.Kind != ExtensionMember || i > 0 {
			total += dist
		}
	}

	cand.Distance = total
	return &cand, nil
}

// unify binds the type variables in param to the corresponding parts of arg.
// It returns false along with the variable and its two bindings if a variable
// is bound to two different types.
func (r *Resolver) unify(param, arg *typing.Type, vars []*typing.Type, bindings map[*typing.Type]*typing.Type) (*typing.Type, *typing.Type, *typing.Type, bool) {
	if !mentionsVars(param, vars) || arg.Kind == typing.KindNull {
		return nil, nil, nil, true
	}

	switch param.Kind {
	case typing.KindTypeParam:
		if bound, ok := bindings[param]; ok && bound != arg {
			return param, bound, arg, false
		}

		bindings[param] = arg
	case typing.KindArray, typing.KindRef:
		if arg.Kind == param.Kind {
			return r.unify(param.Elem, arg.Elem, vars, bindings)
		}
	case typing.KindPlatform:
		if inst := r.findInstance(arg, param.Def); inst != nil {
			for i, pa := range param.Args {
				if v, a, b, ok := r.unify(pa, inst.Args[i], vars, bindings); !ok {
					return v, a, b, false
				}
			}
		}
	}

	return nil, nil, nil, true
}
