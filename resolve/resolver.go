package resolve

import (
	"keel/depm"
	"keel/report"
	"keel/typing"
	"sort"
)

// Resolver selects the member of a type that a name and an argument list
// denote.  Resolution is a pure function of the state of the universe and the
// entity graph: the resolver itself holds no state between calls.
type Resolver struct {
	uni *typing.Universe
	g   *depm.Graph
}

// NewResolver creates a new member resolver over the entity graph g.
func NewResolver(g *depm.Graph) *Resolver {
	return &Resolver{uni: g.Universe(), g: g}
}

// strategy is a single way of resolving a member.  A strategy that finds no
// member by the requested name returns a NameNotFound error so that the next
// strategy is tried; any other error ends resolution.
type strategy func() (*Candidate, error)

// firstOf runs strategies in order and returns the first candidate found.  If
// every strategy fails to find the member, the error of the first strategy is
// returned.
func firstOf(strategies ...strategy) (*Candidate, error) {
	var firstErr error
	for _, s := range strategies {
		cand, err := s()
		if err == nil {
			return cand, nil
		}

		if !report.IsKind(err, report.NameNotFound) {
			return nil, err
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	return nil, firstErr
}

// -----------------------------------------------------------------------------

// Member resolves a field or, if there is no field named name, a property of
// recv.  Static selects between static and instance members.
func (r *Resolver) Member(recv *typing.Type, name string, static bool, span *report.TextSpan) (*Candidate, error) {
	cand, err := firstOf(
		func() (*Candidate, error) { return r.Field(recv, name, static, span) },
		func() (*Candidate, error) { return r.Property(recv, name, static, span) },
	)

	if report.IsKind(err, report.NameNotFound) {
		return nil, report.Raise(report.NameNotFound, span, "`%s` has no %s field or property named `%s`", recv, memberScope(static), name)
	}

	return cand, err
}

// Field resolves a field of recv.
func (r *Resolver) Field(recv *typing.Type, name string, static bool, span *report.TextSpan) (*Candidate, error) {
	if recv.IsInProgress() {
		te := r.g.TypeOf(recv)
		if fe, ok := r.g.FindField(te, name); ok && fe.IsStatic == static {
			return &Candidate{
				Kind:        FieldMember,
				Name:        name,
				Owner:       recv,
				EntityField: fe,
				Type:        fe.Type,
				IsStatic:    fe.IsStatic,
			}, nil
		}
	} else {
		for t := recv; t != nil; t = r.uni.Base(t) {
			if t.Kind != typing.KindPlatform {
				continue
			}

			for _, fi := range t.Def.Fields {
				if fi.Name == name && fi.Static == static {
					return &Candidate{
						Kind:     FieldMember,
						Name:     name,
						Owner:    t,
						Field:    fi,
						Type:     r.uni.FieldType(t, fi),
						IsStatic: fi.Static,
					}, nil
				}
			}
		}
	}

	return nil, report.Raise(report.NameNotFound, span, "`%s` has no %s field named `%s`", recv, memberScope(static), name)
}

// Property resolves a property of recv.  In-progress types have no
// properties.
func (r *Resolver) Property(recv *typing.Type, name string, static bool, span *report.TextSpan) (*Candidate, error) {
	if !recv.IsInProgress() {
		for t := recv; t != nil; t = r.uni.Base(t) {
			if t.Kind != typing.KindPlatform {
				continue
			}

			for _, pi := range t.Def.Properties {
				if pi.Name == name && pi.Static == static {
					return &Candidate{
						Kind:     PropertyMember,
						Name:     name,
						Owner:    t,
						Property: pi,
						Type:     r.uni.PropertyType(t, pi),
						IsStatic: pi.Static,
					}, nil
				}
			}
		}
	}

	return nil, report.Raise(report.NameNotFound, span, "`%s` has no %s property named `%s`", recv, memberScope(static), name)
}

// Ctor resolves the constructor of typ accepting args.
func (r *Resolver) Ctor(typ *typing.Type, args []*typing.Type, span *report.TextSpan) (*Candidate, error) {
	var protos []*proto

	switch {
	case typ.IsInProgress():
		te := r.g.TypeOf(typ)
		if te.Kind == depm.TypeSum || te.Kind == depm.TypeScript {
			return nil, report.Raise(report.InvalidOperation, span, "`%s` cannot be constructed directly", typ)
		}

		for _, me := range r.g.Ctors(te) {
			protos = append(protos, r.entityProto(CtorMember, typ, me))
		}
	case typ.Kind == typing.KindPlatform:
		if typ.IsInterface() {
			return nil, report.Raise(report.InvalidOperation, span, "interface `%s` cannot be constructed", typ)
		}

		for _, mi := range typ.Def.Ctors {
			protos = append(protos, r.platformProto(CtorMember, typ, mi))
		}
	}

	if len(protos) == 0 {
		return nil, report.Raise(report.NameNotFound, span, "`%s` has no constructors", typ)
	}

	return r.selectBest(typing.CtorName, nil, protos, args, nil, span)
}

// Method resolves the method of recv named name accepting args.  Explicit
// generic arguments may be supplied with typeArgs.  Instance methods fall back
// to extension methods when no instance method is found.
func (r *Resolver) Method(recv *typing.Type, name string, static bool, args, typeArgs []*typing.Type, span *report.TextSpan) (*Candidate, error) {
	strategies := []strategy{
		func() (*Candidate, error) { return r.declaredMethod(recv, name, static, args, typeArgs, span) },
	}

	if !static {
		strategies = append(strategies, func() (*Candidate, error) {
			return r.Extension(recv, name, args, typeArgs, span)
		})
	}

	return firstOf(strategies...)
}

// Extension resolves an extension method named name whose receiver parameter
// accepts recv and whose remaining parameters accept args.
func (r *Resolver) Extension(recv *typing.Type, name string, args, typeArgs []*typing.Type, span *report.TextSpan) (*Candidate, error) {
	var protos []*proto
	for _, mi := range r.uni.ExtensionMethods(name) {
		p := r.platformProto(ExtensionMember, r.uni.PlatformType(mi.Owner), mi)
		p.recv = recv
		protos = append(protos, p)
	}

	if len(protos) == 0 {
		return nil, report.Raise(report.NameNotFound, span, "`%s` has no method named `%s`", recv, name)
	}

	return r.selectBest(name, recv, protos, args, typeArgs, span)
}

// MethodGroup resolves the method of recv named name without an argument
// list, as when a function is used as a value.  The method must not be
// overloaded.
func (r *Resolver) MethodGroup(recv *typing.Type, name string, static bool, span *report.TextSpan) (*Candidate, error) {
	var protos []*proto
	if recv.IsInProgress() {
		for _, me := range r.g.FindMethods(r.g.TypeOf(recv), name) {
			if me.IsStatic == static && !me.IsCtor {
				protos = append(protos, r.entityProto(MethodMember, recv, me))
			}
		}
	} else if recv.Kind == typing.KindPlatform {
		for _, mi := range recv.Def.Methods {
			if mi.Name == name && mi.Static == static && !mi.Extension {
				protos = append(protos, r.platformProto(MethodMember, recv, mi))
			}
		}
	}

	switch {
	case len(protos) == 0:
		return nil, report.Raise(report.NameNotFound, span, "`%s` has no %s method named `%s`", recv, memberScope(static), name)
	case len(protos) > 1:
		return nil, report.Raise(report.MemberAmbiguous, span, "`%s` is overloaded and cannot be used as a value", name)
	case len(protos[0].vars) > 0:
		return nil, report.Raise(report.GenericInferenceFailed, span, "generic method `%s` cannot be used as a value", name)
	}

	return protos[0].cand, nil
}

// declaredMethod resolves a method declared by recv or one of its parents.
func (r *Resolver) declaredMethod(recv *typing.Type, name string, static bool, args, typeArgs []*typing.Type, span *report.TextSpan) (*Candidate, error) {
	var protos []*proto

	if recv.IsInProgress() {
		// the metadata of in-progress types is incomplete: only the members
		// the entity declares itself are searched
		for _, me := range r.g.FindMethods(r.g.TypeOf(recv), name) {
			if me.IsStatic == static && !me.IsCtor {
				protos = append(protos, r.entityProto(MethodMember, recv, me))
			}
		}
	} else {
		for t := recv; t != nil; t = r.uni.Base(t) {
			if t.Kind != typing.KindPlatform {
				continue
			}

			for _, mi := range t.Def.Methods {
				if mi.Name != name || mi.Static != static || mi.Extension {
					continue
				}

				p := r.platformProto(MethodMember, t, mi)
				if !overridden(protos, p) {
					protos = append(protos, p)
				}
			}
		}
	}

	if len(protos) == 0 {
		return nil, report.Raise(report.NameNotFound, span, "`%s` has no %s method named `%s`", recv, memberScope(static), name)
	}

	return r.selectBest(name, recv, protos, args, typeArgs, span)
}

// overridden returns whether a method declared by a more derived type already
// collected in protos hides p.
func overridden(protos []*proto, p *proto) bool {
	for _, other := range protos {
		if len(other.vars) == len(p.vars) && sameTypes(other.cand.Params, p.cand.Params) {
			return true
		}
	}

	return false
}

func sameTypes(a, b []*typing.Type) bool {
	if len(a) != len(b) {
		return false
	}

	for i, t := range a {
		if t != b[i] {
			return false
		}
	}

	return true
}

func memberScope(static bool) string {
	if static {
		return "static"
	}

	return "instance"
}

// -----------------------------------------------------------------------------

// proto is an invocable member before it is ranked.  Its parameter types may
// mention the member's own type variables.
type proto struct {
	cand *Candidate
	vars []*typing.Type

	// recv is the receiver of an extension method.
	recv *typing.Type
}

func (r *Resolver) entityProto(kind MemberKind, owner *typing.Type, me *depm.MethodEntity) *proto {
	if me.Phase == depm.PhaseDeclared {
		panic(report.ICE("method `%s` resolved before it was prepared", me.Name))
	}

	return &proto{cand: &Candidate{
		Kind:         kind,
		Name:         me.Name,
		Owner:        owner,
		EntityMethod: me,
		Params:       me.ArgTypes(),
		Type:         me.ReturnType,
		IsStatic:     me.IsStatic,
		IsVirtual:    me.IsVirtual,
	}}
}

func (r *Resolver) platformProto(kind MemberKind, owner *typing.Type, mi *typing.MethodInfo) *proto {
	sig := r.uni.MethodSignature(owner, mi)
	return &proto{
		cand: &Candidate{
			Kind:      kind,
			Name:      mi.Name,
			Owner:     owner,
			Method:    mi,
			Params:    sig.Params,
			Type:      sig.Returns,
			IsStatic:  mi.Static,
			IsVirtual: mi.Virtual,
		},
		vars: sig.TypeParams,
	}
}

// explicitParams returns the parameters matched against the call arguments.
func (p *proto) explicitParams() []*typing.Type {
	if p.cand.Kind == ExtensionMember {
		return p.cand.Params[1:]
	}

	return p.cand.Params
}

// -----------------------------------------------------------------------------

type ranked struct {
	p    *proto
	dist int
}

// selectBest ranks the candidates by their total argument distance and
// selects the unique closest one.  Candidates tied for the smallest distance
// make the resolution ambiguous regardless of the order they were declared in.
func (r *Resolver) selectBest(name string, recv *typing.Type, protos []*proto, args, typeArgs []*typing.Type, span *report.TextSpan) (*Candidate, error) {
	var viable []ranked
	arityMatches := 0

	for _, p := range protos {
		if len(typeArgs) > 0 {
			if len(p.vars) != len(typeArgs) {
				continue
			}

			p = r.applyTypeArgs(p, typeArgs)
		}

		arityMatches++
		if dist := r.rank(p, args); dist != typing.Incompatible {
			viable = append(viable, ranked{p: p, dist: dist})
		}
	}

	if arityMatches == 0 {
		return nil, report.Raise(
			report.GenericInferenceFailed,
			span,
			"no overload of `%s` takes %d type arguments",
			name,
			len(typeArgs),
		)
	}

	if len(viable) == 0 {
		return nil, report.Raise(
			report.NameNotFound,
			span,
			"no overload of `%s` accepts arguments %s",
			name,
			formatTypes("(", args, ")"),
		)
	}

	var best []ranked
	for _, rk := range viable {
		if len(best) == 0 || rk.dist < best[0].dist {
			best = []ranked{rk}
		} else if rk.dist == best[0].dist {
			best = append(best, rk)
		}
	}

	if len(best) > 1 {
		names := make([]string, len(best))
		for i, rk := range best {
			names[i] = rk.p.cand.String()
		}

		sort.Strings(names)
		return nil, report.Raise(
			report.MemberAmbiguous,
			span,
			"call to `%s` is ambiguous: `%s` and `%s` match equally well",
			name,
			names[0],
			names[1],
		)
	}

	winner := best[0]
	if len(winner.p.vars) > 0 {
		return r.infer(name, winner.p, args, span)
	}

	cand := *winner.p.cand
	cand.Distance = winner.dist
	return &cand, nil
}

// rank computes the total distance of passing args to the parameters of p.
// Arity mismatches and incompatible arguments are Incompatible.  The receiver
// of an extension method must be compatible but does not count towards the
// total.
func (r *Resolver) rank(p *proto, args []*typing.Type) int {
	params := p.explicitParams()
	if len(params) != len(args) {
		return typing.Incompatible
	}

	if p.cand.Kind == ExtensionMember && r.matchCost(p.cand.Params[0], p.recv, p.vars) == typing.Incompatible {
		return typing.Incompatible
	}

	total := 0
	for i, param := range params {
		cost := r.matchCost(param, args[i], p.vars)
		if cost == typing.Incompatible {
			return typing.Incompatible
		}

		total += cost
	}

	return total
}
