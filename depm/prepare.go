package depm

import (
	"keel/report"
	"keel/typing"
	"strings"
)

// itemKind enumerates the kinds of preparation work.
type itemKind int

const (
	itemType itemKind = iota
	itemField
	itemMethod
	itemLayout
)

// workItem is a single entry of the preparation worklist.
type workItem struct {
	kind   itemKind
	typ    *TypeEntity
	field  *FieldEntity
	method *MethodEntity

	// attempts counts the failed attempts to prepare the item.
	attempts int

	// waitingOn is the type the item was last blocked on.
	waitingOn *TypeEntity
}

func (wi *workItem) span() *report.TextSpan {
	switch wi.kind {
	case itemField:
		return wi.field.Span
	case itemMethod:
		return wi.method.Span
	default:
		return wi.typ.Span
	}
}

// removeWorkItems removes all work items matching pred from the worklist.
func (g *Graph) removeWorkItems(pred func(*workItem) bool) {
	n := 0
	for _, item := range g.unprepared {
		if !pred(item) {
			g.unprepared[n] = item
			n++
		}
	}

	g.unprepared = g.unprepared[:n]
}

// -----------------------------------------------------------------------------

// PrepareAll repeatedly prepares every entity on the worklist whose
// dependencies are resolvable until the worklist is empty.  Resolution errors
// abort preparation immediately.  A full pass over the worklist that makes no
// progress, or an entity that fails more often than the attempt bound, means
// the remaining entities depend on each other cyclically.
func (g *Graph) PrepareAll() (err error) {
	defer report.CatchErrors(&err)

	// an acyclic graph removes at least one item per pass so no item can fail
	// more often than there are items
	bound := g.maxAttempts
	if len(g.unprepared) > bound {
		bound = len(g.unprepared)
	}

	for len(g.unprepared) > 0 {
		progress := false

		var pending []*workItem
		for _, item := range g.unprepared {
			if g.prepareItem(item) {
				progress = true
				continue
			}

			item.attempts++
			if item.attempts > bound {
				panic(g.cycleError(item))
			}

			pending = append(pending, item)
		}

		if !progress {
			panic(g.cycleError(pending[0]))
		}

		g.unprepared = pending
	}

	g.checkDuplicateMethods()
	return nil
}

// prepareItem attempts to prepare a single work item.  It returns false if
// the item depends on an entity which is not yet prepared.
func (g *Graph) prepareItem(item *workItem) bool {
	switch item.kind {
	case itemType:
		g.prepareType(item.typ)
	case itemField:
		g.prepareField(item.field)
	case itemMethod:
		g.prepareMethod(item.method)
	case itemLayout:
		if blocker := g.layoutBlocker(item.typ); blocker != nil {
			item.waitingOn = blocker
			return false
		}

		item.typ.laidOut = true
	}

	return true
}

// prepareType resolves the parent of a type entity.
func (g *Graph) prepareType(te *TypeEntity) {
	parent := g.uni.Builtin("object")
	if te.ParentSig != "" {
		parent = g.resolve(te.ParentSig, te.Span)

		if parent.IsValue || parent.IsInterface() || parent.IsSealed || (parent.Kind == typing.KindPlatform && parent.Def.IsSealed) {
			panic(report.Raise(report.InvalidOperation, te.Span, "type `%s` cannot derive from `%s`", te.Name, parent))
		}
	}

	te.Parent = parent
	te.Type.SetBase(parent)
	te.Phase = PhasePrepared
}

// prepareField resolves the type of a field entity.
func (g *Graph) prepareField(fe *FieldEntity) {
	typ := g.resolve(fe.TypeSig, fe.Span)
	if typ == g.uni.Builtin("unit") {
		panic(report.Raise(report.TypeMismatch, fe.Span, "field `%s` cannot have type unit", fe.Name))
	}

	fe.Type = typ
	fe.Phase = PhasePrepared
}

// prepareMethod resolves the argument and return types of a method entity.
func (g *Graph) prepareMethod(me *MethodEntity) {
	for _, arg := range me.Args {
		typ := g.resolve(arg.TypeSig, arg.Span)
		if typ == g.uni.Builtin("unit") {
			panic(report.Raise(report.TypeMismatch, arg.Span, "argument `%s` cannot have type unit", arg.Name))
		}

		if arg.ByRef {
			typ = g.uni.RefTo(typ)
		}

		arg.Type = typ
	}

	if me.IsCtor {
		me.ReturnType = g.uni.Builtin("unit")
	} else if me.ReturnSig == "" {
		me.ReturnType = g.uni.Builtin("unit")
	} else {
		me.ReturnType = g.resolve(me.ReturnSig, me.Span)
	}

	me.Phase = PhasePrepared
}

// layoutBlocker returns the value type whose layout must be known before the
// layout of te, or nil if te can be laid out.  Value types are stored inline
// so a value type containing itself, directly or through other value types,
// can never be laid out.  Arrays and reference types are indirections.
func (g *Graph) layoutBlocker(te *TypeEntity) *TypeEntity {
	for _, id := range te.Fields {
		fe := g.fields[id]
		if fe.Phase == PhaseDeclared {
			// the field is prepared later in this pass
			return te
		} else if fe.IsStatic {
			continue
		}

		for _, dep := range g.inlineEntities(fe.Type) {
			if !dep.laidOut {
				return dep
			}
		}
	}

	return nil
}

// inlineEntities returns the in-progress value types stored inline in a
// value of type t.
func (g *Graph) inlineEntities(t *typing.Type) []*TypeEntity {
	switch t.Kind {
	case typing.KindInProgress:
		if t.IsValue {
			return []*TypeEntity{g.types[t.Entity]}
		}
	case typing.KindPlatform:
		if t.IsValue {
			var deps []*TypeEntity
			for _, arg := range t.Args {
				deps = append(deps, g.inlineEntities(arg)...)
			}

			return deps
		}
	}

	return nil
}

// cycleError builds the error for a worklist that cannot make progress by
// following the chain of blocked items starting from item.
func (g *Graph) cycleError(item *workItem) *report.CompileError {
	if item.waitingOn == nil {
		return report.Raise(report.CyclicDeclaration, item.span(), "preparation of a declaration never completed")
	}

	waiting := make(map[*TypeEntity]*TypeEntity)
	for _, other := range g.unprepared {
		if other.kind == itemLayout && other.waitingOn != nil {
			waiting[other.typ] = other.waitingOn
		}
	}

	// walk the chain until a type repeats: the repeating suffix is the cycle
	var chain []*TypeEntity
	seen := make(map[*TypeEntity]int)
	for te := item.typ; te != nil; te = waiting[te] {
		if start, ok := seen[te]; ok {
			chain = append(chain[start:], te)
			break
		}

		seen[te] = len(chain)
		chain = append(chain, te)
	}

	names := make([]string, len(chain))
	for i, te := range chain {
		names[i] = te.Name
	}

	return report.Raise(
		report.CyclicDeclaration,
		chain[0].Span,
		"cyclic declaration: `%s` can never be laid out (%s)",
		chain[0].Name,
		strings.Join(names, " -> "),
	)
}

// checkDuplicateMethods checks that no two methods of a type share a name and
// argument types.
func (g *Graph) checkDuplicateMethods() {
	for _, te := range g.types {
		for i, id := range te.Methods {
			me := g.methods[id]

			for _, otherID := range te.Methods[:i] {
				other := g.methods[otherID]
				if other.Name == me.Name && sameArgTypes(other, me) {
					panic(report.Raise(
						report.NameAlreadyDeclared,
						me.Span,
						"function `%s` with the same argument types is already declared",
						me.Name,
					))
				}
			}
		}
	}
}

func sameArgTypes(a, b *MethodEntity) bool {
	if len(a.Args) != len(b.Args) {
		return false
	}

	for i, arg := range a.Args {
		if arg.Type != b.Args[i].Type {
			return false
		}
	}

	return true
}

// resolve resolves a type signature and raises resolution errors.
func (g *Graph) resolve(sig string, span *report.TextSpan) *typing.Type {
	typ, err := g.uni.Resolve(sig, span)
	if err != nil {
		panic(err)
	}

	return typ
}
