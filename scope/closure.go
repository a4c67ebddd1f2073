package scope

import (
	"fmt"
	"keel/common"
	"keel/report"
)

// capture converts l so it can be reached from the scope from in a nested
// frame: l is moved into a field of the carrier of its home scope and every
// carrier between the frame of from and the home scope is linked to its
// enclosing carrier.
func (t *Tree) capture(l *Local, from *Scope, span *report.TextSpan) {
	switch {
	case l.IsImplicit:
		panic(report.ICE("implicit local `%s` referenced across a closure boundary", l.Name))
	case l.IsByRef:
		panic(report.Raise(report.ClosureViolation, span, "by-reference argument `%s` cannot be captured by a closure", l.Name))
	case l.Owner.finalized:
		panic(report.ICE("local `%s` captured after its scope was finalized", l.Name))
	}

	home := carrierScope(l.Owner)
	t.markClosured(l, home)

	// link every carrier from the scope enclosing the innermost lambda up to
	// the home scope: the lambda reaches l through this chain
	for s := carrierScope(from.Frame.Root.Outer); s != home; s = carrierScope(s.Outer) {
		if s == nil {
			panic(report.ICE("home scope of `%s` is not an ancestor of its reference", l.Name))
		}

		t.linkParent(t.ensureCarrier(s))
	}

	for f := from.Frame; f != home.Frame; f = f.Outer {
		f.captures = true
	}
}

// markClosured marks l closured and moves it into a field of the carrier of
// its home scope.  Marking a closured local again has no effect.
func (t *Tree) markClosured(l *Local, home *Scope) {
	if l.closured {
		return
	}

	c := t.ensureCarrier(home)

	// sibling blocks of the home scope may declare locals of the same name
	name := common.CarrierFieldName(l.Name)
	for n := 1; ; n++ {
		if _, ok := t.g.FindField(c.Entity, name); !ok {
			break
		}

		name = common.CarrierFieldName(fmt.Sprintf("%s%d", l.Name, n))
	}

	field := t.g.AddPreparedField(c.Entity, name, l.Type, l.Span)

	l.closured = true
	l.decide(Storage{Kind: FieldStorage, Carrier: c, Field: field})
}

// ensureCarrier returns the carrier of the closure-bearing scope s, creating
// it if it does not exist yet.
func (t *Tree) ensureCarrier(s *Scope) *Carrier {
	if s.carrier != nil {
		return s.carrier
	}

	if s.finalized {
		panic(report.ICE("carrier created for a finalized scope"))
	}

	te := t.g.CreateCarrier(t.names.CarrierTypeName(), s.Span)
	s.carrier = &Carrier{Entity: te, Scope: s, Slot: -1}
	return s.carrier
}

// linkParent adds the parent field to c linking it to the carrier of the
// nearest enclosing closure-bearing scope.
func (t *Tree) linkParent(c *Carrier) {
	if c.Parent != nil {
		return
	}

	outer := carrierScope(c.Scope.Outer)
	if outer == nil {
		panic(report.ICE("carrier of a root scope cannot have a parent"))
	}

	parent := t.ensureCarrier(outer)
	c.Parent = parent
	c.ParentField = t.g.AddPreparedField(c.Entity, common.ParentFieldName, parent.Entity.Type, c.Scope.Span)
	c.Entity.ParentCarrier = parent.Entity.ID
}

// finalize commits the closure decisions of s: every local that is not
// closured is given a slot (or keeps its argument) and the carrier of s, if
// any, is given the slot holding its live instance.
func (t *Tree) finalize(s *Scope) {
	if s.finalized {
		panic(report.ICE("scope finalized twice"))
	}

	for _, l := range s.order {
		if l.storage.Kind != Undecided {
			continue
		}

		if l.IsArg() {
			l.decide(Storage{Kind: ArgStorage, Index: l.ArgIndex})
		} else {
			l.decide(Storage{Kind: SlotStorage, Index: s.Frame.allocSlot(l.Type)})
		}
	}

	if s.carrier != nil {
		s.carrier.Slot = s.Frame.allocSlot(s.carrier.Entity.Type)
	}

	s.finalized = true
}
