package scope

import (
	"keel/ast"
	"keel/depm"
	"keel/report"
)

// StepKind enumerates the steps of an access path.
type StepKind int

// Enumeration of access path steps.
const (
	// StepSlot loads the slot Index of the current frame.
	StepSlot StepKind = iota

	// StepArg loads the argument Index of the current frame's method.
	StepArg

	// StepThis loads the carrier the current frame's method belongs to.
	StepThis

	// StepField loads Field of the carrier loaded by the previous step.
	StepField

	// StepConstant yields Value.
	StepConstant
)

// Step is a single step of an access path.
type Step struct {
	Kind  StepKind
	Index int
	Field *depm.FieldEntity
	Value *ast.Literal
}

// Access is a resolved read or write of a local from a scope.  Its path is
// computed from the committed storage decisions so it must only be requested
// once every scope of the method has been finalized.  Distance is the number
// of scope boundaries crossed from From to the scope declaring the local.
type Access struct {
	Local    *Local
	From     *Scope
	Distance int
}

// Path returns the steps locating the local from the accessing scope: a slot
// or argument of the current frame, a constant, or a field of a carrier
// reached through the chain of parent carriers.  The last step locates the
// local itself: it is the step that is written when the local is assigned.
func (a *Access) Path() []Step {
	storage := a.Local.storage

	switch storage.Kind {
	case ConstantStorage:
		return []Step{{Kind: StepConstant, Value: storage.Value}}
	case SlotStorage:
		a.requireSameFrame()
		return []Step{{Kind: StepSlot, Index: storage.Index}}
	case ArgStorage:
		a.requireSameFrame()
		return []Step{{Kind: StepArg, Index: storage.Index}}
	case FieldStorage:
		path := CarrierPath(a.From, storage.Carrier)
		return append(path, Step{Kind: StepField, Field: storage.Field})
	default:
		panic(report.ICE("access to local `%s` before its storage was decided", a.Local.Name))
	}
}

func (a *Access) requireSameFrame() {
	if a.From.Frame != a.Local.Owner.Frame {
		panic(report.ICE("local `%s` accessed from another frame without being closured", a.Local.Name))
	}
}

// CarrierPath returns the steps loading the live instance of carrier c from
// the scope from.  Within the frame of c's scope, the instance is in a slot.
// From a nested frame, the path starts at the frame's own carrier and follows
// one parent field per enclosing closure-bearing scope.
func CarrierPath(from *Scope, c *Carrier) []Step {
	if from.Frame == c.Scope.Frame {
		if c.Slot < 0 {
			panic(report.ICE("carrier `%s` accessed before its scope was finalized", c.Entity.Name))
		}

		return []Step{{Kind: StepSlot, Index: c.Slot}}
	}

	this := from.Frame.This()
	if this == nil {
		panic(report.ICE("carrier `%s` accessed from a frame that does not capture", c.Entity.Name))
	}

	path := []Step{{Kind: StepThis}}
	for cur := this; cur != c; cur = cur.Parent {
		if cur.Parent == nil {
			panic(report.ICE("carrier `%s` is not linked to `%s`", this.Entity.Name, c.Entity.Name))
		}

		path = append(path, Step{Kind: StepField, Field: cur.ParentField})
	}

	return path
}

// ParentPath returns the steps loading the instance that the parent field of
// c is populated with when c is instantiated.  It is nil for carriers without
// a parent.
func (c *Carrier) ParentPath() []Step {
	if c.Parent == nil {
		return nil
	}

	return CarrierPath(c.Scope, c.Parent)
}

// TargetPath returns the steps loading the carrier instance a capturing
// lambda's delegate is bound to, from the scope enclosing the lambda.  It is
// nil for lambdas that do not capture.
func (f *Frame) TargetPath() []Step {
	this := f.This()
	if this == nil {
		return nil
	}

	return CarrierPath(f.Root.Outer, this)
}
