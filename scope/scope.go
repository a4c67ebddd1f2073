package scope

import (
	"keel/ast"
	"keel/depm"
	"keel/report"
	"keel/typing"
)

// Kind enumerates the kinds of lexical scopes.
type Kind int

// Enumeration of scope kinds.
const (
	// Block scopes are plain lexical blocks.
	Block Kind = iota

	// Loop scopes are loop bodies.  They are entered anew on every iteration
	// so that closures created in different iterations capture different
	// variables.
	Loop

	// LambdaRoot scopes are the bodies of lambdas: each begins a new frame.
	LambdaRoot

	// FunctionRoot scopes are the bodies of top level methods.
	FunctionRoot
)

func (k Kind) String() string {
	switch k {
	case Block:
		return "block"
	case Loop:
		return "loop"
	case LambdaRoot:
		return "lambda"
	default:
		return "function"
	}
}

// bearsClosures returns whether scopes of kind k can own a closure carrier.
func (k Kind) bearsClosures() bool {
	return k != Block
}

// Scope is a lexical scope owning the locals declared directly within it.  A
// scope does not own its outer scope: the outer scope outlives every scope
// created while resolving its body.
type Scope struct {
	Kind  Kind
	Outer *Scope
	Frame *Frame
	Span  *report.TextSpan

	locals map[string]*Local
	order  []*Local

	carrier   *Carrier
	finalized bool
}

func newScope(kind Kind, outer *Scope, frame *Frame, span *report.TextSpan) *Scope {
	return &Scope{
		Kind:   kind,
		Outer:  outer,
		Frame:  frame,
		Span:   span,
		locals: make(map[string]*Local),
	}
}

// Locals returns the locals of the scope in declaration order.
func (s *Scope) Locals() []*Local {
	return s.order
}

// Carrier returns the closure carrier of the scope or nil if the scope has
// none.
func (s *Scope) Carrier() *Carrier {
	return s.carrier
}

// Finalized returns whether the closure decisions of the scope are committed.
func (s *Scope) Finalized() bool {
	return s.finalized
}

// carrierScope returns the nearest closure-bearing scope starting from s.
func carrierScope(s *Scope) *Scope {
	for ; s != nil; s = s.Outer {
		if s.Kind.bearsClosures() {
			return s
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// StorageKind enumerates the places a local can be stored.
type StorageKind int

// Enumeration of storage kinds.
const (
	// Undecided storage is the storage of a local whose scope has not been
	// finalized yet and which has not been closured.
	Undecided StorageKind = iota

	// SlotStorage stores the local in a slot of its frame.
	SlotStorage

	// ArgStorage stores the local in an argument of its frame's method.
	ArgStorage

	// FieldStorage stores the local in a field of the carrier of its home
	// scope.
	FieldStorage

	// ConstantStorage locals are never stored: their value is
	// rematerialized at each use.
	ConstantStorage
)

// Storage is the storage location of a local.
type Storage struct {
	Kind StorageKind

	// Index is the slot index for SlotStorage and the argument index for
	// ArgStorage.
	Index int

	// Carrier and Field locate FieldStorage.
	Carrier *Carrier
	Field   *depm.FieldEntity

	// Value is the value of ConstantStorage.
	Value *ast.Literal
}

// Local is a local variable or argument declared in a scope.
type Local struct {
	Name  string
	Type  *typing.Type
	Span  *report.TextSpan
	Owner *Scope

	// IsConst locals are immutable after their definition.
	IsConst bool

	// IsByRef locals are by-reference arguments.
	IsByRef bool

	// IsImplicit locals are compiler generated temporaries.
	IsImplicit bool

	// ArgIndex is the index of the argument the local binds or -1 for locals
	// that are not arguments.
	ArgIndex int

	closured bool
	storage  Storage
}

// IsClosured returns whether the local is captured by a closure.  Once a local
// is closured, it stays closured.
func (l *Local) IsClosured() bool {
	return l.closured
}

// Storage returns the storage location of the local.
func (l *Local) Storage() Storage {
	return l.storage
}

// IsArg returns whether the local binds an argument.
func (l *Local) IsArg() bool {
	return l.ArgIndex >= 0
}

// decide commits the storage of the local.  Storage is decided exactly once.
func (l *Local) decide(storage Storage) {
	if l.storage.Kind != Undecided {
		panic(report.ICE("storage of local `%s` decided twice", l.Name))
	}

	l.storage = storage
}

// -----------------------------------------------------------------------------

// Frame is the activation of a single method: a function body or a lambda
// body.  Locals that are not closured are allocated slots in their frame.
type Frame struct {
	Root  *Scope
	Outer *Frame

	// Method is the method the frame's body compiles to.  For lambdas, it is
	// created when the lambda is exited.
	Method *depm.MethodEntity

	// Slots holds the type of each allocated slot.
	Slots []*typing.Type

	// captures indicates that the lambda of this frame reaches locals of an
	// enclosing frame: it compiles to an instance method of the carrier of
	// its enclosing closure-bearing scope.
	captures bool
}

// Captures returns whether the frame's lambda captures outer locals.
func (f *Frame) Captures() bool {
	return f.captures
}

// This returns the carrier the lambda of a capturing frame is a method of.
// It is nil for frames that do not capture.
func (f *Frame) This() *Carrier {
	if !f.captures {
		return nil
	}

	return carrierScope(f.Root.Outer).carrier
}

func (f *Frame) allocSlot(typ *typing.Type) int {
	f.Slots = append(f.Slots, typ)
	return len(f.Slots) - 1
}

// -----------------------------------------------------------------------------

// Carrier is a synthesized type holding the closured locals of a
// closure-bearing scope as fields.
type Carrier struct {
	Entity *depm.TypeEntity
	Scope  *Scope

	// Parent is the carrier of the nearest enclosing closure-bearing scope
	// that this carrier links to through ParentField.
	Parent      *Carrier
	ParentField *depm.FieldEntity

	// Slot is the slot of the owning scope's frame holding the live carrier
	// instance.  It is allocated when the owning scope is finalized.
	Slot int
}
