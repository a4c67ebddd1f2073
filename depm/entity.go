package depm

import (
	"keel/ast"
	"keel/report"
	"keel/typing"
)

// Phase is the lifecycle phase of an entity.
type Phase int

// Enumeration of entity phases.  Entities only ever move forward.
const (
	// PhaseDeclared entities have a name and kind.
	PhaseDeclared Phase = iota

	// PhasePrepared entities have a fixed signature: argument types, return
	// type and field types are resolved.
	PhasePrepared

	// PhaseCompiled entities have a resolved body and are frozen.
	PhaseCompiled
)

func (p Phase) String() string {
	switch p {
	case PhaseDeclared:
		return "declared"
	case PhasePrepared:
		return "prepared"
	default:
		return "compiled"
	}
}

// TypeKind enumerates the kinds of in-progress types.
type TypeKind int

// Enumeration of type kinds.
const (
	TypeScript TypeKind = iota
	TypeRecord
	TypeSum
	TypeSumLabel
	TypeCarrier
)

// MethodID and FieldID are indices into the entity graph's arenas.  Types are
// indexed by typing.EntityRef.
type (
	MethodID int
	FieldID  int
)

// -----------------------------------------------------------------------------

// TypeEntity is an in-progress user type: the script type, a record, a sum
// type or one of its labels, or a closure carrier.
type TypeEntity struct {
	ID   typing.EntityRef
	Name string
	Kind TypeKind
	Span *report.TextSpan

	// Type is the descriptor of the entity.  It exists from declaration on so
	// that the entity can be referenced before it is prepared.
	Type *typing.Type

	// ParentSig is the signature of the parent type.  An empty signature
	// denotes object.
	ParentSig string
	Parent    *typing.Type

	IsSealed bool
	IsValue  bool

	Fields  []FieldID
	Methods []MethodID
	Ctors   []MethodID

	// Label information for sum type labels.  Supertype is the entity of the
	// sum type and IsTagged indicates whether the label carries a value.
	Supertype typing.EntityRef
	IsTagged  bool

	// ParentCarrier is the carrier of the enclosing closure-bearing scope for
	// closure carriers with a parent link field.
	ParentCarrier typing.EntityRef

	Phase Phase

	// laidOut indicates whether the in-memory layout of the type is known:
	// all of its by-value fields have laid out types.
	laidOut bool
}

// FieldEntity is a field of an in-progress type.
type FieldEntity struct {
	ID    FieldID
	Name  string
	Owner typing.EntityRef
	Span  *report.TextSpan

	TypeSig string
	Type    *typing.Type

	IsStatic bool
	Phase    Phase
}

// SyntheticKind identifies methods whose body is generated by the compiler.
type SyntheticKind int

// Enumeration of synthetic method kinds.
const (
	// NotSynthetic methods have a user-written body.
	NotSynthetic SyntheticKind = iota

	// SynthRecordInit constructors assign their arguments to the fields of
	// the record in declaration order.
	SynthRecordInit

	// SynthLabelInit constructors assign their argument (if any) to the tag
	// field of a sum type label.
	SynthLabelInit

	// SynthLabelFactory static methods construct the label Target from their
	// argument.
	SynthLabelFactory
)

// ArgDef is an argument of a method entity.
type ArgDef struct {
	Name    string
	TypeSig string
	ByRef   bool
	Span    *report.TextSpan

	// Type is set when the method is prepared.  By-reference arguments have a
	// by-reference type.
	Type *typing.Type
}

// MethodEntity is a method or constructor of an in-progress type.  Free
// functions are static methods of the script type; lambdas are methods of
// closure carriers.
type MethodEntity struct {
	ID    MethodID
	Name  string
	Owner typing.EntityRef
	Span  *report.TextSpan

	IsCtor    bool
	IsStatic  bool
	IsVirtual bool

	Args []*ArgDef

	// ReturnSig is the signature of the return type.  An empty signature
	// denotes unit unless the return type is set directly.
	ReturnSig  string
	ReturnType *typing.Type

	// Body is the body of methods with user-written bodies.  Lambda bodies
	// are attached with Lambda.
	Body   *ast.Block
	Lambda *ast.Lambda

	Synthetic SyntheticKind
	Target    typing.EntityRef

	Phase Phase
}

// ArgTypes returns the prepared argument types of the method.
func (me *MethodEntity) ArgTypes() []*typing.Type {
	types := make([]*typing.Type, len(me.Args))
	for i, arg := range me.Args {
		types[i] = arg.Type
	}

	return types
}

// GlobalProperty is a global, read-only value: the singleton instance of an
// untagged sum type label.
type GlobalProperty struct {
	Name  string
	Label typing.EntityRef
	Type  *typing.Type
	Span  *report.TextSpan
}
