package typing

import (
	"strings"
)

// Kind enumerates the kinds of type descriptors.  A descriptor is a tagged
// union: which of the fields of Type are meaningful depends on its kind.
type Kind int

// Enumeration of type descriptor kinds.
const (
	// KindPlatform is a type provided by a platform library.  Generic
	// instantiations of platform types are also of this kind.
	KindPlatform Kind = iota

	// KindInProgress is a type being declared in the current compilation
	// unit.  Its members live in the entity graph.
	KindInProgress

	// KindArray is an array (sequence) of an element type.
	KindArray

	// KindTypeParam is a generic type parameter of a platform type or method.
	KindTypeParam

	// KindRef is the type of a by-reference argument.
	KindRef

	// KindNull is the type of the null literal.
	KindNull
)

// EntityRef is an index of a type entity in the entity graph's arena.
type EntityRef int

// NoEntity is the entity reference of all descriptors that are not in-progress.
const NoEntity EntityRef = -1

// Type is a resolved type descriptor.  Descriptors are interned by the
// universe that creates them: two descriptors denote the same type if and only
// if they are the same pointer.  The exported fields must not be mutated.
type Type struct {
	// The canonical name of the type: eg. `System.Collections.Generic.List<System.Int32>`.
	name string

	// The key under which the type is interned.
	key string

	Kind Kind

	// Whether the type has value semantics.
	IsValue bool

	// Def is the platform type definition for KindPlatform.  For a generic
	// instantiation, Def is the generic definition and Args holds the type
	// arguments.
	Def  *PlatformType
	Args []*Type

	// Elem is the element type of arrays and by-reference types.
	Elem *Type

	// Entity is the arena index of the in-progress type entity.
	Entity EntityRef

	// IsSealed indicates an in-progress type that cannot be derived from.
	IsSealed bool

	// The name and index of a type parameter along with the key of the entity
	// that declares it (a platform type or method).
	ParamName  string
	ParamIndex int
	ParamOwner string

	// base is the parent of an in-progress type.  It is set once the entity is
	// prepared.
	base *Type
}

// Name returns the canonical name of the type.
func (t *Type) Name() string {
	return t.name
}

func (t *Type) String() string {
	switch t.Kind {
	case KindArray:
		return t.Elem.String() + "[]"
	case KindRef:
		return "ref " + t.Elem.String()
	case KindNull:
		return "null"
	case KindTypeParam:
		return t.ParamName
	case KindPlatform:
		if alias, ok := aliasesByName[t.name]; ok {
			return alias
		}

		if len(t.Args) > 0 {
			sb := strings.Builder{}
			sb.WriteString(t.Def.ShortName())
			sb.WriteRune('<')
			for i, arg := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(arg.String())
			}
			sb.WriteRune('>')
			return sb.String()
		}

		return t.Def.ShortName()
	}

	return t.name
}

// IsInProgress returns whether the type is being declared in the current
// compilation unit.
func (t *Type) IsInProgress() bool {
	return t.Kind == KindInProgress
}

// IsGenericInstance returns whether the type is an instantiation of a generic
// platform type.
func (t *Type) IsGenericInstance() bool {
	return t.Kind == KindPlatform && len(t.Args) > 0
}

// IsOpenGenericDef returns whether the type is an uninstantiated generic
// platform type definition.
func (t *Type) IsOpenGenericDef() bool {
	return t.Kind == KindPlatform && len(t.Args) == 0 && len(t.Def.TypeParams) > 0
}

// IsInterface returns whether the type is a platform interface.
func (t *Type) IsInterface() bool {
	return t.Kind == KindPlatform && t.Def.IsInterface
}

// IsDelegate returns whether the type is a platform delegate.
func (t *Type) IsDelegate() bool {
	return t.Kind == KindPlatform && t.Def.IsDelegate
}

// ContainsTypeParams returns whether any part of the type is a type parameter.
func (t *Type) ContainsTypeParams() bool {
	switch t.Kind {
	case KindTypeParam:
		return true
	case KindArray, KindRef:
		return t.Elem.ContainsTypeParams()
	case KindPlatform:
		for _, arg := range t.Args {
			if arg.ContainsTypeParams() {
				return true
			}
		}
	}

	return false
}

// SetBase sets the parent of an in-progress type.  It may only be called once
// during the preparation of the type entity.
func (t *Type) SetBase(base *Type) {
	t.base = base
}
