package resolve

import (
	"keel/depm"
	"keel/typing"
	"strings"
)

// MemberKind enumerates the kinds of members a candidate can denote.
type MemberKind int

// Enumeration of member kinds.
const (
	FieldMember MemberKind = iota
	PropertyMember
	CtorMember
	MethodMember
	ExtensionMember
)

func (mk MemberKind) String() string {
	switch mk {
	case FieldMember:
		return "field"
	case PropertyMember:
		return "property"
	case CtorMember:
		return "constructor"
	case MethodMember:
		return "method"
	default:
		return "extension method"
	}
}

// Candidate is a resolved member: everything an emitter needs to address the
// member without repeating resolution.  Candidates are never mutated once they
// are returned by the resolver.
type Candidate struct {
	Kind MemberKind
	Name string

	// Owner is the declaring type of the member.  For members of generic
	// platform types it is the instantiated type.
	Owner *typing.Type

	// The descriptor of the member.  Exactly one is set: a platform member
	// or an entity of the current compilation unit.
	Field        *typing.FieldInfo
	Property     *typing.PropertyInfo
	Method       *typing.MethodInfo
	EntityField  *depm.FieldEntity
	EntityMethod *depm.MethodEntity

	// Params are the concrete parameter types of invocable members.  The
	// receiver of an extension method is its first parameter.
	Params []*typing.Type

	// Type is the return type of invocable members and the value type of
	// fields and properties.
	Type *typing.Type

	// GenericArgs are the inferred or explicit type arguments of a generic
	// method.
	GenericArgs []*typing.Type

	IsStatic  bool
	IsVirtual bool

	// Distance is the total argument distance the candidate was selected with.
	Distance int
}

// IsPlatform returns whether the candidate is a member of a platform type.
func (c *Candidate) IsPlatform() bool {
	return c.EntityField == nil && c.EntityMethod == nil
}

// Intrinsic returns the intrinsic implementing a platform member.
func (c *Candidate) Intrinsic() string {
	switch {
	case c.Method != nil:
		return c.Method.Intrinsic
	case c.Property != nil:
		return c.Property.Intrinsic
	}

	return ""
}

// ExplicitParams returns the parameters the call site supplies arguments for.
func (c *Candidate) ExplicitParams() []*typing.Type {
	if c.Kind == ExtensionMember {
		return c.Params[1:]
	}

	return c.Params
}

func (c *Candidate) String() string {
	sb := strings.Builder{}
	sb.WriteString(c.Owner.String())
	sb.WriteRune('.')
	sb.WriteString(c.Name)

	if len(c.GenericArgs) > 0 {
		sb.WriteString(formatTypes("<", c.GenericArgs, ">"))
	}

	if c.Kind == CtorMember || c.Kind == MethodMember || c.Kind == ExtensionMember {
		sb.WriteString(formatTypes("(", c.Params, ")"))
	}

	return sb.String()
}

func formatTypes(open string, types []*typing.Type, close string) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}

	return open + strings.Join(names, ", ") + close
}
