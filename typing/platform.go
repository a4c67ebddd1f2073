package typing

import (
	"fmt"
	"strings"
)

// Library is a platform library: a named collection of platform types.
type Library struct {
	Name string

	// ImplicitNamespaces are the namespaces of this library that are open in
	// every compilation referencing the library.
	ImplicitNamespaces []string

	Types []*PlatformType

	// index maps full type names (with arity suffix) to types.
	index map[string]*PlatformType
}

// NewLibrary creates a new library and indexes its types.
func NewLibrary(name string, implicit []string, types ...*PlatformType) (*Library, error) {
	lib := &Library{
		Name:               name,
		ImplicitNamespaces: implicit,
		index:              make(map[string]*PlatformType),
	}

	for _, pt := range types {
		if err := lib.AddType(pt); err != nil {
			return nil, err
		}
	}

	return lib, nil
}

// AddType adds a new platform type to the library.
func (lib *Library) AddType(pt *PlatformType) error {
	if _, ok := lib.index[pt.FullName()]; ok {
		return fmt.Errorf("library %s defines `%s` multiple times", lib.Name, pt.FullName())
	}

	pt.Library = lib
	for _, m := range pt.Methods {
		m.Owner = pt
	}
	for _, c := range pt.Ctors {
		c.Owner = pt
		c.Name = CtorName
	}

	lib.Types = append(lib.Types, pt)
	lib.index[pt.FullName()] = pt
	return nil
}

// Lookup looks up a type by its full name including any arity suffix.
func (lib *Library) Lookup(fullName string) (*PlatformType, bool) {
	pt, ok := lib.index[fullName]
	return pt, ok
}

// -----------------------------------------------------------------------------

// PlatformType is a type provided by a platform library.  Member types are
// stored as signatures and resolved lazily by the universe, within the scope of
// the type's (and the member's) generic parameters.
type PlatformType struct {
	Namespace string

	// Name is the type name.  The names of generic types carry an arity
	// suffix: eg. List`1.
	Name string

	Library *Library

	IsValue     bool
	IsInterface bool
	IsSealed    bool
	IsDelegate  bool

	// Parent is the signature of the parent type.  It is empty for the root
	// type and for interfaces.
	Parent     string
	Interfaces []string

	TypeParams []string

	Fields     []*FieldInfo
	Properties []*PropertyInfo
	Ctors      []*MethodInfo
	Methods    []*MethodInfo
}

// FullName returns the namespace qualified name of the type.
func (pt *PlatformType) FullName() string {
	if pt.Namespace == "" {
		return pt.Name
	}

	return pt.Namespace + "." + pt.Name
}

// ShortName returns the name of the type without its arity suffix.
func (pt *PlatformType) ShortName() string {
	name, _ := SplitArity(pt.Name)
	return name
}

// Key returns a string uniquely identifying the type.
func (pt *PlatformType) Key() string {
	if pt.Library == nil {
		return pt.FullName()
	}

	return "[" + pt.Library.Name + "]" + pt.FullName()
}

// FieldInfo is a platform field.
type FieldInfo struct {
	Name   string
	Type   string
	Static bool

	// Literal fields are constants with the given value.
	Literal bool
	Value   interface{}
}

// PropertyInfo is a platform property.
type PropertyInfo struct {
	Name   string
	Type   string
	Static bool
	CanGet bool
	CanSet bool

	// Intrinsic names the implementation of the property accessors in
	// executing emitters.
	Intrinsic string
}

// CtorName is the name of all constructors.
const CtorName = ".ctor"

// MethodInfo is a platform method or constructor.
type MethodInfo struct {
	Name       string
	TypeParams []string
	Params     []*ParamInfo

	// Returns is the signature of the return type.  It is empty for methods
	// returning nothing.
	Returns string

	Static  bool
	Virtual bool

	// Extension methods are static methods whose first parameter is filled in
	// by the receiver.
	Extension bool

	// Intrinsic names the implementation of the method in executing emitters.
	Intrinsic string

	Owner *PlatformType
}

// ParamInfo is a parameter of a platform method.
type ParamInfo struct {
	Name  string
	Type  string
	ByRef bool
}

// Key returns a string uniquely identifying the method.
func (mi *MethodInfo) Key() string {
	sb := strings.Builder{}
	sb.WriteString(mi.Owner.Key())
	sb.WriteRune(':')
	sb.WriteString(mi.Name)
	if len(mi.TypeParams) > 0 {
		sb.WriteString(fmt.Sprintf("`%d", len(mi.TypeParams)))
	}

	sb.WriteRune('(')
	for i, param := range mi.Params {
		if i > 0 {
			sb.WriteRune(',')
		}

		if param.ByRef {
			sb.WriteString("ref ")
		}
		sb.WriteString(param.Type)
	}
	sb.WriteRune(')')

	return sb.String()
}

// -----------------------------------------------------------------------------

// SplitArity splits a generic type name into its bare name and its arity.
// Names without an arity suffix have an arity of zero.
func SplitArity(name string) (string, int) {
	if n := strings.LastIndexByte(name, '`'); n != -1 {
		arity := 0
		for _, c := range name[n+1:] {
			if c < '0' || c > '9' {
				return name, 0
			}

			arity = arity*10 + int(c-'0')
		}

		return name[:n], arity
	}

	return name, 0
}

// WithArity appends the arity suffix to a bare generic type name.
func WithArity(name string, arity int) string {
	if arity == 0 {
		return name
	}

	return fmt.Sprintf("%s`%d", name, arity)
}
