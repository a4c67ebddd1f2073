package common

import (
	"fmt"
	"strings"
)

// Names of the entities synthesized for every compilation unit.
const (
	// ScriptTypeName is the name of the type holding all free functions and
	// the top-level script body.
	ScriptTypeName = "<Script>"

	// EntryMethodName is the name of the method holding the top-level script
	// body.  It is reserved for parameterless free functions.
	EntryMethodName = "Run"

	// TagFieldName is the name of the field holding the value of a tagged sum
	// type label.
	TagFieldName = "Tag"

	// ParentFieldName is the name of the field linking a closure carrier to
	// the carrier of the enclosing closure-bearing scope.
	ParentFieldName = "<parent>"

	// UnderscoreName is the discard name which may never be declared.
	UnderscoreName = "_"
)

// Templates for the names of synthesized entities.
const (
	carrierTypeTemplate   = "<Closure%d>"
	closureMethodTemplate = "<lambda%d>"
	carrierFieldTemplate  = "<f_%s>"
	implicitLocalTemplate = "<loc_%d>"
)

// CarrierFieldName returns the name of the carrier field holding the closured
// local named name.
func CarrierFieldName(name string) string {
	return fmt.Sprintf(carrierFieldTemplate, name)
}

// CtorArgName returns the constructor argument name for a record field.
func CtorArgName(fieldName string) string {
	return "_" + strings.ToLower(fieldName)
}

// IsSynthesizedName returns whether name is reserved for synthesized entities.
func IsSynthesizedName(name string) bool {
	return strings.ContainsAny(name, "<>")
}

// NameGenerator produces unique names for synthesized entities.  Each
// compilation session owns its own generator so that names are stable for a
// given input.
type NameGenerator struct {
	carriers, methods, locals int
}

// CarrierTypeName returns a fresh closure carrier type name.
func (ng *NameGenerator) CarrierTypeName() string {
	name := fmt.Sprintf(carrierTypeTemplate, ng.carriers)
	ng.carriers++
	return name
}

// ClosureMethodName returns a fresh closure method name.
func (ng *NameGenerator) ClosureMethodName() string {
	name := fmt.Sprintf(closureMethodTemplate, ng.methods)
	ng.methods++
	return name
}

// ImplicitLocalName returns a fresh implicit local name.
func (ng *NameGenerator) ImplicitLocalName() string {
	name := fmt.Sprintf(implicitLocalTemplate, ng.locals)
	ng.locals++
	return name
}
