package generate

import (
	"keel/report"
	"keel/typing"

	"github.com/llir/llvm/ir/types"
)

// primTypes maps the core primitives to their LLVM types.
var primTypes = map[string]types.Type{
	"System.Boolean": types.I1,
	"System.Byte":    types.I8,
	"System.Char":    types.I16,
	"System.Int32":   types.I32,
	"System.Int64":   types.I64,
	"System.Single":  types.Float,
	"System.Double":  types.Double,
	"System.Void":    types.Void,
}

// convType converts a type descriptor to its LLVM representation.  Value
// types are stored inline; reference types are pointers.  Platform reference
// types are opaque.
func (g *Generator) convType(typ *typing.Type) types.Type {
	switch typ.Kind {
	case typing.KindRef:
		return types.NewPointer(g.convType(typ.Elem))
	case typing.KindArray:
		return types.NewStruct(types.I64, types.NewPointer(g.convType(typ.Elem)))
	case typing.KindNull:
		return types.I8Ptr
	case typing.KindTypeParam:
		panic(report.ICE("unsubstituted type parameter `%s` in generated code", typ))
	case typing.KindInProgress:
		st := g.structs[typ.Entity]
		if typ.IsValue {
			return st
		}

		return types.NewPointer(st)
	}

	if g.unit.Universe.IsNullable(typ) {
		return types.NewStruct(types.I1, g.convType(typ.Args[0]))
	}

	if typ.IsDelegate() {
		return g.delegateType
	}

	if typ.Def.Library == typing.CoreLibrary() {
		if llTyp, ok := primTypes[typ.Def.FullName()]; ok {
			return llTyp
		}
	}

	return types.I8Ptr
}
