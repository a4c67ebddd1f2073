package generate

import (
	"fmt"
	"io"
	"keel/build"
	"keel/depm"
	"keel/typing"
	"os"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// Generator is an emitter lowering the layout of a compiled unit to an LLVM
// module.  Every in-progress type becomes a named struct type and every
// method a function declaration with a struct type for its frame.  Global
// properties become zero initialized globals.
type Generator struct {
	// out receives the textual module if it is not nil.
	out io.Writer

	// path is the file the module is saved to when saving is allowed.
	path string

	unit *build.Unit
	mod  *ir.Module

	// structs holds the struct type of every in-progress type by entity.
	structs map[typing.EntityRef]*types.StructType

	delegateType types.Type
}

// NewGenerator creates a new generator writing the module text to out (if it
// is not nil) and saving it to path (if it is not empty and saving is allowed
// by the unit's options).
func NewGenerator(out io.Writer, path string) *Generator {
	return &Generator{out: out, path: path}
}

// Module returns the last generated module.
func (g *Generator) Module() *ir.Module {
	return g.mod
}

// Emit generates the module for a unit and writes it out.
func (g *Generator) Emit(u *build.Unit) error {
	mod := g.Generate(u)
	text := mod.String()

	if g.out != nil {
		if _, err := io.WriteString(g.out, text); err != nil {
			return fmt.Errorf("error writing LLVM module: %w", err)
		}
	}

	if u.Options.AllowSave && g.path != "" {
		if err := os.WriteFile(g.path, []byte(text), 0644); err != nil {
			return fmt.Errorf("error saving LLVM module to `%s`: %w", g.path, err)
		}
	}

	return nil
}

// Generate lowers a unit to a new LLVM module.  Generation always succeeds:
// the unit is fully resolved and frozen.
func (g *Generator) Generate(u *build.Unit) *ir.Module {
	g.unit = u
	g.mod = ir.NewModule()
	g.structs = make(map[typing.EntityRef]*types.StructType)

	// delegates are a function pointer and the target it is bound to
	g.delegateType = g.mod.NewTypeDef("<delegate>", types.NewStruct(types.I8Ptr, types.I8Ptr))

	// the struct types are declared before any of their bodies so that
	// reference types can point to each other
	entities := u.Graph.Types()
	for _, te := range entities {
		st := types.NewStruct()
		g.mod.NewTypeDef(te.Name, st)
		g.structs[te.ID] = st
	}

	for _, te := range entities {
		g.genStructBody(te)
	}

	for _, gp := range u.Graph.Globals() {
		g.mod.NewGlobalDef(gp.Name, constant.NewZeroInitializer(g.structs[gp.Label]))
	}

	for _, me := range u.Graph.Methods() {
		g.genMethodDecl(me)
	}

	return g.mod
}

// genStructBody sets the fields of the struct type of an entity.  Labels
// start with the header of their sum type.
func (g *Generator) genStructBody(te *depm.TypeEntity) {
	st := g.structs[te.ID]

	switch te.Kind {
	case depm.TypeSum:
		// the discriminator of the label
		st.Fields = append(st.Fields, types.I32)
	case depm.TypeSumLabel:
		st.Fields = append(st.Fields, g.structs[te.Supertype])
	}

	for _, fid := range te.Fields {
		if fe := g.unit.Graph.Field(fid); !fe.IsStatic {
			st.Fields = append(st.Fields, g.convType(fe.Type))
		}
	}
}

// genMethodDecl declares the function of a method along with the struct type
// of its frame.  Instance methods take their receiver as their first
// parameter.
func (g *Generator) genMethodDecl(me *depm.MethodEntity) {
	owner := g.unit.Graph.Type(me.Owner)
	name := mangle(owner, me)

	var params []*ir.Param
	if !me.IsStatic && !me.IsCtor {
		params = append(params, ir.NewParam("this", types.NewPointer(g.structs[owner.ID])))
	}

	for _, arg := range me.Args {
		params = append(params, ir.NewParam(arg.Name, g.convType(arg.Type)))
	}

	var ret types.Type
	if me.IsCtor {
		ret = g.convType(owner.Type)
	} else {
		ret = g.convType(me.ReturnType)
	}

	g.mod.NewFunc(name, ret, params...)

	if frame, ok := g.unit.Result.Frames[me.ID]; ok && len(frame.Slots) > 0 {
		st := types.NewStruct()
		for _, slot := range frame.Slots {
			st.Fields = append(st.Fields, g.convType(slot))
		}

		g.mod.NewTypeDef(name+".frame", st)
	}
}

// mangle produces the symbol name of a method.  The method ID distinguishes
// overloads.
func mangle(owner *depm.TypeEntity, me *depm.MethodEntity) string {
	name := me.Name
	if me.IsCtor {
		name = "ctor"
	}

	return fmt.Sprintf("%s.%s.%d", strings.Trim(owner.Name, "<>"), strings.Trim(name, "<>"), me.ID)
}
