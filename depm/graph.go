package depm

import (
	"keel/ast"
	"keel/common"
	"keel/report"
	"keel/typing"
)

// Graph is the entity graph of a compilation unit: every in-progress type,
// method, field and constructor along with the worklist of entities that are
// not yet prepared.  Entities refer to each other by arena index so cyclic
// references (mutually recursive types, carrier chains) need no special
// ownership handling.  Entities are never removed from the graph.
type Graph struct {
	uni *typing.Universe

	types   []*TypeEntity
	fields  []*FieldEntity
	methods []*MethodEntity

	typesByName map[string]typing.EntityRef

	globals     map[string]*GlobalProperty
	globalOrder []string

	// unprepared is the worklist of entities awaiting preparation.
	unprepared []*workItem

	maxAttempts int

	// Script is the type holding all free functions and Entry is the method
	// holding the top-level script statements.
	Script *TypeEntity
	Entry  *MethodEntity
}

// NewGraph creates a new entity graph over the universe and registers itself
// as the universe's source of in-progress types.
func NewGraph(uni *typing.Universe, maxAttempts int) *Graph {
	if maxAttempts < 1 {
		maxAttempts = common.DefaultMaxPrepareAttempts
	}

	g := &Graph{
		uni:         uni,
		typesByName: make(map[string]typing.EntityRef),
		globals:     make(map[string]*GlobalProperty),
		maxAttempts: maxAttempts,
	}

	uni.SetLocalTypes(g)

	g.Script = g.newType(common.ScriptTypeName, TypeScript, "", true, false, nil)
	g.Entry = g.newMethod(g.Script, common.EntryMethodName, nil, "object", true, nil)

	return g
}

// Universe returns the type universe of the graph.
func (g *Graph) Universe() *typing.Universe {
	return g.uni
}

// LookupLocalType implements typing.LocalTypes.
func (g *Graph) LookupLocalType(name string) (*typing.Type, bool) {
	if id, ok := g.typesByName[name]; ok {
		return g.types[id].Type, true
	}

	return nil, false
}

// Type returns the type entity with the given index.
func (g *Graph) Type(id typing.EntityRef) *TypeEntity {
	return g.types[id]
}

// TypeOf returns the entity of an in-progress type descriptor.
func (g *Graph) TypeOf(t *typing.Type) *TypeEntity {
	if t.Kind != typing.KindInProgress {
		panic(report.ICE("`%s` is not an in-progress type", t))
	}

	return g.types[t.Entity]
}

// Types returns all type entities in declaration order.
func (g *Graph) Types() []*TypeEntity {
	return g.types
}

// Method returns the method entity with the given index.
func (g *Graph) Method(id MethodID) *MethodEntity {
	return g.methods[id]
}

// Methods returns all method entities in declaration order.
func (g *Graph) Methods() []*MethodEntity {
	return g.methods
}

// Field returns the field entity with the given index.
func (g *Graph) Field(id FieldID) *FieldEntity {
	return g.fields[id]
}

// Global returns the global property with the given name.
func (g *Graph) Global(name string) (*GlobalProperty, bool) {
	gp, ok := g.globals[name]
	return gp, ok
}

// Globals returns all global properties in declaration order.
func (g *Graph) Globals() []*GlobalProperty {
	globals := make([]*GlobalProperty, len(g.globalOrder))
	for i, name := range g.globalOrder {
		globals[i] = g.globals[name]
	}

	return globals
}

// -----------------------------------------------------------------------------

// FindField returns the field of te named name.
func (g *Graph) FindField(te *TypeEntity, name string) (*FieldEntity, bool) {
	for _, id := range te.Fields {
		if g.fields[id].Name == name {
			return g.fields[id], true
		}
	}

	return nil, false
}

// FindMethods returns all the methods of te named name.
func (g *Graph) FindMethods(te *TypeEntity, name string) []*MethodEntity {
	var methods []*MethodEntity
	for _, id := range te.Methods {
		if g.methods[id].Name == name {
			methods = append(methods, g.methods[id])
		}
	}

	return methods
}

// Ctors returns the constructors of te.
func (g *Graph) Ctors(te *TypeEntity) []*MethodEntity {
	ctors := make([]*MethodEntity, len(te.Ctors))
	for i, id := range te.Ctors {
		ctors[i] = g.methods[id]
	}

	return ctors
}

// Functions returns all the free functions named name.
func (g *Graph) Functions(name string) []*MethodEntity {
	return g.FindMethods(g.Script, name)
}

// -----------------------------------------------------------------------------

func (g *Graph) newType(name string, kind TypeKind, parentSig string, sealed, value bool, span *report.TextSpan) *TypeEntity {
	id := typing.EntityRef(len(g.types))
	te := &TypeEntity{
		ID:            id,
		Name:          name,
		Kind:          kind,
		Span:          span,
		ParentSig:     parentSig,
		IsSealed:      sealed,
		IsValue:       value,
		Supertype:     typing.NoEntity,
		ParentCarrier: typing.NoEntity,
	}

	te.Type = g.uni.DeclareInProgress(name, id, value, sealed)
	g.types = append(g.types, te)
	g.typesByName[name] = id
	g.unprepared = append(g.unprepared, &workItem{kind: itemType, typ: te})

	if value {
		g.unprepared = append(g.unprepared, &workItem{kind: itemLayout, typ: te})
	} else {
		te.laidOut = true
	}

	return te
}

func (g *Graph) newMethod(owner *TypeEntity, name string, args []*ArgDef, returnSig string, static bool, span *report.TextSpan) *MethodEntity {
	me := &MethodEntity{
		ID:        MethodID(len(g.methods)),
		Name:      name,
		Owner:     owner.ID,
		Span:      span,
		IsStatic:  static,
		Args:      args,
		ReturnSig: returnSig,
		Target:    typing.NoEntity,
	}

	g.methods = append(g.methods, me)
	owner.Methods = append(owner.Methods, me.ID)
	g.unprepared = append(g.unprepared, &workItem{kind: itemMethod, method: me})
	return me
}

// DeclareType declares a new type entity.  The name must be unique among the
// types of the compilation unit.
func (g *Graph) DeclareType(name string, kind TypeKind, parentSig string, sealed, value bool, span *report.TextSpan) *TypeEntity {
	if _, ok := g.typesByName[name]; ok {
		panic(report.Raise(report.NameAlreadyDeclared, span, "type `%s` is already declared", name))
	}

	return g.newType(name, kind, parentSig, sealed, value, span)
}

// DeclareField declares a new field of te.
func (g *Graph) DeclareField(te *TypeEntity, name, typeSig string, static bool, span *report.TextSpan) *FieldEntity {
	if _, ok := g.FindField(te, name); ok {
		panic(report.Raise(report.NameAlreadyDeclared, span, "field `%s` is already declared in `%s`", name, te.Name))
	}

	fe := &FieldEntity{
		ID:       FieldID(len(g.fields)),
		Name:     name,
		Owner:    te.ID,
		Span:     span,
		TypeSig:  typeSig,
		IsStatic: static,
	}

	g.fields = append(g.fields, fe)
	te.Fields = append(te.Fields, fe.ID)
	g.unprepared = append(g.unprepared, &workItem{kind: itemField, field: fe})
	return fe
}

// DeclareMethod declares a new method of te.  Its body is resolved after
// preparation.
func (g *Graph) DeclareMethod(te *TypeEntity, name string, args []*ArgDef, returnSig string, static bool, body *ast.Block, span *report.TextSpan) *MethodEntity {
	me := g.newMethod(te, name, args, returnSig, static, span)
	me.Body = body
	return me
}

// DeclareCtor declares a new constructor of te.
func (g *Graph) DeclareCtor(te *TypeEntity, args []*ArgDef, synth SyntheticKind, span *report.TextSpan) *MethodEntity {
	me := &MethodEntity{
		ID:        MethodID(len(g.methods)),
		Name:      typing.CtorName,
		Owner:     te.ID,
		Span:      span,
		IsCtor:    true,
		Args:      args,
		Synthetic: synth,
		Target:    typing.NoEntity,
	}

	g.methods = append(g.methods, me)
	te.Ctors = append(te.Ctors, me.ID)
	g.unprepared = append(g.unprepared, &workItem{kind: itemMethod, method: me})
	return me
}

// DeclareGlobal declares a new global property holding the singleton instance
// of a sum type label.
func (g *Graph) DeclareGlobal(name string, label *TypeEntity, span *report.TextSpan) *GlobalProperty {
	if _, ok := g.globals[name]; ok {
		panic(report.Raise(report.NameAlreadyDeclared, span, "global `%s` is already declared", name))
	}

	gp := &GlobalProperty{Name: name, Label: label.ID, Type: label.Type, Span: span}
	g.globals[name] = gp
	g.globalOrder = append(g.globalOrder, name)
	return gp
}

// -----------------------------------------------------------------------------

// CreateCarrier creates a new closure carrier type.  Carriers are created
// while bodies are resolved so they are prepared immediately.
func (g *Graph) CreateCarrier(name string, span *report.TextSpan) *TypeEntity {
	te := g.DeclareType(name, TypeCarrier, "", true, false, span)
	g.prepareType(te)
	g.removeWorkItems(func(item *workItem) bool { return item.typ == te })
	return te
}

// AddPreparedField adds a field whose type is already known to te.
func (g *Graph) AddPreparedField(te *TypeEntity, name string, typ *typing.Type, span *report.TextSpan) *FieldEntity {
	fe := g.DeclareField(te, name, typ.Name(), false, span)
	fe.Type = typ
	fe.Phase = PhasePrepared
	g.removeWorkItems(func(item *workItem) bool { return item.field == fe })
	return fe
}

// AddClosureMethod adds a method whose argument types are already known to a
// closure carrier.  The method is prepared when its return type is set with
// SetReturnType.
func (g *Graph) AddClosureMethod(te *TypeEntity, name string, args []*ArgDef, lambda *ast.Lambda) *MethodEntity {
	me := &MethodEntity{
		ID:     MethodID(len(g.methods)),
		Name:   name,
		Owner:  te.ID,
		Span:   lambda.Span(),
		Args:   args,
		Lambda: lambda,
		Body:   lambda.Body,
		Target: typing.NoEntity,
	}

	g.methods = append(g.methods, me)
	te.Methods = append(te.Methods, me.ID)
	return me
}

// SetReturnType sets the inferred return type of a closure method and marks
// it prepared.
func (g *Graph) SetReturnType(me *MethodEntity, ret *typing.Type) {
	if me.Phase != PhaseDeclared {
		panic(report.ICE("return type of `%s` set after preparation", me.Name))
	}

	me.ReturnType = ret
	me.Phase = PhasePrepared
}

// MarkCompiled marks a prepared method as compiled.
func (g *Graph) MarkCompiled(me *MethodEntity) {
	if me.Phase != PhasePrepared {
		panic(report.ICE("method `%s` compiled while %s", me.Name, me.Phase))
	}

	me.Phase = PhaseCompiled
}

// Freeze marks every remaining prepared entity as compiled.  It is called
// once all bodies have been resolved and before the graph is handed to an
// emitter.
func (g *Graph) Freeze() {
	for _, te := range g.types {
		te.Phase = PhaseCompiled
	}

	for _, fe := range g.fields {
		fe.Phase = PhaseCompiled
	}

	for _, me := range g.methods {
		if me.Phase == PhaseDeclared {
			panic(report.ICE("method `%s` was never prepared", me.Name))
		}

		me.Phase = PhaseCompiled
	}
}
