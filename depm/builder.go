package depm

import (
	"keel/ast"
	"keel/common"
	"keel/report"
	"keel/typing"
)

// Builder is the declaration builder: it walks the top-level nodes of a
// compilation unit and populates the entity graph with skeleton entities.  No
// type signature is resolved while declaring so that declarations can refer
// to each other in any order.
type Builder struct {
	g *Graph

	// script collects the top-level statements forming the entry method.
	script []ast.Expr
}

// NewBuilder creates a new declaration builder for g.
func NewBuilder(g *Graph) *Builder {
	return &Builder{g: g}
}

// Build declares every top-level node and then prepares every declared
// entity.  This is the two pass declaration algorithm: after it succeeds, all
// signatures in the graph are fixed and bodies can be resolved.
func (b *Builder) Build(nodes []ast.Node) error {
	if err := b.Declare(nodes); err != nil {
		return err
	}

	return b.g.PrepareAll()
}

// Declare performs the first pass: every declaration becomes a skeleton
// entity and every statement becomes part of the entry method.
func (b *Builder) Declare(nodes []ast.Node) (err error) {
	defer report.CatchErrors(&err)

	for _, node := range nodes {
		switch v := node.(type) {
		case *ast.UsingDef:
			b.declareUsing(v)
		case *ast.RecordDef:
			b.declareRecord(v)
		case *ast.SumTypeDef:
			b.declareSumType(v)
		case *ast.FuncDef:
			b.declareFunc(v)
		case ast.Expr:
			b.script = append(b.script, v)
		default:
			panic(report.ICE("unexpected top level node %T", node))
		}
	}

	b.checkGlobalCollisions()

	var span *report.TextSpan
	if len(b.script) > 0 {
		span = report.NewSpanOver(b.script[0].Span(), b.script[len(b.script)-1].Span())
	}

	b.g.Entry.Span = span
	b.g.Entry.Body = &ast.Block{ExprBase: ast.NewExprBase(span), Stmts: b.script}
	return nil
}

// -----------------------------------------------------------------------------

func (b *Builder) declareUsing(ud *ast.UsingDef) {
	uni := b.g.Universe()
	if !uni.HasNamespace(ud.Namespace) {
		panic(report.Raise(report.TypeNotFound, ud.Span(), "unknown namespace `%s`", ud.Namespace))
	}

	uni.OpenNamespace(ud.Namespace)
}

// declareRecord declares a record: a sealed value type with one field per
// record field and a constructor taking the fields in order.
func (b *Builder) declareRecord(rd *ast.RecordDef) {
	checkTypeName(rd.TypeName, rd.Span())

	te := b.g.DeclareType(rd.TypeName, TypeRecord, "", true, true, rd.Span())

	var ctorArgs []*ArgDef
	for _, rf := range rd.Fields {
		checkName(rf.Name, rf.Span())

		b.g.DeclareField(te, rf.Name, rf.Type.Signature, false, rf.Span())
		ctorArgs = append(ctorArgs, &ArgDef{
			Name:    common.CtorArgName(rf.Name),
			TypeSig: rf.Type.Signature,
			Span:    rf.Span(),
		})
	}

	b.g.DeclareCtor(te, ctorArgs, SynthRecordInit, rd.Span())
}

// declareSumType declares a sum type: a shared supertype and a sealed subtype
// per label.  A tagged label gets a tag field, a constructor and a static
// factory function named after the label.  A singleton label gets a
// parameterless constructor and a global property named after the label.
func (b *Builder) declareSumType(sd *ast.SumTypeDef) {
	checkTypeName(sd.TypeName, sd.Span())

	if len(sd.Labels) == 0 {
		panic(report.Raise(report.InvalidOperation, sd.Span(), "sum type `%s` must have at least one label", sd.TypeName))
	}

	super := b.g.DeclareType(sd.TypeName, TypeSum, "", false, false, sd.Span())

	for _, sl := range sd.Labels {
		checkTypeName(sl.Name, sl.Span())

		label := b.g.DeclareType(sl.Name, TypeSumLabel, sd.TypeName, true, false, sl.Span())
		label.Supertype = super.ID

		if sl.Tag != nil {
			label.IsTagged = true
			b.g.DeclareField(label, common.TagFieldName, sl.Tag.Signature, false, sl.Span())

			b.g.DeclareCtor(label, []*ArgDef{{
				Name:    "value",
				TypeSig: sl.Tag.Signature,
				Span:    sl.Span(),
			}}, SynthLabelInit, sl.Span())

			factory := b.g.DeclareMethod(b.g.Script, sl.Name, []*ArgDef{{
				Name:    "value",
				TypeSig: sl.Tag.Signature,
				Span:    sl.Span(),
			}}, sl.Name, true, nil, sl.Span())
			factory.Synthetic = SynthLabelFactory
			factory.Target = label.ID
		} else {
			b.g.DeclareCtor(label, nil, SynthLabelInit, sl.Span())
			b.g.DeclareGlobal(sl.Name, label, sl.Span())
		}
	}
}

// declareFunc declares a free function as a static method of the script type.
func (b *Builder) declareFunc(fd *ast.FuncDef) {
	checkName(fd.FuncName, fd.Span())

	if fd.FuncName == common.EntryMethodName && len(fd.Args) == 0 {
		panic(report.Raise(
			report.ReservedNameUsed,
			fd.Span(),
			"a function without arguments cannot be named `%s`",
			common.EntryMethodName,
		))
	}

	args := make([]*ArgDef, len(fd.Args))
	for i, fa := range fd.Args {
		checkName(fa.Name, fa.Span())

		for _, prev := range fd.Args[:i] {
			if prev.Name == fa.Name {
				panic(report.Raise(report.NameAlreadyDeclared, fa.Span(), "argument `%s` is already declared", fa.Name))
			}
		}

		args[i] = &ArgDef{Name: fa.Name, TypeSig: fa.Type.Signature, ByRef: fa.ByRef, Span: fa.Span()}
	}

	var returnSig string
	if fd.ReturnType != nil {
		returnSig = fd.ReturnType.Signature
	}

	b.g.DeclareMethod(b.g.Script, fd.FuncName, args, returnSig, true, fd.Body, fd.Span())
}

// checkGlobalCollisions checks that no global property shares its name with a
// free function since both are looked up as plain identifiers.
func (b *Builder) checkGlobalCollisions() {
	for _, gp := range b.g.Globals() {
		if len(b.g.Functions(gp.Name)) > 0 {
			panic(report.Raise(report.NameAlreadyDeclared, gp.Span, "`%s` is already declared as a function", gp.Name))
		}
	}
}

// -----------------------------------------------------------------------------

// checkName checks that name is not reserved.
func checkName(name string, span *report.TextSpan) {
	if name == "" {
		panic(report.ICE("declaration without a name"))
	}

	if name == common.UnderscoreName {
		panic(report.Raise(report.ReservedNameUsed, span, "`_` cannot be used as a name"))
	}

	if common.IsSynthesizedName(name) {
		panic(report.Raise(report.ReservedNameUsed, span, "`%s` is reserved for compiler generated names", name))
	}
}

// checkTypeName checks that name can be used as the name of a type.
func checkTypeName(name string, span *report.TextSpan) {
	checkName(name, span)

	if typing.IsTypeAlias(name) {
		panic(report.Raise(report.ReservedNameUsed, span, "`%s` is a built-in type", name))
	}
}
