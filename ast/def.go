package ast

// Def represents a top level declaration.
type Def interface {
	Node

	// Name returns the name this declaration defines.  Namespace opens return
	// the opened namespace.
	Name() string
}

// TypeLabel is a textual type signature as written in source.  It is resolved
// by the type universe.
type TypeLabel struct {
	NodeBase

	Signature string
}

func (tl *TypeLabel) Children() []Node {
	return nil
}

// -----------------------------------------------------------------------------

// UsingDef opens a namespace for type and extension method lookup.
type UsingDef struct {
	NodeBase

	Namespace string
}

func (ud *UsingDef) Name() string {
	return ud.Namespace
}

func (ud *UsingDef) Children() []Node {
	return nil
}

// RecordDef is a record type: a sealed value type with named fields.
type RecordDef struct {
	NodeBase

	TypeName string
	Fields   []*RecordField
}

// RecordField is a single field of a record.
type RecordField struct {
	NodeBase

	Name string
	Type *TypeLabel
}

func (rd *RecordDef) Name() string {
	return rd.TypeName
}

func (rd *RecordDef) Children() []Node {
	nodes := make([]Node, len(rd.Fields))
	for i, field := range rd.Fields {
		nodes[i] = field
	}

	return nodes
}

func (rf *RecordField) Children() []Node {
	return appendNodes(nil, rf.Type)
}

// SumTypeDef is an algebraic sum type: a supertype with one sealed subtype per
// labeled case.
type SumTypeDef struct {
	NodeBase

	TypeName string
	Labels   []*SumLabel
}

// SumLabel is a single case of a sum type.  A label with a nil Tag is a
// singleton; otherwise it carries a value of the tag type.
type SumLabel struct {
	NodeBase

	Name string
	Tag  *TypeLabel
}

func (sd *SumTypeDef) Name() string {
	return sd.TypeName
}

func (sd *SumTypeDef) Children() []Node {
	nodes := make([]Node, len(sd.Labels))
	for i, label := range sd.Labels {
		nodes[i] = label
	}

	return nodes
}

func (sl *SumLabel) Children() []Node {
	return appendNodes(nil, sl.Tag)
}

// FuncDef is a free function.
type FuncDef struct {
	NodeBase

	FuncName   string
	Args       []*FuncArg
	ReturnType *TypeLabel
	Body       *Block
}

// FuncArg is an argument to a function or lambda.
type FuncArg struct {
	NodeBase

	Name  string
	Type  *TypeLabel
	ByRef bool
}

func (fd *FuncDef) Name() string {
	return fd.FuncName
}

func (fd *FuncDef) Children() []Node {
	var nodes []Node
	for _, arg := range fd.Args {
		nodes = append(nodes, arg)
	}

	return appendNodes(nodes, fd.ReturnType, fd.Body)
}

func (fa *FuncArg) Children() []Node {
	return appendNodes(nil, fa.Type)
}
