package ast

import "keel/report"

// Expr represents an expression simple or complex.  Statements are
// expressions yielding unit.  All expression nodes implement `Expr`.
type Expr interface {
	Node

	exprNode()
}

// ExprBase is the base struct for all expressions.
type ExprBase struct {
	NodeBase
}

// NewExprBase creates a new expression base with the given span.
func NewExprBase(span *report.TextSpan) ExprBase {
	return ExprBase{NodeBase: NewNodeBaseOn(span)}
}

func (ExprBase) exprNode() {}

// -----------------------------------------------------------------------------

// Block is a sequence of expressions evaluated in order.  A block opens a new
// lexical scope and yields the value of its last expression.
type Block struct {
	ExprBase

	Stmts []Expr
}

func (b *Block) Children() []Node {
	return exprNodes(b.Stmts)
}

// VarDef declares a local variable.  Immutable definitions (`let`) cannot be
// assigned to after their definition.
type VarDef struct {
	ExprBase

	Name      string
	Type      *TypeLabel
	Value     Expr
	Immutable bool
}

func (vd *VarDef) Children() []Node {
	return appendNodes(nil, vd.Type, vd.Value)
}

// Assign assigns a new value to a local variable.
type Assign struct {
	ExprBase

	Name  string
	Value Expr
}

func (a *Assign) Children() []Node {
	return appendNodes(nil, a.Value)
}

// Identifier is a reference to a named value: a local, a free function or a
// global property.
type Identifier struct {
	ExprBase

	Name string
}

func (id *Identifier) Children() []Node {
	return nil
}

// LiteralKind enumerates the kinds of literals.
type LiteralKind int

// Enumeration of literal kinds.
const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
	LitUnit
)

// Literal is a literal value.  The value is stored as its source text.
type Literal struct {
	ExprBase

	Kind  LiteralKind
	Value string
}

func (l *Literal) Children() []Node {
	return nil
}

// UnaryOp is an application of a unary operator: `-` or `!`.
type UnaryOp struct {
	ExprBase

	Op      string
	Operand Expr
}

func (uo *UnaryOp) Children() []Node {
	return appendNodes(nil, uo.Operand)
}

// BinaryOp is an application of a binary operator.
type BinaryOp struct {
	ExprBase

	Op       string
	Lhs, Rhs Expr
}

func (bo *BinaryOp) Children() []Node {
	return appendNodes(nil, bo.Lhs, bo.Rhs)
}

// IfExpr is a conditional.  Else may be nil.
type IfExpr struct {
	ExprBase

	Cond Expr
	Then *Block
	Else *Block
}

func (ie *IfExpr) Children() []Node {
	return appendNodes(nil, ie.Cond, ie.Then, ie.Else)
}

// WhileLoop repeats its body while its condition is true.
type WhileLoop struct {
	ExprBase

	Cond Expr
	Body *Block
}

func (wl *WhileLoop) Children() []Node {
	return appendNodes(nil, wl.Cond, wl.Body)
}

// ForLoop iterates the variable Var over the inclusive integer range From to
// To.  The loop variable is bound anew on every iteration.
type ForLoop struct {
	ExprBase

	Var      string
	From, To Expr
	Body     *Block
}

func (fl *ForLoop) Children() []Node {
	return appendNodes(nil, fl.From, fl.To, fl.Body)
}

// Lambda is an anonymous function.  Its return type is inferred from its body.
type Lambda struct {
	ExprBase

	Args []*FuncArg
	Body *Block
}

func (l *Lambda) Children() []Node {
	var nodes []Node
	for _, arg := range l.Args {
		nodes = append(nodes, arg)
	}

	return appendNodes(nodes, l.Body)
}

// Call calls a free function by name or invokes a delegate value.
type Call struct {
	ExprBase

	Func Expr
	Args []Expr
}

func (c *Call) Children() []Node {
	return append(appendNodes(nil, c.Func), exprNodes(c.Args)...)
}

// MemberAccess reads a field or property.  Exactly one of Target and Static is
// set: Target for instance members and Static for static members.
type MemberAccess struct {
	ExprBase

	Target Expr
	Static *TypeLabel
	Name   string
}

func (ma *MemberAccess) Children() []Node {
	return appendNodes(nil, ma.Target, ma.Static)
}

// MemberAssign writes a field or property.
type MemberAssign struct {
	ExprBase

	Target Expr
	Static *TypeLabel
	Name   string
	Value  Expr
}

func (ma *MemberAssign) Children() []Node {
	return appendNodes(nil, ma.Target, ma.Static, ma.Value)
}

// MemberCall invokes a method, possibly with explicit generic arguments.
type MemberCall struct {
	ExprBase

	Target   Expr
	Static   *TypeLabel
	Name     string
	TypeArgs []*TypeLabel
	Args     []Expr
}

func (mc *MemberCall) Children() []Node {
	nodes := appendNodes(nil, mc.Target, mc.Static)
	for _, ta := range mc.TypeArgs {
		nodes = append(nodes, ta)
	}

	return append(nodes, exprNodes(mc.Args)...)
}

// NewExpr constructs a new object by calling a constructor.
type NewExpr struct {
	ExprBase

	Type *TypeLabel
	Args []Expr
}

func (ne *NewExpr) Children() []Node {
	return append(appendNodes(nil, ne.Type), exprNodes(ne.Args)...)
}

// DefaultExpr yields the default (zero) value of a type.
type DefaultExpr struct {
	ExprBase

	Type *TypeLabel
}

func (de *DefaultExpr) Children() []Node {
	return appendNodes(nil, de.Type)
}

// RefArg passes a local variable by reference.  It may only appear as an
// argument to a call.
type RefArg struct {
	ExprBase

	Name string
}

func (ra *RefArg) Children() []Node {
	return nil
}
