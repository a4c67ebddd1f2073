package scope

import (
	"keel/ast"
	"keel/common"
	"keel/depm"
	"keel/report"
	"keel/typing"
)

// Tree is the scope tree of the method being resolved along with the closure
// converter acting on it.  Scopes are entered and exited in strict nesting
// order: a scope is finalized when it is exited, after every expression that
// could reference its locals has been resolved.
type Tree struct {
	g     *depm.Graph
	names *common.NameGenerator

	// unrollConstants exempts constant bindings from capture.
	unrollConstants bool

	current *Scope
}

// NewTree creates a new scope tree.  Synthesized entities are added to g and
// named by names.
func NewTree(g *depm.Graph, names *common.NameGenerator, unrollConstants bool) *Tree {
	return &Tree{g: g, names: names, unrollConstants: unrollConstants}
}

// Current returns the innermost scope.
func (t *Tree) Current() *Scope {
	return t.current
}

// EnterFunction enters the body of a top level method.  Top level methods
// cannot see the locals of any other method so the root has no outer scope.
func (t *Tree) EnterFunction(method *depm.MethodEntity) *Scope {
	if t.current != nil {
		panic(report.ICE("function `%s` entered inside another method", method.Name))
	}

	frame := &Frame{Method: method}
	frame.Root = newScope(FunctionRoot, nil, frame, method.Span)
	t.current = frame.Root
	return frame.Root
}

// EnterLambda enters the body of a lambda.  The lambda's frame is nested in
// the frame of the current scope.
func (t *Tree) EnterLambda(span *report.TextSpan) *Scope {
	t.requireCurrent()

	frame := &Frame{Outer: t.current.Frame}
	frame.Root = newScope(LambdaRoot, t.current, frame, span)
	t.current = frame.Root
	return frame.Root
}

// EnterBlock enters a plain block.
func (t *Tree) EnterBlock(span *report.TextSpan) *Scope {
	return t.enter(Block, span)
}

// EnterLoop enters a loop body.
func (t *Tree) EnterLoop(span *report.TextSpan) *Scope {
	return t.enter(Loop, span)
}

func (t *Tree) enter(kind Kind, span *report.TextSpan) *Scope {
	t.requireCurrent()

	t.current = newScope(kind, t.current, t.current.Frame, span)
	return t.current
}

func (t *Tree) requireCurrent() {
	if t.current == nil {
		panic(report.ICE("scope entered outside of a method"))
	}
}

// Exit finalizes and leaves the current scope.
func (t *Tree) Exit() *Scope {
	t.requireCurrent()

	s := t.current
	t.finalize(s)
	t.current = s.Outer
	return s
}

// ExitLambda finalizes and leaves the root scope of a lambda and creates the
// closure method the lambda compiles to.  A lambda that captures locals of an
// enclosing frame becomes an instance method of the carrier it reaches them
// through; any other lambda becomes a static method of the script type.
func (t *Tree) ExitLambda(lambda *ast.Lambda, args []*depm.ArgDef, returnType *typing.Type) *depm.MethodEntity {
	s := t.current
	if s == nil || s.Kind != LambdaRoot {
		panic(report.ICE("exiting a lambda outside of a lambda body"))
	}

	t.Exit()

	owner := t.g.Script
	if this := s.Frame.This(); this != nil {
		owner = this.Entity
	}

	me := t.g.AddClosureMethod(owner, t.names.ClosureMethodName(), args, lambda)
	me.IsStatic = !s.Frame.captures
	t.g.SetReturnType(me, returnType)
	s.Frame.Method = me
	return me
}

// ExitFunction finalizes and leaves the root scope of a top level method.
func (t *Tree) ExitFunction() *Frame {
	s := t.current
	if s == nil || s.Kind != FunctionRoot {
		panic(report.ICE("exiting a function outside of a function body"))
	}

	t.Exit()
	return s.Frame
}

// -----------------------------------------------------------------------------

// Declare declares a new local in the current scope.  Shadowing a local of an
// outer scope is allowed; redeclaring a local of the same scope is not.
func (t *Tree) Declare(name string, typ *typing.Type, isConst, isByRef bool, span *report.TextSpan) *Local {
	t.requireCurrent()

	if name == common.UnderscoreName || common.IsSynthesizedName(name) {
		panic(report.Raise(report.ReservedNameUsed, span, "`%s` cannot be used as a name", name))
	}

	return t.declare(&Local{
		Name:     name,
		Type:     typ,
		Span:     span,
		IsConst:  isConst,
		IsByRef:  isByRef,
		ArgIndex: -1,
	})
}

// DeclareArg declares the argument with the given index of the current frame's
// method in the current scope.
func (t *Tree) DeclareArg(name string, typ *typing.Type, isByRef bool, index int, span *report.TextSpan) *Local {
	l := t.Declare(name, typ, false, isByRef, span)
	l.ArgIndex = index
	return l
}

// DeclareConstant declares an immutable local bound to a literal.  When
// constants are unrolled, the local is never stored and is exempt from
// capture.
func (t *Tree) DeclareConstant(name string, typ *typing.Type, value *ast.Literal, span *report.TextSpan) *Local {
	l := t.Declare(name, typ, true, false, span)
	if t.unrollConstants {
		l.decide(Storage{Kind: ConstantStorage, Value: value})
	}

	return l
}

// DeclareImplicit declares a compiler generated temporary in the current
// scope.
func (t *Tree) DeclareImplicit(typ *typing.Type) *Local {
	t.requireCurrent()

	return t.declare(&Local{
		Name:       t.names.ImplicitLocalName(),
		Type:       typ,
		IsImplicit: true,
		ArgIndex:   -1,
	})
}

func (t *Tree) declare(l *Local) *Local {
	s := t.current
	if s.finalized {
		panic(report.ICE("local `%s` declared in a finalized scope", l.Name))
	}

	if _, ok := s.locals[l.Name]; ok {
		panic(report.Raise(report.NameAlreadyDeclared, l.Span, "local `%s` is already declared in this scope", l.Name))
	}

	l.Owner = s
	s.locals[l.Name] = l
	s.order = append(s.order, l)
	return l
}

// Lookup finds the local named name visible from the current scope.  It
// returns the local along with the number of scope boundaries crossed to reach
// it, or nil if no enclosing scope declares the name.
func (t *Tree) Lookup(name string) (*Local, int) {
	dist := 0
	for s := t.current; s != nil; s = s.Outer {
		if l, ok := s.locals[name]; ok {
			return l, dist
		}

		dist++
	}

	return nil, -1
}

// Reference records a read or write of l from the current scope.  A reference
// that crosses into an enclosing frame captures l.
func (t *Tree) Reference(l *Local, span *report.TextSpan) *Access {
	t.requireCurrent()

	from := t.current
	if from.Frame != l.Owner.Frame && l.storage.Kind != ConstantStorage {
		t.capture(l, from, span)
	}

	dist := 0
	for s := from; s != nil && s != l.Owner; s = s.Outer {
		dist++
	}

	return &Access{Local: l, From: from, Distance: dist}
}
