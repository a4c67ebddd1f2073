package eval

import (
	"io"
	"keel/ast"
	"keel/build"
	"keel/depm"
	"keel/report"
	"keel/scope"
	"keel/typing"
	"keel/walk"
)

// Evaluator is an emitter that executes a compiled unit directly from the
// decisions recorded while resolving it: it runs the entry method and keeps
// its value.  It never repeats a resolution, so it observes exactly the
// storage, capture and overload decisions any other emitter would.
type Evaluator struct {
	g   *depm.Graph
	uni *typing.Universe
	res *walk.Result

	// out receives console output.
	out io.Writer

	// globals holds the singleton instances of global properties.
	globals map[*depm.GlobalProperty]*Object

	// statics holds the values of mutable static platform fields.
	statics map[*typing.FieldInfo]Value

	// Result is the value returned by the entry method.
	Result Value
}

// NewEvaluator creates a new evaluator writing console output to out.
func NewEvaluator(out io.Writer) *Evaluator {
	return &Evaluator{
		out:     out,
		globals: make(map[*depm.GlobalProperty]*Object),
		statics: make(map[*typing.FieldInfo]Value),
	}
}

// Emit runs the entry method of the unit.
func (e *Evaluator) Emit(u *build.Unit) (err error) {
	defer report.CatchErrors(&err)
	defer catchRuntimeErrors(&err)

	e.g = u.Graph
	e.uni = u.Universe
	e.res = u.Result

	e.Result = e.invoke(e.g.Entry, nil, nil)
	return nil
}

// catchRuntimeErrors converts a runtime error panic into an error return.
// Any other panic is passed on.
func catchRuntimeErrors(errPtr *error) {
	if x := recover(); x != nil {
		if rerr, ok := x.(*RuntimeError); ok {
			*errPtr = rerr
			return
		}

		panic(x)
	}
}

// -----------------------------------------------------------------------------

// activation is a running frame: the slots of its locals and carriers, its
// arguments and the carrier its method belongs to.
type activation struct {
	frame *scope.Frame
	slots []Value
	args  []Value
	this  *Object
}

// invoke calls a method of the unit.
func (e *Evaluator) invoke(me *depm.MethodEntity, this *Object, args []Value) Value {
	switch me.Synthetic {
	case depm.SynthRecordInit, depm.SynthLabelInit:
		return e.construct(me, args)
	case depm.SynthLabelFactory:
		return e.construct(e.g.Ctors(e.g.Type(me.Target))[0], args)
	}

	frame, ok := e.res.Frames[me.ID]
	if !ok {
		panic(report.ICE("method `%s` has no resolved frame", me.Name))
	}

	act := &activation{
		frame: frame,
		slots: make([]Value, len(frame.Slots)),
		args:  args,
		this:  this,
	}

	e.enterScope(act, frame.Root)
	v := e.evalStmts(act, me.Body.Stmts)
	if me.ReturnType == e.uni.Builtin("unit") {
		return nil
	}

	return v
}

// construct runs a synthesized constructor.
func (e *Evaluator) construct(ctor *depm.MethodEntity, args []Value) *Object {
	te := e.g.Type(ctor.Owner)
	obj := newObject(te.Type)

	n := 0
	for _, fid := range te.Fields {
		fe := e.g.Field(fid)
		if fe.IsStatic || n == len(args) {
			continue
		}

		obj.set(fe.Name, args[n])
		n++
	}

	return obj
}

// enterScope instantiates the carrier of a closure-bearing scope each time
// the scope is entered and links it to its parent.  Closured arguments are
// moved into the carrier of the root scope.
func (e *Evaluator) enterScope(act *activation, s *scope.Scope) {
	c := s.Carrier()
	if c == nil {
		return
	}

	obj := newObject(c.Entity.Type)
	if c.Parent != nil {
		obj.set(c.ParentField.Name, e.load(act, c.ParentPath()))
	}

	act.slots[c.Slot] = obj

	for _, l := range s.Locals() {
		if storage := l.Storage(); l.IsArg() && storage.Kind == scope.FieldStorage {
			obj.set(storage.Field.Name, act.args[l.ArgIndex])
		}
	}
}

// -----------------------------------------------------------------------------

// load follows an access path.
func (e *Evaluator) load(act *activation, path []scope.Step) Value {
	var cur Value
	for _, step := range path {
		switch step.Kind {
		case scope.StepSlot:
			cur = act.slots[step.Index]
		case scope.StepArg:
			cur = act.args[step.Index]
		case scope.StepThis:
			cur = act.this
		case scope.StepField:
			cur = cur.(*Object).Fields[step.Field.Name]
		case scope.StepConstant:
			cur = e.literal(step.Value)
		}
	}

	return cur
}

// store writes the location at the end of an access path.  Constants are
// never stored.
func (e *Evaluator) store(act *activation, path []scope.Step, v Value) {
	last := path[len(path)-1]
	switch last.Kind {
	case scope.StepSlot:
		act.slots[last.Index] = v
	case scope.StepArg:
		act.args[last.Index] = v
	case scope.StepField:
		e.load(act, path[:len(path)-1]).(*Object).set(last.Field.Name, v)
	case scope.StepConstant:
	default:
		panic(report.ICE("store through a path ending in step %d", last.Kind))
	}
}

func (e *Evaluator) loadLocal(act *activation, acc *scope.Access) Value {
	v := e.load(act, acc.Path())
	if acc.Local.IsByRef {
		return v.(*Ref).get()
	}

	return v
}

func (e *Evaluator) storeLocal(act *activation, acc *scope.Access, v Value) {
	if acc.Local.IsByRef {
		e.load(act, acc.Path()).(*Ref).set(v)
	} else {
		e.store(act, acc.Path(), v)
	}
}

// refTo creates a reference to the storage location of a local.
func (e *Evaluator) refTo(act *activation, acc *scope.Access) *Ref {
	path := acc.Path()
	if acc.Local.IsByRef {
		return e.load(act, path).(*Ref)
	}

	last := path[len(path)-1]
	switch last.Kind {
	case scope.StepSlot:
		return &Ref{
			get: func() Value { return act.slots[last.Index] },
			set: func(v Value) { act.slots[last.Index] = v },
		}
	case scope.StepArg:
		return &Ref{
			get: func() Value { return act.args[last.Index] },
			set: func(v Value) { act.args[last.Index] = v },
		}
	case scope.StepField:
		obj := e.load(act, path[:len(path)-1]).(*Object)
		return &Ref{
			get: func() Value { return obj.Fields[last.Field.Name] },
			set: func(v Value) { obj.set(last.Field.Name, v) },
		}
	}

	panic(report.ICE("reference to local `%s` without a storage location", acc.Local.Name))
}

// -----------------------------------------------------------------------------

// global returns the singleton instance of a global property.
func (e *Evaluator) global(gp *depm.GlobalProperty) *Object {
	if obj, ok := e.globals[gp]; ok {
		return obj
	}

	obj := e.construct(e.g.Ctors(e.g.Type(gp.Label))[0], nil)
	e.globals[gp] = obj
	return obj
}

// callDelegate invokes a delegate value.
func (e *Evaluator) callDelegate(d *Delegate, args []Value, span *report.TextSpan) Value {
	switch {
	case d == nil:
		throw(span, "invoking a null delegate")
	case d.native != nil:
		return d.native(args)
	}

	return e.invoke(d.Method, d.Target, args)
}

// zeroValue returns the default value of a type.
func (e *Evaluator) zeroValue(typ *typing.Type) Value {
	switch {
	case typ.Kind == typing.KindInProgress && typ.IsValue:
		obj := newObject(typ)
		te := e.g.TypeOf(typ)
		for _, fid := range te.Fields {
			if fe := e.g.Field(fid); !fe.IsStatic {
				obj.set(fe.Name, e.zeroValue(fe.Type))
			}
		}

		return obj
	case typ.Kind != typing.KindPlatform || typ.Def.Library != typing.CoreLibrary() || len(typ.Args) > 0:
		return nil
	}

	switch typ.Def.FullName() {
	case "System.Boolean":
		return false
	case "System.Int32":
		return int32(0)
	case "System.Int64":
		return int64(0)
	case "System.Single":
		return float32(0)
	case "System.Double":
		return float64(0)
	case "System.Byte":
		return uint8(0)
	case "System.Char":
		return uint16(0)
	}

	return nil
}

func (e *Evaluator) evalStmts(act *activation, stmts []ast.Expr) Value {
	var v Value
	for _, stmt := range stmts {
		v = e.eval(act, stmt)
	}

	return v
}
