package scope

import (
	"keel/ast"
	"keel/common"
	"keel/depm"
	"keel/report"
	"keel/typing"
	"testing"
)

type fixture struct {
	g    *depm.Graph
	tree *Tree
	int  *typing.Type
}

func newFixture(t *testing.T, unroll bool) *fixture {
	uni, err := typing.NewUniverse()
	if err != nil {
		t.Fatalf("failed to create universe: %v", err)
	}

	g := depm.NewGraph(uni, 0)
	return &fixture{
		g:    g,
		tree: NewTree(g, &common.NameGenerator{}, unroll),
		int:  uni.Builtin("int"),
	}
}

func (f *fixture) declare(name string) *Local {
	return f.tree.Declare(name, f.int, false, false, nil)
}

func (f *fixture) exitLambda() *depm.MethodEntity {
	return f.tree.ExitLambda(&ast.Lambda{}, nil, f.int)
}

func catch(fn func()) (err error) {
	defer report.CatchErrors(&err)
	fn()
	return nil
}

func assertPath(t *testing.T, got []Step, want ...StepKind) {
	if len(got) != len(want) {
		t.Fatalf("path has %d steps, want %d: %+v", len(got), len(want), got)
	}

	for i, step := range got {
		if step.Kind != want[i] {
			t.Fatalf("step %d is %d, want %d", i, step.Kind, want[i])
		}
	}
}

func TestLookupDistance(t *testing.T) {
	f := newFixture(t, false)
	f.tree.EnterFunction(f.g.Entry)

	a := f.declare("a")
	f.tree.EnterBlock(nil)
	f.tree.EnterLoop(nil)

	if l, dist := f.tree.Lookup("a"); l != a || dist != 2 {
		t.Fatalf("lookup found %v at distance %d", l, dist)
	}

	shadow := f.declare("a")
	if l, dist := f.tree.Lookup("a"); l != shadow || dist != 0 {
		t.Fatalf("shadowing local not found first")
	}

	if l, dist := f.tree.Lookup("b"); l != nil || dist != -1 {
		t.Fatalf("lookup of an undeclared name succeeded")
	}

	err := catch(func() { f.declare("a") })
	if !report.IsKind(err, report.NameAlreadyDeclared) {
		t.Fatalf("expected a redeclaration error, got %v", err)
	}
}

func TestSameFrameReferenceDoesNotCapture(t *testing.T) {
	f := newFixture(t, false)
	f.tree.EnterFunction(f.g.Entry)

	a := f.declare("a")
	f.tree.EnterLoop(nil)
	f.tree.EnterBlock(nil)
	access := f.tree.Reference(a, nil)
	f.tree.Exit()
	f.tree.Exit()
	frame := f.tree.ExitFunction()

	if a.IsClosured() || f.tree.Current() != nil {
		t.Fatalf("reference within the frame captured the local")
	}

	assertPath(t, access.Path(), StepSlot)
	if access.Distance != 2 {
		t.Fatalf("expected a distance of 2, got %d", access.Distance)
	}

	if len(frame.Slots) != 1 {
		t.Fatalf("expected a single slot, got %d", len(frame.Slots))
	}
}

func TestSimpleCapture(t *testing.T) {
	f := newFixture(t, false)
	root := f.tree.EnterFunction(f.g.Entry)

	a := f.declare("a")
	outer := f.tree.Reference(a, nil)

	lambda := f.tree.EnterLambda(nil)
	inner := f.tree.Reference(a, nil)
	me := f.exitLambda()
	f.tree.ExitFunction()

	if !a.IsClosured() || a.Storage().Kind != FieldStorage {
		t.Fatalf("captured local was not moved into a carrier")
	}

	if outer.Distance != 0 || inner.Distance != 1 {
		t.Fatalf("unexpected distances %d and %d", outer.Distance, inner.Distance)
	}

	c := root.Carrier()
	if c == nil || a.Storage().Carrier != c || c.Slot < 0 {
		t.Fatalf("root scope has no finalized carrier")
	}

	if me.IsStatic || me.Owner != c.Entity.ID || !lambda.Frame.Captures() {
		t.Fatalf("capturing lambda should be an instance method of the carrier")
	}

	assertPath(t, outer.Path(), StepSlot, StepField)
	assertPath(t, inner.Path(), StepThis, StepField)
	assertPath(t, lambda.Frame.TargetPath(), StepSlot)

	if inner.Path()[1].Field != a.Storage().Field || outer.Path()[0].Index != c.Slot {
		t.Fatalf("paths do not locate the carrier field")
	}
}

func TestNestedCapture(t *testing.T) {
	f := newFixture(t, false)
	root := f.tree.EnterFunction(f.g.Entry)
	x := f.declare("x")

	outerLambda := f.tree.EnterLambda(nil)
	innerLambda := f.tree.EnterLambda(nil)
	access := f.tree.Reference(x, nil)
	f.exitLambda()
	f.exitLambda()
	f.tree.ExitFunction()

	assertPath(t, access.Path(), StepThis, StepField, StepField)

	mid := outerLambda.Carrier()
	if mid == nil || mid.Parent != root.Carrier() || access.Path()[1].Field != mid.ParentField {
		t.Fatalf("carrier of the outer lambda is not linked to the root carrier")
	}

	if mid.Entity.ParentCarrier != root.Carrier().Entity.ID {
		t.Fatalf("carrier entity does not record its parent")
	}

	if !outerLambda.Frame.Captures() || !innerLambda.Frame.Captures() {
		t.Fatalf("both lambdas should capture")
	}

	if innerLambda.Frame.This() != mid || outerLambda.Frame.This() != root.Carrier() {
		t.Fatalf("lambdas are methods of the wrong carriers")
	}

	assertPath(t, mid.ParentPath(), StepThis)
	if len(x.Owner.Locals()) != 1 {
		t.Fatalf("carrier creation changed the locals of the scope")
	}
}

func TestLoopCaptureIsPerIteration(t *testing.T) {
	f := newFixture(t, false)
	root := f.tree.EnterFunction(f.g.Entry)

	loop := f.tree.EnterLoop(nil)
	i := f.declare("i")
	f.tree.EnterLambda(nil)
	access := f.tree.Reference(i, nil)
	me := f.exitLambda()
	f.tree.Exit()
	f.tree.ExitFunction()

	if loop.Carrier() == nil || root.Carrier() != nil {
		t.Fatalf("loop variable should be carried by the loop's carrier")
	}

	if me.Owner != loop.Carrier().Entity.ID {
		t.Fatalf("lambda should be a method of the loop carrier")
	}

	assertPath(t, access.Path(), StepThis, StepField)
}

func TestCaptureThroughLoop(t *testing.T) {
	f := newFixture(t, false)
	root := f.tree.EnterFunction(f.g.Entry)
	a := f.declare("a")

	loop := f.tree.EnterLoop(nil)
	f.tree.EnterLambda(nil)
	access := f.tree.Reference(a, nil)
	f.exitLambda()
	f.tree.Exit()
	f.tree.ExitFunction()

	if loop.Carrier() == nil || loop.Carrier().Parent != root.Carrier() {
		t.Fatalf("loop carrier should link to the function carrier")
	}

	assertPath(t, access.Path(), StepThis, StepField, StepField)
	assertPath(t, loop.Carrier().ParentPath(), StepSlot)
}

func TestClosuredIsMonotonic(t *testing.T) {
	f := newFixture(t, false)
	f.tree.EnterFunction(f.g.Entry)
	a := f.declare("a")

	f.tree.EnterLambda(nil)
	f.tree.Reference(a, nil)
	f.exitLambda()

	storage := a.Storage()
	f.tree.EnterLambda(nil)
	f.tree.Reference(a, nil)
	f.exitLambda()
	f.tree.Reference(a, nil)
	f.tree.ExitFunction()

	if !a.IsClosured() || a.Storage() != storage {
		t.Fatalf("storage of a closured local changed")
	}

	if fields := f.g.Type(storage.Carrier.Entity.ID).Fields; len(fields) != 1 {
		t.Fatalf("local was given %d carrier fields", len(fields))
	}
}

func TestShadowedCaptures(t *testing.T) {
	f := newFixture(t, false)
	root := f.tree.EnterFunction(f.g.Entry)

	var locals []*Local
	for n := 0; n < 2; n++ {
		f.tree.EnterBlock(nil)
		l := f.declare("a")
		f.tree.EnterLambda(nil)
		f.tree.Reference(l, nil)
		f.exitLambda()
		f.tree.Exit()
		locals = append(locals, l)
	}
	f.tree.ExitFunction()

	if locals[0].Storage().Field == locals[1].Storage().Field {
		t.Fatalf("locals of sibling blocks share a carrier field")
	}

	if locals[0].Storage().Carrier != root.Carrier() {
		t.Fatalf("locals of plain blocks should be carried by the function carrier")
	}
}

func TestCaptureErrors(t *testing.T) {
	f := newFixture(t, false)
	f.tree.EnterFunction(f.g.Entry)

	ref := f.tree.DeclareArg("r", f.int, true, 0, nil)
	tmp := f.tree.DeclareImplicit(f.int)

	f.tree.EnterBlock(nil)
	gone := f.declare("gone")
	f.tree.Exit()

	f.tree.EnterLambda(nil)

	err := catch(func() { f.tree.Reference(ref, nil) })
	if !report.IsKind(err, report.ClosureViolation) {
		t.Fatalf("capturing a by-reference argument should be a closure violation, got %v", err)
	}

	err = catch(func() { f.tree.Reference(tmp, nil) })
	if !report.IsInternal(err) {
		t.Fatalf("capturing an implicit local should be an internal error, got %v", err)
	}

	err = catch(func() { f.tree.Reference(gone, nil) })
	if !report.IsInternal(err) {
		t.Fatalf("capturing a local of a finalized scope should be an internal error, got %v", err)
	}

	err = catch(func() { f.declare("_") })
	if !report.IsKind(err, report.ReservedNameUsed) {
		t.Fatalf("expected a reserved name error, got %v", err)
	}
}

func TestConstantExemption(t *testing.T) {
	lit := &ast.Literal{Kind: ast.LitInt, Value: "5"}

	for _, unroll := range []bool{true, false} {
		f := newFixture(t, unroll)
		f.tree.EnterFunction(f.g.Entry)
		c := f.tree.DeclareConstant("c", f.int, lit, nil)

		f.tree.EnterLambda(nil)
		access := f.tree.Reference(c, nil)
		f.exitLambda()
		f.tree.ExitFunction()

		if unroll {
			if c.IsClosured() {
				t.Fatalf("unrolled constant was captured")
			}

			assertPath(t, access.Path(), StepConstant)
		} else if !c.IsClosured() {
			t.Fatalf("constant should be captured when constants are not unrolled")
		}
	}
}

func TestArgumentStorage(t *testing.T) {
	f := newFixture(t, false)
	f.tree.EnterFunction(f.g.Entry)

	plain := f.tree.DeclareArg("p", f.int, false, 0, nil)
	captured := f.tree.DeclareArg("q", f.int, false, 1, nil)

	f.tree.EnterLambda(nil)
	f.tree.Reference(captured, nil)
	f.exitLambda()
	access := f.tree.Reference(plain, nil)
	f.tree.ExitFunction()

	assertPath(t, access.Path(), StepArg)
	if captured.Storage().Kind != FieldStorage || captured.ArgIndex != 1 {
		t.Fatalf("captured argument should be moved into the carrier")
	}
}
