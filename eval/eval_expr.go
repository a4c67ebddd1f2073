package eval

import (
	"keel/ast"
	"keel/report"
	"math"
	"strconv"
)

// eval evaluates an expression and applies its recorded conversion.
func (e *Evaluator) eval(act *activation, expr ast.Expr) Value {
	v := e.evalExpr(act, expr)
	if to, ok := e.res.Conversions[expr]; ok {
		v = convert(v, to)
	}

	return v
}

func (e *Evaluator) evalExpr(act *activation, expr ast.Expr) Value {
	switch v := expr.(type) {
	case *ast.Block:
		e.enterScope(act, e.res.Scopes[v])
		return e.evalStmts(act, v.Stmts)
	case *ast.VarDef:
		e.storeLocal(act, e.res.Accesses[v], e.eval(act, v.Value))
	case *ast.Assign:
		e.storeLocal(act, e.res.Accesses[v], e.eval(act, v.Value))
	case *ast.Identifier:
		return e.evalIdentifier(act, v)
	case *ast.Literal:
		return e.literal(v)
	case *ast.UnaryOp:
		return e.evalUnaryOp(act, v)
	case *ast.BinaryOp:
		return e.evalBinaryOp(act, v)
	case *ast.IfExpr:
		if e.eval(act, v.Cond).(bool) {
			return e.eval(act, v.Then)
		} else if v.Else != nil {
			return e.eval(act, v.Else)
		}
	case *ast.WhileLoop:
		loop := e.res.Scopes[v]
		for e.eval(act, v.Cond).(bool) {
			e.enterScope(act, loop)
			e.evalStmts(act, v.Body.Stmts)
		}
	case *ast.ForLoop:
		e.evalFor(act, v)
	case *ast.Lambda:
		frame := e.res.Lambdas[v]
		d := &Delegate{Type: e.res.Types[v], Method: frame.Method}
		if path := frame.TargetPath(); path != nil {
			d.Target = e.load(act, path).(*Object)
		}

		return d
	case *ast.Call:
		return e.evalCall(act, v)
	case *ast.MemberAccess:
		return e.evalMemberAccess(act, v)
	case *ast.MemberAssign:
		e.evalMemberAssign(act, v)
	case *ast.MemberCall:
		return e.evalMemberCall(act, v)
	case *ast.NewExpr:
		return e.evalNew(act, v)
	case *ast.DefaultExpr:
		return e.zeroValue(e.res.Types[v])
	case *ast.RefArg:
		return e.refTo(act, e.res.Accesses[v])
	default:
		panic(report.ICE("evaluation not implemented for %T", expr))
	}

	return nil
}

func (e *Evaluator) evalIdentifier(act *activation, id *ast.Identifier) Value {
	if acc, ok := e.res.Accesses[id]; ok {
		return e.loadLocal(act, acc)
	}

	if gp, ok := e.res.Globals[id]; ok {
		return e.global(gp)
	}

	cand := e.res.Members[id]
	return &Delegate{Type: e.res.Types[id], Method: cand.EntityMethod}
}

// evalFor runs a counting loop.  The loop scope is entered anew for every
// iteration so each iteration binds a fresh loop variable.
func (e *Evaluator) evalFor(act *activation, fl *ast.ForLoop) {
	info := e.res.Loops[fl]
	loop := e.res.Scopes[fl]

	e.storeLocal(act, info.Counter, e.eval(act, fl.From))
	e.storeLocal(act, info.Bound, e.eval(act, fl.To))

	for {
		i := e.loadLocal(act, info.Counter).(int32)
		if i > e.loadLocal(act, info.Bound).(int32) {
			break
		}

		e.enterScope(act, loop)
		e.storeLocal(act, info.Var, i)
		e.evalStmts(act, fl.Body.Stmts)

		e.storeLocal(act, info.Counter, i+1)
	}
}

// literal materializes the value of a literal.
func (e *Evaluator) literal(lit *ast.Literal) Value {
	switch lit.Kind {
	case ast.LitInt:
		n, _ := strconv.ParseInt(lit.Value, 10, 64)
		if n < math.MinInt32 || n > math.MaxInt32 {
			return n
		}

		return int32(n)
	case ast.LitFloat:
		f, _ := strconv.ParseFloat(lit.Value, 64)
		return f
	case ast.LitString:
		return lit.Value
	case ast.LitBool:
		return lit.Value == "true"
	}

	return nil
}

// -----------------------------------------------------------------------------

func (e *Evaluator) evalUnaryOp(act *activation, uo *ast.UnaryOp) Value {
	v := e.eval(act, uo.Operand)
	if uo.Op == "!" {
		return !v.(bool)
	}

	switch n := v.(type) {
	case int32:
		return -n
	case int64:
		return -n
	case float32:
		return -n
	case float64:
		return -n
	case uint8:
		return -n
	}

	panic(report.ICE("negation of %T", v))
}

func (e *Evaluator) evalBinaryOp(act *activation, bo *ast.BinaryOp) Value {
	switch bo.Op {
	case "&&":
		return e.eval(act, bo.Lhs).(bool) && e.eval(act, bo.Rhs).(bool)
	case "||":
		return e.eval(act, bo.Lhs).(bool) || e.eval(act, bo.Rhs).(bool)
	}

	l := e.eval(act, bo.Lhs)
	r := e.eval(act, bo.Rhs)

	switch bo.Op {
	case "==":
		return valuesEqual(l, r)
	case "!=":
		return !valuesEqual(l, r)
	case "+":
		if e.res.Types[bo] == e.uni.Builtin("string") {
			return FormatValue(l) + FormatValue(r)
		}
	}

	return arith(bo, l, r)
}

// arith applies an arithmetic or comparison operator to two numbers of the
// same representation.
func arith(bo *ast.BinaryOp, l, r Value) Value {
	switch a := l.(type) {
	case int32:
		b := r.(int32)
		if (bo.Op == "/" || bo.Op == "%") && b == 0 {
			throw(bo.Span(), "division by zero")
		}

		return intOp(bo.Op, int64(a), int64(b), func(n int64) Value { return int32(n) })
	case int64:
		b := r.(int64)
		if (bo.Op == "/" || bo.Op == "%") && b == 0 {
			throw(bo.Span(), "division by zero")
		}

		return intOp(bo.Op, a, b, func(n int64) Value { return n })
	case uint8:
		b := r.(uint8)
		if (bo.Op == "/" || bo.Op == "%") && b == 0 {
			throw(bo.Span(), "division by zero")
		}

		return intOp(bo.Op, int64(a), int64(b), func(n int64) Value { return uint8(n) })
	case float32:
		return floatOp(bo.Op, float64(a), float64(r.(float32)), func(f float64) Value { return float32(f) })
	case float64:
		return floatOp(bo.Op, a, r.(float64), func(f float64) Value { return f })
	}

	panic(report.ICE("operator `%s` applied to %T", bo.Op, l))
}

func intOp(op string, a, b int64, wrap func(int64) Value) Value {
	switch op {
	case "+":
		return wrap(a + b)
	case "-":
		return wrap(a - b)
	case "*":
		return wrap(a * b)
	case "/":
		return wrap(a / b)
	case "%":
		return wrap(a % b)
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}

	panic(report.ICE("unknown operator `%s`", op))
}

func floatOp(op string, a, b float64, wrap func(float64) Value) Value {
	switch op {
	case "+":
		return wrap(a + b)
	case "-":
		return wrap(a - b)
	case "*":
		return wrap(a * b)
	case "/":
		return wrap(a / b)
	case "%":
		return wrap(math.Mod(a, b))
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}

	panic(report.ICE("unknown operator `%s`", op))
}
