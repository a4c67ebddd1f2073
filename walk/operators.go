package walk

import (
	"keel/ast"
	"keel/report"
	"keel/typing"
)

func (w *Walker) walkUnaryOp(uo *ast.UnaryOp) {
	w.walkExpr(uo.Operand)
	typ := w.mustBeValue(uo.Operand)

	switch uo.Op {
	case "-":
		if !w.uni.IsNumeric(typ) {
			w.error(report.TypeMismatch, uo.Span(), "operator `-` cannot be applied to `%s`", typ)
		}

		w.setType(uo, typ)
	case "!":
		w.mustConvert(uo.Operand, w.boolType())
		w.setType(uo, w.boolType())
	default:
		w.error(report.InvalidOperation, uo.Span(), "unknown unary operator `%s`", uo.Op)
	}
}

func (w *Walker) walkBinaryOp(bo *ast.BinaryOp) {
	w.walkExpr(bo.Lhs)
	lt := w.mustBeValue(bo.Lhs)
	w.walkExpr(bo.Rhs)
	rt := w.mustBeValue(bo.Rhs)

	switch bo.Op {
	case "+":
		str := w.uni.Builtin("string")
		if lt == str || rt == str {
			// concatenation converts the other operand to its string form
			w.setType(bo, str)
			return
		}

		w.setType(bo, w.numericOperands(bo, lt, rt))
	case "-", "*", "/", "%":
		w.setType(bo, w.numericOperands(bo, lt, rt))
	case "<", "<=", ">", ">=":
		w.numericOperands(bo, lt, rt)
		w.setType(bo, w.boolType())
	case "==", "!=":
		common, ok := w.uni.CommonType(lt, rt)
		if !ok {
			w.error(report.TypeMismatch, bo.Span(), "`%s` and `%s` cannot be compared", lt, rt)
		}

		w.mustConvert(bo.Lhs, common)
		w.mustConvert(bo.Rhs, common)
		w.setType(bo, w.boolType())
	case "&&", "||":
		w.mustConvert(bo.Lhs, w.boolType())
		w.mustConvert(bo.Rhs, w.boolType())
		w.setType(bo, w.boolType())
	default:
		w.error(report.InvalidOperation, bo.Span(), "unknown binary operator `%s`", bo.Op)
	}
}

// numericOperands converts both operands of an arithmetic or comparison
// operator to their common numeric type.
func (w *Walker) numericOperands(bo *ast.BinaryOp, lt, rt *typing.Type) *typing.Type {
	if !w.uni.IsNumeric(lt) || !w.uni.IsNumeric(rt) {
		w.error(report.TypeMismatch, bo.Span(), "operator `%s` cannot be applied to `%s` and `%s`", bo.Op, lt, rt)
	}

	common, ok := w.uni.CommonType(lt, rt)
	if !ok {
		w.error(report.TypeMismatch, bo.Span(), "operator `%s` cannot be applied to `%s` and `%s`", bo.Op, lt, rt)
	}

	w.mustConvert(bo.Lhs, common)
	w.mustConvert(bo.Rhs, common)
	return common
}
