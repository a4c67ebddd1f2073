package walk

import (
	"keel/ast"
	"keel/report"
	"keel/typing"
)

// mustConvert asserts that the value of expr can be implicitly converted to
// the type expected and records the conversion.
func (w *Walker) mustConvert(expr ast.Expr, expected *typing.Type) {
	actual := w.typeOf(expr)
	if actual == expected {
		return
	}

	if !w.uni.IsAssignable(expected, actual) {
		w.error(report.TypeMismatch, expr.Span(), "type mismatch: expected `%s` but got `%s`", expected, actual)
	}

	w.result.Conversions[expr] = expected
}

// mustBeValue asserts that expr yields a value that can be stored.
func (w *Walker) mustBeValue(expr ast.Expr) *typing.Type {
	typ := w.typeOf(expr)
	switch {
	case typ == w.unitType():
		w.error(report.TypeMismatch, expr.Span(), "expression yields no value")
	case typ.Kind == typing.KindRef:
		w.error(report.TypeMismatch, expr.Span(), "by-reference arguments can only be passed to functions")
	}

	return typ
}

// mustUnify computes the type both branches of a conditional can be converted
// to and records their conversions.
func (w *Walker) mustUnify(a, b ast.Expr, span *report.TextSpan) *typing.Type {
	at, bt := w.typeOf(a), w.typeOf(b)
	if at == w.unitType() || bt == w.unitType() {
		return w.unitType()
	}

	common, ok := w.uni.CommonType(at, bt)
	if !ok {
		w.error(report.TypeMismatch, span, "branches yield unrelated types `%s` and `%s`", at, bt)
	}

	if common.Kind == typing.KindNull {
		w.error(report.TypeMismatch, span, "unable to infer type for null")
	}

	w.mustConvert(a, common)
	w.mustConvert(b, common)
	return common
}
