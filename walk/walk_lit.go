package walk

import (
	"keel/ast"
	"keel/report"
	"math"
	"strconv"
)

// walkLiteral types a literal.  Integer literals that do not fit in an int
// are longs.
func (w *Walker) walkLiteral(lit *ast.Literal) {
	switch lit.Kind {
	case ast.LitInt:
		n, err := strconv.ParseInt(lit.Value, 10, 64)
		if err != nil {
			w.error(report.TypeMismatch, lit.Span(), "invalid integer literal `%s`", lit.Value)
		}

		if n < math.MinInt32 || n > math.MaxInt32 {
			w.setType(lit, w.uni.Builtin("long"))
		} else {
			w.setType(lit, w.uni.Builtin("int"))
		}
	case ast.LitFloat:
		if _, err := strconv.ParseFloat(lit.Value, 64); err != nil {
			w.error(report.TypeMismatch, lit.Span(), "invalid float literal `%s`", lit.Value)
		}

		w.setType(lit, w.uni.Builtin("double"))
	case ast.LitString:
		w.setType(lit, w.uni.Builtin("string"))
	case ast.LitBool:
		if lit.Value != "true" && lit.Value != "false" {
			w.error(report.TypeMismatch, lit.Span(), "invalid bool literal `%s`", lit.Value)
		}

		w.setType(lit, w.boolType())
	case ast.LitNull:
		w.setType(lit, w.uni.Null())
	case ast.LitUnit:
		w.setType(lit, w.unitType())
	default:
		panic(report.ICE("unknown literal kind %d", lit.Kind))
	}
}
