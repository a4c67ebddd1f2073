package typing

// Incompatible is the distance between two types that do not convert.
const Incompatible = int(^uint32(0) >> 1)

// Distances assigned to the implicit conversions.  Any widening of a
// primitive is cheaper than boxing so that numeric overloads are preferred to
// overloads taking object.
const (
	InterfaceDistance = 1
	NullDistance      = 1
	NullableDistance  = 1
	BoxingDistance    = 8
)

// widenings is the table of implicit numeric widenings and their distances.
var widenings = map[string]map[string]int{
	"System.Byte": {
		"System.Int32":  1,
		"System.Int64":  2,
		"System.Single": 3,
		"System.Double": 4,
	},
	"System.Char": {
		"System.Int32":  1,
		"System.Int64":  2,
		"System.Single": 3,
		"System.Double": 4,
	},
	"System.Int32": {
		"System.Int64":  1,
		"System.Single": 2,
		"System.Double": 3,
	},
	"System.Int64": {
		"System.Single": 1,
		"System.Double": 2,
	},
	"System.Single": {
		"System.Double": 1,
	},
}

// Distance computes the cost of implicitly converting a value of type from to
// the type to: 0 for identical types, a small positive number for widening,
// inheritance, interface conformance, nullable lifting and boxing, and
// Incompatible if no implicit conversion exists.
func (u *Universe) Distance(to, from *Type) int {
	if to == from {
		return 0
	}

	switch {
	case to.Kind == KindRef || from.Kind == KindRef:
		// by-reference arguments must match exactly
		return Incompatible
	case from.Kind == KindNull:
		if !to.IsValue || u.IsNullable(to) {
			return NullDistance
		}

		return Incompatible
	case to.Kind == KindTypeParam || from.Kind == KindTypeParam:
		return Incompatible
	}

	if from.Kind == KindPlatform && to.Kind == KindPlatform && len(from.Args) == 0 && len(to.Args) == 0 {
		if dist, ok := widenings[from.Def.FullName()][to.Def.FullName()]; ok && from.Def.Library == CoreLibrary() {
			return dist
		}
	}

	if u.IsNullable(to) && !u.IsNullable(from) {
		if dist := u.Distance(to.Args[0], from); dist != Incompatible {
			return dist + NullableDistance
		}

		return Incompatible
	}

	if to.IsInterface() {
		if containsType(u.Interfaces(from), to) {
			return InterfaceDistance
		}

		return Incompatible
	}

	if from.IsValue {
		if to == u.Builtin("object") {
			return BoxingDistance
		}

		return Incompatible
	}

	// walk the inheritance chain
	dist := 0
	for t := from; t != nil; t = u.Base(t) {
		if t == to {
			return dist
		}

		dist++
	}

	return Incompatible
}

// IsAssignable returns whether a value of type from can be implicitly
// converted to the type to.
func (u *Universe) IsAssignable(to, from *Type) bool {
	return u.Distance(to, from) != Incompatible
}

// CommonType returns the type both a and b can be implicitly converted to, if
// there is one: the closer of the two types, or object for unrelated reference
// types.
func (u *Universe) CommonType(a, b *Type) (*Type, bool) {
	if a == b {
		return a, true
	}

	ab, ba := u.Distance(a, b), u.Distance(b, a)
	if ab != Incompatible && (ba == Incompatible || ab <= ba) {
		return a, true
	} else if ba != Incompatible {
		return b, true
	}

	// look for a common parent of two reference types
	if !a.IsValue && !b.IsValue && a.Kind != KindNull && b.Kind != KindNull {
		for t := u.Base(a); t != nil; t = u.Base(t) {
			if u.IsAssignable(t, b) {
				return t, true
			}
		}
	}

	return nil, false
}

// IsNumeric returns whether t is a numeric primitive type.
func (u *Universe) IsNumeric(t *Type) bool {
	if t.Kind != KindPlatform || t.Def.Library != CoreLibrary() {
		return false
	}

	switch t.Def.FullName() {
	case "System.Byte", "System.Int32", "System.Int64", "System.Single", "System.Double":
		return true
	}

	return false
}
