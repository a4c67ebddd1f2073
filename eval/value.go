package eval

import (
	"fmt"
	"keel/common"
	"keel/depm"
	"keel/report"
	"keel/typing"
	"strconv"
	"strings"
)

// Value is a runtime value.  Primitives are represented by the Go type of
// the same width: int is int32, long is int64, float is float32, double is
// float64, byte is uint8 and char is uint16.  Null and unit are nil.
type Value interface{}

// Object is an instance of a user type, a closure carrier or a platform type
// without a native representation.  Fields are keyed by name.
type Object struct {
	Type   *typing.Type
	Fields map[string]Value

	// order lists the field names in the order they were first set.
	order []string
}

func newObject(typ *typing.Type) *Object {
	return &Object{Type: typ, Fields: make(map[string]Value)}
}

func (obj *Object) set(name string, v Value) {
	if _, ok := obj.Fields[name]; !ok {
		obj.order = append(obj.order, name)
	}

	obj.Fields[name] = v
}

// Delegate is a callable value: a method bound to an optional target or a
// native function.
type Delegate struct {
	Type   *typing.Type
	Method *depm.MethodEntity
	Target *Object

	native func(args []Value) Value
}

// Ref is a reference to a storage location passed to a by-reference
// argument.
type Ref struct {
	get func() Value
	set func(Value)
}

// List is an instance of the generic list type.
type List struct {
	Items []Value
}

// Array is a fixed length array.
type Array struct {
	Elems []Value
}

// Sequence is an evaluated lazy sequence.
type Sequence struct {
	Items []Value
}

// Dictionary is an instance of the generic dictionary type.  Keys are kept in
// insertion order.
type Dictionary struct {
	keys   []Value
	values map[Value]Value
}

// RuntimeError is an error raised while evaluating a unit: a failed
// conversion or an out of range index, for example.
type RuntimeError struct {
	Message string
	Span    *report.TextSpan
}

func (re *RuntimeError) Error() string {
	if re.Span == nil {
		return "runtime error: " + re.Message
	}

	return fmt.Sprintf("runtime error at %s: %s", re.Span, re.Message)
}

func throw(span *report.TextSpan, msg string, args ...interface{}) {
	panic(&RuntimeError{Message: fmt.Sprintf(msg, args...), Span: span})
}

// -----------------------------------------------------------------------------

// items returns the elements of any enumerable value.
func items(v Value) []Value {
	switch s := v.(type) {
	case *List:
		return s.Items
	case *Array:
		return s.Elems
	case *Sequence:
		return s.Items
	case nil:
		throw(nil, "enumerating null")
	}

	panic(report.ICE("value of type %T is not enumerable", v))
}

// convert converts v to the type to.  Only numeric widenings change the
// representation of a value.
func convert(v Value, to *typing.Type) Value {
	if to.Kind != typing.KindPlatform || to.Def.Library != typing.CoreLibrary() {
		return v
	}

	switch to.Def.FullName() {
	case "System.Int32":
		switch n := v.(type) {
		case uint8:
			return int32(n)
		case uint16:
			return int32(n)
		case int64:
			return int32(n)
		}
	case "System.Int64":
		switch n := v.(type) {
		case uint8:
			return int64(n)
		case uint16:
			return int64(n)
		case int32:
			return int64(n)
		}
	case "System.Single":
		switch n := v.(type) {
		case uint8:
			return float32(n)
		case uint16:
			return float32(n)
		case int32:
			return float32(n)
		case int64:
			return float32(n)
		}
	case "System.Double":
		switch n := v.(type) {
		case uint8:
			return float64(n)
		case uint16:
			return float64(n)
		case int32:
			return float64(n)
		case int64:
			return float64(n)
		case float32:
			return float64(n)
		}
	}

	return v
}

// valuesEqual compares two values: records compare by their fields, every
// other object by identity.
func valuesEqual(a, b Value) bool {
	oa, aok := a.(*Object)
	ob, bok := b.(*Object)
	if aok && bok && oa.Type.IsValue && oa.Type == ob.Type {
		for name, fv := range oa.Fields {
			if !valuesEqual(fv, ob.Fields[name]) {
				return false
			}
		}

		return true
	}

	return a == b
}

// FormatValue returns the string form of a runtime value as it is printed
// by the console.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}

		return "False"
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return string(rune(x))
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case *Object:
		return formatObject(x)
	case *Delegate:
		return x.Type.String()
	case *List:
		return "System.Collections.Generic.List"
	case *strings.Builder:
		return x.String()
	}

	return fmt.Sprint(v)
}

// formatObject formats records as `Name { A = 1, B = 2 }`, tagged labels as
// `Name(tag)` and everything else as its type name.
func formatObject(obj *Object) string {
	if !obj.Type.IsValue {
		if tag, ok := obj.Fields[common.TagFieldName]; ok && len(obj.Fields) == 1 {
			return fmt.Sprintf("%s(%s)", obj.Type, FormatValue(tag))
		}

		return obj.Type.String()
	}

	sb := strings.Builder{}
	sb.WriteString(obj.Type.String())
	sb.WriteString(" {")
	for i, name := range obj.order {
		if i > 0 {
			sb.WriteRune(',')
		}

		sb.WriteString(fmt.Sprintf(" %s = %s", name, FormatValue(obj.Fields[name])))
	}
	sb.WriteString(" }")

	return sb.String()
}
