package typing

import (
	"fmt"
	"math"
	"sync"
)

// CoreLibraryName is the name of the built-in core library.
const CoreLibraryName = "corlib"

// aliases maps the built-in type aliases to their full platform names.
var aliases = map[string]string{
	"object": "System.Object",
	"bool":   "System.Boolean",
	"int":    "System.Int32",
	"long":   "System.Int64",
	"float":  "System.Single",
	"double": "System.Double",
	"string": "System.String",
	"char":   "System.Char",
	"byte":   "System.Byte",
	"unit":   "System.Void",
}

// aliasesByName is the inverse of aliases.
var aliasesByName = func() map[string]string {
	m := make(map[string]string, len(aliases))
	for alias, name := range aliases {
		m[name] = alias
	}
	return m
}()

// IsTypeAlias returns whether name is a built-in type alias.
func IsTypeAlias(name string) bool {
	_, ok := aliases[name]
	return ok
}

var (
	coreLib     *Library
	coreLibOnce sync.Once
)

// CoreLibrary returns the built-in core library.  The library is shared by
// all universes and is never mutated after it is built.
func CoreLibrary() *Library {
	coreLibOnce.Do(func() {
		lib, err := NewLibrary(
			CoreLibraryName,
			[]string{"System", "System.Collections.Generic", "System.Text", "System.Linq"},
			coreTypes()...,
		)
		if err != nil {
			panic(err)
		}

		coreLib = lib
	})

	return coreLib
}

func coreTypes() []*PlatformType {
	types := []*PlatformType{
		{
			Namespace: "System",
			Name:      "Object",
			Ctors:     []*MethodInfo{ctor("Object.New")},
			Methods: []*MethodInfo{
				virtualMethod("ToString", "string", "Object.ToString"),
				virtualMethod("Equals", "bool", "Object.Equals", "object"),
				virtualMethod("GetHashCode", "int", "Object.GetHashCode"),
			},
		},
		primitive("Void"),
		primitive("Boolean"),
		withMembers(primitive("Int32"),
			[]*FieldInfo{
				literalField("MaxValue", "int", int64(math.MaxInt32)),
				literalField("MinValue", "int", int64(math.MinInt32)),
			},
			staticMethod("Parse", "int", "Int32.Parse", "string"),
		),
		withMembers(primitive("Int64"),
			[]*FieldInfo{
				literalField("MaxValue", "long", int64(math.MaxInt64)),
				literalField("MinValue", "long", int64(math.MinInt64)),
			},
			staticMethod("Parse", "long", "Int64.Parse", "string"),
		),
		primitive("Single"),
		withMembers(primitive("Double"), nil,
			staticMethod("Parse", "double", "Double.Parse", "string"),
		),
		primitive("Char"),
		primitive("Byte"),
		{
			Namespace: "System",
			Name:      "String",
			IsSealed:  true,
			Parent:    "object",
			Properties: []*PropertyInfo{
				getter("Length", "int", "String.Length"),
			},
			Methods: []*MethodInfo{
				staticMethod("Concat", "string", "String.Concat", "string", "string"),
				staticMethod("IsNullOrEmpty", "bool", "String.IsNullOrEmpty", "string"),
				method("ToUpper", "string", "String.ToUpper"),
				method("ToLower", "string", "String.ToLower"),
				method("Trim", "string", "String.Trim"),
				method("Substring", "string", "String.Substring", "int", "int"),
				method("Contains", "bool", "String.Contains", "string"),
				virtualMethod("ToString", "string", "Object.ToString"),
			},
		},
		{
			Namespace:  "System",
			Name:       "Nullable`1",
			IsValue:    true,
			IsSealed:   true,
			Parent:     "object",
			TypeParams: []string{"T"},
			Ctors:      []*MethodInfo{ctor("Nullable.New", "T")},
			Properties: []*PropertyInfo{
				getter("HasValue", "bool", "Nullable.HasValue"),
				getter("Value", "T", "Nullable.Value"),
			},
		},
		{
			Namespace: "System",
			Name:      "Array",
			Parent:    "object",
			Properties: []*PropertyInfo{
				getter("Length", "int", "Array.Length"),
			},
		},
		{
			Namespace: "System",
			Name:      "Math",
			IsSealed:  true,
			Parent:    "object",
			Fields: []*FieldInfo{
				literalField("PI", "double", math.Pi),
			},
			Methods: []*MethodInfo{
				staticMethod("Max", "int", "Math.Max", "int", "int"),
				staticMethod("Max", "double", "Math.Max", "double", "double"),
				staticMethod("Min", "int", "Math.Min", "int", "int"),
				staticMethod("Min", "double", "Math.Min", "double", "double"),
				staticMethod("Abs", "int", "Math.Abs", "int"),
				staticMethod("Abs", "double", "Math.Abs", "double"),
				staticMethod("Sqrt", "double", "Math.Sqrt", "double"),
				staticMethod("Pow", "double", "Math.Pow", "double", "double"),
			},
		},
		{
			Namespace: "System",
			Name:      "Console",
			IsSealed:  true,
			Parent:    "object",
			Methods: []*MethodInfo{
				staticMethod("WriteLine", "", "Console.WriteLine", "string"),
				staticMethod("WriteLine", "", "Console.WriteLine", "object"),
				staticMethod("Write", "", "Console.Write", "string"),
			},
		},
		{
			Namespace:   "System.Collections.Generic",
			Name:        "IEnumerable`1",
			IsInterface: true,
			TypeParams:  []string{"T"},
		},
		{
			Namespace:  "System.Collections.Generic",
			Name:       "List`1",
			Parent:     "object",
			Interfaces: []string{"IEnumerable<T>"},
			TypeParams: []string{"T"},
			Ctors:      []*MethodInfo{ctor("List.New")},
			Properties: []*PropertyInfo{
				getter("Count", "int", "List.Count"),
			},
			Methods: []*MethodInfo{
				method("Add", "", "List.Add", "T"),
				method("Contains", "bool", "List.Contains", "T"),
				method("Clear", "", "List.Clear"),
				method("RemoveAt", "", "List.RemoveAt", "int"),
				method("get_Item", "T", "List.GetItem", "int"),
				method("set_Item", "", "List.SetItem", "int", "T"),
			},
		},
		{
			Namespace:  "System.Collections.Generic",
			Name:       "Dictionary`2",
			Parent:     "object",
			TypeParams: []string{"TKey", "TValue"},
			Ctors:      []*MethodInfo{ctor("Dictionary.New")},
			Properties: []*PropertyInfo{
				getter("Count", "int", "Dictionary.Count"),
			},
			Methods: []*MethodInfo{
				method("Add", "", "Dictionary.Add", "TKey", "TValue"),
				method("ContainsKey", "bool", "Dictionary.ContainsKey", "TKey"),
				method("get_Item", "TValue", "Dictionary.GetItem", "TKey"),
				method("set_Item", "", "Dictionary.SetItem", "TKey", "TValue"),
			},
		},
		{
			Namespace: "System.Text",
			Name:      "StringBuilder",
			IsSealed:  true,
			Parent:    "object",
			Ctors:     []*MethodInfo{ctor("StringBuilder.New")},
			Properties: []*PropertyInfo{
				getter("Length", "int", "StringBuilder.Length"),
			},
			Methods: []*MethodInfo{
				method("Append", "StringBuilder", "StringBuilder.Append", "string"),
				method("Append", "StringBuilder", "StringBuilder.Append", "object"),
				virtualMethod("ToString", "string", "StringBuilder.ToString"),
			},
		},
		{
			Namespace: "System.Linq",
			Name:      "Enumerable",
			IsSealed:  true,
			Parent:    "object",
			Methods: []*MethodInfo{
				extension("Count", []string{"T"}, "int", "Enumerable.Count", "IEnumerable<T>"),
				extension("Sum", nil, "int", "Enumerable.Sum", "IEnumerable<int>"),
				extension("First", []string{"T"}, "T", "Enumerable.First", "IEnumerable<T>"),
				extension("Contains", []string{"T"}, "bool", "Enumerable.Contains", "IEnumerable<T>", "T"),
				extension("ToList", []string{"T"}, "List<T>", "Enumerable.ToList", "IEnumerable<T>"),
				extension("ToArray", []string{"T"}, "T[]", "Enumerable.ToArray", "IEnumerable<T>"),
				extension("Where", []string{"T"}, "IEnumerable<T>", "Enumerable.Where", "IEnumerable<T>", "Func<T, bool>"),
				extension("Select", []string{"T", "TResult"}, "IEnumerable<TResult>", "Enumerable.Select", "IEnumerable<T>", "Func<T, TResult>"),
				genericStatic("Empty", []string{"T"}, "IEnumerable<T>", "Enumerable.Empty"),
				staticMethod("Range", "IEnumerable<int>", "Enumerable.Range", "int", "int"),
			},
		},
	}

	return append(types, delegateTypes()...)
}

// MaxDelegateArity is the largest number of arguments a delegate can take.
const MaxDelegateArity = 4

// delegateTypes builds the Func and Action delegate families.
func delegateTypes() []*PlatformType {
	var types []*PlatformType

	for arity := 0; arity <= MaxDelegateArity; arity++ {
		var params []string
		for i := 1; i <= arity; i++ {
			params = append(params, fmt.Sprintf("T%d", i))
		}

		funcParams := append(append([]string(nil), params...), "TResult")
		types = append(types, &PlatformType{
			Namespace:  "System",
			Name:       WithArity("Func", len(funcParams)),
			IsSealed:   true,
			IsDelegate: true,
			Parent:     "object",
			TypeParams: funcParams,
			Methods:    []*MethodInfo{method("Invoke", "TResult", "Delegate.Invoke", params...)},
		}, &PlatformType{
			Namespace:  "System",
			Name:       WithArity("Action", arity),
			IsSealed:   true,
			IsDelegate: true,
			Parent:     "object",
			TypeParams: params,
			Methods:    []*MethodInfo{method("Invoke", "", "Delegate.Invoke", params...)},
		})
	}

	return types
}

// -----------------------------------------------------------------------------

func primitive(name string) *PlatformType {
	return &PlatformType{
		Namespace: "System",
		Name:      name,
		IsValue:   true,
		IsSealed:  true,
		Parent:    "object",
	}
}

func withMembers(pt *PlatformType, fields []*FieldInfo, methods ...*MethodInfo) *PlatformType {
	pt.Fields = append(pt.Fields, fields...)
	pt.Methods = append(pt.Methods, methods...)
	return pt
}

func params(types []string) []*ParamInfo {
	ps := make([]*ParamInfo, len(types))
	for i, typ := range types {
		ps[i] = &ParamInfo{Name: fmt.Sprintf("arg%d", i), Type: typ}
	}

	return ps
}

func ctor(intrinsic string, paramTypes ...string) *MethodInfo {
	return &MethodInfo{Name: CtorName, Params: params(paramTypes), Intrinsic: intrinsic}
}

func method(name, returns, intrinsic string, paramTypes ...string) *MethodInfo {
	return &MethodInfo{Name: name, Params: params(paramTypes), Returns: returns, Intrinsic: intrinsic}
}

func virtualMethod(name, returns, intrinsic string, paramTypes ...string) *MethodInfo {
	m := method(name, returns, intrinsic, paramTypes...)
	m.Virtual = true
	return m
}

func staticMethod(name, returns, intrinsic string, paramTypes ...string) *MethodInfo {
	m := method(name, returns, intrinsic, paramTypes...)
	m.Static = true
	return m
}

func genericStatic(name string, typeParams []string, returns, intrinsic string, paramTypes ...string) *MethodInfo {
	m := staticMethod(name, returns, intrinsic, paramTypes...)
	m.TypeParams = typeParams
	return m
}

func extension(name string, typeParams []string, returns, intrinsic string, paramTypes ...string) *MethodInfo {
	m := genericStatic(name, typeParams, returns, intrinsic, paramTypes...)
	m.Extension = true
	return m
}

func getter(name, typ, intrinsic string) *PropertyInfo {
	return &PropertyInfo{Name: name, Type: typ, CanGet: true, Intrinsic: intrinsic}
}

func literalField(name, typ string, value interface{}) *FieldInfo {
	return &FieldInfo{Name: name, Type: typ, Static: true, Literal: true, Value: value}
}
