package typing

import (
	"fmt"
	"keel/report"
	"strings"
)

// LocalTypes is the source of in-progress types consulted by the universe
// before any platform library.  It is implemented by the entity graph.
type LocalTypes interface {
	// LookupLocalType looks up an in-progress type by its bare name.
	LookupLocalType(name string) (*Type, bool)
}

// Universe is the set of all types resolvable by signature: the types of the
// loaded platform libraries merged with the in-progress types of the current
// compilation unit.  All descriptors are interned so that equal types are
// identical pointers, and every successful resolution is cached by its exact
// signature string for the lifetime of the universe.
type Universe struct {
	libraries  []*Library
	namespaces []string
	local      LocalTypes

	// cache maps exact signature strings to their resolved descriptors.
	cache map[string]*Type

	// interned maps descriptor keys to descriptors.
	interned map[string]*Type

	bases      map[*Type]*Type
	interfaces map[*Type][]*Type
	methodSigs map[methodSigKey]*MethodSig
}

type methodSigKey struct {
	owner  *Type
	method *MethodInfo
}

// NewUniverse creates a new universe over the core library and the given
// platform libraries.
func NewUniverse(libs ...*Library) (*Universe, error) {
	u := &Universe{
		cache:      make(map[string]*Type),
		interned:   make(map[string]*Type),
		bases:      make(map[*Type]*Type),
		interfaces: make(map[*Type][]*Type),
		methodSigs: make(map[methodSigKey]*MethodSig),
	}

	u.libraries = append(u.libraries, CoreLibrary())
	for _, lib := range libs {
		if err := u.AddLibrary(lib); err != nil {
			return nil, err
		}
	}

	return u, nil
}

// AddLibrary adds a new platform library to the universe.
func (u *Universe) AddLibrary(lib *Library) error {
	for _, other := range u.libraries {
		if other.Name == lib.Name {
			return fmt.Errorf("multiple libraries named `%s`", lib.Name)
		}
	}

	u.libraries = append(u.libraries, lib)
	return nil
}

// Libraries returns the loaded platform libraries.
func (u *Universe) Libraries() []*Library {
	return u.libraries
}

// SetLocalTypes sets the source of in-progress types.
func (u *Universe) SetLocalTypes(local LocalTypes) {
	u.local = local
}

// OpenNamespace opens a namespace for type and extension method lookup.  It
// returns false if the namespace was already open.
func (u *Universe) OpenNamespace(ns string) bool {
	for _, open := range u.namespaces {
		if open == ns {
			return false
		}
	}

	u.namespaces = append(u.namespaces, ns)
	return true
}

// HasNamespace returns whether any loaded library declares types in ns.
func (u *Universe) HasNamespace(ns string) bool {
	for _, lib := range u.libraries {
		for _, pt := range lib.Types {
			if pt.Namespace == ns {
				return true
			}
		}
	}

	return false
}

// searchNamespaces returns the explicitly opened namespaces followed by the
// implicit namespaces of every library.
func (u *Universe) searchNamespaces() []string {
	namespaces := append([]string(nil), u.namespaces...)

	seen := make(map[string]struct{})
	for _, ns := range namespaces {
		seen[ns] = struct{}{}
	}

	for _, lib := range u.libraries {
		for _, ns := range lib.ImplicitNamespaces {
			if _, ok := seen[ns]; !ok {
				seen[ns] = struct{}{}
				namespaces = append(namespaces, ns)
			}
		}
	}

	return namespaces
}

// -----------------------------------------------------------------------------

// Resolve resolves a textual type signature to a type descriptor.  The span is
// the location of the signature used to report errors.
func (u *Universe) Resolve(sig string, span *report.TextSpan) (*Type, error) {
	if t, ok := u.cache[sig]; ok {
		return t, nil
	}

	parsed, err := ParseSignature(sig)
	if err != nil {
		return nil, report.Raise(report.TypeNotFound, span, "%s", err)
	}

	t, err := u.resolveSig(parsed, nil, span)
	if err != nil {
		return nil, err
	}

	u.cache[sig] = t
	return t, nil
}

// ResolveIn resolves a type signature in which the given type parameters are
// in scope.  Resolutions that depend on type parameters are not cached.
func (u *Universe) ResolveIn(sig string, params map[string]*Type, span *report.TextSpan) (*Type, error) {
	if len(params) == 0 {
		return u.Resolve(sig, span)
	}

	parsed, err := ParseSignature(sig)
	if err != nil {
		return nil, report.Raise(report.TypeNotFound, span, "%s", err)
	}

	return u.resolveSig(parsed, params, span)
}

// mustResolveIn resolves a signature that comes from a platform library.  A
// failure means the library is malformed.
func (u *Universe) mustResolveIn(sig string, params map[string]*Type) *Type {
	t, err := u.ResolveIn(sig, params, nil)
	if err != nil {
		panic(report.ICE("failed to resolve library signature `%s`: %s", sig, err))
	}

	return t
}

// Builtin returns the descriptor of a built-in type alias such as `int`.
func (u *Universe) Builtin(alias string) *Type {
	full, ok := aliases[alias]
	if !ok {
		panic(report.ICE("`%s` is not a built-in type", alias))
	}

	pt, _ := CoreLibrary().Lookup(full)
	return u.PlatformType(pt)
}

// Core returns the descriptor of a non-generic core library type.
func (u *Universe) Core(fullName string) *Type {
	pt, ok := CoreLibrary().Lookup(fullName)
	if !ok {
		panic(report.ICE("`%s` is not a core library type", fullName))
	}

	return u.PlatformType(pt)
}

func (u *Universe) coreDef(fullName string) *PlatformType {
	pt, ok := CoreLibrary().Lookup(fullName)
	if !ok {
		panic(report.ICE("`%s` is not a core library type", fullName))
	}

	return pt
}

func (u *Universe) resolveSig(sig *Signature, params map[string]*Type, span *report.TextSpan) (*Type, error) {
	t, err := u.resolveName(sig, params, span)
	if err != nil {
		return nil, err
	}

	for _, pf := range sig.Postfix {
		switch pf {
		case PostfixArray:
			t = u.ArrayOf(t)
		case PostfixSequence:
			t = u.Sequence(t)
		case PostfixNullable:
			if t, err = u.Nullable(t, span); err != nil {
				return nil, err
			}
		}
	}

	return t, nil
}

func (u *Universe) resolveName(sig *Signature, params map[string]*Type, span *report.TextSpan) (*Type, error) {
	bare, arity := SplitArity(sig.Name)
	if arity != 0 && arity != len(sig.Args) {
		return nil, report.Raise(
			report.TypeMismatch,
			span,
			"`%s` expects %d type arguments but got %d",
			sig.Name,
			arity,
			len(sig.Args),
		)
	}

	if len(sig.Args) == 0 {
		if tp, ok := params[bare]; ok {
			return tp, nil
		}
	}

	// in-progress types are looked up first by their bare name
	if u.local != nil && !strings.Contains(bare, ".") {
		if t, ok := u.local.LookupLocalType(bare); ok {
			if len(sig.Args) > 0 {
				return nil, report.Raise(report.TypeMismatch, span, "type `%s` is not generic", bare)
			}

			return t, nil
		}
	}

	args := make([]*Type, len(sig.Args))
	for i, argSig := range sig.Args {
		arg, err := u.resolveSig(argSig, params, span)
		if err != nil {
			return nil, err
		}

		args[i] = arg
	}

	def, err := u.lookupDef(bare, len(args), span)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return u.PlatformType(def), nil
	}

	return u.Instantiate(def, args, span)
}

// lookupDef finds the unique platform type definition with the given name and
// generic arity.
func (u *Universe) lookupDef(name string, arity int, span *report.TextSpan) (*PlatformType, error) {
	if arity == 0 {
		if full, ok := aliases[name]; ok {
			name = full
		}
	}

	key := WithArity(name, arity)

	var found []*PlatformType
	addFound := func(pt *PlatformType) {
		for _, other := range found {
			if other == pt {
				return
			}
		}

		found = append(found, pt)
	}

	if strings.Contains(name, ".") {
		for _, lib := range u.libraries {
			if pt, ok := lib.Lookup(key); ok {
				addFound(pt)
			}
		}
	} else {
		namespaces := u.searchNamespaces()
		for _, lib := range u.libraries {
			if pt, ok := lib.Lookup(key); ok {
				addFound(pt)
			}

			for _, ns := range namespaces {
				if pt, ok := lib.Lookup(ns + "." + key); ok {
					addFound(pt)
				}
			}
		}
	}

	switch len(found) {
	case 0:
		if arity > 0 {
			return nil, report.Raise(report.TypeNotFound, span, "unknown generic type `%s` with %d type arguments", name, arity)
		}

		return nil, report.Raise(report.TypeNotFound, span, "unknown type `%s`", name)
	case 1:
		return found[0], nil
	default:
		return nil, report.Raise(
			report.TypeAmbiguous,
			span,
			"type `%s` is ambiguous: it could refer to `%s` in %s or `%s` in %s",
			name,
			found[0].FullName(),
			found[0].Library.Name,
			found[1].FullName(),
			found[1].Library.Name,
		)
	}
}

// -----------------------------------------------------------------------------

// intern returns the descriptor interned under key or interns the descriptor
// produced by create.
func (u *Universe) intern(key string, create func() *Type) *Type {
	if t, ok := u.interned[key]; ok {
		return t
	}

	t := create()
	t.key = key
	t.Entity = NoEntity
	u.interned[key] = t
	return t
}

// PlatformType returns the descriptor of a non-generic platform type or the
// open definition of a generic platform type.
func (u *Universe) PlatformType(def *PlatformType) *Type {
	return u.intern(def.Key(), func() *Type {
		return &Type{name: def.FullName(), Kind: KindPlatform, IsValue: def.IsValue, Def: def}
	})
}

// Instantiate instantiates a generic platform type with type arguments.
func (u *Universe) Instantiate(def *PlatformType, args []*Type, span *report.TextSpan) (*Type, error) {
	if len(def.TypeParams) != len(args) {
		return nil, report.Raise(
			report.TypeMismatch,
			span,
			"`%s` expects %d type arguments but got %d",
			def.ShortName(),
			len(def.TypeParams),
			len(args),
		)
	}

	for _, arg := range args {
		if arg.Kind == KindRef || arg.Kind == KindNull || arg == u.Builtin("unit") {
			return nil, report.Raise(report.TypeMismatch, span, "`%s` is not a valid type argument", arg)
		}
	}

	return u.instantiate(def, args), nil
}

func (u *Universe) instantiate(def *PlatformType, args []*Type) *Type {
	argKeys := make([]string, len(args))
	argNames := make([]string, len(args))
	for i, arg := range args {
		argKeys[i] = u.keyOf(arg)
		argNames[i] = arg.name
	}

	key := def.Key() + "<" + strings.Join(argKeys, ",") + ">"
	return u.intern(key, func() *Type {
		bare, _ := SplitArity(def.FullName())
		return &Type{
			name:    bare + "<" + strings.Join(argNames, ", ") + ">",
			Kind:    KindPlatform,
			IsValue: def.IsValue,
			Def:     def,
			Args:    append([]*Type(nil), args...),
		}
	})
}

// keyOf returns the intern key of a descriptor.
func (u *Universe) keyOf(t *Type) string {
	if t.key == "" {
		panic(report.ICE("type `%s` was not created by a universe", t.name))
	}

	return t.key
}

// ArrayOf returns the array type of elem.
func (u *Universe) ArrayOf(elem *Type) *Type {
	return u.intern(u.keyOf(elem)+"[]", func() *Type {
		return &Type{name: elem.name + "[]", Kind: KindArray, Elem: elem}
	})
}

// RefTo returns the by-reference type of elem.
func (u *Universe) RefTo(elem *Type) *Type {
	return u.intern("&"+u.keyOf(elem), func() *Type {
		return &Type{name: elem.name + "&", Kind: KindRef, Elem: elem}
	})
}

// Sequence returns the lazy sequence type of elem: IEnumerable<elem>.
func (u *Universe) Sequence(elem *Type) *Type {
	return u.instantiate(u.coreDef("System.Collections.Generic.IEnumerable`1"), []*Type{elem})
}

// Nullable returns the nullable wrapper of a value type.
func (u *Universe) Nullable(t *Type, span *report.TextSpan) (*Type, error) {
	if !t.IsValue || u.IsNullable(t) || t == u.Builtin("unit") {
		return nil, report.Raise(report.TypeMismatch, span, "the nullable wrapper requires a value type but got `%s`", t)
	}

	return u.instantiate(u.coreDef("System.Nullable`1"), []*Type{t}), nil
}

// IsNullable returns whether t is an instantiation of the nullable wrapper.
func (u *Universe) IsNullable(t *Type) bool {
	return t.IsGenericInstance() && t.Def == u.coreDef("System.Nullable`1")
}

// Null returns the type of the null literal.
func (u *Universe) Null() *Type {
	return u.intern("null", func() *Type {
		return &Type{name: "null", Kind: KindNull}
	})
}

// TypeParam returns the descriptor of the index'th type parameter named name
// declared by the entity identified by owner.
func (u *Universe) TypeParam(owner, name string, index int) *Type {
	return u.intern("!"+owner+"!"+name, func() *Type {
		return &Type{name: name, Kind: KindTypeParam, ParamName: name, ParamIndex: index, ParamOwner: owner}
	})
}

// DeclareInProgress creates the descriptor of an in-progress type.
func (u *Universe) DeclareInProgress(name string, ref EntityRef, isValue, isSealed bool) *Type {
	t := u.intern("#"+name, func() *Type {
		return &Type{name: name, Kind: KindInProgress, IsValue: isValue, IsSealed: isSealed}
	})

	t.Entity = ref
	return t
}

// Delegate returns the delegate type taking args and returning ret: an Action
// for unit returning delegates and a Func otherwise.
func (u *Universe) Delegate(args []*Type, ret *Type, span *report.TextSpan) (*Type, error) {
	if len(args) > MaxDelegateArity {
		return nil, report.Raise(report.TypeMismatch, span, "functions used as values can take at most %d arguments", MaxDelegateArity)
	}

	for _, arg := range args {
		if arg.Kind == KindRef {
			return nil, report.Raise(report.TypeMismatch, span, "functions taking by-reference arguments cannot be used as values")
		}
	}

	if ret == u.Builtin("unit") {
		def := u.coreDef(WithArity("System.Action", len(args)))
		if len(args) == 0 {
			return u.PlatformType(def), nil
		}

		return u.Instantiate(def, args, span)
	}

	def := u.coreDef(WithArity("System.Func", len(args)+1))
	return u.Instantiate(def, append(append([]*Type(nil), args...), ret), span)
}

// -----------------------------------------------------------------------------

// Substitute replaces the type parameters in t according to subs.
func (u *Universe) Substitute(t *Type, subs map[*Type]*Type) *Type {
	if len(subs) == 0 {
		return t
	}

	switch t.Kind {
	case KindTypeParam:
		if sub, ok := subs[t]; ok {
			return sub
		}
	case KindArray:
		return u.ArrayOf(u.Substitute(t.Elem, subs))
	case KindRef:
		return u.RefTo(u.Substitute(t.Elem, subs))
	case KindPlatform:
		if len(t.Args) > 0 {
			args := make([]*Type, len(t.Args))
			for i, arg := range t.Args {
				args[i] = u.Substitute(arg, subs)
			}

			return u.instantiate(t.Def, args)
		}
	}

	return t
}

// typeContext returns the type parameter bindings of a platform type: its type
// arguments if it is instantiated and its own type parameters otherwise.
func (u *Universe) typeContext(t *Type) map[string]*Type {
	if t.Kind != KindPlatform || len(t.Def.TypeParams) == 0 {
		return nil
	}

	ctx := make(map[string]*Type, len(t.Def.TypeParams))
	for i, name := range t.Def.TypeParams {
		if len(t.Args) > 0 {
			ctx[name] = t.Args[i]
		} else {
			ctx[name] = u.TypeParam(t.Def.Key(), name, i)
		}
	}

	return ctx
}

// Base returns the parent type of t or nil if t has no parent.
func (u *Universe) Base(t *Type) *Type {
	switch t.Kind {
	case KindInProgress:
		return t.base
	case KindArray:
		return u.Core("System.Array")
	case KindTypeParam:
		return u.Builtin("object")
	case KindPlatform:
		if base, ok := u.bases[t]; ok {
			return base
		}

		var base *Type
		if t.Def.Parent != "" {
			base = u.mustResolveIn(t.Def.Parent, u.typeContext(t))
		}

		u.bases[t] = base
		return base
	}

	return nil
}

// Interfaces returns all the interfaces implemented by t including those
// implemented by its parents.
func (u *Universe) Interfaces(t *Type) []*Type {
	if ifaces, ok := u.interfaces[t]; ok {
		return ifaces
	}

	var ifaces []*Type
	switch t.Kind {
	case KindArray:
		ifaces = []*Type{u.Sequence(t.Elem)}
	case KindPlatform:
		ctx := u.typeContext(t)
		for _, sig := range t.Def.Interfaces {
			ifaces = append(ifaces, u.mustResolveIn(sig, ctx))
		}
	}

	if base := u.Base(t); base != nil {
		for _, iface := range u.Interfaces(base) {
			if !containsType(ifaces, iface) {
				ifaces = append(ifaces, iface)
			}
		}
	}

	u.interfaces[t] = ifaces
	return ifaces
}

func containsType(types []*Type, t *Type) bool {
	for _, other := range types {
		if other == t {
			return true
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// MethodSig is the resolved signature of a platform method or constructor as
// a member of a specific (possibly instantiated) owner type.
type MethodSig struct {
	// Params holds the parameter types.  By-reference parameters are
	// KindRef descriptors.
	Params []*Type

	// Returns is unit for methods returning nothing.
	Returns *Type

	// TypeParams are the method's own generic parameters.
	TypeParams []*Type
}

// MethodSignature resolves the signature of a platform method declared by
// owner.  The result is memoized so that argument types are resolved exactly
// once per owner.
func (u *Universe) MethodSignature(owner *Type, mi *MethodInfo) *MethodSig {
	key := methodSigKey{owner: owner, method: mi}
	if sig, ok := u.methodSigs[key]; ok {
		return sig
	}

	ctx := make(map[string]*Type)
	for name, t := range u.typeContext(owner) {
		ctx[name] = t
	}

	sig := &MethodSig{}
	for i, name := range mi.TypeParams {
		tp := u.TypeParam(mi.Key(), name, i)
		ctx[name] = tp
		sig.TypeParams = append(sig.TypeParams, tp)
	}

	for _, param := range mi.Params {
		pt := u.mustResolveIn(param.Type, ctx)
		if param.ByRef {
			pt = u.RefTo(pt)
		}

		sig.Params = append(sig.Params, pt)
	}

	if mi.Returns == "" {
		sig.Returns = u.Builtin("unit")
	} else {
		sig.Returns = u.mustResolveIn(mi.Returns, ctx)
	}

	u.methodSigs[key] = sig
	return sig
}

// FieldType resolves the type of a platform field declared by owner.
func (u *Universe) FieldType(owner *Type, fi *FieldInfo) *Type {
	return u.mustResolveIn(fi.Type, u.typeContext(owner))
}

// PropertyType resolves the type of a platform property declared by owner.
func (u *Universe) PropertyType(owner *Type, pi *PropertyInfo) *Type {
	return u.mustResolveIn(pi.Type, u.typeContext(owner))
}

// ExtensionMethods returns all the extension methods named name declared in
// open or implicit namespaces.  The methods are returned in library order.
func (u *Universe) ExtensionMethods(name string) []*MethodInfo {
	namespaces := make(map[string]struct{})
	for _, ns := range u.searchNamespaces() {
		namespaces[ns] = struct{}{}
	}

	var methods []*MethodInfo
	for _, lib := range u.libraries {
		for _, pt := range lib.Types {
			if _, ok := namespaces[pt.Namespace]; !ok {
				continue
			}

			for _, mi := range pt.Methods {
				if mi.Extension && mi.Name == name {
					methods = append(methods, mi)
				}
			}
		}
	}

	return methods
}
