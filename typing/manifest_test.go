package typing

import (
	"strings"
	"testing"
)

const boxManifest = `
name: boxes
implicit-namespaces: [Boxes]
types:
  - namespace: Boxes
    name: Box
    type-params: [T]
    fields:
      - {name: Value, type: T}
    ctors:
      - params: [{name: value, type: T}]
    methods:
      - {name: Map, type-params: [R], returns: "Box<R>", params: [{name: f, type: "Func<T, R>"}]}
  - namespace: Boxes
    name: BoxExtensions
    sealed: true
    methods:
      - name: Unwrap
        static: true
        extension: true
        type-params: [T]
        returns: T
        params: [{name: box, type: "Box<T>"}]
`

func TestLoadLibrary(t *testing.T) {
	lib, err := LoadLibrary(strings.NewReader(boxManifest))
	if err != nil {
		t.Fatalf("failed to load manifest: %v", err)
	}

	box, ok := lib.Lookup("Boxes.Box`1")
	if !ok {
		t.Fatalf("generic type was not indexed with its arity")
	}

	if box.Parent != "object" || len(box.Ctors) != 1 || box.Ctors[0].Owner != box {
		t.Fatalf("type was not converted correctly: %+v", box)
	}

	u, err := NewUniverse(lib)
	if err != nil {
		t.Fatalf("failed to create universe: %v", err)
	}

	intBox := mustResolve(t, u, "Box<int>")
	if ft := u.FieldType(intBox, box.Fields[0]); ft != u.Builtin("int") {
		t.Fatalf("field of Box<int> has type %s", ft)
	}

	exts := u.ExtensionMethods("Unwrap")
	if len(exts) != 1 {
		t.Fatalf("expected one extension method but got %d", len(exts))
	}
}

func TestLoadLibraryErrors(t *testing.T) {
	tests := []string{
		"types: []",
		"name: corlib",
		"name: x\nbogus: 1",
		"name: x\ntypes:\n  - {namespace: A, name: B, kind: struct}",
		"name: x\ntypes:\n  - {namespace: A, name: B, methods: [{name: M, extension: true}]}",
		"name: x\ntypes:\n  - {namespace: A, name: B}\n  - {namespace: A, name: B}",
	}

	for _, manifest := range tests {
		if _, err := LoadLibrary(strings.NewReader(manifest)); err == nil {
			t.Fatalf("expected manifest to fail to load:\n%s", manifest)
		}
	}
}
