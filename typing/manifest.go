package typing

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// manifestFile is the YAML representation of a platform library.
type manifestFile struct {
	Name               string         `yaml:"name"`
	ImplicitNamespaces []string       `yaml:"implicit-namespaces"`
	Types              []manifestType `yaml:"types"`
}

type manifestType struct {
	Namespace  string             `yaml:"namespace"`
	Name       string             `yaml:"name"`
	Kind       string             `yaml:"kind"`
	Sealed     bool               `yaml:"sealed"`
	Parent     string             `yaml:"parent"`
	Interfaces []string           `yaml:"interfaces"`
	TypeParams []string           `yaml:"type-params"`
	Fields     []manifestField    `yaml:"fields"`
	Properties []manifestProperty `yaml:"properties"`
	Ctors      []manifestMethod   `yaml:"ctors"`
	Methods    []manifestMethod   `yaml:"methods"`
}

type manifestField struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static"`
}

type manifestProperty struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static"`
	Get    *bool  `yaml:"get"`
	Set    bool   `yaml:"set"`
}

type manifestMethod struct {
	Name       string          `yaml:"name"`
	TypeParams []string        `yaml:"type-params"`
	Params     []manifestParam `yaml:"params"`
	Returns    string          `yaml:"returns"`
	Static     bool            `yaml:"static"`
	Virtual    bool            `yaml:"virtual"`
	Extension  bool            `yaml:"extension"`
}

type manifestParam struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Ref  bool   `yaml:"ref"`
}

// LoadLibraryFile loads a platform library from a YAML manifest file.
func LoadLibraryFile(path string) (*Library, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library manifest %s: %w", path, err)
	}
	defer file.Close()

	lib, err := LoadLibrary(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return lib, nil
}

// LoadLibrary loads a platform library from a YAML manifest.  Unknown fields
// are rejected.
func LoadLibrary(r io.Reader) (*Library, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var mf manifestFile
	if err := decoder.Decode(&mf); err != nil {
		return nil, fmt.Errorf("failed to decode library manifest: %w", err)
	}

	if mf.Name == "" {
		return nil, fmt.Errorf("library manifest is missing a name")
	} else if mf.Name == CoreLibraryName {
		return nil, fmt.Errorf("library name `%s` is reserved", CoreLibraryName)
	}

	lib, err := NewLibrary(mf.Name, mf.ImplicitNamespaces)
	if err != nil {
		return nil, err
	}

	for _, mt := range mf.Types {
		pt, err := convertManifestType(&mt)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", mf.Name, err)
		}

		if err := lib.AddType(pt); err != nil {
			return nil, err
		}
	}

	return lib, nil
}

// convertManifestType converts a manifest type into a platform type.
func convertManifestType(mt *manifestType) (*PlatformType, error) {
	if mt.Name == "" {
		return nil, fmt.Errorf("type in namespace `%s` is missing a name", mt.Namespace)
	}

	pt := &PlatformType{
		Namespace:  mt.Namespace,
		Name:       WithArity(mt.Name, len(mt.TypeParams)),
		IsSealed:   mt.Sealed,
		Parent:     mt.Parent,
		Interfaces: mt.Interfaces,
		TypeParams: mt.TypeParams,
	}

	switch mt.Kind {
	case "", "class":
	case "value":
		pt.IsValue = true
		pt.IsSealed = true
	case "interface":
		pt.IsInterface = true
	case "delegate":
		pt.IsDelegate = true
		pt.IsSealed = true
	default:
		return nil, fmt.Errorf("type `%s` has unknown kind `%s`", mt.Name, mt.Kind)
	}

	if pt.Parent == "" && !pt.IsInterface {
		pt.Parent = "object"
	}

	for _, mf := range mt.Fields {
		if mf.Name == "" || mf.Type == "" {
			return nil, fmt.Errorf("type `%s` has a field without a name or type", mt.Name)
		}

		pt.Fields = append(pt.Fields, &FieldInfo{Name: mf.Name, Type: mf.Type, Static: mf.Static})
	}

	for _, mp := range mt.Properties {
		if mp.Name == "" || mp.Type == "" {
			return nil, fmt.Errorf("type `%s` has a property without a name or type", mt.Name)
		}

		canGet := mp.Get == nil || *mp.Get
		pt.Properties = append(pt.Properties, &PropertyInfo{
			Name:   mp.Name,
			Type:   mp.Type,
			Static: mp.Static,
			CanGet: canGet,
			CanSet: mp.Set,
		})
	}

	for _, mc := range mt.Ctors {
		pt.Ctors = append(pt.Ctors, convertManifestMethod(&mc))
	}

	for _, mm := range mt.Methods {
		if mm.Name == "" {
			return nil, fmt.Errorf("type `%s` has a method without a name", mt.Name)
		}

		if mm.Extension && (!mm.Static || len(mm.Params) == 0) {
			return nil, fmt.Errorf("extension method `%s.%s` must be static and take a receiver", mt.Name, mm.Name)
		}

		pt.Methods = append(pt.Methods, convertManifestMethod(&mm))
	}

	return pt, nil
}

func convertManifestMethod(mm *manifestMethod) *MethodInfo {
	mi := &MethodInfo{
		Name:       mm.Name,
		TypeParams: mm.TypeParams,
		Returns:    mm.Returns,
		Static:     mm.Static,
		Virtual:    mm.Virtual,
		Extension:  mm.Extension,
	}

	for i, mp := range mm.Params {
		name := mp.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}

		mi.Params = append(mi.Params, &ParamInfo{Name: name, Type: mp.Type, ByRef: mp.Ref})
	}

	return mi
}
