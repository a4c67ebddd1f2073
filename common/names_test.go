package common

import "testing"

func TestNameGenerator(t *testing.T) {
	ng := &NameGenerator{}
	if a, b := ng.CarrierTypeName(), ng.CarrierTypeName(); a != "<Closure0>" || b != "<Closure1>" {
		t.Fatalf("carrier names are %s and %s", a, b)
	}

	// each kind of name is numbered on its own
	if name := ng.ClosureMethodName(); name != "<lambda0>" {
		t.Fatalf("closure method name is %s", name)
	}

	for _, name := range []string{ng.ImplicitLocalName(), CarrierFieldName("x"), ParentFieldName, ScriptTypeName} {
		if !IsSynthesizedName(name) {
			t.Fatalf("`%s` is not reserved for synthesized entities", name)
		}
	}

	if IsSynthesizedName("x") || CtorArgName("Width") != "_width" {
		t.Fatalf("unexpected user name handling")
	}
}
