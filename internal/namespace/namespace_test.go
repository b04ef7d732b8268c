package namespace

import (
	"testing"

	"decc/internal/ty"
	"decc/internal/types"
)

func TestChildReadsThroughParent(t *testing.T) {
	root := New()
	root.InsertSymbol("x", ty.VariableDeclaration(ty.VariableDecl{Name: "x"}))
	child := root.Scoped()
	if child.Depth() != 1 || child.Parent() != root {
		t.Fatalf("unexpected child shape")
	}
	if _, ok := child.Lookup("x"); !ok {
		t.Fatalf("child should see parent symbol")
	}
	if _, ok := child.LookupLocal("x"); ok {
		t.Fatalf("LookupLocal must not walk to the parent")
	}
}

func TestShadowingStaysInChild(t *testing.T) {
	root := New()
	root.InsertSymbol("T", ty.GenericParamDeclaration(types.TypeID(1)))
	child := root.Scoped()
	child.InsertSymbol("T", ty.GenericParamDeclaration(types.TypeID(2)))

	d, _ := child.Lookup("T")
	if got, _ := d.ExpectGenericParam(); got != 2 {
		t.Fatalf("child lookup = %d, want shadowing binding", got)
	}
	d, _ = root.Lookup("T")
	if got, _ := d.ExpectGenericParam(); got != 1 {
		t.Fatalf("parent binding changed to %d", got)
	}
	if names := child.Names(); len(names) != 1 || names[0] != "T" {
		t.Fatalf("names = %v", names)
	}
}

func TestMissingName(t *testing.T) {
	if _, ok := New().Scoped().Lookup("nope"); ok {
		t.Fatalf("lookup of unbound name must fail")
	}
}
