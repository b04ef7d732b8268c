package typeres

import (
	"errors"
	"testing"

	"decc/internal/ast"
	"decc/internal/decl"
	"decc/internal/diag"
	"decc/internal/namespace"
	"decc/internal/ty"
	"decc/internal/types"
)

func newResolver() (*Resolver, *namespace.Namespace) {
	return New(types.NewEngine(), decl.NewEngine(0)), namespace.New()
}

func TestEvalPrimitivesAndUnknown(t *testing.T) {
	r, ns := newResolver()
	u8 := r.InsertType(ast.U8Type())
	if got, err := r.EvalType(u8, ns); err != nil || got != u8 {
		t.Fatalf("u8 = %d, %v", got, err)
	}
	unk := r.InsertType(ast.UnknownType())
	if got, _ := r.EvalType(unk, ns); got != unk {
		t.Fatalf("unknown must keep its own slot")
	}
	bad := r.InsertType(ast.UintType(7))
	if _, err := r.EvalType(bad, ns); !errors.Is(err, diag.UnresolvedType) {
		t.Fatalf("u7 should be unresolved, got %v", err)
	}
}

func TestEvalGenericParameter(t *testing.T) {
	r, ns := newResolver()
	param := r.Types.Insert(types.Generic("T"))
	ns.InsertSymbol("T", ty.GenericParamDeclaration(param))
	got, err := r.EvalType(r.InsertType(ast.NamedType("T")), ns)
	if err != nil || got != param {
		t.Fatalf("T = %d, %v", got, err)
	}
}

func TestEvalStructReference(t *testing.T) {
	r, ns := newResolver()
	tp := r.Types.Insert(types.Generic("T"))
	id := r.Decls.InsertStruct(ty.StructDecl{
		Name:           "Point",
		TypeParameters: []types.TypeParameter{{Name: "T", TypeID: tp}},
	})
	ref, _ := r.Decls.Ref(id)
	ns.InsertSymbol("Point", ty.StructDeclaration(ref))

	got, err := r.EvalType(r.InsertType(ast.NamedType("Point", ast.U32Type())), ns)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	info := r.Types.Resolve(got)
	if info.Kind != types.KindDeclarationRef || info.Decl != id || r.Types.Display(got) != "Point<u32>" {
		t.Fatalf("unexpected %+v (%s)", info, r.Types.Display(got))
	}

	if _, err := r.EvalType(r.InsertType(ast.NamedType("Point")), ns); !errors.Is(err, diag.TypeArgCount) {
		t.Fatalf("expected arity error, got %v", err)
	}
}

func TestEvalRejectsNonTypes(t *testing.T) {
	r, ns := newResolver()
	id := r.Decls.InsertFunction(ty.FunctionDecl{Name: "f"})
	ref, _ := r.Decls.Ref(id)
	ns.InsertSymbol("f", ty.FunctionDeclaration(ref))
	if _, err := r.EvalType(r.InsertType(ast.NamedType("f")), ns); !errors.Is(err, diag.NotAType) {
		t.Fatalf("expected NotAType, got %v", err)
	}
	if _, err := r.EvalType(r.InsertType(ast.NamedType("Missing")), ns); !errors.Is(err, diag.UnresolvedType) {
		t.Fatalf("expected UnresolvedType, got %v", err)
	}
}
