package mono

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"decc/internal/decl"
	"decc/internal/diag"
	"decc/internal/graph"
	"decc/internal/ids"
	"decc/internal/ty"
	"decc/internal/types"
)

type world struct {
	te *types.Engine
	de *decl.Engine
	g  *graph.Graph
	m  *Monomorphizer
}

func newWorld() *world {
	te, de, g := types.NewEngine(), decl.NewEngine(0), graph.New(0)
	return &world{te: te, de: de, g: g, m: New(te, de, g)}
}

// function registers `fn name<T>(x: T) -> T { return <ret> }` where ret is
// built from the fresh T slot.
func (w *world) function(name string, ret func(tp types.TypeID) ty.Expr) (ids.DeclarationID, types.TypeID) {
	tp := w.te.Insert(types.Generic("T"))
	body := w.g.AddScope(name)
	stmt := w.g.AddSyntax(ty.ReturnNode(ret(tp)))
	w.g.AddEdge(body, stmt, graph.NodeContents)
	id := w.de.InsertFunction(ty.FunctionDecl{
		Name:           name,
		TypeParameters: []types.TypeParameter{{Name: "T", TypeID: tp}},
		Parameters:     []ty.Parameter{{Name: "x", TypeID: tp}},
		Body:           []ids.CollectionIndex{stmt},
		BodyScope:      body,
		ReturnType:     tp,
	})
	ref, _ := w.de.Ref(id)
	node := w.g.AddSyntax(ty.DeclNode(ty.FunctionDeclaration(ref)))
	w.g.AddEdge(node, body, graph.ScopedChild)
	return id, tp
}

func variable(name string, t types.TypeID) ty.Expr {
	return ty.Expr{Kind: ty.ExprVariable, Type: t, Data: ty.VariableData{Name: name}}
}

func (w *world) identity() ids.DeclarationID {
	id, _ := w.function("identity", func(tp types.TypeID) ty.Expr { return variable("x", tp) })
	return id
}

func TestInstancesAreDistinctAndCached(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	id := w.identity()
	u8, u32 := w.te.Insert(types.U8()), w.te.Insert(types.U32())

	a, err := w.m.InstantiateFunction(ctx, id, []types.TypeID{u8})
	if err != nil {
		t.Fatalf("instantiate u8: %v", err)
	}
	b, err := w.m.InstantiateFunction(ctx, id, []types.TypeID{u32})
	if err != nil {
		t.Fatalf("instantiate u32: %v", err)
	}
	if a == b || a == id {
		t.Fatalf("instances must be distinct handles: %v %v %v", id, a, b)
	}
	fa, _ := w.de.GetFunction(a)
	fb, _ := w.de.GetFunction(b)
	if got := w.te.Resolve(fa.ReturnType); got.Bits != types.Eight {
		t.Fatalf("identity<u8> returns %s", w.te.Display(fa.ReturnType))
	}
	if got := w.te.Resolve(fb.ReturnType); got.Bits != types.ThirtyTwo {
		t.Fatalf("identity<u32> returns %s", w.te.Display(fb.ReturnType))
	}
	again, _ := w.m.InstantiateFunction(ctx, id, []types.TypeID{w.te.Insert(types.U8())})
	if again != a {
		t.Fatalf("second u8 instantiation should hit the cache")
	}

	node, _ := w.g.DeclarationNode(id)
	if n := len(w.g.Instances(node)); n != 2 {
		t.Fatalf("expected 2 cached instances, got %d", n)
	}
	if fa.IsGeneric() {
		t.Fatalf("instances carry no type parameters")
	}
}

func TestInstanceBodyIsAFreshSubtree(t *testing.T) {
	w := newWorld()
	id := w.identity()
	orig, _ := w.de.GetFunction(id)
	u16 := w.te.Insert(types.U16())

	inst, err := w.m.InstantiateFunction(context.Background(), id, []types.TypeID{u16})
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	fn, _ := w.de.GetFunction(inst)
	if fn.BodyScope == orig.BodyScope || fn.Body[0] == orig.Body[0] {
		t.Fatalf("body must be cloned, not shared")
	}
	cloned := w.g.Node(fn.Body[0]).Syntax
	if cloned.Expr.Type != u16 {
		t.Fatalf("cloned return has type %s", w.te.Display(cloned.Expr.Type))
	}
	original := w.g.Node(orig.Body[0]).Syntax
	if original.Expr.Type != orig.ReturnType {
		t.Fatalf("original body was mutated")
	}
}

func TestNestedCallsAreReinstantiated(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	identity := w.identity()
	identityRef, _ := w.de.Ref(identity)

	var inner ids.DeclarationID
	wrap, _ := w.function("wrap", func(tp types.TypeID) ty.Expr {
		var err error
		inner, err = w.m.InstantiateFunction(ctx, identity, []types.TypeID{tp})
		if err != nil {
			t.Fatalf("inner instantiate: %v", err)
		}
		callee, _ := w.de.Ref(inner)
		return ty.Expr{Kind: ty.ExprApplication, Type: tp, Data: ty.ApplicationData{
			Name:     "identity",
			Callee:   callee,
			Origin:   identityRef,
			TypeArgs: []types.TypeID{tp},
			Args:     []ty.Expr{variable("x", tp)},
		}}
	})

	u8 := w.te.Insert(types.U8())
	inst, err := w.m.InstantiateFunction(ctx, wrap, []types.TypeID{u8})
	if err != nil {
		t.Fatalf("instantiate wrap: %v", err)
	}
	fn, _ := w.de.GetFunction(inst)
	call := w.g.Node(fn.Body[0]).Syntax.Expr.Data.(ty.ApplicationData)
	want, _ := w.m.InstantiateFunction(ctx, identity, []types.TypeID{u8})
	if call.Callee.ID != want || call.Callee.ID == inner {
		t.Fatalf("callee = %v, want identity<u8> %v", call.Callee.ID, want)
	}
}

func TestNonGenericAndArity(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	plain := w.de.InsertFunction(ty.FunctionDecl{Name: "main"})
	ref, _ := w.de.Ref(plain)
	w.g.AddSyntax(ty.DeclNode(ty.FunctionDeclaration(ref)))

	if got, err := w.m.InstantiateFunction(ctx, plain, nil); err != nil || got != plain {
		t.Fatalf("non-generic should instantiate to itself: %v, %v", got, err)
	}
	id := w.identity()
	if _, err := w.m.InstantiateFunction(ctx, id, nil); !errors.Is(err, diag.TypeArgCount) {
		t.Fatalf("expected TypeArgCount, got %v", err)
	}
	if _, err := w.m.InstantiateStruct(ctx, id, nil); !errors.Is(err, diag.DeclKindMismatch) {
		t.Fatalf("expected DeclKindMismatch, got %v", err)
	}
}

func TestStructInstances(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	tp := w.te.Insert(types.Generic("T"))
	id := w.de.InsertStruct(ty.StructDecl{
		Name:           "Point",
		TypeParameters: []types.TypeParameter{{Name: "T", TypeID: tp}},
		Fields:         []ty.StructField{{Name: "x", TypeID: tp}},
	})
	ref, _ := w.de.Ref(id)
	w.g.AddSyntax(ty.DeclNode(ty.StructDeclaration(ref)))

	u64 := w.te.Insert(types.U64())
	a, err := w.m.InstantiateStruct(ctx, id, []types.TypeID{u64})
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	st, _ := w.de.GetStruct(a)
	if f, _ := st.Field("x"); f.TypeID != u64 {
		t.Fatalf("field x = %s", w.te.Display(f.TypeID))
	}
	if b, _ := w.m.InstantiateStruct(ctx, id, []types.TypeID{u64}); b != a {
		t.Fatalf("expected cache hit")
	}
	orig, _ := w.de.GetStruct(id)
	if orig.Fields[0].TypeID != tp {
		t.Fatalf("generic struct was mutated")
	}
}

func TestEmptyMappingIsIdentity(t *testing.T) {
	te := types.NewEngine()
	tp := te.Insert(types.Generic("T"))
	point := ids.DeclarationID{Index: 1, Kind: ids.DeclStruct}
	fn := ty.FunctionDecl{
		Name:           "f",
		TypeParameters: []types.TypeParameter{{Name: "T", TypeID: tp}},
		Parameters:     []ty.Parameter{{Name: "p", TypeID: te.Insert(types.DeclRef(point, "Point", tp))}},
		Body:           []ids.CollectionIndex{4, 5},
		BodyScope:      3,
		ReturnType:     te.Insert(types.RefTo(tp)),
	}
	expr := ty.Expr{Kind: ty.ExprStruct, Type: fn.Parameters[0].TypeID, Data: ty.StructData{
		Name:     "Point",
		TypeArgs: []types.TypeID{tp},
		Fields:   []ty.FieldValue{{Name: "x", Value: variable("x", tp)}},
	}}

	s := NewSubst(te, types.Mapping{})
	if got := s.Function(fn); !reflect.DeepEqual(got, fn) {
		t.Fatalf("function changed:\n got %+v\nwant %+v", got, fn)
	}
	if got := s.Expression(expr); !reflect.DeepEqual(got, expr) {
		t.Fatalf("expression changed:\n got %+v\nwant %+v", got, expr)
	}
	before := te.Len()
	s.Type(fn.ReturnType)
	if te.Len() != before {
		t.Fatalf("identity substitution must not allocate slots")
	}
}

func TestSubstitutionComposes(t *testing.T) {
	te := types.NewEngine()
	a := te.Insert(types.Generic("A"))
	b := te.Insert(types.Generic("B"))
	c := te.Insert(types.U32())
	point := ids.DeclarationID{Index: 1, Kind: ids.DeclStruct}
	fn := ty.FunctionDecl{
		Name: "f",
		Parameters: []ty.Parameter{
			{Name: "a", TypeID: a},
			{Name: "p", TypeID: te.Insert(types.DeclRef(point, "Point", a))},
			{Name: "r", TypeID: te.Insert(types.RefTo(a))},
		},
		ReturnType: te.Insert(types.DeclRef(point, "Point", te.Insert(types.DeclRef(point, "Point", a)))),
	}

	ab := NewSubst(te, types.MappingOf(types.Pair{From: a, To: b}))
	bc := NewSubst(te, types.MappingOf(types.Pair{From: b, To: c}))
	ac := NewSubst(te, types.MappingOf(types.Pair{From: a, To: c}))

	stepwise := bc.Function(ab.Function(fn))
	direct := ac.Function(fn)
	for i := range fn.Parameters {
		if !te.Equal(stepwise.Parameters[i].TypeID, direct.Parameters[i].TypeID) {
			t.Fatalf("param %d: %s vs %s", i,
				te.Display(stepwise.Parameters[i].TypeID), te.Display(direct.Parameters[i].TypeID))
		}
	}
	if !te.Equal(stepwise.ReturnType, direct.ReturnType) {
		t.Fatalf("return: %s vs %s", te.Display(stepwise.ReturnType), te.Display(direct.ReturnType))
	}
	if got := te.Display(direct.ReturnType); got != "Point<Point<u32>>" {
		t.Fatalf("direct return = %s", got)
	}
	if fn.Parameters[0].TypeID != a {
		t.Fatalf("input was mutated")
	}
}
