package graph

import (
	"errors"
	"testing"

	"decc/internal/decl"
	"decc/internal/diag"
	"decc/internal/ids"
	"decc/internal/ty"
	"decc/internal/types"
)

type fixture struct {
	g  *Graph
	de *decl.Engine
}

func newFixture() *fixture {
	return &fixture{g: New(0), de: decl.NewEngine(0)}
}

func (f *fixture) function(scope ids.CollectionIndex, name string) (ids.CollectionIndex, ids.CollectionIndex) {
	body := f.g.AddScope(name)
	id := f.de.InsertFunction(ty.FunctionDecl{Name: name, BodyScope: body})
	ref, _ := f.de.Ref(id)
	node := f.g.AddSyntax(ty.DeclNode(ty.FunctionDeclaration(ref)))
	f.g.AddEdge(scope, node, NodeContents)
	f.g.AddEdge(node, body, ScopedChild)
	return node, body
}

func (f *fixture) file(app ids.CollectionIndex, name string) ids.CollectionIndex {
	file := f.g.AddFile(name)
	scope := f.g.AddScope(name)
	f.g.AddEdge(app, file, ApplicationContents)
	f.g.AddEdge(file, scope, FileContents)
	return scope
}

func names(vs []Visible) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Name
	}
	return out
}

func TestPropagationTable(t *testing.T) {
	want := map[EdgeKind]bool{
		ApplicationContents: false,
		FileContents:        false,
		SharedScope:         true,
		NodeContents:        true,
		DeclarationContents: true,
		ScopedChild:         true,
	}
	for kind, propagates := range want {
		if kind.Propagates() != propagates {
			t.Fatalf("%s.Propagates() = %v", kind, !propagates)
		}
	}
}

func TestSiblingFilesAreFirewalled(t *testing.T) {
	f := newFixture()
	app := f.g.AddApplication()
	a := f.file(app, "a")
	b := f.file(app, "b")
	mainA, bodyA := f.function(a, "main")
	f.g.AddEdge(bodyA, a, SharedScope)
	mainB, bodyB := f.function(b, "main")
	f.g.AddEdge(bodyB, b, SharedScope)

	vs, err := VisibleDeclarations(f.g, f.de, bodyA)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if len(vs) != 1 || vs[0].Node != mainA {
		t.Fatalf("visible from a/main = %+v", vs)
	}
	for _, v := range vs {
		if v.Node == mainB {
			t.Fatalf("b/main leaked into a")
		}
	}
	if vs, _ := VisibleDeclarations(f.g, f.de, app); len(vs) != 0 {
		t.Fatalf("application root must not propagate, got %v", names(vs))
	}
}

func TestSharedScopeExposesImplMethods(t *testing.T) {
	f := newFixture()
	scope := f.g.AddScope("file")

	method := f.de.InsertFunction(ty.FunctionDecl{Name: "get"})
	mref, _ := f.de.Ref(method)
	methodNode := f.g.AddSyntax(ty.DeclNode(ty.FunctionDeclaration(mref)))

	impl := f.de.InsertTraitImpl(ty.TraitImpl{TraitName: "Get", Methods: []ids.DeclarationID{method}})
	iref, _ := f.de.Ref(impl)
	implNode := f.g.AddSyntax(ty.DeclNode(ty.TraitImplDeclaration(iref)))
	f.g.AddEdge(implNode, methodNode, DeclarationContents)
	f.g.AddEdge(scope, implNode, SharedScope)

	v, ok, err := Lookup(f.g, f.de, scope, "get")
	if err != nil || !ok || v.Decl != method {
		t.Fatalf("lookup get = %+v, %v, %v", v, ok, err)
	}
	got := names(mustVisible(t, f, scope))
	if len(got) != 2 || got[0] != "Get" || got[1] != "get" {
		t.Fatalf("visit order = %v", got)
	}
}

func TestCyclesTerminate(t *testing.T) {
	f := newFixture()
	outer := f.g.AddScope("outer")
	_, body := f.function(outer, "f")
	f.g.AddEdge(body, outer, SharedScope)
	f.g.AddEdge(outer, body, SharedScope)
	f.g.AddEdge(body, body, SharedScope)

	vs := mustVisible(t, f, body)
	if len(vs) != 1 || vs[0].Name != "f" {
		t.Fatalf("visible = %v", names(vs))
	}
}

func TestEdgeInsertionOrderDrivesVisitOrder(t *testing.T) {
	f := newFixture()
	scope := f.g.AddScope("s")
	f.function(scope, "first")
	f.function(scope, "second")
	f.function(scope, "first")

	vs := mustVisible(t, f, scope)
	got := names(vs)
	if len(got) != 3 || got[0] != "first" || got[1] != "second" || got[2] != "first" {
		t.Fatalf("order = %v", got)
	}
	v, _, _ := Lookup(f.g, f.de, scope, "first")
	if v.Node != vs[0].Node {
		t.Fatalf("lookup must return the first match")
	}
}

type brokenDecls struct{}

func (brokenDecls) NameAs(id ids.DeclarationID, _ ids.DeclarationKind) (string, error) {
	return "", diag.Errorf(diag.DeclNotFound, "%s", id)
}

func TestMissingDeclarationFailsTraversal(t *testing.T) {
	f := newFixture()
	scope := f.g.AddScope("s")
	f.function(scope, "f")
	_, err := VisibleDeclarations(f.g, brokenDecls{}, scope)
	if !errors.Is(err, diag.DeclNotFound) {
		t.Fatalf("expected DeclNotFound, got %v", err)
	}
}

func TestNodeKindMustMatchHandle(t *testing.T) {
	f := newFixture()
	scope := f.g.AddScope("s")
	id := f.de.InsertStruct(ty.StructDecl{Name: "Point"})
	ref, _ := f.de.Ref(id)
	node := f.g.AddSyntax(ty.DeclNode(ty.FunctionDeclaration(ref)))
	f.g.AddEdge(scope, node, NodeContents)

	vs, err := VisibleDeclarations(f.g, f.de, scope)
	if !errors.Is(err, diag.DeclKindMismatch) {
		t.Fatalf("expected DeclKindMismatch, got %v (visible %v)", err, vs)
	}
	if _, ok, err := Lookup(f.g, f.de, scope, "Point"); ok || err == nil {
		t.Fatalf("lookup through a mismatched node: ok=%v err=%v", ok, err)
	}
}

func TestVariablesContributeNothing(t *testing.T) {
	f := newFixture()
	scope := f.g.AddScope("s")
	local := f.g.AddSyntax(ty.DeclNode(ty.VariableDeclaration(ty.VariableDecl{Name: "x"})))
	f.g.AddEdge(scope, local, NodeContents)
	if vs := mustVisible(t, f, scope); len(vs) != 0 {
		t.Fatalf("locals are not engine declarations: %v", names(vs))
	}
}

func TestInstanceSlot(t *testing.T) {
	f := newFixture()
	scope := f.g.AddScope("s")
	node, _ := f.function(scope, "identity")
	clone := f.de.InsertFunction(ty.FunctionDecl{Name: "identity"})

	if _, ok := f.g.Instance(node, "u8"); ok {
		t.Fatalf("slot should start empty")
	}
	f.g.RecordInstance(node, "u8", []types.TypeID{1}, clone)
	if got, ok := f.g.Instance(node, "u8"); !ok || got != clone {
		t.Fatalf("instance = %v, %v", got, ok)
	}
	if ins := f.g.Instances(node); len(ins) != 1 || ins[0].Key != "u8" {
		t.Fatalf("instances = %+v", ins)
	}
	id, _ := f.g.Node(node).Declaration()
	if back, ok := f.g.DeclarationNode(id); !ok || back != node {
		t.Fatalf("declaration node = %d, %v", back, ok)
	}
}

func mustVisible(t *testing.T, f *fixture, start ids.CollectionIndex) []Visible {
	t.Helper()
	vs, err := VisibleDeclarations(f.g, f.de, start)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	return vs
}
