package collect

import (
	"context"
	"errors"
	"testing"

	"decc/internal/ast"
	"decc/internal/decl"
	"decc/internal/diag"
	"decc/internal/graph"
	"decc/internal/ids"
	"decc/internal/namespace"
	"decc/internal/testkit"
	"decc/internal/ty"
	"decc/internal/typeres"
	"decc/internal/types"
)

func newCollector() *Collector {
	te, de, g := types.NewEngine(), decl.NewEngine(0), graph.New(0)
	return New(te, de, g, typeres.New(te, de))
}

func file(name string, nodes ...ast.Node) ast.File { return ast.File{Name: name, Nodes: nodes} }

func fn(name string, tps []string, params []ast.Param, ret ast.TypeExpr, body ...ast.Node) ast.Node {
	return ast.DeclNode(ast.Function(ast.FunctionDecl{
		Name: name, TypeParameters: tps, Parameters: params, ReturnType: ret, Body: body,
	}))
}

func let(name string, asc ast.TypeExpr, body ast.Expr) ast.Node {
	return ast.DeclNode(ast.Variable(name, asc, body))
}

func point() ast.Node {
	return ast.DeclNode(ast.Struct(ast.StructDecl{
		Name:   "Point",
		Fields: []ast.Field{{Name: "x", Type: ast.U32Type()}},
	}))
}

func identity() ast.Node {
	return fn("identity", []string{"T"}, []ast.Param{{Name: "x", Type: ast.NamedType("T")}}, ast.NamedType("T"),
		ast.Return(ast.Var("x")))
}

func mustCollect(t *testing.T, c *Collector, f ast.File) ids.CollectionIndex {
	t.Helper()
	idx, err := c.CollectFile(context.Background(), f)
	if err != nil {
		t.Fatalf("collect %s: %v", f.Name, err)
	}
	if err := testkit.CheckGraphInvariants(c.Graph, c.Decls); err != nil {
		t.Fatalf("graph invariants after %s: %v", f.Name, err)
	}
	return idx
}

func scopeOf(c *Collector, file ids.CollectionIndex) ids.CollectionIndex {
	return c.Graph.Children(file, graph.FileContents)[0]
}

func function(t *testing.T, c *Collector, scope ids.CollectionIndex, name string) ty.FunctionDecl {
	t.Helper()
	v, ok, err := graph.LookupFunc(c.Graph, c.Decls, scope, func(v graph.Visible) bool {
		return v.Name == name && v.Decl.Kind == ids.DeclFunction
	})
	if err != nil || !ok {
		t.Fatalf("function %s not visible: %v", name, err)
	}
	out, err := c.Decls.GetFunction(v.Decl)
	if err != nil {
		t.Fatalf("get %s: %v", name, err)
	}
	return out
}

// stmt returns the expression carried by the i-th statement of fn.
func stmt(c *Collector, fn ty.FunctionDecl, i int) ty.Expr {
	n := c.Graph.Node(fn.Body[i]).Syntax
	if n.Kind == ty.NodeDeclaration {
		return n.Decl.Variable.Body
	}
	return n.Expr
}

func TestGenericCallsAreMonomorphized(t *testing.T) {
	c := newCollector()
	f := mustCollect(t, c, file("main",
		identity(),
		fn("main", nil, nil, ast.U8Type(),
			let("a", ast.UnknownType(), ast.Call("identity", []ast.TypeExpr{ast.U8Type()}, ast.Lit(ast.U8(1)))),
			let("b", ast.UnknownType(), ast.Call("identity", []ast.TypeExpr{ast.U32Type()}, ast.Lit(ast.U32(2)))),
			let("c", ast.UnknownType(), ast.Call("identity", []ast.TypeExpr{ast.U8Type()}, ast.Lit(ast.U8(3)))),
			ast.Return(ast.Var("a")),
		),
	))
	main := function(t, c, scopeOf(c, f), "main")
	a := stmt(c, main, 0).Data.(ty.ApplicationData)
	b := stmt(c, main, 1).Data.(ty.ApplicationData)
	again := stmt(c, main, 2).Data.(ty.ApplicationData)
	if a.Callee.ID == b.Callee.ID {
		t.Fatalf("u8 and u32 instances must differ")
	}
	if a.Callee.ID != again.Callee.ID {
		t.Fatalf("identical type arguments must reuse the instance")
	}
	if a.Origin.ID != b.Origin.ID || a.Origin.ID == a.Callee.ID {
		t.Fatalf("origin should be the generic declaration")
	}
	if got := c.Types.Display(stmt(c, main, 1).Type); got != "u32" {
		t.Fatalf("identity::<u32> has type %s", got)
	}
	if got := c.Types.Display(stmt(c, main, 3).Type); got != "u8" {
		t.Fatalf("return a has type %s", got)
	}
}

func TestUnknownAscriptionFollowsBody(t *testing.T) {
	c := newCollector()
	f := mustCollect(t, c, file("main",
		fn("main", nil, nil, ast.U16Type(),
			let("x", ast.UnknownType(), ast.Lit(ast.U16(5))),
			ast.Return(ast.Var("x")),
		),
	))
	main := function(t, c, scopeOf(c, f), "main")
	x := c.Graph.Node(main.Body[0]).Syntax.Decl.Variable
	if c.Types.MustLookup(x.TypeAscription).Kind != types.KindRef {
		t.Fatalf("ascription should have been rebound to a Ref")
	}
	if !c.Types.Equal(x.TypeAscription, main.ReturnType) {
		t.Fatalf("x should be u16, got %s", c.Types.Display(x.TypeAscription))
	}
	if len(c.Types.Rebinds()) != 1 {
		t.Fatalf("expected one audited rebind, got %d", len(c.Types.Rebinds()))
	}
}

func TestStructNamesLeakOneLevel(t *testing.T) {
	c := newCollector()
	mustCollect(t, c, file("ok",
		point(),
		let("p", ast.NamedType("Point"), ast.StructLit("Point", nil, ast.FieldInit{Name: "x", Value: ast.Lit(ast.U32(1))})),
	))

	c = newCollector()
	mustCollect(t, c, file("body",
		fn("f", nil, nil, ast.U32Type(),
			point(),
			let("p", ast.NamedType("Point"), ast.StructLit("Point", nil, ast.FieldInit{Name: "x", Value: ast.Lit(ast.U32(1))})),
			ast.Return(ast.Lit(ast.U32(1))),
		),
		let("q", ast.NamedType("Point"), ast.StructLit("Point", nil, ast.FieldInit{Name: "x", Value: ast.Lit(ast.U32(2))})),
	))

	tests := []struct {
		name  string
		nodes []ast.Node
		want  diag.Code
	}{
		{
			name: "struct two function bodies deep",
			nodes: []ast.Node{
				fn("outer", nil, nil, ast.U8Type(),
					fn("inner", nil, nil, ast.U8Type(),
						ast.DeclNode(ast.Struct(ast.StructDecl{Name: "Deep", Fields: []ast.Field{{Name: "v", Type: ast.U8Type()}}})),
						ast.Return(ast.Lit(ast.U8(1))),
					),
					let("d", ast.NamedType("Deep"), ast.StructLit("Deep", nil, ast.FieldInit{Name: "v", Value: ast.Lit(ast.U8(2))})),
					ast.Return(ast.Lit(ast.U8(1))),
				),
				let("q", ast.NamedType("Deep"), ast.Lit(ast.U8(1))),
			},
			want: diag.UnresolvedType,
		},
		{
			name: "function name as a type",
			nodes: []ast.Node{
				fn("g", nil, nil, ast.U8Type(), ast.Return(ast.Lit(ast.U8(1)))),
				let("q", ast.NamedType("g"), ast.Lit(ast.U8(1))),
			},
			want: diag.UnresolvedType,
		},
		{
			name: "trait name as a type",
			nodes: []ast.Node{
				ast.DeclNode(ast.Trait(ast.TraitDecl{Name: "Show"})),
				let("q", ast.NamedType("Show"), ast.Lit(ast.U8(1))),
			},
			want: diag.UnresolvedType,
		},
		{
			name: "variable name as a type",
			nodes: []ast.Node{
				let("v", ast.U8Type(), ast.Lit(ast.U8(1))),
				let("q", ast.NamedType("v"), ast.Lit(ast.U8(1))),
			},
			want: diag.NotAType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCollector().CollectFile(context.Background(), file("f", tt.nodes...))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGenericImplIsRefusedUntouched(t *testing.T) {
	c := newCollector()
	scope := c.Graph.AddScope("s")
	types0, decls0, nodes0 := c.Types.Len(), c.Decls.Len(), c.Graph.Len()

	impl := ast.DeclNode(ast.Impl(ast.TraitImpl{
		TraitName:           "Show",
		TypeImplementingFor: ast.NamedType("Box", ast.NamedType("T")),
		TypeParameters:      []string{"T"},
		Methods: []ast.FunctionDecl{{
			Name: "show", ReturnType: ast.U8Type(), Body: []ast.Node{ast.Return(ast.Lit(ast.U8(1)))},
		}},
	}))
	_, _, err := c.CollectNode(context.Background(), namespace.New(), scope, impl)
	if !errors.Is(err, diag.UnsupportedGenericImpl) || !errors.Is(err, diag.ErrUnsupported) {
		t.Fatalf("expected UnsupportedGenericImpl, got %v", err)
	}
	if c.Types.Len() != types0 || c.Decls.Len() != decls0 || c.Graph.Len() != nodes0 {
		t.Fatalf("stores changed: types %d->%d decls %d->%d nodes %d->%d",
			types0, c.Types.Len(), decls0, c.Decls.Len(), nodes0, c.Graph.Len())
	}
	if len(c.Graph.Edges(scope)) != 0 {
		t.Fatalf("no edge may be added for a refused impl")
	}
}

func getImpl() []ast.Node {
	return []ast.Node{
		point(),
		ast.DeclNode(ast.Trait(ast.TraitDecl{
			Name:             "Get",
			InterfaceSurface: []ast.TraitFn{{Name: "get", ReturnType: ast.U32Type()}},
		})),
		ast.DeclNode(ast.Impl(ast.TraitImpl{
			TraitName:           "Get",
			TypeImplementingFor: ast.NamedType("Point"),
			Methods: []ast.FunctionDecl{{
				Name: "get", ReturnType: ast.U32Type(), Body: []ast.Node{ast.Return(ast.Lit(ast.U32(7)))},
			}},
		})),
	}
}

func TestMethodCallsResolveThroughImpls(t *testing.T) {
	c := newCollector()
	nodes := append(getImpl(),
		fn("main", nil, nil, ast.U32Type(),
			let("p", ast.NamedType("Point"), ast.StructLit("Point", nil, ast.FieldInit{Name: "x", Value: ast.Lit(ast.U32(1))})),
			ast.Return(ast.MethodCall("p", "get")),
		),
	)
	f := mustCollect(t, c, file("main", nodes...))
	scope := scopeOf(c, f)
	main := function(t, c, scope, "main")
	call := stmt(c, main, 1)
	data := call.Data.(ty.MethodCallData)
	if data.Impl.Name != "Get" || data.Callee.Name != "get" || data.Callee.ID.Kind != ids.DeclFunction {
		t.Fatalf("unexpected resolution %+v", data)
	}
	if c.Types.Display(call.Type) != "u32" {
		t.Fatalf("p.get() has type %s", c.Types.Display(call.Type))
	}

	// the impl shares its method with the file scope
	v, ok, err := graph.LookupFunc(c.Graph, c.Decls, scope, func(v graph.Visible) bool {
		return v.Decl == data.Callee.ID
	})
	if err != nil || !ok || v.Name != "get" {
		t.Fatalf("impl method should be visible from the file scope")
	}
}

func TestMethodCallWithoutImpl(t *testing.T) {
	nodes := append(getImpl(),
		let("n", ast.U8Type(), ast.Lit(ast.U8(1))),
		ast.ExprNode(ast.MethodCall("n", "get")),
	)
	_, err := newCollector().CollectFile(context.Background(), file("f", nodes...))
	if !errors.Is(err, diag.NoMethod) {
		t.Fatalf("expected NoMethod, got %v", err)
	}
}

func TestStructExpressions(t *testing.T) {
	pair := ast.DeclNode(ast.Struct(ast.StructDecl{
		Name:           "Pair",
		TypeParameters: []string{"T"},
		Fields:         []ast.Field{{Name: "a", Type: ast.NamedType("T")}, {Name: "b", Type: ast.NamedType("T")}},
	}))
	u8 := []ast.TypeExpr{ast.U8Type()}
	one := ast.Lit(ast.U8(1))

	c := newCollector()
	f := mustCollect(t, c, file("ok", pair,
		fn("main", nil, nil, ast.U8Type(),
			let("p", ast.NamedType("Pair", ast.U8Type()),
				ast.StructLit("Pair", u8, ast.FieldInit{Name: "a", Value: one}, ast.FieldInit{Name: "b", Value: one})),
			ast.Return(one),
		),
	))
	main := function(t, c, scopeOf(c, f), "main")
	p := c.Graph.Node(main.Body[0]).Syntax.Decl.Variable
	if !c.Types.Equal(p.TypeAscription, p.Body.Type) {
		t.Fatalf("ascription %s vs expression %s", c.Types.Display(p.TypeAscription), c.Types.Display(p.Body.Type))
	}
	if got := c.Types.Display(p.Body.Type); got != "Pair<u8>" {
		t.Fatalf("struct expression type = %s", got)
	}
	data := p.Body.Data.(ty.StructData)
	inst, err := c.Decls.GetStruct(data.Decl.ID)
	if err != nil || inst.IsGeneric() || c.Types.Display(inst.Fields[0].TypeID) != "u8" {
		t.Fatalf("expected concrete Pair<u8> instance, got %+v (%v)", inst, err)
	}

	tests := []struct {
		name   string
		fields []ast.FieldInit
		want   diag.Code
	}{
		{"unknown field", []ast.FieldInit{{Name: "a", Value: one}, {Name: "b", Value: one}, {Name: "c", Value: one}}, diag.UnknownField},
		{"missing field", []ast.FieldInit{{Name: "a", Value: one}}, diag.MissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCollector().CollectFile(context.Background(), file("bad", pair,
				ast.ExprNode(ast.StructLit("Pair", u8, tt.fields...))))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestInnermostCalleeWins(t *testing.T) {
	c := newCollector()
	f := mustCollect(t, c, file("main",
		fn("helper", nil, nil, ast.U8Type(), ast.Return(ast.Lit(ast.U8(1)))),
		fn("main", nil, nil, ast.U32Type(),
			fn("helper", nil, nil, ast.U32Type(), ast.Return(ast.Lit(ast.U32(2)))),
			ast.Return(ast.Call("helper", nil)),
		),
	))
	main := function(t, c, scopeOf(c, f), "main")
	if got := c.Types.Display(stmt(c, main, 1).Type); got != "u32" {
		t.Fatalf("inner helper should win, got %s", got)
	}
}

func TestCallErrors(t *testing.T) {
	add := fn("add", nil, []ast.Param{{Name: "x", Type: ast.U8Type()}}, ast.U8Type(), ast.Return(ast.Var("x")))
	tests := []struct {
		name  string
		nodes []ast.Node
		want  diag.Code
	}{
		{"unknown function", []ast.Node{ast.ExprNode(ast.Call("nope", nil))}, diag.UnresolvedName},
		{"argument count", []ast.Node{add, ast.ExprNode(ast.Call("add", nil))}, diag.ArgCount},
		{"missing type arguments", []ast.Node{identity(), ast.ExprNode(ast.Call("identity", nil, ast.Lit(ast.U8(1))))}, diag.TypeArgCount},
		{"calling a struct", []ast.Node{point(), ast.ExprNode(ast.Call("Point", nil))}, diag.NotCallable},
		{"calling a trait", []ast.Node{ast.DeclNode(ast.Trait(ast.TraitDecl{Name: "T"})), ast.ExprNode(ast.Call("T", nil))}, diag.NotCallable},
		{"use before declaration", []ast.Node{ast.ExprNode(ast.Call("add", nil, ast.Lit(ast.U8(1)))), add}, diag.UnresolvedName},
		{"unknown variable", []ast.Node{ast.ExprNode(ast.Var("ghost"))}, diag.UnresolvedName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCollector().CollectFile(context.Background(), file("f", tt.nodes...))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var de *diag.Error
			if !errors.As(err, &de) || de.File != "f" {
				t.Fatalf("error should name its file: %v", err)
			}
		})
	}
}

func TestApplicationFirewallsFiles(t *testing.T) {
	c := newCollector()
	app, err := c.CollectApplication(context.Background(), ast.Application{Files: []ast.File{
		file("a", fn("only_in_a", nil, nil, ast.U8Type(), ast.Return(ast.Lit(ast.U8(1))))),
		file("b", ast.ExprNode(ast.Call("only_in_a", nil))),
		file("c", fn("main", nil, nil, ast.U8Type(), ast.Return(ast.Lit(ast.U8(2))))),
	}})
	if !errors.Is(err, diag.UnresolvedName) {
		t.Fatalf("file b should fail to resolve, got %v", err)
	}
	if len(app.Files) != 2 {
		t.Fatalf("files a and c should survive, got %d", len(app.Files))
	}
	got := c.Graph.Children(app.Root, graph.ApplicationContents)
	if len(got) != 2 || got[0] != app.Files[0] || got[1] != app.Files[1] {
		t.Fatalf("root edges = %v, files = %v", got, app.Files)
	}
	if c.Graph.Node(app.Files[1]).Label != "c" {
		t.Fatalf("second surviving file should be c")
	}
}
