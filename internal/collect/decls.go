package collect

import (
	"context"

	"decc/internal/ast"
	"decc/internal/diag"
	"decc/internal/graph"
	"decc/internal/ids"
	"decc/internal/namespace"
	"decc/internal/trace"
	"decc/internal/ty"
	"decc/internal/types"
)

func (c *Collector) collectDecl(ctx context.Context, ns *namespace.Namespace, d ast.Decl) (ty.Node, ids.CollectionIndex, error) {
	switch data := d.Data.(type) {
	case ast.VariableDecl:
		return c.collectVariable(ctx, ns, data)
	case ast.FunctionDecl:
		_, idx, err := c.collectFunction(ctx, ns, data)
		if err != nil {
			return ty.Node{}, ids.NoCollectionIndex, err
		}
		return c.Graph.Node(idx).Syntax, idx, nil
	case ast.TraitDecl:
		return c.collectTrait(ctx, ns, data)
	case ast.TraitImpl:
		return c.collectImpl(ctx, ns, data)
	case ast.StructDecl:
		return c.collectStruct(ctx, ns, data)
	default:
		return ty.Node{}, ids.NoCollectionIndex, diag.Errorf(diag.InputInvalid, "declaration kind %s has no payload", d.Kind)
	}
}

// collectVariable binds a local. An omitted ascription takes the type of
// the body through a Ref.
func (c *Collector) collectVariable(ctx context.Context, ns *namespace.Namespace, v ast.VariableDecl) (ty.Node, ids.CollectionIndex, error) {
	body, bodyIdx, err := c.collectExpr(ctx, ns, v.Body)
	if err != nil {
		return ty.Node{}, ids.NoCollectionIndex, err
	}
	asc, err := c.evalType(v.TypeAscription, ns)
	if err != nil {
		return ty.Node{}, ids.NoCollectionIndex, err
	}
	if c.Types.Resolve(asc).Kind == types.KindUnknown {
		if err := c.Types.Rebind(asc, types.RefTo(body.Type)); err != nil {
			return ty.Node{}, ids.NoCollectionIndex, diag.Wrap(diag.UnresolvedType, err, "variable %s", v.Name)
		}
	}
	d := ty.VariableDeclaration(ty.VariableDecl{Name: v.Name, TypeAscription: asc, Body: body})
	ns.InsertSymbol(v.Name, d)
	node := ty.DeclNode(d)
	idx := c.Graph.AddSyntax(node)
	c.Graph.AddEdge(idx, bodyIdx, graph.NodeContents)
	return node, idx, nil
}

// typeParameters binds each name to a fresh placeholder in ns.
func (c *Collector) typeParameters(ns *namespace.Namespace, names []string) []types.TypeParameter {
	if len(names) == 0 {
		return nil
	}
	out := make([]types.TypeParameter, len(names))
	for i, name := range names {
		id := c.Types.Insert(types.Generic(name))
		ns.InsertSymbol(name, ty.GenericParamDeclaration(id))
		out[i] = types.TypeParameter{Name: name, TypeID: id}
	}
	return out
}

func (c *Collector) parameters(ns *namespace.Namespace, params []ast.Param) ([]ty.Parameter, error) {
	if len(params) == 0 {
		return nil, nil
	}
	out := make([]ty.Parameter, len(params))
	for i, p := range params {
		id, err := c.evalType(p.Type, ns)
		if err != nil {
			return nil, err
		}
		out[i] = ty.Parameter{Name: p.Name, TypeID: id}
	}
	return out, nil
}

// collectFunction collects fn into its own scope and registers it. The
// function's name is not bound in ns; calls find it through the graph.
// Struct names declared directly in the body are bound in ns once the
// body is done.
func (c *Collector) collectFunction(ctx context.Context, ns *namespace.Namespace, fn ast.FunctionDecl) (ids.DeclarationID, ids.CollectionIndex, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDecl, "fn "+fn.Name)
	defer span.End("")

	child := ns.Scoped()
	tps := c.typeParameters(child, fn.TypeParameters)
	params, err := c.parameters(child, fn.Parameters)
	if err != nil {
		return ids.NoDeclarationID, ids.NoCollectionIndex, err
	}
	for _, p := range params {
		child.InsertSymbol(p.Name, ty.VariableDeclaration(ty.VariableDecl{
			Name:           p.Name,
			TypeAscription: p.TypeID,
			Body:           ty.Expr{Kind: ty.ExprFunctionParameter, Type: p.TypeID, Data: ty.FunctionParameterData{}},
		}))
	}
	ret, err := c.evalType(fn.ReturnType, child)
	if err != nil {
		return ids.NoDeclarationID, ids.NoCollectionIndex, err
	}

	scope := c.openScope(fn.Name)
	body := make([]ids.CollectionIndex, 0, len(fn.Body))
	var structs []ty.Declaration
	for _, n := range fn.Body {
		node, idx, err := c.collectNode(ctx, child, n)
		if err != nil {
			c.closeScope(scope)
			return ids.NoDeclarationID, ids.NoCollectionIndex, err
		}
		if node.Kind == ty.NodeDeclaration && node.Decl.Kind == ty.DeclStruct {
			structs = append(structs, node.Decl)
		}
		body = append(body, idx)
	}
	c.closeScope(scope)
	// Structs declared in the body are also named one level out.
	for _, d := range structs {
		ns.InsertSymbol(d.Ref.Name, d)
	}

	id := c.Decls.InsertFunction(ty.FunctionDecl{
		Name:           fn.Name,
		TypeParameters: tps,
		Parameters:     params,
		Body:           body,
		BodyScope:      scope,
		ReturnType:     ret,
	})
	ref, err := c.Decls.Ref(id)
	if err != nil {
		return ids.NoDeclarationID, ids.NoCollectionIndex, err
	}
	idx := c.Graph.AddSyntax(ty.DeclNode(ty.FunctionDeclaration(ref)))
	c.Graph.AddEdge(idx, scope, graph.ScopedChild)
	return id, idx, nil
}

func (c *Collector) collectTrait(ctx context.Context, ns *namespace.Namespace, tr ast.TraitDecl) (ty.Node, ids.CollectionIndex, error) {
	_, span := trace.Start(ctx, trace.ScopeDecl, "trait "+tr.Name)
	defer span.End("")

	child := ns.Scoped()
	surface := make([]ids.DeclarationID, 0, len(tr.InterfaceSurface))
	nodes := make([]ids.CollectionIndex, 0, len(tr.InterfaceSurface))
	for _, sig := range tr.InterfaceSurface {
		params, err := c.parameters(child, sig.Parameters)
		if err != nil {
			return ty.Node{}, ids.NoCollectionIndex, err
		}
		ret, err := c.evalType(sig.ReturnType, child)
		if err != nil {
			return ty.Node{}, ids.NoCollectionIndex, err
		}
		id := c.Decls.InsertTraitFn(ty.TraitFn{Name: sig.Name, Parameters: params, ReturnType: ret})
		ref, err := c.Decls.Ref(id)
		if err != nil {
			return ty.Node{}, ids.NoCollectionIndex, err
		}
		surface = append(surface, id)
		nodes = append(nodes, c.Graph.AddSyntax(ty.DeclNode(ty.TraitFnDeclaration(ref))))
	}

	id := c.Decls.InsertTrait(ty.TraitDecl{Name: tr.Name, InterfaceSurface: surface})
	ref, err := c.Decls.Ref(id)
	if err != nil {
		return ty.Node{}, ids.NoCollectionIndex, err
	}
	node := ty.DeclNode(ty.TraitDeclaration(ref))
	idx := c.Graph.AddSyntax(node)
	for _, n := range nodes {
		c.Graph.AddEdge(idx, n, graph.DeclarationContents)
	}
	return node, idx, nil
}

// collectImpl collects a trait implementation and shares its methods with
// the enclosing scope. Generic implementations are refused before any
// store is touched.
func (c *Collector) collectImpl(ctx context.Context, ns *namespace.Namespace, impl ast.TraitImpl) (ty.Node, ids.CollectionIndex, error) {
	if len(impl.TypeParameters) > 0 {
		return ty.Node{}, ids.NoCollectionIndex, diag.Errorf(diag.UnsupportedGenericImpl,
			"impl %s for %s has type parameters %v", impl.TraitName, impl.TypeImplementingFor, impl.TypeParameters)
	}
	ctx, span := trace.Start(ctx, trace.ScopeDecl, "impl "+impl.TraitName)
	defer span.End("")

	child := ns.Scoped()
	methods := make([]ids.DeclarationID, 0, len(impl.Methods))
	nodes := make([]ids.CollectionIndex, 0, len(impl.Methods))
	for _, m := range impl.Methods {
		id, idx, err := c.collectFunction(ctx, child, m)
		if err != nil {
			return ty.Node{}, ids.NoCollectionIndex, err
		}
		methods = append(methods, id)
		nodes = append(nodes, idx)
	}
	self, err := c.evalType(impl.TypeImplementingFor, child)
	if err != nil {
		return ty.Node{}, ids.NoCollectionIndex, err
	}

	id := c.Decls.InsertTraitImpl(ty.TraitImpl{
		TraitName:           impl.TraitName,
		TypeImplementingFor: self,
		Methods:             methods,
	})
	ref, err := c.Decls.Ref(id)
	if err != nil {
		return ty.Node{}, ids.NoCollectionIndex, err
	}
	node := ty.DeclNode(ty.TraitImplDeclaration(ref))
	idx := c.Graph.AddSyntax(node)
	for _, n := range nodes {
		c.Graph.AddEdge(idx, n, graph.DeclarationContents)
	}
	c.Graph.AddEdge(c.current(), idx, graph.SharedScope)
	return node, idx, nil
}

// collectStruct registers a struct and binds its name in the enclosing
// namespace, unlike every other declaration kind. Inside a function body
// collectFunction carries the binding one level further out.
func (c *Collector) collectStruct(ctx context.Context, ns *namespace.Namespace, st ast.StructDecl) (ty.Node, ids.CollectionIndex, error) {
	_, span := trace.Start(ctx, trace.ScopeDecl, "struct "+st.Name)
	defer span.End("")

	child := ns.Scoped()
	tps := c.typeParameters(child, st.TypeParameters)
	fields := make([]ty.StructField, 0, len(st.Fields))
	for _, f := range st.Fields {
		id, err := c.evalType(f.Type, child)
		if err != nil {
			return ty.Node{}, ids.NoCollectionIndex, err
		}
		fields = append(fields, ty.StructField{Name: f.Name, TypeID: id})
	}

	id := c.Decls.InsertStruct(ty.StructDecl{Name: st.Name, TypeParameters: tps, Fields: fields})
	ref, err := c.Decls.Ref(id)
	if err != nil {
		return ty.Node{}, ids.NoCollectionIndex, err
	}
	d := ty.StructDeclaration(ref)
	ns.InsertSymbol(st.Name, d)
	node := ty.DeclNode(d)
	return node, c.Graph.AddSyntax(node), nil
}
