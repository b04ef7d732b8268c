package collect

import (
	"context"

	"decc/internal/ast"
	"decc/internal/diag"
	"decc/internal/graph"
	"decc/internal/ids"
	"decc/internal/namespace"
	"decc/internal/ty"
	"decc/internal/types"
)

// collectExpr types e and adds a syntax node for it whose NodeContents
// edges lead to the nodes of its sub-expressions.
func (c *Collector) collectExpr(ctx context.Context, ns *namespace.Namespace, e ast.Expr) (ty.Expr, ids.CollectionIndex, error) {
	var (
		out      ty.Expr
		children []ids.CollectionIndex
		err      error
	)
	switch data := e.Data.(type) {
	case ast.LiteralData:
		out, err = c.literal(data)
	case ast.VariableData:
		out, err = c.variable(ns, data)
	case ast.ApplicationData:
		out, children, err = c.application(ctx, ns, data)
	case ast.StructData:
		out, children, err = c.structExpr(ctx, ns, data)
	case ast.MethodCallData:
		out, children, err = c.methodCall(ctx, ns, data)
	default:
		err = diag.Errorf(diag.InputInvalid, "expression kind %s has no payload", e.Kind)
	}
	if err != nil {
		return ty.Expr{}, ids.NoCollectionIndex, err
	}
	idx := c.Graph.AddSyntax(ty.ExprNode(out))
	for _, child := range children {
		c.Graph.AddEdge(idx, child, graph.NodeContents)
	}
	return out, idx, nil
}

func (c *Collector) collectArgs(ctx context.Context, ns *namespace.Namespace, args []ast.Expr) ([]ty.Expr, []ids.CollectionIndex, error) {
	if len(args) == 0 {
		return nil, nil, nil
	}
	exprs := make([]ty.Expr, len(args))
	nodes := make([]ids.CollectionIndex, len(args))
	for i, a := range args {
		e, idx, err := c.collectExpr(ctx, ns, a)
		if err != nil {
			return nil, nil, err
		}
		exprs[i], nodes[i] = e, idx
	}
	return exprs, nodes, nil
}

func (c *Collector) literal(d ast.LiteralData) (ty.Expr, error) {
	bits := types.IntegerBits(d.Value.Bits)
	if !bits.Valid() {
		return ty.Expr{}, diag.Errorf(diag.InputInvalid, "literal %s has no integer width", d.Value)
	}
	return ty.Expr{
		Kind: ty.ExprLiteral,
		Type: c.Types.Insert(types.Uint(bits)),
		Data: ty.LiteralData{Value: d.Value},
	}, nil
}

func (c *Collector) variable(ns *namespace.Namespace, d ast.VariableData) (ty.Expr, error) {
	v, err := c.lookupVariable(ns, d.Name)
	if err != nil {
		return ty.Expr{}, err
	}
	return ty.Expr{
		Kind: ty.ExprVariable,
		Type: v.TypeAscription,
		Data: ty.VariableData{Name: d.Name},
	}, nil
}

func (c *Collector) lookupVariable(ns *namespace.Namespace, name string) (ty.VariableDecl, error) {
	d, ok := ns.Lookup(name)
	if !ok {
		return ty.VariableDecl{}, diag.Errorf(diag.UnresolvedName, "%s", name)
	}
	v, err := d.ExpectVariable()
	if err != nil {
		return ty.VariableDecl{}, diag.Wrap(diag.UnresolvedName, err, "%s is not a value", name)
	}
	return v, nil
}

// application resolves the callee from the innermost open scope outward
// and instantiates it when it is generic.
func (c *Collector) application(ctx context.Context, ns *namespace.Namespace, d ast.ApplicationData) (ty.Expr, []ids.CollectionIndex, error) {
	callee, err := c.resolveCallee(ns, d.Name)
	if err != nil {
		return ty.Expr{}, nil, err
	}
	fn, err := c.Decls.GetFunction(callee)
	if err != nil {
		return ty.Expr{}, nil, err
	}
	typeArgs, err := c.evalTypes(d.TypeArgs, ns)
	if err != nil {
		return ty.Expr{}, nil, err
	}
	inst, err := c.Mono.InstantiateFunction(ctx, callee, typeArgs)
	if err != nil {
		return ty.Expr{}, nil, err
	}
	if inst != callee {
		if fn, err = c.Decls.GetFunction(inst); err != nil {
			return ty.Expr{}, nil, err
		}
	}
	if len(d.Args) != len(fn.Parameters) {
		return ty.Expr{}, nil, diag.Errorf(diag.ArgCount,
			"%s expects %d arguments, got %d", d.Name, len(fn.Parameters), len(d.Args))
	}
	args, nodes, err := c.collectArgs(ctx, ns, d.Args)
	if err != nil {
		return ty.Expr{}, nil, err
	}

	data := ty.ApplicationData{Name: d.Name, TypeArgs: typeArgs, Args: args}
	if data.Callee, err = c.Decls.Ref(inst); err != nil {
		return ty.Expr{}, nil, err
	}
	if inst != callee {
		if data.Origin, err = c.Decls.Ref(callee); err != nil {
			return ty.Expr{}, nil, err
		}
	}
	return ty.Expr{Kind: ty.ExprApplication, Type: fn.ReturnType, Data: data}, nodes, nil
}

func (c *Collector) resolveCallee(ns *namespace.Namespace, name string) (ids.DeclarationID, error) {
	if d, ok := ns.Lookup(name); ok {
		return ids.NoDeclarationID, diag.Errorf(diag.NotCallable, "%s is a %s", name, d.Kind)
	}
	v, ok, err := c.lookupFunc(func(v graph.Visible) bool {
		return v.Name == name && v.Decl.Kind == ids.DeclFunction
	})
	if err != nil {
		return ids.NoDeclarationID, err
	}
	if ok {
		return v.Decl, nil
	}
	other, ok, err := c.lookupFunc(func(v graph.Visible) bool { return v.Name == name })
	if err != nil {
		return ids.NoDeclarationID, err
	}
	if ok {
		return ids.NoDeclarationID, diag.Errorf(diag.NotCallable, "%s is a %s", name, other.Decl.Kind)
	}
	return ids.NoDeclarationID, diag.Errorf(diag.UnresolvedName, "%s", name)
}

// structExpr types Name::<Args> { fields }. The expression type refers to
// the generic struct with its arguments, the same form a `Name<Args>`
// ascription evaluates to.
func (c *Collector) structExpr(ctx context.Context, ns *namespace.Namespace, d ast.StructData) (ty.Expr, []ids.CollectionIndex, error) {
	sym, ok := ns.Lookup(d.Name)
	if !ok {
		return ty.Expr{}, nil, diag.Errorf(diag.UnresolvedName, "%s", d.Name)
	}
	ref, err := sym.ExpectStruct()
	if err != nil {
		return ty.Expr{}, nil, err
	}
	typeArgs, err := c.evalTypes(d.TypeArgs, ns)
	if err != nil {
		return ty.Expr{}, nil, err
	}
	inst, err := c.Mono.InstantiateStruct(ctx, ref.ID, typeArgs)
	if err != nil {
		return ty.Expr{}, nil, err
	}
	st, err := c.Decls.GetStruct(inst)
	if err != nil {
		return ty.Expr{}, nil, err
	}

	seen := make(map[string]struct{}, len(d.Fields))
	fields := make([]ty.FieldValue, 0, len(d.Fields))
	nodes := make([]ids.CollectionIndex, 0, len(d.Fields))
	for _, f := range d.Fields {
		if _, ok := st.Field(f.Name); !ok {
			return ty.Expr{}, nil, diag.Errorf(diag.UnknownField, "%s has no field %s", st.Name, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return ty.Expr{}, nil, diag.Errorf(diag.InputInvalid, "field %s given twice", f.Name)
		}
		seen[f.Name] = struct{}{}
		value, idx, err := c.collectExpr(ctx, ns, f.Value)
		if err != nil {
			return ty.Expr{}, nil, err
		}
		fields = append(fields, ty.FieldValue{Name: f.Name, Value: value})
		nodes = append(nodes, idx)
	}
	for _, f := range st.Fields {
		if _, ok := seen[f.Name]; !ok {
			return ty.Expr{}, nil, diag.Errorf(diag.MissingField, "%s.%s", st.Name, f.Name)
		}
	}

	data := ty.StructData{Name: d.Name, TypeArgs: typeArgs, Fields: fields}
	if data.Decl, err = c.Decls.Ref(inst); err != nil {
		return ty.Expr{}, nil, err
	}
	if inst != ref.ID {
		data.Origin = ref
	}
	typ := c.Types.Insert(types.DeclRef(ref.ID, st.Name, typeArgs...))
	return ty.Expr{Kind: ty.ExprStruct, Type: typ, Data: data}, nodes, nil
}

// methodCall resolves receiver.method against the trait implementations
// visible from the open scopes whose implementing type equals the
// receiver's type.
func (c *Collector) methodCall(ctx context.Context, ns *namespace.Namespace, d ast.MethodCallData) (ty.Expr, []ids.CollectionIndex, error) {
	recv, err := c.lookupVariable(ns, d.Receiver)
	if err != nil {
		return ty.Expr{}, nil, err
	}
	visible, err := c.visible()
	if err != nil {
		return ty.Expr{}, nil, err
	}
	var (
		impl   ty.Ref
		method ty.Ref
		fn     ty.FunctionDecl
		found  bool
	)
	for _, v := range visible {
		if v.Decl.Kind != ids.DeclTraitImpl {
			continue
		}
		ti, err := c.Decls.GetTraitImpl(v.Decl)
		if err != nil {
			return ty.Expr{}, nil, err
		}
		if !c.Types.Equal(ti.TypeImplementingFor, recv.TypeAscription) {
			continue
		}
		for _, m := range ti.Methods {
			candidate, err := c.Decls.GetFunction(m)
			if err != nil {
				return ty.Expr{}, nil, err
			}
			if candidate.Name != d.Method {
				continue
			}
			if impl, err = c.Decls.Ref(v.Decl); err != nil {
				return ty.Expr{}, nil, err
			}
			if method, err = c.Decls.Ref(m); err != nil {
				return ty.Expr{}, nil, err
			}
			fn, found = candidate, true
			break
		}
		if found {
			break
		}
	}
	if !found {
		return ty.Expr{}, nil, diag.Errorf(diag.NoMethod, "%s has no method %s", c.Types.Display(recv.TypeAscription), d.Method)
	}
	if fn.IsGeneric() {
		return ty.Expr{}, nil, diag.Errorf(diag.TypeArgCount, "method %s needs type arguments", d.Method)
	}
	if len(d.Args) != len(fn.Parameters) {
		return ty.Expr{}, nil, diag.Errorf(diag.ArgCount,
			"%s expects %d arguments, got %d", d.Method, len(fn.Parameters), len(d.Args))
	}
	args, nodes, err := c.collectArgs(ctx, ns, d.Args)
	if err != nil {
		return ty.Expr{}, nil, err
	}
	return ty.Expr{
		Kind: ty.ExprMethodCall,
		Type: fn.ReturnType,
		Data: ty.MethodCallData{Receiver: d.Receiver, Method: d.Method, Impl: impl, Callee: method, Args: args},
	}, nodes, nil
}
