package mono

import (
	"context"
	"fmt"

	"decc/internal/decl"
	"decc/internal/diag"
	"decc/internal/graph"
	"decc/internal/ids"
	"decc/internal/trace"
	"decc/internal/ty"
	"decc/internal/types"
)

// Monomorphizer creates concrete clones of generic declarations on first
// use of a type-argument set and reuses them afterwards. Instances are
// cached on the generic declaration's graph node.
type Monomorphizer struct {
	Types *types.Engine
	Decls *decl.Engine
	Graph *graph.Graph
}

func New(te *types.Engine, de *decl.Engine, g *graph.Graph) *Monomorphizer {
	return &Monomorphizer{Types: te, Decls: de, Graph: g}
}

// InstantiateFunction returns the instance of the function id for args.
// A non-generic function is its own instance.
func (m *Monomorphizer) InstantiateFunction(ctx context.Context, id ids.DeclarationID, args []types.TypeID) (ids.DeclarationID, error) {
	fn, err := m.Decls.GetFunction(id)
	if err != nil {
		return ids.NoDeclarationID, err
	}
	if err := checkArity(fn.Name, len(fn.TypeParameters), len(args)); err != nil {
		return ids.NoDeclarationID, err
	}
	if !fn.IsGeneric() {
		return id, nil
	}
	node := m.declarationNode(id)
	key := m.Types.InstanceKey(args)
	if inst, ok := m.Graph.Instance(node, key); ok {
		return inst, nil
	}

	ctx, span := trace.Start(ctx, trace.ScopeDecl, "instantiate "+fn.Name)
	span.WithExtra("args", key)
	defer span.End("")

	s := NewSubst(m.Types, types.NewMapping(fn.TypeParameters, args))
	clone := s.Function(fn)
	clone.TypeParameters = nil
	clone.BodyScope, clone.Body, err = m.cloneScope(ctx, s, fn.BodyScope, fn.Body, key)
	if err != nil {
		return ids.NoDeclarationID, err
	}
	inst := m.Decls.InsertFunction(clone)
	ref, err := m.Decls.Ref(inst)
	if err != nil {
		return ids.NoDeclarationID, err
	}
	instNode := m.Graph.AddSyntax(ty.DeclNode(ty.FunctionDeclaration(ref)))
	if clone.BodyScope.IsValid() {
		m.Graph.AddEdge(instNode, clone.BodyScope, graph.ScopedChild)
	}
	m.Graph.RecordInstance(node, key, args, inst)
	return inst, nil
}

// InstantiateStruct returns the instance of the struct id for args.
func (m *Monomorphizer) InstantiateStruct(ctx context.Context, id ids.DeclarationID, args []types.TypeID) (ids.DeclarationID, error) {
	st, err := m.Decls.GetStruct(id)
	if err != nil {
		return ids.NoDeclarationID, err
	}
	if err := checkArity(st.Name, len(st.TypeParameters), len(args)); err != nil {
		return ids.NoDeclarationID, err
	}
	if !st.IsGeneric() {
		return id, nil
	}
	node := m.declarationNode(id)
	key := m.Types.InstanceKey(args)
	if inst, ok := m.Graph.Instance(node, key); ok {
		return inst, nil
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeDecl, "instantiate "+st.Name, key, false)

	clone := NewSubst(m.Types, types.NewMapping(st.TypeParameters, args)).Struct(st)
	clone.TypeParameters = nil
	inst := m.Decls.InsertStruct(clone)
	ref, err := m.Decls.Ref(inst)
	if err != nil {
		return ids.NoDeclarationID, err
	}
	m.Graph.AddSyntax(ty.DeclNode(ty.StructDeclaration(ref)))
	m.Graph.RecordInstance(node, key, args, inst)
	return inst, nil
}

func checkArity(name string, want, got int) error {
	if want != got {
		return diag.Errorf(diag.TypeArgCount, "%s expects %d type arguments, got %d", name, want, got)
	}
	return nil
}

func (m *Monomorphizer) declarationNode(id ids.DeclarationID) ids.CollectionIndex {
	node, ok := m.Graph.DeclarationNode(id)
	if !ok {
		panic(fmt.Sprintf("mono: %s has no graph node", id))
	}
	return node
}

// cloneScope copies the body scope of a generic function as a fresh
// subtree. Declaration nodes with engine handles are shared, everything
// else is copied with s applied.
func (m *Monomorphizer) cloneScope(ctx context.Context, s *Subst, scope ids.CollectionIndex, body []ids.CollectionIndex, key string) (ids.CollectionIndex, []ids.CollectionIndex, error) {
	if !scope.IsValid() {
		return scope, nil, nil
	}
	copied := make(map[ids.CollectionIndex]ids.CollectionIndex, len(body))
	old := m.Graph.Node(scope)
	fresh := m.Graph.AddScope(old.Label + "<" + key + ">")
	for _, e := range m.Graph.Edges(scope) {
		to := e.To
		if e.Kind == graph.NodeContents {
			var err error
			to, err = m.cloneNode(ctx, s, e.To)
			if err != nil {
				return ids.NoCollectionIndex, nil, err
			}
			copied[e.To] = to
		}
		m.Graph.AddEdge(fresh, to, e.Kind)
	}
	out := make([]ids.CollectionIndex, len(body))
	for i, idx := range body {
		c, ok := copied[idx]
		if !ok {
			panic(fmt.Sprintf("mono: body node %d is not linked from scope %d", idx, scope))
		}
		out[i] = c
	}
	return fresh, out, nil
}

func (m *Monomorphizer) cloneNode(ctx context.Context, s *Subst, idx ids.CollectionIndex) (ids.CollectionIndex, error) {
	n := m.Graph.Node(idx)
	if n.Kind != graph.NodeSyntax {
		return idx, nil
	}
	if _, ok := n.Declaration(); ok {
		return idx, nil
	}
	syntax := s.Node(n.Syntax)
	if err := m.reinstantiateNode(ctx, &syntax); err != nil {
		return ids.NoCollectionIndex, err
	}
	fresh := m.Graph.AddSyntax(syntax)
	for _, e := range m.Graph.Edges(idx) {
		to := e.To
		if e.Kind == graph.NodeContents {
			var err error
			if to, err = m.cloneNode(ctx, s, e.To); err != nil {
				return ids.NoCollectionIndex, err
			}
		}
		m.Graph.AddEdge(fresh, to, e.Kind)
	}
	return fresh, nil
}

func (m *Monomorphizer) reinstantiateNode(ctx context.Context, n *ty.Node) error {
	switch n.Kind {
	case ty.NodeDeclaration:
		if n.Decl.Kind == ty.DeclVariable && n.Decl.Variable != nil {
			return m.reinstantiate(ctx, &n.Decl.Variable.Body)
		}
		return nil
	default:
		return m.reinstantiate(ctx, &n.Expr)
	}
}

// reinstantiate points calls and struct expressions inside a substituted
// body at the instances matching their substituted type arguments.
func (m *Monomorphizer) reinstantiate(ctx context.Context, e *ty.Expr) error {
	switch d := e.Data.(type) {
	case ty.ApplicationData:
		for i := range d.Args {
			if err := m.reinstantiate(ctx, &d.Args[i]); err != nil {
				return err
			}
		}
		if d.Origin.ID.IsValid() {
			inst, err := m.InstantiateFunction(ctx, d.Origin.ID, d.TypeArgs)
			if err != nil {
				return err
			}
			if d.Callee, err = m.Decls.Ref(inst); err != nil {
				return err
			}
		}
		e.Data = d
	case ty.StructData:
		for i := range d.Fields {
			if err := m.reinstantiate(ctx, &d.Fields[i].Value); err != nil {
				return err
			}
		}
		if d.Origin.ID.IsValid() {
			inst, err := m.InstantiateStruct(ctx, d.Origin.ID, d.TypeArgs)
			if err != nil {
				return err
			}
			if d.Decl, err = m.Decls.Ref(inst); err != nil {
				return err
			}
		}
		e.Data = d
	case ty.MethodCallData:
		for i := range d.Args {
			if err := m.reinstantiate(ctx, &d.Args[i]); err != nil {
				return err
			}
		}
		e.Data = d
	}
	return nil
}
