// Package collect implements the type-collection pass: it turns the
// untyped tree into typed nodes, registers named declarations in the
// declaration engine and records scoping in the collection graph.
package collect

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"decc/internal/ast"
	"decc/internal/decl"
	"decc/internal/diag"
	"decc/internal/graph"
	"decc/internal/ids"
	"decc/internal/mono"
	"decc/internal/namespace"
	"decc/internal/trace"
	"decc/internal/ty"
	"decc/internal/types"
)

// TypeResolver turns surface type syntax into type-engine handles.
type TypeResolver interface {
	InsertType(t ast.TypeExpr) types.TypeID
	EvalType(raw types.TypeID, ns *namespace.Namespace) (types.TypeID, error)
}

// Collector owns no state of its own beyond the scopes currently open;
// everything it produces lives in the engines and the graph.
type Collector struct {
	Types    *types.Engine
	Decls    *decl.Engine
	Graph    *graph.Graph
	Resolver TypeResolver
	Mono     *mono.Monomorphizer

	// open scopes, innermost last
	scopes []ids.CollectionIndex
}

// New wires a collector over one session's stores.
func New(te *types.Engine, de *decl.Engine, g *graph.Graph, r TypeResolver) *Collector {
	return &Collector{
		Types:    te,
		Decls:    de,
		Graph:    g,
		Resolver: r,
		Mono:     mono.New(te, de, g),
	}
}

// CollectApplication collects every file in order. A file that fails is
// left out of the result; the others are still collected and the failures
// are returned joined.
func (c *Collector) CollectApplication(ctx context.Context, app ast.Application) (ty.Application, error) {
	ctx, span := trace.Start(ctx, trace.ScopePass, "collect")
	root := c.Graph.AddApplication()
	out := ty.Application{Root: root}
	var errs []error
	for _, f := range app.Files {
		idx, err := c.CollectFile(ctx, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.Graph.AddEdge(root, idx, graph.ApplicationContents)
		out.Files = append(out.Files, idx)
	}
	span.WithExtra("files", strconv.Itoa(len(out.Files)))
	span.WithExtra("failed", strconv.Itoa(len(errs)))
	span.End("")
	return out, errors.Join(errs...)
}

// CollectFile collects one compilation unit into a fresh file node. The
// first error aborts the file.
func (c *Collector) CollectFile(ctx context.Context, f ast.File) (ids.CollectionIndex, error) {
	ctx, span := trace.Start(ctx, trace.ScopeFile, f.Name)
	defer span.End("")

	file := c.Graph.AddFile(f.Name)
	scope := c.Graph.AddScope(f.Name)
	c.Graph.AddEdge(file, scope, graph.FileContents)

	saved := c.scopes
	c.scopes = []ids.CollectionIndex{scope}
	defer func() { c.scopes = saved }()

	ns := namespace.New()
	for _, n := range f.Nodes {
		if _, _, err := c.collectNode(ctx, ns, n); err != nil {
			err = diag.InFile(err, f.Name)
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "collect failed", err.Error(), true)
			return ids.NoCollectionIndex, err
		}
	}
	span.WithExtra("nodes", strconv.Itoa(len(f.Nodes)))
	return file, nil
}

// CollectNode collects n inside scope and links it from there.
func (c *Collector) CollectNode(ctx context.Context, ns *namespace.Namespace, scope ids.CollectionIndex, n ast.Node) (ty.Node, ids.CollectionIndex, error) {
	if len(c.scopes) == 0 || c.scopes[len(c.scopes)-1] != scope {
		saved := c.scopes
		c.scopes = []ids.CollectionIndex{scope}
		defer func() { c.scopes = saved }()
	}
	return c.collectNode(ctx, ns, n)
}

func (c *Collector) current() ids.CollectionIndex {
	if len(c.scopes) == 0 {
		panic("collect: no open scope")
	}
	return c.scopes[len(c.scopes)-1]
}

// openScope starts a nested scope under the current one.
func (c *Collector) openScope(label string) ids.CollectionIndex {
	s := c.Graph.AddScope(label)
	c.scopes = append(c.scopes, s)
	return s
}

// closeScope links the scope back to its parent. This happens after the
// contents so that local declarations are met first when walking.
func (c *Collector) closeScope(s ids.CollectionIndex) {
	if c.current() != s {
		panic(fmt.Sprintf("collect: closing scope %d, innermost is %d", s, c.current()))
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.Graph.AddEdge(s, c.current(), graph.SharedScope)
}

func (c *Collector) collectNode(ctx context.Context, ns *namespace.Namespace, n ast.Node) (ty.Node, ids.CollectionIndex, error) {
	var (
		node ty.Node
		idx  ids.CollectionIndex
		err  error
	)
	switch n.Kind {
	case ast.NodeDeclaration:
		node, idx, err = c.collectDecl(ctx, ns, n.Decl)
	case ast.NodeExpression:
		var e ty.Expr
		e, idx, err = c.collectExpr(ctx, ns, n.Expr)
		node = ty.ExprNode(e)
	case ast.NodeReturn:
		var (
			e     ty.Expr
			child ids.CollectionIndex
		)
		if e, child, err = c.collectExpr(ctx, ns, n.Expr); err == nil {
			node = ty.ReturnNode(e)
			idx = c.Graph.AddSyntax(node)
			c.Graph.AddEdge(idx, child, graph.NodeContents)
		}
	default:
		err = diag.Errorf(diag.InputInvalid, "unknown node kind %d", n.Kind)
	}
	if err != nil {
		return ty.Node{}, ids.NoCollectionIndex, err
	}
	c.Graph.AddEdge(c.current(), idx, graph.NodeContents)
	return node, idx, nil
}

// evalType inserts and evaluates a surface type in ns.
func (c *Collector) evalType(t ast.TypeExpr, ns *namespace.Namespace) (types.TypeID, error) {
	return c.Resolver.EvalType(c.Resolver.InsertType(t), ns)
}

func (c *Collector) evalTypes(ts []ast.TypeExpr, ns *namespace.Namespace) ([]types.TypeID, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	out := make([]types.TypeID, len(ts))
	for i, t := range ts {
		id, err := c.evalType(t, ns)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// lookupFunc searches the open scopes from the innermost outward.
func (c *Collector) lookupFunc(match func(graph.Visible) bool) (graph.Visible, bool, error) {
	for _, s := range slices.Backward(c.scopes) {
		v, ok, err := graph.LookupFunc(c.Graph, c.Decls, s, match)
		if err != nil || ok {
			return v, ok, err
		}
	}
	return graph.Visible{}, false, nil
}

// visible lists every declaration reachable from the open scopes,
// innermost first, without duplicates.
func (c *Collector) visible() ([]graph.Visible, error) {
	seen := make(map[ids.CollectionIndex]struct{})
	var out []graph.Visible
	for _, s := range slices.Backward(c.scopes) {
		vs, err := graph.VisibleDeclarations(c.Graph, c.Decls, s)
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			if _, dup := seen[v.Node]; dup {
				continue
			}
			seen[v.Node] = struct{}{}
			out = append(out, v)
		}
	}
	return out, nil
}
