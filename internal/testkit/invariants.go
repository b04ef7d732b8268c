// Package testkit holds structural checks shared by package tests.
package testkit

import (
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"

	"decc/internal/decl"
	"decc/internal/graph"
	"decc/internal/ids"
)

// CheckGraphInvariants runs the structural checks the collector is
// expected to keep on a collection graph:
// 1) edge shapes: ApplicationContents goes application->file and
// FileContents goes file->scope
// 2) every declaration node's handle resolves in de to the node's own
// kind and is recorded for exactly that node
// 3) a function node reaches its body scope through ScopedChild, every
// body element hangs off that scope, and the scope's last edge is a
// SharedScope back to an enclosing scope
// 4) recorded instances resolve, keep the generic's kind and have nodes
// of their own
func CheckGraphInvariants(g *graph.Graph, de *decl.Engine) error {
	if g == nil || de == nil {
		return errors.New("nil graph or declaration engine")
	}
	var errs []error
	for i := 1; i <= g.Len(); i++ {
		v, err := safecast.Conv[uint32](i)
		if err != nil {
			return fmt.Errorf("node index overflow: %w", err)
		}
		idx := ids.CollectionIndex(v)
		errs = append(errs, checkEdges(g, idx)...)
		errs = append(errs, checkDeclaration(g, de, idx)...)
		errs = append(errs, checkInstances(g, de, idx)...)
	}
	return errors.Join(errs...)
}

func checkEdges(g *graph.Graph, idx ids.CollectionIndex) []error {
	from := g.Node(idx)
	var errs []error
	for _, e := range g.Edges(idx) {
		to := g.Node(e.To)
		switch e.Kind {
		case graph.ApplicationContents:
			if from.Kind != graph.NodeApplication || to.Kind != graph.NodeFile {
				errs = append(errs, fmt.Errorf("node %d: %s edge %s->%s", idx, e.Kind, from.Kind, to.Kind))
			}
		case graph.FileContents:
			if from.Kind != graph.NodeFile || to.Kind != graph.NodeScope {
				errs = append(errs, fmt.Errorf("node %d: %s edge %s->%s", idx, e.Kind, from.Kind, to.Kind))
			}
		}
	}
	return errs
}

func checkDeclaration(g *graph.Graph, de *decl.Engine, idx ids.CollectionIndex) []error {
	n := g.Node(idx)
	id, ok := n.Declaration()
	if !ok {
		return nil
	}
	want, _ := n.Syntax.Decl.Kind.HandleKind()
	if _, err := de.NameAs(id, want); err != nil {
		return []error{fmt.Errorf("node %d: %w", idx, err)}
	}
	if rec, ok := g.DeclarationNode(id); !ok || rec != idx {
		return []error{fmt.Errorf("node %d: %s recorded at %d", idx, id, rec)}
	}
	if id.Kind != ids.DeclFunction {
		return nil
	}
	fn, err := de.GetFunction(id)
	if err != nil {
		return []error{fmt.Errorf("node %d: %w", idx, err)}
	}
	if !fn.BodyScope.IsValid() {
		return nil
	}
	var errs []error
	if !slices.Contains(g.Children(idx, graph.ScopedChild), fn.BodyScope) {
		errs = append(errs, fmt.Errorf("node %d: fn %s has no ScopedChild edge to scope %d", idx, fn.Name, fn.BodyScope))
	}
	if k := g.Node(fn.BodyScope).Kind; k != graph.NodeScope {
		return append(errs, fmt.Errorf("fn %s: body scope %d is a %s", fn.Name, fn.BodyScope, k))
	}
	contents := g.Children(fn.BodyScope, graph.NodeContents)
	for _, b := range fn.Body {
		if !slices.Contains(contents, b) {
			errs = append(errs, fmt.Errorf("fn %s: body node %d is not linked from scope %d", fn.Name, b, fn.BodyScope))
		}
	}
	edges := g.Edges(fn.BodyScope)
	if len(edges) == 0 {
		return append(errs, fmt.Errorf("fn %s: scope %d has no edges", fn.Name, fn.BodyScope))
	}
	last := edges[len(edges)-1]
	if last.Kind != graph.SharedScope || g.Node(last.To).Kind != graph.NodeScope {
		errs = append(errs, fmt.Errorf("fn %s: scope %d does not end with a SharedScope to its parent", fn.Name, fn.BodyScope))
	}
	return errs
}

func checkInstances(g *graph.Graph, de *decl.Engine, idx ids.CollectionIndex) []error {
	insts := g.Instances(idx)
	if len(insts) == 0 {
		return nil
	}
	origin, ok := g.Node(idx).Declaration()
	if !ok {
		return []error{fmt.Errorf("node %d: instances on a non-declaration node", idx)}
	}
	var errs []error
	for _, in := range insts {
		if in.Decl.Kind != origin.Kind {
			errs = append(errs, fmt.Errorf("node %d: instance %q is a %s, generic is a %s", idx, in.Key, in.Decl.Kind, origin.Kind))
			continue
		}
		if _, err := de.Name(in.Decl); err != nil {
			errs = append(errs, fmt.Errorf("node %d: instance %q: %w", idx, in.Key, err))
			continue
		}
		if _, ok := g.DeclarationNode(in.Decl); !ok {
			errs = append(errs, fmt.Errorf("node %d: instance %q has no node", idx, in.Key))
		}
	}
	return errs
}
