package graph

import (
	"github.com/hashicorp/go-set/v3"

	"decc/internal/diag"
	"decc/internal/ids"
)

// Declarations is the read access the traversal needs into the
// declaration engine.
type Declarations interface {
	NameAs(id ids.DeclarationID, want ids.DeclarationKind) (string, error)
}

// Visible is one declaration reachable from a traversal start.
type Visible struct {
	Name string
	Decl ids.DeclarationID
	Node ids.CollectionIndex
}

// VisibleDeclarations walks the graph breadth-first from start and returns
// every declaration reached, in visit order. A declaration node whose
// handle does not resolve to a declaration of the node's own kind fails
// the whole walk.
func VisibleDeclarations(g *Graph, de Declarations, start ids.CollectionIndex) ([]Visible, error) {
	var out []Visible
	err := walk(g, de, start, func(v Visible) bool {
		out = append(out, v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Lookup returns the first declaration called name in visit order.
func Lookup(g *Graph, de Declarations, start ids.CollectionIndex, name string) (Visible, bool, error) {
	return LookupFunc(g, de, start, func(v Visible) bool { return v.Name == name })
}

// LookupFunc returns the first visible declaration accepted by match.
func LookupFunc(g *Graph, de Declarations, start ids.CollectionIndex, match func(Visible) bool) (Visible, bool, error) {
	var (
		found Visible
		ok    bool
	)
	err := walk(g, de, start, func(v Visible) bool {
		if match(v) {
			found, ok = v, true
			return false
		}
		return true
	})
	if err != nil {
		return Visible{}, false, err
	}
	return found, ok, nil
}

// walk calls yield for every declaration node reached from start until
// yield returns false.
func walk(g *Graph, de Declarations, start ids.CollectionIndex, yield func(Visible) bool) error {
	g.mustValid(start)
	visited := set.New[ids.CollectionIndex](64)
	visited.Insert(start)
	queue := []ids.CollectionIndex{start}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		v := &g.vertices[idx]

		if id, ok := v.node.Declaration(); ok {
			kind := v.node.Syntax.Decl.Kind
			want, _ := kind.HandleKind()
			name, err := de.NameAs(id, want)
			if err != nil {
				code, _ := diag.CodeOf(err)
				return diag.Wrap(code, err, "graph node %d (%s) references %s", idx, kind, id)
			}
			if !yield(Visible{Name: name, Decl: id, Node: idx}) {
				return nil
			}
		}

		for _, e := range v.edges {
			if !e.Kind.Propagates() {
				continue
			}
			if visited.Insert(e.To) {
				queue = append(queue, e.To)
			}
		}
	}
	return nil
}
