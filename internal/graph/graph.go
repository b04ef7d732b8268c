// Package graph implements the collection graph: an append-only arena of
// nodes connected by typed edges. Visibility of declarations is computed by
// a breadth-first walk over the propagating edge kinds.
package graph

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"decc/internal/ids"
	"decc/internal/ty"
	"decc/internal/types"
)

// NodeKind distinguishes structural nodes from syntax nodes.
type NodeKind uint8

const (
	NodeApplication NodeKind = iota
	NodeFile
	// NodeScope is a lexical block: a file body or a function body.
	NodeScope
	NodeSyntax
)

func (k NodeKind) String() string {
	switch k {
	case NodeApplication:
		return "application"
	case NodeFile:
		return "file"
	case NodeScope:
		return "scope"
	case NodeSyntax:
		return "syntax"
	default:
		return "unknown"
	}
}

// Node is a graph vertex. Label is the file name for NodeFile and a
// human-readable tag for NodeScope.
type Node struct {
	Kind   NodeKind
	Label  string
	Syntax ty.Node
}

// Declaration returns the engine handle of a declaration syntax node.
func (n Node) Declaration() (ids.DeclarationID, bool) {
	if n.Kind != NodeSyntax || n.Syntax.Kind != ty.NodeDeclaration {
		return ids.NoDeclarationID, false
	}
	ref, ok := n.Syntax.Decl.Handle()
	if !ok {
		return ids.NoDeclarationID, false
	}
	return ref.ID, true
}

// Instance is one monomorphized clone of a generic declaration node.
type Instance struct {
	Key  string
	Args []types.TypeID
	Decl ids.DeclarationID
}

type vertex struct {
	node      Node
	edges     []Edge
	instances []Instance
}

// Graph owns every collection node of a session.
type Graph struct {
	vertices []vertex
	decls    map[ids.DeclarationID]ids.CollectionIndex
}

// New creates an empty graph. Index 0 is reserved for NoCollectionIndex.
func New(capacity uint32) *Graph {
	if capacity == 0 {
		capacity = 128
	}
	return &Graph{
		vertices: make([]vertex, 1, capacity+1),
		decls:    make(map[ids.DeclarationID]ids.CollectionIndex),
	}
}

func (g *Graph) push(n Node) ids.CollectionIndex {
	value, err := safecast.Conv[uint32](len(g.vertices))
	if err != nil {
		panic(fmt.Errorf("graph: node arena overflow: %w", err))
	}
	g.vertices = append(g.vertices, vertex{node: n})
	return ids.CollectionIndex(value)
}

func (g *Graph) AddApplication() ids.CollectionIndex {
	return g.push(Node{Kind: NodeApplication, Label: "application"})
}

func (g *Graph) AddFile(name string) ids.CollectionIndex {
	return g.push(Node{Kind: NodeFile, Label: name})
}

func (g *Graph) AddScope(label string) ids.CollectionIndex {
	return g.push(Node{Kind: NodeScope, Label: label})
}

// AddSyntax appends a syntax node. A declaration node with an engine handle
// becomes the node of record for that handle; re-registering a handle is a
// pipeline bug.
func (g *Graph) AddSyntax(n ty.Node) ids.CollectionIndex {
	idx := g.push(Node{Kind: NodeSyntax, Syntax: n})
	if id, ok := g.vertices[idx].node.Declaration(); ok {
		if prev, dup := g.decls[id]; dup {
			panic(fmt.Sprintf("graph: %s already recorded at node %d", id, prev))
		}
		g.decls[id] = idx
	}
	return idx
}

// AddEdge appends an edge; edges of a node keep insertion order.
func (g *Graph) AddEdge(from, to ids.CollectionIndex, kind EdgeKind) {
	g.mustValid(from)
	g.mustValid(to)
	v := &g.vertices[from]
	v.edges = append(v.edges, Edge{Kind: kind, To: to})
}

// Len reports the number of nodes.
func (g *Graph) Len() int { return len(g.vertices) - 1 }

// Valid reports whether idx names a node.
func (g *Graph) Valid(idx ids.CollectionIndex) bool {
	return idx.IsValid() && int(idx) < len(g.vertices)
}

func (g *Graph) mustValid(idx ids.CollectionIndex) {
	if !g.Valid(idx) {
		panic(fmt.Sprintf("graph: invalid collection index %d", idx))
	}
}

// Node returns the node at idx.
func (g *Graph) Node(idx ids.CollectionIndex) Node {
	g.mustValid(idx)
	return g.vertices[idx].node
}

// Edges returns a copy of the outgoing edges of idx in insertion order.
func (g *Graph) Edges(idx ids.CollectionIndex) []Edge {
	g.mustValid(idx)
	return slices.Clone(g.vertices[idx].edges)
}

// Children returns the targets of the outgoing edges of kind.
func (g *Graph) Children(idx ids.CollectionIndex, kind EdgeKind) []ids.CollectionIndex {
	g.mustValid(idx)
	var out []ids.CollectionIndex
	for _, e := range g.vertices[idx].edges {
		if e.Kind == kind {
			out = append(out, e.To)
		}
	}
	return out
}

// DeclarationNode returns the syntax node recorded for id.
func (g *Graph) DeclarationNode(id ids.DeclarationID) (ids.CollectionIndex, bool) {
	idx, ok := g.decls[id]
	return idx, ok
}

// Instance looks up the clone of the generic declaration at idx for the
// argument set whose structural key is key.
func (g *Graph) Instance(idx ids.CollectionIndex, key string) (ids.DeclarationID, bool) {
	g.mustValid(idx)
	for _, in := range g.vertices[idx].instances {
		if in.Key == key {
			return in.Decl, true
		}
	}
	return ids.NoDeclarationID, false
}

// RecordInstance caches a clone on the generic declaration node at idx.
func (g *Graph) RecordInstance(idx ids.CollectionIndex, key string, args []types.TypeID, id ids.DeclarationID) {
	g.mustValid(idx)
	if _, ok := g.Instance(idx, key); ok {
		panic(fmt.Sprintf("graph: instance %q already recorded at node %d", key, idx))
	}
	v := &g.vertices[idx]
	v.instances = append(v.instances, Instance{Key: key, Args: slices.Clone(args), Decl: id})
}

// Instances lists the clones recorded at idx in creation order.
func (g *Graph) Instances(idx ids.CollectionIndex) []Instance {
	g.mustValid(idx)
	return slices.Clone(g.vertices[idx].instances)
}
