// Package namespace implements the chained symbol tables the collector
// uses to resolve local names: variables, parameters, generic parameters
// and struct names.
package namespace

import (
	"maps"
	"slices"

	"decc/internal/ty"
)

// Namespace is a symbol table with an optional parent. Children read
// through to their parent; writes only touch the receiver.
type Namespace struct {
	parent  *Namespace
	symbols map[string]ty.Declaration
	depth   int
}

// New creates a root namespace.
func New() *Namespace {
	return &Namespace{symbols: make(map[string]ty.Declaration)}
}

// Scoped creates a child namespace.
func (ns *Namespace) Scoped() *Namespace {
	return &Namespace{
		parent:  ns,
		symbols: make(map[string]ty.Declaration),
		depth:   ns.depth + 1,
	}
}

// Parent returns the enclosing namespace, nil for the root.
func (ns *Namespace) Parent() *Namespace { return ns.parent }

// Depth is 0 for the root.
func (ns *Namespace) Depth() int { return ns.depth }

// InsertSymbol binds name in this namespace. A later insert of the same
// name shadows the earlier one.
func (ns *Namespace) InsertSymbol(name string, d ty.Declaration) {
	ns.symbols[name] = d
}

// Lookup searches this namespace, then its ancestors.
func (ns *Namespace) Lookup(name string) (ty.Declaration, bool) {
	for cur := ns; cur != nil; cur = cur.parent {
		if d, ok := cur.symbols[name]; ok {
			return d, true
		}
	}
	return ty.Declaration{}, false
}

// LookupLocal searches this namespace only.
func (ns *Namespace) LookupLocal(name string) (ty.Declaration, bool) {
	d, ok := ns.symbols[name]
	return d, ok
}

// Names lists the locally bound names in sorted order.
func (ns *Namespace) Names() []string {
	return slices.Sorted(maps.Keys(ns.symbols))
}
