// Package ast holds the untyped tree handed over by the parser.
//
// Every variant set is closed: expressions, declarations and nodes carry a
// Kind tag plus a kind-specific Data payload, and consumers switch on Kind.
// Types are still surface expressions here; the collector turns them into
// type-engine handles.
package ast
