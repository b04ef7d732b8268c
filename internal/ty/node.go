// Package ty holds the typed tree produced by the collector: nodes,
// declarations and expressions whose types are type-engine handles and
// whose named declarations are declaration-engine handles.
package ty

import "decc/internal/ids"

// NodeKind enumerates typed statement kinds.
type NodeKind uint8

const (
	NodeDeclaration NodeKind = iota
	NodeExpression
	NodeReturn
)

func (k NodeKind) String() string {
	switch k {
	case NodeDeclaration:
		return "declaration"
	case NodeExpression:
		return "expression"
	case NodeReturn:
		return "return"
	default:
		return "unknown"
	}
}

// Node is a typed statement.
type Node struct {
	Kind NodeKind
	Decl Declaration // NodeDeclaration
	Expr Expr        // NodeExpression, NodeReturn
}

func DeclNode(d Declaration) Node { return Node{Kind: NodeDeclaration, Decl: d} }

func ExprNode(e Expr) Node { return Node{Kind: NodeExpression, Expr: e} }

func ReturnNode(e Expr) Node { return Node{Kind: NodeReturn, Expr: e} }

// Application is the root handle of a collected program.
type Application struct {
	Root  ids.CollectionIndex
	Files []ids.CollectionIndex
}
