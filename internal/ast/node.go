package ast

// NodeKind enumerates statement-level node kinds.
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

// Node is one entry of a file or code block.
type Node struct {
	Kind NodeKind
	Decl Decl // NodeDeclaration
	Expr Expr // NodeExpression, NodeReturn
}

func DeclNode(d Decl) Node { return Node{Kind: NodeDeclaration, Decl: d} }

func ExprNode(e Expr) Node { return Node{Kind: NodeExpression, Expr: e} }

func Return(e Expr) Node { return Node{Kind: NodeReturn, Expr: e} }

// File is one compilation unit.
type File struct {
	Name  string
	Nodes []Node
}

// Application is the whole program: every file of the session.
type Application struct {
	Files []File
}
