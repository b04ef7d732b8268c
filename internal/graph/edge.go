package graph

import "decc/internal/ids"

// EdgeKind classifies a relation between two nodes.
type EdgeKind uint8

const (
	// ApplicationContents links the program root to a file.
	ApplicationContents EdgeKind = iota
	// FileContents links a file to its top-level scope.
	FileContents
	// SharedScope makes the target's declarations visible from the source.
	SharedScope
	// NodeContents links a composite node to its children.
	NodeContents
	// DeclarationContents links a declaration to its sub-declarations.
	DeclarationContents
	// ScopedChild links a declaration or scope to a nested scope.
	ScopedChild
)

func (k EdgeKind) String() string {
	switch k {
	case ApplicationContents:
		return "ApplicationContents"
	case FileContents:
		return "FileContents"
	case SharedScope:
		return "SharedScope"
	case NodeContents:
		return "NodeContents"
	case DeclarationContents:
		return "DeclarationContents"
	case ScopedChild:
		return "ScopedChild"
	default:
		return "Unknown"
	}
}

// Propagates reports whether visibility flows along edges of this kind.
// The two structural kinds keep compilation units from seeing each other.
func (k EdgeKind) Propagates() bool {
	switch k {
	case SharedScope, NodeContents, DeclarationContents, ScopedChild:
		return true
	default:
		return false
	}
}

// Edge is one outgoing relation.
type Edge struct {
	Kind EdgeKind
	To   ids.CollectionIndex
}
