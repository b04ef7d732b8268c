// Package ids holds the opaque handles shared by every arena of a
// compilation session: declaration handles and collection graph indices.
package ids

import "fmt"

// DeclarationKind tells which arena family a DeclarationID belongs to.
type DeclarationKind uint8

const (
	DeclInvalid DeclarationKind = iota
	DeclFunction
	DeclStruct
	DeclTrait
	DeclTraitImpl
	DeclTraitFn
)

func (k DeclarationKind) String() string {
	switch k {
	case DeclFunction:
		return "function"
	case DeclStruct:
		return "struct"
	case DeclTrait:
		return "trait"
	case DeclTraitImpl:
		return "trait impl"
	case DeclTraitFn:
		return "trait fn"
	default:
		return "invalid"
	}
}

// DeclarationID identifies a declaration inside the declaration engine.
// Index 0 is never minted, so the zero value is NoDeclarationID.
type DeclarationID struct {
	Index uint32
	Kind  DeclarationKind
}

// NoDeclarationID marks the absence of a declaration.
var NoDeclarationID = DeclarationID{}

// IsValid reports whether the handle was minted by an engine.
func (id DeclarationID) IsValid() bool { return id.Index != 0 && id.Kind != DeclInvalid }

func (id DeclarationID) String() string {
	return fmt.Sprintf("%s#%d", id.Kind, id.Index)
}

// CollectionIndex identifies a node of the collection graph.
type CollectionIndex uint32

// NoCollectionIndex marks the absence of a graph node.
const NoCollectionIndex CollectionIndex = 0

// IsValid reports whether the index refers to an inserted node.
func (i CollectionIndex) IsValid() bool { return i != NoCollectionIndex }
