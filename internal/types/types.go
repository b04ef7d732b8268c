package types

import (
	"fmt"

	"decc/internal/ids"
)

// TypeID identifies a slot inside the type engine. A slot may be rebound
// later, so a TypeID is an indirection rather than a value.
type TypeID uint32

// NoTypeID marks the absence of a type; it is never bound.
const NoTypeID TypeID = 0

// Kind enumerates the descriptor variants a slot can hold.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnknown
	KindUnknownGeneric
	KindRef
	KindDeclarationRef
	KindUnsignedInteger
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnknown:
		return "unknown"
	case KindUnknownGeneric:
		return "generic"
	case KindRef:
		return "ref"
	case KindDeclarationRef:
		return "declaration"
	case KindUnsignedInteger:
		return "uint"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IntegerBits captures the width of an unsigned integer.
type IntegerBits uint8

const (
	Eight     IntegerBits = 8
	Sixteen   IntegerBits = 16
	ThirtyTwo IntegerBits = 32
	SixtyFour IntegerBits = 64
)

func (b IntegerBits) String() string {
	switch b {
	case Eight, Sixteen, ThirtyTwo, SixtyFour:
		return fmt.Sprintf("u%d", uint8(b))
	default:
		return fmt.Sprintf("IntegerBits(%d)", uint8(b))
	}
}

// Valid reports whether b is one of the supported widths.
func (b IntegerBits) Valid() bool {
	switch b {
	case Eight, Sixteen, ThirtyTwo, SixtyFour:
		return true
	}
	return false
}

// TypeInfo is the descriptor a slot holds.
//
// Name is the placeholder name for KindUnknownGeneric and the cached
// display name for KindDeclarationRef. Args are the type arguments of a
// declaration reference, or the raw surface arguments of a not yet
// evaluated generic name.
type TypeInfo struct {
	Kind   Kind
	Name   string
	Bits   IntegerBits       // KindUnsignedInteger
	Target TypeID            // KindRef
	Decl   ids.DeclarationID // KindDeclarationRef
	Args   []TypeID
}

// Descriptor helpers ---------------------------------------------------------

// Unknown describes a type that is not known yet.
func Unknown() TypeInfo { return TypeInfo{Kind: KindUnknown} }

// Generic describes an unresolved generic placeholder such as T.
func Generic(name string, args ...TypeID) TypeInfo {
	return TypeInfo{Kind: KindUnknownGeneric, Name: name, Args: cloneIDs(args)}
}

// RefTo describes an indirection to another slot.
func RefTo(id TypeID) TypeInfo { return TypeInfo{Kind: KindRef, Target: id} }

// DeclRef describes a declaration-backed type applied to arguments.
func DeclRef(decl ids.DeclarationID, name string, args ...TypeID) TypeInfo {
	return TypeInfo{Kind: KindDeclarationRef, Decl: decl, Name: name, Args: cloneIDs(args)}
}

// Uint describes an unsigned integer of the given width.
func Uint(bits IntegerBits) TypeInfo {
	return TypeInfo{Kind: KindUnsignedInteger, Bits: bits}
}

func U8() TypeInfo  { return Uint(Eight) }
func U16() TypeInfo { return Uint(Sixteen) }
func U32() TypeInfo { return Uint(ThirtyTwo) }
func U64() TypeInfo { return Uint(SixtyFour) }

func cloneIDs(ids []TypeID) []TypeID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]TypeID, len(ids))
	copy(out, ids)
	return out
}
