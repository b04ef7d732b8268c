package ast

import (
	"fmt"
	"strings"
)

// TypeExprKind enumerates surface type syntax.
type TypeExprKind uint8

const (
	// TypeUnknown is an omitted ascription (`_`).
	TypeUnknown TypeExprKind = iota
	// TypeUint is one of u8, u16, u32, u64.
	TypeUint
	// TypeNamed is a name with optional arguments: T, Point<u8>.
	TypeNamed
)

// TypeExpr is an unresolved type expression.
type TypeExpr struct {
	Kind TypeExprKind
	Bits uint8
	Name string
	Args []TypeExpr
}

func UnknownType() TypeExpr { return TypeExpr{Kind: TypeUnknown} }

func UintType(bits uint8) TypeExpr { return TypeExpr{Kind: TypeUint, Bits: bits} }

func U8Type() TypeExpr  { return UintType(8) }
func U16Type() TypeExpr { return UintType(16) }
func U32Type() TypeExpr { return UintType(32) }
func U64Type() TypeExpr { return UintType(64) }

// NamedType builds T or Name<Args...>.
func NamedType(name string, args ...TypeExpr) TypeExpr {
	return TypeExpr{Kind: TypeNamed, Name: name, Args: args}
}

func (t TypeExpr) String() string {
	switch t.Kind {
	case TypeUnknown:
		return "_"
	case TypeUint:
		return fmt.Sprintf("u%d", t.Bits)
	case TypeNamed:
		if len(t.Args) == 0 {
			return t.Name
		}
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return t.Name + "<" + strings.Join(parts, ", ") + ">"
	default:
		return fmt.Sprintf("TypeExpr(%d)", t.Kind)
	}
}
