// Package typeres is the default type resolver: it interns surface type
// expressions and evaluates them against a namespace.
package typeres

import (
	"fmt"

	"decc/internal/ast"
	"decc/internal/decl"
	"decc/internal/diag"
	"decc/internal/namespace"
	"decc/internal/ty"
	"decc/internal/types"
)

// Resolver turns ast.TypeExpr into type-engine handles.
type Resolver struct {
	Types *types.Engine
	Decls *decl.Engine
}

func New(te *types.Engine, de *decl.Engine) *Resolver {
	return &Resolver{Types: te, Decls: de}
}

// InsertType stores the raw surface form of t. Names are kept as
// unevaluated placeholders until EvalType sees a namespace.
func (r *Resolver) InsertType(t ast.TypeExpr) types.TypeID {
	switch t.Kind {
	case ast.TypeUnknown:
		return r.Types.Insert(types.Unknown())
	case ast.TypeUint:
		bits := types.IntegerBits(t.Bits)
		if !bits.Valid() {
			// kept as a name so evaluation reports it
			return r.Types.Insert(types.Generic(fmt.Sprintf("u%d", t.Bits)))
		}
		return r.Types.Insert(types.Uint(bits))
	case ast.TypeNamed:
		args := make([]types.TypeID, len(t.Args))
		for i, a := range t.Args {
			args[i] = r.InsertType(a)
		}
		return r.Types.Insert(types.Generic(t.Name, args...))
	default:
		panic(fmt.Sprintf("typeres: unknown type expression kind %d", t.Kind))
	}
}

// EvalType resolves the names inside raw through ns. Unknown and
// primitive slots come back unchanged so that an unknown can be rebound
// later by its owner.
func (r *Resolver) EvalType(raw types.TypeID, ns *namespace.Namespace) (types.TypeID, error) {
	info := r.Types.Resolve(raw)
	switch info.Kind {
	case types.KindUnknown, types.KindUnsignedInteger, types.KindDeclarationRef:
		return raw, nil
	case types.KindUnknownGeneric:
		return r.evalNamed(info, ns)
	default:
		return types.NoTypeID, diag.Errorf(diag.UnresolvedType, "cannot evaluate %s", r.Types.Display(raw))
	}
}

func (r *Resolver) evalNamed(info types.TypeInfo, ns *namespace.Namespace) (types.TypeID, error) {
	d, ok := ns.Lookup(info.Name)
	if !ok {
		return types.NoTypeID, diag.Errorf(diag.UnresolvedType, "%s", info.Name)
	}
	switch d.Kind {
	case ty.DeclGenericParam:
		if len(info.Args) > 0 {
			return types.NoTypeID, diag.Errorf(diag.TypeArgCount, "type parameter %s takes no arguments", info.Name)
		}
		return d.Generic, nil
	case ty.DeclStruct:
		st, err := r.Decls.GetStruct(d.Ref.ID)
		if err != nil {
			return types.NoTypeID, err
		}
		if len(info.Args) != len(st.TypeParameters) {
			return types.NoTypeID, diag.Errorf(diag.TypeArgCount,
				"%s expects %d type arguments, got %d", st.Name, len(st.TypeParameters), len(info.Args))
		}
		args := make([]types.TypeID, len(info.Args))
		for i, a := range info.Args {
			ev, err := r.EvalType(a, ns)
			if err != nil {
				return types.NoTypeID, err
			}
			args[i] = ev
		}
		return r.Types.Insert(types.DeclRef(d.Ref.ID, st.Name, args...)), nil
	default:
		return types.NoTypeID, diag.Errorf(diag.NotAType, "%s is a %s", info.Name, d.Kind)
	}
}
