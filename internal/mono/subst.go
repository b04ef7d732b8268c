// Package mono implements monomorphization: pure structural substitution
// of type parameters, and the instantiation of generic declarations into
// cached concrete clones.
package mono

import (
	"slices"

	"decc/internal/ty"
	"decc/internal/types"
)

// Subst applies a type mapping. Every method returns a fresh deep copy and
// leaves its input untouched. A zero mapping is the identity.
type Subst struct {
	Types   *types.Engine
	Mapping types.Mapping

	cache map[types.TypeID]types.TypeID
}

// NewSubst builds a substitution over te.
func NewSubst(te *types.Engine, m types.Mapping) *Subst {
	return &Subst{Types: te, Mapping: m}
}

// Type applies the mapping to id. Slots untouched by the mapping come
// back unchanged; a new slot is inserted only when something inside id
// was replaced.
func (s *Subst) Type(id types.TypeID) types.TypeID {
	if s == nil || s.Types == nil || id == types.NoTypeID || s.Mapping.IsEmpty() {
		return id
	}
	if s.cache == nil {
		s.cache = make(map[types.TypeID]types.TypeID, 16)
	} else if cached, ok := s.cache[id]; ok {
		return cached
	}
	out := s.typeNoCache(id)
	s.cache[id] = out
	return out
}

func (s *Subst) typeNoCache(id types.TypeID) types.TypeID {
	if to, ok := s.Mapping.Find(id); ok {
		return to
	}
	info := s.Types.MustLookup(id)
	switch info.Kind {
	case types.KindRef:
		target := s.Type(info.Target)
		if target == info.Target {
			return id
		}
		return s.Types.Insert(types.RefTo(target))
	case types.KindDeclarationRef, types.KindUnknownGeneric:
		if len(info.Args) == 0 {
			return id
		}
		args, changed := s.types(info.Args)
		if !changed {
			return id
		}
		clone := info
		clone.Args = args
		return s.Types.Insert(clone)
	default:
		return id
	}
}

func (s *Subst) types(in []types.TypeID) ([]types.TypeID, bool) {
	if in == nil {
		return nil, false
	}
	out := make([]types.TypeID, len(in))
	changed := false
	for i, id := range in {
		out[i] = s.Type(id)
		changed = changed || out[i] != id
	}
	return out, changed
}

func (s *Subst) typeList(in []types.TypeID) []types.TypeID {
	out, _ := s.types(in)
	return out
}

// Expression copies e with every type substituted.
func (s *Subst) Expression(e ty.Expr) ty.Expr {
	out := ty.Expr{Kind: e.Kind, Type: s.Type(e.Type)}
	switch d := e.Data.(type) {
	case ty.ApplicationData:
		d.TypeArgs = s.typeList(d.TypeArgs)
		d.Args = s.expressions(d.Args)
		out.Data = d
	case ty.StructData:
		d.TypeArgs = s.typeList(d.TypeArgs)
		if d.Fields != nil {
			fields := make([]ty.FieldValue, len(d.Fields))
			for i, f := range d.Fields {
				fields[i] = ty.FieldValue{Name: f.Name, Value: s.Expression(f.Value)}
			}
			d.Fields = fields
		}
		out.Data = d
	case ty.MethodCallData:
		d.Args = s.expressions(d.Args)
		out.Data = d
	default:
		// literals, variables and parameter markers carry no nested types
		out.Data = e.Data
	}
	return out
}

func (s *Subst) expressions(in []ty.Expr) []ty.Expr {
	if in == nil {
		return nil
	}
	out := make([]ty.Expr, len(in))
	for i, e := range in {
		out[i] = s.Expression(e)
	}
	return out
}

// Declaration copies d. Handle kinds are shared: their substitution is the
// monomorphizer's job, since it needs a new engine entry.
func (s *Subst) Declaration(d ty.Declaration) ty.Declaration {
	switch d.Kind {
	case ty.DeclVariable:
		if d.Variable == nil {
			return d
		}
		return ty.VariableDeclaration(s.Variable(*d.Variable))
	case ty.DeclGenericParam:
		return ty.GenericParamDeclaration(s.Type(d.Generic))
	default:
		return d
	}
}

func (s *Subst) Variable(v ty.VariableDecl) ty.VariableDecl {
	return ty.VariableDecl{
		Name:           v.Name,
		TypeAscription: s.Type(v.TypeAscription),
		Body:           s.Expression(v.Body),
	}
}

// Node copies a typed statement.
func (s *Subst) Node(n ty.Node) ty.Node {
	switch n.Kind {
	case ty.NodeDeclaration:
		return ty.DeclNode(s.Declaration(n.Decl))
	case ty.NodeExpression:
		return ty.ExprNode(s.Expression(n.Expr))
	case ty.NodeReturn:
		return ty.ReturnNode(s.Expression(n.Expr))
	default:
		return n
	}
}

// Function copies fn. Body indices are copied as they are; cloning the
// body subtree is done by the monomorphizer.
func (s *Subst) Function(fn ty.FunctionDecl) ty.FunctionDecl {
	return ty.FunctionDecl{
		Name:           fn.Name,
		TypeParameters: slices.Clone(fn.TypeParameters),
		Parameters:     s.parameters(fn.Parameters),
		Body:           slices.Clone(fn.Body),
		BodyScope:      fn.BodyScope,
		ReturnType:     s.Type(fn.ReturnType),
	}
}

func (s *Subst) parameters(in []ty.Parameter) []ty.Parameter {
	if in == nil {
		return nil
	}
	out := make([]ty.Parameter, len(in))
	for i, p := range in {
		out[i] = ty.Parameter{Name: p.Name, TypeID: s.Type(p.TypeID)}
	}
	return out
}

func (s *Subst) Struct(st ty.StructDecl) ty.StructDecl {
	out := ty.StructDecl{
		Name:           st.Name,
		TypeParameters: slices.Clone(st.TypeParameters),
	}
	if st.Fields != nil {
		out.Fields = make([]ty.StructField, len(st.Fields))
		for i, f := range st.Fields {
			out.Fields[i] = ty.StructField{Name: f.Name, TypeID: s.Type(f.TypeID)}
		}
	}
	return out
}

func (s *Subst) Trait(tr ty.TraitDecl) ty.TraitDecl {
	return ty.TraitDecl{Name: tr.Name, InterfaceSurface: slices.Clone(tr.InterfaceSurface)}
}

func (s *Subst) TraitFn(fn ty.TraitFn) ty.TraitFn {
	return ty.TraitFn{
		Name:       fn.Name,
		Parameters: s.parameters(fn.Parameters),
		ReturnType: s.Type(fn.ReturnType),
	}
}

func (s *Subst) TraitImpl(impl ty.TraitImpl) ty.TraitImpl {
	return ty.TraitImpl{
		TraitName:           impl.TraitName,
		TypeImplementingFor: s.Type(impl.TypeImplementingFor),
		TypeParameters:      slices.Clone(impl.TypeParameters),
		Methods:             slices.Clone(impl.Methods),
	}
}
