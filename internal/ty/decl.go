package ty

import (
	"decc/internal/diag"
	"decc/internal/ids"
	"decc/internal/types"
)

// Ref is a declaration handle plus its cached display name.
type Ref struct {
	ID   ids.DeclarationID
	Name string
}

func (r Ref) String() string { return r.Name }

// DeclKind enumerates typed declaration kinds.
type DeclKind uint8

const (
	DeclVariable DeclKind = iota
	DeclFunction
	DeclTrait
	DeclTraitImpl
	DeclStruct
	DeclTraitFn
	// DeclGenericParam puts a type parameter name in scope.
	DeclGenericParam
)

func (k DeclKind) String() string {
	switch k {
	case DeclVariable:
		return "variable"
	case DeclFunction:
		return "function"
	case DeclTrait:
		return "trait"
	case DeclTraitImpl:
		return "trait impl"
	case DeclStruct:
		return "struct"
	case DeclTraitFn:
		return "trait fn"
	case DeclGenericParam:
		return "generic parameter"
	default:
		return "unknown"
	}
}

// Declaration is the polymorphic typed declaration. Locals are stored by
// value; everything else is a handle into the declaration engine.
type Declaration struct {
	Kind     DeclKind
	Variable *VariableDecl // DeclVariable
	Ref      Ref           // handle kinds
	Generic  types.TypeID  // DeclGenericParam
}

func VariableDeclaration(v VariableDecl) Declaration {
	return Declaration{Kind: DeclVariable, Variable: &v}
}

func FunctionDeclaration(r Ref) Declaration  { return Declaration{Kind: DeclFunction, Ref: r} }
func TraitDeclaration(r Ref) Declaration     { return Declaration{Kind: DeclTrait, Ref: r} }
func TraitImplDeclaration(r Ref) Declaration { return Declaration{Kind: DeclTraitImpl, Ref: r} }
func StructDeclaration(r Ref) Declaration    { return Declaration{Kind: DeclStruct, Ref: r} }
func TraitFnDeclaration(r Ref) Declaration   { return Declaration{Kind: DeclTraitFn, Ref: r} }

func GenericParamDeclaration(id types.TypeID) Declaration {
	return Declaration{Kind: DeclGenericParam, Generic: id}
}

// HandleKind returns the declaration-engine family that stores k.
func (k DeclKind) HandleKind() (ids.DeclarationKind, bool) {
	switch k {
	case DeclFunction:
		return ids.DeclFunction, true
	case DeclTrait:
		return ids.DeclTrait, true
	case DeclTraitImpl:
		return ids.DeclTraitImpl, true
	case DeclStruct:
		return ids.DeclStruct, true
	case DeclTraitFn:
		return ids.DeclTraitFn, true
	default:
		return ids.DeclInvalid, false
	}
}

// Handle returns the engine handle for handle kinds.
func (d Declaration) Handle() (Ref, bool) {
	switch d.Kind {
	case DeclFunction, DeclTrait, DeclTraitImpl, DeclStruct, DeclTraitFn:
		return d.Ref, true
	default:
		return Ref{}, false
	}
}

func (d Declaration) ExpectVariable() (VariableDecl, error) {
	if d.Kind != DeclVariable || d.Variable == nil {
		return VariableDecl{}, diag.Errorf(diag.NotAVariable, "got %s", d.Kind)
	}
	return *d.Variable, nil
}

func (d Declaration) ExpectFunction() (Ref, error) {
	if d.Kind != DeclFunction {
		return Ref{}, diag.Errorf(diag.NotAFunction, "got %s", d.Kind)
	}
	return d.Ref, nil
}

func (d Declaration) ExpectStruct() (Ref, error) {
	if d.Kind != DeclStruct {
		return Ref{}, diag.Errorf(diag.NotAStruct, "got %s", d.Kind)
	}
	return d.Ref, nil
}

func (d Declaration) ExpectTrait() (Ref, error) {
	if d.Kind != DeclTrait {
		return Ref{}, diag.Errorf(diag.NotATrait, "got %s", d.Kind)
	}
	return d.Ref, nil
}

func (d Declaration) ExpectTraitImpl() (Ref, error) {
	if d.Kind != DeclTraitImpl {
		return Ref{}, diag.Errorf(diag.NotATraitImpl, "got %s", d.Kind)
	}
	return d.Ref, nil
}

func (d Declaration) ExpectGenericParam() (types.TypeID, error) {
	if d.Kind != DeclGenericParam {
		return types.NoTypeID, diag.Errorf(diag.NotAGenericParam, "got %s", d.Kind)
	}
	return d.Generic, nil
}

// VariableDecl is a local binding. Function parameters are variables whose
// body is an ExprFunctionParameter.
type VariableDecl struct {
	Name           string
	TypeAscription types.TypeID
	Body           Expr
}

// Parameter is a typed function parameter.
type Parameter struct {
	Name   string
	TypeID types.TypeID
}

// FunctionDecl is stored in the declaration engine. Body lists the graph
// nodes of the function's statements in source order.
type FunctionDecl struct {
	Name           string
	TypeParameters []types.TypeParameter
	Parameters     []Parameter
	Body           []ids.CollectionIndex
	BodyScope      ids.CollectionIndex
	ReturnType     types.TypeID
}

// IsGeneric reports whether the function still has parameters to
// substitute.
func (f *FunctionDecl) IsGeneric() bool { return len(f.TypeParameters) > 0 }

type TraitFn struct {
	Name       string
	Parameters []Parameter
	ReturnType types.TypeID
}

type TraitDecl struct {
	Name             string
	InterfaceSurface []ids.DeclarationID
}

type TraitImpl struct {
	TraitName           string
	TypeImplementingFor types.TypeID
	TypeParameters      []types.TypeParameter
	Methods             []ids.DeclarationID
}

type StructField struct {
	Name   string
	TypeID types.TypeID
}

type StructDecl struct {
	Name           string
	TypeParameters []types.TypeParameter
	Fields         []StructField
}

func (s *StructDecl) IsGeneric() bool { return len(s.TypeParameters) > 0 }

// Field returns the field called name.
func (s *StructDecl) Field(name string) (StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}
