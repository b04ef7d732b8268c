package ast

// DeclKind enumerates untyped declaration kinds.
type DeclKind uint8

const (
	DeclVariable DeclKind = iota
	DeclFunction
	DeclTrait
	DeclTraitImpl
	DeclStruct
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
	default:
		return "unknown"
	}
}

// Decl is an untyped declaration.
type Decl struct {
	Kind DeclKind
	Data DeclData
}

// DeclData is the kind-specific payload of a Decl.
type DeclData interface {
	declData()
}

type VariableDecl struct {
	Name           string
	TypeAscription TypeExpr
	Body           Expr
}

func (VariableDecl) declData() {}

// Param is a function or trait-fn parameter.
type Param struct {
	Name string
	Type TypeExpr
}

type FunctionDecl struct {
	Name           string
	TypeParameters []string
	Parameters     []Param
	Body           []Node
	ReturnType     TypeExpr
}

func (FunctionDecl) declData() {}

// TraitFn is one interface method signature of a trait.
type TraitFn struct {
	Name       string
	Parameters []Param
	ReturnType TypeExpr
}

type TraitDecl struct {
	Name             string
	InterfaceSurface []TraitFn
}

func (TraitDecl) declData() {}

type TraitImpl struct {
	TraitName           string
	TypeImplementingFor TypeExpr
	TypeParameters      []string
	Methods             []FunctionDecl
}

func (TraitImpl) declData() {}

// Field is a struct field declaration.
type Field struct {
	Name string
	Type TypeExpr
}

type StructDecl struct {
	Name           string
	TypeParameters []string
	Fields         []Field
}

func (StructDecl) declData() {}

func Variable(name string, ascription TypeExpr, body Expr) Decl {
	return Decl{Kind: DeclVariable, Data: VariableDecl{Name: name, TypeAscription: ascription, Body: body}}
}

func Function(fn FunctionDecl) Decl { return Decl{Kind: DeclFunction, Data: fn} }

func Trait(tr TraitDecl) Decl { return Decl{Kind: DeclTrait, Data: tr} }

func Impl(impl TraitImpl) Decl { return Decl{Kind: DeclTraitImpl, Data: impl} }

func Struct(st StructDecl) Decl { return Decl{Kind: DeclStruct, Data: st} }
