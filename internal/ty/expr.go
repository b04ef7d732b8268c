package ty

import (
	"decc/internal/ast"
	"decc/internal/types"
)

// ExprKind enumerates typed expression kinds.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprVariable
	ExprApplication
	// ExprFunctionParameter is the body of the pseudo variable that puts a
	// function parameter in scope; it evaluates to nothing by itself.
	ExprFunctionParameter
	ExprStruct
	ExprMethodCall
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprVariable:
		return "Variable"
	case ExprApplication:
		return "FunctionApplication"
	case ExprFunctionParameter:
		return "FunctionParameter"
	case ExprStruct:
		return "Struct"
	case ExprMethodCall:
		return "MethodCall"
	default:
		return "Unknown"
	}
}

// Expr is a typed expression. Type is always bound.
type Expr struct {
	Kind ExprKind
	Type types.TypeID
	Data ExprData
}

// ExprData is the kind-specific payload of an Expr.
type ExprData interface {
	exprData()
}

type LiteralData struct {
	Value ast.Literal
}

func (LiteralData) exprData() {}

type VariableData struct {
	Name string
}

func (VariableData) exprData() {}

// ApplicationData is a resolved call. Callee is the instantiated
// declaration when the application carried type arguments; Origin is then
// the generic declaration it was cloned from.
type ApplicationData struct {
	Name     string
	Callee   Ref
	Origin   Ref
	TypeArgs []types.TypeID
	Args     []Expr
}

func (ApplicationData) exprData() {}

type FunctionParameterData struct{}

func (FunctionParameterData) exprData() {}

// FieldValue is one initialised field of a struct expression.
type FieldValue struct {
	Name  string
	Value Expr
}

// StructData is a struct expression. Decl is the concrete instance, Origin
// the generic struct when type arguments were given.
type StructData struct {
	Name     string
	Decl     Ref
	Origin   Ref
	TypeArgs []types.TypeID
	Fields   []FieldValue
}

func (StructData) exprData() {}

// MethodCallData is receiver.method(args) resolved against a trait impl.
type MethodCallData struct {
	Receiver string
	Method   string
	Impl     Ref
	Callee   Ref
	Args     []Expr
}

func (MethodCallData) exprData() {}
