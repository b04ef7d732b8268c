package ast

import (
	"fmt"
	"strings"
)

// Literal is an unsigned integer literal with an explicit width.
type Literal struct {
	Bits  uint8
	Value uint64
}

func U8(v uint8) Literal   { return Literal{Bits: 8, Value: uint64(v)} }
func U16(v uint16) Literal { return Literal{Bits: 16, Value: uint64(v)} }
func U32(v uint32) Literal { return Literal{Bits: 32, Value: uint64(v)} }
func U64(v uint64) Literal { return Literal{Bits: 64, Value: v} }

func (l Literal) String() string { return fmt.Sprintf("%du%d", l.Value, l.Bits) }

// ExprKind enumerates untyped expression kinds.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprVariable
	ExprApplication
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
	case ExprStruct:
		return "Struct"
	case ExprMethodCall:
		return "MethodCall"
	default:
		return "Unknown"
	}
}

// Expr is an untyped expression.
type Expr struct {
	Kind ExprKind
	Data ExprData
}

// ExprData is the kind-specific payload of an Expr.
type ExprData interface {
	exprData()
}

type LiteralData struct {
	Value Literal
}

func (LiteralData) exprData() {}

type VariableData struct {
	Name string
}

func (VariableData) exprData() {}

// ApplicationData is name::<TypeArgs>(Args).
type ApplicationData struct {
	Name     string
	TypeArgs []TypeExpr
	Args     []Expr
}

func (ApplicationData) exprData() {}

// FieldInit is one `name: value` entry of a struct expression.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructData is Name::<TypeArgs> { fields }.
type StructData struct {
	Name     string
	TypeArgs []TypeExpr
	Fields   []FieldInit
}

func (StructData) exprData() {}

// MethodCallData is receiver.method(args), receiver being a variable name.
type MethodCallData struct {
	Receiver string
	Method   string
	Args     []Expr
}

func (MethodCallData) exprData() {}

// Constructors --------------------------------------------------------------

func Lit(l Literal) Expr { return Expr{Kind: ExprLiteral, Data: LiteralData{Value: l}} }

func Var(name string) Expr { return Expr{Kind: ExprVariable, Data: VariableData{Name: name}} }

func Call(name string, typeArgs []TypeExpr, args ...Expr) Expr {
	return Expr{Kind: ExprApplication, Data: ApplicationData{Name: name, TypeArgs: typeArgs, Args: args}}
}

func StructLit(name string, typeArgs []TypeExpr, fields ...FieldInit) Expr {
	return Expr{Kind: ExprStruct, Data: StructData{Name: name, TypeArgs: typeArgs, Fields: fields}}
}

func MethodCall(receiver, method string, args ...Expr) Expr {
	return Expr{Kind: ExprMethodCall, Data: MethodCallData{Receiver: receiver, Method: method, Args: args}}
}

func (e Expr) String() string {
	switch d := e.Data.(type) {
	case LiteralData:
		return d.Value.String()
	case VariableData:
		return d.Name
	case ApplicationData:
		return d.Name + typeArgsString(d.TypeArgs) + "(" + joinExprs(d.Args) + ")"
	case StructData:
		parts := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			parts[i] = f.Name + ": " + f.Value.String()
		}
		return d.Name + typeArgsString(d.TypeArgs) + " { " + strings.Join(parts, ", ") + " }"
	case MethodCallData:
		return d.Receiver + "." + d.Method + "(" + joinExprs(d.Args) + ")"
	default:
		return "<expr>"
	}
}

func typeArgsString(args []TypeExpr) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "::<" + strings.Join(parts, ", ") + ">"
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
