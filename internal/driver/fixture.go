package driver

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"decc/internal/ast"
	"decc/internal/diag"
)

// Fixture files describe one compilation unit as TOML:
//
//	name = "main"
//
//	[[node]]
//	kind = "fn"
//	name = "identity"
//	type_params = ["T"]
//	params = [{ name = "x", type = "T" }]
//	returns = "T"
//	body = [{ kind = "return", expr = { var = "x" } }]
//
// Node kinds are let, fn, struct, trait, impl, expr and return.
type fixtureFile struct {
	Name  string        `toml:"name"`
	Nodes []fixtureNode `toml:"node"`
}

type fixtureNode struct {
	Kind       string         `toml:"kind"`
	Name       string         `toml:"name"`
	Type       string         `toml:"type"`
	Expr       *fixtureExpr   `toml:"expr"`
	TypeParams []string       `toml:"type_params"`
	Params     []fixtureParam `toml:"params"`
	Returns    string         `toml:"returns"`
	Body       []fixtureNode  `toml:"body"`
	Fields     []fixtureParam `toml:"fields"`
	Fns        []fixtureNode  `toml:"fns"`
	Trait      string         `toml:"trait"`
	For        string         `toml:"for"`
	Methods    []fixtureNode  `toml:"methods"`
}

type fixtureParam struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// fixtureExpr sets exactly one of lit, var, call, struct or method.
type fixtureExpr struct {
	Lit      string         `toml:"lit"`
	Var      string         `toml:"var"`
	Call     string         `toml:"call"`
	Struct   string         `toml:"struct"`
	Method   string         `toml:"method"`
	Receiver string         `toml:"receiver"`
	TypeArgs []string       `toml:"type_args"`
	Args     []fixtureExpr  `toml:"args"`
	Fields   []fixtureField `toml:"fields"`
}

type fixtureField struct {
	Name  string      `toml:"name"`
	Value fixtureExpr `toml:"value"`
}

// DecodeFixture turns TOML fixture text into an untyped file. fallback
// names the file when the fixture has no name key. Identifiers are
// normalised to NFC so visually equal names compare equal.
func DecodeFixture(data []byte, fallback string) (ast.File, error) {
	var ff fixtureFile
	md, err := toml.Decode(string(data), &ff)
	if err != nil {
		return ast.File{}, diag.Wrap(diag.InputDecode, err, "%s", fallback)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return ast.File{}, diag.Errorf(diag.InputDecode, "%s: unknown keys %s", fallback, strings.Join(keys, ", "))
	}
	name := ident(ff.Name)
	if name == "" {
		name = fallback
	}
	nodes, err := convertNodes(ff.Nodes)
	if err != nil {
		return ast.File{}, diag.InFile(err, name)
	}
	return ast.File{Name: name, Nodes: nodes}, nil
}

func ident(s string) string { return norm.NFC.String(strings.TrimSpace(s)) }

func invalid(format string, args ...any) error {
	return diag.Errorf(diag.InputInvalid, format, args...)
}

func convertNodes(in []fixtureNode) ([]ast.Node, error) {
	out := make([]ast.Node, 0, len(in))
	for i, n := range in {
		node, err := convertNode(n)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		out = append(out, node)
	}
	return out, nil
}

func convertNode(n fixtureNode) (ast.Node, error) {
	switch n.Kind {
	case "let":
		asc, err := optionalType(n.Type)
		if err != nil {
			return ast.Node{}, err
		}
		body, err := requiredExpr(n)
		if err != nil {
			return ast.Node{}, err
		}
		return ast.DeclNode(ast.Variable(ident(n.Name), asc, body)), nil
	case "fn":
		fn, err := convertFunction(n)
		if err != nil {
			return ast.Node{}, err
		}
		return ast.DeclNode(ast.Function(fn)), nil
	case "struct":
		fields, err := convertParams(n.Fields)
		if err != nil {
			return ast.Node{}, err
		}
		st := ast.StructDecl{Name: ident(n.Name), TypeParameters: idents(n.TypeParams)}
		for _, f := range fields {
			st.Fields = append(st.Fields, ast.Field(f))
		}
		return ast.DeclNode(ast.Struct(st)), nil
	case "trait":
		tr := ast.TraitDecl{Name: ident(n.Name)}
		for _, f := range n.Fns {
			params, err := convertParams(f.Params)
			if err != nil {
				return ast.Node{}, err
			}
			ret, err := optionalType(f.Returns)
			if err != nil {
				return ast.Node{}, err
			}
			tr.InterfaceSurface = append(tr.InterfaceSurface, ast.TraitFn{Name: ident(f.Name), Parameters: params, ReturnType: ret})
		}
		return ast.DeclNode(ast.Trait(tr)), nil
	case "impl":
		target, err := parseType(n.For)
		if err != nil {
			return ast.Node{}, invalid("impl %s: %v", n.Trait, err)
		}
		impl := ast.TraitImpl{TraitName: ident(n.Trait), TypeImplementingFor: target, TypeParameters: idents(n.TypeParams)}
		for _, m := range n.Methods {
			fn, err := convertFunction(m)
			if err != nil {
				return ast.Node{}, err
			}
			impl.Methods = append(impl.Methods, fn)
		}
		return ast.DeclNode(ast.Impl(impl)), nil
	case "expr":
		e, err := requiredExpr(n)
		if err != nil {
			return ast.Node{}, err
		}
		return ast.ExprNode(e), nil
	case "return":
		e, err := requiredExpr(n)
		if err != nil {
			return ast.Node{}, err
		}
		return ast.Return(e), nil
	default:
		return ast.Node{}, invalid("unknown node kind %q", n.Kind)
	}
}

func convertFunction(n fixtureNode) (ast.FunctionDecl, error) {
	params, err := convertParams(n.Params)
	if err != nil {
		return ast.FunctionDecl{}, err
	}
	ret, err := optionalType(n.Returns)
	if err != nil {
		return ast.FunctionDecl{}, err
	}
	body, err := convertNodes(n.Body)
	if err != nil {
		return ast.FunctionDecl{}, fmt.Errorf("fn %s: %w", n.Name, err)
	}
	return ast.FunctionDecl{
		Name:           ident(n.Name),
		TypeParameters: idents(n.TypeParams),
		Parameters:     params,
		Body:           body,
		ReturnType:     ret,
	}, nil
}

func convertParams(in []fixtureParam) ([]ast.Param, error) {
	out := make([]ast.Param, 0, len(in))
	for _, p := range in {
		t, err := parseType(p.Type)
		if err != nil {
			return nil, invalid("parameter %s: %v", p.Name, err)
		}
		out = append(out, ast.Param{Name: ident(p.Name), Type: t})
	}
	return out, nil
}

func idents(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = ident(s)
	}
	return out
}

// optionalType treats an empty spelling as "_".
func optionalType(s string) (ast.TypeExpr, error) {
	if strings.TrimSpace(s) == "" {
		return ast.UnknownType(), nil
	}
	t, err := parseType(s)
	if err != nil {
		return ast.TypeExpr{}, invalid("%v", err)
	}
	return t, nil
}

func typeArgs(in []string) ([]ast.TypeExpr, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]ast.TypeExpr, len(in))
	for i, s := range in {
		t, err := parseType(s)
		if err != nil {
			return nil, invalid("%v", err)
		}
		out[i] = t
	}
	return out, nil
}

func requiredExpr(n fixtureNode) (ast.Expr, error) {
	if n.Expr == nil {
		return ast.Expr{}, invalid("%s %s: missing expr", n.Kind, n.Name)
	}
	return convertExpr(*n.Expr)
}

func convertExpr(e fixtureExpr) (ast.Expr, error) {
	set := 0
	for _, s := range []string{e.Lit, e.Var, e.Call, e.Struct, e.Method} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return ast.Expr{}, invalid("expression needs exactly one of lit, var, call, struct, method")
	}
	args, err := convertExprs(e.Args)
	if err != nil {
		return ast.Expr{}, err
	}
	targs, err := typeArgs(e.TypeArgs)
	if err != nil {
		return ast.Expr{}, err
	}
	switch {
	case e.Lit != "":
		lit, err := parseLiteral(e.Lit)
		if err != nil {
			return ast.Expr{}, invalid("%v", err)
		}
		return ast.Lit(lit), nil
	case e.Var != "":
		return ast.Var(ident(e.Var)), nil
	case e.Call != "":
		return ast.Call(ident(e.Call), targs, args...), nil
	case e.Struct != "":
		fields := make([]ast.FieldInit, 0, len(e.Fields))
		for _, f := range e.Fields {
			v, err := convertExpr(f.Value)
			if err != nil {
				return ast.Expr{}, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields = append(fields, ast.FieldInit{Name: ident(f.Name), Value: v})
		}
		return ast.StructLit(ident(e.Struct), targs, fields...), nil
	default:
		if e.Receiver == "" {
			return ast.Expr{}, invalid("method %s: missing receiver", e.Method)
		}
		return ast.MethodCall(ident(e.Receiver), ident(e.Method), args...), nil
	}
}

func convertExprs(in []fixtureExpr) ([]ast.Expr, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]ast.Expr, len(in))
	for i, e := range in {
		v, err := convertExpr(e)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
