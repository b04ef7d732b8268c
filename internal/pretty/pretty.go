// Package pretty renders collected programs as text for debugging.
package pretty

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"decc/internal/decl"
	"decc/internal/graph"
	"decc/internal/ids"
	"decc/internal/ty"
	"decc/internal/types"
)

// Printer reads the session stores; it never mutates them.
type Printer struct {
	Types *types.Engine
	Decls *decl.Engine
	Graph *graph.Graph

	keyword *color.Color
	typ     *color.Color
	name    *color.Color
	comment *color.Color
}

// New builds a printer; colored forces ANSI styling on or off regardless
// of the terminal.
func New(te *types.Engine, de *decl.Engine, g *graph.Graph, colored bool) *Printer {
	p := &Printer{
		Types:   te,
		Decls:   de,
		Graph:   g,
		keyword: color.New(color.FgMagenta, color.Bold),
		typ:     color.New(color.FgCyan),
		name:    color.New(color.Bold),
		comment: color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.keyword, p.typ, p.name, p.comment} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Application renders every file of app.
func (p *Printer) Application(app ty.Application) (string, error) {
	var b strings.Builder
	for _, f := range app.Files {
		if err := p.writeNode(&b, f, 0); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// Node renders the subtree rooted at idx.
func (p *Printer) Node(idx ids.CollectionIndex) (string, error) {
	var b strings.Builder
	if err := p.writeNode(&b, idx, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Declaration renders the declaration behind id.
func (p *Printer) Declaration(id ids.DeclarationID) (string, error) {
	if idx, ok := p.Graph.DeclarationNode(id); ok {
		return p.Node(idx)
	}
	name, err := p.Decls.Name(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s\n", id.Kind, name), nil
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
}

func (p *Printer) writeNode(b *strings.Builder, idx ids.CollectionIndex, depth int) error {
	n := p.Graph.Node(idx)
	switch n.Kind {
	case graph.NodeApplication:
		for _, f := range p.Graph.Children(idx, graph.ApplicationContents) {
			if err := p.writeNode(b, f, depth); err != nil {
				return err
			}
		}
	case graph.NodeFile:
		indent(b, depth)
		fmt.Fprintf(b, "%s %s\n", p.keyword.Sprint("file"), p.name.Sprint(n.Label))
		for _, s := range p.Graph.Children(idx, graph.FileContents) {
			if err := p.writeNode(b, s, depth+1); err != nil {
				return err
			}
		}
	case graph.NodeScope:
		for _, c := range p.Graph.Children(idx, graph.NodeContents) {
			if err := p.writeNode(b, c, depth); err != nil {
				return err
			}
		}
	case graph.NodeSyntax:
		return p.writeSyntax(b, idx, n.Syntax, depth)
	}
	return nil
}

func (p *Printer) writeSyntax(b *strings.Builder, idx ids.CollectionIndex, n ty.Node, depth int) error {
	switch n.Kind {
	case ty.NodeExpression:
		indent(b, depth)
		fmt.Fprintf(b, "%s %s\n", p.Expr(n.Expr), p.comment.Sprint("// "+p.Types.Display(n.Expr.Type)))
		return nil
	case ty.NodeReturn:
		indent(b, depth)
		fmt.Fprintf(b, "%s %s\n", p.keyword.Sprint("return"), p.Expr(n.Expr))
		return nil
	}

	d := n.Decl
	switch d.Kind {
	case ty.DeclVariable:
		indent(b, depth)
		v := d.Variable
		fmt.Fprintf(b, "%s %s: %s = %s\n", p.keyword.Sprint("let"), p.name.Sprint(v.Name), p.Type(v.TypeAscription), p.Expr(v.Body))
	case ty.DeclFunction:
		fn, err := p.Decls.GetFunction(d.Ref.ID)
		if err != nil {
			return err
		}
		if err := p.writeFunction(b, fn, depth); err != nil {
			return err
		}
		for _, in := range p.Graph.Instances(idx) {
			inst, err := p.Decls.GetFunction(in.Decl)
			if err != nil {
				return err
			}
			indent(b, depth)
			fmt.Fprintf(b, "%s %s%s%s\n", p.comment.Sprint("// instance"), p.name.Sprint(fn.Name),
				p.typeArgs(in.Args), p.Signature(inst))
		}
	case ty.DeclStruct:
		st, err := p.Decls.GetStruct(d.Ref.ID)
		if err != nil {
			return err
		}
		fields := make([]string, len(st.Fields))
		for i, f := range st.Fields {
			fields[i] = f.Name + ": " + p.Type(f.TypeID)
		}
		indent(b, depth)
		fmt.Fprintf(b, "%s %s%s { %s }\n", p.keyword.Sprint("struct"), p.name.Sprint(st.Name),
			p.typeParams(st.TypeParameters), strings.Join(fields, ", "))
		for _, in := range p.Graph.Instances(idx) {
			indent(b, depth)
			fmt.Fprintf(b, "%s %s%s\n", p.comment.Sprint("// instance"), p.name.Sprint(st.Name), p.typeArgs(in.Args))
		}
	case ty.DeclTrait:
		tr, err := p.Decls.GetTrait(d.Ref.ID)
		if err != nil {
			return err
		}
		indent(b, depth)
		fmt.Fprintf(b, "%s %s {\n", p.keyword.Sprint("trait"), p.name.Sprint(tr.Name))
		for _, c := range p.Graph.Children(idx, graph.DeclarationContents) {
			if err := p.writeNode(b, c, depth+1); err != nil {
				return err
			}
		}
		indent(b, depth)
		b.WriteString("}\n")
	case ty.DeclTraitFn:
		fn, err := p.Decls.GetTraitFn(d.Ref.ID)
		if err != nil {
			return err
		}
		indent(b, depth)
		fmt.Fprintf(b, "%s %s%s\n", p.keyword.Sprint("fn"), p.name.Sprint(fn.Name), p.params(fn.Parameters, fn.ReturnType))
	case ty.DeclTraitImpl:
		impl, err := p.Decls.GetTraitImpl(d.Ref.ID)
		if err != nil {
			return err
		}
		indent(b, depth)
		fmt.Fprintf(b, "%s %s %s %s {\n", p.keyword.Sprint("impl"), p.name.Sprint(impl.TraitName),
			p.keyword.Sprint("for"), p.Type(impl.TypeImplementingFor))
		for _, c := range p.Graph.Children(idx, graph.DeclarationContents) {
			if err := p.writeNode(b, c, depth+1); err != nil {
				return err
			}
		}
		indent(b, depth)
		b.WriteString("}\n")
	case ty.DeclGenericParam:
		indent(b, depth)
		fmt.Fprintf(b, "%s %s\n", p.keyword.Sprint("type"), p.Type(d.Generic))
	}
	return nil
}

func (p *Printer) writeFunction(b *strings.Builder, fn ty.FunctionDecl, depth int) error {
	indent(b, depth)
	fmt.Fprintf(b, "%s %s%s%s {\n", p.keyword.Sprint("fn"), p.name.Sprint(fn.Name),
		p.typeParams(fn.TypeParameters), p.Signature(fn))
	for _, s := range fn.Body {
		if err := p.writeNode(b, s, depth+1); err != nil {
			return err
		}
	}
	indent(b, depth)
	b.WriteString("}\n")
	return nil
}

// Signature renders "(x: T) -> R".
func (p *Printer) Signature(fn ty.FunctionDecl) string {
	return p.params(fn.Parameters, fn.ReturnType)
}

func (p *Printer) params(params []ty.Parameter, ret types.TypeID) string {
	parts := make([]string, len(params))
	for i, prm := range params {
		parts[i] = prm.Name + ": " + p.Type(prm.TypeID)
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + p.Type(ret)
}

func (p *Printer) typeParams(tps []types.TypeParameter) string {
	if len(tps) == 0 {
		return ""
	}
	names := make([]string, len(tps))
	for i, tp := range tps {
		names[i] = p.typ.Sprint(tp.Name)
	}
	return "<" + strings.Join(names, ", ") + ">"
}

func (p *Printer) typeArgs(args []types.TypeID) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = p.Type(a)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// Type renders a type handle.
func (p *Printer) Type(id types.TypeID) string {
	return p.typ.Sprint(p.Types.Display(id))
}

// Expr renders a typed expression on one line.
func (p *Printer) Expr(e ty.Expr) string {
	switch d := e.Data.(type) {
	case ty.LiteralData:
		return d.Value.String()
	case ty.VariableData:
		return d.Name
	case ty.FunctionParameterData:
		return p.comment.Sprint("<parameter>")
	case ty.ApplicationData:
		return d.Name + p.turbofish(d.TypeArgs) + "(" + p.exprs(d.Args) + ")"
	case ty.StructData:
		fields := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = f.Name + ": " + p.Expr(f.Value)
		}
		return d.Name + p.turbofish(d.TypeArgs) + " { " + strings.Join(fields, ", ") + " }"
	case ty.MethodCallData:
		return d.Receiver + "." + d.Method + "(" + p.exprs(d.Args) + ")"
	default:
		return "<" + e.Kind.String() + ">"
	}
}

func (p *Printer) turbofish(args []types.TypeID) string {
	if len(args) == 0 {
		return ""
	}
	return "::" + p.typeArgs(args)
}

func (p *Printer) exprs(es []ty.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = p.Expr(e)
	}
	return strings.Join(parts, ", ")
}
