package driver

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"decc/internal/ast"
)

// parseType reads the fixture spelling of a type: "_", "u8".."u64", a bare
// name, or Name<Arg, ...>.
func parseType(s string) (ast.TypeExpr, error) {
	p := typeParser{src: norm.NFC.String(s)}
	t, err := p.parse()
	if err != nil {
		return ast.TypeExpr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return ast.TypeExpr{}, fmt.Errorf("trailing input %q in type %q", p.src[p.pos:], s)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

func (p *typeParser) parse() (ast.TypeExpr, error) {
	p.skipSpace()
	name := p.ident()
	if name == "" {
		return ast.TypeExpr{}, fmt.Errorf("expected a type in %q at offset %d", p.src, p.pos)
	}
	if name == "_" {
		return ast.UnknownType(), nil
	}
	if bits, ok := uintBits(name); ok {
		return ast.UintType(bits), nil
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return ast.NamedType(name), nil
	}
	p.pos++
	var args []ast.TypeExpr
	for {
		arg, err := p.parse()
		if err != nil {
			return ast.TypeExpr{}, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return ast.TypeExpr{}, fmt.Errorf("unterminated type arguments in %q", p.src)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return ast.NamedType(name, args...), nil
		default:
			return ast.TypeExpr{}, fmt.Errorf("unexpected %q in type %q", p.src[p.pos], p.src)
		}
	}
}

// uintBits recognises u8, u16, u32 and u64. Other widths such as u7 stay
// names so the resolver can report them.
func uintBits(name string) (uint8, bool) {
	switch name {
	case "u8":
		return 8, true
	case "u16":
		return 16, true
	case "u32":
		return 32, true
	case "u64":
		return 64, true
	}
	return 0, false
}

// parseLiteral reads "<value>u<bits>", e.g. 42u8.
func parseLiteral(s string) (ast.Literal, error) {
	i := strings.LastIndexByte(s, 'u')
	if i <= 0 {
		return ast.Literal{}, fmt.Errorf("literal %q needs a width suffix", s)
	}
	bits, err := strconv.ParseUint(s[i+1:], 10, 8)
	if err != nil {
		return ast.Literal{}, fmt.Errorf("literal %q: bad width: %w", s, err)
	}
	limit := bits
	if _, ok := uintBits("u" + s[i+1:]); !ok {
		// unsupported widths reach the collector, which reports them
		limit = 64
	}
	v, err := strconv.ParseUint(s[:i], 10, int(limit))
	if err != nil {
		return ast.Literal{}, fmt.Errorf("literal %q: %w", s, err)
	}
	return ast.Literal{Bits: uint8(bits), Value: v}, nil
}
