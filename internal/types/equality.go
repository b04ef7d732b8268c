package types

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Equal compares the fully resolved descriptors of a and b. Ref chains are
// followed at every level, so two distinct slots that both end up at the
// same structure compare equal.
func (e *Engine) Equal(a, b TypeID) bool {
	if a == b {
		return true
	}
	return e.EqualInfo(e.Resolve(a), e.Resolve(b))
}

// EqualInfo compares two descriptors structurally.
func (e *Engine) EqualInfo(l, r TypeInfo) bool {
	if l.Kind == KindRef {
		l = e.Resolve(l.Target)
	}
	if r.Kind == KindRef {
		r = e.Resolve(r.Target)
	}
	if l.Kind != r.Kind {
		return false
	}
	switch l.Kind {
	case KindUnknown:
		return true
	case KindUnsignedInteger:
		return l.Bits == r.Bits
	case KindUnknownGeneric:
		return l.Name == r.Name && e.equalArgs(l.Args, r.Args)
	case KindDeclarationRef:
		return l.Decl == r.Decl && e.equalArgs(l.Args, r.Args)
	default:
		return false
	}
}

func (e *Engine) equalArgs(l, r []TypeID) bool {
	if len(l) != len(r) {
		return false
	}
	for i := range l {
		if !e.Equal(l[i], r[i]) {
			return false
		}
	}
	return true
}

// Key renders a canonical structural key for id. Equal types produce equal
// keys, which makes Key usable for caches keyed by type-argument sets.
func (e *Engine) Key(id TypeID) string {
	var b strings.Builder
	e.writeKey(&b, id, false)
	return b.String()
}

// exact additionally pins placeholders and unknowns to their slot, so two
// generic parameters that merely share a name get different keys.
func (e *Engine) writeKey(b *strings.Builder, id TypeID, exact bool) {
	last := e.Follow(id)
	info := e.slots[last].info
	switch info.Kind {
	case KindUnknown:
		b.WriteString("?")
	case KindUnsignedInteger:
		b.WriteString(info.Bits.String())
	case KindUnknownGeneric:
		b.WriteString("'")
		b.WriteString(info.Name)
	case KindDeclarationRef:
		b.WriteString("@")
		b.WriteString(strconv.FormatUint(uint64(info.Decl.Kind), 10))
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(uint64(info.Decl.Index), 10))
	}
	if exact && (info.Kind == KindUnknown || info.Kind == KindUnknownGeneric) {
		b.WriteByte('$')
		b.WriteString(strconv.FormatUint(uint64(last), 10))
	}
	if len(info.Args) == 0 {
		return
	}
	b.WriteByte('<')
	for i, arg := range info.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		e.writeKey(b, arg, exact)
	}
	b.WriteByte('>')
}

// ArgsKey joins the structural keys of a type-argument set.
func (e *Engine) ArgsKey(args []TypeID) string {
	return e.argsKey(args, false)
}

// InstanceKey is ArgsKey with placeholders told apart by slot. Concrete
// argument sets get the same key from both.
func (e *Engine) InstanceKey(args []TypeID) string {
	return e.argsKey(args, true)
}

func (e *Engine) argsKey(args []TypeID, exact bool) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		e.writeKey(&b, arg, exact)
	}
	return b.String()
}

// Hash is a structural hash consistent with Equal.
func (e *Engine) Hash(id TypeID) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(e.Key(id)))
	return h.Sum64()
}

// Display renders id for humans: u8, T, UNK, Point<u32>.
func (e *Engine) Display(id TypeID) string {
	if !e.Bound(id) {
		return "<none>"
	}
	info := e.Resolve(id)
	switch info.Kind {
	case KindUnknown:
		return "UNK"
	case KindUnsignedInteger:
		return info.Bits.String()
	case KindUnknownGeneric, KindDeclarationRef:
		if len(info.Args) == 0 {
			return info.Name
		}
		parts := make([]string, len(info.Args))
		for i, arg := range info.Args {
			parts[i] = e.Display(arg)
		}
		return info.Name + "<" + strings.Join(parts, ", ") + ">"
	default:
		return info.Kind.String()
	}
}
