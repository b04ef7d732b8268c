package types

// TypeParameter binds a generic parameter name to its placeholder slot.
type TypeParameter struct {
	Name   string
	TypeID TypeID
}

// TypeArgument is a type applied at a use-site, e.g. the u8 of identity::<u8>.
type TypeArgument struct {
	TypeID TypeID
}

// Pair is a single substitution generic -> concrete.
type Pair struct {
	From TypeID
	To   TypeID
}

// Mapping is an ordered substitution set. Lookups match slots by identity,
// never structurally: two functions with a parameter named T must not
// substitute each other's placeholders.
type Mapping struct {
	pairs []Pair
}

// NewMapping pairs each parameter with the argument at the same position.
// Extra entries on either side are ignored; arity is checked by callers.
func NewMapping(params []TypeParameter, args []TypeID) Mapping {
	n := min(len(params), len(args))
	m := Mapping{pairs: make([]Pair, 0, n)}
	for i := range n {
		m.pairs = append(m.pairs, Pair{From: params[i].TypeID, To: args[i]})
	}
	return m
}

// MappingOf builds a mapping from explicit pairs.
func MappingOf(pairs ...Pair) Mapping {
	m := Mapping{pairs: make([]Pair, len(pairs))}
	copy(m.pairs, pairs)
	return m
}

// Find returns the replacement for id, if any.
func (m Mapping) Find(id TypeID) (TypeID, bool) {
	for _, p := range m.pairs {
		if p.From == id {
			return p.To, true
		}
	}
	return NoTypeID, false
}

// Len reports the number of pairs.
func (m Mapping) Len() int { return len(m.pairs) }

// IsEmpty reports whether applying m is the identity.
func (m Mapping) IsEmpty() bool { return len(m.pairs) == 0 }

// Pairs returns a copy of the substitution pairs in order.
func (m Mapping) Pairs() []Pair {
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}
