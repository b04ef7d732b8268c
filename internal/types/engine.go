package types

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

var (
	// ErrCanonicalSlot is returned when rebinding an interned primitive.
	ErrCanonicalSlot = errors.New("types: canonical slot cannot be rebound")
	// ErrRefCycle is returned when a rebind would make a slot reach itself.
	ErrRefCycle = errors.New("types: rebind would create a reference cycle")
)

type slot struct {
	info      TypeInfo
	canonical bool
}

// Rebind records one audited slot mutation.
type Rebind struct {
	ID   TypeID
	From TypeInfo
	To   TypeInfo
}

// Engine owns every type slot of a compilation session.
type Engine struct {
	slots   []slot
	uints   map[IntegerBits]TypeID
	rebinds []Rebind
}

// NewEngine constructs an empty engine. Slot 0 is reserved for NoTypeID.
func NewEngine() *Engine {
	return &Engine{
		slots: make([]slot, 1, 64),
		uints: make(map[IntegerBits]TypeID, 4),
	}
}

// Insert allocates a slot for info. Unsigned integers are canonical and
// share one slot per width; every other descriptor gets a fresh slot so
// that it can be rebound independently.
func (e *Engine) Insert(info TypeInfo) TypeID {
	switch info.Kind {
	case KindInvalid:
		panic("types: insert of invalid descriptor")
	case KindUnsignedInteger:
		if id, ok := e.uints[info.Bits]; ok {
			return id
		}
		id := e.push(info, true)
		e.uints[info.Bits] = id
		return id
	case KindRef:
		e.mustBound(info.Target)
	}
	info.Args = cloneIDs(info.Args)
	return e.push(info, false)
}

func (e *Engine) push(info TypeInfo, canonical bool) TypeID {
	n, err := safecast.Conv[uint32](len(e.slots))
	if err != nil {
		panic(fmt.Errorf("types: slot arena overflow: %w", err))
	}
	e.slots = append(e.slots, slot{info: info, canonical: canonical})
	return TypeID(n)
}

// Len reports the number of bound slots.
func (e *Engine) Len() int { return len(e.slots) - 1 }

// Bound reports whether id refers to an allocated slot.
func (e *Engine) Bound(id TypeID) bool {
	return id != NoTypeID && int(id) < len(e.slots)
}

func (e *Engine) mustBound(id TypeID) {
	if !e.Bound(id) {
		panic(fmt.Sprintf("types: unbound TypeID %d", id))
	}
}

// Lookup returns the raw descriptor of a slot without following Ref.
func (e *Engine) Lookup(id TypeID) (TypeInfo, bool) {
	if !e.Bound(id) {
		return TypeInfo{}, false
	}
	return e.slots[id].info, true
}

// MustLookup panics when id is unbound.
func (e *Engine) MustLookup(id TypeID) TypeInfo {
	info, ok := e.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("types: unbound TypeID %d", id))
	}
	return info
}

// Resolve dereferences id, following Ref chains to the first non-Ref
// descriptor. An unbound id or a Ref cycle is a pipeline bug and panics.
func (e *Engine) Resolve(id TypeID) TypeInfo {
	return e.MustLookup(e.Follow(id))
}

// Follow returns the last slot of the Ref chain starting at id.
func (e *Engine) Follow(id TypeID) TypeID {
	e.mustBound(id)
	cur := id
	for steps := 0; ; steps++ {
		if steps >= len(e.slots) {
			panic(fmt.Sprintf("types: reference cycle through TypeID %d", id))
		}
		info := e.slots[cur].info
		if info.Kind != KindRef {
			return cur
		}
		cur = info.Target
		e.mustBound(cur)
	}
}

// Rebind replaces the descriptor held by id. This is the only way a slot
// ever changes; every call is recorded in the audit log.
func (e *Engine) Rebind(id TypeID, info TypeInfo) error {
	e.mustBound(id)
	if info.Kind == KindInvalid {
		panic("types: rebind to invalid descriptor")
	}
	if e.slots[id].canonical {
		return fmt.Errorf("%w: %s (TypeID %d)", ErrCanonicalSlot, e.Display(id), id)
	}
	if e.reaches(info, id) {
		return fmt.Errorf("%w: TypeID %d", ErrRefCycle, id)
	}
	info.Args = cloneIDs(info.Args)
	e.rebinds = append(e.rebinds, Rebind{ID: id, From: e.slots[id].info, To: info})
	e.slots[id].info = info
	return nil
}

// Rebinds returns the audit log of slot mutations in order.
func (e *Engine) Rebinds() []Rebind {
	out := make([]Rebind, len(e.rebinds))
	copy(out, e.rebinds)
	return out
}

// reaches reports whether following info's references can arrive at target.
func (e *Engine) reaches(info TypeInfo, target TypeID) bool {
	seen := make(map[TypeID]struct{})
	var walk func(TypeInfo) bool
	visit := func(id TypeID) bool {
		if id == target {
			return true
		}
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		e.mustBound(id)
		return walk(e.slots[id].info)
	}
	walk = func(ti TypeInfo) bool {
		if ti.Kind == KindRef && visit(ti.Target) {
			return true
		}
		for _, arg := range ti.Args {
			if visit(arg) {
				return true
			}
		}
		return false
	}
	return walk(info)
}

// IsConcrete reports whether id resolves to a type with no unknowns and no
// generic placeholders anywhere inside it.
func (e *Engine) IsConcrete(id TypeID) bool {
	info := e.Resolve(id)
	switch info.Kind {
	case KindUnsignedInteger:
		return true
	case KindDeclarationRef:
		for _, arg := range info.Args {
			if !e.IsConcrete(arg) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
