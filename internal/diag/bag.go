package diag

import (
	"errors"
	"sort"
)

// Bag collects errors of a session up to a limit.
type Bag struct {
	items []*Error
	max   int
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 100
	}
	return &Bag{
		items: make([]*Error, 0, min(max, 16)),
		max:   max,
	}
}

// Max is the number of errors the bag keeps.
func (b *Bag) Max() int { return b.max }

// Add records err. Non-diag errors are wrapped as UnknownCode. It returns
// false when the limit is reached and err was dropped.
func (b *Bag) Add(err error) bool {
	if err == nil {
		return true
	}
	if len(b.items) >= b.max {
		return false
	}
	var de *Error
	if !errors.As(err, &de) {
		de = &Error{Code: UnknownCode, Err: err}
	}
	b.items = append(b.items, de)
	return true
}

func (b *Bag) Cap() int { return b.max }

func (b *Bag) Len() int { return len(b.items) }

func (b *Bag) HasErrors() bool { return len(b.items) > 0 }

// Items returns the recorded errors. The slice must not be modified.
func (b *Bag) Items() []*Error { return b.items }

// Err joins every recorded error, or returns nil.
func (b *Bag) Err() error {
	if len(b.items) == 0 {
		return nil
	}
	errs := make([]error, len(b.items))
	for i, it := range b.items {
		errs[i] = it
	}
	return errors.Join(errs...)
}

// Sort orders by file, then code, then message, for deterministic output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})
}

// AddAll records each error joined into err separately. It returns false
// once the limit drops something.
func (b *Bag) AddAll(err error) bool {
	if err == nil {
		return true
	}
	if _, ok := err.(*Error); ok {
		return b.Add(err)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return b.Add(err)
	}
	kept := true
	for _, e := range joined.Unwrap() {
		if !b.AddAll(e) {
			kept = false
		}
	}
	return kept
}
