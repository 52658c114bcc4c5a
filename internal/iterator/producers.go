package iterator

// SliceIterator walks a fixed, ordered list of values.
type SliceIterator[T any] struct {
	items []T
	pos   int
}

// FromSlice returns a bounded producer over a copy of items. After the last
// item every call to Advance returns Exhausted.
func FromSlice[T any](items ...T) *SliceIterator[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return &SliceIterator[T]{items: cp}
}

// Advance implements Iterator.
func (s *SliceIterator[T]) Advance() Result[T] {
	if s.pos >= len(s.items) {
		return Exhausted[T]{}
	}
	v := s.items[s.pos]
	s.pos++
	return Produced[T]{Value: v}
}

// Len returns the total number of items, consumed or not.
func (s *SliceIterator[T]) Len() int { return len(s.items) }

// Remaining returns how many items are left.
func (s *SliceIterator[T]) Remaining() int { return len(s.items) - s.pos }

// FuncIterator adapts a step closure to the Iterator contract.
type FuncIterator[T any] struct {
	next func() (T, bool)
	done bool
}

// FromFunc returns a producer that calls next on every Advance. As soon as
// next reports false the iterator is exhausted for good; next is not called
// again.
func FromFunc[T any](next func() (T, bool)) *FuncIterator[T] {
	return &FuncIterator[T]{next: next}
}

// Advance implements Iterator.
func (f *FuncIterator[T]) Advance() Result[T] {
	if f.done || f.next == nil {
		f.done = true
		return Exhausted[T]{}
	}
	v, ok := f.next()
	if !ok {
		f.done = true
		return Exhausted[T]{}
	}
	return Produced[T]{Value: v}
}

// ConcatIterator delegates to a list of iterators in order.
type ConcatIterator[T any] struct {
	its []Iterator[T]
}

// Concat returns a producer that drains each of its in turn. An infinite
// member never yields to the ones after it.
func Concat[T any](its ...Iterator[T]) *ConcatIterator[T] {
	cp := make([]Iterator[T], 0, len(its))
	for _, it := range its {
		if it != nil {
			cp = append(cp, it)
		}
	}
	return &ConcatIterator[T]{its: cp}
}

// Advance implements Iterator.
func (c *ConcatIterator[T]) Advance() Result[T] {
	for len(c.its) > 0 {
		r := c.its[0].Advance()
		if !r.Done() {
			return r
		}
		c.its[0] = nil
		c.its = c.its[1:]
	}
	return Exhausted[T]{}
}

// PassiveIterator lifts a plain Iterator to a Resumable that ignores every
// control value.
type PassiveIterator[T, C any] struct {
	Iterator[T]
}

// Passive wraps it so that drivers written against Resumable can consume
// producers that take no control input.
func Passive[T, C any](it Iterator[T]) *PassiveIterator[T, C] {
	return &PassiveIterator[T, C]{Iterator: it}
}

// Resume implements Resumable. ctl is discarded.
func (p *PassiveIterator[T, C]) Resume(C) Result[T] {
	return p.Advance()
}

// compile-time interface checks
var (
	_ Iterator[int]       = (*SliceIterator[int])(nil)
	_ Iterator[int]       = (*FuncIterator[int])(nil)
	_ Iterator[int]       = (*ConcatIterator[int])(nil)
	_ Resumable[int, any] = (*PassiveIterator[int, any])(nil)
)
