package multiset

import (
	"github.com/cyphal-go/transport-core/pkg/pool"
)

// Multiset stores elements of type T in place, backed by a
// pool.Allocator. Iteration order is unspecified. A Multiset must not
// be copied after first use.
type Multiset[T any] struct {
	alloc pool.Allocator[T]
	items []*T
}

// New creates a Multiset backed by alloc. The caller owns alloc and
// may size it to bound how many elements this multiset can ever hold
// concurrently.
func New[T any](alloc pool.Allocator[T]) *Multiset[T] {
	return &Multiset[T]{alloc: alloc}
}

// Add allocates a new element, applies init to it, and stores it.
// Returns the stable pointer to the stored element, or the pool's
// error (typically pool.ErrExhausted) if allocation failed. Nothing
// is stored in that case.
func (m *Multiset[T]) Add(init func(*T)) (*T, error) {
	blk, err := m.alloc.Allocate()
	if err != nil {
		return nil, err
	}
	if init != nil {
		init(blk)
	}
	m.items = append(m.items, blk)
	return blk, nil
}

// Len returns the number of stored elements.
func (m *Multiset[T]) Len() int {
	return len(m.items)
}

// FindFirst returns the first stored element matching pred, or nil if
// none does.
func (m *Multiset[T]) FindFirst(pred func(*T) bool) *T {
	for _, it := range m.items {
		if pred(it) {
			return it
		}
	}
	return nil
}

// RemoveFirstMatching removes and frees the first element matching
// pred. Reports whether an element was removed.
func (m *Multiset[T]) RemoveFirstMatching(pred func(*T) bool) bool {
	for i, it := range m.items {
		if pred(it) {
			m.removeAt(i)
			return true
		}
	}
	return false
}

// RemoveAllMatching removes and frees every element matching pred.
// Returns the count removed.
func (m *Multiset[T]) RemoveAllMatching(pred func(*T) bool) int {
	removed := 0
	kept := m.items[:0]
	for _, it := range m.items {
		if pred(it) {
			m.alloc.Deallocate(it)
			removed++
			continue
		}
		kept = append(kept, it)
	}
	m.items = kept
	return removed
}

// Remove removes a specific previously-Added element by identity. It
// is the caller's responsibility to pass a pointer this multiset
// actually owns; removing an unknown pointer is a no-op.
func (m *Multiset[T]) Remove(el *T) bool {
	return m.RemoveFirstMatching(func(t *T) bool { return t == el })
}

// Each calls fn for every stored element in unspecified order.
// Mutating the multiset from within fn is not supported.
func (m *Multiset[T]) Each(fn func(*T)) {
	for _, it := range m.items {
		fn(it)
	}
}

func (m *Multiset[T]) removeAt(i int) {
	it := m.items[i]
	m.alloc.Deallocate(it)
	last := len(m.items) - 1
	m.items[i] = m.items[last]
	m.items[last] = nil
	m.items = m.items[:last]
}
