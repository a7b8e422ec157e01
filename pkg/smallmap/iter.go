package smallmap

import "iter"

// Iter is a single pass cursor over the entries of a map in map order.
// Once exhausted it keeps reporting the end even if the map changes,
// a new cursor must be acquired to iterate again.
type Iter[K comparable, V any] struct {
	m    *Map[K, V]
	next int
	done bool
}

// IterMut is like Iter but provides pointers to the values.
type IterMut[K comparable, V any] struct{ it Iter[K, V] }

// Iter returns a new cursor positioned before the first entry.
func (m *Map[K, V]) Iter() Iter[K, V] { return Iter[K, V]{m: m} }

// IterMut returns a new mutable cursor positioned before the first entry.
func (m *Map[K, V]) IterMut() IterMut[K, V] {
	return IterMut[K, V]{Iter[K, V]{m: m}}
}

func (it *Iter[K, V]) advance() *Slot[K, V] {
	if it.done || it.next >= it.m.s.len() {
		it.done = true
		return nil
	}
	s := it.m.s.at(it.next)
	it.next++
	return s
}

// Next returns the next entry and true, or false if the cursor is exhausted.
func (it *Iter[K, V]) Next() (key K, value V, ok bool) {
	if s := it.advance(); s != nil {
		return s.key, s.value, true
	}
	return key, value, false
}

// Next returns the next entry and true, or false if the cursor is exhausted.
func (it *IterMut[K, V]) Next() (key K, value *V, ok bool) {
	if s := it.it.advance(); s != nil {
		return s.key, &s.value, true
	}
	return key, nil, false
}

// All returns an iterator over all entries in map order.
// The map must not be structurally modified during iteration.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := 0; i < m.s.len(); i++ {
			s := m.s.at(i)
			if !yield(s.key, s.value) {
				return
			}
		}
	}
}

// AllMut is like All but yields pointers to the values.
func (m *Map[K, V]) AllMut() iter.Seq2[K, *V] {
	return func(yield func(K, *V) bool) {
		for i := 0; i < m.s.len(); i++ {
			s := m.s.at(i)
			if !yield(s.key, &s.value) {
				return
			}
		}
	}
}

// Keys returns an iterator over all keys in map order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for i := 0; i < m.s.len(); i++ {
			if !yield(m.s.at(i).key) {
				return
			}
		}
	}
}

// Values returns an iterator over all values in map order.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for i := 0; i < m.s.len(); i++ {
			if !yield(m.s.at(i).value) {
				return
			}
		}
	}
}

// ValuesMut returns an iterator over pointers to all values in map order.
func (m *Map[K, V]) ValuesMut() iter.Seq[*V] {
	return func(yield func(*V) bool) {
		for i := 0; i < m.s.len(); i++ {
			if !yield(&m.s.at(i).value) {
				return
			}
		}
	}
}

// Visit calls fn for every stored key-value pair.
// Returns immediately if fn returns true.
func (m *Map[K, V]) Visit(fn func(key K, value V) (stop bool)) {
	for i := 0; i < m.s.len(); i++ {
		s := m.s.at(i)
		if fn(s.key, s.value) {
			break
		}
	}
}

// Drain returns an iterator yielding all entries in map order.
// The map is cleared when the loop over the iterator ends,
// including when the loop is left early.
func (m *Map[K, V]) Drain() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		defer m.Clear()
		for i := 0; i < m.s.len(); i++ {
			s := m.s.at(i)
			if !yield(s.key, s.value) {
				return
			}
		}
	}
}

// Retain removes all entries keep returns false for.
// The remaining entries keep their order.
func (m *Map[K, V]) Retain(keep func(key K, value *V) bool) {
	if m.s.retain(func(s *Slot[K, V]) bool {
		return keep(s.key, &s.value)
	}) > 0 {
		m.mods++
	}
}
