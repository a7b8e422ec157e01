// Package linked provides an insertion ordered container.Mapper
// implementation backed by a linked hash map for benchmark reference
// and as an order model in conformance tests.
package linked

import "github.com/emirpasic/gods/maps/linkedhashmap"

type Linked[K comparable, V any] struct {
	m *linkedhashmap.Map
}

func New[K comparable, V any]() *Linked[K, V] {
	return &Linked[K, V]{m: linkedhashmap.New()}
}

// Set never fails. Overwriting an existing key keeps its position.
func (m *Linked[K, V]) Set(key K, value V) error {
	m.m.Put(key, value)
	return nil
}

func (m *Linked[K, V]) Delete(key K) { m.m.Remove(key) }

func (m *Linked[K, V]) Get(key K) (v V, ok bool) {
	x, ok := m.m.Get(key)
	if !ok {
		return v, false
	}
	return x.(V), true
}

func (m *Linked[K, V]) Reset() { m.m.Clear() }

func (m *Linked[K, V]) Len() int { return m.m.Size() }

// Visit visits all pairs in insertion order.
func (m *Linked[K, V]) Visit(fn func(key K, value V) (stop bool)) {
	for it := m.m.Iterator(); it.Next(); {
		if fn(it.Key().(K), it.Value().(V)) {
			break
		}
	}
}
