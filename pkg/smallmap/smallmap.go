// Package smallmap provides a map with a fixed capacity whose entries live
// in a single buffer allocated at construction (or supplied by the caller)
// that never grows. Lookups are linear scans comparing keys with ==
// which for small maps (up to around 32 entries) is faster than hashing.
//
// Entries are kept in insertion order. Removing an entry shifts all
// following entries down by one position so that the remaining entries
// keep their relative order.
//
// Inserting a new key into a full map fails with ErrCapacityExceeded
// and leaves the map unchanged.
//
// Pointers returned by GetMut, the entry API, the mutable iterators and
// GetDisjointMut point into the map's buffer and remain valid until the
// next structural modification (an insertion of a new key, a removal or
// a reset) after which they may refer to a different entry.
//
// A Map isn't safe for concurrent use.
package smallmap

import (
	"fmt"
	"iter"
	"strings"
	"unsafe"
)

// DefaultCapacity is the capacity of maps created by Default
// and of the zero value.
const DefaultCapacity = 16

// Pair is a key-value pair.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is a fixed capacity map.
// The zero value is an empty map of DefaultCapacity
// which allocates its buffer on the first insertion.
type Map[K comparable, V any] struct {
	s store[K, V]

	// mods counts structural modifications to detect stale entries.
	mods  uint64
	ready bool
}

// New creates a new map with a fixed capacity.
func New[K comparable, V any](capacity int) *Map[K, V] {
	if capacity < 0 {
		panic("smallmap: negative capacity")
	}
	return &Map[K, V]{
		s:     store[K, V]{slots: make([]Slot[K, V], capacity)},
		ready: true,
	}
}

// Default creates a new map of DefaultCapacity.
func Default[K comparable, V any]() *Map[K, V] {
	return New[K, V](DefaultCapacity)
}

// FromSlots creates a new map backed by slots.
// The capacity of the map is len(slots).
// The map takes ownership of slots which are reset before use
// and must not be accessed by the caller afterwards.
func FromSlots[K comparable, V any](slots []Slot[K, V]) *Map[K, V] {
	slots = slots[:len(slots):len(slots)]
	clear(slots)
	return &Map[K, V]{
		s:     store[K, V]{slots: slots},
		ready: true,
	}
}

// From creates a new map of the given capacity holding pairs.
// Later pairs overwrite earlier pairs with the same key.
// Returns ErrCapacityExceeded if pairs contain more distinct keys
// than capacity.
func From[K comparable, V any](
	capacity int,
	pairs ...Pair[K, V],
) (*Map[K, V], error) {
	m := New[K, V](capacity)
	if _, err := m.ExtendPairs(pairs...); err != nil {
		return nil, err
	}
	return m, nil
}

// Collect creates a new map of the given capacity from seq.
// Same rules as for From apply.
func Collect[K comparable, V any](
	capacity int,
	seq iter.Seq2[K, V],
) (*Map[K, V], error) {
	m := New[K, V](capacity)
	if _, err := m.Extend(seq); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map[K, V]) init() {
	if !m.ready {
		m.s.slots = make([]Slot[K, V], DefaultCapacity)
		m.ready = true
	}
}

func (m *Map[K, V]) push(key K, value V) int {
	m.init()
	m.mods++
	return m.s.push(key, value)
}

func (m *Map[K, V]) removeAt(i int) (K, V) {
	m.mods++
	return m.s.removeAt(i)
}

// Len returns the number of stored key-value pairs.
func (m *Map[K, V]) Len() int { return m.s.len() }

// IsEmpty returns true if the map holds no entries.
func (m *Map[K, V]) IsEmpty() bool { return m.s.len() == 0 }

// Capacity returns the maximum number of entries the map can hold.
func (m *Map[K, V]) Capacity() int {
	if !m.ready {
		return DefaultCapacity
	}
	return m.s.cap()
}

// Remaining returns the number of new keys the map can still accept.
func (m *Map[K, V]) Remaining() int { return m.Capacity() - m.s.len() }

// IsFull returns true if no new keys can be inserted.
func (m *Map[K, V]) IsFull() bool { return m.s.len() >= m.Capacity() }

// Footprint returns the size of the map's buffer in bytes.
func (m *Map[K, V]) Footprint() uintptr {
	return uintptr(m.Capacity()) * unsafe.Sizeof(Slot[K, V]{})
}

// Insert associates key with value.
// If key already exists its value is replaced and the previous value
// is returned with replaced = true.
// Returns ErrCapacityExceeded if key doesn't exist and the map is full,
// in which case the map remains unchanged.
func (m *Map[K, V]) Insert(key K, value V) (
	previous V,
	replaced bool,
	err error,
) {
	if i := m.s.index(key); i > -1 {
		s := m.s.at(i)
		previous, s.value = s.value, value
		return previous, true, nil
	}
	if m.IsFull() {
		return previous, false, ErrCapacityExceeded
	}
	m.push(key, value)
	return previous, false, nil
}

// MustInsert is like Insert but panics if the map is full.
func (m *Map[K, V]) MustInsert(key K, value V) (previous V, replaced bool) {
	previous, replaced, err := m.Insert(key, value)
	if err != nil {
		panic(fmt.Errorf("smallmap: inserting %v: %w", key, err))
	}
	return previous, replaced
}

// Set associates key with value overwriting any existing association.
func (m *Map[K, V]) Set(key K, value V) error {
	_, _, err := m.Insert(key, value)
	return err
}

// TryInsert inserts value if key doesn't exist yet and returns
// a pointer to the stored value.
// If key already exists the map remains unchanged and *OccupiedError
// is returned carrying value and the existing entry.
// Returns ErrCapacityExceeded if key doesn't exist and the map is full.
func (m *Map[K, V]) TryInsert(key K, value V) (*V, error) {
	e := m.Entry(key)
	if o, ok := e.Occupied(); ok {
		s := m.s.at(o.e.index)
		return nil, &OccupiedError[K, V]{
			Entry:    o,
			Value:    value,
			key:      s.key,
			existing: s.value,
		}
	}
	return VacantEntry[K, V]{e}.Insert(value)
}

// Get returns (value, true) if key exists,
// otherwise returns (zeroValue, false).
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if i := m.s.index(key); i > -1 {
		return m.s.at(i).value, true
	}
	return value, false
}

// GetKeyValue returns the stored key and its value if key exists.
func (m *Map[K, V]) GetKeyValue(key K) (k K, v V, ok bool) {
	if i := m.s.index(key); i > -1 {
		s := m.s.at(i)
		return s.key, s.value, true
	}
	return k, v, false
}

// GetMut returns a pointer to the value of key or nil if key doesn't exist.
func (m *Map[K, V]) GetMut(key K) *V {
	if i := m.s.index(key); i > -1 {
		return &m.s.at(i).value
	}
	return nil
}

// ContainsKey returns true if key exists.
func (m *Map[K, V]) ContainsKey(key K) bool { return m.s.index(key) > -1 }

// Remove removes key and returns its value.
// Returns (zeroValue, false) if key doesn't exist.
func (m *Map[K, V]) Remove(key K) (value V, ok bool) {
	_, value, ok = m.RemoveEntry(key)
	return value, ok
}

// RemoveEntry removes key and returns the stored key and its value.
func (m *Map[K, V]) RemoveEntry(key K) (k K, v V, ok bool) {
	i := m.s.index(key)
	if i < 0 {
		return k, v, false
	}
	k, v = m.removeAt(i)
	return k, v, true
}

// Delete removes key. Noop if key doesn't exist.
func (m *Map[K, V]) Delete(key K) { m.Remove(key) }

// Clear removes all entries. The capacity remains unchanged.
func (m *Map[K, V]) Clear() {
	if m.s.len() > 0 {
		m.mods++
		m.s.truncate()
	}
}

// Reset is an alias for Clear.
func (m *Map[K, V]) Reset() { m.Clear() }

// Extend inserts all pairs of seq in order.
// It stops at the first pair that can't be inserted returning the
// number of pairs inserted before it and ErrCapacityExceeded.
// Pairs inserted before the failure remain in the map.
func (m *Map[K, V]) Extend(seq iter.Seq2[K, V]) (n int, err error) {
	for k, v := range seq {
		if _, _, err = m.Insert(k, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ExtendPairs is like Extend but takes a list of pairs.
func (m *Map[K, V]) ExtendPairs(pairs ...Pair[K, V]) (n int, err error) {
	for i := range pairs {
		if _, _, err = m.Insert(pairs[i].Key, pairs[i].Value); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Clone returns a copy of the map with its own buffer of equal capacity.
func (m *Map[K, V]) Clone() *Map[K, V] {
	if !m.ready {
		return &Map[K, V]{}
	}
	c := New[K, V](m.s.cap())
	c.s.n = copy(c.s.slots, m.s.slots[:m.s.n])
	return c
}

// EqualFunc returns true if both maps hold the same keys and eq
// returns true for the values of every key, regardless of order and
// capacity.
func (m *Map[K, V]) EqualFunc(o *Map[K, V], eq func(a, b V) bool) bool {
	if m.s.len() != o.s.len() {
		return false
	}
	for i := 0; i < m.s.n; i++ {
		s := m.s.at(i)
		v, ok := o.Get(s.key)
		if !ok || !eq(s.value, v) {
			return false
		}
	}
	return true
}

// Equal is like EqualFunc comparing values with ==.
func Equal[K, V comparable](a, b *Map[K, V]) bool {
	return a.EqualFunc(b, func(x, y V) bool { return x == y })
}

// ToMap returns a native map holding all entries of m.
func (m *Map[K, V]) ToMap() map[K]V {
	r := make(map[K]V, m.s.len())
	for i := 0; i < m.s.n; i++ {
		s := m.s.at(i)
		r[s.key] = s.value
	}
	return r
}

// String formats the map like fmt formats native maps
// with entries in map order.
func (m *Map[K, V]) String() string {
	var b strings.Builder
	b.WriteString("map[")
	for i := 0; i < m.s.n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		s := m.s.at(i)
		fmt.Fprintf(&b, "%v:%v", s.key, s.value)
	}
	b.WriteByte(']')
	return b.String()
}
