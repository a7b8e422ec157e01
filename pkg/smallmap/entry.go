package smallmap

// Entry is a view of a single key of a map that is either occupied
// or vacant. It's resolved once by Map.Entry and never rescans the map.
// An entry is valid until the map is structurally modified through
// any path other than the entry itself, using a stale entry panics
// with ErrStaleEntry.
type Entry[K comparable, V any] struct {
	m     *Map[K, V]
	key   K
	index int // -1 if vacant
	mods  uint64
}

// OccupiedEntry is an entry of an existing key.
type OccupiedEntry[K comparable, V any] struct{ e Entry[K, V] }

// VacantEntry is an entry of a key that doesn't exist yet.
type VacantEntry[K comparable, V any] struct{ e Entry[K, V] }

// Entry resolves the entry of key.
func (m *Map[K, V]) Entry(key K) Entry[K, V] {
	return Entry[K, V]{
		m:     m,
		key:   key,
		index: m.s.index(key),
		mods:  m.mods,
	}
}

func (e Entry[K, V]) check() {
	if !e.Valid() {
		panic(ErrStaleEntry)
	}
}

// Valid returns false if the map was structurally modified after the
// entry was resolved, in which case using the entry panics.
func (e Entry[K, V]) Valid() bool {
	return e.m != nil && e.m.mods == e.mods
}

func (e Entry[K, V]) slot() *Slot[K, V] {
	e.check()
	return e.m.s.at(e.index)
}

// Key returns the stored key if the entry is occupied,
// otherwise returns the key the entry was resolved for.
func (e Entry[K, V]) Key() K {
	if e.index > -1 {
		return e.slot().key
	}
	return e.key
}

// IsOccupied returns true if the key exists.
func (e Entry[K, V]) IsOccupied() bool { return e.index > -1 }

// Occupied returns the occupied entry and true if the key exists.
func (e Entry[K, V]) Occupied() (OccupiedEntry[K, V], bool) {
	if e.index < 0 {
		return OccupiedEntry[K, V]{}, false
	}
	return OccupiedEntry[K, V]{e}, true
}

// Vacant returns the vacant entry and true if the key doesn't exist.
func (e Entry[K, V]) Vacant() (VacantEntry[K, V], bool) {
	if e.index > -1 {
		return VacantEntry[K, V]{}, false
	}
	return VacantEntry[K, V]{e}, true
}

// OrInsert inserts value if the entry is vacant and returns
// a pointer to the value of the entry.
// Returns ErrCapacityExceeded if the entry is vacant and the map is full.
func (e Entry[K, V]) OrInsert(value V) (*V, error) {
	if e.index > -1 {
		return &e.slot().value, nil
	}
	return VacantEntry[K, V]{e}.Insert(value)
}

// OrInsertWith is like OrInsert but calls fn to create the value.
// fn isn't called if the entry is occupied or the map is full.
func (e Entry[K, V]) OrInsertWith(fn func() V) (*V, error) {
	return e.OrInsertWithKey(func(K) V { return fn() })
}

// OrInsertWithKey is like OrInsertWith but passes the key to fn.
func (e Entry[K, V]) OrInsertWithKey(fn func(key K) V) (*V, error) {
	if e.index > -1 {
		return &e.slot().value, nil
	}
	e.check()
	if e.m.IsFull() {
		return nil, ErrCapacityExceeded
	}
	return VacantEntry[K, V]{e}.Insert(fn(e.key))
}

// OrZero inserts the zero value if the entry is vacant.
func (e Entry[K, V]) OrZero() (*V, error) {
	var zero V
	return e.OrInsert(zero)
}

// AndModify calls fn with a pointer to the value if the entry is occupied.
func (e Entry[K, V]) AndModify(fn func(value *V)) Entry[K, V] {
	if e.index > -1 {
		fn(&e.slot().value)
	}
	return e
}

// InsertEntry sets the value of the entry and returns it as occupied.
// Returns ErrCapacityExceeded if the entry is vacant and the map is full.
func (e Entry[K, V]) InsertEntry(value V) (OccupiedEntry[K, V], error) {
	if o, ok := e.Occupied(); ok {
		o.Insert(value)
		return o, nil
	}
	return VacantEntry[K, V]{e}.InsertEntry(value)
}

// Valid is like Entry.Valid.
func (o OccupiedEntry[K, V]) Valid() bool { return o.e.Valid() }

// Key returns the stored key.
func (o OccupiedEntry[K, V]) Key() K { return o.e.slot().key }

// Get returns the value.
func (o OccupiedEntry[K, V]) Get() V { return o.e.slot().value }

// GetMut returns a pointer to the value.
func (o OccupiedEntry[K, V]) GetMut() *V { return &o.e.slot().value }

// Insert replaces the value and returns a pointer to it.
func (o OccupiedEntry[K, V]) Insert(value V) *V {
	p := &o.e.slot().value
	*p = value
	return p
}

// Replace is like Insert but also returns the previous value.
func (o OccupiedEntry[K, V]) Replace(value V) (previous V, p *V) {
	p = &o.e.slot().value
	previous, *p = *p, value
	return previous, p
}

// ReplaceEntry replaces both the stored key with the key the entry
// was resolved for and the value, and returns the previous pair.
func (o OccupiedEntry[K, V]) ReplaceEntry(value V) (K, V) {
	s := o.e.slot()
	k, v := s.key, s.value
	s.key, s.value = o.e.key, value
	return k, v
}

// ReplaceKey replaces the stored key with the key the entry
// was resolved for and returns the previous key.
func (o OccupiedEntry[K, V]) ReplaceKey() K {
	s := o.e.slot()
	k := s.key
	s.key = o.e.key
	return k
}

// Remove removes the entry from the map and returns its value.
func (o OccupiedEntry[K, V]) Remove() V {
	_, v := o.RemoveEntry()
	return v
}

// RemoveEntry removes the entry from the map and returns its key and value.
func (o OccupiedEntry[K, V]) RemoveEntry() (K, V) {
	o.e.check()
	return o.e.m.removeAt(o.e.index)
}

// Valid is like Entry.Valid.
func (v VacantEntry[K, V]) Valid() bool { return v.e.Valid() }

// Key returns the key the entry was resolved for.
func (v VacantEntry[K, V]) Key() K { return v.e.key }

// Remaining returns the number of new keys the map can still accept.
func (v VacantEntry[K, V]) Remaining() int { return v.e.m.Remaining() }

// Insert inserts value and returns a pointer to it.
// Returns ErrCapacityExceeded if the map is full.
func (v VacantEntry[K, V]) Insert(value V) (*V, error) {
	o, err := v.InsertEntry(value)
	if err != nil {
		return nil, err
	}
	return &o.e.m.s.at(o.e.index).value, nil
}

// InsertEntry inserts value and returns the now occupied entry.
// Returns ErrCapacityExceeded if the map is full.
func (v VacantEntry[K, V]) InsertEntry(value V) (OccupiedEntry[K, V], error) {
	v.e.check()
	m := v.e.m
	if m.IsFull() {
		return OccupiedEntry[K, V]{}, ErrCapacityExceeded
	}
	i := m.push(v.e.key, value)
	return OccupiedEntry[K, V]{Entry[K, V]{
		m:     m,
		key:   v.e.key,
		index: i,
		mods:  m.mods,
	}}, nil
}
