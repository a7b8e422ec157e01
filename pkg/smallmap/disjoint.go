package smallmap

import "github.com/yourbasic/bit"

// GetDisjointMut returns pointers to the values of all keys
// in the order of keys.
// If any key doesn't exist or two keys refer to the same entry
// no pointers are returned and *AliasingError is returned instead.
func (m *Map[K, V]) GetDisjointMut(keys ...K) ([]*V, error) {
	dst := make([]*V, len(keys))
	if err := m.GetDisjointMutInto(dst, keys...); err != nil {
		return nil, err
	}
	return dst, nil
}

// GetDisjointMutInto is like GetDisjointMut but writes the pointers
// into dst which must be at least as long as keys.
// dst remains untouched on failure.
func (m *Map[K, V]) GetDisjointMutInto(dst []*V, keys ...K) error {
	if len(dst) < len(keys) {
		panic("smallmap: destination shorter than keys")
	}

	// Resolve all keys and prove that no slot is requested twice
	// before issuing any pointer.
	seen := bit.New()
	for p := range keys {
		i := m.s.index(keys[p])
		if i < 0 {
			return &AliasingError{Position: p, Conflict: -1}
		}
		if seen.Contains(i) {
			return &AliasingError{Position: p, Conflict: m.firstOf(keys[:p], i)}
		}
		seen.Add(i)
	}

	for p := range keys {
		dst[p] = &m.s.at(m.s.index(keys[p])).value
	}
	return nil
}

// firstOf returns the position of the first key in keys resolving to slot i.
func (m *Map[K, V]) firstOf(keys []K, i int) int {
	for p := range keys {
		if m.s.index(keys[p]) == i {
			return p
		}
	}
	return -1
}
