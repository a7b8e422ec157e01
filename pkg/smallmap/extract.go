package smallmap

import "iter"

// Extractor is a single pass cursor removing the entries
// its predicate returns true for.
//
// An entry is removed at the moment it's returned by Next.
// Entries the predicate returns false for remain in the map in their
// original order. Abandoning the cursor before it's exhausted leaves all
// entries it hasn't visited yet in the map, matching or not.
type Extractor[K comparable, V any] struct {
	m    *Map[K, V]
	pred func(K, *V) bool
	next int
	done bool
}

// ExtractIf returns a cursor extracting all entries pred returns true for.
// pred may modify the value regardless of whether it's extracted.
func (m *Map[K, V]) ExtractIf(
	pred func(key K, value *V) bool,
) *Extractor[K, V] {
	return &Extractor[K, V]{m: m, pred: pred}
}

// Next removes and returns the next matching entry and true,
// or returns false if there are no more matching entries.
func (x *Extractor[K, V]) Next() (key K, value V, ok bool) {
	if x.done {
		return key, value, false
	}
	for x.next < x.m.s.len() {
		s := x.m.s.at(x.next)
		if x.pred(s.key, &s.value) {
			// The following entry moves into x.next.
			key, value = x.m.removeAt(x.next)
			return key, value, true
		}
		x.next++
	}
	x.done = true
	return key, value, false
}

// All returns an iterator over the remaining matching entries.
// Leaving the loop early is equal to abandoning the cursor.
func (x *Extractor[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for {
			k, v, ok := x.Next()
			if !ok || !yield(k, v) {
				return
			}
		}
	}
}
