// Package testeq provides test helpers comparing the contents of
// map-like containers and sequences with readable error messages.
package testeq

import (
	"iter"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Writer is implemented by *testing.T and *testing.B.
type Writer interface {
	Helper()
	Errorf(fmt string, v ...any)
}

// Entries compares the key-value pairs yielded by actual against expected
// regardless of order. Values are compared using go-cmp.
// Keys yielded more than once are reported as duplicates.
func Entries[K constraints.Ordered, V any](
	w Writer,
	title string,
	expected map[K]V,
	actual iter.Seq2[K, V],
) (ok bool) {
	w.Helper()
	ok = true

	act := map[K]V{}
	var actKeys []K
	for k, v := range actual {
		if _, dup := act[k]; dup {
			w.Errorf("duplicate %s %v", title, k)
			ok = false
			continue
		}
		act[k] = v
		actKeys = append(actKeys, k)
	}
	slices.Sort(actKeys)

	expKeys := make([]K, 0, len(expected))
	for k := range expected {
		expKeys = append(expKeys, k)
	}
	slices.Sort(expKeys)

	for _, k := range expKeys {
		ev := expected[k]
		av, found := act[k]
		if !found {
			w.Errorf("missing %s %v (%v)", title, k, ev)
			ok = false
			continue
		}
		if !cmp.Equal(ev, av) {
			w.Errorf(
				"mismatching %s %v: expected %v, got %v",
				title, k, ev, av,
			)
			ok = false
		}
	}

	for _, k := range actKeys {
		if _, found := expected[k]; !found {
			w.Errorf("unexpected %s %v (%v)", title, k, act[k])
			ok = false
		}
	}

	return ok
}

// Order compares the items yielded by actual against expected
// including their order.
func Order[T comparable](
	w Writer,
	title string,
	expected []T,
	actual iter.Seq[T],
) (ok bool) {
	w.Helper()
	ok = true

	var act []T
	for a := range actual {
		act = append(act, a)
	}

	for i := 0; i < len(act) && i < len(expected); i++ {
		if act[i] != expected[i] {
			w.Errorf(
				"mismatching %s at index %d: expected %v, got %v",
				title, i, expected[i], act[i],
			)
			ok = false
		}
	}
	for i := len(expected); i < len(act); i++ {
		w.Errorf("unexpected %s at index %d (%v)", title, i, act[i])
		ok = false
	}
	for i := len(act); i < len(expected); i++ {
		w.Errorf("missing %s at index %d (%v)", title, i, expected[i])
		ok = false
	}
	return ok
}
