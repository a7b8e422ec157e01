package smallmap_test

import (
	"errors"
	"iter"
	"math/rand"
	"testing"

	"github.com/graph-guard/smallmap/pkg/smallmap"
	"github.com/graph-guard/smallmap/pkg/testeq"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

func TestNew(t *testing.T) {
	m := smallmap.New[string, int](4)
	require.Equal(t, 4, m.Capacity())
	require.Equal(t, 4, m.Remaining())
	require.Zero(t, m.Len())
	require.True(t, m.IsEmpty())
	require.False(t, m.IsFull())
}

func TestNewNegativeCapacity(t *testing.T) {
	require.Panics(t, func() { smallmap.New[string, int](-1) })
}

func TestDefault(t *testing.T) {
	m := smallmap.Default[string, int]()
	require.Equal(t, smallmap.DefaultCapacity, m.Capacity())
	require.Equal(t, 16, m.Capacity())
}

func TestZeroValue(t *testing.T) {
	var m smallmap.Map[string, int]
	require.Equal(t, smallmap.DefaultCapacity, m.Capacity())
	require.True(t, m.IsEmpty())

	v, ok := m.Get("a")
	require.False(t, ok)
	require.Zero(t, v)
	require.Nil(t, m.GetMut("a"))
	m.Delete("a")
	m.Clear()

	require.NoError(t, m.Set("a", 1))
	HasVal(t, &m, "a", 1)
	require.Equal(t, smallmap.DefaultCapacity, m.Capacity())
	require.Equal(t, smallmap.DefaultCapacity-1, m.Remaining())
}

func TestZeroCapacity(t *testing.T) {
	m := smallmap.New[string, int](0)
	require.True(t, m.IsFull())
	_, _, err := m.Insert("a", 1)
	require.ErrorIs(t, err, smallmap.ErrCapacityExceeded)
	_, err = m.Entry("a").OrInsert(1)
	require.ErrorIs(t, err, smallmap.ErrCapacityExceeded)
	Expect[string, int](t, m, nil, nil)
}

func TestFromSlots(t *testing.T) {
	var buf [3]smallmap.Slot[string, int]
	m := smallmap.FromSlots(buf[:])
	require.Equal(t, 3, m.Capacity())

	for i, k := range []string{"a", "b", "c"} {
		require.NoError(t, m.Set(k, i))
	}
	require.ErrorIs(t, m.Set("d", 3), smallmap.ErrCapacityExceeded)
	Expect(t, m, []string{"a", "b", "c"}, []int{0, 1, 2})
}

func TestFromSlotsResetsBuffer(t *testing.T) {
	var buf [2]smallmap.Slot[string, int]
	a := smallmap.FromSlots(buf[:])
	require.NoError(t, a.Set("a", 1))

	b := smallmap.FromSlots(buf[:])
	Expect[string, int](t, b, nil, nil)
}

func TestInsert(t *testing.T) {
	m := smallmap.New[string, int](4)

	prev, replaced, err := m.Insert("a", 1)
	require.NoError(t, err)
	require.False(t, replaced)
	require.Zero(t, prev)

	prev, replaced, err = m.Insert("a", 2)
	require.NoError(t, err)
	require.True(t, replaced)
	require.Equal(t, 1, prev)

	Expect(t, m, []string{"a"}, []int{2})
}

func TestInsertSamePairTwice(t *testing.T) {
	m := smallmap.New[string, int](4)
	_, _, err := m.Insert("a", 1)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())

	prev, replaced, err := m.Insert("a", 1)
	require.NoError(t, err)
	require.True(t, replaced)
	require.Equal(t, 1, prev)
	require.Equal(t, 1, m.Len())
}

func TestInsertFull(t *testing.T) {
	m := smallmap.New[string, int](4)
	for i, k := range []string{"a", "b", "c", "d"} {
		_, replaced, err := m.Insert(k, i+1)
		require.NoError(t, err)
		require.False(t, replaced)
	}
	require.True(t, m.IsFull())

	prev, replaced, err := m.Insert("e", 5)
	require.ErrorIs(t, err, smallmap.ErrCapacityExceeded)
	require.False(t, replaced)
	require.Zero(t, prev)

	require.Equal(t, 4, m.Len())
	require.False(t, m.ContainsKey("e"))
	Expect(t, m, []string{"a", "b", "c", "d"}, []int{1, 2, 3, 4})

	// Replacing existing keys still works on a full map.
	prev, replaced, err = m.Insert("c", 30)
	require.NoError(t, err)
	require.True(t, replaced)
	require.Equal(t, 3, prev)
	Expect(t, m, []string{"a", "b", "c", "d"}, []int{1, 2, 30, 4})
}

func TestMustInsert(t *testing.T) {
	m := smallmap.New[string, int](1)
	prev, replaced := m.MustInsert("a", 1)
	require.False(t, replaced)
	require.Zero(t, prev)

	prev, replaced = m.MustInsert("a", 2)
	require.True(t, replaced)
	require.Equal(t, 1, prev)

	require.PanicsWithError(t,
		"smallmap: inserting b: capacity exceeded",
		func() { m.MustInsert("b", 3) },
	)
	Expect(t, m, []string{"a"}, []int{2})
}

func TestGet(t *testing.T) {
	m := smallmap.New[string, int](4)
	require.NoError(t, m.Set("a", 2))
	require.NoError(t, m.Set("b", 3))

	HasVal(t, m, "b", 3)

	v, ok := m.Get("nonexistent")
	require.False(t, ok)
	require.Zero(t, v)
}

func TestGetKeyValue(t *testing.T) {
	m := smallmap.New[string, int](4)
	require.NoError(t, m.Set("a", 1))

	k, v, ok := m.GetKeyValue("a")
	require.True(t, ok)
	require.Equal(t, "a", k)
	require.Equal(t, 1, v)

	k, v, ok = m.GetKeyValue("b")
	require.False(t, ok)
	require.Zero(t, k)
	require.Zero(t, v)
}

func TestGetMut(t *testing.T) {
	m := smallmap.New[string, int](4)
	require.NoError(t, m.Set("a", 1))

	p := m.GetMut("a")
	require.NotNil(t, p)
	*p = 10
	HasVal(t, m, "a", 10)

	require.Nil(t, m.GetMut("b"))
}

func TestContainsKey(t *testing.T) {
	m := smallmap.New[string, int](4)
	require.False(t, m.ContainsKey("a"))
	require.NoError(t, m.Set("a", 1))
	require.True(t, m.ContainsKey("a"))
	m.Delete("a")
	require.False(t, m.ContainsKey("a"))
}

func TestRemove(t *testing.T) {
	m := smallmap.New[string, int](4)
	for i, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, m.Set(k, i+1))
	}

	v, ok := m.Remove("b")
	require.True(t, ok)
	require.Equal(t, 2, v)
	Expect(t, m, []string{"a", "c", "d"}, []int{1, 3, 4})

	v, ok = m.Get("b")
	require.False(t, ok)
	require.Zero(t, v)

	v, ok = m.Remove("b")
	require.False(t, ok)
	require.Zero(t, v)

	// The freed slot is reusable and new keys are appended.
	require.NoError(t, m.Set("e", 5))
	Expect(t, m, []string{"a", "c", "d", "e"}, []int{1, 3, 4, 5})
}

func TestRemoveEntry(t *testing.T) {
	m := smallmap.New[string, int](4)
	require.NoError(t, m.Set("a", 1))

	k, v, ok := m.RemoveEntry("a")
	require.True(t, ok)
	require.Equal(t, "a", k)
	require.Equal(t, 1, v)
	require.True(t, m.IsEmpty())

	_, _, ok = m.RemoveEntry("a")
	require.False(t, ok)
}

func TestDelete(t *testing.T) {
	m := smallmap.New[string, int](4)
	require.NoError(t, m.Set("a", 1))
	require.NoError(t, m.Set("b", 2))
	require.NoError(t, m.Set("c", 3))

	m.Delete("a")
	Expect(t, m, []string{"b", "c"}, []int{2, 3})
	m.Delete("c")
	Expect(t, m, []string{"b"}, []int{2})
	m.Delete("b")
	Expect[string, int](t, m, nil, nil)

	m.Delete("a")
	m.Delete("b")
	Expect[string, int](t, m, nil, nil)
}

func TestClear(t *testing.T) {
	m := smallmap.New[string, int](3)
	for i, k := range []string{"a", "b", "c"} {
		require.NoError(t, m.Set(k, i))
	}
	m.Clear()
	require.True(t, m.IsEmpty())
	require.Equal(t, 3, m.Capacity())
	for _, k := range []string{"a", "b", "c"} {
		require.False(t, m.ContainsKey(k))
	}

	for i, k := range []string{"x", "y", "z"} {
		require.NoError(t, m.Set(k, i))
	}
	Expect(t, m, []string{"x", "y", "z"}, []int{0, 1, 2})

	m.Reset()
	require.True(t, m.IsEmpty())
}

func TestExtend(t *testing.T) {
	m := smallmap.New[string, int](3)
	n, err := m.Extend(seq(
		smallmap.Pair[string, int]{Key: "a", Value: 1},
		smallmap.Pair[string, int]{Key: "b", Value: 2},
		smallmap.Pair[string, int]{Key: "a", Value: 3},
		smallmap.Pair[string, int]{Key: "c", Value: 4},
		smallmap.Pair[string, int]{Key: "d", Value: 5},
		smallmap.Pair[string, int]{Key: "b", Value: 6},
	))
	require.ErrorIs(t, err, smallmap.ErrCapacityExceeded)
	require.Equal(t, 4, n)
	// Stops at the first failure, "b" isn't updated.
	Expect(t, m, []string{"a", "b", "c"}, []int{3, 2, 4})
}

func TestExtendPairs(t *testing.T) {
	m := smallmap.New[string, int](3)
	n, err := m.ExtendPairs(
		smallmap.Pair[string, int]{Key: "a", Value: 1},
		smallmap.Pair[string, int]{Key: "b", Value: 2},
	)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	Expect(t, m, []string{"a", "b"}, []int{1, 2})
}

func TestFrom(t *testing.T) {
	m, err := smallmap.From(2,
		smallmap.Pair[string, int]{Key: "a", Value: 1},
		smallmap.Pair[string, int]{Key: "b", Value: 2},
		smallmap.Pair[string, int]{Key: "a", Value: 3},
	)
	require.NoError(t, err)
	require.Equal(t, 2, m.Capacity())
	Expect(t, m, []string{"a", "b"}, []int{3, 2})

	m, err = smallmap.From(2,
		smallmap.Pair[string, int]{Key: "a", Value: 1},
		smallmap.Pair[string, int]{Key: "b", Value: 2},
		smallmap.Pair[string, int]{Key: "c", Value: 3},
	)
	require.ErrorIs(t, err, smallmap.ErrCapacityExceeded)
	require.Nil(t, m)
}

func TestCollect(t *testing.T) {
	src := smallmap.New[string, int](4)
	require.NoError(t, src.Set("a", 1))
	require.NoError(t, src.Set("b", 2))

	m, err := smallmap.Collect(8, src.All())
	require.NoError(t, err)
	require.Equal(t, 8, m.Capacity())
	Expect(t, m, []string{"a", "b"}, []int{1, 2})

	m, err = smallmap.Collect(1, src.All())
	require.ErrorIs(t, err, smallmap.ErrCapacityExceeded)
	require.Nil(t, m)
}

func TestClone(t *testing.T) {
	m := smallmap.New[string, int](4)
	require.NoError(t, m.Set("a", 1))
	require.NoError(t, m.Set("b", 2))

	c := m.Clone()
	require.Equal(t, m.Capacity(), c.Capacity())
	require.True(t, smallmap.Equal(m, c))

	require.NoError(t, c.Set("a", 10))
	require.NoError(t, c.Set("c", 3))
	Expect(t, m, []string{"a", "b"}, []int{1, 2})
	Expect(t, c, []string{"a", "b", "c"}, []int{10, 2, 3})

	var z smallmap.Map[string, int]
	zc := z.Clone()
	require.Equal(t, smallmap.DefaultCapacity, zc.Capacity())
	require.True(t, zc.IsEmpty())
}

func TestEqualFunc(t *testing.T) {
	a := smallmap.New[string, []int](2)
	b := smallmap.New[string, []int](4)
	eq := func(a, b []int) bool { return slices.Equal(a, b) }
	require.True(t, a.EqualFunc(b, eq))

	require.NoError(t, a.Set("x", []int{1}))
	require.NoError(t, a.Set("y", []int{2, 3}))
	require.False(t, a.EqualFunc(b, eq))

	// Order and capacity don't matter.
	require.NoError(t, b.Set("y", []int{2, 3}))
	require.NoError(t, b.Set("x", []int{1}))
	require.True(t, a.EqualFunc(b, eq))
	require.True(t, b.EqualFunc(a, eq))

	require.NoError(t, b.Set("x", []int{9}))
	require.False(t, a.EqualFunc(b, eq))
}

type point struct{ x, y int }

func TestEqual(t *testing.T) {
	a := smallmap.New[string, point](4)
	b := smallmap.New[string, point](2)
	require.NoError(t, a.Set("a", point{1, 2}))
	require.NoError(t, b.Set("a", point{1, 2}))

	require.NotPanics(t, func() {
		require.True(t, smallmap.Equal(a, b))
	})

	require.NoError(t, b.Set("a", point{2, 1}))
	require.False(t, smallmap.Equal(a, b))

	require.NoError(t, b.Set("b", point{1, 2}))
	require.NoError(t, b.Set("a", point{1, 2}))
	require.False(t, smallmap.Equal(a, b))
	require.False(t, smallmap.Equal(b, a))
}

func TestToMap(t *testing.T) {
	var m smallmap.Map[string, int]
	require.Equal(t, map[string]int{}, m.ToMap())

	require.NoError(t, m.Set("a", 1))
	require.NoError(t, m.Set("b", 2))
	r := m.ToMap()
	require.Equal(t, map[string]int{"a": 1, "b": 2}, r)

	// The result doesn't alias the map.
	r["a"] = 10
	HasVal(t, &m, "a", 1)
}

func TestString(t *testing.T) {
	m := smallmap.New[string, int](4)
	require.Equal(t, "map[]", m.String())
	require.NoError(t, m.Set("b", 2))
	require.NoError(t, m.Set("a", 1))
	require.Equal(t, "map[b:2 a:1]", m.String())
}

func TestFootprint(t *testing.T) {
	require.Equal(t, uintptr(64), smallmap.New[int64, int64](4).Footprint())
	require.Equal(t, uintptr(0), smallmap.New[int64, int64](0).Footprint())
}

func TestTryInsert(t *testing.T) {
	m := smallmap.New[string, int](2)

	p, err := m.TryInsert("a", 1)
	require.NoError(t, err)
	require.Equal(t, 1, *p)
	*p = 2
	HasVal(t, m, "a", 2)

	p, err = m.TryInsert("a", 3)
	require.Nil(t, p)
	require.ErrorIs(t, err, smallmap.ErrDuplicateKey)
	require.Equal(t,
		"failed to insert 3, key a already exists with value 2",
		err.Error(),
	)
	Expect(t, m, []string{"a"}, []int{2})

	var oe *smallmap.OccupiedError[string, int]
	require.True(t, errors.As(err, &oe))
	require.Equal(t, 3, oe.Value)
	require.Equal(t, "a", oe.Entry.Key())
	require.Equal(t, 2, oe.Entry.Get())

	// The caller decides to merge.
	*oe.Entry.GetMut() += oe.Value
	HasVal(t, m, "a", 5)
}

func TestTryInsertFull(t *testing.T) {
	m := smallmap.New[string, int](1)
	_, err := m.TryInsert("a", 1)
	require.NoError(t, err)

	p, err := m.TryInsert("b", 2)
	require.Nil(t, p)
	require.ErrorIs(t, err, smallmap.ErrCapacityExceeded)

	// A present key on a full map is reported as duplicate.
	_, err = m.TryInsert("a", 2)
	require.ErrorIs(t, err, smallmap.ErrDuplicateKey)
	require.NotErrorIs(t, err, smallmap.ErrCapacityExceeded)
	Expect(t, m, []string{"a"}, []int{1})
}

func TestLenInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for capacity := 0; capacity <= 8; capacity++ {
		m := smallmap.New[int, int](capacity)
		present := map[int]int{}
		for i := 0; i < 512; i++ {
			k, v := r.Intn(12), r.Int()
			switch r.Intn(3) {
			case 0, 1:
				_, _, err := m.Insert(k, v)
				if _, ok := present[k]; ok || len(present) < capacity {
					require.NoError(t, err)
					present[k] = v
				} else {
					require.ErrorIs(t, err, smallmap.ErrCapacityExceeded)
				}
			case 2:
				_, ok := m.Remove(k)
				_, expected := present[k]
				require.Equal(t, expected, ok)
				delete(present, k)
			}
			require.LessOrEqual(t, m.Len(), m.Capacity())
			require.Equal(t, len(present), m.Len())
		}
		testeq.Entries(t, "key", present, m.All())
	}
}

func Expect[K comparable, V any](
	t *testing.T,
	m *smallmap.Map[K, V],
	keys []K,
	values []V,
) {
	t.Helper()
	require.Equal(t, len(keys), m.Len())
	var actualKeys []K
	var actualValues []V
	for k, v := range m.All() {
		actualKeys = append(actualKeys, k)
		actualValues = append(actualValues, v)
	}
	require.Equal(t, keys, actualKeys)
	require.Equal(t, values, actualValues)
}

func HasVal[K comparable, V any](
	t *testing.T,
	m *smallmap.Map[K, V],
	key K,
	expectedValue V,
) {
	t.Helper()
	v, ok := m.Get(key)
	require.True(t, ok)
	require.Equal(t, expectedValue, v)
}

func seq[K comparable, V any](pairs ...smallmap.Pair[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, p := range pairs {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}
