package smallmap

// Slot is a single storage position of a Map holding at most one
// key-value pair. It's exported only to allow declaring backing arrays
// for FromSlots, its fields are not accessible.
type Slot[K comparable, V any] struct {
	key   K
	value V
}

// store is the fixed backing buffer of a Map.
// Occupied slots always form the dense prefix slots[:n],
// slots at n and above are zeroed.
type store[K comparable, V any] struct {
	slots []Slot[K, V]
	n     int
}

func (s *store[K, V]) len() int { return s.n }

func (s *store[K, V]) cap() int { return len(s.slots) }

func (s *store[K, V]) at(i int) *Slot[K, V] { return &s.slots[i] }

// index returns the index of the slot holding key or -1 if there is none.
// This is the only place keys are compared.
func (s *store[K, V]) index(key K) int {
	for i := 0; i < s.n; i++ {
		if s.slots[i].key == key {
			return i
		}
	}
	return -1
}

// push writes the pair into the first empty slot and returns its index.
// The store must not be full.
func (s *store[K, V]) push(key K, value V) int {
	i := s.n
	s.slots[i] = Slot[K, V]{key: key, value: value}
	s.n++
	return i
}

// removeAt vacates slot i shifting all following slots down by one.
func (s *store[K, V]) removeAt(i int) (key K, value V) {
	key, value = s.slots[i].key, s.slots[i].value
	copy(s.slots[i:s.n], s.slots[i+1:s.n])
	s.n--
	s.slots[s.n] = Slot[K, V]{}
	return key, value
}

// retain compacts the store keeping only the slots keep returned true for.
// Returns the number of vacated slots.
func (s *store[K, V]) retain(keep func(*Slot[K, V]) bool) (removed int) {
	w := 0
	for r := 0; r < s.n; r++ {
		if !keep(&s.slots[r]) {
			continue
		}
		if w != r {
			s.slots[w] = s.slots[r]
		}
		w++
	}
	removed = s.n - w
	clear(s.slots[w:s.n])
	s.n = w
	return removed
}

func (s *store[K, V]) truncate() {
	clear(s.slots[:s.n])
	s.n = 0
}
