package smallmap

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when a new key is inserted
	// into a map that already holds Capacity entries.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrDuplicateKey is matched by *OccupiedError.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrAliasingViolation is matched by *AliasingError.
	ErrAliasingViolation = errors.New("aliasing violation")

	// ErrStaleEntry is the panic value raised when an entry is used
	// after its map was structurally modified through another path.
	ErrStaleEntry = errors.New("smallmap: entry used after map modification")
)

// OccupiedError is returned by TryInsert when the key is already present.
// It carries the rejected value and the entry holding the existing value.
type OccupiedError[K comparable, V any] struct {
	// Entry is the occupied entry of the key.
	Entry OccupiedEntry[K, V]
	// Value is the value that was not inserted.
	Value V

	key      K
	existing V
}

func (e *OccupiedError[K, V]) Error() string {
	return fmt.Sprintf(
		"failed to insert %v, key %v already exists with value %v",
		e.Value, e.key, e.existing,
	)
}

func (e *OccupiedError[K, V]) Is(target error) bool {
	return target == ErrDuplicateKey
}

// AliasingError is returned by GetDisjointMut and GetDisjointMutInto
// when the requested keys can't be resolved to pairwise distinct entries.
type AliasingError struct {
	// Position is the index of the offending key in the request.
	Position int
	// Conflict is the index of the earlier key resolving to the same entry,
	// or -1 if the key at Position isn't in the map.
	Conflict int
}

// Absent returns true if the error was caused by a missing key.
func (e *AliasingError) Absent() bool { return e.Conflict < 0 }

func (e *AliasingError) Error() string {
	if e.Absent() {
		return fmt.Sprintf(
			"aliasing violation: key at position %d not found",
			e.Position,
		)
	}
	return fmt.Sprintf(
		"aliasing violation: keys at positions %d and %d refer to the same entry",
		e.Conflict, e.Position,
	)
}

func (e *AliasingError) Is(target error) bool {
	return target == ErrAliasingViolation
}
