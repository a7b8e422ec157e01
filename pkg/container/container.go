// Package container defines the common interface of the key-value
// containers in this module which allows testing and benchmarking
// them against each other.
package container

import (
	"github.com/graph-guard/smallmap/pkg/container/gomap"
	"github.com/graph-guard/smallmap/pkg/container/linked"
	"github.com/graph-guard/smallmap/pkg/smallmap"
)

type Mapper[K comparable, V any] interface {
	// Set associates key with value.
	// Returns an error if the key can't be stored.
	Set(key K, value V) error
	Get(key K) (value V, ok bool)
	Reset()
	Len() int
	Delete(key K)

	// Visit calls fn for every stored pair until fn returns true.
	Visit(fn func(key K, value V) (stop bool))
}

var (
	_ Mapper[string, int] = (*smallmap.Map[string, int])(nil)
	_ Mapper[string, int] = (*gomap.Gomap[string, int])(nil)
	_ Mapper[string, int] = (*linked.Linked[string, int])(nil)
)
