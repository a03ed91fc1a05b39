// Package assemble folds denormalized join rows, one (parent, child) pair per
// row, into a lookup from parent key to parent where every parent owns the
// set of its children.
package assemble

import (
	"fmt"
	"maps"

	"github.com/coderi421/ormsample/internal/errs"
)

// ErrNullParentKey 父记录的 key 是 NULL，这种行没法分组
var ErrNullParentKey = errs.ErrNullParentKey

// Parent is the left side of a join row. It owns a set of children of type C.
type Parent[K comparable, C any] interface {
	// GroupKey returns the grouping key. ok is false when the key column
	// was NULL, which includes a nil receiver. The zero value of K is a
	// valid key.
	GroupKey() (key K, ok bool)
	// Adopt points child back at the receiver and adds it to the receiver's
	// child set, initializing the set on first use. Children are a set: a
	// child whose key is already present is not added, but its back
	// reference is still set.
	Adopt(child C)
}

// Child is the right side of a join row. An outer join yields rows without
// a child, Present reports false for those. A nil pointer child must be safe
// to call Present on.
type Child interface {
	Present() bool
}

// Pair is one decoded join row.
type Pair[P any, C any] struct {
	Parent P
	Child  C
}

// Grouping is the accumulator threaded through one assembly pass.
// It is not safe for concurrent use; every pass gets its own Grouping.
type Grouping[K comparable, P Parent[K, C], C Child] struct {
	parents map[K]P
	// keys 记录第一次出现的顺序，只用于按查询顺序输出
	keys []K
}

func NewGrouping[K comparable, P Parent[K, C], C Child]() *Grouping[K, P, C] {
	return &Grouping[K, P, C]{
		parents: make(map[K]P, 16),
	}
}

// Add folds one row into the grouping and returns the canonical parent for
// the row's key. The first parent seen for a key is canonical; later parents
// with the same key are dropped without merging their fields.
func (g *Grouping[K, P, C]) Add(parent P, child C) (P, error) {
	key, ok := parent.GroupKey()
	if !ok {
		var zero P
		return zero, ErrNullParentKey
	}

	canonical, ok := g.parents[key]
	if !ok {
		canonical = parent
		g.parents[key] = parent
		g.keys = append(g.keys, key)
	}

	if child.Present() {
		canonical.Adopt(child)
	}
	return canonical, nil
}

// Get returns the canonical parent for key.
func (g *Grouping[K, P, C]) Get(key K) (P, bool) {
	p, ok := g.parents[key]
	return p, ok
}

func (g *Grouping[K, P, C]) Len() int {
	return len(g.parents)
}

// Map returns the grouping map. The map is a copy, the parents are not.
func (g *Grouping[K, P, C]) Map() map[K]P {
	return maps.Clone(g.parents)
}

// Parents returns the canonical parents in the order their keys were first seen.
func (g *Grouping[K, P, C]) Parents() []P {
	res := make([]P, 0, len(g.keys))
	for _, k := range g.keys {
		res = append(res, g.parents[k])
	}
	return res
}

// Assemble runs one assembly pass over pairs.
func Assemble[K comparable, P Parent[K, C], C Child](pairs []Pair[P, C]) (map[K]P, error) {
	g := NewGrouping[K, P, C]()
	for i, pair := range pairs {
		if _, err := g.Add(pair.Parent, pair.Child); err != nil {
			return nil, fmt.Errorf("assemble: row %d: %w", i, err)
		}
	}
	return g.Map(), nil
}
