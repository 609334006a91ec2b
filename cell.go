package shared

import (
	"context"
	"maps"
	"reflect"
	"slices"
	"sync/atomic"
)

// Cell is one synchronized unit of mutable state: a value of type T, a
// defined flag, and the [Object] core (mutex, events, error channel).
//
// Every mutation (Set, Apply, the atomic operators) runs under exactly one
// acquisition of the cell's mutex and is linearizable with every [Object.Sync]
// on the same cell. Cross-cell operations are never atomic as a group.
//
// Load, Defined and the coercions (String, HashCode, ...) read the last
// committed snapshot without locking; they may be stale by the time the
// caller acts on them. A committed map or slice is never written again:
// Apply works on a copy of the top-level container. Values handed to Set,
// and values returned by Get or Load, must be treated as read-only. Any
// read-modify-write must go through Sync, Apply or an atomic operator.
type Cell[T any] struct {
	*Object
	value   T
	defined bool
	// snap is replaced on every committed write; waiters block on its changed
	// channel, which is closed once it is superseded
	snap atomic.Pointer[snapshot[T]]
}

type snapshot[T any] struct {
	value   T
	defined bool
	changed chan struct{}
}

// New creates a defined cell holding v.
func New[T any](v T, opts ...Option) *Cell[T] {
	c := &Cell[T]{value: v, defined: true}
	c.Object = NewObject(c, opts...)
	c.snap.Store(&snapshot[T]{value: v, defined: true, changed: make(chan struct{})})
	return c
}

// Empty creates an undefined cell, see [Cell.TestSet].
func Empty[T any](opts ...Option) *Cell[T] {
	c := &Cell[T]{}
	c.Object = NewObject(c, opts...)
	c.snap.Store(&snapshot[T]{changed: make(chan struct{})})
	return c
}

// commit must be called with the mutex held.
func (c *Cell[T]) commit(v T, defined bool) {
	c.checkShared("write")
	c.value = v
	c.defined = defined
	prev := c.snap.Swap(&snapshot[T]{value: v, defined: defined, changed: make(chan struct{})})
	close(prev.changed)
}

// Get returns the current value under the cell's mutex.
// The zero value is returned for an undefined cell.
func (c *Cell[T]) Get() (T, error) {
	if err := c.Lock(); err != nil {
		var zero T
		return zero, err
	}
	v := c.value
	return v, c.Unlock()
}

// Lookup is [Cell.Get] also reporting whether the cell is defined.
func (c *Cell[T]) Lookup() (T, bool, error) {
	if err := c.Lock(); err != nil {
		var zero T
		return zero, false, err
	}
	v, ok := c.value, c.defined
	return v, ok, c.Unlock()
}

// Load returns the last committed value without locking.
func (c *Cell[T]) Load() T {
	return c.snap.Load().value
}

// Defined reports, without locking, whether the cell holds a value.
func (c *Cell[T]) Defined() bool {
	return c.snap.Load().defined
}

// Set stores v, firing before_set/after_set/error_set.
func (c *Cell[T]) Set(v T) error {
	return c.Sync("set", func() error {
		c.commit(v, true)
		return nil
	}, v)
}

// Unset clears the cell back to undefined.
func (c *Cell[T]) Unset() error {
	return c.Sync("unset", func() error {
		var zero T
		c.commit(zero, false)
		return nil
	})
}

// Apply runs fn against a copy of the value under the mutex, then commits
// the copy. It is the entry point for container operations (append to a
// slice, write a map key) that are not expressible as a pure update. Maps
// and slices are copied one level deep, so nested containers are still
// shared with earlier snapshots. If fn returns an error the changes made so
// far are committed; if it panics the cell is unchanged.
func (c *Cell[T]) Apply(fn func(v *T) error) error {
	return c.Sync("apply", func() error {
		v := cloneValue(c.value)
		err := fn(&v)
		c.commit(v, true)
		return err
	})
}

// cloneValue returns a shallow copy of a map or slice value, including one
// held in an interface. Other values are returned as they are.
func cloneValue[T any](v T) T {
	switch x := any(v).(type) {
	case map[string]any:
		return any(maps.Clone(x)).(T)
	case []any:
		return any(slices.Clone(x)).(T)
	case nil:
		return v
	}

	src := reflect.ValueOf(v)
	var dst reflect.Value
	switch src.Kind() {
	case reflect.Map:
		if src.IsNil() {
			return v
		}
		dst = reflect.MakeMapWithSize(src.Type(), src.Len())
		for it := src.MapRange(); it.Next(); {
			dst.SetMapIndex(it.Key(), it.Value())
		}
	case reflect.Slice:
		if src.IsNil() {
			return v
		}
		dst = reflect.MakeSlice(src.Type(), src.Len(), src.Cap())
		reflect.Copy(dst, src)
	default:
		return v
	}
	return dst.Interface().(T)
}

// WaitFor blocks until pred holds for the cell's value, or ctx is done.
// It is the cell's condition variable: every committed write wakes waiters.
func (c *Cell[T]) WaitFor(ctx context.Context, pred func(v T, defined bool) bool) (T, error) {
	for {
		s := c.snap.Load()
		if pred(s.value, s.defined) {
			return s.value, nil
		}
		select {
		case <-s.changed:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Changed returns a channel closed on the next committed write.
func (c *Cell[T]) Changed() <-chan struct{} {
	return c.snap.Load().changed
}
