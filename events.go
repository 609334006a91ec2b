package shared

import (
	"fmt"
	"sync"
)

// Callback is a named-event handler. self is the object the event was
// triggered on; args are the trigger arguments.
type Callback func(self any, args ...any) error

// Events is an ordered registry of named callbacks.
//
// Callbacks fire synchronously on the triggering goroutine, in registration
// order. The registry has its own lock, distinct from any cell mutex, and it
// is never held while callbacks run, so a callback may re-enter the object
// (or register further callbacks) without deadlocking.
//
// The zero value is ready to use.
type Events struct {
	mu       sync.RWMutex
	handlers map[string][]Callback
}

// On appends cb to the list for event. Duplicate registrations are kept and
// all fire. A nil cb is ignored.
func (e *Events) On(event string, cb Callback) {
	if cb == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handlers == nil {
		e.handlers = make(map[string][]Callback)
	}
	e.handlers[event] = append(e.handlers[event], cb)
}

// Off removes every callback registered for event, returning how many were
// removed. Registries never shrink on their own.
func (e *Events) Off(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.handlers[event])
	delete(e.handlers, event)
	return n
}

// Count returns the number of callbacks registered for event.
func (e *Events) Count(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[event])
}

// Trigger invokes the callbacks registered for event, in order. The first
// callback error stops the remaining callbacks and is returned, wrapped with
// the event name. Panics in callbacks propagate to the caller.
func (e *Events) Trigger(self any, event string, args ...any) error {
	e.mu.RLock()
	list := e.handlers[event]
	e.mu.RUnlock()

	// list is append-only from the registry's point of view; Off replaces the
	// map entry rather than truncating, so iterating the snapshot is safe
	for i, cb := range list {
		if err := cb(self, args...); err != nil {
			return fmt.Errorf("shared: %s callback #%d: %w", event, i, err)
		}
	}
	return nil
}
