package shared

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultLockTimeout bounds [Mutex.Lock] when no timeout is configured.
const DefaultLockTimeout = 30 * time.Second

// Mutex is a reentrant mutex with bounded acquisition.
//
// The goroutine that holds the mutex may lock it again; every Lock must be
// matched by an Unlock before another goroutine can acquire it. Acquisition
// is a send on a one-slot channel, so waiters are not served in FIFO order.
type Mutex struct {
	slot    chan struct{}
	owner   atomic.Uint64
	depth   int // guarded by ownership
	timeout time.Duration
}

// NewMutex creates an unlocked mutex. A timeout of zero or less disables the
// acquisition deadline of [Mutex.Lock].
func NewMutex(timeout time.Duration) *Mutex {
	return &Mutex{
		slot:    make(chan struct{}, 1),
		timeout: timeout,
	}
}

// Lock acquires the mutex, waiting at most the configured timeout.
// Returns a [KindLock] error on timeout.
func (m *Mutex) Lock() error {
	return m.LockContext(context.Background())
}

// LockContext acquires the mutex, giving up when ctx is done or the
// configured timeout elapses, whichever comes first.
func (m *Mutex) LockContext(ctx context.Context) error {
	gid := GoroutineID()
	if m.owner.Load() == gid {
		m.depth++
		return nil
	}

	// fast path, before allocating a timer
	select {
	case m.slot <- struct{}{}:
		m.acquired(gid)
		return nil
	default:
	}

	var deadline <-chan time.Time
	if m.timeout > 0 {
		t := time.NewTimer(m.timeout)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case m.slot <- struct{}{}:
		m.acquired(gid)
		return nil
	case <-deadline:
		return &Error{
			Kind:    KindLock,
			Op:      "lock",
			Message: fmt.Sprintf("not obtained within %s", m.timeout),
		}
	case <-ctx.Done():
		return &Error{
			Kind:    KindLock,
			Op:      "lock",
			Message: "acquisition abandoned",
			Err:     ctx.Err(),
		}
	}
}

// TryLock attempts to acquire the mutex without blocking.
func (m *Mutex) TryLock() bool {
	gid := GoroutineID()
	if m.owner.Load() == gid {
		m.depth++
		return true
	}
	select {
	case m.slot <- struct{}{}:
		m.acquired(gid)
		return true
	default:
		return false
	}
}

func (m *Mutex) acquired(gid uint64) {
	m.owner.Store(gid)
	m.depth = 1
}

// Unlock releases one level of ownership. Calling it from a goroutine that
// does not hold the mutex returns a [KindLock] error and leaves the mutex
// untouched.
func (m *Mutex) Unlock() error {
	gid := GoroutineID()
	if m.owner.Load() != gid {
		return &Error{
			Kind:    KindLock,
			Op:      "unlock",
			Message: "mutex not held by the calling goroutine",
		}
	}
	m.depth--
	if m.depth == 0 {
		m.owner.Store(0)
		<-m.slot
	}
	return nil
}

// Held reports whether the calling goroutine holds the mutex.
func (m *Mutex) Held() bool {
	return m.owner.Load() == GoroutineID()
}

// Locked reports whether any goroutine holds the mutex.
// The value may be stale in concurrent contexts.
func (m *Mutex) Locked() bool {
	return len(m.slot) == 1
}

// Depth returns the reentrancy depth held by the calling goroutine,
// zero if it does not hold the mutex.
func (m *Mutex) Depth() int {
	if !m.Held() {
		return 0
	}
	return m.depth
}
