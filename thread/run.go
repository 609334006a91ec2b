package thread

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// run holds the per-Start state of a managed thread. A fresh run is created
// by every successful Start, so a restarted thread never observes flags or
// results left over from an earlier execution.
type run struct {
	id string

	// done is closed by the trampoline once the run has fully finished
	done chan struct{}

	// detached is closed by Detach, releasing blocked joiners
	detached   chan struct{}
	detachOnce sync.Once

	tid    atomic.Uint64
	alive  atomic.Bool
	stop   atomic.Bool
	killed atomic.Bool

	// written by the trampoline before done is closed
	result any
	err    error
}

func newRun() *run {
	return &run{
		id:       uuid.Must(uuid.NewV7()).String(),
		done:     make(chan struct{}),
		detached: make(chan struct{}),
	}
}

func (rn *run) detach() {
	rn.detachOnce.Do(func() { close(rn.detached) })
}

func (rn *run) isDetached() bool {
	select {
	case <-rn.detached:
		return true
	default:
		return false
	}
}

func (rn *run) finished() bool {
	select {
	case <-rn.done:
		return true
	default:
		return false
	}
}
