package shared

import (
	"fmt"
	"runtime"
)

// PanicError is a recovered panic, as captured by [Object.Sync],
// [Object.Try], [Cell.Update] and the thread trampoline. It is always
// wrapped in a [KindRuntime] [*Error], and is only built once every lock the
// panicking goroutine held inside the critical section has been released.
type PanicError struct {
	Value any

	// Goroutine is the [GoroutineID] that panicked. For a managed thread it
	// matches the thread's TID.
	Goroutine uint64

	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v [goroutine %d]\n\n%s", e.Value, e.Goroutine, e.Stack)
}

// Unwrap exposes an error panic value to [errors.Is] and [errors.As].
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// NewPanicError must be called from the deferred function that recovered v,
// so that the captured stack still contains the panicking frames.
func NewPanicError(v any) *PanicError {
	buf := make([]byte, 8<<10)
	buf = buf[:runtime.Stack(buf, false)]
	return &PanicError{
		Value:     v,
		Goroutine: GoroutineID(),
		Stack:     string(buf),
	}
}
