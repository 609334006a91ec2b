package thread

// Status is the lifecycle state of a managed thread.
//
// State machine:
//
//	StatusCreated  → StatusRunning                  [Start]
//	StatusRunning  → StatusStopping                 [Stop]
//	StatusRunning  → StatusFinished | StatusError   [worker returns / faults]
//	StatusStopping → StatusStopped | StatusError    [worker returns / faults]
//	StatusRunning | StatusStopping → StatusDetached [Detach, auto_detach]
//	StatusStopped | StatusFinished | StatusError → StatusRunning [Start again]
//
// StatusDetached is irreversible. Status stays queryable after termination.
type Status int32

const (
	// StatusCreated indicates the thread has been registered but never started.
	StatusCreated Status = iota
	// StatusRunning indicates the worker body is executing.
	StatusRunning
	// StatusStopping indicates cancellation was requested; the worker has not
	// yet observed it.
	StatusStopping
	// StatusStopped indicates the worker returned after a stop request.
	StatusStopped
	// StatusFinished indicates the worker returned on its own.
	StatusFinished
	// StatusError indicates the worker returned an error or panicked.
	StatusError
	// StatusDetached indicates the thread was detached; join and stop are no
	// longer possible and no result can be retrieved.
	StatusDetached
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	case StatusFinished:
		return "finished"
	case StatusError:
		return "error"
	case StatusDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether join/stop semantics treat s as final.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusStopped, StatusFinished, StatusError, StatusDetached:
		return true
	default:
		return false
	}
}

// IsActive reports whether s is Running or Stopping.
func (s Status) IsActive() bool {
	return s == StatusRunning || s == StatusStopping
}

// canStart reports whether Start may transition from s.
func (s Status) canStart() bool {
	switch s {
	case StatusCreated, StatusStopped, StatusFinished, StatusError:
		return true
	default:
		return false
	}
}
