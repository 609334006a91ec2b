package thread

import (
	"runtime"

	"github.com/baxromumarov/shared"
)

// trampoline is the body of every worker goroutine. A worker fault is
// captured here exactly once: it is reported through the error hooks and
// recorded as StatusError, never propagated to the goroutine that called
// Start.
func (r *record) trampoline(rn *run, fn Worker, args []any) {
	defer close(rn.done)

	if r.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	rn.tid.Store(shared.GoroutineID())

	result, err := r.exec(fn, args)
	rn.alive.Store(false)

	if err != nil {
		rn.err = err
		fault := &shared.Error{Kind: shared.KindRuntime, Op: "start", Message: "worker failed", Err: err}
		r.quietly("on_error", func() error {
			r.obj.Report(fault, "start", args)
			return nil
		})
		r.quietly("error_start", func() error {
			return r.obj.Trigger("error_start", append([]any{fault}, args...)...)
		})
		r.finish(rn, StatusError)
		return
	}

	rn.result = result
	if rn.stop.Load() {
		r.finish(rn, StatusStopped)
	} else {
		r.finish(rn, StatusFinished)
	}
	r.quietly("after_stop", func() error {
		return r.obj.Trigger("after_stop", result)
	})
}

// exec runs the before_start hooks and the worker with panic recovery.
func (r *record) exec(fn Worker, args []any) (result any, err error) {
	defer func() {
		if v := recover(); v != nil {
			result, err = nil, shared.NewPanicError(v)
		}
	}()
	if err := r.obj.Trigger("before_start", args...); err != nil {
		return nil, err
	}
	return fn(r.self, args...)
}

// finish records the terminal status of rn. A detached run keeps
// StatusDetached; a stop request turns a clean exit into StatusStopped.
func (r *record) finish(rn *run, status Status) {
	_, err := r.status.Update(func(cur Status) Status {
		switch {
		case cur == StatusDetached:
			return cur
		case status == StatusFinished && cur == StatusStopping:
			return StatusStopped
		default:
			return status
		}
	})
	if err != nil {
		r.obj.Debug("failed to record status", "run_id", rn.id, "err", err)
		return
	}
	r.obj.Debug("finished", "run_id", rn.id, "status", r.status.Load().String())
}

// quietly runs a hook on the worker goroutine. Its failure or panic is
// logged and otherwise ignored.
func (r *record) quietly(hook string, fn func() error) {
	defer func() {
		if v := recover(); v != nil {
			r.obj.Debug("hook panicked", "hook", hook, "err", shared.NewPanicError(v))
		}
	}()
	if err := fn(); err != nil {
		r.obj.Debug("hook failed", "hook", hook, "err", err)
	}
}
