package thread

import (
	"context"
	"fmt"
	"time"

	"github.com/baxromumarov/shared"
)

// Start spawns a new run of the worker stored in the code component,
// passing it args. It fails with a [shared.KindInvalidOperation] error when
// the thread is running, stopping or detached, or when no worker is set.
// A thread that has stopped, finished or failed may be started again.
//
// after_start fires on the caller once the goroutine is spawned. With
// [WithAutoDetach] the run is detached before Start returns.
func (t *Thread) Start(args ...any) error {
	r := t.rec
	var rn *run
	err := t.Sync("", func() error {
		cur := r.status.Load()
		if !cur.canStart() {
			return t.Throw(shared.KindInvalidOperation, "start", fmt.Sprintf("thread %s is %s", r, cur), 0)
		}
		fn, err := r.code.Get()
		if err != nil {
			return err
		}
		if fn == nil {
			return t.Throw(shared.KindInvalidOperation, "start", fmt.Sprintf("thread %s has no worker code", r), 0)
		}

		rn = newRun()
		rn.alive.Store(true)
		next := StatusRunning
		if r.autoDetach {
			next = StatusDetached
			rn.detach()
		}
		if err := r.status.Set(next); err != nil {
			return err
		}
		r.run.Store(rn)

		go r.trampoline(rn, fn, args)
		return nil
	})
	if err != nil {
		return err
	}

	t.Debug("started", "run_id", rn.id, "auto_detach", r.autoDetach)
	if err := t.Trigger("after_start", args...); err != nil {
		return err
	}
	if r.autoDetach {
		return t.Trigger("after_detach")
	}
	return nil
}

// Stop requests cooperative cancellation and waits up to timeout for the
// worker to return (timeout <= 0 waits indefinitely). The on_kill hook runs
// once per run, on the caller. At the deadline Stop fails with a
// [shared.KindTimeout] error; the worker keeps running.
//
// Stopping a detached or never-started thread fails with a
// [shared.KindInvalidOperation] error. Stopping a thread whose run already
// ended returns nil.
func (t *Thread) Stop(timeout time.Duration) error {
	ctx, cancel := deadline(timeout)
	defer cancel()
	return t.StopContext(ctx)
}

// StopContext is [Thread.Stop] bounded by ctx instead of a timeout.
func (t *Thread) StopContext(ctx context.Context) error {
	r := t.rec
	var (
		rn        *run
		requested bool
	)
	err := t.Sync("", func() error {
		cur := r.status.Load()
		rn = r.run.Load()
		switch {
		case cur == StatusDetached:
			return t.Throw(shared.KindInvalidOperation, "stop", fmt.Sprintf("thread %s is detached", r), 0)
		case rn == nil:
			return t.Throw(shared.KindInvalidOperation, "stop", fmt.Sprintf("thread %s was never started", r), 0)
		case cur == StatusRunning:
			rn.stop.Store(true)
			// the worker may have returned since the status was read
			swapped, err := r.status.CompareAndSwap(StatusRunning, StatusStopping)
			if err != nil {
				return err
			}
			requested = swapped
		}
		return nil
	})
	if err != nil {
		return err
	}

	if requested {
		t.Debug("stop requested", "run_id", rn.id)
		if err := t.Trigger("before_stop"); err != nil {
			return err
		}
	}
	if r.onKill != nil && rn.killed.CompareAndSwap(false, true) && !rn.finished() {
		r.onKill(r.self)
	}

	select {
	case <-rn.done:
		return nil
	case <-rn.detached:
		return t.Throw(shared.KindInvalidOperation, "stop", fmt.Sprintf("thread %s was detached while stopping", r), 0)
	case <-ctx.Done():
		return t.ThrowErr(shared.KindTimeout, "stop", fmt.Sprintf("thread %s did not stop in time", r), ctx.Err())
	}
}

// Detach moves a running or stopping thread to [StatusDetached]. The
// transition is irreversible: the worker keeps running, but Stop and Join
// fail from then on and no result can be retrieved. Detaching a thread in
// any other state fails with a [shared.KindInvalidOperation] error.
func (t *Thread) Detach() error {
	r := t.rec
	err := t.Sync("", func() error {
		cur := r.status.Load()
		if cur.IsActive() {
			swapped, err := r.status.CompareAndSwap(cur, StatusDetached)
			if err != nil {
				return err
			}
			if swapped {
				r.run.Load().detach()
				return nil
			}
			cur = r.status.Load()
		}
		return t.Throw(shared.KindInvalidOperation, "detach", fmt.Sprintf("thread %s is %s", r, cur), 0)
	})
	if err != nil {
		return err
	}
	t.Debug("detached", "run_id", t.RunID())
	return t.Trigger("after_detach")
}

// Join waits up to timeout for the current run to end (timeout <= 0 waits
// indefinitely) and returns the worker's result. If the worker failed, Join
// returns a [shared.KindRuntime] error wrapping the fault. At the deadline
// it fails with a [shared.KindTimeout] error.
//
// Joining a detached or never-started thread fails with a
// [shared.KindInvalidOperation] error.
func (t *Thread) Join(timeout time.Duration) (any, error) {
	ctx, cancel := deadline(timeout)
	defer cancel()
	return t.JoinContext(ctx)
}

// JoinContext is [Thread.Join] bounded by ctx instead of a timeout.
func (t *Thread) JoinContext(ctx context.Context) (any, error) {
	r := t.rec
	rn := r.run.Load()
	switch {
	case t.Status() == StatusDetached:
		return nil, t.Throw(shared.KindInvalidOperation, "join", fmt.Sprintf("thread %s is detached", r), 0)
	case rn == nil:
		return nil, t.Throw(shared.KindInvalidOperation, "join", fmt.Sprintf("thread %s was never started", r), 0)
	}

	select {
	case <-rn.done:
	case <-rn.detached:
	case <-ctx.Done():
		return nil, t.ThrowErr(shared.KindTimeout, "join", fmt.Sprintf("thread %s did not finish in time", r), ctx.Err())
	}
	if rn.isDetached() {
		return nil, t.Throw(shared.KindInvalidOperation, "join", fmt.Sprintf("thread %s was detached", r), 0)
	}

	if rn.err != nil {
		return nil, &shared.Error{Kind: shared.KindRuntime, Op: "join", Message: fmt.Sprintf("thread %s failed", r), Err: rn.err}
	}
	if err := t.Trigger("after_join", rn.result); err != nil {
		return rn.result, err
	}
	return rn.result, nil
}

func deadline(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}
