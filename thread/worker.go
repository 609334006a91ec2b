package thread

import (
	"fmt"
	"runtime"
	"time"

	"github.com/baxromumarov/shared"
)

// ShouldStop reports whether cancellation was requested for the current
// run. It never blocks. Workers poll it to honor [Thread.Stop]; any
// goroutine may read it.
func (t *Thread) ShouldStop() bool {
	rn := t.rec.run.Load()
	return rn != nil && rn.stop.Load()
}

// Sleep blocks the worker for d. The wait is not interrupted by a stop
// request, so cancellation latency is bounded by the longest single sleep.
// Calling it from any goroutine other than the worker fails with a
// [shared.KindInvalidOperation] error.
func (t *Thread) Sleep(d time.Duration) error {
	if err := t.onWorker("sleep"); err != nil {
		return err
	}
	time.Sleep(d)
	return nil
}

// USleep is [Thread.Sleep] taking nanoseconds.
func (t *Thread) USleep(ns int64) error {
	if err := t.onWorker("usleep"); err != nil {
		return err
	}
	time.Sleep(time.Duration(ns))
	return nil
}

// Yield lets other goroutines run. Worker only, like [Thread.Sleep].
func (t *Thread) Yield() error {
	if err := t.onWorker("yield"); err != nil {
		return err
	}
	runtime.Gosched()
	return nil
}

func (t *Thread) onWorker(op string) error {
	rn := t.rec.run.Load()
	if rn != nil && rn.alive.Load() && rn.tid.Load() == shared.GoroutineID() {
		return nil
	}
	return t.Throw(shared.KindInvalidOperation, op, fmt.Sprintf("%s may only be called by the worker of %s", op, t.rec), 0)
}
