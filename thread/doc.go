// Package thread manages named worker goroutines whose state lives in
// shared cells.
//
// A managed thread is identified by a (namespace, name) pair in a
// [Registry]. It owns a bundle of [shared.Cell] components (scalar, array,
// hash, code, io, ext) that the worker and any number of controllers read
// and write concurrently, using the same Lock/Sync/atomic vocabulary as any
// other cell:
//
//	t, err := thread.New("demo", "counter",
//		thread.WithScalar(0),
//		thread.WithCode(func(t *thread.Thread, _ ...any) (any, error) {
//			for i := 0; i < 50 && !t.ShouldStop(); i++ {
//				if _, err := t.Scalar().FetchAdd(1); err != nil {
//					return nil, err
//				}
//				_ = t.Sleep(time.Millisecond)
//			}
//			return t.Scalar().Get()
//		}),
//	)
//	if err != nil {
//		return err
//	}
//	if err := t.Start(); err != nil {
//		return err
//	}
//	result, err := t.Join(5 * time.Second)
//
// # Lifecycle
//
// [Thread.Start] spawns a goroutine running the worker stored in the code
// component. Cancellation is cooperative: [Thread.Stop] sets a flag that the
// worker polls with [Thread.ShouldStop], then waits for it to return. Sleeps
// are never interrupted, so stop latency is bounded by the worker's longest
// single sleep; Stop reports a [shared.KindTimeout] error if its own
// deadline passes first.
//
// A worker error or panic is captured by the thread, reported to the
// [WithOnError] hook and reflected as [StatusError]. It never reaches the
// goroutine that called Start; [Thread.Join] returns it wrapped in a
// [shared.KindRuntime] error.
//
// [Thread.Detach] is a one-way transition: afterwards only [Thread.Status]
// remains meaningful.
//
// # Registry
//
// [Default] is the process-wide registry, created at package
// initialization. [Registry.Shutdown] is its explicit teardown.
package thread
