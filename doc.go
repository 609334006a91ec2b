// Package shared provides synchronized state cells for sharing mutable values
// safely between goroutines.
//
// A [Cell] owns one value plus a reentrant, timeout-bounded [Mutex]. Wrap any
// typed container in a Cell (or embed an [Object]) and it becomes safe to
// share:
//
//	counter := shared.New[int](0)
//	counter.ShareIt()
//
//	prev, err := counter.FetchAdd(1)
//
// # Lock/Sync Engine
//
// [Object.Lock] and [Object.Unlock] bracket manual critical sections; the
// mutex is reentrant for the holding goroutine and acquisition fails with a
// [KindLock] error after the timeout configured via [WithLockTimeout]
// (default [DefaultLockTimeout]). [Object.Sync] is the scoped form: the
// mutex is released on every exit path, including panics, and the fault is
// returned to the caller after release.
//
// Unlocking from a goroutine that does not hold the mutex returns a
// [KindLock] error and logs a rate-limited warning. It never panics.
//
// # Atomic Operators
//
// [Cell.CompareAndSwap], [Cell.FetchAdd], [Cell.FetchStore],
// [Cell.TestSet] and [Cell.Update] each run under exactly one acquisition of
// the cell's mutex, so they are totally ordered with one another and with
// every Sync block on the same cell. There are no multi-cell transactions:
// callers needing joint consistency across cells must hold an outer lock of
// their own.
//
// [Cell.Load] and [Cell.Defined] read the last committed write without
// locking. They are suitable for observation only.
//
// # Events
//
// Every object carries an ordered registry of named callbacks ([Object.On],
// [Object.Trigger]). Sync fires before_<name>, after_<name> and
// error_<name> around the critical section, never inside it, so a callback
// may re-enter the same object.
//
// # Errors and Diagnostics
//
// All faults are [*Error] values classified by [Kind] and matched with
// [errors.Is] against [ErrValidation], [ErrLock], [ErrTimeout],
// [ErrInvalidOperation], [ErrRuntime] and [ErrType]. [Object.Throw] raises a
// structured fault through the [WithOnThrow] hook, [Object.Try] reports a
// failure through [WithOnError] and returns it unchanged, and
// [Object.Debug] emits diagnostics gated by [WithDebug].
//
// Diagnostics are written with logiface, using the stumpy JSON backend by
// default (see [NewLogger] and [SetDefaultLogger]).
//
// # Explicit Coercions
//
// Cells never convert implicitly. Use [Cell.String], [Cell.Number],
// [Cell.Truthy], [Cell.Equals], [Cell.Compare] and [Cell.HashCode].
//
// # Managed Threads
//
// The [github.com/baxromumarov/shared/thread] subpackage builds a
// start/stop/detach/join lifecycle on top of these cells.
package shared
