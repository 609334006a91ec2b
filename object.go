package shared

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// Object is the synchronization core shared by every container: a reentrant
// mutex, an event registry, and the error/debug channel.
//
// Object is embedded by [Cell]. Other types (e.g. managed threads) hold one
// directly and delegate to it.
type Object struct {
	self    any
	mu      *Mutex
	events  Events
	cfg     config
	shared  atomic.Bool
	creator uint64
}

// NewObject creates an Object whose callbacks and hooks receive self.
func NewObject(self any, opts ...Option) *Object {
	cfg := resolveConfig(opts)
	return &Object{
		self:    self,
		mu:      NewMutex(cfg.lockTimeout),
		cfg:     cfg,
		creator: GoroutineID(),
	}
}

// Name returns the diagnostic label configured via [WithName].
func (o *Object) Name() string { return o.cfg.name }

// Mutex exposes the object's mutex, e.g. to check [Mutex.Held].
func (o *Object) Mutex() *Mutex { return o.mu }

// Logger returns the logger the object writes diagnostics to.
func (o *Object) Logger() *Logger {
	if o.cfg.logger != nil {
		return o.cfg.logger
	}
	return DefaultLogger()
}

// DebugLevel returns the configured verbosity.
func (o *Object) DebugLevel() int { return o.cfg.debug }

// Lock acquires the object's mutex. It is reentrant for the holder and fails
// with a [KindLock] error once the configured timeout elapses.
func (o *Object) Lock() error {
	return o.LockContext(context.Background())
}

// LockContext is [Object.Lock] bounded additionally by ctx.
func (o *Object) LockContext(ctx context.Context) error {
	if err := o.mu.LockContext(ctx); err != nil {
		o.Debug("lock failed", "err", err)
		return err
	}
	return nil
}

// Unlock releases the object's mutex. Calling it without holding the mutex
// returns a [KindLock] error, which is also logged as a warning; it is never
// fatal.
func (o *Object) Unlock() error {
	err := o.mu.Unlock()
	if err != nil && allowMisuseLog(o) {
		o.Logger().Warning().
			Str("obj", o.cfg.name).
			Err(err).
			Log("unlock misuse")
	}
	return err
}

// ShareIt promotes the object to cross-goroutine visibility. It is
// idempotent. After promotion, every mutation must go through Lock/Sync or
// the atomic operators.
func (o *Object) ShareIt() {
	if o.shared.CompareAndSwap(false, true) {
		o.Debug("shared")
	}
}

// IsShared reports whether [Object.ShareIt] has been called.
func (o *Object) IsShared() bool { return o.shared.Load() }

// Sync runs fn while holding the object's mutex, releasing it on every exit
// path, including panics. The fault, if any, is returned after release.
//
// When name is non-empty, the events before_<name>, after_<name> and
// error_<name> fire around the critical section (never inside it), receiving
// args; error_<name> receives the fault as its first argument. A panic in fn
// is returned as a [KindRuntime] error wrapping a [*PanicError].
func (o *Object) Sync(name string, fn func() error, args ...any) error {
	if name != "" {
		if err := o.Trigger("before_"+name, args...); err != nil {
			return err
		}
	}

	err := o.Lock()
	if err == nil {
		err = o.critical(name, fn)
	}

	if name != "" {
		if err != nil {
			if hookErr := o.Trigger("error_"+name, append([]any{err}, args...)...); hookErr != nil {
				return errors.Join(err, hookErr)
			}
			return err
		}
		return o.Trigger("after_"+name, args...)
	}
	return err
}

// critical must be called with the mutex held; it always releases it.
func (o *Object) critical(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{
				Kind:    KindRuntime,
				Op:      name,
				Message: "panic in critical section",
				Err:     NewPanicError(r),
			}
		}
		if uerr := o.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()
	return fn()
}

// On registers cb for event, see [Events.On].
func (o *Object) On(event string, cb Callback) {
	o.events.On(event, cb)
}

// Off clears the callbacks for event, see [Events.Off].
func (o *Object) Off(event string) int {
	return o.events.Off(event)
}

// Trigger fires event with the object as self, see [Events.Trigger].
func (o *Object) Trigger(event string, args ...any) error {
	return o.events.Trigger(o.self, event, args...)
}

// Events exposes the object's registry.
func (o *Object) Events() *Events { return &o.events }

// Throw builds a structured fault, reports it to the [WithOnThrow] hook and
// the debug channel, and returns it. The caller decides how to propagate it.
func (o *Object) Throw(kind Kind, op, message string, code int) error {
	e := &Error{Kind: kind, Op: op, Message: message, Code: code}
	return o.raise(e)
}

// ThrowErr is [Object.Throw] carrying an underlying cause.
func (o *Object) ThrowErr(kind Kind, op, message string, cause error) error {
	e := &Error{Kind: kind, Op: op, Message: message, Err: cause}
	return o.raise(e)
}

func (o *Object) raise(e *Error) error {
	if o.cfg.onThrow != nil {
		o.cfg.onThrow(o.self, e)
	}
	o.Debug("throw", "kind", e.Kind.String(), "op", e.Op, "err", e)
	return e
}

// Debug emits a non-fatal diagnostic when the verbosity is at least
// [DebugOn]. kv holds alternating keys and values.
func (o *Object) Debug(msg string, kv ...any) {
	if o.cfg.debug < DebugOn {
		return
	}
	o.emit(o.Logger().Debug(), msg, kv)
}

// Trace emits a diagnostic when the verbosity is at least [DebugTrace].
func (o *Object) Trace(msg string, kv ...any) {
	if o.cfg.debug < DebugTrace {
		return
	}
	o.emit(o.Logger().Trace(), msg, kv)
}

func (o *Object) emit(b *logiBuilder, msg string, kv []any) {
	if !b.Enabled() {
		return
	}
	if o.cfg.name != "" {
		b = b.Str("obj", o.cfg.name)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if err, ok := kv[i+1].(error); ok && key == "err" {
			b = b.Err(err)
			continue
		}
		b = b.Field(key, kv[i+1])
	}
	b.Log(msg)
}

// Try runs fn, reporting a failure (an error, or a panic converted to a
// [KindRuntime] error) to the [WithOnError] hook before returning it
// unchanged. Try observes faults; it never suppresses them.
func (o *Object) Try(name string, fn func() error, args ...any) error {
	err := o.guard(name, fn)
	if err == nil {
		return nil
	}
	o.Report(err, name, args)
	return err
}

// Report routes err to the [WithOnError] hook and the debug channel.
func (o *Object) Report(err error, op string, args []any) {
	if o.cfg.onError != nil {
		o.cfg.onError(o.self, err, op, args)
	}
	o.Debug("error", "op", op, "err", err)
}

// HasErrorHandler reports whether a [WithOnError] hook is configured.
func (o *Object) HasErrorHandler() bool { return o.cfg.onError != nil }

func (o *Object) guard(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{
				Kind:    KindRuntime,
				Op:      name,
				Message: "panic",
				Err:     NewPanicError(r),
			}
		}
	}()
	return fn()
}

// checkShared emits a diagnostic when an unshared object is mutated from a
// goroutine other than its creator. The access is not prevented.
func (o *Object) checkShared(op string) {
	if o.cfg.debug < DebugOn || o.shared.Load() {
		return
	}
	if gid := GoroutineID(); gid != o.creator {
		o.Debug("mutation of unshared object from foreign goroutine", "op", op, "goroutine", gid)
	}
}
