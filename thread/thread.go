package thread

import (
	"cmp"
	"fmt"
	"io"
	"reflect"
	"sync/atomic"

	"github.com/baxromumarov/shared"
	"github.com/cespare/xxhash/v2"
)

// Component names accepted by [Thread.Get], [Thread.Set] and [Value].
const (
	Scalar = "scalar"
	Array  = "array"
	Hash   = "hash"
	Code   = "code"
	IO     = "io"
	Ext    = "ext"
)

// record is the single owned state of one (namespace, name) pair. Every
// [Thread] handle for the pair points at the same record.
type record struct {
	namespace string
	name      string

	// self is the canonical handle, passed to workers and hooks
	self *Thread
	obj  *shared.Object

	scalar *shared.Cell[any]
	array  *shared.Cell[[]any]
	hash   *shared.Cell[map[string]any]
	code   *shared.Cell[Worker]
	io     *shared.Cell[io.ReadWriter]
	ext    *shared.Cell[map[string]any]
	status *shared.Cell[Status]

	onKill       func(t *Thread)
	autoDetach   bool
	lockOSThread bool

	run atomic.Pointer[run]
}

func newRecord(namespace, name string, cfg config) *record {
	r := &record{
		namespace:    namespace,
		name:         name,
		onKill:       cfg.onKill,
		autoDetach:   cfg.autoDetach,
		lockOSThread: cfg.lockOSThread,
	}
	r.self = &Thread{rec: r}

	label := namespace + "::" + name
	objOpts := append([]shared.Option{shared.WithName(label)}, cfg.object...)
	if cfg.onError != nil {
		onError := cfg.onError
		objOpts = append(objOpts, shared.WithOnError(func(self any, err error, op string, args []any) {
			onError(self.(*Thread), err, op, args)
		}))
	}
	r.obj = shared.NewObject(r.self, objOpts...)
	r.self.Object = r.obj

	cellOpts := func(component string) []shared.Option {
		return append([]shared.Option{shared.WithName(label + "." + component)}, cfg.object...)
	}

	if cfg.hasScalar {
		r.scalar = shared.New[any](cfg.scalar, cellOpts(Scalar)...)
	} else {
		r.scalar = shared.Empty[any](cellOpts(Scalar)...)
	}

	array := cfg.array
	if array == nil {
		array = []any{}
	}
	r.array = shared.New(array, cellOpts(Array)...)

	hash := cfg.hash
	if hash == nil {
		hash = map[string]any{}
	}
	r.hash = shared.New(hash, cellOpts(Hash)...)

	if cfg.code != nil {
		r.code = shared.New(cfg.code, cellOpts(Code)...)
	} else {
		r.code = shared.Empty[Worker](cellOpts(Code)...)
	}

	if cfg.io != nil {
		r.io = shared.New(cfg.io, cellOpts(IO)...)
	} else {
		r.io = shared.Empty[io.ReadWriter](cellOpts(IO)...)
	}

	r.ext = shared.New(map[string]any{}, cellOpts(Ext)...)
	r.status = shared.New(StatusCreated, cellOpts("status")...)

	// components are reached from the worker and from every handle
	for _, c := range []shared.Container{r.scalar, r.array, r.hash, r.code, r.io, r.ext, r.status} {
		c.ShareIt()
	}
	return r
}

func (r *record) String() string {
	return r.namespace + "::" + r.name
}

// Thread is a handle to a managed thread: a named bundle of shared component
// cells plus a worker lifecycle. Handles obtained for the same (namespace,
// name) pair from the same [Registry] observe the same live state.
//
// The embedded [shared.Object] provides On, Trigger, Throw, Debug, Try, Lock,
// Unlock, Sync and ShareIt for the thread itself. Lifecycle events
// (before_start, after_start, after_stop, error_start, before_stop,
// after_detach, after_join) are fired on it.
type Thread struct {
	*shared.Object
	rec *record
}

// Namespace returns the first half of the thread's identity.
func (t *Thread) Namespace() string { return t.rec.namespace }

// Name returns the second half of the thread's identity.
func (t *Thread) Name() string { return t.rec.name }

// String returns "namespace::name".
func (t *Thread) String() string { return t.rec.String() }

// Scalar returns the scalar component cell.
func (t *Thread) Scalar() *shared.Cell[any] { return t.rec.scalar }

// Array returns the array component cell.
func (t *Thread) Array() *shared.Cell[[]any] { return t.rec.array }

// Hash returns the hash component cell.
func (t *Thread) Hash() *shared.Cell[map[string]any] { return t.rec.hash }

// Code returns the cell holding the worker body. Replacing it affects the
// next Start only.
func (t *Thread) Code() *shared.Cell[Worker] { return t.rec.code }

// IO returns the io component cell.
func (t *Thread) IO() *shared.Cell[io.ReadWriter] { return t.rec.io }

// Ext returns a free-form extension map shared between the worker and its
// controllers.
func (t *Thread) Ext() *shared.Cell[map[string]any] { return t.rec.ext }

// Status returns the current lifecycle status.
func (t *Thread) Status() Status { return t.rec.status.Load() }

// Detached reports whether the thread has been detached.
func (t *Thread) Detached() bool { return t.Status() == StatusDetached }

// Running reports whether the worker goroutine of the current run is alive.
// It turns false only once the worker body has actually returned.
func (t *Thread) Running() bool {
	rn := t.rec.run.Load()
	return rn != nil && rn.alive.Load()
}

// TID returns the goroutine id of the current (or last) run's worker, or 0
// if the thread never started.
func (t *Thread) TID() uint64 {
	if rn := t.rec.run.Load(); rn != nil {
		return rn.tid.Load()
	}
	return 0
}

// RunID returns the uuid of the current (or last) run, or "" if the thread
// never started.
func (t *Thread) RunID() string {
	if rn := t.rec.run.Load(); rn != nil {
		return rn.id
	}
	return ""
}

// Get returns the current value of the named component.
func (t *Thread) Get(component string) (any, error) {
	switch component {
	case Scalar:
		return t.rec.scalar.Get()
	case Array:
		return t.rec.array.Get()
	case Hash:
		return t.rec.hash.Get()
	case Code:
		return t.rec.code.Get()
	case IO:
		return t.rec.io.Get()
	case Ext:
		return t.rec.ext.Get()
	default:
		return nil, unknownComponent("get", component)
	}
}

// Set stores v in the named component. A value of the wrong type for the
// component fails with a [shared.KindType] error and is not written.
func (t *Thread) Set(component string, v any) error {
	switch component {
	case Scalar:
		return t.rec.scalar.Set(v)
	case Array:
		return setAs(t.rec.array, component, v)
	case Hash:
		return setAs(t.rec.hash, component, v)
	case Code:
		if fn, ok := v.(func(*Thread, ...any) (any, error)); ok {
			return t.rec.code.Set(fn)
		}
		return setAs(t.rec.code, component, v)
	case IO:
		return setAs(t.rec.io, component, v)
	case Ext:
		return setAs(t.rec.ext, component, v)
	default:
		return unknownComponent("set", component)
	}
}

func setAs[T any](c *shared.Cell[T], component string, v any) error {
	tv, ok := v.(T)
	if !ok {
		return &shared.Error{
			Kind:    shared.KindType,
			Op:      "set",
			Message: fmt.Sprintf("component %q holds %v, got %T", component, reflect.TypeFor[T](), v),
		}
	}
	return c.Set(tv)
}

// Value is the typed form of [Thread.Get].
func Value[T any](t *Thread, component string) (T, error) {
	var zero T
	v, err := t.Get(component)
	if err != nil {
		return zero, err
	}
	tv, ok := v.(T)
	if !ok {
		return zero, &shared.Error{
			Kind:    shared.KindType,
			Op:      "get",
			Message: fmt.Sprintf("component %q holds %T, not %v", component, v, reflect.TypeFor[T]()),
		}
	}
	return tv, nil
}

func unknownComponent(op, component string) error {
	return &shared.Error{
		Kind:    shared.KindValidation,
		Op:      op,
		Message: fmt.Sprintf("unknown component %q", component),
	}
}

// Equals reports whether both handles refer to the same managed thread.
func (t *Thread) Equals(other *Thread) bool {
	return other != nil && t.rec == other.rec
}

// Compare orders threads by namespace, then name. A nil handle sorts first.
func (t *Thread) Compare(other *Thread) int {
	if other == nil {
		return 1
	}
	if c := cmp.Compare(t.rec.namespace, other.rec.namespace); c != 0 {
		return c
	}
	return cmp.Compare(t.rec.name, other.rec.name)
}

// HashCode returns a hash of the thread's identity, consistent with Equals.
func (t *Thread) HashCode() uint64 {
	return xxhash.Sum64String(t.rec.namespace + "\x00" + t.rec.name)
}

