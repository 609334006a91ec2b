package thread

import (
	"io"
	"time"

	"github.com/baxromumarov/shared"
)

// Worker is the body of a managed thread. It runs on its own goroutine and
// should poll [Thread.ShouldStop] to honor cooperative cancellation. The
// returned value is what [Thread.Join] yields.
type Worker func(t *Thread, args ...any) (any, error)

// ErrorHandler observes a worker fault (or a [Thread.Try] failure). method is
// the operation that failed, e.g. "start".
type ErrorHandler func(t *Thread, err error, method string, args []any)

type config struct {
	scalar    any
	hasScalar bool
	array     []any
	hash      map[string]any
	code      Worker
	io        io.ReadWriter

	onKill       func(t *Thread)
	onError      ErrorHandler
	autoDetach   bool
	lockOSThread bool

	object []shared.Option
}

// names lists the options cfg carries, in option-name order. Object
// pass-through options are reported as a single "object" entry.
func (c *config) names() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(c.array != nil, OptArray)
	add(c.autoDetach, OptAutoDetach)
	add(c.code != nil, OptCode)
	add(c.hash != nil, OptHash)
	add(c.io != nil, OptIO)
	add(c.lockOSThread, "lock_os_thread")
	add(len(c.object) > 0, "object")
	add(c.onError != nil, OptOnError)
	add(c.onKill != nil, OptOnKill)
	add(c.hasScalar, OptScalar)
	return out
}

// Option configures a managed thread created via [New] or [Registry.New].
type Option func(*config)

func resolveConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// WithScalar sets the initial value of the scalar component.
func WithScalar(v any) Option {
	return func(c *config) {
		c.scalar = v
		c.hasScalar = true
	}
}

// WithArray sets the initial value of the array component.
func WithArray(v []any) Option {
	return func(c *config) {
		c.array = v
	}
}

// WithHash sets the initial value of the hash component.
func WithHash(v map[string]any) Option {
	return func(c *config) {
		c.hash = v
	}
}

// WithCode sets the worker body, stored in the code component.
func WithCode(fn Worker) Option {
	return func(c *config) {
		c.code = fn
	}
}

// WithIO sets the handle stored in the io component.
func WithIO(rw io.ReadWriter) Option {
	return func(c *config) {
		c.io = rw
	}
}

// WithOnKill registers a hook invoked once per run, on the goroutine calling
// [Thread.Stop], right after cancellation has been requested.
func WithOnKill(fn func(t *Thread)) Option {
	return func(c *config) {
		c.onKill = fn
	}
}

// WithOnError registers the hook receiving worker faults. It runs on the
// worker goroutine, before the status becomes [StatusError]. It also
// receives failures from [Thread.Try].
func WithOnError(fn ErrorHandler) Option {
	return func(c *config) {
		c.onError = fn
	}
}

// WithAutoDetach detaches the thread as part of every [Thread.Start].
func WithAutoDetach() Option {
	return func(c *config) {
		c.autoDetach = true
	}
}

// WithLockOSThread pins each worker goroutine to its own OS thread for the
// duration of the run.
func WithLockOSThread() Option {
	return func(c *config) {
		c.lockOSThread = true
	}
}

// WithObjectOptions passes options through to the thread's own object and
// to every component cell.
func WithObjectOptions(opts ...shared.Option) Option {
	return func(c *config) {
		c.object = append(c.object, opts...)
	}
}

// WithDebug is shorthand for WithObjectOptions(shared.WithDebug(level)).
func WithDebug(level int) Option {
	return WithObjectOptions(shared.WithDebug(level))
}

// WithTrace is shorthand for WithObjectOptions(shared.WithTrace()).
func WithTrace() Option {
	return WithObjectOptions(shared.WithTrace())
}

// WithLogger is shorthand for WithObjectOptions(shared.WithLogger(l)).
func WithLogger(l *shared.Logger) Option {
	return WithObjectOptions(shared.WithLogger(l))
}

// WithLockTimeout is shorthand for WithObjectOptions(shared.WithLockTimeout(d)).
func WithLockTimeout(d time.Duration) Option {
	return WithObjectOptions(shared.WithLockTimeout(d))
}
