package shared

import "time"

// Debug verbosity levels accepted by [WithDebug].
const (
	DebugOff   = 0
	DebugOn    = 1
	DebugTrace = 2
)

// ErrorHandler observes a fault routed through [Object.Try] or a managed
// thread's trampoline. self is the object the fault originated from.
type ErrorHandler func(self any, err error, op string, args []any)

// ThrowHandler observes every fault raised via [Object.Throw].
type ThrowHandler func(self any, err *Error)

type config struct {
	name        string
	lockTimeout time.Duration
	debug       int
	logger      *Logger
	onError     ErrorHandler
	onThrow     ThrowHandler
}

// Option configures an [Object], and thereby a [Cell].
type Option func(*config)

func defaultConfig() config {
	return config{
		lockTimeout: DefaultLockTimeout,
	}
}

func resolveConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// WithName labels the object in diagnostics.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLockTimeout bounds every lock acquisition made by the object.
// Zero or a negative value waits indefinitely.
func WithLockTimeout(d time.Duration) Option {
	return func(c *config) {
		c.lockTimeout = d
	}
}

// WithDebug sets the diagnostic verbosity: [DebugOff], [DebugOn] or
// [DebugTrace]. It panics if level is negative.
func WithDebug(level int) Option {
	if level < 0 {
		panic("shared: debug level must be non-negative")
	}
	return func(c *config) {
		c.debug = level
	}
}

// WithTrace is shorthand for WithDebug(DebugTrace).
func WithTrace() Option {
	return WithDebug(DebugTrace)
}

// WithLogger replaces the package default logger for this object.
func WithLogger(l *Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithOnError registers the hook invoked by [Object.Try] when the wrapped
// function fails. The hook runs on the failing goroutine, outside any lock.
func WithOnError(fn ErrorHandler) Option {
	return func(c *config) {
		c.onError = fn
	}
}

// WithOnThrow registers a hook invoked for every fault raised via
// [Object.Throw].
func WithOnThrow(fn ThrowHandler) Option {
	return func(c *config) {
		c.onThrow = fn
	}
}
