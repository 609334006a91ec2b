package shared

import (
	"errors"
	"fmt"
)

// Kind classifies a [*Error].
type Kind int

const (
	// KindValidation reports a bad constructor option or argument.
	KindValidation Kind = iota + 1
	// KindLock reports lock/unlock misuse or an acquisition timeout.
	KindLock
	// KindTimeout reports an expired stop or join deadline.
	KindTimeout
	// KindInvalidOperation reports acting on a thread in the wrong state.
	KindInvalidOperation
	// KindRuntime reports a fault raised by user code (worker body, Sync body).
	KindRuntime
	// KindType reports a component or value type mismatch.
	KindType
)

// Sentinels for matching with [errors.Is], one per [Kind].
var (
	ErrValidation       = errors.New("validation error")
	ErrLock             = errors.New("lock error")
	ErrTimeout          = errors.New("timeout")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrRuntime          = errors.New("runtime error")
	ErrType             = errors.New("type error")
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindLock:
		return "lock"
	case KindTimeout:
		return "timeout"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindRuntime:
		return "runtime"
	case KindType:
		return "type"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindLock:
		return ErrLock
	case KindTimeout:
		return ErrTimeout
	case KindInvalidOperation:
		return ErrInvalidOperation
	case KindRuntime:
		return ErrRuntime
	case KindType:
		return ErrType
	default:
		return nil
	}
}

// Error is the structured fault raised by every operation in this module and
// in [github.com/baxromumarov/shared/thread]. It carries the originating
// operation so callers can attribute failures.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Code    int
	Err     error
}

// NewError builds an [*Error] without routing it through any hook. Objects
// should prefer [Object.Throw].
func NewError(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.sentinel().Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause, so that
// errors.Is(err, ErrTimeout) and errors.Is(err, cause) both hold.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		out = append(out, s)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// KindOf reports the kind of the outermost [*Error] in err's chain, such as
// [KindTimeout] for a Stop that missed its deadline.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}

// CauseOf returns what the outermost [*Error] wraps: the worker's error or
// [*PanicError] behind a failed Join, or the context error behind a timed
// out Stop. When there is nothing to unwrap, err itself is returned.
func CauseOf(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err
	}
	return err
}

// AllErrors flattens err into every [*Error] it contains, outermost first.
// It descends into errors.Join aggregates (as returned by Registry.Shutdown
// and JoinAll) and into the cause of each fault.
func AllErrors(err error) []*Error {
	var out []*Error
	walkErrors(err, func(e *Error) { out = append(out, e) })
	return out
}

func walkErrors(err error, visit func(*Error)) {
	switch e := err.(type) {
	case nil:
	case *Error:
		if e == nil {
			return
		}
		visit(e)
		walkErrors(e.Err, visit)
	case interface{ Unwrap() []error }:
		for _, sub := range e.Unwrap() {
			walkErrors(sub, visit)
		}
	case interface{ Unwrap() error }:
		walkErrors(e.Unwrap(), visit)
	}
}
