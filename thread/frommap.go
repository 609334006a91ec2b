package thread

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/baxromumarov/shared"
)

// Option names recognized by [FromMap].
const (
	OptScalar     = "scalar"
	OptArray      = "array"
	OptHash       = "hash"
	OptCode       = "code"
	OptIO         = "io"
	OptOnKill     = "on_kill"
	OptOnError    = "on_error"
	OptAutoDetach = "auto_detach"
	OptDebug      = "debug"
	OptTrace      = "trace"
)

// FromMap converts loosely typed constructor options (e.g. decoded from a
// config file) into [Option] values. Unknown names fail with a
// [shared.KindValidation] error; values of the wrong type fail with a
// [shared.KindType] error.
func FromMap(m map[string]any) ([]Option, error) {
	opts := make([]Option, 0, len(m))
	for _, key := range slices.Sorted(maps.Keys(m)) {
		v := m[key]
		opt, err := fromEntry(key, v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

func fromEntry(key string, v any) (Option, error) {
	switch key {
	case OptScalar:
		return WithScalar(v), nil

	case OptArray:
		arr, ok := v.([]any)
		if !ok && v != nil {
			return nil, typeMismatch(key, "a list", v)
		}
		return WithArray(arr), nil

	case OptHash:
		switch h := v.(type) {
		case nil:
			return WithHash(nil), nil
		case map[string]any:
			return WithHash(h), nil
		case map[any]any:
			out := make(map[string]any, len(h))
			for k, val := range h {
				out[fmt.Sprint(k)] = val
			}
			return WithHash(out), nil
		default:
			return nil, typeMismatch(key, "a mapping", v)
		}

	case OptCode:
		switch fn := v.(type) {
		case Worker:
			return WithCode(fn), nil
		case func(*Thread, ...any) (any, error):
			return WithCode(fn), nil
		default:
			return nil, typeMismatch(key, "a worker function", v)
		}

	case OptIO:
		rw, ok := v.(io.ReadWriter)
		if !ok {
			return nil, typeMismatch(key, "an io.ReadWriter", v)
		}
		return WithIO(rw), nil

	case OptOnKill:
		fn, ok := v.(func(*Thread))
		if !ok {
			return nil, typeMismatch(key, "func(*thread.Thread)", v)
		}
		return WithOnKill(fn), nil

	case OptOnError:
		switch fn := v.(type) {
		case ErrorHandler:
			return WithOnError(fn), nil
		case func(*Thread, error, string, []any):
			return WithOnError(fn), nil
		default:
			return nil, typeMismatch(key, "an error handler", v)
		}

	case OptAutoDetach:
		b, ok := v.(bool)
		if !ok {
			return nil, typeMismatch(key, "a bool", v)
		}
		if !b {
			return func(*config) {}, nil
		}
		return WithAutoDetach(), nil

	case OptDebug:
		n, ok := v.(int)
		if !ok {
			return nil, typeMismatch(key, "an int", v)
		}
		if n < shared.DebugOff || n > shared.DebugTrace {
			return nil, &shared.Error{Kind: shared.KindValidation, Op: "new", Message: fmt.Sprintf("option %q out of range: %d", key, n)}
		}
		return WithDebug(n), nil

	case OptTrace:
		b, ok := v.(bool)
		if !ok {
			return nil, typeMismatch(key, "a bool", v)
		}
		if !b {
			return func(*config) {}, nil
		}
		return WithTrace(), nil

	default:
		return nil, &shared.Error{Kind: shared.KindValidation, Op: "new", Message: fmt.Sprintf("unknown option %q", key)}
	}
}

func typeMismatch(key, want string, got any) error {
	return &shared.Error{
		Kind:    shared.KindType,
		Op:      "new",
		Message: fmt.Sprintf("option %q must be %s, got %T", key, want, got),
	}
}
