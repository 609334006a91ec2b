package shared

import (
	"cmp"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// The methods in this file replace implicit coercions: a cell is never
// converted to a string, number or boolean behind the caller's back.
// All of them observe the last committed value (see [Cell.Load]).

// String formats the value with fmt; an undefined cell yields "".
func (c *Cell[T]) String() string {
	s := c.snap.Load()
	if !s.defined {
		return ""
	}
	return fmt.Sprint(s.value)
}

// Number converts the value to float64. Numeric kinds convert directly,
// booleans map to 0/1 and strings are parsed. Anything else is a [KindType]
// error. An undefined cell is zero.
func (c *Cell[T]) Number() (float64, error) {
	s := c.snap.Load()
	if !s.defined {
		return 0, nil
	}
	return toNumber(any(s.value))
}

func toNumber(v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	rv := reflect.ValueOf(v)
	switch k := rv.Kind(); {
	case isInt(k):
		return float64(rv.Int()), nil
	case isUint(k):
		return float64(rv.Uint()), nil
	case k == reflect.Float32 || k == reflect.Float64:
		return rv.Float(), nil
	case k == reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case k == reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return 0, &Error{Kind: KindType, Op: "to_number", Message: fmt.Sprintf("%q is not numeric", rv.String()), Err: err}
		}
		return f, nil
	default:
		return 0, &Error{Kind: KindType, Op: "to_number", Message: fmt.Sprintf("%T is not numeric", v)}
	}
}

// Truthy reports whether the value is set and non-zero. Empty strings,
// slices and maps, and the string "0", are false.
func (c *Cell[T]) Truthy() bool {
	s := c.snap.Load()
	if !s.defined {
		return false
	}
	v := any(s.value)
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		str := rv.String()
		return str != "" && str != "0"
	case reflect.Slice, reflect.Map, reflect.Chan:
		return rv.Len() > 0
	default:
		return !rv.IsZero()
	}
}

// Equals compares two cells by value. Two undefined cells are equal.
func (c *Cell[T]) Equals(other *Cell[T]) bool {
	if other == nil {
		return false
	}
	if c == other {
		return true
	}
	a, b := c.snap.Load(), other.snap.Load()
	if a.defined != b.defined {
		return false
	}
	return !a.defined || equal(any(a.value), any(b.value))
}

// Compare orders two cells: numerically when both values are numeric,
// otherwise by their string form. Undefined sorts first.
func (c *Cell[T]) Compare(other *Cell[T]) (int, error) {
	if other == nil {
		return 0, &Error{Kind: KindValidation, Op: "compare", Message: "nil cell"}
	}
	a, b := c.snap.Load(), other.snap.Load()
	switch {
	case !a.defined && !b.defined:
		return 0, nil
	case !a.defined:
		return -1, nil
	case !b.defined:
		return 1, nil
	}
	x, errX := toNumber(any(a.value))
	y, errY := toNumber(any(b.value))
	if errX == nil && errY == nil {
		return cmp.Compare(x, y), nil
	}
	return strings.Compare(fmt.Sprint(a.value), fmt.Sprint(b.value)), nil
}

// HashCode returns a 64-bit hash of the value's type and formatted form,
// consistent with [Cell.Equals] for values whose formatting is canonical.
func (c *Cell[T]) HashCode() uint64 {
	s := c.snap.Load()
	if !s.defined {
		return 0
	}
	return xxhash.Sum64String(fmt.Sprintf("%T\x00%v", s.value, s.value))
}
