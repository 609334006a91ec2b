package shared

import (
	"fmt"
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
)

// Number is the constraint for the statically typed [Add] operator.
type Number interface {
	constraints.Integer | constraints.Float
}

// CompareAndSwap writes next only if the current value equals old by value,
// reporting whether the write happened. An undefined cell never matches.
func (c *Cell[T]) CompareAndSwap(old, next T) (bool, error) {
	var swapped bool
	err := c.Sync("compare_and_swap", func() error {
		if !c.defined || !equal(c.value, old) {
			return nil
		}
		c.commit(next, true)
		swapped = true
		return nil
	}, old, next)
	return swapped, err
}

// FetchStore writes v and returns the previous value.
func (c *Cell[T]) FetchStore(v T) (T, error) {
	var prev T
	err := c.Sync("fetch_store", func() error {
		prev = c.value
		c.commit(v, true)
		return nil
	}, v)
	return prev, err
}

// FetchAdd adds delta to the current value and returns the previous value.
// T may be any numeric type, or an interface type holding one (as the
// scalar component of a managed thread does). An undefined cell counts as
// zero. Non-numeric values fail with a [KindType] error and are not written.
func (c *Cell[T]) FetchAdd(delta T) (T, error) {
	var prev T
	err := c.Sync("fetch_add", func() error {
		prev = c.value
		var cur any = c.value
		if !c.defined {
			cur = nil
		}
		sum, err := addValues(cur, any(delta))
		if err != nil {
			return err
		}
		next, ok := sum.(T)
		if !ok {
			return &Error{Kind: KindType, Op: "fetch_add", Message: fmt.Sprintf("sum of type %T does not fit the cell", sum)}
		}
		c.commit(next, true)
		return nil
	}, delta)
	return prev, err
}

// TestSet writes v only if the cell is undefined, reporting whether it did.
func (c *Cell[T]) TestSet(v T) (bool, error) {
	var set bool
	err := c.Sync("test_set", func() error {
		if c.defined {
			return nil
		}
		c.commit(v, true)
		set = true
		return nil
	}, v)
	return set, err
}

// Update replaces the value with fn(current) and returns the new value.
// If fn panics, the cell is left unchanged and the panic is returned as a
// [KindRuntime] error.
func (c *Cell[T]) Update(fn func(current T) T) (T, error) {
	var next T
	err := c.Sync("update", func() error {
		next = fn(c.value)
		c.commit(next, true)
		return nil
	})
	return next, err
}

// Add is the statically typed add-and-fetch: it returns the new value.
func Add[T Number](c *Cell[T], delta T) (T, error) {
	return c.Update(func(current T) T { return current + delta })
}

// addValues sums two numeric values, keeping the dynamic type of cur (or of
// delta, when cur is nil).
func addValues(cur, delta any) (any, error) {
	dv := reflect.ValueOf(delta)
	if !dv.IsValid() || !isNumeric(dv.Kind()) {
		return nil, &Error{Kind: KindType, Op: "fetch_add", Message: fmt.Sprintf("delta of type %T is not numeric", delta)}
	}
	if cur == nil {
		return delta, nil
	}
	cv := reflect.ValueOf(cur)
	if !isNumeric(cv.Kind()) {
		return nil, &Error{Kind: KindType, Op: "fetch_add", Message: fmt.Sprintf("value of type %T is not numeric", cur)}
	}

	out := reflect.New(cv.Type()).Elem()
	switch {
	case isInt(cv.Kind()):
		d, err := intOf(dv)
		if err != nil {
			return nil, err
		}
		x := cv.Int()
		sum := x + d
		if (d > 0 && sum < x) || (d < 0 && sum > x) || out.OverflowInt(sum) {
			return nil, overflow(cur, delta)
		}
		out.SetInt(sum)
	case isUint(cv.Kind()):
		d, err := intOf(dv)
		if err != nil {
			return nil, err
		}
		x := cv.Uint()
		var sum uint64
		if d >= 0 {
			sum = x + uint64(d)
			if sum < x {
				return nil, overflow(cur, delta)
			}
		} else {
			// -(d+1) avoids negating math.MinInt64
			neg := uint64(-(d + 1)) + 1
			if neg > x {
				return nil, overflow(cur, delta)
			}
			sum = x - neg
		}
		if out.OverflowUint(sum) {
			return nil, overflow(cur, delta)
		}
		out.SetUint(sum)
	default:
		sum := cv.Float() + floatOf(dv)
		if out.OverflowFloat(sum) {
			return nil, overflow(cur, delta)
		}
		out.SetFloat(sum)
	}
	return out.Interface(), nil
}

func overflow(cur, delta any) error {
	return &Error{Kind: KindType, Op: "fetch_add", Message: fmt.Sprintf("%v + %v overflows %T", cur, delta, cur)}
}

func intOf(v reflect.Value) (int64, error) {
	switch {
	case isInt(v.Kind()):
		return v.Int(), nil
	case isUint(v.Kind()):
		u := v.Uint()
		if u > math.MaxInt64 {
			return 0, &Error{Kind: KindType, Op: "fetch_add", Message: fmt.Sprintf("delta %d does not fit an int64", u)}
		}
		return int64(u), nil
	default:
		f := v.Float()
		if f < math.MinInt64 || f >= math.MaxInt64 || f != math.Trunc(f) {
			return 0, &Error{Kind: KindType, Op: "fetch_add", Message: fmt.Sprintf("delta %v is not an int64 value", f)}
		}
		return int64(f), nil
	}
}

func floatOf(v reflect.Value) float64 {
	switch {
	case isInt(v.Kind()):
		return float64(v.Int())
	case isUint(v.Kind()):
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}
