package shared

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAddNoLostUpdates(t *testing.T) {
	const (
		goroutines = 10
		iterations = 1000
	)

	c := New(0)
	c.ShareIt()

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				if _, err := c.FetchAdd(1); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	v, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, goroutines*iterations, v)
}

func TestFetchAddReturnsPrevious(t *testing.T) {
	c := New(int64(5))
	prev, err := c.FetchAdd(3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), prev)
	assert.Equal(t, int64(8), c.Load())
}

func TestFetchAddDynamic(t *testing.T) {
	tests := []struct {
		name  string
		start any
		delta any
		want  any
	}{
		{name: "int", start: 1, delta: 2, want: 3},
		{name: "int keeps type with float delta", start: 1, delta: 2.0, want: 3},
		{name: "float", start: 1.5, delta: 1, want: 2.5},
		{name: "uint", start: uint8(1), delta: 1, want: uint8(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[any](tt.start)
			prev, err := c.FetchAdd(tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.start, prev)
			assert.Equal(t, tt.want, c.Load())
		})
	}
}

func TestFetchAddUndefinedCountsAsZero(t *testing.T) {
	c := Empty[any]()
	prev, err := c.FetchAdd(4)
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.Equal(t, 4, c.Load())
	assert.True(t, c.Defined())
}

func TestFetchAddTypeErrors(t *testing.T) {
	c := New[any]("text")
	_, err := c.FetchAdd(1)
	assert.ErrorIs(t, err, ErrType)
	assert.Equal(t, "text", c.Load(), "a failed add must leave the cell unchanged")

	n := New[any](1)
	_, err = n.FetchAdd("x")
	assert.ErrorIs(t, err, ErrType)

	_, err = n.FetchAdd(0.5)
	assert.ErrorIs(t, err, ErrType, "fractional delta on an integer")
	assert.Equal(t, 1, n.Load())
}

func TestFetchAddOverflow(t *testing.T) {
	tests := []struct {
		name  string
		start any
		delta any
	}{
		{name: "int8 above max", start: int8(math.MaxInt8), delta: 1},
		{name: "int16 below min", start: int16(math.MinInt16), delta: -1},
		{name: "int64 above max", start: int64(math.MaxInt64), delta: 1},
		{name: "int64 below min", start: int64(math.MinInt64), delta: int64(math.MinInt64)},
		{name: "uint8 above max", start: uint8(math.MaxUint8), delta: 1},
		{name: "uint below zero", start: uint(0), delta: -1},
		{name: "uint64 above max", start: uint64(math.MaxUint64), delta: 1},
		{name: "uint64 delta above int64", start: uint64(0), delta: uint64(math.MaxUint64)},
		{name: "float32 above max", start: float32(math.MaxFloat32), delta: math.MaxFloat64},
		{name: "huge float delta", start: 0, delta: 1e300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[any](tt.start)
			_, err := c.FetchAdd(tt.delta)
			assert.ErrorIs(t, err, ErrType)
			assert.Equal(t, tt.start, c.Load(), "an overflowing add must leave the cell unchanged")
		})
	}
}

func TestFetchAddNearLimits(t *testing.T) {
	c := New[any](uint64(math.MaxInt64))
	_, err := c.FetchAdd(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxInt64)+1, c.Load())

	u := New[any](uint8(1))
	_, err = u.FetchAdd(-1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), u.Load())

	typed := New(int8(126))
	prev, err := typed.FetchAdd(1)
	require.NoError(t, err)
	assert.Equal(t, int8(126), prev)
	_, err = typed.FetchAdd(1)
	assert.ErrorIs(t, err, ErrType)
	assert.Equal(t, int8(math.MaxInt8), typed.Load())
}

func TestCompareAndSwap(t *testing.T) {
	c := New("a")

	ok, err := c.CompareAndSwap("b", "c")
	require.NoError(t, err)
	assert.False(t, ok, "mismatched old must not swap")
	assert.Equal(t, "a", c.Load(), "failed CAS leaves the cell unchanged")

	ok, err = c.CompareAndSwap("a", "c")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c", c.Load())
}

func TestCompareAndSwapByValue(t *testing.T) {
	c := New[any]([]any{1, "x"})
	ok, err := c.CompareAndSwap([]any{1, "x"}, []any{2})
	require.NoError(t, err)
	assert.True(t, ok, "slices compare by value")

	u := Empty[int]()
	ok, err = u.CompareAndSwap(0, 1)
	require.NoError(t, err)
	assert.False(t, ok, "an undefined cell never matches")
}

func TestCompareAndSwapContended(t *testing.T) {
	c := New(0)
	c.ShareIt()

	const goroutines = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := c.CompareAndSwap(0, 1)
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins, "exactly one CAS from 0 should win")
}

func TestFetchStore(t *testing.T) {
	c := New(1)
	prev, err := c.FetchStore(2)
	require.NoError(t, err)
	assert.Equal(t, 1, prev)
	assert.Equal(t, 2, c.Load())
}

func TestTestSet(t *testing.T) {
	c := Empty[string]()

	ok, err := c.TestSet("first")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.TestSet("second")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "first", c.Load())
}

func TestUpdate(t *testing.T) {
	c := New(3)
	next, err := c.Update(func(cur int) int { return cur * 2 })
	require.NoError(t, err)
	assert.Equal(t, 6, next)

	_, err = c.Update(func(int) int { panic("nope") })
	assert.ErrorIs(t, err, ErrRuntime)
	assert.Equal(t, 6, c.Load(), "a panicking update leaves the cell unchanged")
}

func TestAdd(t *testing.T) {
	c := New(1.5)
	next, err := Add(c, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.5, next)
}

func TestAtomicEvents(t *testing.T) {
	c := New(0)
	var calls int
	c.On("after_fetch_add", func(self any, args ...any) error {
		calls++
		return nil
	})
	for range 3 {
		_, err := c.FetchAdd(1)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}
