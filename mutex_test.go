package shared

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexBasic(t *testing.T) {
	m := NewMutex(time.Second)
	assert.False(t, m.Locked(), "new mutex should be unlocked")

	require.NoError(t, m.Lock())
	assert.True(t, m.Locked())
	assert.True(t, m.Held(), "locking goroutine should hold the mutex")
	assert.Equal(t, 1, m.Depth())

	require.NoError(t, m.Unlock())
	assert.False(t, m.Locked())
	assert.False(t, m.Held())
	assert.Equal(t, 0, m.Depth())
}

func TestMutexReentrant(t *testing.T) {
	m := NewMutex(time.Second)

	require.NoError(t, m.Lock())
	require.NoError(t, m.Lock(), "holder should re-acquire without blocking")
	assert.True(t, m.TryLock())
	assert.Equal(t, 3, m.Depth())

	require.NoError(t, m.Unlock())
	require.NoError(t, m.Unlock())
	assert.True(t, m.Locked(), "mutex should stay locked until the last unlock")

	require.NoError(t, m.Unlock())
	assert.False(t, m.Locked())
}

func TestMutexTryLock(t *testing.T) {
	m := NewMutex(time.Second)
	require.NoError(t, m.Lock())

	got := make(chan bool)
	go func() { got <- m.TryLock() }()
	assert.False(t, <-got, "TryLock from another goroutine should fail while held")

	require.NoError(t, m.Unlock())
	go func() {
		ok := m.TryLock()
		if ok {
			_ = m.Unlock()
		}
		got <- ok
	}()
	assert.True(t, <-got, "TryLock should succeed once released")
}

func TestMutexTimeout(t *testing.T) {
	m := NewMutex(50 * time.Millisecond)
	require.NoError(t, m.Lock())
	defer func() { _ = m.Unlock() }()

	errc := make(chan error)
	start := time.Now()
	go func() { errc <- m.Lock() }()
	err := <-errc

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLock)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestMutexNoTimeout(t *testing.T) {
	m := NewMutex(0)
	require.NoError(t, m.Lock())

	errc := make(chan error, 1)
	go func() {
		err := m.Lock()
		if err == nil {
			err = m.Unlock()
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		t.Fatalf("lock without deadline returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, m.Unlock())
	require.NoError(t, <-errc)
}

func TestMutexContextCancel(t *testing.T) {
	m := NewMutex(time.Minute)
	require.NoError(t, m.Lock())
	defer func() { _ = m.Unlock() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errc := make(chan error)
	go func() { errc <- m.LockContext(ctx) }()
	err := <-errc

	assert.ErrorIs(t, err, ErrLock)
	assert.ErrorIs(t, err, context.Canceled, "cause should be the context error")
}

func TestMutexUnlockByNonHolder(t *testing.T) {
	m := NewMutex(time.Second)

	err := m.Unlock()
	require.Error(t, err, "unlocking an unlocked mutex should fail")
	assert.ErrorIs(t, err, ErrLock)

	require.NoError(t, m.Lock())
	errc := make(chan error)
	go func() { errc <- m.Unlock() }()
	err = <-errc
	assert.ErrorIs(t, err, ErrLock)
	assert.True(t, m.Held(), "a failed foreign unlock must leave the mutex held")

	require.NoError(t, m.Unlock())
}

func TestMutexMutualExclusion(t *testing.T) {
	const workers = 20

	m := NewMutex(5 * time.Second)
	var (
		inside    atomic.Int32
		maxInside atomic.Int32
		counter   int
		wg        sync.WaitGroup
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if err := m.Lock(); err != nil {
					t.Error(err)
					return
				}
				cur := inside.Add(1)
				for {
					old := maxInside.Load()
					if cur <= old || maxInside.CompareAndSwap(old, cur) {
						break
					}
				}
				counter++
				inside.Add(-1)
				if err := m.Unlock(); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*100, counter)
	assert.Equal(t, int32(1), maxInside.Load(), "at most one goroutine inside")
}

func TestGoroutineID(t *testing.T) {
	id := GoroutineID()
	assert.NotZero(t, id)
	assert.Equal(t, id, GoroutineID(), "id should be stable within a goroutine")

	other := make(chan uint64)
	go func() { other <- GoroutineID() }()
	assert.NotEqual(t, id, <-other)
}
