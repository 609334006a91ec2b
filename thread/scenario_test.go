package thread

import (
	"fmt"
	"testing"
	"time"

	"github.com/baxromumarov/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A worker increments its scalar 50 times with short sleeps.
func TestScenarioCounter(t *testing.T) {
	th := newThread(t,
		WithScalar(0),
		WithCode(func(t *Thread, _ ...any) (any, error) {
			for range 50 {
				if _, err := t.Scalar().FetchAdd(1); err != nil {
					return nil, err
				}
				if err := t.Sleep(time.Millisecond); err != nil {
					return nil, err
				}
			}
			return t.Scalar().Get()
		}),
	)

	require.NoError(t, th.Start())
	res, err := th.Join(5 * time.Second)
	require.NoError(t, err)

	assert.Equal(t, 50, res)
	assert.Equal(t, 50, th.Scalar().Load())
	assert.Equal(t, StatusFinished, th.Status())
}

// Ten threads each add 1 a thousand times to one shared scalar.
func TestScenarioSharedCounter(t *testing.T) {
	const (
		threads    = 10
		iterations = 1000
	)

	reg := NewRegistry()
	counter, err := reg.New("scenario", "counter", WithScalar(0))
	require.NoError(t, err)

	work := func(_ *Thread, _ ...any) (any, error) {
		// attach by identity rather than capturing the handle
		c, err := reg.Lookup("scenario", "counter")
		if err != nil {
			return nil, err
		}
		for range iterations {
			if _, err := c.Scalar().FetchAdd(1); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	workers := make([]*Thread, threads)
	for i := range workers {
		th, err := reg.New("scenario", fmt.Sprintf("worker-%d", i), WithCode(work))
		require.NoError(t, err)
		require.NoError(t, th.Start())
		workers[i] = th
	}

	_, err = JoinAll(10*time.Second, workers...)
	require.NoError(t, err)

	v, err := counter.Scalar().Get()
	require.NoError(t, err)
	assert.Equal(t, threads*iterations, v, "no lost updates")
}

// Stop latency is bounded by the stop timeout, not by the worker's sleep.
func TestScenarioBoundedStopLatency(t *testing.T) {
	th := newThread(t, WithCode(func(t *Thread, _ ...any) (any, error) {
		for !t.ShouldStop() {
			if err := t.Sleep(2 * time.Second); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}))

	require.NoError(t, th.Start())
	time.Sleep(10 * time.Millisecond)

	start := time.Now()
	err := th.Stop(500 * time.Millisecond)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, shared.ErrTimeout)
	assert.GreaterOrEqual(t, elapsed, 450*time.Millisecond)
	assert.Less(t, elapsed, 1500*time.Millisecond, "stop must not wait for the 2s sleep")
	assert.True(t, th.ShouldStop())

	// the worker observes the flag after its current sleep
	_, err = th.Join(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, th.Status())
	assert.False(t, th.Running())
}
