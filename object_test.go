package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	return NewLogger(buf, logiface.LevelTrace, stumpy.WithTimeField(""))
}

func TestSyncHookOrder(t *testing.T) {
	obj := NewObject("self")
	var got []string
	obj.On("before_op", func(self any, args ...any) error {
		assert.Equal(t, "self", self)
		got = append(got, "before")
		return nil
	})
	obj.On("after_op", func(self any, args ...any) error {
		got = append(got, "after")
		return nil
	})
	obj.On("error_op", func(self any, args ...any) error {
		got = append(got, "error")
		return nil
	})

	err := obj.Sync("op", func() error {
		assert.True(t, obj.Mutex().Held())
		got = append(got, "body")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "body", "after"}, got)
}

func TestSyncErrorHook(t *testing.T) {
	obj := NewObject(nil)
	sentinel := errors.New("body failed")

	var hookErr error
	var hookArgs []any
	obj.On("error_op", func(self any, args ...any) error {
		hookErr = args[0].(error)
		hookArgs = args[1:]
		return nil
	})
	obj.On("after_op", func(self any, args ...any) error {
		t.Error("after_op must not fire on failure")
		return nil
	})

	err := obj.Sync("op", func() error { return sentinel }, "a", 1)
	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, hookErr, sentinel)
	assert.Equal(t, []any{"a", 1}, hookArgs)
	assert.False(t, obj.Mutex().Locked())
}

func TestSyncBeforeHookAborts(t *testing.T) {
	obj := NewObject(nil)
	sentinel := errors.New("veto")
	obj.On("before_op", func(any, ...any) error { return sentinel })

	ran := false
	err := obj.Sync("op", func() error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, sentinel)
	assert.False(t, ran)
}

func TestSyncPanic(t *testing.T) {
	obj := NewObject(nil)
	err := obj.Sync("op", func() error { panic("in critical") })

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRuntime)
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "in critical", pe.Value)
	assert.False(t, obj.Mutex().Locked(), "panic must release the mutex")
}

func TestSyncUnnamedSkipsHooks(t *testing.T) {
	obj := NewObject(nil)
	obj.On("before_", func(any, ...any) error {
		t.Error("hooks must not fire for an unnamed sync")
		return nil
	})
	require.NoError(t, obj.Sync("", func() error { return nil }))
}

func TestThrowCountsThroughHook(t *testing.T) {
	var thrown []*Error
	obj := NewObject("me", WithOnThrow(func(self any, err *Error) {
		assert.Equal(t, "me", self)
		thrown = append(thrown, err)
	}))

	err := obj.Throw(KindValidation, "new", "missing name", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	require.Len(t, thrown, 1)
	assert.Equal(t, 3, thrown[0].Code)
	assert.Equal(t, "new", thrown[0].Op)

	cause := errors.New("cause")
	err = obj.ThrowErr(KindRuntime, "run", "failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Len(t, thrown, 2)
}

func TestTryReportsAndReturns(t *testing.T) {
	var reports []string
	obj := NewObject(nil, WithOnError(func(self any, err error, op string, args []any) {
		reports = append(reports, op+":"+err.Error())
	}))
	assert.True(t, obj.HasErrorHandler())

	require.NoError(t, obj.Try("ok", func() error { return nil }))
	assert.Empty(t, reports)

	sentinel := errors.New("bad")
	err := obj.Try("fail", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel, "Try never suppresses the error")
	assert.Equal(t, []string{"fail:bad"}, reports)

	err = obj.Try("boom", func() error { panic("p") })
	assert.ErrorIs(t, err, ErrRuntime)
	assert.Len(t, reports, 2)
}

func TestDebugGating(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	quiet := NewObject(nil, WithLogger(logger))
	quiet.Debug("hidden")
	quiet.Trace("hidden")
	assert.Empty(t, buf.String(), "debug off emits nothing")

	loud := NewObject(nil, WithLogger(logger), WithDebug(DebugOn))
	loud.Debug("visible", "k", "v")
	loud.Trace("hidden")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	traced := NewObject(nil, WithLogger(logger), WithTrace())
	traced.Trace("visible")
	assert.Contains(t, buf.String(), `"lvl":"trace"`)
}

func TestWithDebugNegativePanics(t *testing.T) {
	assert.Panics(t, func() { WithDebug(-1) })
}

func TestUnlockMisuseIsNotFatal(t *testing.T) {
	var buf bytes.Buffer
	obj := NewObject(nil, WithLogger(newTestLogger(&buf)))

	err := obj.Unlock()
	assert.ErrorIs(t, err, ErrLock)
	assert.Contains(t, buf.String(), "unlock misuse")
}

func TestUnsharedForeignMutationDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	c := New(0, WithLogger(newTestLogger(&buf)), WithDebug(DebugOn))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Set(1)
	}()
	<-done
	assert.Contains(t, buf.String(), "foreign goroutine")

	buf.Reset()
	c.ShareIt()
	shared := make(chan struct{})
	go func() {
		defer close(shared)
		_ = c.Set(2)
	}()
	<-shared
	assert.NotContains(t, buf.String(), "foreign goroutine")
}

func TestDefaultLogger(t *testing.T) {
	prev := DefaultLogger()
	t.Cleanup(func() { SetDefaultLogger(prev) })

	var buf bytes.Buffer
	SetDefaultLogger(newTestLogger(&buf))
	obj := NewObject(nil, WithDebug(DebugOn))
	obj.Debug("via default")
	assert.Contains(t, buf.String(), "via default")
}
