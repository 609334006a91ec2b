package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/baxromumarov/shared/thread"
)

// builtinWorkers are the worker bodies a YAML thread can name.
var builtinWorkers = map[string]thread.Worker{
	"counter": counterWorker,
	"sleeper": sleeperWorker,
	"fail":    failWorker,
}

func workerNames() string {
	names := make([]string, 0, len(builtinWorkers))
	for name := range builtinWorkers {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

// counterWorker adds 1 to the scalar args[0] times (default 10), sleeping
// args[1] between steps (default 1ms), and returns the final scalar.
func counterWorker(t *thread.Thread, args ...any) (any, error) {
	n, err := intArg(args, 0, 10)
	if err != nil {
		return nil, err
	}
	pause, err := durationArg(args, 1, time.Millisecond)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n && !t.ShouldStop(); i++ {
		if _, err := t.Scalar().FetchAdd(1); err != nil {
			return nil, err
		}
		if err := t.Sleep(pause); err != nil {
			return nil, err
		}
	}
	return t.Scalar().Get()
}

// sleeperWorker sleeps args[0] per iteration (default 100ms) until asked to
// stop, and returns the number of completed iterations.
func sleeperWorker(t *thread.Thread, args ...any) (any, error) {
	pause, err := durationArg(args, 0, 100*time.Millisecond)
	if err != nil {
		return nil, err
	}
	iterations := 0
	for !t.ShouldStop() {
		if err := t.Sleep(pause); err != nil {
			return nil, err
		}
		iterations++
	}
	return iterations, nil
}

// failWorker always fails, with args in the message.
func failWorker(_ *thread.Thread, args ...any) (any, error) {
	return nil, fmt.Errorf("fail worker: %v", args)
}

func intArg(args []any, i, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	n, ok := args[i].(int)
	if !ok {
		return 0, fmt.Errorf("argument %d must be an integer, got %T", i, args[i])
	}
	return n, nil
}

func durationArg(args []any, i int, def time.Duration) (time.Duration, error) {
	if i >= len(args) {
		return def, nil
	}
	switch v := args[i].(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("argument %d: %w", i, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("argument %d must be a duration, got %T", i, args[i])
	}
}
