package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/baxromumarov/shared"
	"github.com/baxromumarov/shared/thread"
	"github.com/spf13/cobra"
)

var scenarios = map[string]func(opts *RootOptions, out, diag io.Writer) error{
	"a": scenarioCounter,
	"b": scenarioSharedCounter,
	"c": scenarioStopLatency,
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <a|b|c>",
		Short: "Run a built-in managed-thread scenario",
		Long: `Run one of the built-in scenarios:

  a  one thread increments its scalar 50 times, then is joined
  b  ten threads each add 1 a thousand times to one shared scalar
  c  stop with a 0.5s timeout on a worker that sleeps 2s per iteration

Example:
  sharedctl scenario b
  sharedctl scenario c --debug 1`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"a", "b", "c"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return scenarios[args[0]](rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func scenarioCounter(opts *RootOptions, out, diag io.Writer) error {
	reg := thread.NewRegistry()
	defer func() { _ = reg.Shutdown(time.Second) }()

	t, err := reg.New("scenario", "counter", append(opts.threadOptions(diag),
		thread.WithScalar(0),
		thread.WithCode(counterWorker),
	)...)
	if err != nil {
		return err
	}
	if err := t.Start(50); err != nil {
		return err
	}
	res, err := t.Join(5 * time.Second)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "scalar=%v status=%s\n", res, t.Status())
	return nil
}

func scenarioSharedCounter(opts *RootOptions, out, diag io.Writer) error {
	const (
		workers    = 10
		iterations = 1000
	)

	reg := thread.NewRegistry()
	defer func() { _ = reg.Shutdown(time.Second) }()

	counter, err := reg.New("scenario", "shared", append(opts.threadOptions(diag), thread.WithScalar(0))...)
	if err != nil {
		return err
	}

	add := func(_ *thread.Thread, _ ...any) (any, error) {
		for range iterations {
			if _, err := counter.Scalar().FetchAdd(1); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	threads := make([]*thread.Thread, workers)
	for i := range threads {
		t, err := reg.New("scenario", fmt.Sprintf("adder-%d", i), append(opts.threadOptions(diag), thread.WithCode(add))...)
		if err != nil {
			return err
		}
		if err := t.Start(); err != nil {
			return err
		}
		threads[i] = t
	}
	if _, err := thread.JoinAll(10*time.Second, threads...); err != nil {
		return err
	}

	total, err := counter.Scalar().Get()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "scalar=%v expected=%d\n", total, workers*iterations)
	return nil
}

func scenarioStopLatency(opts *RootOptions, out, diag io.Writer) error {
	reg := thread.NewRegistry()

	t, err := reg.New("scenario", "sleeper", append(opts.threadOptions(diag), thread.WithCode(sleeperWorker))...)
	if err != nil {
		return err
	}
	if err := t.Start(2 * time.Second); err != nil {
		return err
	}

	start := time.Now()
	err = t.Stop(500 * time.Millisecond)
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, shared.ErrTimeout) {
		return err
	}
	fmt.Fprintf(out, "stop returned after %s (timeout=%t) status=%s\n",
		elapsed.Round(10*time.Millisecond), err != nil, t.Status())
	return nil
}
