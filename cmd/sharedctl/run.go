package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/baxromumarov/shared"
	"github.com/baxromumarov/shared/thread"
	"github.com/spf13/cobra"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the threads declared in a YAML file",
		Long: `Start every thread declared in a YAML config file, wait for them to finish
(up to join_timeout), then stop whatever is still running (up to stop_timeout).

Each thread names one of the built-in workers: counter, sleeper, fail.

Example:
  sharedctl run --config threads.yaml
  sharedctl run --config threads.yaml --debug 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := shared.LoadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runThreads(ctx, opts, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runThreads(ctx context.Context, opts *RunOptions, cfg *shared.Config, out, diag io.Writer) error {
	if opts.Debug > cfg.Debug {
		cfg.Debug = opts.Debug
	}

	reg := thread.NewRegistry()
	threads := make([]*thread.Thread, 0, len(cfg.Threads))
	for _, tc := range cfg.Threads {
		t, err := newConfiguredThread(reg, cfg, tc, diag)
		if err != nil {
			_ = reg.Shutdown(cfg.StopTimeout)
			return err
		}
		threads = append(threads, t)
	}
	for i, t := range threads {
		if err := t.Start(cfg.Threads[i].Args...); err != nil {
			_ = reg.Shutdown(cfg.StopTimeout)
			return err
		}
	}

	joinCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.JoinTimeout > 0 {
		joinCtx, cancel = context.WithTimeout(ctx, cfg.JoinTimeout)
		defer cancel()
	}

	var failures []error
	for _, t := range threads {
		res, err := t.JoinContext(joinCtx)
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s: %s result=%v\n", t, t.Status(), res)
		case errors.Is(err, shared.ErrTimeout), errors.Is(err, shared.ErrInvalidOperation):
			fmt.Fprintf(out, "%s: %s\n", t, t.Status())
		default:
			fmt.Fprintf(out, "%s: %s error=%v\n", t, t.Status(), shared.CauseOf(err))
			failures = append(failures, err)
		}
	}

	if err := reg.Shutdown(cfg.StopTimeout); err != nil {
		failures = append(failures, err)
	}
	return errors.Join(failures...)
}

func newConfiguredThread(reg *thread.Registry, cfg *shared.Config, tc shared.ThreadConfig, diag io.Writer) (*thread.Thread, error) {
	worker, ok := builtinWorkers[tc.Worker]
	if !ok {
		return nil, &shared.Error{
			Kind:    shared.KindValidation,
			Op:      "run",
			Message: fmt.Sprintf("thread %s::%s: unknown worker %q (want one of %s)", tc.Namespace, tc.Name, tc.Worker, workerNames()),
		}
	}

	opts, err := thread.FromMap(tc.Options)
	if err != nil {
		return nil, fmt.Errorf("thread %s::%s: %w", tc.Namespace, tc.Name, err)
	}
	ambient := (&RootOptions{Debug: cfg.Debug}).threadOptions(diag)
	opts = append(append(ambient, thread.WithObjectOptions(cfg.Options()...)), opts...)
	opts = append(opts, thread.WithCode(worker))

	return reg.New(tc.Namespace, tc.Name, opts...)
}
