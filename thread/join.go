package thread

import (
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// JoinAll joins every thread concurrently, sharing one timeout (timeout <= 0
// waits indefinitely). Results are returned in input order; a failed join
// leaves a nil result in its slot and contributes to the joined error.
//
//	results, err := thread.JoinAll(5*time.Second, a, b, c)
func JoinAll(timeout time.Duration, threads ...*Thread) ([]any, error) {
	ctx, cancel := deadline(timeout)
	defer cancel()

	results := make([]any, len(threads))
	errs := make([]error, len(threads))
	var eg errgroup.Group
	for i, t := range threads {
		eg.Go(func() error {
			results[i], errs[i] = t.JoinContext(ctx)
			return errs[i]
		})
	}
	if err := eg.Wait(); err != nil {
		return results, errors.Join(errs...)
	}
	return results, nil
}
