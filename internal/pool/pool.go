// Package pool runs bounded batches of independent jobs.
package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when a caller passes zero or less.
const DefaultConcurrency = 3

// Map calls fn for every item with at most concurrency calls in flight and
// returns the results in input order. The first error cancels the jobs that
// have not started yet and is returned once in-flight jobs finish.
func Map[T, R any](
	ctx context.Context,
	items []T,
	concurrency int,
	fn func(ctx context.Context, index int, item T) (R, error),
) ([]R, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	results := make([]R, len(items))
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
