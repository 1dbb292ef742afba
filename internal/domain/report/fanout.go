package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type outcome[R any] struct {
	value R
	err   error
}

// fanOut runs fn for every item with at most limit calls in flight. Results
// are stored by input position, so completion order never matters. A failing
// or panicking call only affects its own slot.
func fanOut[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) []outcome[R] {
	results := make([]outcome[R], len(items))
	if len(items) == 0 {
		return results
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = outcome[R]{err: fmt.Errorf("%w: %v", ErrTaskPanicked, r)}
				}
			}()
			value, err := fn(ctx, item)
			results[i] = outcome[R]{value: value, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
