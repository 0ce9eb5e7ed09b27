// Package batch fans per-employee work out over a bounded errgroup and
// collects every outcome, so one failure never cancels the rest of the run.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when a caller passes a limit below one.
const DefaultConcurrency = 8

// Result is the outcome for one input key.
type Result[T any] struct {
	Key   string
	Value T
	Err   error
}

// Run calls fn once per key with at most limit calls in flight. Results are
// returned in key order. fn errors are recorded on the Result and do not stop
// other keys; only ctx cancellation prevents keys from starting.
func Run[T any](ctx context.Context, keys []string, limit int, fn func(ctx context.Context, key string) (T, error)) []Result[T] {
	if limit < 1 {
		limit = DefaultConcurrency
	}

	results := make([]Result[T], len(keys))
	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, key := range keys {
		results[i].Key = key
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		i, key := i, key
		g.Go(func() error {
			v, err := fn(ctx, key)
			results[i].Value = v
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed counts results carrying an error.
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
