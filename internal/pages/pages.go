// Package pages fans a per-page operation out across a bounded set of worker
// goroutines and fans the results back in, preserving page order regardless
// of completion order.
package pages

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Result is the tagged outcome of one page operation. A failed page carries
// the zero value of T together with the failure reason, so the aggregation
// layer can distinguish "empty page" from "failed to process".
type Result[T any] struct {
	Value T
	Err   error
}

// Options configures one fan-out call.
type Options struct {
	// Workers bounds the number of concurrently running page operations.
	// Values below 1 are treated as 1.
	Workers int

	// SequentialBelow skips the worker pool entirely when the page count is
	// at or below this threshold and FastMode is off. Behaviorally identical
	// in content, it just avoids goroutine overhead for small jobs.
	SequentialBelow int

	// FastMode forces parallel processing even for small page counts.
	FastMode bool

	// Logger receives a warning per failed page. Defaults to slog.Default.
	Logger *slog.Logger
}

// Map runs fn for indices 0..n-1 and returns a length-n slice where
// results[i] is the outcome of fn(ctx, i), independent of which worker
// finished first. A failing or panicking operation never aborts its
// siblings; its slot records the error and the batch always completes.
func Map[T any](ctx context.Context, n int, opts Options, fn func(ctx context.Context, i int) (T, error)) []Result[T] {
	if n <= 0 {
		return nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Pre-allocate so each operation writes only its own index; no further
	// synchronization between units is needed.
	results := make([]Result[T], n)

	run := func(i int) {
		v, err := invoke(ctx, i, fn)
		if err != nil {
			logger.Warn("page operation failed",
				"page", i+1,
				"error", err)
		}
		results[i] = Result[T]{Value: v, Err: err}
	}

	if n <= opts.SequentialBelow && !opts.FastMode {
		for i := 0; i < n; i++ {
			run(i)
		}
		return results
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			run(i)
			return nil
		})
	}
	// The group never carries an error; failures live in the result slots.
	_ = g.Wait()

	return results
}

// invoke shields the batch from a panicking page operation.
func invoke[T any](ctx context.Context, i int, fn func(ctx context.Context, i int) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: panic: %v", i+1, r)
		}
	}()
	return fn(ctx, i)
}

// Failed counts the results that carry an error.
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Values strips the error tags, substituting the zero value for failed pages.
func Values[T any](results []Result[T]) []T {
	values := make([]T, len(results))
	for i, r := range results {
		values[i] = r.Value
	}
	return values
}
