// Package pool runs independent tasks with bounded concurrency.
package pool

import (
	"context"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Outcome pairs a task with what running it produced.
type Outcome[T, R any] struct {
	Task   T
	Result R
	Err    error
}

// DefaultWorkers leaves one CPU for the rest of the system.
func DefaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}

// Run calls fn once per task with at most workers calls in flight and
// returns the outcomes in task order. A failing or panicking task never
// stops the others; Run returns only after every task has finished. Tasks
// not yet started when ctx is cancelled fail with the context error.
func Run[T, R any](ctx context.Context, workers int, tasks []T, fn func(context.Context, T) (R, error)) []Outcome[T, R] {
	if workers < 1 {
		workers = DefaultWorkers()
	}

	outcomes := make([]Outcome[T, R], len(tasks))

	// A plain Group: a task error must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(workers)

	for i, task := range tasks {
		g.Go(func() error {
			outcomes[i] = runOne(ctx, task, fn)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func runOne[T, R any](ctx context.Context, task T, fn func(context.Context, T) (R, error)) (out Outcome[T, R]) {
	out.Task = task

	if err := ctx.Err(); err != nil {
		out.Err = errors.Wrap(err, "not started")
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			out.Err = errors.Newf("task panicked: %v", r)
		}
	}()

	out.Result, out.Err = fn(ctx, task)
	return out
}

// Failed counts the outcomes that carry an error.
func Failed[T, R any](outcomes []Outcome[T, R]) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
