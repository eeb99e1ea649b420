package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultWorkers(), 1)
}

func TestRun_PreservesOrder(t *testing.T) {
	tasks := []int{5, 1, 4, 2, 3}

	outcomes := Run(context.Background(), 3, tasks, func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * n, nil
	})

	require.Len(t, outcomes, len(tasks))
	for i, o := range outcomes {
		assert.Equal(t, tasks[i], o.Task)
		assert.Equal(t, tasks[i]*tasks[i], o.Result)
		assert.NoError(t, o.Err)
	}
	assert.Equal(t, 0, Failed(outcomes))
}

func TestRun_BoundsConcurrency(t *testing.T) {
	const workers = 2
	var inFlight, peak atomic.Int32

	tasks := make([]int, 12)
	Run(context.Background(), workers, tasks, func(context.Context, int) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestRun_FailuresDoNotStopSiblings(t *testing.T) {
	tasks := []string{"ok-1", "fail", "ok-2", "panic", "ok-3"}
	var calls atomic.Int32

	outcomes := Run(context.Background(), 2, tasks, func(_ context.Context, s string) (string, error) {
		calls.Add(1)
		switch s {
		case "fail":
			return "", errors.New("boom")
		case "panic":
			panic("kaboom")
		}
		return s + " done", nil
	})

	assert.Equal(t, int32(len(tasks)), calls.Load())
	assert.Equal(t, 2, Failed(outcomes))

	assert.Equal(t, "ok-1 done", outcomes[0].Result)
	assert.EqualError(t, outcomes[1].Err, "boom")
	assert.Equal(t, "ok-2 done", outcomes[2].Result)
	require.Error(t, outcomes[3].Err)
	assert.Contains(t, outcomes[3].Err.Error(), "kaboom")
	assert.Equal(t, "ok-3 done", outcomes[4].Result)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	outcomes := Run(ctx, 2, []int{1, 2, 3}, func(context.Context, int) (int, error) {
		calls.Add(1)
		return 0, nil
	})

	assert.Equal(t, int32(0), calls.Load())
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}

func TestRun_NonPositiveWorkersUsesDefault(t *testing.T) {
	outcomes := Run(context.Background(), 0, []int{1, 2}, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	assert.Equal(t, 0, Failed(outcomes))
	assert.Len(t, outcomes, 2)
}

func TestRun_NoTasks(t *testing.T) {
	outcomes := Run(context.Background(), 4, nil, func(context.Context, int) (int, error) {
		t.Fatal("fn must not be called")
		return 0, nil
	})
	assert.Empty(t, outcomes)
}
