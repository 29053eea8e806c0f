package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerExecutesEnqueuedTasks(t *testing.T) {
	r := NewRunner(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx, 2)

	var ran atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		ok := r.Enqueue(Task{
			Name: "count",
			Run: func(ctx context.Context) error {
				if ran.Add(1) == 5 {
					close(done)
				}
				return nil
			},
		})
		require.True(t, ok)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("only %d of 5 tasks ran", ran.Load())
	}
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	// No workers started, so the queue never drains.
	r := NewRunner(1)

	assert.True(t, r.Enqueue(Task{Name: "first", Run: func(ctx context.Context) error { return nil }}))
	assert.False(t, r.Enqueue(Task{Name: "second", Run: func(ctx context.Context) error { return nil }}))
}

func TestRunnerSurvivesTaskError(t *testing.T) {
	r := NewRunner(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx, 1)

	done := make(chan struct{})
	r.Enqueue(Task{Name: "fails", Run: func(ctx context.Context) error {
		return assert.AnError
	}})
	r.Enqueue(Task{Name: "after", Run: func(ctx context.Context) error {
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not continue past a failing task")
	}
}
