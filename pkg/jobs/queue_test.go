package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitBeforeStart(t *testing.T) {
	q := New("test", func(context.Context, Task) error { return nil }, Config{})
	err := q.Submit(Task{Kind: "noop"})
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestQueueProcessesTasks(t *testing.T) {
	done := make(chan Task, 1)
	q := New("test", func(_ context.Context, task Task) error {
		done <- task
		return nil
	}, Config{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit(Task{Kind: "invalidate", Keys: []string{"tutorials:list"}}))

	select {
	case task := <-done:
		assert.Equal(t, "invalidate", task.Kind)
		assert.NotEmpty(t, task.ID)
		assert.False(t, task.Enqueued.IsZero())
	case <-time.After(time.Second):
		t.Fatal("task was not processed")
	}
}

func TestQueueRetriesFailures(t *testing.T) {
	var calls int32
	succeeded := make(chan struct{})
	q := New("test", func(_ context.Context, task Task) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("redis down")
		}
		close(succeeded)
		return nil
	}, Config{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit(Task{Kind: "invalidate"}))

	select {
	case <-succeeded:
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("task was not retried to success")
	}
}

func TestSubmitWhenFull(t *testing.T) {
	block := make(chan struct{})
	q := New("test", func(context.Context, Task) error {
		<-block
		return nil
	}, Config{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	require.NoError(t, q.Submit(Task{}))
	// the worker may or may not have pulled the first task yet
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = q.Submit(Task{})
	}
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestSubmitAfterDelaysTask(t *testing.T) {
	done := make(chan time.Time, 1)
	q := New("test", func(context.Context, Task) error {
		done <- time.Now()
		return nil
	}, Config{})
	q.Start(context.Background())
	defer q.Stop()

	start := time.Now()
	require.NoError(t, q.SubmitAfter(Task{Kind: "invalidate"}, 30*time.Millisecond))

	select {
	case ran := <-done:
		assert.GreaterOrEqual(t, ran.Sub(start), 30*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("delayed task was not processed")
	}
}

func TestSubmitAfterBeforeStart(t *testing.T) {
	q := New("test", func(context.Context, Task) error { return nil }, Config{})
	assert.ErrorIs(t, q.SubmitAfter(Task{}, time.Millisecond), ErrNotRunning)
}

func TestStopDropsPendingDelayedTasks(t *testing.T) {
	var calls int32
	q := New("test", func(context.Context, Task) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, Config{})
	q.Start(context.Background())

	require.NoError(t, q.SubmitAfter(Task{}, time.Hour))
	q.Stop()
	assert.Zero(t, atomic.LoadInt32(&calls))
}
