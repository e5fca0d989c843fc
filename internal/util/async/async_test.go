package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParallel_Success(t *testing.T) {
	t.Parallel()
	var count atomic.Int32

	tasks := []Task{
		{Name: "task1", Func: func(_ context.Context) error { count.Add(1); return nil }},
		{Name: "task2", Func: func(_ context.Context) error { count.Add(1); return nil }},
		{Name: "task3", Func: func(_ context.Context) error { count.Add(1); return nil }},
	}

	require.NoError(t, RunParallel(context.Background(), tasks, false))
	assert.Equal(t, int32(3), count.Load())
}

func TestRunParallel_EmptyTasks(t *testing.T) {
	t.Parallel()
	assert.NoError(t, RunParallel(context.Background(), nil, false))
	assert.NoError(t, RunParallel(context.Background(), []Task{}, true))
}

func TestRunParallel_WaitsForAllTasks(t *testing.T) {
	t.Parallel()
	var finished atomic.Bool

	tasks := []Task{
		{Name: "fast", Func: func(_ context.Context) error { return errors.New("boom") }},
		{Name: "slow", Func: func(_ context.Context) error {
			time.Sleep(20 * time.Millisecond)
			finished.Store(true)
			return nil
		}},
	}

	err := RunParallel(context.Background(), tasks, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fast: boom")
	assert.True(t, finished.Load(), "slow task should complete before RunParallel returns")
}

func TestRunParallel_JoinsAllErrors(t *testing.T) {
	t.Parallel()
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	tasks := []Task{
		{Name: "a", Func: func(_ context.Context) error { return errA }},
		{Name: "b", Func: func(_ context.Context) error { return errB }},
	}

	err := RunParallel(context.Background(), tasks, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestRunParallel_SequentialStopsAtFirstError(t *testing.T) {
	t.Parallel()
	var executed []string

	tasks := []Task{
		{Name: "first", Func: func(_ context.Context) error { executed = append(executed, "first"); return nil }},
		{Name: "second", Func: func(_ context.Context) error { return errors.New("broken") }},
		{Name: "third", Func: func(_ context.Context) error { executed = append(executed, "third"); return nil }},
	}

	err := RunParallel(context.Background(), tasks, true)
	require.Error(t, err)
	assert.Equal(t, "second: broken", err.Error())
	assert.Equal(t, []string{"first"}, executed)
}
