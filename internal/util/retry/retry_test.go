package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_Success(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, WithInitialDelay(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_MaxRetries(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("persistent error")
	}, WithMaxRetries(2), WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestDo_FatalErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	attempts := 0
	cause := errors.New("terraform output missing")

	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return Fatal(cause)
	}, WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, cause)
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0

	err := Do(ctx, func(context.Context) error {
		attempts++
		return errors.New("error")
	}, WithInitialDelay(time.Second))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestFatal_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Fatal(nil))
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(errors.New("plain")))
}
