package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoongWonSeo/ws-sync/pkg/async"
)

func TestRun_Completes(t *testing.T) {
	t.Parallel()

	h := async.Run(context.Background(), func(ctx context.Context) error {
		return nil
	})

	require.NoError(t, h.Await())
	assert.True(t, h.IsComplete())
}

func TestRun_ReturnsError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	h := async.Run(context.Background(), func(ctx context.Context) error {
		return wantErr
	})

	assert.ErrorIs(t, h.Await(), wantErr)
}

func TestHandle_Cancel(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	h := async.Run(context.Background(), func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	h.Cancel()

	assert.ErrorIs(t, h.Await(), context.Canceled)
}

func TestHandle_PreCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	h := async.Run(ctx, func(ctx context.Context) error {
		ran = true
		return nil
	})

	assert.ErrorIs(t, h.Await(), context.Canceled)
	assert.False(t, ran)
}

func TestHandle_AwaitWithTimeout(t *testing.T) {
	t.Parallel()

	h := async.Run(context.Background(), func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})
	defer h.Cancel()

	assert.ErrorIs(t, h.AwaitWithTimeout(20*time.Millisecond), async.ErrTimeout)
}

func TestHandle_NotStarted(t *testing.T) {
	t.Parallel()

	h := async.New(func(ctx context.Context) error { return nil })

	assert.ErrorIs(t, h.Await(), async.ErrNotStarted)
	assert.False(t, h.IsComplete())
}

func TestHandle_StartAfterRegistration(t *testing.T) {
	t.Parallel()

	registry := make(map[string]*async.Handle)
	done := make(chan struct{})

	h := async.New(func(ctx context.Context) error {
		defer close(done)
		// The handle must already be visible to the function's cleanup.
		if registry["job"] == nil {
			return errors.New("handle not registered before start")
		}
		return nil
	})
	registry["job"] = h
	h.Start(context.Background())

	<-done
	require.NoError(t, h.Await())
}
