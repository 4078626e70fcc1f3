package persistence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type handle struct{ id int32 }

func TestLazyConnectsOnceForConcurrentCallers(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	lazy := NewLazy("test", func(ctx context.Context) (*handle, error) {
		n := calls.Add(1)
		<-release
		return &handle{id: n}, nil
	}, nil, time.Second)

	const callers = 20
	results := make([]*handle, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = lazy.Get(context.Background())
		}(i)
	}

	// Let every goroutine reach the in-flight attempt before it completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for i, h := range results {
		require.NoError(t, errs[i])
		require.Same(t, results[0], h)
	}

	again, err := lazy.Get(context.Background())
	require.NoError(t, err)
	require.Same(t, results[0], again)
	require.Equal(t, int32(1), calls.Load())
}

func TestLazyDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32
	lazy := NewLazy("test", func(ctx context.Context) (*handle, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return &handle{id: 2}, nil
	}, nil, time.Second)

	_, err := lazy.Get(context.Background())
	require.EqualError(t, err, "connection refused")

	h, err := lazy.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(2), h.id)
	require.Equal(t, int32(2), calls.Load())
}

func TestLazyCallerCancellationDoesNotAbortAttempt(t *testing.T) {
	release := make(chan struct{})
	lazy := NewLazy("test", func(ctx context.Context) (*handle, error) {
		select {
		case <-release:
			return &handle{id: 1}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lazy.Get(ctx)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	h, err := lazy.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), h.id)
}

func TestLazyConnectTimeout(t *testing.T) {
	lazy := NewLazy("test", func(ctx context.Context) (*handle, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil, 20*time.Millisecond)

	_, err := lazy.Get(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLazyCloseReleasesHandle(t *testing.T) {
	var closed atomic.Int32
	lazy := NewLazy("test", func(ctx context.Context) (*handle, error) {
		return &handle{id: 1}, nil
	}, func(ctx context.Context, h *handle) error {
		closed.Add(1)
		return nil
	}, time.Second)

	require.NoError(t, lazy.Close(context.Background()))
	require.Zero(t, closed.Load())

	_, err := lazy.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, lazy.Close(context.Background()))
	require.Equal(t, int32(1), closed.Load())
}
