// Package persistence holds storage plumbing shared by the database backends.
package persistence

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/observability"
)

// DefaultConnectTimeout bounds a single connection attempt.
const DefaultConnectTimeout = 10 * time.Second

// ConnectFunc opens a backend handle.
type ConnectFunc[T any] func(ctx context.Context) (T, error)

// CloseFunc releases a handle produced by a ConnectFunc.
type CloseFunc[T any] func(ctx context.Context, handle T) error

// Lazy opens a backend handle on first use and shares it with every later caller. Concurrent
// first callers wait on one connection attempt. A failed attempt is not cached, so the next call
// tries again.
type Lazy[T any] struct {
	name    string
	connect ConnectFunc[T]
	close   CloseFunc[T]
	timeout time.Duration

	group singleflight.Group

	mu     sync.RWMutex
	handle T
	ready  bool
}

// NewLazy constructs a Lazy handle. name labels metrics; close may be nil.
func NewLazy[T any](name string, connect ConnectFunc[T], close CloseFunc[T], timeout time.Duration) *Lazy[T] {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	return &Lazy[T]{name: name, connect: connect, close: close, timeout: timeout}
}

// Get returns the shared handle, connecting if needed. The connection attempt itself is not
// cancelled by ctx, so one impatient caller cannot fail the attempt for the others.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if handle, ok := l.cached(); ok {
		return handle, nil
	}

	ch := l.group.DoChan(l.name, func() (any, error) {
		if handle, ok := l.cached(); ok {
			return handle, nil
		}

		connectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		handle, err := l.connect(connectCtx)
		observability.RecordConnect(l.name, err)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.handle, l.ready = handle, true
		l.mu.Unlock()
		return handle, nil
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close releases the handle if one was opened. Later calls to Get reconnect.
func (l *Lazy[T]) Close(ctx context.Context) error {
	l.mu.Lock()
	handle, ready := l.handle, l.ready
	var zero T
	l.handle, l.ready = zero, false
	l.mu.Unlock()

	if !ready || l.close == nil {
		return nil
	}
	return l.close(ctx, handle)
}

func (l *Lazy[T]) cached() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handle, l.ready
}
