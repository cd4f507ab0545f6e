// Package await provides a bounded-wait future: submit work, wait for it
// with a deadline, and fall back to a default value when the deadline passes.
//
// The work itself keeps running after a timeout; its result is dropped.
// Callers that need the work stopped should honor the context handed to it,
// which is canceled when the wait gives up.
package await

import (
	"context"
	"fmt"
	"time"
)

// Future is the pending result of a function started with Go.
type Future[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	value  T
	err    error
}

// Go runs fn in a new goroutine and returns its Future.
// A panic in fn is recovered and reported as the future's error.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("panic: %v", r)
			}
		}()
		f.value, f.err = fn(ctx)
	}()

	return f
}

// Wait blocks until the function returns, the timeout elapses, or ctx is done.
// A timeout <= 0 waits without limit. On timeout or ctx expiry it returns
// fallback, ok=false, and the context given to the function is canceled.
// The function's own error is returned with ok=true.
func (f *Future[T]) Wait(ctx context.Context, timeout time.Duration, fallback T) (value T, ok bool, err error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-f.done:
		f.cancel()
		return f.value, true, f.err
	case <-expired:
		f.cancel()
		return fallback, false, nil
	case <-ctx.Done():
		f.cancel()
		return fallback, false, ctx.Err()
	}
}

// Done is closed when the function has returned.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Within is the one-shot form: start fn and wait at most timeout for it.
func Within[T any](ctx context.Context, timeout time.Duration, fallback T, fn func(context.Context) (T, error)) (T, bool, error) {
	return Go(ctx, fn).Wait(ctx, timeout, fallback)
}
