package async

import (
	"context"
	"fmt"
	"time"
)

// Future holds the eventual result of a function started by Async.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await blocks until the function completes and returns its result.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout is Await bounded by timeout. On expiry it returns ErrTimeout;
// the underlying function keeps running.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-timer.C:
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the function has finished, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async runs fn(ctx, param) in its own goroutine. If ctx is already done the
// function is not called and the future completes with ctx.Err(). A panic in
// fn completes the future with an error wrapping ErrPanic.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero U
				f.result = zero
				f.err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll waits for the futures in order and stops at the first error,
// returning the results gathered so far.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	for i, future := range futures {
		result, err := future.Await()
		results[i] = result
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Outcome is one future's result and error as collected by Settle.
type Outcome[U any] struct {
	Value U
	Err   error
}

// Settle waits for every future and returns their outcomes index-aligned
// with the input. One failing future never hides the others.
func Settle[U any](futures ...*Future[U]) []Outcome[U] {
	out := make([]Outcome[U], len(futures))
	for i, future := range futures {
		v, err := future.Await()
		out[i] = Outcome[U]{Value: v, Err: err}
	}
	return out
}
