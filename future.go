package bootseq

import (
	"context"
	"sync"
	"sync/atomic"
)

// Future is a write-once result slot. It is completed exactly once, either with a value (Complete) or
// with an error (Fail); later writes are ignored. Any number of readers may wait on Done, poll Result
// or attach continuations with OnComplete.
//
// A Future that was failed is "broken": in this package that only happens when the coordination
// machinery itself misbehaves, never because a user action returned an error.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	val       T
	err       error
	callbacks []func(T, error)
}

// NewFuture returns an uncompleted Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Complete sets the value of the Future. It returns false if the Future was already completed.
func (f *Future[T]) Complete(v T) bool {
	return f.settle(v, nil)
}

// Fail breaks the Future with err. It returns false if the Future was already completed.
func (f *Future[T]) Fail(err error) bool {
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.val, f.err = v, err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(v, err)
	}
	return true
}

// Done returns a channel that is closed once the Future has been completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the value and error of the Future without blocking. ok is false while the Future is
// still pending.
func (f *Future[T]) Result() (v T, err error, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val, f.err, f.completed
}

// Await blocks until the Future completes or ctx is done. Cancelling ctx only stops the wait.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		v, err, _ := f.Result()
		return v, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers fn to run once the Future has completed. If it already has, fn runs right away
// on the calling goroutine. Continuations run on the goroutine that completes the Future, in no
// particular order, and must not block.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.val, f.err
	f.mu.Unlock()
	fn(v, err)
}

// whenAll calls fn once every future in fs has completed, with the futures in the order given.
// fn runs on the goroutine completing the last future, or immediately if fs is empty or already done.
// No goroutine is parked while waiting.
func whenAll[T any](fs []*Future[T], fn func([]*Future[T])) {
	if len(fs) == 0 {
		fn(fs)
		return
	}
	var pending atomic.Int64
	pending.Store(int64(len(fs)))
	for _, f := range fs {
		f.OnComplete(func(T, error) {
			if pending.Add(-1) == 0 {
				fn(fs)
			}
		})
	}
}

