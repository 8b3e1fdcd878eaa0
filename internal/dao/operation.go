package dao

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
)

type Error string

// ErrCanceled is returned by Wait for an operation that was cancelled.
const ErrCanceled = Error("operation canceled")

func (e Error) Error() string {
	return string(e)
}

// PanicError carries a value recovered from a panicking transport.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("transport panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Operation is a request running on its own goroutine. Once cancelled its
// outcome is never reported, even if the transport already produced one.
type Operation[T any] struct {
	path     string
	cancel   context.CancelFunc
	done     chan struct{}
	canceled atomic.Bool
	once     sync.Once
	value    T
	err      error
}

// Request starts fetching path into a T.
func Request[T any](ctx context.Context, t Transport, path string, query url.Values) *Operation[T] {
	ctx, cancel := context.WithCancel(ctx)
	op := &Operation[T]{
		path:   path,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go op.run(ctx, t, query)

	return op
}

func (o *Operation[T]) run(ctx context.Context, t Transport, query url.Values) {
	defer close(o.done)
	defer o.cancel()
	defer func() {
		if r := recover(); r != nil {
			o.err = &PanicError{Value: r}
		}
	}()

	var v T
	if err := t.Get(ctx, o.path, query, &v); err != nil {
		o.err = err
		return
	}
	o.value = v
}

// Path returns the requested endpoint.
func (o *Operation[T]) Path() string {
	return o.path
}

// Cancel abandons the operation. Safe to call more than once or after it settled.
func (o *Operation[T]) Cancel() {
	o.once.Do(func() {
		o.canceled.Store(true)
		o.cancel()
	})
}

// Canceled returns true once Cancel was called.
func (o *Operation[T]) Canceled() bool {
	return o.canceled.Load()
}

// Done is closed when the transport call returned.
func (o *Operation[T]) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation settles and returns its outcome.
func (o *Operation[T]) Wait() (T, error) {
	<-o.done
	if o.canceled.Load() {
		var zero T
		return zero, ErrCanceled
	}

	return o.value, o.err
}
