package actor

import (
	"context"
	"errors"
	"sync"
)

type (
	// ReplyCarrier is implemented by messages that embed a reply channel.
	// The mailbox calls CloseReply once a message has been consumed, handled
	// or abandoned, so a waiter never blocks on a reply that cannot come.
	// A handler must therefore answer before it returns: a reply handed to
	// another goroutine is already closed when that goroutine gets to it.
	ReplyCarrier interface {
		CloseReply()
	}

	// Sender is implemented by Handle and WeakHandle.
	Sender[M any] interface {
		Send(ctx context.Context, msg M) error
	}
)

// Reply is a single-use reply channel. The state handler resolves it with
// Send; the asker waits on it with Wait. Embed a *Reply[T] in a message to
// make the message a ReplyCarrier.
type Reply[T any] struct {
	ch   chan T
	once sync.Once
}

func NewReply[T any]() *Reply[T] {
	return &Reply[T]{ch: make(chan T, 1)}
}

// Send delivers v. It reports false if the reply was already resolved or
// closed, including when the asker stopped waiting.
func (r *Reply[T]) Send(v T) (sent bool) {
	if r == nil {
		return false
	}
	r.once.Do(func() {
		r.ch <- v
		sent = true
	})
	return sent
}

// CloseReply abandons the reply. A pending Wait returns ErrNoReply.
// It is a no-op once the reply was sent.
func (r *Reply[T]) CloseReply() {
	if r == nil {
		return
	}
	r.once.Do(func() { close(r.ch) })
}

// Wait blocks until the reply is sent or closed, or ctx is done. It must be
// called at most once. Cancelling ctx abandons the reply, so a late Send
// reports false.
func (r *Reply[T]) Wait(ctx context.Context) (v T, err error) {
	select {
	case got, ok := <-r.ch:
		return replyResult(got, ok)
	default:
	}

	select {
	case got, ok := <-r.ch:
		return replyResult(got, ok)
	case <-ctx.Done():
		r.CloseReply()
		return v, ctx.Err()
	}
}

func replyResult[T any](v T, ok bool) (T, error) {
	if !ok {
		return v, ErrNoReply
	}
	return v, nil
}

// Ask performs a request/response round trip: build the message around a
// fresh reply, enqueue it, wait for the answer. An enqueue that fails because
// ctx is done returns ctx.Err(); any other failed enqueue closes the reply,
// so it surfaces as ErrNoReply from the wait.
func Ask[M any, R any](ctx context.Context, to Sender[M], build func(reply *Reply[R]) M) (R, error) {
	reply := NewReply[R]()

	if err := to.Send(ctx, build(reply)); err != nil {
		reply.CloseReply()
		if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
			var zero R
			return zero, cerr
		}
	}

	return reply.Wait(ctx)
}

var _ ReplyCarrier = (*Reply[any])(nil)
