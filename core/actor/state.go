package actor

import "context"

type (
	// State is the synchronous capability: HandleMessage consumes one message
	// and runs to completion without blocking on external I/O.
	State[M any] interface {
		HandleMessage(msg M)
	}

	// AsyncState is the asynchronous capability: HandleMessage may block, for
	// example on a network call. The mailbox waits for it to return before
	// the next message is dequeued, so handling never overlaps.
	AsyncState[M any] interface {
		HandleMessage(ctx context.Context, msg M)
	}

	// StateFunc adapts a plain function to State.
	StateFunc[M any] func(msg M)

	// AsyncStateFunc adapts a plain function to AsyncState.
	AsyncStateFunc[M any] func(ctx context.Context, msg M)
)

func (f StateFunc[M]) HandleMessage(msg M) { f(msg) }

func (f AsyncStateFunc[M]) HandleMessage(ctx context.Context, msg M) { f(ctx, msg) }

// syncState lets the run loop drive both capabilities through one signature.
type syncState[M any] struct {
	s State[M]
}

func (s syncState[M]) HandleMessage(_ context.Context, msg M) { s.s.HandleMessage(msg) }

var (
	_ State[any]      = StateFunc[any](nil)
	_ AsyncState[any] = AsyncStateFunc[any](nil)
	_ AsyncState[any] = syncState[any]{}
)
