package actor

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroCapacity is raised (as a panic) when an actor is constructed with
	// a mailbox that could never hold a message.
	ErrZeroCapacity = errors.New("actor: mailbox capacity must be greater than zero")

	// ErrMailboxClosed means the mailbox task terminated, or is about to, and
	// no longer accepts messages.
	ErrMailboxClosed = errors.New("actor: mailbox closed")

	// ErrMailboxFull is returned by TrySend when the mailbox is at capacity.
	ErrMailboxFull = errors.New("actor: mailbox full")

	// ErrHandleReleased is returned when a handle is used after Release.
	ErrHandleReleased = errors.New("actor: handle released")

	// ErrNoReply is returned by Reply.Wait when the replying side was closed
	// without a value, e.g. because the message was dropped unhandled.
	ErrNoReply = errors.New("actor: no reply will arrive")

	// ErrKeepAliveProtocol is the panic value used when the keep-alive channel
	// carries a payload. It is never returned to callers.
	ErrKeepAliveProtocol = errors.New("actor: keep-alive channel received a value")
)

// SendError is returned when a message could not be enqueued. It hands the
// undelivered message back to the caller.
type SendError[M any] struct {
	Msg M
	Err error
}

func (e *SendError[M]) Error() string {
	return fmt.Sprintf("send failed: %v", e.Err)
}

func (e *SendError[M]) Unwrap() error { return e.Err }

// Undelivered extracts the message carried by a *SendError[M] in err's chain.
func Undelivered[M any](err error) (msg M, ok bool) {
	var se *SendError[M]
	if errors.As(err, &se) {
		return se.Msg, true
	}
	return msg, false
}
