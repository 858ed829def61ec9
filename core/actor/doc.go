// Package actor provides a single-owner actor runtime: a piece of state is
// moved into one goroutine, the mailbox task, and is only ever mutated by
// handling messages from a bounded mailbox, one at a time.
//
// Callers never touch the state. They hold handles and enqueue messages.
//
// # Creating Actors
//
// Implement [State] (handler runs to completion) or [AsyncState] (handler may
// block on I/O) and spawn it:
//
//	type counter struct{ next uint32 }
//
//	type nextID struct{ *actor.Reply[uint32] }
//
//	func (c *counter) HandleMessage(msg nextID) {
//	    msg.Send(c.next)
//	    c.next++
//	}
//
//	h := actor.New[nextID](&counter{}, 8)
//	defer h.Release()
//
// A capacity of zero is a configuration error and panics with
// [ErrZeroCapacity].
//
// # Sending Messages
//
// [Handle.Send] blocks while the mailbox is full and fails with a
// [*SendError] that hands the message back once the actor is gone. For
// request/response, embed a [*Reply] in the message and use [Ask]:
//
//	id, err := actor.Ask(ctx, h, func(r *actor.Reply[uint32]) nextID { return nextID{r} })
//
// A message that is consumed or abandoned without an answer has its reply
// closed, so the wait fails with [ErrNoReply] instead of hanging. The reply
// is closed as soon as the handler returns, so answer it from the handler,
// not from a goroutine the handler started.
//
// # Strong and Weak Handles
//
// [Handle] is strong: [Handle.Clone] adds another owner, [Handle.Downgrade]
// returns a [WeakHandle] that can enqueue but does not keep the actor alive.
// Go has no destructors, so handles are dropped with Release.
//
// # Shutdown
//
// With [ShutdownKeepAlive] (the default) the mailbox task terminates as soon
// as the last strong handle is released, without handling what is still
// buffered. With [ShutdownOnClose] it terminates after every handle, weak
// ones included, is released and the buffer has been drained. Either way,
// <-h.Done() waits for termination and later sends fail with
// [ErrMailboxClosed].
package actor
