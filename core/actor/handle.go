package actor

import (
	"context"
	"runtime"
	"sync/atomic"
)

// handleRef is one counted reference to a mailbox. It is kept apart from
// the handle so a GC cleanup can release it without resurrecting the handle.
type handleRef struct {
	released atomic.Bool
	release  func()
}

func (r *handleRef) drop() bool {
	if r.released.CompareAndSwap(false, true) {
		r.release()
		return true
	}
	return false
}

// Handle is a strong reference to an actor. While at least one strong handle
// is alive the actor keeps running (under ShutdownKeepAlive). Handles never
// reach the state; they only enqueue messages.
//
// Release a handle when done with it. A handle that becomes unreachable
// without Release is released by the garbage collector eventually.
type Handle[M any] struct {
	mb      *mailbox[M]
	ref     *handleRef
	cleanup runtime.Cleanup
}

// WeakHandle can enqueue messages but does not keep the actor alive.
type WeakHandle[M any] struct {
	mb      *mailbox[M]
	ref     *handleRef
	cleanup runtime.Cleanup
}

// New spawns the mailbox task for state and returns the first strong handle.
// It panics with ErrZeroCapacity if capacity is not positive.
func New[M any](state State[M], capacity int, opts ...Option) *Handle[M] {
	return spawn[M](syncState[M]{s: state}, capacity, opts)
}

// NewAsync is New for state whose handler may block.
func NewAsync[M any](state AsyncState[M], capacity int, opts ...Option) *Handle[M] {
	return spawn(state, capacity, opts)
}

func spawn[M any](state AsyncState[M], capacity int, opts []Option) *Handle[M] {
	o := newOptions(opts)
	mb := newMailbox(state, capacity, o)
	h := newHandle(mb)
	go mb.run(o.ctx)
	return h
}

func newHandle[M any](mb *mailbox[M]) *Handle[M] {
	mb.acquire(true)
	ref := &handleRef{release: func() { mb.release(true) }}
	h := &Handle[M]{mb: mb, ref: ref}
	h.cleanup = runtime.AddCleanup(h, func(r *handleRef) { r.drop() }, ref)
	return h
}

func newWeakHandle[M any](mb *mailbox[M]) *WeakHandle[M] {
	mb.acquire(false)
	ref := &handleRef{release: func() { mb.release(false) }}
	w := &WeakHandle[M]{mb: mb, ref: ref}
	w.cleanup = runtime.AddCleanup(w, func(r *handleRef) { r.drop() }, ref)
	return w
}

// ID returns the actor ID shared by all handles of the actor.
func (h *Handle[M]) ID() string { return h.mb.id }

// Clone returns a new strong handle with its own lifetime.
func (h *Handle[M]) Clone() *Handle[M] {
	h.mustBeLive()
	return newHandle(h.mb)
}

// Downgrade returns a weak handle. It does not extend the actor's life.
func (h *Handle[M]) Downgrade() *WeakHandle[M] {
	h.mustBeLive()
	return newWeakHandle(h.mb)
}

// Send enqueues msg, blocking while the mailbox is full. Acceptance does not
// mean the message was handled. On failure the error is a *SendError[M]
// carrying msg.
func (h *Handle[M]) Send(ctx context.Context, msg M) error {
	if h.ref.released.Load() {
		return &SendError[M]{Msg: msg, Err: ErrHandleReleased}
	}
	err := h.mb.send(ctx, msg)
	runtime.KeepAlive(h)
	return err
}

// TrySend enqueues msg without blocking. It fails with ErrMailboxFull when
// the mailbox is at capacity.
func (h *Handle[M]) TrySend(msg M) error {
	if h.ref.released.Load() {
		return &SendError[M]{Msg: msg, Err: ErrHandleReleased}
	}
	err := h.mb.trySend(msg)
	runtime.KeepAlive(h)
	return err
}

// Release drops this handle. It is idempotent.
func (h *Handle[M]) Release() {
	if h.ref.drop() {
		h.cleanup.Stop()
	}
}

// Done is closed once the mailbox task terminated.
func (h *Handle[M]) Done() <-chan struct{} { return h.mb.done }

// Status reports whether the mailbox task is still running.
func (h *Handle[M]) Status() Status { return h.mb.Status() }

func (h *Handle[M]) mustBeLive() {
	if h.ref.released.Load() {
		panic(ErrHandleReleased)
	}
}

func (w *WeakHandle[M]) ID() string { return w.mb.id }

// Clone returns a new weak handle with its own lifetime.
func (w *WeakHandle[M]) Clone() *WeakHandle[M] {
	if w.ref.released.Load() {
		panic(ErrHandleReleased)
	}
	return newWeakHandle(w.mb)
}

// Send enqueues msg like Handle.Send. Once the actor terminated it fails
// with ErrMailboxClosed.
func (w *WeakHandle[M]) Send(ctx context.Context, msg M) error {
	if w.ref.released.Load() {
		return &SendError[M]{Msg: msg, Err: ErrHandleReleased}
	}
	err := w.mb.send(ctx, msg)
	runtime.KeepAlive(w)
	return err
}

func (w *WeakHandle[M]) TrySend(msg M) error {
	if w.ref.released.Load() {
		return &SendError[M]{Msg: msg, Err: ErrHandleReleased}
	}
	err := w.mb.trySend(msg)
	runtime.KeepAlive(w)
	return err
}

func (w *WeakHandle[M]) Release() {
	if w.ref.drop() {
		w.cleanup.Stop()
	}
}

func (w *WeakHandle[M]) Done() <-chan struct{} { return w.mb.done }

func (w *WeakHandle[M]) Status() Status { return w.mb.Status() }

var (
	_ Sender[any] = (*Handle[any])(nil)
	_ Sender[any] = (*WeakHandle[any])(nil)
)
