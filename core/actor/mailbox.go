package actor

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Status is the mailbox task state. Terminated is absorbing.
type Status int32

const (
	Running Status = iota
	Terminated
)

func (s Status) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

const (
	reasonKeepAlive = "keep-alive closed"
	reasonClosed    = "mailbox closed"
	reasonContext   = "context done"
)

// mailbox is shared by all handles of one actor. Only the run goroutine
// touches state.
type mailbox[M any] struct {
	id      string
	log     *slog.Logger
	metrics ActorMetrics
	onPanic OnPanic
	policy  ShutdownPolicy

	state AsyncState[M]

	ch chan M
	// keepAlive never carries a value; it is closed when the last strong
	// handle goes away. nil under ShutdownOnClose.
	keepAlive chan struct{}

	strong  atomic.Int64
	senders atomic.Int64

	// mu guards sealed and closing ch. Senders hold it for reading while
	// they enqueue so the final drain sees every accepted message.
	mu     sync.RWMutex
	sealed bool

	stopOnce      sync.Once
	keepAliveOnce sync.Once
	stopping      chan struct{}
	done          chan struct{}
	status        atomic.Int32

	// reportMu orders handle reports against termination so that no
	// per-actor series is written after Terminated was reported.
	reportMu sync.Mutex
}

func newMailbox[M any](state AsyncState[M], capacity int, o options) *mailbox[M] {
	if capacity <= 0 {
		panic(ErrZeroCapacity)
	}

	mb := &mailbox[M]{
		id:       o.id,
		log:      o.log,
		metrics:  o.metrics,
		onPanic:  o.onPanic,
		policy:   o.policy,
		state:    state,
		ch:       make(chan M, capacity),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
	if o.policy == ShutdownKeepAlive {
		mb.keepAlive = make(chan struct{}, 1)
	}
	return mb
}

// send enqueues msg, blocking while the mailbox is full.
func (mb *mailbox[M]) send(ctx context.Context, msg M) error {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	if mb.sealed {
		return &SendError[M]{Msg: msg, Err: ErrMailboxClosed}
	}
	select {
	case <-mb.stopping:
		return &SendError[M]{Msg: msg, Err: ErrMailboxClosed}
	default:
	}

	select {
	case <-mb.stopping:
		return &SendError[M]{Msg: msg, Err: ErrMailboxClosed}
	case <-ctx.Done():
		return &SendError[M]{Msg: msg, Err: ctx.Err()}
	case mb.ch <- msg:
		mb.metrics.MailboxDepth(mb.id, len(mb.ch))
		return nil
	}
}

func (mb *mailbox[M]) trySend(msg M) error {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	if mb.sealed {
		return &SendError[M]{Msg: msg, Err: ErrMailboxClosed}
	}
	select {
	case <-mb.stopping:
		return &SendError[M]{Msg: msg, Err: ErrMailboxClosed}
	default:
	}

	select {
	case mb.ch <- msg:
		mb.metrics.MailboxDepth(mb.id, len(mb.ch))
		return nil
	default:
		return &SendError[M]{Msg: msg, Err: ErrMailboxFull}
	}
}

func (mb *mailbox[M]) stop() {
	mb.stopOnce.Do(func() { close(mb.stopping) })
}

func (mb *mailbox[M]) acquire(strong bool) {
	mb.senders.Add(1)
	if strong {
		mb.strong.Add(1)
	}
	mb.reportHandles()
}

func (mb *mailbox[M]) release(strong bool) {
	if strong && mb.strong.Add(-1) == 0 && mb.keepAlive != nil {
		// Nobody may ask for work any more: fail new sends right away, then
		// let the loop observe the closed keep-alive.
		mb.stop()
		mb.keepAliveOnce.Do(func() { close(mb.keepAlive) })
	}
	if mb.senders.Add(-1) == 0 && mb.policy == ShutdownOnClose {
		mb.mu.Lock()
		if !mb.sealed {
			mb.sealed = true
			close(mb.ch)
		}
		mb.mu.Unlock()
	}
	mb.reportHandles()
}

func (mb *mailbox[M]) reportHandles() {
	mb.reportMu.Lock()
	defer mb.reportMu.Unlock()
	if mb.Status() == Terminated {
		return
	}
	strong := mb.strong.Load()
	mb.metrics.HandlesAlive(mb.id, int(strong), int(mb.senders.Load()-strong))
}

func (mb *mailbox[M]) Status() Status { return Status(mb.status.Load()) }

// run is the mailbox task. It returns once the actor reached Terminated.
func (mb *mailbox[M]) run(ctx context.Context) {
	mb.log.Debug("actor started", slog.String("policy", mb.policy.String()), slog.Int("capacity", cap(mb.ch)))

	for {
		// Shutdown triggers take priority over buffered messages.
		select {
		case _, ok := <-mb.keepAlive:
			if ok {
				panic(ErrKeepAliveProtocol)
			}
			mb.terminate(reasonKeepAlive)
			return
		case <-ctx.Done():
			mb.terminate(reasonContext)
			return
		default:
		}

		select {
		case msg, ok := <-mb.ch:
			if !ok {
				mb.terminate(reasonClosed)
				return
			}
			mb.handle(ctx, msg)

		case _, ok := <-mb.keepAlive:
			if ok {
				panic(ErrKeepAliveProtocol)
			}
			mb.terminate(reasonKeepAlive)
			return

		case <-ctx.Done():
			mb.terminate(reasonContext)
			return
		}
	}
}

func (mb *mailbox[M]) handle(ctx context.Context, msg M) {
	mt := msgTypeOf(msg)
	tmr := mb.metrics.MessageDuration(mt)
	ok := mb.safeHandle(ctx, mt, msg)
	tmr.ObserveDuration()
	mb.metrics.MessageProcessed(mt, ok)
	mb.metrics.MailboxDepth(mb.id, len(mb.ch))

	// The message is consumed; an unanswered reply will never be answered.
	closeReply(msg)
}

func (mb *mailbox[M]) safeHandle(ctx context.Context, mt string, msg M) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			mb.metrics.MessagePanic(mt)
			mb.onPanic(r, debug.Stack(), msg)
			ok = false
		}
	}()
	mb.state.HandleMessage(ctx, msg)
	return true
}

func (mb *mailbox[M]) terminate(reason string) {
	mb.stop()

	// Wait out in-flight senders; afterwards nothing can enter the buffer.
	mb.mu.Lock()
	mb.sealed = true
	mb.mu.Unlock()

	abandoned := 0
	for drained := false; !drained; {
		select {
		case msg, ok := <-mb.ch:
			if !ok {
				drained = true
				continue
			}
			closeReply(msg)
			abandoned++
		default:
			drained = true
		}
	}

	mb.state = nil
	mb.reportMu.Lock()
	mb.status.Store(int32(Terminated))
	mb.metrics.Terminated(mb.id, reason, abandoned)
	mb.reportMu.Unlock()

	if abandoned > 0 {
		mb.log.Warn("actor terminated with unhandled messages", slog.String("reason", reason), slog.Int("abandoned", abandoned))
	} else {
		mb.log.Debug("actor terminated", slog.String("reason", reason))
	}
	close(mb.done)
}

func closeReply(msg any) {
	if rc, ok := msg.(ReplyCarrier); ok {
		rc.CloseReply()
	}
}
