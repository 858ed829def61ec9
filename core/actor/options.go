package actor

import (
	"context"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type (
	// OnPanic is invoked when a handler panics. The panic is contained and the
	// mailbox keeps processing.
	OnPanic func(recovered any, stack []byte, msg any)

	// ShutdownPolicy selects what ends the mailbox task.
	ShutdownPolicy int

	// Option configures an actor at construction.
	Option func(*options)
)

const (
	// ShutdownKeepAlive terminates as soon as the last strong handle is
	// released. Weak handles do not count and buffered messages are abandoned.
	ShutdownKeepAlive ShutdownPolicy = iota
	// ShutdownOnClose terminates once every handle, strong or weak, is
	// released and the buffered messages have been handled.
	ShutdownOnClose
)

func (p ShutdownPolicy) String() string {
	switch p {
	case ShutdownKeepAlive:
		return "keep-alive"
	case ShutdownOnClose:
		return "on-close"
	default:
		return "unknown"
	}
}

type options struct {
	ctx     context.Context
	log     *slog.Logger
	metrics ActorMetrics
	policy  ShutdownPolicy
	id      string
	onPanic OnPanic
}

// WithContext binds the actor to ctx. Cancelling it terminates the mailbox
// task without draining, like the keep-alive trigger. The context is also
// passed to AsyncState handlers.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics sets the metrics sink. Defaults to NopActorMetrics().
func WithMetrics(m ActorMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithShutdownPolicy selects the shutdown trigger. Defaults to ShutdownKeepAlive.
func WithShutdownPolicy(p ShutdownPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithID names the actor in logs and metrics. Defaults to "actor-<nanoid>".
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithOnPanic overrides the handler panic callback.
func WithOnPanic(f OnPanic) Option {
	return func(o *options) { o.onPanic = f }
}

func newOptions(opts []Option) options {
	o := options{policy: ShutdownKeepAlive}
	for _, opt := range opts {
		opt(&o)
	}

	if o.ctx == nil {
		o.ctx = context.Background()
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.metrics == nil {
		o.metrics = NopActorMetrics()
	}
	if o.id == "" {
		o.id = "actor-" + gonanoid.Must(8)
	}
	o.log = o.log.With(slog.String("actor", o.id))
	if o.onPanic == nil {
		log := o.log
		o.onPanic = func(recovered any, stack []byte, msg any) {
			log.Error("actor panicked", slog.Any("recovered", recovered), slog.String("stack", string(stack)), slog.Any("msg", msg))
		}
	}
	return o
}
