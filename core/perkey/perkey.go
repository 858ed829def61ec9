// Package perkey provides a scheduler that serializes work per key
// while allowing work for different keys to execute concurrently.
//
// Every worker is an actor: tasks for one key are messages to the same
// mailbox and run one after another, in submission order. Without
// WithWorkers each key gets its own worker; with it, keys are spread over a
// fixed pool by rendezvous hashing.
package perkey

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/codewandler/actorkit/core/actor"
	"github.com/codewandler/actorkit/internal/hrw"
)

const placementSeed = "perkey"

// Option configures a Scheduler.
type Option func(*config)

type config struct {
	bufferSize int
	workers    int
	actorOpts  []actor.Option
}

// WithBufferSize sets the mailbox capacity per worker (default: 64).
func WithBufferSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// WithWorkers bounds the number of workers. Keys sharing a worker are
// serialized with each other too.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithActorOptions passes options, e.g. a logger or metrics, to every worker.
func WithActorOptions(opts ...actor.Option) Option {
	return func(c *config) {
		c.actorOpts = append(c.actorOpts, opts...)
	}
}

type task struct {
	fn func() error
	*actor.Reply[error]
}

// Scheduler runs tasks (functions) such that for any given key K,
// tasks are executed sequentially, in submission order.
// Tasks for *different* keys can proceed in parallel.
type Scheduler[K comparable] struct {
	mu        sync.Mutex
	workers   map[any]*actor.Handle[task]
	closed    bool
	wg        sync.WaitGroup // tracks in-flight Do operations
	workerIDs []string
	cfg       config
}

// New creates a new Scheduler.
func New[K comparable](opts ...Option) *Scheduler[K] {
	cfg := config{bufferSize: 64}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Scheduler[K]{
		workers: make(map[any]*actor.Handle[task]),
		cfg:     cfg,
	}
	for i := 0; i < cfg.workers; i++ {
		s.workerIDs = append(s.workerIDs, fmt.Sprintf("worker-%d", i))
	}
	return s
}

// Do schedules fn to run for the given key.
// It blocks until fn finishes and returns its error.
// All fn calls for the same key are executed sequentially.
func (s *Scheduler[K]) Do(key K, fn func() error) error {
	return s.DoContext(context.Background(), key, fn)
}

// DoContext is like Do but respects context cancellation.
// If the context is cancelled while waiting to enqueue or waiting for
// completion, it returns the context error. Note that if a task is already
// enqueued, it will still execute even if the caller's context is cancelled.
func (s *Scheduler[K]) DoContext(ctx context.Context, key K, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSchedulerClosed
	}
	s.wg.Add(1)
	w := s.workerLocked(key)
	s.mu.Unlock()
	defer s.wg.Done()

	t := task{fn: fn, Reply: actor.NewReply[error]()}
	if err := w.Send(ctx, t); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return ErrSchedulerClosed
	}

	res, err := t.Wait(ctx)
	switch {
	case err == nil:
		return res
	case errors.Is(err, actor.ErrNoReply):
		return ErrSchedulerClosed
	default:
		return err
	}
}

// Close stops accepting new tasks and shuts down all workers.
// It waits for in-flight Do operations to finish before releasing the
// workers. Tasks still queued are processed before the workers stop.
func (s *Scheduler[K]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	workers := s.workers
	s.workers = nil
	s.mu.Unlock()

	for _, w := range workers {
		w.Release()
	}
	for _, w := range workers {
		<-w.Done()
	}
}

func (s *Scheduler[K]) workerLocked(key K) *actor.Handle[task] {
	var slot any = key
	if len(s.workerIDs) > 0 {
		slot, _ = hrw.Best(fmt.Sprint(key), s.workerIDs, placementSeed)
	}

	w, ok := s.workers[slot]
	if ok {
		return w
	}

	// Close relies on workers draining their queue before they stop.
	opts := append(append([]actor.Option{}, s.cfg.actorOpts...), actor.WithShutdownPolicy(actor.ShutdownOnClose))
	w = actor.NewAsync[task](actor.AsyncStateFunc[task](runTask), s.cfg.bufferSize, opts...)
	s.workers[slot] = w
	return w
}

func runTask(_ context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			t.Send(fmt.Errorf("perkey: task panicked: %v", r))
		}
	}()
	t.Send(t.fn())
}

// ----- Errors -----

// ErrSchedulerClosed is returned when Do is called on a closed scheduler.
var ErrSchedulerClosed = &SchedulerError{"scheduler is closed"}

// SchedulerError is a simple error implementation.
type SchedulerError struct {
	msg string
}

func (e *SchedulerError) Error() string { return e.msg }
