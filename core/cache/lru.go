package cache

import (
	"container/list"
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/codewandler/actorkit/core/actor"
)

type LRUOpts struct {
	// Size is the maximum number of entries. Defaults to 128.
	Size int
	// MailboxSize is the capacity of the owning actor's mailbox. Defaults to 64.
	MailboxSize int
	Logger      *slog.Logger
	Metrics     actor.ActorMetrics
}

type entry struct {
	key       string
	val       any
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type getResp struct {
	val any
	ok  bool
}

type (
	lruMsg interface{ apply(s *lruState) }

	getReq struct {
		key string
		*actor.Reply[getResp]
	}
	putReq struct {
		key string
		val any
		ttl time.Duration
	}
	deleteReq struct{ key string }
	lenReq    struct{ *actor.Reply[int] }
)

// lruState is only ever touched by the cache actor.
type lruState struct {
	size  int
	ll    *list.List
	items map[string]*list.Element
	now   func() time.Time
}

func (s *lruState) HandleMessage(msg lruMsg) { msg.apply(s) }

func (m getReq) apply(s *lruState) {
	ele, ok := s.items[m.key]
	if !ok {
		m.Send(getResp{})
		return
	}
	e := ele.Value.(*entry)
	if e.expired(s.now()) {
		s.remove(ele)
		m.Send(getResp{})
		return
	}
	s.ll.MoveToFront(ele)
	m.Send(getResp{val: e.val, ok: true})
}

func (m putReq) apply(s *lruState) {
	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = s.now().Add(m.ttl)
	}

	if ele, ok := s.items[m.key]; ok {
		s.ll.MoveToFront(ele)
		e := ele.Value.(*entry)
		e.val = m.val
		e.expiresAt = expiresAt
		return
	}

	s.items[m.key] = s.ll.PushFront(&entry{key: m.key, val: m.val, expiresAt: expiresAt})
	if s.ll.Len() > s.size {
		if last := s.ll.Back(); last != nil {
			s.remove(last)
		}
	}
}

func (m deleteReq) apply(s *lruState) {
	if ele, ok := s.items[m.key]; ok {
		s.remove(ele)
	}
}

func (m lenReq) apply(s *lruState) { m.Send(s.ll.Len()) }

func (s *lruState) remove(ele *list.Element) {
	s.ll.Remove(ele)
	delete(s.items, ele.Value.(*entry).key)
}

// LRU is a size-bounded cache with optional per-entry TTL.
type LRU struct {
	h     *actor.Handle[lruMsg]
	loads singleflight.Group
}

func NewLRU(opts LRUOpts) *LRU {
	if opts.Size <= 0 {
		opts.Size = 128
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = 64
	}

	aopts := []actor.Option{actor.WithMetrics(opts.Metrics)}
	if opts.Logger != nil {
		aopts = append(aopts, actor.WithLogger(opts.Logger))
	}

	st := &lruState{
		size:  opts.Size,
		ll:    list.New(),
		items: make(map[string]*list.Element),
		now:   time.Now,
	}
	return &LRU{h: actor.New[lruMsg](st, opts.MailboxSize, aopts...)}
}

// Get returns the value for key. A closed cache always misses.
func (l *LRU) Get(key string) (any, bool) {
	res, err := actor.Ask(context.Background(), l.h, func(r *actor.Reply[getResp]) lruMsg {
		return getReq{key: key, Reply: r}
	})
	if err != nil {
		return nil, false
	}
	return res.val, res.ok
}

// Put stores val under key. It is a no-op on a closed cache.
func (l *LRU) Put(key string, val any, opts ...PutOption) {
	po := PutOptions{}
	for _, opt := range opts {
		opt(&po)
	}
	_ = l.h.Send(context.Background(), putReq{key: key, val: val, ttl: po.TTL})
}

func (l *LRU) Delete(key string) {
	_ = l.h.Send(context.Background(), deleteReq{key: key})
}

// Len returns the number of entries, expired ones included until touched.
func (l *LRU) Len() int {
	n, _ := actor.Ask(context.Background(), l.h, func(r *actor.Reply[int]) lruMsg { return lenReq{r} })
	return n
}

// GetOrLoad returns the cached value for key or loads, stores and returns
// it. Concurrent misses for the same key share a single load.
func (l *LRU) GetOrLoad(ctx context.Context, key string, load LoadFunc, opts ...PutOption) (any, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err, _ := l.loads.Do(key, func() (any, error) {
		if v, ok := l.Get(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		l.Put(key, v, opts...)
		return v, nil
	})
	return v, err
}

// Close stops the cache actor and waits for it to terminate. Later calls
// miss or do nothing.
func (l *LRU) Close() {
	l.h.Release()
	<-l.h.Done()
}

var _ Cache = (*LRU)(nil)
