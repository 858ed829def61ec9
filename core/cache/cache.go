package cache

import (
	"context"
	"time"
)

type PutOptions struct {
	TTL time.Duration
}

type PutOption func(*PutOptions)

// WithTTL expires the entry after ttl. Zero means no expiry.
func WithTTL(ttl time.Duration) PutOption {
	return func(o *PutOptions) {
		o.TTL = ttl
	}
}

// LoadFunc produces the value for a missing key.
type LoadFunc func(ctx context.Context) (any, error)

type Cache interface {
	Get(key string) (any, bool)
	Put(key string, val any, opts ...PutOption)
	Delete(key string)
}

// TypedCache narrows a Cache to values of type T. Values of another type
// read as misses.
type TypedCache[T any] struct {
	c Cache
}

func NewTyped[T any](c Cache) *TypedCache[T] { return &TypedCache[T]{c: c} }

func (t *TypedCache[T]) Get(key string) (out T, ok bool) {
	v, found := t.c.Get(key)
	if !found {
		return out, false
	}
	out, ok = v.(T)
	return out, ok
}

func (t *TypedCache[T]) Put(key string, val T, opts ...PutOption) {
	t.c.Put(key, val, opts...)
}

func (t *TypedCache[T]) Delete(key string) {
	t.c.Delete(key)
}
