// Package cache provides an in-memory LRU cache whose entries are owned by
// a single actor. Get, Put and Delete are messages to that actor, so the
// cache needs no locks and is safe for concurrent use.
//
//	c := cache.NewLRU(cache.LRUOpts{Size: 1024})
//	defer c.Close()
//
//	c.Put("user:1", u, cache.WithTTL(time.Minute))
//	v, ok := c.Get("user:1")
//
// Concurrent misses for the same key are loaded once:
//
//	v, err := c.GetOrLoad(ctx, "user:1", func(ctx context.Context) (any, error) {
//	    return db.LoadUser(ctx, "1")
//	})
package cache
