package store

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// cachedStore keeps recently read values in an expirable LRU in front of a
// slower backend. Writes go through to the backend first and only then
// refresh the cache, so a failed write never leaves a stale cached value.
type cachedStore struct {
	inner Store
	cache *lru.LRU[string, []byte]
	group string
}

func newCachedStore(inner Store, size int, ttl time.Duration, group string) *cachedStore {
	c := &cachedStore{
		inner: inner,
		cache: lru.NewLRU[string, []byte](size, func(string, []byte) {
			EvictionsTotal.WithLabelValues(group).Inc()
		}, ttl),
		group: group,
	}
	registerEntriesCollector(group, c.cache.Len)
	return c
}

func (c *cachedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, ok := c.cache.Get(key); ok {
		HitsTotal.WithLabelValues(c.group).Inc()
		return val, true, nil
	}
	MissesTotal.WithLabelValues(c.group).Inc()

	val, ok, err := c.inner.Get(ctx, key)
	if err != nil || !ok {
		return val, ok, err
	}
	c.cache.Add(key, val)
	return val, true, nil
}

func (c *cachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := c.inner.Set(ctx, key, value); err != nil {
		c.cache.Remove(key)
		return err
	}
	c.cache.Add(key, value)
	return nil
}

func (c *cachedStore) Delete(ctx context.Context, key string) (bool, error) {
	c.cache.Remove(key)
	return c.inner.Delete(ctx, key)
}

func (c *cachedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return c.inner.Keys(ctx, prefix)
}

// Close unregisters the entries collector and closes the underlying store.
func (c *cachedStore) Close() error {
	unregisterEntriesCollector(c.group)
	return c.inner.Close()
}
