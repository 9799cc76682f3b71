package secrets

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-credentials/pkg/credentials"
)

// CachingResolver wraps another resolver and caches successful lookups for a
// short TTL. Intended for remote secret managers to avoid a network round
// trip per resolution.
type CachingResolver struct {
	Resolver Resolver
	TTL      time.Duration

	now   func() time.Time
	mu    sync.Mutex
	cache map[credentials.SecretRef]cacheEntry
}

type cacheEntry struct {
	data    []byte
	expires time.Time
}

// NewCachingResolver builds a resolver that caches results for the provided
// TTL. If ttl <= 0, the inner resolver is returned unchanged.
func NewCachingResolver(inner Resolver, ttl time.Duration) Resolver {
	if ttl <= 0 {
		return inner
	}
	return &CachingResolver{
		Resolver: inner,
		TTL:      ttl,
		now:      time.Now,
		cache:    make(map[credentials.SecretRef]cacheEntry),
	}
}

// Fetch returns the cached payload when fresh; errors from the inner resolver
// are propagated without caching failed lookups.
func (c *CachingResolver) Fetch(ctx context.Context, ref credentials.SecretRef) ([]byte, error) {
	if c == nil || c.Resolver == nil {
		return nil, ErrUnsupported
	}
	now := c.now()

	c.mu.Lock()
	entry, ok := c.cache[ref]
	c.mu.Unlock()
	if ok && entry.expires.After(now) {
		return entry.data, nil
	}

	data, err := c.Resolver.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cache[ref] = cacheEntry{data: data, expires: now.Add(c.TTL)}
	c.mu.Unlock()
	return data, nil
}
