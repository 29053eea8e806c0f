package prompt

import (
	"context"
	"log"
	"sync"
	"time"
)

// FetchFunc loads the current template body from its source of truth.
type FetchFunc func(ctx context.Context) (string, error)

// TemplateCache holds one fetched template body with its fetch time behind a
// TTL. It replaces a module-level cached variable so tests can control time
// and invalidate deterministically.
type TemplateCache struct {
	mu        sync.Mutex
	value     string
	fetchedAt time.Time
	fetch     FetchFunc
	now       func() time.Time
}

func NewTemplateCache(fetch FetchFunc) *TemplateCache {
	return &TemplateCache{fetch: fetch, now: time.Now}
}

// GetOrRefresh returns the cached body while it is younger than ttl,
// refreshing otherwise. When a refresh fails and a stale value exists, the
// stale value is served and the failure only logged.
func (c *TemplateCache) GetOrRefresh(ctx context.Context, ttl time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != "" && c.now().Sub(c.fetchedAt) < ttl {
		return c.value, nil
	}

	v, err := c.fetch(ctx)
	if err != nil {
		if c.value != "" {
			log.Printf("prompt: template refresh failed, serving stale copy: %v", err)
			return c.value, nil
		}
		return "", err
	}

	c.value = v
	c.fetchedAt = c.now()
	return v, nil
}

// Invalidate drops the cached value; the next read refetches.
func (c *TemplateCache) Invalidate() {
	c.mu.Lock()
	c.value = ""
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
