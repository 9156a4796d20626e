// Package memory provides in-process cache implementations used when Redis is
// not configured. Entries do not survive a restart, which for short-lived
// upstream tokens only costs one extra token request.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bkinvest/botboard/internal/domain"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// TokenCache is a mutex-guarded map with per-key expiry.
type TokenCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

var _ domain.TokenCache = (*TokenCache)(nil)

// NewTokenCache creates an empty in-memory token cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// GetToken returns the cached token for key, or domain.ErrNotFound when the
// key is missing or past its TTL. Expired entries are removed on read.
func (c *TokenCache) GetToken(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", domain.ErrNotFound
	}
	return e.value, nil
}

// SetToken stores token under key. A non-positive ttl stores it without
// expiry.
func (c *TokenCache) SetToken(_ context.Context, key, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: token}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}
