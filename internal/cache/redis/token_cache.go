package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bkinvest/botboard/internal/domain"
)

// TokenCache implements domain.TokenCache with plain string keys under the
// "token:" prefix. The TTL is enforced by Redis key expiry, so replicas and
// restarts share one upstream token instead of each minting their own.
type TokenCache struct {
	rdb *redis.Client
}

// NewTokenCache creates a TokenCache backed by the given Client.
func NewTokenCache(c *Client) *TokenCache {
	return &TokenCache{rdb: c.Underlying()}
}

func tokenKey(key string) string {
	return "token:" + key
}

// GetToken returns the cached token for key, or domain.ErrNotFound when the
// key is missing or expired.
func (tc *TokenCache) GetToken(ctx context.Context, key string) (string, error) {
	val, err := tc.rdb.Get(ctx, tokenKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: get token %s: %w", key, err)
	}
	return val, nil
}

// SetToken stores token under key with the given TTL.
func (tc *TokenCache) SetToken(ctx context.Context, key, token string, ttl time.Duration) error {
	if err := tc.rdb.Set(ctx, tokenKey(key), token, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set token %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.TokenCache = (*TokenCache)(nil)
