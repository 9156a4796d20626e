package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bkinvest/botboard/internal/domain"
)

// LoginLimiter implements domain.LoginLimiter with a fixed-window counter
// per remote address. The window is enforced by key expiry set on the first
// attempt.
type LoginLimiter struct {
	rdb *redis.Client
}

// NewLoginLimiter creates a LoginLimiter backed by the given Client.
func NewLoginLimiter(c *Client) *LoginLimiter {
	return &LoginLimiter{rdb: c.Underlying()}
}

func loginKey(id string) string {
	return "login_attempts:" + id
}

// Allow increments the attempt counter for id and reports whether the
// attempt is within limit for the current window.
func (l *LoginLimiter) Allow(ctx context.Context, id string, limit int, window time.Duration) (bool, error) {
	key := loginKey(id)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: login limiter %s: %w", id, err)
	}

	return incr.Val() <= int64(limit), nil
}

// Compile-time interface check.
var _ domain.LoginLimiter = (*LoginLimiter)(nil)
