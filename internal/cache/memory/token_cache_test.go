package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkinvest/botboard/internal/domain"
)

func TestTokenCache(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		c := NewTokenCache()
		_, err := c.GetToken(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		c := NewTokenCache()
		require.NoError(t, c.SetToken(ctx, "k", "tok", time.Hour))

		got, err := c.GetToken(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "tok", got)
	})

	t.Run("expired entry", func(t *testing.T) {
		c := NewTokenCache()
		now := time.Now()
		c.now = func() time.Time { return now }

		require.NoError(t, c.SetToken(ctx, "k", "tok", time.Minute))

		c.now = func() time.Time { return now.Add(2 * time.Minute) }
		_, err := c.GetToken(ctx, "k")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		c := NewTokenCache()
		now := time.Now()
		c.now = func() time.Time { return now }

		require.NoError(t, c.SetToken(ctx, "k", "tok", 0))

		c.now = func() time.Time { return now.Add(24 * time.Hour) }
		got, err := c.GetToken(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "tok", got)
	})
}
