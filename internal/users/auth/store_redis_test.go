// Copyright (c) 2026 Petbox. All rights reserved.

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petbox/petbox-server/internal/platform/apperr"
	"github.com/petbox/petbox-server/internal/platform/constants"
	"github.com/petbox/petbox-server/internal/platform/social"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, client
}

func newTestLimiter(client *goredis.Client) *RedisOTPLimiter {
	return NewRedisOTPLimiter(client, OTPLimiterConfig{
		MaxPerShortWindow: 3,
		MaxPerDailyWindow: 5,
		ShortWindow:       10 * time.Minute,
		DailyWindow:       24 * time.Hour,
	})
}

func TestRedisOTPLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	phone := "0912345678"

	t.Run("counts up within the short window", func(t *testing.T) {
		_, client := newTestRedis(t)
		limiter := newTestLimiter(client)

		for want := int64(1); want <= 3; want++ {
			count, err := limiter.Allow(ctx, phone)
			require.NoError(t, err)
			assert.Equal(t, want, count)
		}
	})

	t.Run("rejects every call past the short window max", func(t *testing.T) {
		_, client := newTestRedis(t)
		limiter := newTestLimiter(client)

		for i := 0; i < 3; i++ {
			_, err := limiter.Allow(ctx, phone)
			require.NoError(t, err)
		}

		for i := 0; i < 4; i++ {
			_, err := limiter.Allow(ctx, phone)
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, apperr.CodeRequestExceedAllowed))
		}

		// Rejected calls must not have mutated the counter.
		count, err := client.Get(ctx, constants.RedisPrefixOTPCounter+phone).Int64()
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("rejects on the daily window even when the short window has room", func(t *testing.T) {
		server, client := newTestRedis(t)
		limiter := newTestLimiter(client)

		// Exhaust the daily budget of 5 across two short windows.
		for i := 0; i < 3; i++ {
			_, err := limiter.Allow(ctx, phone)
			require.NoError(t, err)
		}
		server.FastForward(11 * time.Minute)
		for i := 0; i < 2; i++ {
			_, err := limiter.Allow(ctx, phone)
			require.NoError(t, err)
		}

		_, err := limiter.Allow(ctx, phone)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, apperr.CodeRequestExceedAllowed))
	})

	t.Run("arms the TTL only on the first increment", func(t *testing.T) {
		server, client := newTestRedis(t)
		limiter := newTestLimiter(client)

		_, err := limiter.Allow(ctx, phone)
		require.NoError(t, err)

		key := constants.RedisPrefixOTPCounter + phone
		firstTTL := server.TTL(key)
		assert.Equal(t, 10*time.Minute, firstTTL)

		// A later increment inside the window must not extend the TTL.
		server.FastForward(4 * time.Minute)
		_, err = limiter.Allow(ctx, phone)
		require.NoError(t, err)

		assert.Equal(t, 6*time.Minute, server.TTL(key))
	})

	t.Run("window resets to zero after the TTL elapses", func(t *testing.T) {
		server, client := newTestRedis(t)
		limiter := newTestLimiter(client)

		for i := 0; i < 3; i++ {
			_, err := limiter.Allow(ctx, phone)
			require.NoError(t, err)
		}
		_, err := limiter.Allow(ctx, phone)
		require.Error(t, err)

		server.FastForward(10*time.Minute + time.Second)

		count, err := limiter.Allow(ctx, phone)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "a fresh window starts a new cycle")
	})

	t.Run("phones are throttled independently", func(t *testing.T) {
		_, client := newTestRedis(t)
		limiter := newTestLimiter(client)

		for i := 0; i < 3; i++ {
			_, err := limiter.Allow(ctx, "0912345678")
			require.NoError(t, err)
		}

		count, err := limiter.Allow(ctx, "0987654321")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestRedisPendingSocialStore(t *testing.T) {
	ctx := context.Background()

	profile := &social.Profile{
		Provider:       social.ProviderGoogle,
		ProviderUserID: "google-sub-123",
		Name:           "Nguyen Van A",
		Email:          "a@example.com",
		Avatar:         "https://example.com/a.png",
	}
	key := PendingKey(profile.Provider, profile.ProviderUserID)

	t.Run("stage then consume round-trips the profile", func(t *testing.T) {
		_, client := newTestRedis(t)
		store := NewRedisPendingSocialStore(client, 10*time.Minute)

		require.NoError(t, store.Stage(ctx, key, profile))

		got, err := store.Consume(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, profile, got)
	})

	t.Run("a staged profile is consumable at most once", func(t *testing.T) {
		_, client := newTestRedis(t)
		store := NewRedisPendingSocialStore(client, 10*time.Minute)

		require.NoError(t, store.Stage(ctx, key, profile))

		first, err := store.Consume(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := store.Consume(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, second, "second consumption must find nothing")
	})

	t.Run("an unconsumed staging expires after its TTL", func(t *testing.T) {
		server, client := newTestRedis(t)
		store := NewRedisPendingSocialStore(client, 10*time.Minute)

		require.NoError(t, store.Stage(ctx, key, profile))
		server.FastForward(10*time.Minute + time.Second)

		got, err := store.Consume(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("re-staging overwrites the previous profile", func(t *testing.T) {
		_, client := newTestRedis(t)
		store := NewRedisPendingSocialStore(client, 10*time.Minute)

		stale := *profile
		stale.Name = "Old Name"
		require.NoError(t, store.Stage(ctx, key, &stale))
		require.NoError(t, store.Stage(ctx, key, profile))

		got, err := store.Consume(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, profile.Name, got.Name)
	})
}
