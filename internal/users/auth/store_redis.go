// Copyright (c) 2026 Petbox. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petbox/petbox-server/internal/platform/apperr"
	"github.com/petbox/petbox-server/internal/platform/constants"
	"github.com/petbox/petbox-server/internal/platform/social"
)

// # OTP Fixed-Window Limiter

// OTPLimiterConfig carries the per-window maximums and durations.
type OTPLimiterConfig struct {
	MaxPerShortWindow int
	MaxPerDailyWindow int
	ShortWindow       time.Duration
	DailyWindow       time.Duration
}

// RedisOTPLimiter implements [OTPLimiter] with two fixed windows per phone:
// a short window and a daily window.
//
// # Window semantics
//
// Each window is a plain counter with a TTL that is armed ONLY on the 0→1
// transition. Later increments never extend the TTL, so the window is a true
// fixed window. Two concurrent first-requests may each arm the TTL; re-arming
// to the same value is idempotent, so the race is accepted.
type RedisOTPLimiter struct {
	client *redis.Client
	config OTPLimiterConfig
}

// NewRedisOTPLimiter creates a Redis-backed OTP limiter.
func NewRedisOTPLimiter(client *redis.Client, config OTPLimiterConfig) *RedisOTPLimiter {
	return &RedisOTPLimiter{client: client, config: config}
}

// Allow implements [OTPLimiter].
//
// Both windows are checked first; only when both pass are both counters
// incremented, together, never partially. A rejected call mutates nothing:
// the caller must wait out the window, there is no retry.
func (limiter *RedisOTPLimiter) Allow(ctx context.Context, phone string) (int64, error) {
	shortKey := constants.RedisPrefixOTPCounter + phone
	dailyKey := constants.RedisPrefixOTPDailyCounter + phone

	// 1. Read both current counts (absent key counts as zero)
	shortCount, err := limiter.currentCount(ctx, shortKey)
	if err != nil {
		return 0, err
	}
	dailyCount, err := limiter.currentCount(ctx, dailyKey)
	if err != nil {
		return 0, err
	}

	// 2. Both windows must have room before anything is mutated
	if shortCount >= int64(limiter.config.MaxPerShortWindow) {
		return 0, apperr.RequestExceedAllowed("Too many OTP requests, please try again later")
	}
	if dailyCount >= int64(limiter.config.MaxPerDailyWindow) {
		return 0, apperr.RequestExceedAllowed("Daily OTP limit reached, please try again tomorrow")
	}

	// 3. Increment both counters together
	newShortCount, err := limiter.increment(ctx, shortKey, limiter.config.ShortWindow)
	if err != nil {
		return 0, err
	}
	if _, err := limiter.increment(ctx, dailyKey, limiter.config.DailyWindow); err != nil {
		return 0, err
	}

	return newShortCount, nil
}

// currentCount reads a counter, treating a missing key as zero.
func (limiter *RedisOTPLimiter) currentCount(ctx context.Context, key string) (int64, error) {
	count, err := limiter.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.External(fmt.Errorf("otp limiter: failed to read counter %s: %w", key, err))
	}
	return count, nil
}

// increment bumps a counter and arms the window TTL on the 0→1 transition only.
func (limiter *RedisOTPLimiter) increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := limiter.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, apperr.External(fmt.Errorf("otp limiter: failed to increment counter %s: %w", key, err))
	}

	// First hit in a fresh window starts the clock; later hits must not
	// extend it or the window would slide.
	if count == 1 {
		if err := limiter.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, apperr.External(fmt.Errorf("otp limiter: failed to arm TTL on %s: %w", key, err))
		}
	}

	return count, nil
}

// # Pending Social Registration Staging

// RedisPendingSocialStore implements [PendingSocialStore] on Redis.
//
// Profiles are stored as JSON under a TTL equal to the verification-token
// lifetime; Consume uses GETDEL so a staged profile can be merged into an
// account at most once.
type RedisPendingSocialStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPendingSocialStore creates a Redis-backed staging store.
// ttl bounds how long a pending registration stays claimable.
func NewRedisPendingSocialStore(client *redis.Client, ttl time.Duration) *RedisPendingSocialStore {
	return &RedisPendingSocialStore{client: client, ttl: ttl}
}

// Stage implements [PendingSocialStore].
func (store *RedisPendingSocialStore) Stage(ctx context.Context, key string, profile *social.Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return apperr.Internal(fmt.Errorf("pending social: failed to encode profile: %w", err))
	}

	redisKey := constants.RedisPrefixSocialPending + key
	if err := store.client.Set(ctx, redisKey, payload, store.ttl).Err(); err != nil {
		return apperr.External(fmt.Errorf("pending social: failed to stage %s: %w", key, err))
	}

	return nil
}

// Consume implements [PendingSocialStore].
func (store *RedisPendingSocialStore) Consume(ctx context.Context, key string) (*social.Profile, error) {
	redisKey := constants.RedisPrefixSocialPending + key

	payload, err := store.client.GetDel(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired or already consumed: the caller classifies this.
		return nil, nil
	}
	if err != nil {
		return nil, apperr.External(fmt.Errorf("pending social: failed to consume %s: %w", key, err))
	}

	profile := social.Profile{}
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, apperr.Internal(fmt.Errorf("pending social: failed to decode profile: %w", err))
	}

	return &profile, nil
}
