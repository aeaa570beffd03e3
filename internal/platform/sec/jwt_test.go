// Copyright (c) 2026 Petbox. All rights reserved.

package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petbox/petbox-server/internal/platform/apperr"
)

func newTestTokenService(t *testing.T, config TokenConfig) *TokenService {
	t.Helper()

	if config.AccessSecret == "" {
		config.AccessSecret = "access-secret"
	}
	if config.RefreshSecret == "" {
		config.RefreshSecret = "refresh-secret"
	}
	if config.VerifySecret == "" {
		config.VerifySecret = "verify-secret"
	}
	if config.AccessLife == 0 {
		config.AccessLife = time.Hour
	}
	if config.RefreshLife == 0 {
		config.RefreshLife = 24 * time.Hour
	}
	if config.VerifyLife == 0 {
		config.VerifyLife = 10 * time.Minute
	}
	config.Issuer = "petbox.test"

	service, err := NewTokenService(config)
	require.NoError(t, err)
	return service
}

func TestNewTokenService_RequiresSecrets(t *testing.T) {
	_, err := NewTokenService(TokenConfig{AccessSecret: "a", RefreshSecret: "b"})
	assert.Error(t, err, "an empty verify secret must be rejected")
}

func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t, TokenConfig{})

	t.Run("access token carries the full identity", func(t *testing.T) {
		token, err := service.GenerateAccessToken("user-1", "0912345678", "client")
		require.NoError(t, err)

		claims, err := service.VerifyAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "0912345678", claims.Phone)
		assert.Equal(t, "client", claims.Role)
		assert.Equal(t, "petbox.test", claims.Issuer)
		assert.Equal(t, "user-1", claims.Subject)
	})

	t.Run("verification token carries only the phone", func(t *testing.T) {
		token, err := service.GenerateVerifyToken("0912345678")
		require.NoError(t, err)

		claims, err := service.VerifyVerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, "0912345678", claims.Phone)
		assert.Empty(t, claims.UserID)
		assert.Empty(t, claims.Role)
	})
}

func TestTokenService_KindSeparation(t *testing.T) {
	service := newTestTokenService(t, TokenConfig{})

	accessToken, err := service.GenerateAccessToken("user-1", "0912345678", "client")
	require.NoError(t, err)

	// Each kind is signed with its own secret; cross-verification must fail
	// as invalid, not as expired.
	_, err = service.VerifyRefreshToken(accessToken)
	assert.True(t, apperr.IsCode(err, apperr.CodeTokenInvalid))

	_, err = service.VerifyVerifyToken(accessToken)
	assert.True(t, apperr.IsCode(err, apperr.CodeTokenInvalid))
}

func TestTokenService_Expiry(t *testing.T) {
	// A negative lifetime mints a token that is already past its expiry.
	service := newTestTokenService(t, TokenConfig{AccessLife: -time.Minute})

	token, err := service.GenerateAccessToken("user-1", "0912345678", "client")
	require.NoError(t, err)

	_, err = service.VerifyAccessToken(token)
	require.Error(t, err)

	assert.True(t, apperr.IsCode(err, apperr.CodeTokenExpired), "expiry must be distinguishable")
	assert.False(t, apperr.IsCode(err, apperr.CodeTokenInvalid))
}

func TestTokenService_WrongSecret(t *testing.T) {
	signer := newTestTokenService(t, TokenConfig{AccessSecret: "secret-one"})
	checker := newTestTokenService(t, TokenConfig{AccessSecret: "secret-two"})

	token, err := signer.GenerateAccessToken("user-1", "0912345678", "client")
	require.NoError(t, err)

	_, err = checker.VerifyAccessToken(token)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeTokenInvalid))
}

func TestTokenService_Garbage(t *testing.T) {
	service := newTestTokenService(t, TokenConfig{})

	for _, garbage := range []string{"", "not-a-jwt", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := service.VerifyAccessToken(garbage)
		assert.True(t, apperr.IsCode(err, apperr.CodeTokenInvalid), "input %q", garbage)
	}
}
