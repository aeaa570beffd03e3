// Copyright (c) 2026 Petbox. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, cookie names, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Per-IP burst capacities and tracking TTLs.
  - Security: JWT issuer and cookie configuration.
  - Redis: Key prefixes for the counter and staging stores.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "petbox-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	// Outbound provider calls (Twilio, OAuth) run inside this budget.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # IP Rate Limiting (HTTP layer)

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "petbox.app"

	// AccessTokenCookieName stores the short-lived access JWT.
	AccessTokenCookieName = "accessToken"

	// RefreshTokenCookieName stores the long-lived refresh JWT.
	RefreshTokenCookieName = "refreshToken"

	// VerifyTokenCookieName stores the post-OTP phone ownership proof.
	VerifyTokenCookieName = "verifyToken"

	// CookieMaxAgeBuffer is added on top of the token lifetime so the cookie
	// outlives the token slightly and the server (not the browser) decides expiry.
	CookieMaxAgeBuffer = 1 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixOTPCounter is the 10-minute fixed-window OTP counter per phone.
	RedisPrefixOTPCounter = "otp:counter:"

	// RedisPrefixOTPDailyCounter is the daily fixed-window OTP counter per phone.
	RedisPrefixOTPDailyCounter = "otp:daily_counter:"

	// RedisPrefixSocialPending stages a social profile awaiting registration completion.
	RedisPrefixSocialPending = "auth:social_pending:"
)
