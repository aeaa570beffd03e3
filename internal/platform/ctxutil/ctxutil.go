// Copyright (c) 2026 Petbox. All rights reserved.

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/petbox/petbox-server/internal/platform/ctxkey"
	"github.com/petbox/petbox-server/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithAuthUser returns a new context with the provided identity claims attached.
func WithAuthUser(ctx context.Context, user *sec.IdentityClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser retrieves the [*sec.IdentityClaims] from the [context.Context].
func GetAuthUser(ctx context.Context) *sec.IdentityClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.IdentityClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithAuthError returns a new context recording why the session cookie's
// token failed verification. The request itself proceeds anonymously.
func WithAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAuthError, err)
}

// GetAuthError retrieves the parked token verification error.
// Returns nil when the request carried no session cookie or the cookie verified.
func GetAuthError(ctx context.Context) error {
	err, _ := ctx.Value(ctxkey.KeyAuthError).(error)
	return err
}

// # Phone Verification

// WithVerifiedPhone returns a new context carrying the phone number proven
// by a verification token.
func WithVerifiedPhone(ctx context.Context, phone string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyVerifiedPhone, phone)
}

// GetVerifiedPhone retrieves the OTP-verified phone number from the context.
// Returns an empty string if the request carried no valid verification token.
func GetVerifiedPhone(ctx context.Context) string {
	phone, _ := ctx.Value(ctxkey.KeyVerifiedPhone).(string)
	return phone
}
