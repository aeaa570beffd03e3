// Copyright (c) 2026 Petbox. All rights reserved.

package auth

import (
	"context"

	"github.com/petbox/petbox-server/internal/platform/social"
)

// UserRepository is the persistence contract for Identity Records.
//
// Lookup methods return apperr.NotFound (code NOT_FOUND) when no live record
// matches; soft-deleted records are invisible to every method. Create and
// Update surface unique-constraint violations as apperr.AlreadyExists so the
// service layer can rely on the database as the final arbiter of races.
type UserRepository interface {
	// Create persists a new account.
	Create(ctx context.Context, user *User) error

	// GetByID fetches an account by its primary identifier.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByPhone fetches an account by its canonical phone number.
	GetByPhone(ctx context.Context, phone string) (*User, error)

	// GetByUsername fetches an account by its secondary username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetBySocialLink fetches the account holding the given social link.
	GetBySocialLink(ctx context.Context, provider, providerUserID string) (*User, error)

	// Update persists the mutable fields of an existing account.
	Update(ctx context.Context, user *User) error
}

// PendingSocialStore stages social profiles that have no matching account yet.
//
// Records are keyed by (provider, providerUserID), carry a TTL bounded by the
// verification-token lifetime, and are consumed at most once.
type PendingSocialStore interface {
	// Stage stores the profile under key, overwriting any previous staging.
	Stage(ctx context.Context, key string, profile *social.Profile) error

	// Consume atomically reads and deletes the profile under key.
	// A missing or expired key returns (nil, nil); the caller decides
	// how to classify that.
	Consume(ctx context.Context, key string) (*social.Profile, error)
}

// OTPLimiter throttles OTP delivery per phone number.
//
// Allow checks every configured window and, if all pass, increments them
// together. It returns the post-increment short-window count (informational,
// surfaced to the client for UX only). When any window is exhausted it
// returns apperr.RequestExceedAllowed without mutating state.
type OTPLimiter interface {
	Allow(ctx context.Context, phone string) (int64, error)
}

// PendingKey derives the staging key for a social profile.
//
// The key is deterministic over (provider, providerUserID): a repeated social
// login before completion re-stages the same key rather than piling up
// duplicates.
func PendingKey(provider, providerUserID string) string {
	return provider + ":" + providerUserID
}
