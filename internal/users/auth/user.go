// Copyright (c) 2026 Petbox. All rights reserved.

/*
Package auth implements the identity and verification core of Petbox.

It covers the full account lifecycle: password login, social (Google/Zalo)
login and registration completion, phone ownership proof via SMS OTP, and
the access/refresh/verification token flows.

Layering:

  - user.go: the Identity entity and its sanitized client view.
  - store.go: persistence and staging contracts (interfaces).
  - store_postgres.go / store_redis.go: concrete stores.
  - service.go: the orchestrator — all business rules live here.
  - http.go: transport binding (routes, cookies, payload validation).

External collaborators (SMS delivery, OAuth providers, token signing) are
injected through narrow interfaces defined where they are consumed.
*/
package auth

import (
	"time"

	"github.com/petbox/petbox-server/internal/platform/sec"
)

// # OTP Action Types
//
// Each OTP request names the flow it protects; preconditions differ per flow.
const (
	// ActionRegister protects first-time registration. Fails if the phone
	// already resolves an account.
	ActionRegister = "register"

	// ActionResetPassword protects password recovery. Fails if the phone
	// resolves no account.
	ActionResetPassword = "reset-password"

	// ActionSocialRegister protects social registration completion. Existence
	// is not checked here; the social merge resolves it later.
	ActionSocialRegister = "social-register"
)

// # Registration Types

const (
	// RegisterTypeNormal is password-based registration over a verified phone.
	RegisterTypeNormal = "normal"

	// RegisterTypeSocial completes a staged social registration via its key.
	RegisterTypeSocial = "social"
)

// SocialLink ties an account to one external identity provider.
//
// ProviderUserID is the provider's stable subject identifier, unique per
// provider across all accounts.
type SocialLink struct {
	Provider       string `json:"provider"`
	ProviderUserID string `json:"id"`
}

// User is the Identity Record: one customer, staff, or admin account.
//
// At least one of Username or Phone must resolve the account for login.
// Pure-social accounts may have no password hash; they must then carry at
// least one social link.
//
// Phone is the canonical unique identifier; Username is a secondary,
// optional unique index.
type User struct {
	ID           string
	FullName     string
	BirthDate    *time.Time
	Gender       string
	Email        string
	Username     string
	Phone        string
	PasswordHash string
	SocialLinks  []SocialLink
	Avatar       string
	Role         sec.UserRole
	MembershipID string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DeletedAt marks a soft-deleted account. Accounts are never hard-deleted;
	// every store query filters on this flag.
	DeletedAt *time.Time
}

// HasPassword reports whether password login is possible for this account.
func (user *User) HasPassword() bool { return user.PasswordHash != "" }

// Profile is the sanitized, client-facing view of a [User].
//
// It is the ONLY user shape that crosses the API boundary: the password hash
// and soft-delete marker never leave the server.
type Profile struct {
	ID           string       `json:"id"`
	FullName     string       `json:"fullName"`
	BirthDate    *time.Time   `json:"birthDate,omitempty"`
	Gender       string       `json:"gender,omitempty"`
	Email        string       `json:"email,omitempty"`
	Username     string       `json:"username,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	SocialLinks  []SocialLink `json:"socialIds,omitempty"`
	Avatar       string       `json:"avatar,omitempty"`
	Role         string       `json:"role"`
	MembershipID string       `json:"membershipId,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Sanitize converts the entity into its client-facing [Profile].
func (user *User) Sanitize() *Profile {
	return &Profile{
		ID:           user.ID,
		FullName:     user.FullName,
		BirthDate:    user.BirthDate,
		Gender:       user.Gender,
		Email:        user.Email,
		Username:     user.Username,
		Phone:        user.Phone,
		SocialLinks:  user.SocialLinks,
		Avatar:       user.Avatar,
		Role:         string(user.Role),
		MembershipID: user.MembershipID,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// TokenPair is an access/refresh token set minted after authentication.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
