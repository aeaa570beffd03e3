// Copyright (c) 2026 Petbox. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/petbox/petbox-server/internal/platform/apperr"
	"github.com/petbox/petbox-server/internal/platform/sec"
	"github.com/petbox/petbox-server/internal/platform/sms"
	"github.com/petbox/petbox-server/internal/platform/social"
	"github.com/petbox/petbox-server/pkg/uuid"
)

// Service orchestrates the identity flows: registration, login, social
// login, token refresh, profile update, and the OTP cycle.
//
// All collaborators are injected; the service holds no ambient state and
// never retries a failed downstream call — authorization codes are
// single-use and OTP re-delivery is the user's decision.
type Service struct {
	users    UserRepository
	pending  PendingSocialStore
	limiter  OTPLimiter
	verifier sms.Verifier
	social   *social.Registry
	tokens   *sec.TokenService
	logger   *slog.Logger
}

// NewService wires the auth service from its collaborators.
func NewService(
	users UserRepository,
	pending PendingSocialStore,
	limiter OTPLimiter,
	verifier sms.Verifier,
	socialRegistry *social.Registry,
	tokens *sec.TokenService,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		pending:  pending,
		limiter:  limiter,
		verifier: verifier,
		social:   socialRegistry,
		tokens:   tokens,
		logger:   logger,
	}
}

// # OTP Flow

// RequestOTP dispatches a one-time code to phone for the named action.
//
// It returns the post-increment short-window counter value — informational
// for client-side UX, not a security boundary.
func (service *Service) RequestOTP(ctx context.Context, phone, actionType string) (int64, error) {

	// 1. Resolve whether an account already exists for this phone
	existing, err := service.users.GetByPhone(ctx, phone)
	if err != nil && !apperr.IsCode(err, apperr.CodeNotFound) {
		return 0, fmt.Errorf("auth_service_request_otp_lookup_failed: %w", err)
	}

	// 2. Enforce the per-action precondition
	switch actionType {
	case ActionRegister:
		if existing != nil {
			return 0, apperr.AlreadyExists("An account with this phone number already exists")
		}
	case ActionResetPassword:
		if existing == nil {
			return 0, apperr.UserNotFound("No account matches this phone number")
		}
	case ActionSocialRegister:
		// Existence is resolved later by the social merge.
	default:
		return 0, apperr.RequestInvalid("Unknown OTP action type")
	}

	// 3. Both rate-limit windows must pass; rejection is terminal for the caller
	counter, err := service.limiter.Allow(ctx, phone)
	if err != nil {
		return 0, err
	}

	// 4. Dispatch the code. The provider owns generation and expiry.
	if err := service.verifier.StartVerification(ctx, phone); err != nil {
		return 0, err
	}

	service.logger.InfoContext(ctx, "otp_requested",
		slog.String("action", actionType),
		slog.Int64("counter", counter),
	)

	return counter, nil
}

// VerifyOTP checks a user-typed code and, on success, mints a verification
// token proving ownership of phone.
//
// Verification itself is not throttled — only requesting a code consumes a
// rate-limit slot — so the user may retry a mistyped code immediately.
func (service *Service) VerifyOTP(ctx context.Context, phone, code string) (string, error) {
	status, err := service.verifier.CheckVerification(ctx, phone, code)
	if err != nil {
		return "", err
	}

	switch status {
	case sms.StatusApproved:
		// The cycle is consumed; the token is now the sole proof of ownership.
	case sms.StatusPending:
		return "", apperr.OTPInvalid("The code is incorrect")
	case sms.StatusExpired, sms.StatusCanceled:
		return "", apperr.OTPExpired("The code has expired, please request a new one")
	default:
		return "", apperr.External(fmt.Errorf("auth_service_verify_otp_unexpected_status: %q", status))
	}

	verifyToken, err := service.tokens.GenerateVerifyToken(phone)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("auth_service_verify_otp_sign_failed: %w", err))
	}

	service.logger.InfoContext(ctx, "otp_verified")

	return verifyToken, nil
}

// # Registration

// RegisterInput carries the fields of a registration request.
//
// Phone is injected from the verification token for normal registration and
// is empty for social completion (social accounts may have no phone).
type RegisterInput struct {
	Type      string
	FullName  string
	BirthDate *time.Time
	Gender    string
	Email     string
	Username  string
	Phone     string
	Password  string

	// SocialKey is the staging key returned by SocialLogin's pending path.
	SocialKey string
}

// Register creates an account and mints its first token pair.
//
// Normal registration hashes the supplied password over an OTP-verified
// phone. Social registration consumes the staged profile instead; a missing
// or expired staging key fails with TokenExpired so the client restarts the
// social flow.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, *TokenPair, error) {
	now := time.Now()

	user := &User{
		ID:        uuid.NewString(),
		FullName:  input.FullName,
		BirthDate: input.BirthDate,
		Gender:    input.Gender,
		Email:     input.Email,
		Username:  input.Username,
		Phone:     input.Phone,
		Role:      sec.RoleClient,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch input.Type {
	case RegisterTypeNormal:
		hash, err := sec.HashPassword(input.Password)
		if err != nil {
			return nil, nil, apperr.Internal(fmt.Errorf("auth_service_register_hash_failed: %w", err))
		}
		user.PasswordHash = hash

	case RegisterTypeSocial:
		profile, err := service.pending.Consume(ctx, input.SocialKey)
		if err != nil {
			return nil, nil, err
		}
		if profile == nil {
			// Already consumed or past TTL: the whole social flow must restart.
			return nil, nil, apperr.TokenExpired("Registration session has expired, please sign in again")
		}
		mergeStagedProfile(user, profile)

	default:
		return nil, nil, apperr.RequestInvalid("Unknown registration type")
	}

	// Pre-check the friendly way; the unique indexes remain the final
	// arbiter when two registrations race.
	if err := service.ensureIdentifiersFree(ctx, user.Phone, user.Username); err != nil {
		return nil, nil, err
	}

	if err := service.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := service.mintPair(user)
	if err != nil {
		return nil, nil, err
	}

	service.logger.InfoContext(ctx, "user_registered",
		slog.String("user_id", user.ID),
		slog.String("type", input.Type),
	)

	return user, pair, nil
}

// mergeStagedProfile folds a consumed social profile into a new account.
func mergeStagedProfile(user *User, profile *social.Profile) {
	user.SocialLinks = []SocialLink{{
		Provider:       profile.Provider,
		ProviderUserID: profile.ProviderUserID,
	}}

	if user.FullName == "" {
		user.FullName = profile.Name
	}
	if user.Email == "" {
		user.Email = profile.Email
	}
	if user.Avatar == "" {
		user.Avatar = profile.Avatar
	}
}

// ensureIdentifiersFree rejects registration when phone or username is taken.
func (service *Service) ensureIdentifiersFree(ctx context.Context, phone, username string) error {
	if phone != "" {
		if _, err := service.users.GetByPhone(ctx, phone); err == nil {
			return apperr.AlreadyExists("An account with this phone number already exists")
		} else if !apperr.IsCode(err, apperr.CodeNotFound) {
			return err
		}
	}

	if username != "" {
		if _, err := service.users.GetByUsername(ctx, username); err == nil {
			return apperr.AlreadyExists("This username is already taken")
		} else if !apperr.IsCode(err, apperr.CodeNotFound) {
			return err
		}
	}

	return nil
}

// # Login & Session

// Login authenticates by phone or username plus password.
//
// An unknown identifier fails with UserNotFound; a known identifier with a
// wrong password fails with UserInvalidCredentials. The two cases are
// deliberately distinct in the taxonomy.
func (service *Service) Login(ctx context.Context, identifier, password string) (*User, *TokenPair, error) {
	user, err := service.lookupByIdentifier(ctx, identifier)
	if err != nil {
		return nil, nil, err
	}

	// Pure-social accounts carry no hash; password login cannot succeed.
	if !user.HasPassword() {
		return nil, nil, apperr.InvalidCredentials("This account signs in with a social provider")
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, apperr.InvalidCredentials("Incorrect password")
	}

	pair, err := service.mintPair(user)
	if err != nil {
		return nil, nil, err
	}

	service.logger.InfoContext(ctx, "user_logged_in", slog.String("user_id", user.ID))

	return user, pair, nil
}

// lookupByIdentifier resolves an account by phone first, then username.
func (service *Service) lookupByIdentifier(ctx context.Context, identifier string) (*User, error) {
	user, err := service.users.GetByPhone(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	user, err = service.users.GetByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	return nil, apperr.UserNotFound("No account matches this phone number or username")
}

// SocialLoginResult is the outcome of a social exchange: either an
// authenticated account or a staged registration awaiting completion.
type SocialLoginResult struct {
	User   *User
	Tokens *TokenPair

	// Pending is set instead of User/Tokens when no account matched.
	Pending *PendingRegistration
}

// PendingRegistration is the client-facing staging handle.
type PendingRegistration struct {
	Key   string `json:"key"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// SocialLogin exchanges a provider artifact and resolves it to an account.
//
// A matching social link logs the user in. Otherwise the normalized profile
// is staged under a deterministic key and returned for the registration
// completion step — this outcome is not an error.
func (service *Service) SocialLogin(ctx context.Context, providerName string, artifact social.Artifact) (*SocialLoginResult, error) {
	provider, err := service.social.Lookup(providerName)
	if err != nil {
		return nil, err
	}

	profile, err := provider.ExchangeAndFetchProfile(ctx, artifact)
	if err != nil {
		return nil, err
	}

	// Login path: the link already belongs to an account
	user, err := service.users.GetBySocialLink(ctx, profile.Provider, profile.ProviderUserID)
	if err == nil {
		pair, mintErr := service.mintPair(user)
		if mintErr != nil {
			return nil, mintErr
		}

		service.logger.InfoContext(ctx, "user_logged_in_social",
			slog.String("user_id", user.ID),
			slog.String("provider", profile.Provider),
		)

		return &SocialLoginResult{User: user, Tokens: pair}, nil
	}
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	// Registration-completion path: stage the profile under its key
	key := PendingKey(profile.Provider, profile.ProviderUserID)
	if err := service.pending.Stage(ctx, key, profile); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "social_registration_staged",
		slog.String("provider", profile.Provider),
	)

	return &SocialLoginResult{
		Pending: &PendingRegistration{
			Key:   key,
			Name:  profile.Name,
			Email: profile.Email,
		},
	}, nil
}

// Refresh verifies a refresh token and mints a fresh token pair from its
// claims. The old refresh token stays valid until expiry — there is no
// rotation or revocation list.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := service.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	accessToken, err := service.tokens.GenerateAccessToken(claims.UserID, claims.Phone, claims.Role)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_sign_failed: %w", err))
	}

	newRefreshToken, err := service.tokens.GenerateRefreshToken(claims.UserID, claims.Phone, claims.Role)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_sign_failed: %w", err))
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// # Profile & Credentials

// Me fetches an account by id. The /me endpoint and the staff lookup share it.
func (service *Service) Me(ctx context.Context, userID string) (*User, error) {
	user, err := service.users.GetByID(ctx, userID)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, apperr.UserNotFound("Account no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// updateDenyList names the fields that are always stripped from an update
// payload before persistence, regardless of role: identity keys, audit
// timestamps, and everything credential- or privilege-bearing.
var updateDenyList = []string{
	"id", "createdAt", "updatedAt", "phone",
	"role", "membershipId", "socialIds", "password", "passwordHash",
}

// StripDeniedFields removes immutable and privileged fields from an update
// payload. It is a pure function applied at the boundary of Update.
func StripDeniedFields(changes map[string]any) map[string]any {
	for _, field := range updateDenyList {
		delete(changes, field)
	}
	return changes
}

// Update applies profile changes to the authenticated account.
//
// Changing the password requires the current password and verifies it
// against the stored hash first. All other recognized fields are applied
// as-is; denied fields have already been stripped, unknown ones are ignored.
func (service *Service) Update(ctx context.Context, userID string, changes map[string]any) (*User, error) {
	user, err := service.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	changes = StripDeniedFields(changes)

	// Password change is gated on proving knowledge of the current one.
	if newPassword, ok := stringField(changes, "newPassword"); ok {
		currentPassword, _ := stringField(changes, "currentPassword")

		if !user.HasPassword() || !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
			return nil, apperr.InvalidCredentials("Current password is incorrect")
		}

		hash, err := sec.HashPassword(newPassword)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("auth_service_update_hash_failed: %w", err))
		}
		user.PasswordHash = hash
	}

	applyProfileChanges(user, changes)
	user.UpdatedAt = time.Now()

	if err := service.users.Update(ctx, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user_updated", slog.String("user_id", user.ID))

	return user, nil
}

// applyProfileChanges copies the recognized mutable fields onto the entity.
func applyProfileChanges(user *User, changes map[string]any) {
	if value, ok := stringField(changes, "fullName"); ok {
		user.FullName = value
	}
	if value, ok := stringField(changes, "gender"); ok {
		user.Gender = value
	}
	if value, ok := stringField(changes, "email"); ok {
		user.Email = value
	}
	if value, ok := stringField(changes, "username"); ok {
		user.Username = value
	}
	if value, ok := stringField(changes, "avatar"); ok {
		user.Avatar = value
	}
	if value, ok := stringField(changes, "birthDate"); ok {
		if parsed, err := time.Parse("2006-01-02", value); err == nil {
			user.BirthDate = &parsed
		}
	}
}

// stringField reads a string-typed field from the payload.
func stringField(changes map[string]any, field string) (string, bool) {
	value, ok := changes[field].(string)
	return value, ok && value != ""
}

// ResetPassword replaces the password of the account owning phone.
//
// Phone ownership has already been proven by the verification token; no
// current password is required.
func (service *Service) ResetPassword(ctx context.Context, phone, newPassword string) (*User, error) {
	user, err := service.users.GetByPhone(ctx, phone)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, apperr.UserNotFound("No account matches this phone number")
		}
		return nil, err
	}

	hash, err := sec.HashPassword(newPassword)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_reset_hash_failed: %w", err))
	}

	user.PasswordHash = hash
	user.UpdatedAt = time.Now()

	if err := service.users.Update(ctx, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user_password_reset", slog.String("user_id", user.ID))

	return user, nil
}

// mintPair signs an access/refresh token pair over the account's identity.
func (service *Service) mintPair(user *User) (*TokenPair, error) {
	accessToken, err := service.tokens.GenerateAccessToken(user.ID, user.Phone, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_mint_access_failed: %w", err))
	}

	refreshToken, err := service.tokens.GenerateRefreshToken(user.ID, user.Phone, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_mint_refresh_failed: %w", err))
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
