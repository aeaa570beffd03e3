// Copyright (c) 2026 Petbox. All rights reserved.

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/petbox/petbox-server/internal/platform/apperr"
	"github.com/petbox/petbox-server/internal/platform/constants"
	"github.com/petbox/petbox-server/internal/platform/middleware"
	requestutil "github.com/petbox/petbox-server/internal/platform/request"
	"github.com/petbox/petbox-server/internal/platform/respond"
	"github.com/petbox/petbox-server/internal/platform/sec"
	"github.com/petbox/petbox-server/internal/platform/social"
	"github.com/petbox/petbox-server/internal/platform/validate"
	"github.com/petbox/petbox-server/pkg/uuid"
)

// CookieConfig carries the lifetimes used to derive cookie maxAge values.
//
// Each cookie outlives its token by a small buffer so the server, not the
// browser, is the authority on expiry.
type CookieConfig struct {
	AccessLife  time.Duration
	RefreshLife time.Duration
	VerifyLife  time.Duration
}

// Handler binds the auth service to the HTTP transport.
type Handler struct {
	service *Service
	tokens  *sec.TokenService
	cookies CookieConfig
}

// NewHandler creates the auth HTTP handler.
func NewHandler(service *Service, tokens *sec.TokenService, cookies CookieConfig) *Handler {
	return &Handler{service: service, tokens: tokens, cookies: cookies}
}

// Routes mounts the auth endpoints onto the given router.
//
// The access-token middleware runs upstream for the whole API; routes that
// require identity or phone proof add their guard here.
func (handler *Handler) Routes(router chi.Router) {
	router.Post("/register", handler.handleRegister)
	router.Post("/login", handler.handleLogin)
	router.Post("/social-login", handler.handleSocialLogin)
	router.Delete("/logout", handler.handleLogout)
	router.Get("/refresh-token", handler.handleRefresh)

	router.Post("/request-otp", handler.handleRequestOTP)
	router.Post("/verify-otp", handler.handleVerifyOTP)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth())
		protected.Get("/me", handler.handleMe)
		protected.Put("/update", handler.handleUpdate)
	})

	router.Group(func(verified chi.Router) {
		verified.Use(middleware.RequireVerifiedPhone(handler.tokens))
		verified.Put("/reset-password", handler.handleResetPassword)
	})

	// Back-office lookup: staff and admins can read any account.
	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireAuth())
		staff.Use(middleware.RequireRole(sec.RoleStaff))
		staff.Get("/{id}", handler.handleGetAccount)
	})
}

// authPayload is the response body for authenticated flows. Tokens are also
// set as cookies; the body copy serves non-browser clients.
type authPayload struct {
	User         *Profile `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// # Registration

type registerRequest struct {
	Type      string `json:"type"`
	FullName  string `json:"fullName"`
	BirthDate string `json:"birthDate"`
	Gender    string `json:"gender"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Key       string `json:"key"`
}

func (handler *Handler) handleRegister(writer http.ResponseWriter, request *http.Request) {
	body := registerRequest{}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("type", body.Type).
		OneOf("type", body.Type, RegisterTypeNormal, RegisterTypeSocial).
		Required("fullName", body.FullName).
		MaxLen("fullName", body.FullName, 100)

	if body.Email != "" {
		validator.Email("email", body.Email)
	}
	if body.Username != "" {
		validator.MinLen("username", body.Username, 3).MaxLen("username", body.Username, 30)
	}

	input := RegisterInput{
		Type:     body.Type,
		FullName: body.FullName,
		Gender:   body.Gender,
		Email:    body.Email,
		Username: body.Username,
		Password: body.Password,
	}

	switch body.Type {
	case RegisterTypeNormal:
		// Phone ownership comes from the verification token, never the body.
		validator.Password("password", body.Password)

		phone, err := handler.verifiedPhone(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		input.Phone = phone

	case RegisterTypeSocial:
		validator.Required("key", body.Key)
		input.SocialKey = body.Key
	}

	if body.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", body.BirthDate)
		validator.Custom("birthDate", err != nil, "Must be a date in YYYY-MM-DD format")
		if err == nil {
			input.BirthDate = &parsed
		}
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, pair, err := handler.service.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The verification proof is spent; the session cookies replace it.
	handler.clearCookie(writer, constants.VerifyTokenCookieName)
	handler.setSessionCookies(writer, pair)

	respond.Created(writer, authPayload{
		User:         user.Sanitize(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// verifiedPhone extracts the phone proven by the verifyToken cookie.
func (handler *Handler) verifiedPhone(request *http.Request) (string, error) {
	tokenString := requestutil.Cookie(request, constants.VerifyTokenCookieName)
	if tokenString == "" {
		return "", apperr.Unauthorized("Phone verification required")
	}

	claims, err := handler.tokens.VerifyVerifyToken(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Phone == "" {
		return "", apperr.TokenInvalid("Token is invalid")
	}

	return claims.Phone, nil
}

// # Login / Logout / Refresh

type loginRequest struct {
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (handler *Handler) handleLogin(writer http.ResponseWriter, request *http.Request) {
	body := loginRequest{}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identifier := body.Phone
	if identifier == "" {
		identifier = body.Username
	}

	validator := &validate.Validator{}
	validator.Custom("phone", identifier == "", "Either phone or username is required").
		Required("password", body.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, pair, err := handler.service.Login(request.Context(), identifier, body.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, pair)

	respond.OK(writer, authPayload{
		User:         user.Sanitize(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (handler *Handler) handleLogout(writer http.ResponseWriter, request *http.Request) {
	handler.clearCookie(writer, constants.AccessTokenCookieName)
	handler.clearCookie(writer, constants.RefreshTokenCookieName)
	handler.clearCookie(writer, constants.VerifyTokenCookieName)

	respond.OK(writer, map[string]bool{"loggedOut": true})
}

func (handler *Handler) handleRefresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken := requestutil.Cookie(request, constants.RefreshTokenCookieName)
	if refreshToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Refresh token required"))
		return
	}

	pair, err := handler.service.Refresh(request.Context(), refreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, pair)

	respond.OK(writer, TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// # Social Login

type socialLoginRequest struct {
	Provider          string `json:"provider"`
	Code              string `json:"code"`
	AuthorizationCode string `json:"authorizationCode"`
	CodeVerifier      string `json:"codeVerifier"`
}

func (handler *Handler) handleSocialLogin(writer http.ResponseWriter, request *http.Request) {
	body := socialLoginRequest{}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Zalo's SDK names the field authorizationCode; both shapes are accepted.
	code := body.Code
	if code == "" {
		code = body.AuthorizationCode
	}

	validator := &validate.Validator{}
	validator.Required("provider", body.Provider).
		OneOf("provider", body.Provider, social.ProviderGoogle, social.ProviderZalo).
		Custom("code", code == "", "An authorization code is required")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.SocialLogin(request.Context(), body.Provider, social.Artifact{
		Code:         code,
		CodeVerifier: body.CodeVerifier,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// No matching account: hand back the staging key so the client completes
	// registration. This is a normal outcome, hence 202, not an error.
	if result.Pending != nil {
		respond.Accepted(writer, result.Pending)
		return
	}

	handler.setSessionCookies(writer, result.Tokens)

	respond.OK(writer, authPayload{
		User:         result.User.Sanitize(),
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// # OTP Flow

type requestOTPRequest struct {
	Phone      string `json:"phone"`
	ActionType string `json:"actionType"`
}

func (handler *Handler) handleRequestOTP(writer http.ResponseWriter, request *http.Request) {
	body := requestOTPRequest{}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("phone", body.Phone).
		Phone("phone", body.Phone).
		Required("actionType", body.ActionType).
		OneOf("actionType", body.ActionType, ActionRegister, ActionResetPassword, ActionSocialRegister)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	counter, err := handler.service.RequestOTP(request.Context(), body.Phone, body.ActionType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int64{"counter": counter})
}

type verifyOTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (handler *Handler) handleVerifyOTP(writer http.ResponseWriter, request *http.Request) {
	body := verifyOTPRequest{}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("phone", body.Phone).
		Phone("phone", body.Phone).
		Required("code", body.Code).
		MinLen("code", body.Code, 4).
		MaxLen("code", body.Code, 10)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	verifyToken, err := handler.service.VerifyOTP(request.Context(), body.Phone, body.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setCookie(writer, constants.VerifyTokenCookieName, verifyToken, handler.cookies.VerifyLife)

	respond.OK(writer, map[string]bool{"verified": true})
}

// # Profile

func (handler *Handler) handleMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Me(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Sanitize())
}

// handleGetAccount serves the staff-only account lookup.
func (handler *Handler) handleGetAccount(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")
	if !uuid.IsValid(id) {
		respond.Error(writer, request, apperr.RequestInvalid("Account id must be a valid UUID"))
		return
	}

	user, err := handler.service.Me(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Sanitize())
}

func (handler *Handler) handleUpdate(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The update payload is free-form by design; the service strips the
	// deny-listed fields and ignores unknown ones.
	changes := map[string]any{}
	if err := requestutil.DecodeJSON(request, &changes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if newPassword, ok := changes["newPassword"].(string); ok {
		validator.Password("newPassword", newPassword)
		currentPassword, _ := changes["currentPassword"].(string)
		validator.Required("currentPassword", currentPassword)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Update(request.Context(), claims.UserID, changes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Sanitize())
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (handler *Handler) handleResetPassword(writer http.ResponseWriter, request *http.Request) {
	phone, err := requestutil.RequiredVerifiedPhone(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	body := resetPasswordRequest{}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Password("newPassword", body.NewPassword)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.ResetPassword(request.Context(), phone, body.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The verification proof is single-purpose; drop it once spent.
	handler.clearCookie(writer, constants.VerifyTokenCookieName)

	respond.OK(writer, user.Sanitize())
}

// # Cookie Management
//
// All three cookies are HttpOnly + Secure + SameSite=None: the storefront
// SPA is served from a different origin than the API.

func (handler *Handler) setSessionCookies(writer http.ResponseWriter, pair *TokenPair) {
	handler.setCookie(writer, constants.AccessTokenCookieName, pair.AccessToken, handler.cookies.AccessLife)
	handler.setCookie(writer, constants.RefreshTokenCookieName, pair.RefreshToken, handler.cookies.RefreshLife)
}

func (handler *Handler) setCookie(writer http.ResponseWriter, name, value string, life time.Duration) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int((life + constants.CookieMaxAgeBuffer).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (handler *Handler) clearCookie(writer http.ResponseWriter, name string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
