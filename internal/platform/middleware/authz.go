// Copyright (c) 2026 Petbox. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/petbox/petbox-server/internal/platform/apperr"
	"github.com/petbox/petbox-server/internal/platform/constants"
	"github.com/petbox/petbox-server/internal/platform/ctxutil"
	"github.com/petbox/petbox-server/internal/platform/respond"
	"github.com/petbox/petbox-server/internal/platform/sec"
)

// TokenVerifier checks a signed token and returns the embedded identity.
// Implemented by [sec.TokenService]; kept small so tests can substitute fakes.
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*sec.IdentityClaims, error)
	VerifyVerifyToken(tokenString string) (*sec.IdentityClaims, error)
}

// # Session Authentication

// Authenticate resolves the caller's identity from the access token and
// injects the claims into the request context.
//
// The token is read from the accessToken cookie first (browser clients),
// falling back to the Authorization: Bearer header (API clients). A request
// without a token proceeds anonymously; guards downstream decide whether
// identity is required.
//
// Cookie and header failures are handled differently. The browser attaches
// the access cookie to every request, including /login, /logout and
// /refresh-token, and the cookie outlives its token by a small buffer; a
// stale cookie must never lock the client out of the endpoints that repair
// the session. A cookie token that fails verification is dropped and the
// request continues anonymously; the verification error is parked in the
// context so [RequireAuth] can surface it where identity is actually
// required (TOKEN_EXPIRED tells the client to refresh). A Bearer token is
// attached deliberately by API clients, so its failure stops the request here.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Locate the token: cookie first, then Authorization header
			tokenString := cookieValue(request, constants.AccessTokenCookieName)
			fromCookie := tokenString != ""
			if tokenString == "" {
				tokenString = bearerToken(request)
			}

			// 2. No token means an anonymous request, not an error
			if tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 3. Verify signature and expiry
			claims, err := verifier.VerifyAccessToken(tokenString)
			if err != nil {
				if fromCookie {
					dropCookie(writer, constants.AccessTokenCookieName)
					ctx := ctxutil.WithAuthError(request.Context(), err)
					next.ServeHTTP(writer, request.WithContext(ctx))
					return
				}
				respond.Error(writer, request, err)
				return
			}

			// 4. Inject the identity into the context for downstream handlers
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that did not authenticate.
// Must be mounted after [Authenticate].
//
// When the request carried a session cookie whose token failed verification,
// that original error is surfaced instead of a generic 401: TOKEN_EXPIRED
// (410) tells the client to call the refresh endpoint, TOKEN_INVALID forces
// a re-login.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if ctxutil.GetAuthUser(request.Context()) == nil {
				if err := ctxutil.GetAuthError(request.Context()); err != nil {
					respond.Error(writer, request, err)
					return
				}
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// RequireRole rejects authenticated requests whose role is below the minimum.
// Role comparison uses the hierarchy client < staff < admin.
func RequireRole(minimum sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				if err := ctxutil.GetAuthError(request.Context()); err != nil {
					respond.Error(writer, request, err)
					return
				}
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !sec.UserRole(claims.Role).AtLeast(minimum) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Phone Verification

// RequireVerifiedPhone gates registration-style flows behind a recent OTP
// success. It verifies the verifyToken cookie and injects the proven phone
// number into the context.
//
// The token is single-purpose: it carries only a phone claim and is signed
// with its own secret, so an access or refresh token can never stand in
// for it.
func RequireVerifiedPhone(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. The verification proof travels only in its cookie
			tokenString := cookieValue(request, constants.VerifyTokenCookieName)
			if tokenString == "" {
				respond.Error(writer, request, apperr.Unauthorized("Phone verification required"))
				return
			}

			// 2. Verify against the dedicated verification secret
			claims, err := verifier.VerifyVerifyToken(tokenString)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			if claims.Phone == "" {
				respond.Error(writer, request, apperr.TokenInvalid("Token is invalid"))
				return
			}

			// 3. Downstream handlers read the proven phone, never the request body
			ctx := ctxutil.WithVerifiedPhone(request.Context(), claims.Phone)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Token Extraction Helpers

// cookieValue returns the named cookie's value or an empty string.
func cookieValue(request *http.Request, name string) string {
	cookie, err := request.Cookie(name)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}

// dropCookie expires a session cookie the client should stop sending.
// The attributes must mirror the ones the cookie was set with, or the
// browser treats it as a different cookie and keeps the stale one.
func dropCookie(writer http.ResponseWriter, name string) {
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

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
