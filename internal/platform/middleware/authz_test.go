// Copyright (c) 2026 Petbox. All rights reserved.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petbox/petbox-server/internal/platform/constants"
	"github.com/petbox/petbox-server/internal/platform/ctxutil"
	"github.com/petbox/petbox-server/internal/platform/sec"
)

func newAuthTestTokens(t *testing.T) *sec.TokenService {
	t.Helper()

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		VerifySecret:  "verify-secret",
		AccessLife:    time.Hour,
		RefreshLife:   24 * time.Hour,
		VerifyLife:    10 * time.Minute,
		Issuer:        "petbox.test",
	})
	require.NoError(t, err)
	return tokens
}

// newExpiredAccessToken mints an access token that is already past its
// expiry but signed with the same secrets the verifier checks against.
func newExpiredAccessToken(t *testing.T, userID string) string {
	t.Helper()

	expiredTokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		VerifySecret:  "verify-secret",
		AccessLife:    -time.Minute,
		RefreshLife:   time.Hour,
		VerifyLife:    time.Minute,
		Issuer:        "petbox.test",
	})
	require.NoError(t, err)

	accessToken, err := expiredTokens.GenerateAccessToken(userID, "0912345678", "client")
	require.NoError(t, err)
	return accessToken
}

// claimsProbe records the identity the middleware injected.
func claimsProbe(got **sec.IdentityClaims) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*got = ctxutil.GetAuthUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

// responseCookie returns the last Set-Cookie entry with the given name.
func responseCookie(recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			found = cookie
		}
	}
	return found
}

func TestAuthenticate(t *testing.T) {
	tokens := newAuthTestTokens(t)

	t.Run("reads the access token from the cookie", func(t *testing.T) {
		accessToken, err := tokens.GenerateAccessToken("user-1", "0912345678", "client")
		require.NoError(t, err)

		var got *sec.IdentityClaims
		handler := Authenticate(tokens)(claimsProbe(&got))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: accessToken})
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, got)
		assert.Equal(t, "user-1", got.UserID)
	})

	t.Run("falls back to the bearer header", func(t *testing.T) {
		accessToken, err := tokens.GenerateAccessToken("user-2", "0912345678", "staff")
		require.NoError(t, err)

		var got *sec.IdentityClaims
		handler := Authenticate(tokens)(claimsProbe(&got))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+accessToken)
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		require.NotNil(t, got)
		assert.Equal(t, "user-2", got.UserID)
	})

	t.Run("no token proceeds anonymously", func(t *testing.T) {
		var got *sec.IdentityClaims
		handler := Authenticate(tokens)(claimsProbe(&got))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Nil(t, got)
	})

	t.Run("a forged cookie token proceeds anonymously and drops the cookie", func(t *testing.T) {
		var got *sec.IdentityClaims
		handler := Authenticate(tokens)(claimsProbe(&got))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "forged.token.value"})
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Nil(t, got)

		cleared := responseCookie(recorder, constants.AccessTokenCookieName)
		require.NotNil(t, cleared)
		assert.Equal(t, -1, cleared.MaxAge)
		assert.Empty(t, cleared.Value)
	})

	t.Run("an expired cookie token proceeds anonymously and drops the cookie", func(t *testing.T) {
		accessToken := newExpiredAccessToken(t, "user-3")

		var got *sec.IdentityClaims
		handler := Authenticate(tokens)(claimsProbe(&got))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: accessToken})
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Nil(t, got)

		cleared := responseCookie(recorder, constants.AccessTokenCookieName)
		require.NotNil(t, cleared)
		assert.Equal(t, -1, cleared.MaxAge)
	})

	t.Run("a forged bearer token stops the request with 401", func(t *testing.T) {
		var got *sec.IdentityClaims
		handler := Authenticate(tokens)(claimsProbe(&got))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer forged.token.value")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Nil(t, got)
	})

	t.Run("an expired bearer token stops the request with 410", func(t *testing.T) {
		accessToken := newExpiredAccessToken(t, "user-4")

		handler := Authenticate(tokens)(claimsProbe(new(*sec.IdentityClaims)))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+accessToken)
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusGone, recorder.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth()(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	t.Run("rejects anonymous requests", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("passes authenticated requests", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := ctxutil.WithAuthUser(request.Context(), &sec.IdentityClaims{UserID: "user-1"})

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request.WithContext(ctx))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("surfaces the stale cookie error so the client refreshes", func(t *testing.T) {
		tokens := newAuthTestTokens(t)
		accessToken := newExpiredAccessToken(t, "user-5")

		guarded := Authenticate(tokens)(handler)

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: accessToken})
		recorder := httptest.NewRecorder()

		guarded.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusGone, recorder.Code)
	})
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(sec.RoleStaff)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	testCases := []struct {
		role string
		want int
	}{
		{role: "admin", want: http.StatusOK},
		{role: "staff", want: http.StatusOK},
		{role: "client", want: http.StatusForbidden},
		{role: "made-up", want: http.StatusForbidden},
	}

	for _, testCase := range testCases {
		t.Run(testCase.role, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			ctx := ctxutil.WithAuthUser(request.Context(), &sec.IdentityClaims{
				UserID: "user-1",
				Role:   testCase.role,
			})

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request.WithContext(ctx))
			assert.Equal(t, testCase.want, recorder.Code)
		})
	}
}

func TestRequireVerifiedPhone(t *testing.T) {
	tokens := newAuthTestTokens(t)

	var gotPhone string
	handler := RequireVerifiedPhone(tokens)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotPhone = ctxutil.GetVerifiedPhone(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	t.Run("injects the proven phone from the verify cookie", func(t *testing.T) {
		gotPhone = ""
		verifyToken, err := tokens.GenerateVerifyToken("0912345678")
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodPut, "/reset-password", nil)
		request.AddCookie(&http.Cookie{Name: constants.VerifyTokenCookieName, Value: verifyToken})
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "0912345678", gotPhone)
	})

	t.Run("rejects when the cookie is absent", func(t *testing.T) {
		gotPhone = ""
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/reset-password", nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Empty(t, gotPhone)
	})

	t.Run("an access token is not a verification proof", func(t *testing.T) {
		gotPhone = ""
		accessToken, err := tokens.GenerateAccessToken("user-1", "0912345678", "client")
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodPut, "/reset-password", nil)
		request.AddCookie(&http.Cookie{Name: constants.VerifyTokenCookieName, Value: accessToken})
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Empty(t, gotPhone)
	})
}
