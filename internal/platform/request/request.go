// Copyright (c) 2026 Petbox. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/petbox/petbox-server/internal/platform/apperr"
	"github.com/petbox/petbox-server/internal/platform/ctxutil"
	"github.com/petbox/petbox-server/internal/platform/sec"
	"github.com/petbox/petbox-server/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Cookie returns the value of the named cookie, or an empty string if absent.
*/
func Cookie(request *http.Request, name string) string {
	cookie, err := request.Cookie(name)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}

/*
Claims extracts the authenticated identity claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.IdentityClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the identity claims.

Returns:
  - *sec.IdentityClaims: The authenticated identity claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.IdentityClaims, error) {

	// Get identity claims
	claims := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

/*
RequiredVerifiedPhone returns the phone number proven by a verification token.

Returns:
  - string: Phone number from the verifyToken cookie claims
  - error: apperr.Unauthorized if no valid verification token is present
*/
func RequiredVerifiedPhone(request *http.Request) (string, error) {

	// Get the verified phone injected by the verification middleware
	phone := ctxutil.GetVerifiedPhone(request.Context())

	// If no verification token was presented, the flow must restart at OTP
	if phone == "" {
		return "", apperr.Unauthorized("Phone verification required")
	}

	return phone, nil
}
