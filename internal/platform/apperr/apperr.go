// Copyright (c) 2026 Petbox. All rights reserved.

/*
Package apperr defines the centralized error handling framework for Petbox.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: Request, Token, OTP, User, Validation, and System error families.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// # Error Codes

// Machine-readable identifiers returned to API clients.
const (
	CodeRequestInvalid         = "REQUEST_INVALID"
	CodeRequestExceedAllowed   = "REQUEST_EXCEED_ALLOWED"
	CodeTokenInvalid           = "TOKEN_INVALID"
	CodeTokenExpired           = "TOKEN_EXPIRED"
	CodeOTPInvalid             = "OTP_INVALID"
	CodeOTPExpired             = "OTP_EXPIRED"
	CodeUserNotFound           = "USER_NOT_FOUND"
	CodeUserInvalidCredentials = "USER_INVALID_CREDENTIALS"
	CodeUserUnauthorized       = "USER_UNAUTHORIZED"
	CodeUserForbidden          = "USER_FORBIDDEN"
	CodeUserAlreadyExists      = "USER_ALREADY_EXISTS"
	CodeNotFound               = "NOT_FOUND"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeSystemInternal         = "SYSTEM_INTERNAL_ERROR"
	CodeSystemExternal         = "SYSTEM_EXTERNAL_ERROR"
)

// AppError is the canonical error type for the Petbox API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries or
// provider responses).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "USER_NOT_FOUND").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Operational reports whether the failure is an expected business outcome
	// (safe to surface verbatim) as opposed to a system fault.
	Operational bool `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_FAILED responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Code classifies the failure (e.g. "VALIDATION_MISSING_FIELD").
	Code string `json:"code"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Request Errors

// RequestInvalid creates a 400 [AppError] for malformed or unsupported requests.
func RequestInvalid(msg string) *AppError {
	return &AppError{
		Code:        CodeRequestInvalid,
		Message:     msg,
		HTTPStatus:  http.StatusBadRequest,
		Operational: true,
	}
}

// RequestExceedAllowed creates a 429 [AppError] for rate-limited operations.
// The caller must wait out the window; nothing is retried server-side.
func RequestExceedAllowed(msg string) *AppError {
	return &AppError{
		Code:        CodeRequestExceedAllowed,
		Message:     msg,
		HTTPStatus:  http.StatusTooManyRequests,
		Operational: true,
	}
}

// # Token Errors

// TokenInvalid creates a 401 [AppError] for a malformed or forged token.
// Clients receiving this must force re-authentication.
func TokenInvalid(msg string) *AppError {
	return &AppError{
		Code:        CodeTokenInvalid,
		Message:     msg,
		HTTPStatus:  http.StatusUnauthorized,
		Operational: true,
	}
}

// TokenExpired creates a 410 [AppError] for a well-formed token past its expiry.
// Clients receiving this should attempt a refresh before re-authenticating.
func TokenExpired(msg string) *AppError {
	return &AppError{
		Code:        CodeTokenExpired,
		Message:     msg,
		HTTPStatus:  http.StatusGone,
		Operational: true,
	}
}

// # OTP Errors

// OTPInvalid creates a 400 [AppError] for a wrong or unconsumed OTP code.
// Verification may be retried immediately; only requesting a code is throttled.
func OTPInvalid(msg string) *AppError {
	return &AppError{
		Code:        CodeOTPInvalid,
		Message:     msg,
		HTTPStatus:  http.StatusBadRequest,
		Operational: true,
	}
}

// OTPExpired creates a 400 [AppError] for an OTP cycle that has lapsed.
func OTPExpired(msg string) *AppError {
	return &AppError{
		Code:        CodeOTPExpired,
		Message:     msg,
		HTTPStatus:  http.StatusBadRequest,
		Operational: true,
	}
}

// # User Errors

// UserNotFound creates a 404 [AppError] when no account resolves the identifier.
func UserNotFound(msg string) *AppError {
	return &AppError{
		Code:        CodeUserNotFound,
		Message:     msg,
		HTTPStatus:  http.StatusNotFound,
		Operational: true,
	}
}

// InvalidCredentials creates a 401 [AppError] for a password mismatch.
func InvalidCredentials(msg string) *AppError {
	return &AppError{
		Code:        CodeUserInvalidCredentials,
		Message:     msg,
		HTTPStatus:  http.StatusUnauthorized,
		Operational: true,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:        CodeUserUnauthorized,
		Message:     msg,
		HTTPStatus:  http.StatusUnauthorized,
		Operational: true,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:        CodeUserForbidden,
		Message:     msg,
		HTTPStatus:  http.StatusForbidden,
		Operational: true,
	}
}

// AlreadyExists creates a 409 [AppError] for duplicate accounts or
// unique-constraint violations.
func AlreadyExists(msg string) *AppError {
	return &AppError{
		Code:        CodeUserAlreadyExists,
		Message:     msg,
		HTTPStatus:  http.StatusConflict,
		Operational: true,
	}
}

// NotFound creates a 404 [AppError] for a named non-user resource.
//
// Example:
//
//	apperr.NotFound("Product") // Returns "Product not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:        CodeNotFound,
		Message:     resource + " not found",
		HTTPStatus:  http.StatusNotFound,
		Operational: true,
	}
}

// # Validation Errors

// ValidationError creates a 422 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:        CodeValidationFailed,
		Message:     msg,
		HTTPStatus:  http.StatusUnprocessableEntity,
		Operational: true,
		Details:     details,
	}
}

// # System Errors (non-operational)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeSystemInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// External creates a 502 [AppError] for a downstream provider failure
// (SMS delivery, OAuth exchange, database outage). The cause stays server-side.
func External(cause error) *AppError {
	return &AppError{
		Code:       CodeSystemExternal,
		Message:    "An upstream service failed",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsCode reports whether err resolves to an [*AppError] with the given code.
func IsCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
