// Copyright (c) 2026 Petbox. All rights reserved.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_StatusAndCode(t *testing.T) {
	testCases := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{name: "request invalid", err: RequestInvalid("x"), wantCode: CodeRequestInvalid, wantStatus: http.StatusBadRequest},
		{name: "rate limited", err: RequestExceedAllowed("x"), wantCode: CodeRequestExceedAllowed, wantStatus: http.StatusTooManyRequests},
		{name: "token invalid", err: TokenInvalid("x"), wantCode: CodeTokenInvalid, wantStatus: http.StatusUnauthorized},
		{name: "token expired", err: TokenExpired("x"), wantCode: CodeTokenExpired, wantStatus: http.StatusGone},
		{name: "otp invalid", err: OTPInvalid("x"), wantCode: CodeOTPInvalid, wantStatus: http.StatusBadRequest},
		{name: "otp expired", err: OTPExpired("x"), wantCode: CodeOTPExpired, wantStatus: http.StatusBadRequest},
		{name: "user not found", err: UserNotFound("x"), wantCode: CodeUserNotFound, wantStatus: http.StatusNotFound},
		{name: "bad credentials", err: InvalidCredentials("x"), wantCode: CodeUserInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "already exists", err: AlreadyExists("x"), wantCode: CodeUserAlreadyExists, wantStatus: http.StatusConflict},
		{name: "validation", err: ValidationError("x"), wantCode: CodeValidationFailed, wantStatus: http.StatusUnprocessableEntity},
		{name: "internal", err: Internal(errors.New("boom")), wantCode: CodeSystemInternal, wantStatus: http.StatusInternalServerError},
		{name: "external", err: External(errors.New("boom")), wantCode: CodeSystemExternal, wantStatus: http.StatusBadGateway},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.wantCode, testCase.err.Code)
			assert.Equal(t, testCase.wantStatus, testCase.err.HTTPStatus)
		})
	}
}

func TestSystemErrors_HideTheCause(t *testing.T) {
	cause := errors.New("pq: duplicate key value violates unique constraint")
	appError := Internal(cause)

	assert.NotContains(t, appError.Error(), "pq:", "internal details must never surface")
	assert.False(t, appError.Operational)
	assert.ErrorIs(t, appError, cause, "the cause stays reachable for logging")
}

func TestIsCode_TraversesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer context: %w", UserNotFound("gone"))

	assert.True(t, IsCode(wrapped, CodeUserNotFound))
	assert.False(t, IsCode(wrapped, CodeUserAlreadyExists))
	assert.True(t, IsAppError(wrapped))

	appError := As(wrapped)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusNotFound, appError.HTTPStatus)
}

func TestValidationError_CarriesFieldDetails(t *testing.T) {
	appError := ValidationError("Input validation failed",
		FieldError{Field: "phone", Code: "VALIDATION_PATTERN_MISMATCH", Message: "Must be a valid phone number"},
	)

	require.Len(t, appError.Details, 1)
	assert.Equal(t, "phone", appError.Details[0].Field)
}
