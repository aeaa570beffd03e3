// Copyright (c) 2026 Petbox. All rights reserved.

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petbox/petbox-server/internal/platform/apperr"
)

func TestValidator_Phone(t *testing.T) {
	testCases := []struct {
		name  string
		phone string
		valid bool
	}{
		{name: "leading zero mobile", phone: "0912345678", valid: true},
		{name: "plus country code", phone: "+84912345678", valid: true},
		{name: "bare country code", phone: "84912345678", valid: true},
		{name: "viettel prefix", phone: "0351234567", valid: true},
		{name: "carrier digit three", phone: "0312345678", valid: true},
		{name: "too short", phone: "091234567", valid: false},
		{name: "too long", phone: "09123456789", valid: false},
		{name: "landline carrier digit", phone: "0212345678", valid: false},
		{name: "letters", phone: "09123abcde", valid: false},
		{name: "empty", phone: "", valid: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			validator := &Validator{}
			validator.Phone("phone", testCase.phone)
			assert.Equal(t, !testCase.valid, validator.HasErrors())
		})
	}
}

func TestValidator_Password(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "letters and digits", password: "Abcdef12", valid: true},
		{name: "too short", password: "Abc12", valid: false},
		{name: "digits only", password: "12345678", valid: false},
		{name: "letters only", password: "Abcdefgh", valid: false},
		{name: "symbols allowed", password: "Abcdef1!", valid: true},
		{name: "unicode letters count", password: "mậtkhẩu1", valid: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			validator := &Validator{}
			validator.Password("password", testCase.password)
			assert.Equal(t, !testCase.valid, validator.HasErrors())
		})
	}
}

func TestValidator_ChainCollectsAllFailures(t *testing.T) {
	validator := &Validator{}
	err := validator.
		Required("fullName", "").
		Phone("phone", "not-a-phone").
		Password("password", "short").
		Err()

	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeValidationFailed, appError.Code)
	assert.Len(t, appError.Details, 3, "every failed rule contributes a field error")

	fields := make([]string, 0, len(appError.Details))
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.ElementsMatch(t, []string{"fullName", "phone", "password"}, fields)
}

func TestValidator_PassingChainReturnsNil(t *testing.T) {
	validator := &Validator{}
	err := validator.
		Required("fullName", "Nguyen Van A").
		Phone("phone", "0912345678").
		Password("password", "Abcdef12").
		OneOf("type", "normal", "normal", "social").
		Err()

	assert.NoError(t, err)
}

func TestValidator_Custom(t *testing.T) {
	validator := &Validator{}
	validator.Custom("birthDate", true, "Must be a date in YYYY-MM-DD format")

	err := validator.Err()
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	require.Len(t, appError.Details, 1)
	assert.Equal(t, SubCodeInvalid, appError.Details[0].Code)
}
