// Copyright (c) 2026 Petbox. All rights reserved.

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used exclusively at the HTTP boundary — handlers validate
// the decoded payload before passing it to the service layer, so business
// logic only operates on semantically valid data.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/petbox/petbox-server/internal/platform/apperr"
)

// # Field Sub-Codes

// Sub-codes attached to each [apperr.FieldError] so clients can localize
// failures without parsing English messages.
const (
	SubCodeMissing = "VALIDATION_MISSING_FIELD"
	SubCodeFormat  = "VALIDATION_FORMAT_ERROR"
	SubCodePattern = "VALIDATION_PATTERN_MISMATCH"
	SubCodeLength  = "VALIDATION_LENGTH_INVALID"
	SubCodeRange   = "VALIDATION_RANGE_INVALID"
	SubCodeEnum    = "VALIDATION_ENUM_INVALID"
	SubCodeInvalid = "VALIDATION_INVALID_INPUT"
)

var (
	// phoneRegex matches Vietnamese mobile numbers: +84/84/0 prefix followed
	// by a valid carrier digit and 8 more digits.
	phoneRegex = regexp.MustCompile(`^((\+84|84|0)([35789])([0-9]{8}))$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.RequestInvalid("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, SubCodeMissing, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, SubCodeLength, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, SubCodeLength, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 email address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, SubCodeFormat, "Must be a valid email address")
	}
	return v
}

// Phone fails if the value is not a valid Vietnamese mobile number.
func (v *Validator) Phone(field, value string) *Validator {
	if !phoneRegex.MatchString(value) {
		v.add(field, SubCodePattern, "Must be a valid phone number")
	}
	return v
}

// Password fails unless the value is at least 8 characters and contains
// both a letter and a digit.
func (v *Validator) Password(field, value string) *Validator {
	if utf8.RuneCountInString(value) < 8 {
		v.add(field, SubCodeLength, "Minimum 8 characters")
		return v
	}

	hasLetter, hasDigit := false, false
	for _, r := range value {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		v.add(field, SubCodePattern, "Must contain at least one letter and one digit")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, SubCodeEnum, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("gender", !isKnownGender(g), "Unknown gender value")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, SubCodeInvalid, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_FAILED) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Input validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, code, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Code: code, Message: message})
}
