// Copyright (c) 2026 Petbox. All rights reserved.

/*
Package sms abstracts one-time-passcode delivery and checking over SMS.

The delivery provider owns code generation, storage, and matching; this
backend never sees or stores the OTP value itself. The package defines a
narrow [Verifier] interface plus the canonical verification outcomes, and
ships a Twilio Verify implementation.

Outcome Taxonomy:

  - StatusPending: the code did not match; the cycle is still open.
  - StatusApproved: the code matched; the cycle is consumed.
  - StatusExpired / StatusCanceled: the cycle lapsed; a new code is required.
*/
package sms

import "context"

// Verification outcome statuses, normalized across providers.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusExpired  = "expired"
	StatusCanceled = "canceled"
)

// Verifier sends OTP codes and checks the codes users type back.
//
// Implementations return apperr.External for transport or provider-side
// failures; a wrong code is NOT an error — it comes back as a non-approved
// status so the service layer can classify it.
type Verifier interface {
	// StartVerification asks the provider to deliver a fresh code to phone.
	StartVerification(ctx context.Context, phone string) error

	// CheckVerification submits a user-typed code and returns the outcome status.
	CheckVerification(ctx context.Context, phone, code string) (string, error)
}
