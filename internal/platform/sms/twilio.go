// Copyright (c) 2026 Petbox. All rights reserved.

package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/petbox/petbox-server/internal/platform/apperr"
)

// Twilio Verify v2 REST API.
const (
	twilioBaseURL = "https://verify.twilio.com/v2/Services"

	// twilioHTTPTimeout bounds each Verify API call.
	twilioHTTPTimeout = 10 * time.Second
)

// TwilioConfig carries the Verify service credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	ServiceSID string
}

// TwilioVerifier implements [Verifier] on top of the Twilio Verify v2 REST API.
//
// Verify owns the whole OTP lifecycle — generation, delivery, expiry, and
// matching — so the only state this side keeps is the rate-limit counters.
type TwilioVerifier struct {
	config TwilioConfig
	client *http.Client
}

// NewTwilioVerifier creates a Twilio-backed verifier.
func NewTwilioVerifier(config TwilioConfig) *TwilioVerifier {
	return &TwilioVerifier{
		config: config,
		client: &http.Client{Timeout: twilioHTTPTimeout},
	}
}

// twilioVerification is the relevant subset of a Verification(Check) resource.
type twilioVerification struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	Valid  bool   `json:"valid"`
}

// StartVerification implements [Verifier].
func (verifier *TwilioVerifier) StartVerification(ctx context.Context, phone string) error {
	endpoint := fmt.Sprintf("%s/%s/Verifications", twilioBaseURL, verifier.config.ServiceSID)

	form := url.Values{
		"To":      {phone},
		"Channel": {"sms"},
	}

	verification, err := verifier.post(ctx, endpoint, form)
	if err != nil {
		return err
	}

	// A fresh cycle starts as pending; anything else is a provider anomaly.
	if verification.Status != StatusPending {
		return apperr.External(fmt.Errorf("sms: unexpected verification status %q", verification.Status))
	}

	return nil
}

// CheckVerification implements [Verifier].
//
// Twilio reports a no-longer-checkable cycle (expired, already approved, or
// max attempts reached) as HTTP 404 on the VerificationCheck resource. That
// is normalized to StatusExpired so the service layer can tell the user to
// request a new code.
func (verifier *TwilioVerifier) CheckVerification(ctx context.Context, phone, code string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/VerificationCheck", twilioBaseURL, verifier.config.ServiceSID)

	form := url.Values{
		"To":   {phone},
		"Code": {code},
	}

	verification, err := verifier.post(ctx, endpoint, form)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return StatusExpired, nil
		}
		return "", err
	}

	return verification.Status, nil
}

// post submits a form-encoded request with basic auth and decodes the resource.
func (verifier *TwilioVerifier) post(ctx context.Context, endpoint string, form url.Values) (*twilioVerification, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperr.External(fmt.Errorf("sms: failed to build request: %w", err))
	}
	httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpRequest.SetBasicAuth(verifier.config.AccountSID, verifier.config.AuthToken)

	response, err := verifier.client.Do(httpRequest)
	if err != nil {
		return nil, apperr.External(fmt.Errorf("sms: verify API call failed: %w", err))
	}
	defer func() { _ = response.Body.Close() }()

	switch {
	case response.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, response.Body)
		return nil, apperr.NotFound("Verification")
	case response.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, response.Body)
		return nil, apperr.RequestExceedAllowed("SMS provider rate limit reached")
	case response.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return nil, apperr.External(fmt.Errorf("sms: verify API returned status %d: %s", response.StatusCode, string(body)))
	}

	verification := twilioVerification{}
	if err := json.NewDecoder(response.Body).Decode(&verification); err != nil {
		return nil, apperr.External(fmt.Errorf("sms: failed to decode verify response: %w", err))
	}

	return &verification, nil
}
