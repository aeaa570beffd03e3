// Copyright (c) 2026 Petbox. All rights reserved.

/*
Package social implements the OAuth code-exchange side of social login.

Each provider turns a one-time authorization artifact (obtained by the
storefront SPA) into a verified profile. The server performs the exchange so
client secrets never leave the backend; the SPA only ever holds the short-lived
authorization code.

Supported Providers:

  - Google: standard authorization-code grant plus the OpenID userinfo endpoint.
  - Zalo: authorization-code grant with PKCE (code_verifier) plus the Graph API.

The rest of the system depends only on the [Provider] interface; provider
selection happens by name in the registry.
*/
package social

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/petbox/petbox-server/internal/platform/apperr"
)

// Provider names accepted on the wire. These values are also persisted in
// the account's social link list, so they must never change.
const (
	ProviderGoogle = "google"
	ProviderZalo   = "zalo"
)

// defaultHTTPTimeout bounds each outbound provider call. It must stay well
// under the global request timeout so a slow provider fails fast.
const defaultHTTPTimeout = 10 * time.Second

// Artifact is the client-supplied proof of a completed provider consent screen.
//
// Google uses Code alone. Zalo uses Code plus CodeVerifier (PKCE).
type Artifact struct {
	Code         string `json:"code"`
	CodeVerifier string `json:"codeVerifier,omitempty"`
}

// Profile is the provider-agnostic identity extracted after a successful exchange.
//
// ProviderUserID is stable per provider account and is the value stored in the
// account's social links; everything else is best-effort display data.
type Profile struct {
	Provider       string
	ProviderUserID string
	Name           string
	Email          string
	Avatar         string
}

// Provider exchanges an authorization artifact for a verified profile.
//
// Implementations return apperr.TokenInvalid for artifacts the provider
// rejects (expired code, bad verifier) and apperr.External for transport or
// provider-side failures.
type Provider interface {
	// Name returns the wire identifier of this provider.
	Name() string

	// ExchangeAndFetchProfile performs the code exchange and profile fetch.
	ExchangeAndFetchProfile(ctx context.Context, artifact Artifact) (*Profile, error)
}

// Registry resolves providers by wire name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry from the given providers.
func NewRegistry(providers ...Provider) *Registry {
	registry := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, provider := range providers {
		registry.providers[provider.Name()] = provider
	}
	return registry
}

// Lookup returns the provider registered under name.
//
// An unknown name is a client error, not a system error: the request named
// a provider this deployment does not support.
func (registry *Registry) Lookup(name string) (Provider, error) {
	provider, found := registry.providers[name]
	if !found {
		return nil, apperr.RequestInvalid(fmt.Sprintf("Unsupported social provider: %s", name))
	}
	return provider, nil
}

// newHTTPClient returns the shared outbound client configuration for providers.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// invalidArtifactError classifies a provider-rejected artifact as a client fault.
func invalidArtifactError(providerName string) error {
	return apperr.TokenInvalid(fmt.Sprintf("The %s authorization code was rejected", providerName))
}

// externalError classifies transport or provider-side failures. The cause
// stays server-side.
func externalError(providerName string, cause error) error {
	return apperr.External(fmt.Errorf("social: %s provider call failed: %w", providerName, cause))
}
