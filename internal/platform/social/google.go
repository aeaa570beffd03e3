// Copyright (c) 2026 Petbox. All rights reserved.

package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Google OAuth endpoints.
const (
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// GoogleConfig carries the OAuth client credentials issued by the
// Google Cloud console.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// GoogleProvider implements [Provider] for Google sign-in.
type GoogleProvider struct {
	config GoogleConfig
	client *http.Client
}

// NewGoogleProvider creates a Google provider from OAuth client credentials.
func NewGoogleProvider(config GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		config: config,
		client: newHTTPClient(),
	}
}

// Name implements [Provider].
func (provider *GoogleProvider) Name() string { return ProviderGoogle }

// googleTokenResponse is the relevant subset of Google's token endpoint payload.
type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// googleUserInfo is the relevant subset of the OpenID userinfo payload.
type googleUserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// ExchangeAndFetchProfile implements [Provider].
//
// The flow is the standard two-step authorization-code grant:
//
//  1. POST the code to the token endpoint for an access token.
//  2. GET the userinfo endpoint with that token.
func (provider *GoogleProvider) ExchangeAndFetchProfile(ctx context.Context, artifact Artifact) (*Profile, error) {

	// 1. Exchange the authorization code for an access token
	form := url.Values{
		"code":          {artifact.Code},
		"client_id":     {provider.config.ClientID},
		"client_secret": {provider.config.ClientSecret},
		"redirect_uri":  {provider.config.RedirectURI},
		"grant_type":    {"authorization_code"},
	}

	tokenResponse := googleTokenResponse{}
	if err := provider.postForm(ctx, googleTokenURL, form, &tokenResponse); err != nil {
		return nil, err
	}

	if tokenResponse.AccessToken == "" {
		return nil, invalidArtifactError(ProviderGoogle)
	}

	// 2. Fetch the user's OpenID profile
	userInfo := googleUserInfo{}
	if err := provider.getJSON(ctx, googleUserInfoURL, tokenResponse.AccessToken, &userInfo); err != nil {
		return nil, err
	}

	if userInfo.Sub == "" {
		return nil, externalError(ProviderGoogle, fmt.Errorf("userinfo response missing subject"))
	}

	return &Profile{
		Provider:       ProviderGoogle,
		ProviderUserID: userInfo.Sub,
		Name:           userInfo.Name,
		Email:          userInfo.Email,
		Avatar:         userInfo.Picture,
	}, nil
}

// postForm submits a form-encoded POST and decodes the JSON response.
func (provider *GoogleProvider) postForm(ctx context.Context, endpoint string, form url.Values, target any) error {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return externalError(ProviderGoogle, err)
	}
	httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := provider.client.Do(httpRequest)
	if err != nil {
		return externalError(ProviderGoogle, err)
	}
	defer func() { _ = response.Body.Close() }()

	// 4xx from the token endpoint means the code was expired, reused, or forged.
	if response.StatusCode >= 400 && response.StatusCode < 500 {
		_, _ = io.Copy(io.Discard, response.Body)
		return invalidArtifactError(ProviderGoogle)
	}
	if response.StatusCode != http.StatusOK {
		return externalError(ProviderGoogle, fmt.Errorf("token endpoint returned status %d", response.StatusCode))
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return externalError(ProviderGoogle, err)
	}
	return nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (provider *GoogleProvider) getJSON(ctx context.Context, endpoint, accessToken string, target any) error {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return externalError(ProviderGoogle, err)
	}
	httpRequest.Header.Set("Authorization", "Bearer "+accessToken)

	response, err := provider.client.Do(httpRequest)
	if err != nil {
		return externalError(ProviderGoogle, err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return externalError(ProviderGoogle, fmt.Errorf("userinfo endpoint returned status %d", response.StatusCode))
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return externalError(ProviderGoogle, err)
	}
	return nil
}
