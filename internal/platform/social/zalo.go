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

// Zalo OAuth v4 and Graph API endpoints.
const (
	zaloTokenURL   = "https://oauth.zaloapp.com/v4/access_token"
	zaloProfileURL = "https://graph.zalo.me/v2.0/me"

	// zaloProfileFields selects the profile projection from the Graph API.
	zaloProfileFields = "id,name,picture"
)

// ZaloConfig carries the app credentials issued by the Zalo developer console.
type ZaloConfig struct {
	AppID     string
	AppSecret string
}

// ZaloProvider implements [Provider] for Zalo sign-in.
//
// Zalo's v4 flow differs from Google's in two ways: the exchange is protected
// by PKCE (the client must echo back its code_verifier), and the app secret
// travels in a dedicated secret_key header rather than the form body.
type ZaloProvider struct {
	config ZaloConfig
	client *http.Client
}

// NewZaloProvider creates a Zalo provider from app credentials.
func NewZaloProvider(config ZaloConfig) *ZaloProvider {
	return &ZaloProvider{
		config: config,
		client: newHTTPClient(),
	}
}

// Name implements [Provider].
func (provider *ZaloProvider) Name() string { return ProviderZalo }

// zaloTokenResponse is the relevant subset of Zalo's token endpoint payload.
//
// Zalo reports failures with a 200 status and an error code in the body,
// so the error fields must be decoded alongside the token.
type zaloTokenResponse struct {
	AccessToken string `json:"access_token"`
	ErrorCode   int    `json:"error,omitempty"`
	ErrorName   string `json:"error_name,omitempty"`
}

// zaloUserInfo is the relevant subset of the Graph API profile payload.
type zaloUserInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
	ErrorCode int `json:"error,omitempty"`
}

// ExchangeAndFetchProfile implements [Provider].
func (provider *ZaloProvider) ExchangeAndFetchProfile(ctx context.Context, artifact Artifact) (*Profile, error) {

	// PKCE is mandatory in Zalo's v4 flow
	if artifact.CodeVerifier == "" {
		return nil, invalidArtifactError(ProviderZalo)
	}

	// 1. Exchange the authorization code (with PKCE verifier) for an access token
	form := url.Values{
		"code":          {artifact.Code},
		"app_id":        {provider.config.AppID},
		"grant_type":    {"authorization_code"},
		"code_verifier": {artifact.CodeVerifier},
	}

	tokenResponse, err := provider.exchangeCode(ctx, form)
	if err != nil {
		return nil, err
	}

	// 2. Fetch the user's Graph profile
	userInfo, err := provider.fetchProfile(ctx, tokenResponse.AccessToken)
	if err != nil {
		return nil, err
	}

	return &Profile{
		Provider:       ProviderZalo,
		ProviderUserID: userInfo.ID,
		Name:           userInfo.Name,
		Avatar:         userInfo.Picture.Data.URL,
	}, nil
}

// exchangeCode performs the PKCE token exchange against the OAuth v4 endpoint.
func (provider *ZaloProvider) exchangeCode(ctx context.Context, form url.Values) (*zaloTokenResponse, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, zaloTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, externalError(ProviderZalo, err)
	}
	httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// The app secret travels in a dedicated header, never in the body.
	httpRequest.Header.Set("secret_key", provider.config.AppSecret)

	response, err := provider.client.Do(httpRequest)
	if err != nil {
		return nil, externalError(ProviderZalo, err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode >= 400 && response.StatusCode < 500 {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil, invalidArtifactError(ProviderZalo)
	}
	if response.StatusCode != http.StatusOK {
		return nil, externalError(ProviderZalo, fmt.Errorf("token endpoint returned status %d", response.StatusCode))
	}

	tokenResponse := zaloTokenResponse{}
	if err := json.NewDecoder(response.Body).Decode(&tokenResponse); err != nil {
		return nil, externalError(ProviderZalo, err)
	}

	// In-body error codes cover expired and replayed codes.
	if tokenResponse.ErrorCode != 0 || tokenResponse.AccessToken == "" {
		return nil, invalidArtifactError(ProviderZalo)
	}

	return &tokenResponse, nil
}

// fetchProfile reads the user's profile from the Graph API.
func (provider *ZaloProvider) fetchProfile(ctx context.Context, accessToken string) (*zaloUserInfo, error) {
	endpoint := zaloProfileURL + "?fields=" + url.QueryEscape(zaloProfileFields)

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, externalError(ProviderZalo, err)
	}

	// The Graph API authenticates via an access_token header.
	httpRequest.Header.Set("access_token", accessToken)

	response, err := provider.client.Do(httpRequest)
	if err != nil {
		return nil, externalError(ProviderZalo, err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return nil, externalError(ProviderZalo, fmt.Errorf("profile endpoint returned status %d", response.StatusCode))
	}

	userInfo := zaloUserInfo{}
	if err := json.NewDecoder(response.Body).Decode(&userInfo); err != nil {
		return nil, externalError(ProviderZalo, err)
	}

	if userInfo.ErrorCode != 0 || userInfo.ID == "" {
		return nil, externalError(ProviderZalo, fmt.Errorf("profile response reported error code %d", userInfo.ErrorCode))
	}

	return &userInfo, nil
}
