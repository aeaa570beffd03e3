// Copyright (c) 2026 Petbox. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces defined at the point of use.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/petbox/petbox-server/internal/platform/apperr"
)

// IdentityClaims represents the payload embedded inside a Petbox JWT.
//
// # Why custom claims?
//
// By embedding the UserID, Phone, and Role directly inside the JWT,
// the auth middleware can reconstruct the active user context WITHOUT
// querying the database on every single API request.
//
// Verification tokens carry only the Phone: they prove recent OTP success
// for one number, nothing more.
type IdentityClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string `json:"uid,omitempty"`
	Phone  string `json:"phn,omitempty"`
	Role   string `json:"rol,omitempty"`
}

// TokenConfig carries the symmetric secrets and lifetimes for the three
// token kinds. Two tokens signed from the same config at the same instant
// both verify successfully — tokens are stateless and carry no nonce.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	VerifySecret  string

	AccessLife  time.Duration
	RefreshLife time.Duration
	VerifyLife  time.Duration

	Issuer string
}

// TokenService signs and verifies JWT tokens using HS256.
//
// Tokens are never persisted server-side; they are invalidated only by
// expiry or secret rotation.
type TokenService struct {
	config TokenConfig
}

// NewTokenService creates a new TokenService from symmetric secrets.
func NewTokenService(config TokenConfig) (*TokenService, error) {
	if config.AccessSecret == "" || config.RefreshSecret == "" || config.VerifySecret == "" {
		return nil, errors.New("sec: token secrets must not be empty")
	}
	return &TokenService{config: config}, nil
}

// # Signing

// GenerateAccessToken mints a short-lived session token for a user.
func (service *TokenService) GenerateAccessToken(userID, phone, role string) (string, error) {
	return service.sign(IdentityClaims{UserID: userID, Phone: phone, Role: role},
		service.config.AccessSecret, service.config.AccessLife)
}

// GenerateRefreshToken mints a long-lived token used to re-issue access tokens.
func (service *TokenService) GenerateRefreshToken(userID, phone, role string) (string, error) {
	return service.sign(IdentityClaims{UserID: userID, Phone: phone, Role: role},
		service.config.RefreshSecret, service.config.RefreshLife)
}

// GenerateVerifyToken mints a very short-lived token proving OTP success,
// scoped to a single phone number.
func (service *TokenService) GenerateVerifyToken(phone string) (string, error) {
	return service.sign(IdentityClaims{Phone: phone},
		service.config.VerifySecret, service.config.VerifyLife)
}

// sign builds and signs the claims with the given secret and lifetime.
func (service *TokenService) sign(claims IdentityClaims, secret string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		Issuer:    service.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// # Verification

// VerifyAccessToken checks an access token and returns its claims.
func (service *TokenService) VerifyAccessToken(tokenString string) (*IdentityClaims, error) {
	return service.verify(tokenString, service.config.AccessSecret)
}

// VerifyRefreshToken checks a refresh token and returns its claims.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*IdentityClaims, error) {
	return service.verify(tokenString, service.config.RefreshSecret)
}

// VerifyVerifyToken checks a phone verification token and returns its claims.
func (service *TokenService) VerifyVerifyToken(tokenString string) (*IdentityClaims, error) {
	return service.verify(tokenString, service.config.VerifySecret)
}

// verify parses and validates a token against the given secret.
//
// # Error Contract
//
// Expiry (signature valid, clock past exp) is returned as apperr.TokenExpired
// so callers can instruct the client to refresh. Every other failure — bad
// signature, malformed token, wrong secret, wrong algorithm — collapses into
// apperr.TokenInvalid and forces re-authentication. Callers must never
// string-match on the underlying jwt library errors.
func (service *TokenService) verify(tokenString, secret string) (*IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.TokenExpired("Token has expired")
		}
		return nil, apperr.TokenInvalid("Token is invalid")
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, apperr.TokenInvalid("Token is invalid")
	}

	return claims, nil
}
