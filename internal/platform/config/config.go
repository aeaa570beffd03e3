// Copyright (c) 2026 Petbox. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, providers) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Petbox API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) — OTP counters and pending social registrations
	RedisURL string `env:"REDIS_URL,required"`

	// Symmetric signing secrets, one per token kind. Rotating a secret
	// invalidates every outstanding token of that kind.
	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET,required"`
	VerifyTokenSecret  string `env:"VERIFY_TOKEN_SECRET,required"`

	// Token lifetimes
	AccessTokenLife  time.Duration `env:"ACCESS_TOKEN_LIFE"  envDefault:"1h"`
	RefreshTokenLife time.Duration `env:"REFRESH_TOKEN_LIFE" envDefault:"336h"`
	VerifyTokenLife  time.Duration `env:"VERIFY_TOKEN_LIFE"  envDefault:"10m"`

	// OTP fixed-window throttling per phone number
	OTPMaxPer10Min int           `env:"OTP_MAX_PER_10MIN" envDefault:"3"`
	OTPMaxPerDay   int           `env:"OTP_MAX_PER_DAY"   envDefault:"10"`
	OTPWindow10Min time.Duration `env:"OTP_WINDOW_10MIN"  envDefault:"10m"`
	OTPWindowDaily time.Duration `env:"OTP_WINDOW_DAILY"  envDefault:"24h"`

	// SMS verification (Twilio Verify)
	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID,required"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN,required"`
	TwilioServiceSID string `env:"TWILIO_SERVICE_SID,required"`

	// Social identity providers
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI"`
	ZaloAppID          string `env:"ZALO_APP_ID"`
	ZaloAppSecret      string `env:"ZALO_APP_SECRET"`

	// Cross-Origin Resource Sharing: comma-separated whitelist of origins
	// allowed in production (development allows everything).
	WhitelistOrigins string `env:"WHITELIST_ORIGINS" envDefault:"https://petbox-client.vercel.app,http://localhost:3000"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the parsed CORS whitelist.
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.WhitelistOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
