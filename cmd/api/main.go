// Copyright (c) 2026 Petbox. All rights reserved.

// Command api runs the Petbox HTTP API server.
//
// Startup order: config → logger → postgres → migrations → redis → token
// service → providers → domain wiring → HTTP server. Any failure before the
// listener is up aborts the process.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/petbox/petbox-server/internal/api"
	"github.com/petbox/petbox-server/internal/catalog"
	"github.com/petbox/petbox-server/internal/platform/config"
	"github.com/petbox/petbox-server/internal/platform/constants"
	"github.com/petbox/petbox-server/internal/platform/migration"
	"github.com/petbox/petbox-server/internal/platform/postgres"
	"github.com/petbox/petbox-server/internal/platform/redis"
	"github.com/petbox/petbox-server/internal/platform/sec"
	"github.com/petbox/petbox-server/internal/platform/sms"
	"github.com/petbox/petbox-server/internal/platform/social"
	"github.com/petbox/petbox-server/internal/users/auth"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Configuration and logging come first; everything else reports
	// through them.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting",
		slog.String("service", constants.AppName),
		slog.String("version", constants.AppVersion),
		slog.String("environment", cfg.Environment),
	)

	fatal := func(event string, err error) {
		logger.Error(event, slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Backing stores
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		fatal("postgres_connect_failed", err)
	}
	defer pool.Close()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		fatal("migration_failed", err)
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		fatal("redis_connect_failed", err)
	}
	defer func() { _ = redisClient.Close() }()

	// 3. Security and provider services
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		VerifySecret:  cfg.VerifyTokenSecret,
		AccessLife:    cfg.AccessTokenLife,
		RefreshLife:   cfg.RefreshTokenLife,
		VerifyLife:    cfg.VerifyTokenLife,
		Issuer:        constants.AuthIssuer,
	})
	if err != nil {
		fatal("token_service_init_failed", err)
	}

	smsVerifier := sms.NewTwilioVerifier(sms.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		ServiceSID: cfg.TwilioServiceSID,
	})

	socialRegistry := social.NewRegistry(
		social.NewGoogleProvider(social.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURI:  cfg.GoogleRedirectURI,
		}),
		social.NewZaloProvider(social.ZaloConfig{
			AppID:     cfg.ZaloAppID,
			AppSecret: cfg.ZaloAppSecret,
		}),
	)

	// 4. Domain wiring
	authService := auth.NewService(
		auth.NewPostgresUserRepository(pool),
		auth.NewRedisPendingSocialStore(redisClient, cfg.VerifyTokenLife),
		auth.NewRedisOTPLimiter(redisClient, auth.OTPLimiterConfig{
			MaxPerShortWindow: cfg.OTPMaxPer10Min,
			MaxPerDailyWindow: cfg.OTPMaxPerDay,
			ShortWindow:       cfg.OTPWindow10Min,
			DailyWindow:       cfg.OTPWindowDaily,
		}),
		smsVerifier,
		socialRegistry,
		tokens,
		logger,
	)

	authHandler := auth.NewHandler(authService, tokens, auth.CookieConfig{
		AccessLife:  cfg.AccessTokenLife,
		RefreshLife: cfg.RefreshTokenLife,
		VerifyLife:  cfg.VerifyTokenLife,
	})

	catalogHandler := catalog.NewHandler(catalog.NewPostgresRepository(pool))

	health := api.NewHealthChecker(map[string]api.DependencyChecker{
		"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, pool) },
		"redis":    func(ctx context.Context) error { return redis.Ping(ctx, redisClient) },
	})

	// 5. Serve until interrupted
	server := api.NewServer(ctx, api.Dependencies{
		Config:         cfg,
		Logger:         logger,
		TokenVerifier:  tokens,
		AuthHandler:    authHandler,
		CatalogHandler: catalogHandler,
		Health:         health,
	})

	if err := server.Run(ctx); err != nil {
		fatal("server_run_failed", err)
	}
}

// newLogger builds the process-wide JSON logger.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("service", constants.AppName))
}
