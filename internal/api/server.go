// Copyright (c) 2026 Petbox. All rights reserved.

// Package api composes the HTTP server: router, middleware chain, domain
// route mounting, and graceful shutdown.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/petbox/petbox-server/internal/catalog"
	"github.com/petbox/petbox-server/internal/platform/apperr"
	"github.com/petbox/petbox-server/internal/platform/config"
	"github.com/petbox/petbox-server/internal/platform/constants"
	"github.com/petbox/petbox-server/internal/platform/middleware"
	"github.com/petbox/petbox-server/internal/platform/respond"
	"github.com/petbox/petbox-server/internal/users/auth"
)

// Server owns the HTTP listener and its lifecycle.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// Dependencies carries everything the server needs, fully constructed.
// The composition root (cmd/api) builds these; the server only wires routes.
type Dependencies struct {
	Config         *config.Config
	Logger         *slog.Logger
	TokenVerifier  middleware.TokenVerifier
	AuthHandler    *auth.Handler
	CatalogHandler *catalog.Handler
	Health         *HealthChecker
}

// NewServer builds the router and returns a ready-to-run server.
func NewServer(ctx context.Context, deps Dependencies) *Server {
	router := chi.NewRouter()

	// The middleware chain, outermost first: recover before anything else
	// so even logging bugs cannot take the process down.
	router.Use(middleware.PanicRecovery(deps.Logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(deps.Logger))
	router.Use(middleware.CORS(deps.Config))
	router.Use(middleware.RateLimit(ctx))
	router.Use(middleware.Authenticate(deps.TokenVerifier))

	// Probes live outside the versioned API surface.
	router.Get("/health", deps.Health.Liveness)
	router.Get("/ready", deps.Health.Readiness)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/users", deps.AuthHandler.Routes)
		api.Route("/products", deps.CatalogHandler.ProductRoutes)
		api.Route("/stores", deps.CatalogHandler.StoreRoutes)
	})

	router.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route"))
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.RequestInvalid("Method not allowed"))
	})

	httpServer := &http.Server{
		Addr:              ":" + deps.Config.ServerPort,
		Handler:           http.TimeoutHandler(router, constants.GlobalRequestTimeout, `{"error":"Request timed out","code":"SYSTEM_INTERNAL_ERROR"}`),
		ReadTimeout:       constants.DefaultReadTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}

	return &Server{httpServer: httpServer, logger: deps.Logger}
}

// Run starts serving and blocks until ctx is cancelled, then drains
// in-flight requests within the shutdown budget.
func (server *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		server.logger.Info("http server listening", slog.String("addr", server.httpServer.Addr))
		if err := server.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api: server failed: %w", err)
	case <-ctx.Done():
	}

	server.logger.Info("http server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := server.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: graceful shutdown failed: %w", err)
	}

	server.logger.Info("http server stopped")
	return nil
}
