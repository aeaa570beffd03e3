// Copyright (c) 2026 Petbox. All rights reserved.

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/petbox/petbox-server/internal/platform/constants"
	"github.com/petbox/petbox-server/internal/platform/respond"
)

// DependencyChecker probes one external dependency.
type DependencyChecker func(ctx context.Context) error

// HealthChecker serves the liveness and readiness probes.
//
// Liveness answers "is the process up"; readiness additionally pings every
// registered dependency so the orchestrator stops routing traffic when a
// backing store is unreachable.
type HealthChecker struct {
	checks map[string]DependencyChecker
}

// NewHealthChecker registers the named dependency probes.
func NewHealthChecker(checks map[string]DependencyChecker) *HealthChecker {
	if checks == nil {
		checks = map[string]DependencyChecker{}
	}
	return &HealthChecker{checks: checks}
}

// readinessTimeout bounds the whole dependency sweep.
const readinessTimeout = 5 * time.Second

// Liveness reports that the process is running.
func (health *HealthChecker) Liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		"status":  "ok",
		"service": constants.AppName,
		"version": constants.AppVersion,
	})
}

// Readiness pings every dependency and reports per-dependency status.
// Any failure yields 503 so load balancers drain this instance.
func (health *HealthChecker) Readiness(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), readinessTimeout)
	defer cancel()

	statuses := make(map[string]string, len(health.checks))
	healthy := true

	for name, check := range health.checks {
		if err := check(ctx); err != nil {
			statuses[name] = "down"
			healthy = false
			continue
		}
		statuses[name] = "up"
	}

	statusCode := http.StatusOK
	overall := "ready"
	if !healthy {
		statusCode = http.StatusServiceUnavailable
		overall = "degraded"
	}

	respond.JSON(writer, statusCode, map[string]any{
		"status":       overall,
		"dependencies": statuses,
	})
}
