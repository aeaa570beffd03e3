// Copyright (c) 2026 Petbox. All rights reserved.

// Package migration applies the SQL schema via golang-migrate.
//
// The server refuses to take traffic on an out-of-date schema, so RunUp is
// part of the boot sequence in cmd/api rather than a separate operator tool.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the pgx5:// database scheme
	_ "github.com/golang-migrate/migrate/v4/source/file"     // registers the file:// migration source
)

// RunUp applies every pending up migration from migrationsPath against dsn.
//
// A dirty schema (a previous run died mid-migration) aborts startup: rolling
// forward over a half-applied version corrupts data, so the operator must
// repair the schema_migrations row by hand first.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: init: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := migrator.Close(); sourceErr != nil || dbErr != nil {
			logger.Warn("schema_migrator_close_failed",
				slog.Any("source_error", sourceErr),
				slog.Any("db_error", dbErr),
			)
		}
	}()
	migrator.Log = &slogBridge{logger: logger}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: reading schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: schema dirty at version %d, repair manually before restarting", version)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema_up_to_date", slog.Uint64("version", uint64(version)))
			return nil
		}
		return fmt.Errorf("migration: applying version %d onward: %w", version+1, err)
	}

	applied, _, _ := migrator.Version()
	logger.Info("schema_migrated",
		slog.Uint64("from_version", uint64(version)),
		slog.Uint64("to_version", uint64(applied)),
	)
	return nil
}

// pgx5URL rewrites a postgres:// or postgresql:// DSN to the pgx5:// scheme
// the golang-migrate pgx/v5 driver registers. Any other DSN passes through.
func pgx5URL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// slogBridge adapts golang-migrate's Logger interface to slog. Migration
// chatter is debug-level; the runner emits its own summary events.
type slogBridge struct {
	logger *slog.Logger
}

func (bridge *slogBridge) Printf(format string, args ...any) {
	bridge.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (bridge *slogBridge) Verbose() bool { return false }
