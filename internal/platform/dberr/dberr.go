// Copyright (c) 2026 Petbox. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/petbox/petbox-server/internal/platform/apperr"
)

// Wrap inspects a database error and maps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// Unique-constraint violations surface as USER_ALREADY_EXISTS: when two
// concurrent registrations race for the same phone or pending social key,
// the loser fails here on its own duplicate-key check.
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Constraint violation mapping (SQLSTATE 23505)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperr.AlreadyExists(resource + " already exists")
	}

	// 3. Unknown query errors become system errors
	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
