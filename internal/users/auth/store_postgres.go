// Copyright (c) 2026 Petbox. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petbox/petbox-server/internal/platform/apperr"
	"github.com/petbox/petbox-server/internal/platform/dberr"
	"github.com/petbox/petbox-server/internal/platform/sec"
)

// PostgresUserRepository implements [UserRepository] backed by PostgreSQL.
//
// Optional identifiers (phone, username, email) are stored as NULL when
// absent so the partial unique indexes never collide on empty strings.
// Social links live in a JSONB column queried by containment.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a PostgreSQL-backed user repository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// accountColumns is the canonical SELECT projection, matching scanUser.
const accountColumns = `
	id, full_name, birth_date, gender, email, username, phone,
	password_hash, social_links, avatar, role, membership_id,
	created_at, updated_at`

// Create implements [UserRepository].
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	socialLinks, err := encodeSocialLinks(user.SocialLinks)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (
			id, full_name, birth_date, gender, email, username, phone,
			password_hash, social_links, avatar, role, membership_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = repository.pool.Exec(ctx, query,
		user.ID,
		user.FullName,
		user.BirthDate,
		nullIfEmpty(user.Gender),
		nullIfEmpty(user.Email),
		nullIfEmpty(user.Username),
		nullIfEmpty(user.Phone),
		nullIfEmpty(user.PasswordHash),
		socialLinks,
		nullIfEmpty(user.Avatar),
		string(user.Role),
		nullIfEmpty(user.MembershipID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	return nil
}

// GetByID implements [UserRepository].
func (repository *PostgresUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND deleted_at IS NULL`
	return repository.queryOne(ctx, query, id)
}

// GetByPhone implements [UserRepository].
func (repository *PostgresUserRepository) GetByPhone(ctx context.Context, phone string) (*User, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE phone = $1 AND deleted_at IS NULL`
	return repository.queryOne(ctx, query, phone)
}

// GetByUsername implements [UserRepository].
func (repository *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 AND deleted_at IS NULL`
	return repository.queryOne(ctx, query, username)
}

// GetBySocialLink implements [UserRepository].
//
// The JSONB containment operator (@>) walks the social_links array for an
// element matching both provider and provider user id; the GIN index on the
// column keeps this a lookup rather than a scan.
func (repository *PostgresUserRepository) GetBySocialLink(ctx context.Context, provider, providerUserID string) (*User, error) {
	needle, err := encodeSocialLinks([]SocialLink{{Provider: provider, ProviderUserID: providerUserID}})
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE social_links @> $1::jsonb AND deleted_at IS NULL`
	return repository.queryOne(ctx, query, needle)
}

// Update implements [UserRepository].
func (repository *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	socialLinks, err := encodeSocialLinks(user.SocialLinks)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts SET
			full_name = $2, birth_date = $3, gender = $4, email = $5,
			username = $6, password_hash = $7, social_links = $8,
			avatar = $9, role = $10, membership_id = $11, updated_at = $12
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.FullName,
		user.BirthDate,
		nullIfEmpty(user.Gender),
		nullIfEmpty(user.Email),
		nullIfEmpty(user.Username),
		nullIfEmpty(user.PasswordHash),
		socialLinks,
		nullIfEmpty(user.Avatar),
		string(user.Role),
		nullIfEmpty(user.MembershipID),
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

// queryOne runs a single-row query and scans the account.
func (repository *PostgresUserRepository) queryOne(ctx context.Context, query string, args ...any) (*User, error) {
	row := repository.pool.QueryRow(ctx, query, args...)

	user, err := scanUser(row)
	if err != nil {
		return nil, dberr.Wrap(err, "Account")
	}

	return user, nil
}

// scanUser maps one accounts row into the entity, folding NULLs back into
// zero values.
func scanUser(row pgx.Row) (*User, error) {
	var (
		user         User
		birthDate    *time.Time
		gender       *string
		email        *string
		username     *string
		phone        *string
		passwordHash *string
		socialLinks  []byte
		avatar       *string
		role         string
		membershipID *string
	)

	err := row.Scan(
		&user.ID,
		&user.FullName,
		&birthDate,
		&gender,
		&email,
		&username,
		&phone,
		&passwordHash,
		&socialLinks,
		&avatar,
		&role,
		&membershipID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.BirthDate = birthDate
	user.Gender = deref(gender)
	user.Email = deref(email)
	user.Username = deref(username)
	user.Phone = deref(phone)
	user.PasswordHash = deref(passwordHash)
	user.Avatar = deref(avatar)
	user.Role = sec.UserRole(role)
	user.MembershipID = deref(membershipID)

	if len(socialLinks) > 0 {
		if err := json.Unmarshal(socialLinks, &user.SocialLinks); err != nil {
			return nil, fmt.Errorf("auth_store_decode_social_links_failed: %w", err)
		}
	}

	return &user, nil
}

// encodeSocialLinks serializes links for the JSONB column ([] when empty).
func encodeSocialLinks(links []SocialLink) ([]byte, error) {
	if links == nil {
		links = []SocialLink{}
	}
	payload, err := json.Marshal(links)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_store_encode_social_links_failed: %w", err))
	}
	return payload, nil
}

// nullIfEmpty maps empty strings to SQL NULL.
func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// deref folds a nullable column back into a plain string.
func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
