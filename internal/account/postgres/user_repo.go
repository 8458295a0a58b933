// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
)

// UserRepository implements account.UserRepository.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

const selectUser = `
	SELECT u.id, u.login, u.password_hash, u.role_id, u.profile_id, u.created_at,
	       r.name, r.description
	FROM users u
	LEFT JOIN roles r ON r.id = u.role_id
`

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *account.User) error {
	_, err := querierFromCtx(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (id, login, password_hash, role_id, profile_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		user.ID.String(),
		user.Login,
		user.PasswordHash,
		ulidToStringPtr(user.RoleID),
		user.ProfileID.String(),
		user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return oops.Code("USER_LOGIN_TAKEN").With("login", user.Login).Wrap(account.ErrLoginTaken)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("login", user.Login).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*account.User, error) {
	row := querierFromCtx(ctx, r.pool).QueryRow(ctx, selectUser+`WHERE u.id = $1`, id.String())
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByLogin retrieves a user by login, ignoring case.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*account.User, error) {
	row := querierFromCtx(ctx, r.pool).QueryRow(ctx, selectUser+`WHERE lower(u.login) = lower($1)`, login)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by login").
			Wrap(err)
	}
	return user, nil
}

// ExistsByLogin reports whether a login is registered, ignoring case.
func (r *UserRepository) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := querierFromCtx(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(login) = lower($1))`, login,
	).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("operation", "check login exists").
			Wrap(err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*account.User, error) {
	var (
		idStr, profileIDStr string
		roleIDStr           *string
		roleName, roleDesc  *string
		createdAt           time.Time
		user                account.User
	)
	if err := row.Scan(&idStr, &user.Login, &user.PasswordHash, &roleIDStr, &profileIDStr, &createdAt,
		&roleName, &roleDesc); err != nil {
		return nil, err
	}

	var err error
	if user.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse user id").With("id", idStr).Wrap(err)
	}
	if user.ProfileID, err = ulid.Parse(profileIDStr); err != nil {
		return nil, oops.With("operation", "parse profile id").With("profile_id", profileIDStr).Wrap(err)
	}
	if user.RoleID, err = parseOptionalULID(roleIDStr, "role_id"); err != nil {
		return nil, err
	}
	if user.RoleID != nil && roleName != nil {
		role := account.Role{ID: *user.RoleID, Name: *roleName}
		if roleDesc != nil {
			role.Description = *roleDesc
		}
		user.Role = &role
	}
	user.CreatedAt = createdAt
	return &user, nil
}

var _ account.UserRepository = (*UserRepository)(nil)
