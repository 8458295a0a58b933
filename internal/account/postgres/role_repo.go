// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
)

// RoleRepository implements account.RoleRepository.
type RoleRepository struct {
	pool poolIface
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool poolIface) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// Create stores a new role.
func (r *RoleRepository) Create(ctx context.Context, role *account.Role) error {
	_, err := querierFromCtx(ctx, r.pool).Exec(ctx,
		`INSERT INTO roles (id, name, description) VALUES ($1, $2, $3)`,
		role.ID.String(), role.Name, role.Description)
	if isUniqueViolation(err) {
		return oops.Code("ROLE_EXISTS").With("name", role.Name).Wrap(account.ErrAlreadyExists)
	}
	if err != nil {
		return oops.Code("ROLE_CREATE_FAILED").
			With("operation", "insert role").
			With("name", role.Name).
			Wrap(err)
	}
	return nil
}

// GetByName retrieves a role by name.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*account.Role, error) {
	row := querierFromCtx(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, description FROM roles WHERE name = $1`, name)
	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ROLE_NOT_FOUND").With("name", name).Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ROLE_GET_FAILED").
			With("operation", "get role by name").
			With("name", name).
			Wrap(err)
	}
	return role, nil
}

// List returns all roles ordered by name.
func (r *RoleRepository) List(ctx context.Context) ([]*account.Role, error) {
	rows, err := querierFromCtx(ctx, r.pool).Query(ctx,
		`SELECT id, name, description FROM roles ORDER BY name`)
	if err != nil {
		return nil, oops.Code("ROLE_LIST_FAILED").With("operation", "list roles").Wrap(err)
	}
	defer rows.Close()

	var roles []*account.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, oops.Code("ROLE_LIST_FAILED").With("operation", "scan role row").Wrap(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROLE_LIST_FAILED").With("operation", "iterate role rows").Wrap(err)
	}
	return roles, nil
}

func scanRole(row pgx.Row) (*account.Role, error) {
	var (
		idStr string
		role  account.Role
	)
	if err := row.Scan(&idStr, &role.Name, &role.Description); err != nil {
		return nil, err
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse role id").With("id", idStr).Wrap(err)
	}
	role.ID = id
	return &role, nil
}

var _ account.RoleRepository = (*RoleRepository)(nil)
