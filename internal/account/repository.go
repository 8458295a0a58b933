// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrLoginTaken if the login is in use.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID, with its role.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByLogin retrieves a user by login (case-insensitive), with its role.
	GetByLogin(ctx context.Context, login string) (*User, error)

	// ExistsByLogin reports whether a login is registered (case-insensitive).
	ExistsByLogin(ctx context.Context, login string) (bool, error)
}

// RoleRepository manages role persistence.
type RoleRepository interface {
	// Create stores a new role. Returns ErrAlreadyExists if the name is in use.
	Create(ctx context.Context, role *Role) error

	// GetByName retrieves a role by its exact name.
	GetByName(ctx context.Context, name string) (*Role, error)

	// List returns all roles ordered by name.
	List(ctx context.Context) ([]*Role, error)
}

// ProfileRepository manages profile persistence.
type ProfileRepository interface {
	// Create stores a new profile.
	Create(ctx context.Context, profile *Profile) error

	// GetByUserID retrieves the profile belonging to a user.
	GetByUserID(ctx context.Context, userID ulid.ULID) (*Profile, error)

	// Update replaces the editable fields of an existing profile.
	Update(ctx context.Context, profile *Profile) error
}

// Transactor runs fn inside a single database transaction. Repository calls
// made with the ctx passed to fn join that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
