// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Login validation constraints.
const (
	MinLoginLength = 3
	MaxLoginLength = 64
)

// loginRegex matches logins that start with a letter or digit and then
// contain only letters, digits, dots, underscores, and hyphens.
var loginRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// User is a registered account. PasswordHash holds an encoded credential record.
type User struct {
	ID           ulid.ULID
	Login        string
	PasswordHash string
	RoleID       *ulid.ULID
	Role         *Role // populated by lookups that join the role
	ProfileID    ulid.ULID
	CreatedAt    time.Time
}

// RoleName returns the name of the user's role, or "" when the user has none.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// NewUser creates a validated User with the given id.
// roleID may be nil for accounts without a role.
func NewUser(id ulid.ULID, login, passwordHash string, roleID *ulid.ULID, profileID ulid.ULID) (*User, error) {
	if id.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("ACCOUNT_INVALID_USER").Wrapf(ErrInvalid, "user ID cannot be zero")
	}
	if err := ValidateLogin(login); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID_USER").Wrapf(ErrInvalid, "credential record cannot be empty")
	}
	if profileID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("ACCOUNT_INVALID_USER").Wrapf(ErrInvalid, "profile ID cannot be zero")
	}
	return &User{
		ID:           id,
		Login:        login,
		PasswordHash: passwordHash,
		RoleID:       roleID,
		ProfileID:    profileID,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ValidateLogin validates a login name.
// Requirements:
// - Length: MinLoginLength to MaxLoginLength characters
// - Must start with a letter or digit
// - Can contain only letters, digits, '.', '_' and '-'
func ValidateLogin(login string) error {
	if login == "" {
		return oops.Code("ACCOUNT_INVALID_LOGIN").Wrapf(ErrInvalid, "login cannot be empty")
	}
	if len(login) < MinLoginLength {
		return oops.Code("ACCOUNT_INVALID_LOGIN").
			With("min", MinLoginLength).
			Wrapf(ErrInvalid, "login must be at least %d characters", MinLoginLength)
	}
	if len(login) > MaxLoginLength {
		return oops.Code("ACCOUNT_INVALID_LOGIN").
			With("max", MaxLoginLength).
			Wrapf(ErrInvalid, "login must be at most %d characters", MaxLoginLength)
	}
	if !loginRegex.MatchString(login) {
		return oops.Code("ACCOUNT_INVALID_LOGIN").
			Wrapf(ErrInvalid, "login must start with a letter or digit and contain only letters, digits, '.', '_' and '-'")
	}
	return nil
}
