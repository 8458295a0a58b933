// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/pkg/errutil"
)

// Service provides account lookups and profile editing.
type Service struct {
	users    UserRepository
	roles    RoleRepository
	profiles ProfileRepository
	logger   *slog.Logger
}

// NewService creates a new Service. A nil logger uses slog.Default.
func NewService(users UserRepository, roles RoleRepository, profiles ProfileRepository, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("ACCOUNT_INVALID_SERVICE").Errorf("user repository is required")
	}
	if roles == nil {
		return nil, oops.Code("ACCOUNT_INVALID_SERVICE").Errorf("role repository is required")
	}
	if profiles == nil {
		return nil, oops.Code("ACCOUNT_INVALID_SERVICE").Errorf("profile repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, roles: roles, profiles: profiles, logger: logger}, nil
}

// LoginExists reports whether login is already registered.
func (s *Service) LoginExists(ctx context.Context, login string) (bool, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return false, nil
	}
	exists, err := s.users.ExistsByLogin(ctx, login)
	if err != nil {
		errutil.LogError(ctx, s.logger, "check login exists failed", err, "login", login)
		return false, oops.Code("ACCOUNT_LOOKUP_FAILED").
			With("operation", "check login exists").
			With("login", login).
			Wrap(err)
	}
	return exists, nil
}

// UserID returns the id of the user registered under login.
func (s *Service) UserID(ctx context.Context, login string) (ulid.ULID, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ulid.ULID{}, oops.Code("ACCOUNT_USER_NOT_FOUND").With("login", login).Wrap(err)
		}
		errutil.LogError(ctx, s.logger, "get user id failed", err, "login", login)
		return ulid.ULID{}, oops.Code("ACCOUNT_LOOKUP_FAILED").
			With("operation", "get user by login").
			With("login", login).
			Wrap(err)
	}
	return user.ID, nil
}

// Role looks up a role by name.
func (s *Service) Role(ctx context.Context, name string) (*Role, error) {
	role, err := s.roles.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ACCOUNT_ROLE_NOT_FOUND").With("role", name).Wrap(err)
		}
		errutil.LogError(ctx, s.logger, "get role failed", err, "role", name)
		return nil, oops.Code("ACCOUNT_LOOKUP_FAILED").
			With("operation", "get role by name").
			With("role", name).
			Wrap(err)
	}
	return role, nil
}

// Profile returns the profile of the given user.
func (s *Service) Profile(ctx context.Context, userID ulid.ULID) (*Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ACCOUNT_PROFILE_NOT_FOUND").With("user_id", userID.String()).Wrap(err)
		}
		errutil.LogError(ctx, s.logger, "get profile failed", err, "user_id", userID.String())
		return nil, oops.Code("ACCOUNT_LOOKUP_FAILED").
			With("operation", "get profile").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return profile, nil
}

// UpdateProfile replaces the editable fields of the user's profile and
// returns the stored result.
func (s *Service) UpdateProfile(ctx context.Context, userID ulid.ULID, update ProfileUpdate) (*Profile, error) {
	normalized, err := update.Normalize()
	if err != nil {
		return nil, err
	}

	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Apply(normalized)

	if err := s.profiles.Update(ctx, profile); err != nil {
		errutil.LogError(ctx, s.logger, "update profile failed", err,
			"profile_id", profile.ID.String(),
			"user_id", userID.String())
		return nil, oops.Code("ACCOUNT_PROFILE_UPDATE_FAILED").
			With("profile_id", profile.ID.String()).
			Wrap(err)
	}
	return profile, nil
}
