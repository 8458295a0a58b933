// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/credential"
	"github.com/holomush/accounts/pkg/errutil"
)

// Deps are the collaborators of a Service. Logger and Recorder are optional.
type Deps struct {
	Users      account.UserRepository
	Roles      account.RoleRepository
	Profiles   account.ProfileRepository
	Transactor account.Transactor
	Hasher     credential.Hasher
	Sessions   SessionIssuer
	Logger     *slog.Logger
	Recorder   Recorder
}

// Service is the authentication gate. It keeps no state between calls and is
// safe for concurrent use.
type Service struct {
	users    account.UserRepository
	roles    account.RoleRepository
	profiles account.ProfileRepository
	tx       account.Transactor
	hasher   credential.Hasher
	sessions SessionIssuer
	logger   *slog.Logger
	metrics  Recorder
}

// NewService creates a new Service.
func NewService(deps Deps) (*Service, error) {
	switch {
	case deps.Users == nil:
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("user repository is required")
	case deps.Roles == nil:
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("role repository is required")
	case deps.Profiles == nil:
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("profile repository is required")
	case deps.Transactor == nil:
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("transactor is required")
	case deps.Hasher == nil:
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("credential hasher is required")
	case deps.Sessions == nil:
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("session issuer is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var metrics Recorder = nopRecorder{}
	if deps.Recorder != nil {
		metrics = deps.Recorder
	}

	return &Service{
		users:    deps.Users,
		roles:    deps.Roles,
		profiles: deps.Profiles,
		tx:       deps.Transactor,
		hasher:   deps.Hasher,
		sessions: deps.Sessions,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// Login authenticates login/password and, on success, replaces the caller's
// session with a new persistent one. It never returns an error: unknown logins,
// wrong passwords, and internal failures all produce Rejected.
func (s *Service) Login(ctx context.Context, sc SessionContext, login, password string) Result {
	login = strings.TrimSpace(login)
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return s.reject()
		}
		return s.fail(ctx, login, "get user by login", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		if errors.Is(err, credential.ErrInvalidArgument) {
			return s.reject()
		}
		return s.fail(ctx, login, "verify credential", err)
	}
	if !ok {
		return s.reject()
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.metrics.CredentialUpgradeDue()
		s.logger.DebugContext(ctx, "credential record uses a weaker work factor than configured",
			"user_id", user.ID.String())
	}

	principal := Principal{
		UserID:           user.ID,
		Login:            user.Login,
		Role:             user.RoleName(),
		IdentityProvider: IdentityProvider,
	}

	if err := s.sessions.RevokeCurrentSession(ctx, sc); err != nil {
		return s.fail(ctx, login, "revoke current session", err)
	}
	if err := s.sessions.IssueSession(ctx, sc, principal, true); err != nil {
		return s.fail(ctx, login, "issue session", err)
	}

	s.metrics.LoginAttempt(LoginAuthenticated)
	s.logger.InfoContext(ctx, "login succeeded", "user_id", principal.UserID.String())
	return authenticated(principal)
}

func (s *Service) reject() Result {
	s.metrics.LoginAttempt(LoginRejected)
	return Rejected
}

func (s *Service) fail(ctx context.Context, login, operation string, err error) Result {
	s.metrics.LoginAttempt(LoginError)
	errutil.LogError(ctx, s.logger, "login failed", err,
		"login", login,
		"operation", operation)
	return Rejected
}

// Logout revokes the caller's current session. Failures are logged with the
// caller's identity and returned with ErrSessionTransport in the chain.
func (s *Service) Logout(ctx context.Context, sc SessionContext) error {
	if err := s.sessions.RevokeCurrentSession(ctx, sc); err != nil {
		userID, login := "anonymous", "anonymous"
		if p := sc.Principal(); p != nil {
			userID, login = p.UserID.String(), p.Login
		}
		s.metrics.LogoutFailure()
		errutil.LogError(ctx, s.logger, "logout failed", err,
			"user_id", userID,
			"login", login)
		return oops.Code("AUTH_SESSION_TRANSPORT").
			With("operation", "revoke current session").
			With("user_id", userID).
			Wrap(errors.Join(ErrSessionTransport, err))
	}
	return nil
}

// Register creates a user with the default role, a credential record for
// password, and an empty profile, all in one transaction. It returns the new
// user's id.
func (s *Service) Register(ctx context.Context, login, password string) (ulid.ULID, error) {
	login = strings.TrimSpace(login)
	if err := account.ValidateLogin(login); err != nil {
		s.metrics.Registration(RegistrationInvalid)
		return ulid.ULID{}, err
	}

	record, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, credential.ErrInvalidArgument) {
			s.metrics.Registration(RegistrationInvalid)
			return ulid.ULID{}, err
		}
		return ulid.ULID{}, s.registrationFailed(ctx, login, oops.Code("AUTH_REGISTRATION_FAILED").
			With("operation", "hash password").
			Wrap(err))
	}

	userID, profileID := ulid.Make(), ulid.Make()
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		role, err := s.roles.GetByName(ctx, account.DefaultRoleName)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return oops.Code("AUTH_DEFAULT_ROLE_MISSING").
					With("role", account.DefaultRoleName).
					Wrap(ErrDefaultRoleMissing)
			}
			return oops.Code("AUTH_REGISTRATION_FAILED").
				With("operation", "resolve default role").
				Wrap(err)
		}

		user, err := account.NewUser(userID, login, record, &role.ID, profileID)
		if err != nil {
			return err
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, account.ErrLoginTaken) {
				// Wrap the bare sentinel so AUTH_LOGIN_TAKEN is the deepest code.
				return oops.Code("AUTH_LOGIN_TAKEN").With("login", login).Wrap(account.ErrLoginTaken)
			}
			return oops.Code("AUTH_REGISTRATION_FAILED").
				With("operation", "insert user").
				Wrap(err)
		}

		if err := s.profiles.Create(ctx, account.NewProfile(profileID, userID)); err != nil {
			return oops.Code("AUTH_REGISTRATION_FAILED").
				With("operation", "insert profile").
				Wrap(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, account.ErrLoginTaken) {
			s.metrics.Registration(RegistrationLoginTaken)
			s.logger.InfoContext(ctx, "registration rejected, login taken", "login", login)
			return ulid.ULID{}, err
		}
		return ulid.ULID{}, s.registrationFailed(ctx, login, err)
	}

	s.metrics.Registration(RegistrationCreated)
	s.logger.InfoContext(ctx, "user registered", "user_id", userID.String(), "login", login)
	return userID, nil
}

func (s *Service) registrationFailed(ctx context.Context, login string, err error) error {
	s.metrics.Registration(RegistrationError)
	errutil.LogError(ctx, s.logger, "registration failed", err, "login", login)
	return oops.Code("AUTH_REGISTRATION_FAILED").With("login", login).Wrap(err)
}

// PasswordsMatch reports whether a password and its confirmation are equal.
func PasswordsMatch(password, confirmation string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(confirmation)) == 1
}
