// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/account"
	accountpg "github.com/holomush/accounts/internal/account/postgres"
	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/config"
)

// userRevoker is implemented by session backends that can end every session
// of one user. Signed tokens cannot be revoked that way.
type userRevoker interface {
	RevokeUser(ctx context.Context, principal auth.Principal) (int64, error)
}

func newRevokeSessionsCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-sessions USER",
		Short: "Sign a user out everywhere",
		Long: `Deletes every stored session of USER, given as a login or a user id.
Only the store session backend keeps sessions that can be revoked this way.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			if cfg.Session.Backend != config.BackendStore {
				return oops.Code("CONFIG_INVALID").
					With("backend", cfg.Session.Backend).
					Errorf("revoke-sessions needs session.backend %q", config.BackendStore)
			}

			pool, err := deps.connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			backend, err := newSessionBackend(cfg, pool, logger)
			if err != nil {
				return err
			}
			revoker, ok := backend.(userRevoker)
			if !ok {
				return oops.Code("CONFIG_INVALID").Errorf("session backend cannot revoke by user")
			}

			user, n, err := revokeUserSessions(cmd.Context(), accountpg.NewUserRepository(pool), revoker, args[0])
			if err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "sessions revoked", "user_id", user.ID.String(), "count", n)
			cmd.Printf("Revoked %d session(s) for %s (user id %s)\n", n, user.Login, user.ID)
			return nil
		},
	}
}

// revokeUserSessions resolves ref as a user id when it parses as one, and as
// a login otherwise.
func revokeUserSessions(ctx context.Context, users account.UserRepository, revoker userRevoker, ref string) (*account.User, int64, error) {
	var (
		user *account.User
		err  error
	)
	if id, parseErr := ulid.ParseStrict(ref); parseErr == nil {
		user, err = users.GetByID(ctx, id)
	} else {
		user, err = users.GetByLogin(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, 0, oops.Code("ACCOUNT_USER_NOT_FOUND").With("user", ref).Wrap(account.ErrNotFound)
		}
		return nil, 0, oops.With("user", ref).Wrap(err)
	}

	n, err := revoker.RevokeUser(ctx, auth.Principal{
		UserID:           user.ID,
		Login:            user.Login,
		Role:             user.RoleName(),
		IdentityProvider: auth.IdentityProvider,
	})
	if err != nil {
		return nil, 0, err
	}
	return user, n, nil
}
