// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/auth"
)

// Config sets session lifetimes.
type Config struct {
	TTL           time.Duration
	PersistentTTL time.Duration
}

// Manager issues, resolves, and revokes server-side sessions.
// It implements auth.SessionIssuer.
type Manager struct {
	repo   Repository
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock replaces the time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager. Zero lifetimes take the defaults.
func NewManager(repo Repository, cfg Config, opts ...ManagerOption) (*Manager, error) {
	if repo == nil {
		return nil, oops.Code("SESSION_INVALID_MANAGER").Errorf("session repository is required")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.PersistentTTL == 0 {
		cfg.PersistentTTL = DefaultPersistentTTL
	}
	if cfg.TTL < 0 || cfg.PersistentTTL < 0 {
		return nil, oops.Code("SESSION_INVALID_MANAGER").
			With("ttl", cfg.TTL.String()).
			With("persistent_ttl", cfg.PersistentTTL.String()).
			Errorf("session lifetimes must be positive")
	}

	m := &Manager{
		repo:   repo,
		cfg:    cfg,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// RevokeCurrentSession deletes the session sc presents, if any, and clears sc.
// A token with no stored session is not an error.
func (m *Manager) RevokeCurrentSession(ctx context.Context, sc auth.SessionContext) error {
	token := sc.Token()
	if token == "" {
		sc.Clear()
		return nil
	}

	if err := m.repo.DeleteByTokenHash(ctx, HashToken(token)); err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code("SESSION_REVOKE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	sc.Clear()
	return nil
}

// IssueSession stores a new session for principal and binds its token to sc.
func (m *Manager) IssueSession(ctx context.Context, sc auth.SessionContext, principal auth.Principal, persistent bool) error {
	token, hash, err := GenerateToken()
	if err != nil {
		return err
	}

	ttl := m.cfg.TTL
	if persistent {
		ttl = m.cfg.PersistentTTL
	}
	expiresAt := m.now().Add(ttl)

	s, err := NewSession(principal, hash, persistent, expiresAt)
	if err != nil {
		return err
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "create session").
			With("user_id", principal.UserID.String()).
			Wrap(err)
	}

	sc.Bind(token, principal, expiresAt, persistent)
	return nil
}

// Resolve returns the principal bound to token. Expired sessions are deleted.
func (m *Manager) Resolve(ctx context.Context, token string) (*auth.Principal, error) {
	if token == "" {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(ErrNotFound)
	}
	hash := HashToken(token)

	s, err := m.repo.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_NOT_FOUND").Wrap(err)
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	now := m.now()
	if s.IsExpiredAt(now) {
		if err := m.repo.DeleteByTokenHash(ctx, hash); err != nil && !errors.Is(err, ErrNotFound) {
			m.logger.WarnContext(ctx, "failed to delete expired session",
				"session_id", s.ID.String(),
				"error", err)
		}
		return nil, oops.Code("SESSION_EXPIRED").
			With("session_id", s.ID.String()).
			With("expired_at", s.ExpiresAt).
			Wrap(ErrExpired)
	}

	if err := m.repo.UpdateLastSeen(ctx, s.ID, now); err != nil {
		m.logger.WarnContext(ctx, "failed to update session last seen",
			"session_id", s.ID.String(),
			"error", err)
	}

	p := s.Principal()
	return &p, nil
}

// RevokeUser deletes every session of the user and returns the count.
func (m *Manager) RevokeUser(ctx context.Context, principal auth.Principal) (int64, error) {
	n, err := m.repo.DeleteByUser(ctx, principal.UserID)
	if err != nil {
		return 0, oops.Code("SESSION_REVOKE_FAILED").
			With("operation", "delete sessions by user").
			With("user_id", principal.UserID.String()).
			Wrap(err)
	}
	return n, nil
}

// PurgeExpired deletes expired sessions.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, oops.Code("SESSION_PURGE_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return n, nil
}

var _ auth.SessionIssuer = (*Manager)(nil)
