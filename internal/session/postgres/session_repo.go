// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres stores sessions and revoked token ids in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/session"
	"github.com/holomush/accounts/internal/session/token"
)

// poolIface is satisfied by *pgxpool.Pool and pgxmock.PgxPoolIface.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionRepository implements session.Repository.
type SessionRepository struct {
	pool poolIface
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool poolIface) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, login, role, identity_provider, token_hash,
		                      persistent, expires_at, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		s.ID.String(),
		s.UserID.String(),
		s.Login,
		s.Role,
		s.IdentityProvider,
		s.TokenHash,
		s.Persistent,
		s.ExpiresAt,
		s.CreatedAt,
		s.LastSeenAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", s.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*session.Session, error) {
	var (
		idStr, userIDStr string
		s                = session.Session{TokenHash: tokenHash}
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, login, role, identity_provider, persistent,
		       expires_at, created_at, last_seen_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash).Scan(&idStr, &userIDStr, &s.Login, &s.Role, &s.IdentityProvider, &s.Persistent,
		&s.ExpiresAt, &s.CreatedAt, &s.LastSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if s.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").With("operation", "parse session id").With("id", idStr).Wrap(err)
	}
	if s.UserID, err = ulid.Parse(userIDStr); err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").With("operation", "parse user id").With("user_id", userIDStr).Wrap(err)
	}
	return &s, nil
}

// UpdateLastSeen updates the LastSeenAt timestamp for a session.
func (r *SessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, id.String(), lastSeen)
	if err != nil {
		return oops.Code("SESSION_UPDATE_LAST_SEEN_FAILED").
			With("operation", "update last_seen_at").
			With("id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// DeleteByTokenHash removes a session.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// DeleteByUser removes every session of a user.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID.String())
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete sessions by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes sessions that expired at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// DenyList implements token.DenyList on the revoked_tokens table.
type DenyList struct {
	pool poolIface
}

// NewDenyList creates a new DenyList.
func NewDenyList(pool poolIface) *DenyList {
	return &DenyList{pool: pool}
}

// Revoke records jti until expiresAt. Revoking twice is not an error.
func (d *DenyList) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, expiresAt)
	if err != nil {
		return oops.Code("TOKEN_DENY_FAILED").With("operation", "insert revoked token").With("jti", jti).Wrap(err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (d *DenyList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti).Scan(&revoked)
	if err != nil {
		return false, oops.Code("TOKEN_DENY_CHECK_FAILED").With("jti", jti).Wrap(err)
	}
	return revoked, nil
}

// DeleteExpired removes entries for tokens that expired at or before now.
func (d *DenyList) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := d.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("TOKEN_DENY_PURGE_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

var (
	_ session.Repository = (*SessionRepository)(nil)
	_ token.DenyList     = (*DenyList)(nil)
)
