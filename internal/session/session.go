// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package session implements server-side sessions: opaque random tokens whose
// SHA-256 hashes are stored alongside the principal they were issued to.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/auth"
)

// TokenBytes is the amount of randomness in a session token (64 hex chars).
const TokenBytes = 32

// Default lifetimes.
const (
	DefaultTTL           = 12 * time.Hour
	DefaultPersistentTTL = 30 * 24 * time.Hour
)

var (
	// ErrNotFound is returned when no session matches a token.
	ErrNotFound = errors.New("session not found")
	// ErrExpired is returned when a session has expired.
	ErrExpired = errors.New("session expired")
)

// Session is a stored login. The plaintext token is never stored.
type Session struct {
	ID               ulid.ULID
	UserID           ulid.ULID
	Login            string
	Role             string
	IdentityProvider string
	TokenHash        string
	Persistent       bool
	ExpiresAt        time.Time
	CreatedAt        time.Time
	LastSeenAt       time.Time
}

// NewSession creates a validated Session for principal.
func NewSession(principal auth.Principal, tokenHash string, persistent bool, expiresAt time.Time) (*Session, error) {
	if principal.UserID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if principal.Login == "" {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("login cannot be empty")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	now := time.Now().UTC()
	return &Session{
		ID:               ulid.Make(),
		UserID:           principal.UserID,
		Login:            principal.Login,
		Role:             principal.Role,
		IdentityProvider: principal.IdentityProvider,
		TokenHash:        tokenHash,
		Persistent:       persistent,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		LastSeenAt:       now,
	}, nil
}

// IsExpiredAt reports whether the session has expired at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// Principal returns the identity the session was issued to.
func (s *Session) Principal() auth.Principal {
	return auth.Principal{
		UserID:           s.UserID,
		Login:            s.Login,
		Role:             s.Role,
		IdentityProvider: s.IdentityProvider,
	}
}

// GenerateToken creates a random token and its hash.
// The token goes to the client; the hash is stored.
func GenerateToken() (token, hash string, err error) {
	b := make([]byte, TokenBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("requested_bytes", TokenBytes).
			Wrap(err)
	}
	token = hex.EncodeToString(b)
	return token, HashToken(token), nil
}

// HashToken computes the SHA-256 hash of a session token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Repository manages session persistence.
type Repository interface {
	// Create stores a new session.
	Create(ctx context.Context, s *Session) error

	// GetByTokenHash retrieves a session by its token hash. Returns ErrNotFound.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// UpdateLastSeen updates the LastSeenAt timestamp for a session.
	UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error

	// DeleteByTokenHash removes a session. Returns ErrNotFound.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteByUser removes every session of a user and returns the count.
	DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error)

	// DeleteExpired removes sessions that expired at or before now and
	// returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
