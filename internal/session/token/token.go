// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package token implements stateless sessions as HS256-signed JWTs. Logout
// records the token's jti in a deny list until the token would have expired.
package token

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/session"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 32

var (
	// ErrInvalidToken is returned for tokens that fail signature or claim checks.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrRevoked is returned for tokens whose jti is on the deny list.
	ErrRevoked = errors.New("session token revoked")
)

// Claims are the JWT claims of a session token.
type Claims struct {
	jwt.RegisteredClaims

	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	IDP        string `json:"idp"`
	Persistent bool   `json:"persistent,omitempty"`
}

// DenyList remembers revoked token ids until they expire.
type DenyList interface {
	// Revoke adds jti to the list until expiresAt.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	// IsRevoked reports whether jti is on the list.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// DeleteExpired removes entries that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Config configures an Issuer.
type Config struct {
	Secret        []byte
	Issuer        string
	TTL           time.Duration
	PersistentTTL time.Duration
}

// Issuer issues and resolves signed session tokens. It implements
// auth.SessionIssuer.
type Issuer struct {
	cfg    Config
	deny   DenyList
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Issuer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewIssuer creates an Issuer. Zero lifetimes take the session defaults.
func NewIssuer(cfg Config, deny DenyList, opts ...Option) (*Issuer, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, oops.Code("TOKEN_INVALID_CONFIG").
			With("min_length", MinSecretLength).
			Errorf("signing secret must be at least %d bytes", MinSecretLength)
	}
	if deny == nil {
		return nil, oops.Code("TOKEN_INVALID_CONFIG").Errorf("deny list is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = auth.IdentityProvider
	}
	if cfg.TTL <= 0 {
		cfg.TTL = session.DefaultTTL
	}
	if cfg.PersistentTTL <= 0 {
		cfg.PersistentTTL = session.DefaultPersistentTTL
	}

	i := &Issuer{
		cfg:    cfg,
		deny:   deny,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// IssueSession signs a token for principal and binds it to sc.
func (i *Issuer) IssueSession(_ context.Context, sc auth.SessionContext, principal auth.Principal, persistent bool) error {
	now := i.now()
	ttl := i.cfg.TTL
	if persistent {
		ttl = i.cfg.PersistentTTL
	}
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   principal.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Name:       principal.Login,
		Role:       principal.Role,
		IDP:        principal.IdentityProvider,
		Persistent: persistent,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return oops.Code("TOKEN_SIGN_FAILED").
			With("user_id", principal.UserID.String()).
			Wrap(err)
	}

	// exp has second precision; hand back what the token actually says.
	sc.Bind(signed, principal, claims.ExpiresAt.Time, persistent)
	return nil
}

// RevokeCurrentSession puts the presented token's jti on the deny list and
// clears sc. Tokens that do not parse have nothing to revoke.
func (i *Issuer) RevokeCurrentSession(ctx context.Context, sc auth.SessionContext) error {
	raw := sc.Token()
	if raw == "" {
		sc.Clear()
		return nil
	}

	claims, err := i.parse(raw)
	if err != nil {
		sc.Clear()
		return nil
	}

	if err := i.deny.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return oops.Code("TOKEN_REVOKE_FAILED").
			With("jti", claims.ID).
			Wrap(err)
	}
	sc.Clear()
	return nil
}

// Resolve verifies token and returns its principal.
func (i *Issuer) Resolve(ctx context.Context, raw string) (*auth.Principal, error) {
	claims, err := i.parse(raw)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code("SESSION_EXPIRED").Wrap(errors.Join(session.ErrExpired, err))
		}
		return nil, oops.Code("TOKEN_INVALID").Wrap(errors.Join(ErrInvalidToken, err))
	}

	revoked, err := i.deny.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, oops.Code("TOKEN_RESOLVE_FAILED").
			With("operation", "check deny list").
			With("jti", claims.ID).
			Wrap(err)
	}
	if revoked {
		return nil, oops.Code("TOKEN_REVOKED").With("jti", claims.ID).Wrap(ErrRevoked)
	}

	userID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").
			With("subject", claims.Subject).
			Wrap(errors.Join(ErrInvalidToken, err))
	}

	return &auth.Principal{
		UserID:           userID,
		Login:            claims.Name,
		Role:             claims.Role,
		IdentityProvider: claims.IDP,
	}, nil
}

// PurgeExpired removes deny-list entries for tokens that have expired anyway.
func (i *Issuer) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := i.deny.DeleteExpired(ctx, i.now())
	if err != nil {
		return 0, oops.Code("TOKEN_PURGE_FAILED").Wrap(err)
	}
	return n, nil
}

func (i *Issuer) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, oops.Errorf("token has no jti")
	}
	return claims, nil
}

var (
	_ auth.SessionIssuer = (*Issuer)(nil)
	_ session.Purger     = (*Issuer)(nil)
)
