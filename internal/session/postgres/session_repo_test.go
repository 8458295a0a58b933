// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/session"
	"github.com/holomush/accounts/pkg/errutil"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestSessionRepository_Create(t *testing.T) {
	p := auth.Principal{UserID: ulid.Make(), Login: "alice", Role: "Default", IdentityProvider: auth.IdentityProvider}
	s, err := session.NewSession(p, "hash", true, time.Now().Add(time.Hour))
	require.NoError(t, err)

	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(s.ID.String(), p.UserID.String(), "alice", "Default", auth.IdentityProvider, "hash",
			true, s.ExpiresAt, s.CreatedAt, s.LastSeenAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, NewSessionRepository(mock).Create(context.Background(), s))

	failing := newMock(t)
	failing.ExpectExec(`INSERT INTO sessions`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("foreign key violation"))
	err = NewSessionRepository(failing).Create(context.Background(), s)
	errutil.AssertErrorCode(t, err, "SESSION_CREATE_FAILED")
}

func TestSessionRepository_GetByTokenHash(t *testing.T) {
	ctx := context.Background()
	id, userID := ulid.Make(), ulid.Make()
	expires := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	columns := []string{"id", "user_id", "login", "role", "identity_provider", "persistent",
		"expires_at", "created_at", "last_seen_at"}

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`WHERE token_hash = \$1`).WithArgs("hash").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(id.String(), userID.String(), "alice", "", auth.IdentityProvider, false,
					expires, expires.Add(-time.Hour), expires.Add(-time.Minute)))

		s, err := NewSessionRepository(mock).GetByTokenHash(ctx, "hash")
		require.NoError(t, err)
		assert.Equal(t, id, s.ID)
		assert.Equal(t, userID, s.UserID)
		assert.Equal(t, "hash", s.TokenHash)
		assert.Equal(t, expires, s.ExpiresAt)
		assert.False(t, s.Principal().HasRole())
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM sessions`).WithArgs("hash").WillReturnError(pgx.ErrNoRows)

		_, err := NewSessionRepository(mock).GetByTokenHash(ctx, "hash")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestSessionRepository_Deletes(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	userID := ulid.Make()

	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM sessions WHERE token_hash`).WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM sessions WHERE user_id`).WithArgs(userID.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at`).WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	repo := NewSessionRepository(mock)
	assert.ErrorIs(t, repo.DeleteByTokenHash(ctx, "gone"), session.ErrNotFound)

	n, err := repo.DeleteByUser(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestSessionRepository_UpdateLastSeen(t *testing.T) {
	id := ulid.Make()
	at := time.Now()

	mock := newMock(t)
	mock.ExpectExec(`UPDATE sessions SET last_seen_at`).WithArgs(id.String(), at).
		WillReturnError(errors.New("read only transaction"))

	err := NewSessionRepository(mock).UpdateLastSeen(context.Background(), id, at)
	errutil.AssertErrorCode(t, err, "SESSION_UPDATE_LAST_SEEN_FAILED")
}

func TestDenyList(t *testing.T) {
	ctx := context.Background()
	exp := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO revoked_tokens`).WithArgs("jti-1", exp).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("jti-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`DELETE FROM revoked_tokens`).WithArgs(exp).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deny := NewDenyList(mock)
	require.NoError(t, deny.Revoke(ctx, "jti-1", exp))

	revoked, err := deny.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	n, err := deny.DeleteExpired(ctx, exp)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestDenyList_CheckFailure(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("jti").WillReturnError(errors.New("db down"))

	_, err := NewDenyList(mock).IsRevoked(context.Background(), "jti")
	errutil.AssertErrorCode(t, err, "TOKEN_DENY_CHECK_FAILED")
}
