// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/pkg/errutil"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name    string
		login   string
		wantErr bool
	}{
		{"simple", "alice", false},
		{"digits first", "42alice", false},
		{"dots and dashes", "alice.smith-jr_2", false},
		{"email-like is rejected", "alice@example.com", true},
		{"minimum length", "abc", false},
		{"too short", "ab", true},
		{"maximum length", strings.Repeat("a", account.MaxLoginLength), false},
		{"too long", strings.Repeat("a", account.MaxLoginLength+1), true},
		{"empty", "", true},
		{"leading dot", ".alice", true},
		{"spaces", "alice smith", true},
		{"cyrillic", "алиса", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := account.ValidateLogin(tt.login)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorIs(t, err, account.ErrInvalid, "ACCOUNT_INVALID_LOGIN")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewUser(t *testing.T) {
	id := ulid.Make()
	profileID := ulid.Make()
	roleID := ulid.Make()

	t.Run("valid user", func(t *testing.T) {
		user, err := account.NewUser(id, "alice", "record", &roleID, profileID)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice", user.Login)
		assert.Equal(t, "record", user.PasswordHash)
		assert.Equal(t, &roleID, user.RoleID)
		assert.Equal(t, profileID, user.ProfileID)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("role is optional", func(t *testing.T) {
		user, err := account.NewUser(id, "alice", "record", nil, profileID)
		require.NoError(t, err)
		assert.Nil(t, user.RoleID)
		assert.Equal(t, "", user.RoleName())
	})

	t.Run("rejects zero id", func(t *testing.T) {
		_, err := account.NewUser(ulid.ULID{}, "alice", "record", nil, profileID)
		errutil.AssertErrorCode(t, err, "ACCOUNT_INVALID_USER")
	})

	t.Run("rejects empty credential record", func(t *testing.T) {
		_, err := account.NewUser(id, "alice", "", nil, profileID)
		errutil.AssertErrorCode(t, err, "ACCOUNT_INVALID_USER")
	})

	t.Run("rejects zero profile id", func(t *testing.T) {
		_, err := account.NewUser(id, "alice", "record", nil, ulid.ULID{})
		errutil.AssertErrorCode(t, err, "ACCOUNT_INVALID_USER")
	})

	t.Run("rejects invalid login", func(t *testing.T) {
		_, err := account.NewUser(id, "a b", "record", nil, profileID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, account.ErrInvalid))
	})
}

func TestUser_RoleName(t *testing.T) {
	user := &account.User{Role: &account.Role{Name: "Administrator"}}
	assert.Equal(t, "Administrator", user.RoleName())
}
