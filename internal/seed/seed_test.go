// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package seed_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/account/accounttest"
	"github.com/holomush/accounts/internal/seed"
	"github.com/holomush/accounts/pkg/errutil"
)

func TestRoles_Embedded(t *testing.T) {
	roles, err := seed.Roles()
	require.NoError(t, err)

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{account.DefaultRoleName, "Administrator"}, names)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not yaml", "roles: [unterminated"},
		{"no roles", "roles: []"},
		{"unknown field", "roles:\n  - name: Default\n    colour: red\n"},
		{"empty name", "roles:\n  - name: ''\n"},
		{"duplicate", "roles:\n  - name: Default\n  - name: Default\n"},
		{"missing default", "roles:\n  - name: Administrator\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.Parse([]byte(tt.data))
			errutil.AssertErrorCode(t, err, "SEED_INVALID")
		})
	}

	f, err := seed.Parse([]byte("roles:\n  - name: Default\n    description: Everyone\n"))
	require.NoError(t, err)
	assert.Equal(t, []seed.Role{{Name: "Default", Description: "Everyone"}}, f.Roles)
}

func TestGenerateSchema(t *testing.T) {
	data, err := seed.GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, seed.SchemaID, doc["$id"])
	assert.Contains(t, doc["properties"], "roles")
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	roles, err := seed.Roles()
	require.NoError(t, err)

	t.Run("creates missing roles once", func(t *testing.T) {
		store := accounttest.NewStore()

		res, err := seed.Apply(ctx, store.Roles(), roles, nil)
		require.NoError(t, err)
		assert.Equal(t, seed.Result{Created: 2}, res)

		res, err = seed.Apply(ctx, store.Roles(), roles, nil)
		require.NoError(t, err)
		assert.Equal(t, seed.Result{Skipped: 2}, res)

		got, err := store.Roles().GetByName(ctx, "Administrator")
		require.NoError(t, err)
		assert.Equal(t, "Manages accounts and roles", got.Description)
	})

	t.Run("description drift is logged, not changed", func(t *testing.T) {
		store := accounttest.NewStore()
		store.SeedRole(account.DefaultRoleName, "edited by an operator")
		logs := &bytes.Buffer{}

		res, err := seed.Apply(ctx, store.Roles(), roles, slog.New(slog.NewTextHandler(logs, nil)))
		require.NoError(t, err)
		assert.Equal(t, seed.Result{Created: 1, Skipped: 1}, res)
		assert.Contains(t, logs.String(), "seed role description drift")

		got, err := store.Roles().GetByName(ctx, account.DefaultRoleName)
		require.NoError(t, err)
		assert.Equal(t, "edited by an operator", got.Description)
	})

	t.Run("lookup failure stops the run", func(t *testing.T) {
		store := accounttest.NewStore()
		store.Fail(accounttest.OpRoleGetByName, errors.New("db down"))

		_, err := seed.Apply(ctx, store.Roles(), roles, nil)
		errutil.AssertErrorCode(t, err, "SEED_FAILED")
		errutil.AssertErrorContext(t, err, "role", account.DefaultRoleName)
	})

	t.Run("concurrent create counts as skipped", func(t *testing.T) {
		store := accounttest.NewStore()
		store.Fail(accounttest.OpRoleCreate, account.ErrAlreadyExists)

		res, err := seed.Apply(ctx, store.Roles(), roles, nil)
		require.NoError(t, err)
		assert.Equal(t, seed.Result{Skipped: 2}, res)
	})
}
