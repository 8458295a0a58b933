// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/account/postgres"
	"github.com/holomush/accounts/internal/store/storetest"
)

var testDB *storetest.Database

func TestMain(m *testing.M) {
	ctx := context.Background()
	db, err := storetest.Start(ctx)
	if err != nil {
		panic("failed to start database: " + err.Error())
	}
	testDB = db
	code := m.Run()
	db.Close(ctx)
	os.Exit(code)
}

func reset(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.Truncate(context.Background()))
}

func TestRepositories_RegistrationRoundTrip(t *testing.T) {
	reset(t)
	ctx := context.Background()
	users := postgres.NewUserRepository(testDB.Pool)
	roles := postgres.NewRoleRepository(testDB.Pool)
	profiles := postgres.NewProfileRepository(testDB.Pool)
	tx := postgres.NewTransactor(testDB.Pool)

	role := &account.Role{ID: ulid.Make(), Name: account.DefaultRoleName}
	require.NoError(t, roles.Create(ctx, role))

	user, err := account.NewUser(ulid.Make(), "Alice", "record", &role.ID, ulid.Make())
	require.NoError(t, err)

	err = tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return profiles.Create(ctx, account.NewProfile(user.ProfileID, user.ID))
	})
	require.NoError(t, err)

	got, err := users.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Alice", got.Login)
	assert.Equal(t, account.DefaultRoleName, got.RoleName())

	exists, err := users.ExistsByLogin(ctx, "ALICE")
	require.NoError(t, err)
	assert.True(t, exists)

	profile, err := profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	profile.Apply(account.ProfileUpdate{FirstName: "Alice", LastName: "Liddell"})
	require.NoError(t, profiles.Update(ctx, profile))

	profile, err = profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Liddell", profile.LastName)

	dup, err := account.NewUser(ulid.Make(), "ALICE", "record", nil, ulid.Make())
	require.NoError(t, err)
	assert.ErrorIs(t, users.Create(ctx, dup), account.ErrLoginTaken)
}

func TestTransactor_RollbackLeavesNoRows(t *testing.T) {
	reset(t)
	ctx := context.Background()
	users := postgres.NewUserRepository(testDB.Pool)
	tx := postgres.NewTransactor(testDB.Pool)

	user, err := account.NewUser(ulid.Make(), "bob", "record", nil, ulid.Make())
	require.NoError(t, err)

	boom := errors.New("profile insert failed")
	err = tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = users.GetByLogin(ctx, "bob")
	assert.ErrorIs(t, err, account.ErrNotFound)
}
