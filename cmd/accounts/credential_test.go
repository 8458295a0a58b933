// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/credential"
	"github.com/holomush/accounts/pkg/errutil"
)

func legacyRecord(t *testing.T, password string) string {
	t.Helper()
	codec, err := credential.NewCodec()
	require.NoError(t, err)
	record, err := codec.Hash(password)
	require.NoError(t, err)
	return record
}

func TestCredentialHash(t *testing.T) {
	deps := &Deps{Prompter: &scriptedPrompter{answers: []string{"Secret123", "Secret123"}}}
	out, _, err := execute(t, deps, "credential", "hash", "--credential-iterations", "2000")
	require.NoError(t, err)

	record := strings.TrimSpace(out)
	params, err := credential.Inspect(record)
	require.NoError(t, err)
	assert.Equal(t, credential.FormatVersioned, params.Format)
	assert.Equal(t, 2000, params.Iterations)

	codec, err := credential.NewCodec()
	require.NoError(t, err)
	ok, err := codec.Verify(record, "Secret123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCredentialHash_Mismatch(t *testing.T) {
	deps := &Deps{Prompter: &scriptedPrompter{answers: []string{"Secret123", "other"}}}
	out, _, err := execute(t, deps, "credential", "hash")
	errutil.AssertErrorCode(t, err, "PASSWORD_MISMATCH")
	assert.Empty(t, out)
}

func TestCredentialVerify(t *testing.T) {
	record := legacyRecord(t, "Secret123")

	t.Run("match reports the weak work factor", func(t *testing.T) {
		deps := &Deps{Prompter: &scriptedPrompter{answers: []string{"Secret123"}}}
		out, _, err := execute(t, deps, "credential", "verify", record)
		require.NoError(t, err)
		assert.Contains(t, out, "Password matches")
		assert.Contains(t, out, "rehash")
	})

	t.Run("match at the legacy setting needs no upgrade", func(t *testing.T) {
		deps := &Deps{Prompter: &scriptedPrompter{answers: []string{"Secret123"}}}
		out, _, err := execute(t, deps, "credential", "verify", record, "--credential-iterations", "1000")
		require.NoError(t, err)
		assert.NotContains(t, out, "rehash")
	})

	t.Run("wrong password", func(t *testing.T) {
		deps := &Deps{Prompter: &scriptedPrompter{answers: []string{"wrong"}}}
		_, _, err := execute(t, deps, "credential", "verify", record)
		errutil.AssertErrorCode(t, err, "CREDENTIAL_MISMATCH")
	})

	t.Run("malformed record", func(t *testing.T) {
		deps := &Deps{Prompter: &scriptedPrompter{answers: []string{"Secret123"}}}
		_, _, err := execute(t, deps, "credential", "verify", record[:10])
		errutil.AssertErrorCode(t, err, "CREDENTIAL_MISMATCH")
	})

	t.Run("empty password", func(t *testing.T) {
		deps := &Deps{Prompter: &scriptedPrompter{answers: []string{""}}}
		_, _, err := execute(t, deps, "credential", "verify", record)
		assert.ErrorIs(t, err, credential.ErrInvalidArgument)
	})
}

func TestCredentialInspect(t *testing.T) {
	out, _, err := execute(t, nil, "credential", "inspect", legacyRecord(t, "Secret123"))
	require.NoError(t, err)
	assert.Contains(t, out, "format:     legacy")
	assert.Contains(t, out, "prf:        HMAC-SHA1")
	assert.Contains(t, out, "iterations: 1000")

	_, _, err = execute(t, nil, "credential", "inspect", "bm90IGEgcmVjb3Jk")
	errutil.AssertErrorCode(t, err, "CREDENTIAL_MALFORMED")
}
