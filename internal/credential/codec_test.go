// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package credential_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/credential"
	"github.com/holomush/accounts/pkg/errutil"
)

// Recorded with salt bytes 0x00..0x0f and password "Secret123".
const legacySecret123 = "AAABAgMEBQYHCAkKCwwNDg8ywedBtndobv+ZTdR/bMNvUYbTME2oaV7O41d2qAy02w=="

func newCodec(t *testing.T, opts ...credential.Option) *credential.Codec {
	t.Helper()
	codec, err := credential.NewCodec(opts...)
	require.NoError(t, err)
	return codec
}

func TestCodec_Hash(t *testing.T) {
	codec := newCodec(t)

	t.Run("produces a 49 byte legacy record", func(t *testing.T) {
		encoded, err := codec.Hash("Secret123")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		assert.Len(t, raw, 49)
		assert.Equal(t, byte(0), raw[0])
	})

	t.Run("same password produces different records (salt)", func(t *testing.T) {
		first, err := codec.Hash("Secret123")
		require.NoError(t, err)
		second, err := codec.Hash("Secret123")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		for _, encoded := range []string{first, second} {
			ok, err := codec.Verify(encoded, "Secret123")
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := codec.Hash("")
		require.Error(t, err)
		assert.True(t, errors.Is(err, credential.ErrInvalidArgument))
		errutil.AssertErrorCode(t, err, "CREDENTIAL_INVALID_ARGUMENT")
	})

	t.Run("record never contains the plaintext", func(t *testing.T) {
		encoded, err := codec.Hash("Secret123")
		require.NoError(t, err)
		raw, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "Secret123")
		assert.NotContains(t, encoded, "Secret123")
	})
}

func TestCodec_Verify(t *testing.T) {
	codec := newCodec(t)

	t.Run("round trip", func(t *testing.T) {
		for _, password := range []string{"Secret123", "x", "pass word with spaces", "пароль", strings.Repeat("a", 1024)} {
			encoded, err := codec.Hash(password)
			require.NoError(t, err)
			ok, err := codec.Verify(encoded, password)
			require.NoError(t, err)
			assert.True(t, ok, "password %q should verify", password)
		}
	})

	t.Run("different password fails", func(t *testing.T) {
		encoded, err := codec.Hash("Secret123")
		require.NoError(t, err)
		ok, err := codec.Verify(encoded, "Secret124")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("legacy record from the existing user base", func(t *testing.T) {
		ok, err := codec.Verify(legacySecret123, "Secret123")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = codec.Verify(legacySecret123, "secret123")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty password is an invalid argument", func(t *testing.T) {
		_, err := codec.Verify(legacySecret123, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, credential.ErrInvalidArgument))
	})
}

func TestCodec_Verify_MalformedRecordsFailClosed(t *testing.T) {
	codec := newCodec(t)
	raw, err := base64.StdEncoding.DecodeString(legacySecret123)
	require.NoError(t, err)

	wrongMarker := append([]byte{}, raw...)
	wrongMarker[0] = 0x07

	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty record", encoded: ""},
		{name: "invalid base64", encoded: "not base64 at all!"},
		{name: "truncated to 10 bytes", encoded: base64.StdEncoding.EncodeToString(raw[:10])},
		{name: "one byte short", encoded: base64.StdEncoding.EncodeToString(raw[:48])},
		{name: "one byte long", encoded: base64.StdEncoding.EncodeToString(append(append([]byte{}, raw...), 0))},
		{name: "wrong marker byte", encoded: base64.StdEncoding.EncodeToString(wrongMarker)},
		{name: "versioned marker with legacy length", encoded: base64.StdEncoding.EncodeToString(append([]byte{0x01}, raw[1:]...))},
		{name: "whitespace only", encoded: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := codec.Verify(tt.encoded, "Secret123")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCodec_UpgradedIterations(t *testing.T) {
	legacy := newCodec(t)
	upgraded := newCodec(t, credential.WithIterations(2000))

	t.Run("writes versioned records", func(t *testing.T) {
		encoded, err := upgraded.Hash("Secret123")
		require.NoError(t, err)

		params, err := credential.Inspect(encoded)
		require.NoError(t, err)
		assert.Equal(t, credential.FormatVersioned, params.Format)
		assert.Equal(t, credential.HMACSHA256, params.PRF)
		assert.Equal(t, 2000, params.Iterations)
	})

	t.Run("still verifies legacy records", func(t *testing.T) {
		ok, err := upgraded.Verify(legacySecret123, "Secret123")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("legacy codec verifies versioned records", func(t *testing.T) {
		encoded, err := upgraded.Hash("Secret123")
		require.NoError(t, err)

		ok, err := legacy.Verify(encoded, "Secret123")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("needs upgrade", func(t *testing.T) {
		encoded, err := upgraded.Hash("Secret123")
		require.NoError(t, err)

		assert.True(t, upgraded.NeedsUpgrade(legacySecret123))
		assert.False(t, upgraded.NeedsUpgrade(encoded))
		assert.False(t, legacy.NeedsUpgrade(legacySecret123))
		assert.False(t, legacy.NeedsUpgrade(encoded))
		assert.False(t, upgraded.NeedsUpgrade("garbage"))
	})
}

func TestNewCodec_RejectsIterationsOutOfRange(t *testing.T) {
	for _, n := range []int{0, 999, credential.MaxIterations + 1} {
		_, err := credential.NewCodec(credential.WithIterations(n))
		require.Error(t, err, "iterations %d", n)
		errutil.AssertErrorCode(t, err, "CREDENTIAL_INVALID_CONFIG")
	}
}

func TestInspect(t *testing.T) {
	params, err := credential.Inspect(legacySecret123)
	require.NoError(t, err)
	assert.Equal(t, credential.Params{
		Format:     credential.FormatLegacy,
		PRF:        credential.HMACSHA1,
		Iterations: credential.LegacyIterations,
	}, params)
	assert.Equal(t, "legacy", params.Format.String())
	assert.Equal(t, "HMAC-SHA1", params.PRF.String())

	_, err = credential.Inspect("AAAA")
	assert.ErrorIs(t, err, credential.ErrMalformedRecord)
}

func TestCodec_ConcurrentUse(t *testing.T) {
	codec := newCodec(t)
	passwords := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}

	var wg sync.WaitGroup
	errs := make(chan error, len(passwords))
	for _, password := range passwords {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			encoded, err := codec.Hash(p)
			if err != nil {
				errs <- err
				return
			}
			ok, err := codec.Verify(encoded, p)
			if err != nil {
				errs <- err
				return
			}
			if !ok {
				errs <- errors.New("round trip failed for " + p)
			}
		}(password)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
