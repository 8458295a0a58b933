// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package credential

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Known-answer records, computed independently with PBKDF2 for password
// "Secret123" (and "пароль" for the UTF-8 case).
const (
	vectorLegacy      = "AAABAgMEBQYHCAkKCwwNDg8ywedBtndobv+ZTdR/bMNvUYbTME2oaV7O41d2qAy02w=="
	vectorLegacyUTF8  = "AAABAgMEBQYHCAkKCwwNDg8gBo0cM16Jbx2CjO1GkHAtqFug0EbDv+1l5cQSAQwhAw=="
	vectorVersioned2k = "AQAAAAEAAAfQAAAAEBAREhMUFRYXGBkaGxwdHh+512o81Yx6PupuFiGsKa7D2juEm4btAwe6MlAuylvMvw=="
	vectorVersioned   = "AQAAAAEAAYagAAAAEBAREhMUFRYXGBkaGxwdHh+yWIjB4YDjuST1H0Xrp1dFF2V5kio2b70NXa4kCv+JAw=="
)

func saltRange(start byte) []byte {
	salt := make([]byte, SaltSize)
	for i := range salt {
		salt[i] = start + byte(i)
	}
	return salt
}

func TestHash_KnownAnswer(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
		salt       []byte
		password   string
		want       string
	}{
		{name: "legacy layout", iterations: LegacyIterations, salt: saltRange(0), password: "Secret123", want: vectorLegacy},
		{name: "legacy layout utf-8 password", iterations: LegacyIterations, salt: saltRange(0), password: "пароль", want: vectorLegacyUTF8},
		{name: "versioned layout", iterations: 2000, salt: saltRange(16), password: "Secret123", want: vectorVersioned2k},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := NewCodec(WithIterations(tt.iterations))
			require.NoError(t, err)
			codec.random = bytes.NewReader(tt.salt)

			got, err := codec.Hash(tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerify_KnownAnswer(t *testing.T) {
	codec, err := NewCodec()
	require.NoError(t, err)

	for _, encoded := range []string{vectorLegacy, vectorVersioned2k, vectorVersioned} {
		ok, err := codec.Verify(encoded, "Secret123")
		require.NoError(t, err)
		assert.True(t, ok, "record %s", encoded)
	}

	ok, err := codec.Verify(vectorLegacyUTF8, "пароль")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDecode_Layouts(t *testing.T) {
	t.Run("legacy offsets", func(t *testing.T) {
		rec, ok := decode(vectorLegacy)
		require.True(t, ok)
		assert.Equal(t, saltRange(0), rec.salt)
		assert.Len(t, rec.key, KeySize)
		assert.Equal(t, Params{Format: FormatLegacy, PRF: HMACSHA1, Iterations: 1000}, rec.params)
	})

	t.Run("versioned header", func(t *testing.T) {
		rec, ok := decode(vectorVersioned)
		require.True(t, ok)
		assert.Equal(t, saltRange(16), rec.salt)
		assert.Equal(t, Params{Format: FormatVersioned, PRF: HMACSHA256, Iterations: 100000}, rec.params)
	})

	t.Run("versioned header is validated", func(t *testing.T) {
		raw, err := base64.StdEncoding.DecodeString(vectorVersioned2k)
		require.NoError(t, err)

		mutate := func(f func(b []byte)) string {
			b := append([]byte{}, raw...)
			f(b)
			return base64.StdEncoding.EncodeToString(b)
		}

		cases := map[string]string{
			"unknown prf":       mutate(func(b []byte) { b[4] = 9 }),
			"zero iterations":   mutate(func(b []byte) { b[5], b[6], b[7], b[8] = 0, 0, 0, 0 }),
			"huge iterations":   mutate(func(b []byte) { b[5] = 0xff }),
			"wrong salt length": mutate(func(b []byte) { b[12] = 8 }),
		}
		for name, encoded := range cases {
			_, ok := decode(encoded)
			assert.False(t, ok, name)
		}
	})
}

func TestEncode_DecodeRoundTrip(t *testing.T) {
	rec := record{
		params: Params{Format: FormatVersioned, PRF: HMACSHA512, Iterations: 4321},
		salt:   saltRange(100),
		key:    bytes.Repeat([]byte{0xab}, KeySize),
	}

	got, ok := decode(encode(rec))
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestHash_SaltFailure(t *testing.T) {
	codec, err := NewCodec()
	require.NoError(t, err)
	codec.random = failingReader{}

	_, err = codec.Hash("Secret123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}
