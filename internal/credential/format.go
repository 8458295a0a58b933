// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package credential

import (
	"crypto/sha1" //nolint:gosec // G505: legacy records are PBKDF2-HMAC-SHA1
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash"
)

// Sizes shared by every record format.
const (
	SaltSize = 16
	KeySize  = 32
)

// Format is the marker byte at the start of a decoded record.
type Format byte

// Known record formats.
const (
	FormatLegacy    Format = 0x00
	FormatVersioned Format = 0x01
)

const (
	legacyRecordSize    = 1 + SaltSize + KeySize
	versionedHeaderSize = 1 + 4 + 4 + 4
	versionedRecordSize = versionedHeaderSize + SaltSize + KeySize
)

func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatVersioned:
		return "versioned"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(f))
	}
}

// PRF identifies the HMAC used inside PBKDF2.
type PRF uint32

// Supported pseudo-random functions. The numbering is part of the versioned format.
const (
	HMACSHA1   PRF = 0
	HMACSHA256 PRF = 1
	HMACSHA512 PRF = 2
)

func (p PRF) String() string {
	switch p {
	case HMACSHA1:
		return "HMAC-SHA1"
	case HMACSHA256:
		return "HMAC-SHA256"
	case HMACSHA512:
		return "HMAC-SHA512"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(p))
	}
}

func (p PRF) newHash() (func() hash.Hash, bool) {
	switch p {
	case HMACSHA1:
		return sha1.New, true
	case HMACSHA256:
		return sha256.New, true
	case HMACSHA512:
		return sha512.New, true
	default:
		return nil, false
	}
}

// Params describes how the key inside a record was derived.
type Params struct {
	Format     Format
	PRF        PRF
	Iterations int
}

type record struct {
	params Params
	salt   []byte
	key    []byte
}

func encode(r record) string {
	var buf []byte
	switch r.params.Format {
	case FormatLegacy:
		buf = make([]byte, legacyRecordSize)
		buf[0] = byte(FormatLegacy)
		copy(buf[1:1+SaltSize], r.salt)
		copy(buf[1+SaltSize:], r.key)
	default:
		buf = make([]byte, versionedRecordSize)
		buf[0] = byte(FormatVersioned)
		binary.BigEndian.PutUint32(buf[1:5], uint32(r.params.PRF))
		binary.BigEndian.PutUint32(buf[5:9], uint32(r.params.Iterations)) //nolint:gosec // bounded by MaxIterations
		binary.BigEndian.PutUint32(buf[9:13], SaltSize)
		copy(buf[versionedHeaderSize:versionedHeaderSize+SaltSize], r.salt)
		copy(buf[versionedHeaderSize+SaltSize:], r.key)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// decode parses an encoded record. ok is false for anything malformed.
func decode(encoded string) (r record, ok bool) {
	if encoded == "" {
		return record{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) == 0 {
		return record{}, false
	}

	switch Format(raw[0]) {
	case FormatLegacy:
		if len(raw) != legacyRecordSize {
			return record{}, false
		}
		return record{
			params: Params{Format: FormatLegacy, PRF: HMACSHA1, Iterations: LegacyIterations},
			salt:   raw[1 : 1+SaltSize],
			key:    raw[1+SaltSize:],
		}, true

	case FormatVersioned:
		if len(raw) != versionedRecordSize {
			return record{}, false
		}
		prf := PRF(binary.BigEndian.Uint32(raw[1:5]))
		if _, known := prf.newHash(); !known {
			return record{}, false
		}
		iterations := binary.BigEndian.Uint32(raw[5:9])
		if iterations == 0 || iterations > MaxIterations {
			return record{}, false
		}
		if binary.BigEndian.Uint32(raw[9:13]) != SaltSize {
			return record{}, false
		}
		return record{
			params: Params{Format: FormatVersioned, PRF: prf, Iterations: int(iterations)},
			salt:   raw[versionedHeaderSize : versionedHeaderSize+SaltSize],
			key:    raw[versionedHeaderSize+SaltSize:],
		}, true

	default:
		return record{}, false
	}
}
