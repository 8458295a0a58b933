// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package credential turns plaintext passwords into stored credential records
// and verifies passwords against them.
//
// # Record formats
//
// A record is base64 (standard alphabet, padded) over a fixed-length byte
// buffer whose first byte is a format marker:
//
//	0x00  legacy     1 marker | 16 salt | 32 key                              (49 bytes)
//	0x01  versioned  1 marker | 4 PRF | 4 iterations | 4 salt len | 16 salt | 32 key  (61 bytes)
//
// Legacy records are PBKDF2-HMAC-SHA1 with 1000 iterations and are what every
// existing account holds. Versioned records carry their own work factor, so the
// iteration count can be raised for new records without breaking old ones.
// Integers in the versioned header are big-endian.
//
// Any record whose length does not match its marker, or whose marker is
// unknown, is malformed and never verifies.
package credential
