// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"io"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// Work factors.
const (
	// LegacyIterations is the PBKDF2 count every legacy record was created with.
	LegacyIterations = 1000
	// RecommendedIterations is a sensible count for new versioned records.
	RecommendedIterations = 600_000
	// MaxIterations bounds the work a single stored record can demand.
	MaxIterations = 10_000_000
)

// ErrInvalidArgument is returned when the password argument is absent.
var ErrInvalidArgument = oops.Code("CREDENTIAL_INVALID_ARGUMENT").Errorf("password must not be empty")

// ErrMalformedRecord is returned by Inspect for records that cannot be parsed.
// Verify never returns it; malformed records simply do not verify.
var ErrMalformedRecord = oops.Code("CREDENTIAL_MALFORMED").Errorf("malformed credential record")

// Hasher is the codec surface the rest of the service depends on.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) (bool, error)
	NeedsUpgrade(encoded string) bool
}

// Codec hashes and verifies credential records. It holds only immutable
// configuration and is safe for concurrent use.
type Codec struct {
	iterations int
	random     io.Reader
}

// Option configures a Codec.
type Option func(*Codec)

// WithIterations sets the PBKDF2 count for new records. LegacyIterations keeps
// writing the legacy layout; anything higher writes versioned HMAC-SHA256 records.
func WithIterations(n int) Option {
	return func(c *Codec) {
		c.iterations = n
	}
}

// NewCodec creates a Codec. Without options it writes legacy records.
func NewCodec(opts ...Option) (*Codec, error) {
	c := &Codec{
		iterations: LegacyIterations,
		random:     rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.iterations < LegacyIterations || c.iterations > MaxIterations {
		return nil, oops.Code("CREDENTIAL_INVALID_CONFIG").
			With("iterations", c.iterations).
			Errorf("iterations must be between %d and %d", LegacyIterations, MaxIterations)
	}
	return c, nil
}

// Iterations returns the PBKDF2 count used for new records.
func (c *Codec) Iterations() int {
	return c.iterations
}

// Params returns the derivation parameters used for new records.
func (c *Codec) Params() Params {
	if c.iterations == LegacyIterations {
		return Params{Format: FormatLegacy, PRF: HMACSHA1, Iterations: LegacyIterations}
	}
	return Params{Format: FormatVersioned, PRF: HMACSHA256, Iterations: c.iterations}
}

// Hash derives a new credential record for password using a fresh random salt.
func (c *Codec) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrInvalidArgument
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(c.random, salt); err != nil {
		return "", oops.Code("CREDENTIAL_SALT_FAILED").
			With("requested_bytes", SaltSize).
			Wrap(err)
	}

	params := c.Params()
	return encode(record{
		params: params,
		salt:   salt,
		key:    derive(params, password, salt),
	}), nil
}

// Verify reports whether password matches the encoded record.
// Absent or malformed records return false with a nil error; the only error is
// ErrInvalidArgument for an empty password. The key comparison is constant time.
func (c *Codec) Verify(encoded, password string) (bool, error) {
	if password == "" {
		return false, ErrInvalidArgument
	}

	rec, ok := decode(encoded)
	if !ok {
		return false, nil
	}

	candidate := derive(rec.params, password, rec.salt)
	return subtle.ConstantTimeCompare(candidate, rec.key) == 1, nil
}

// NeedsUpgrade reports whether a record was derived with a weaker work factor
// than this codec would use today. Malformed records report false.
func (c *Codec) NeedsUpgrade(encoded string) bool {
	rec, ok := decode(encoded)
	if !ok {
		return false
	}
	target := c.Params()
	if rec.params.Iterations < target.Iterations {
		return true
	}
	return rec.params.PRF == HMACSHA1 && target.PRF != HMACSHA1
}

// Inspect returns the derivation parameters stored in a record.
func Inspect(encoded string) (Params, error) {
	rec, ok := decode(encoded)
	if !ok {
		return Params{}, ErrMalformedRecord
	}
	return rec.params, nil
}

func derive(p Params, password string, salt []byte) []byte {
	newHash, _ := p.PRF.newHash()
	return pbkdf2.Key([]byte(password), salt, p.Iterations, KeySize, newHash)
}

var _ Hasher = (*Codec)(nil)
