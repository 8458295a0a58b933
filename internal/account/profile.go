// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxProfileFieldLength is the maximum length, in runes, of any profile field.
const MaxProfileFieldLength = 100

// Profile holds the personal details attached to a user.
type Profile struct {
	ID         ulid.ULID
	UserID     ulid.ULID
	FirstName  string
	LastName   string
	MiddleName string
	Gender     string
}

// NewProfile creates the empty profile a user starts with.
func NewProfile(id, userID ulid.ULID) *Profile {
	return &Profile{ID: id, UserID: userID}
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FirstName  string
	LastName   string
	MiddleName string
	Gender     string
}

// Normalize trims every field and checks lengths.
func (u ProfileUpdate) Normalize() (ProfileUpdate, error) {
	out := ProfileUpdate{
		FirstName:  strings.TrimSpace(u.FirstName),
		LastName:   strings.TrimSpace(u.LastName),
		MiddleName: strings.TrimSpace(u.MiddleName),
		Gender:     strings.TrimSpace(u.Gender),
	}
	fields := []struct {
		name  string
		value string
	}{
		{"first_name", out.FirstName},
		{"last_name", out.LastName},
		{"middle_name", out.MiddleName},
		{"gender", out.Gender},
	}
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > MaxProfileFieldLength {
			return ProfileUpdate{}, oops.Code("ACCOUNT_INVALID_PROFILE").
				With("field", f.name).
				With("max", MaxProfileFieldLength).
				Wrapf(ErrInvalid, "%s must be at most %d characters", f.name, MaxProfileFieldLength)
		}
	}
	return out, nil
}

// Apply copies the update onto the profile.
func (p *Profile) Apply(u ProfileUpdate) {
	p.FirstName = u.FirstName
	p.LastName = u.LastName
	p.MiddleName = u.MiddleName
	p.Gender = u.Gender
}
