// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
)

// ProfileRepository implements account.ProfileRepository.
type ProfileRepository struct {
	pool poolIface
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool poolIface) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Create stores a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *account.Profile) error {
	_, err := querierFromCtx(ctx, r.pool).Exec(ctx, `
		INSERT INTO profiles (id, user_id, first_name, last_name, middle_name, gender)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID.String(), p.UserID.String(), p.FirstName, p.LastName, p.MiddleName, p.Gender)
	if err != nil {
		return oops.Code("PROFILE_CREATE_FAILED").
			With("operation", "insert profile").
			With("user_id", p.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByUserID retrieves the profile of a user.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID ulid.ULID) (*account.Profile, error) {
	var (
		idStr string
		p     = account.Profile{UserID: userID}
	)
	err := querierFromCtx(ctx, r.pool).QueryRow(ctx, `
		SELECT id, first_name, last_name, middle_name, gender
		FROM profiles
		WHERE user_id = $1
	`, userID.String()).Scan(&idStr, &p.FirstName, &p.LastName, &p.MiddleName, &p.Gender)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PROFILE_NOT_FOUND").With("user_id", userID.String()).Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PROFILE_GET_FAILED").
			With("operation", "get profile by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	if p.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("PROFILE_GET_FAILED").With("operation", "parse profile id").With("id", idStr).Wrap(err)
	}
	return &p, nil
}

// Update replaces the editable fields of a profile.
func (r *ProfileRepository) Update(ctx context.Context, p *account.Profile) error {
	tag, err := querierFromCtx(ctx, r.pool).Exec(ctx, `
		UPDATE profiles
		SET first_name = $2, last_name = $3, middle_name = $4, gender = $5, updated_at = now()
		WHERE id = $1
	`, p.ID.String(), p.FirstName, p.LastName, p.MiddleName, p.Gender)
	if err != nil {
		return oops.Code("PROFILE_UPDATE_FAILED").
			With("operation", "update profile").
			With("id", p.ID.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("PROFILE_NOT_FOUND").With("id", p.ID.String()).Wrap(account.ErrNotFound)
	}
	return nil
}

var _ account.ProfileRepository = (*ProfileRepository)(nil)
