// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package seed loads the built-in role seeds and applies them to a role
// repository.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/accounts/internal/account"
)

//go:embed roles.yaml
var rolesYAML []byte

// Role is one entry of a seed file.
type Role struct {
	Name        string `yaml:"name" json:"name" jsonschema:"minLength=1,maxLength=64"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" jsonschema:"maxLength=256"`
}

// File is the layout of a role seed file.
type File struct {
	Roles []Role `yaml:"roles" json:"roles" jsonschema:"minItems=1"`
}

// Parse validates data against the seed schema and decodes it.
func Parse(data []byte) (*File, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, oops.Code("SEED_INVALID").With("operation", "decode seed file").Wrap(err)
	}

	seen := make(map[string]bool, len(f.Roles))
	for _, r := range f.Roles {
		if seen[r.Name] {
			return nil, oops.Code("SEED_INVALID").With("role", r.Name).Errorf("duplicate role %q", r.Name)
		}
		seen[r.Name] = true
	}
	if !seen[account.DefaultRoleName] {
		return nil, oops.Code("SEED_INVALID").
			With("role", account.DefaultRoleName).
			Errorf("seed file must define the %q role", account.DefaultRoleName)
	}
	return &f, nil
}

// Roles returns the built-in role seeds.
func Roles() ([]Role, error) {
	f, err := Parse(rolesYAML)
	if err != nil {
		return nil, err
	}
	return f.Roles, nil
}

// Result counts what Apply did.
type Result struct {
	Created int
	Skipped int
}

// Apply creates every seed role that does not exist yet. Existing roles are
// left untouched; a differing description is only logged.
func Apply(ctx context.Context, repo account.RoleRepository, roles []Role, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var res Result
	for _, seed := range roles {
		existing, err := repo.GetByName(ctx, seed.Name)
		switch {
		case err == nil:
			if existing.Description != seed.Description {
				logger.WarnContext(ctx, "seed role description drift",
					"role", seed.Name,
					"expected", seed.Description,
					"actual", existing.Description)
			}
			res.Skipped++
			continue
		case !errors.Is(err, account.ErrNotFound):
			return res, oops.Code("SEED_FAILED").With("operation", "get role").With("role", seed.Name).Wrap(err)
		}

		role := &account.Role{ID: ulid.Make(), Name: seed.Name, Description: seed.Description}
		if err := repo.Create(ctx, role); err != nil {
			if errors.Is(err, account.ErrAlreadyExists) {
				// Created concurrently by another seeder.
				res.Skipped++
				continue
			}
			return res, oops.Code("SEED_FAILED").With("operation", "create role").With("role", seed.Name).Wrap(err)
		}
		logger.InfoContext(ctx, "seed role created", "role", role.Name, "id", role.ID.String())
		res.Created++
	}
	return res, nil
}
