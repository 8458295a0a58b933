// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	accountpg "github.com/holomush/accounts/internal/account/postgres"
	"github.com/holomush/accounts/internal/seed"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout time.Duration
	file    string
}

func newSeedCmd(deps *Deps) *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the built-in roles",
		Long: `Creates the roles registration depends on, including the Default role.
This command is idempotent - existing roles are left untouched and a differing
description is only reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, deps, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().StringVar(&cfg.file, "file", "", "seed file to apply instead of the built-in roles")

	return cmd
}

func runSeed(cmd *cobra.Command, deps *Deps, sc *seedConfig) error {
	roles, err := loadSeedRoles(sc.file)
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// cmd.Context() carries SIGINT cancellation from the caller.
	ctx, cancel := context.WithTimeout(cmd.Context(), sc.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := deps.connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	res, err := seed.Apply(ctx, accountpg.NewRoleRepository(pool), roles, logger)
	if err != nil {
		return err
	}

	cmd.Printf("Seeding complete: %d created, %d already present\n", res.Created, res.Skipped)
	return nil
}

// loadSeedRoles returns the roles in path, or the built-in roles when path is empty.
func loadSeedRoles(path string) ([]seed.Role, error) {
	if path == "" {
		return seed.Roles()
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	f, err := seed.Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return f.Roles, nil
}
