// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/seed"
)

func newValidateSeedsCmd() *cobra.Command {
	var (
		file        string
		printSchema bool
	)

	cmd := &cobra.Command{
		Use:   "validate-seeds",
		Short: "Validate role seed files without touching the database",
		Long: `Validates the built-in role seeds, or --file, against the seed schema.
Does NOT require a database connection.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch seed errors early:
  accounts validate-seeds --file deploy/roles.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printSchema {
				schema, err := seed.GenerateSchema()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
				return err
			}

			roles, err := loadSeedRoles(file)
			if err != nil {
				return err
			}
			for _, r := range roles {
				cmd.Printf("  %s\n", r.Name)
			}
			cmd.Printf("All %d seed roles valid\n", len(roles))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "seed file to validate instead of the built-in roles")
	cmd.Flags().BoolVar(&printSchema, "print-schema", false, "print the seed file JSON Schema and exit")

	return cmd
}
