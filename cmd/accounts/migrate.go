// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Apply, roll back and inspect the embedded schema migrations.
Running migrate without a subcommand applies every pending migration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator, logger *slog.Logger) error {
				return migrateUp(cmd, m, logger)
			})
		},
	}

	cmd.AddCommand(newMigrateUpCmd(deps))
	cmd.AddCommand(newMigrateDownCmd(deps))
	cmd.AddCommand(newMigrateStatusCmd(deps))
	cmd.AddCommand(newMigrateVersionCmd(deps))
	cmd.AddCommand(newMigrateForceCmd(deps))

	return cmd
}

// withMigrator loads configuration, opens a migrator and closes it after fn.
func withMigrator(cmd *cobra.Command, deps *Deps, fn func(Migrator, *slog.Logger) error) (err error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	m, err := deps.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	return fn(m, logger)
}

func migrateUp(cmd *cobra.Command, m Migrator, logger *slog.Logger) error {
	cmd.Println("Running migrations...")
	if err := m.Up(); err != nil {
		return err
	}
	version, _, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("migrations applied", "version", version)
	cmd.Printf("Migrations completed successfully (version %d)\n", version)
	return nil
}

func newMigrateUpCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator, logger *slog.Logger) error {
				return migrateUp(cmd, m, logger)
			})
		},
	}
}

func newMigrateDownCmd(deps *Deps) *cobra.Command {
	var (
		steps int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Long: `Roll back the most recent migration, or --steps of them.
--all rolls back every migration and drops all account and session data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return oops.Code("INVALID_STEPS").Errorf("steps must be at least 1, got %d", steps)
			}
			return withMigrator(cmd, deps, func(m Migrator, logger *slog.Logger) error {
				if all {
					cmd.Println("Rolling back all migrations...")
					if err := m.Down(); err != nil {
						return err
					}
				} else {
					cmd.Printf("Rolling back %d migration(s)...\n", steps)
					if err := m.Steps(-steps); err != nil {
						return err
					}
				}
				version, _, err := m.Version()
				if err != nil {
					return err
				}
				logger.Info("migrations rolled back", "version", version)
				cmd.Printf("Rollback complete (version %d)\n", version)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.Flags().BoolVar(&all, "all", false, "roll back every migration")
	cmd.MarkFlagsMutuallyExclusive("steps", "all")

	return cmd
}

func newMigrateStatusCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator, _ *slog.Logger) error {
				st, err := m.Status()
				if err != nil {
					return err
				}
				current := st.Name
				if current == "" {
					current = "none"
				}
				cmd.Printf("Current version: %d (%s)\n", st.Version, current)
				if st.Dirty {
					cmd.Println("WARNING: database is dirty; repair it and run 'migrate force'")
				}
				for _, mig := range st.Applied {
					cmd.Printf("  [applied] %s\n", mig.Name)
				}
				for _, mig := range st.Pending {
					cmd.Printf("  [pending] %s\n", mig.Name)
				}
				return nil
			})
		},
	}
}

func newMigrateVersionCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator, _ *slog.Logger) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if dirty {
					cmd.Printf("%d (dirty)\n", version)
					return nil
				}
				cmd.Printf("%d\n", version)
				return nil
			})
		},
	}
}

func newMigrateForceCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "force VERSION",
		Short: "Mark a version as applied without running it",
		Long: `Record VERSION as the current schema version and clear the dirty flag.
Use it only after repairing a failed migration by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, deps, func(m Migrator, logger *slog.Logger) error {
				if err := m.Force(version); err != nil {
					return err
				}
				logger.Warn("migration version forced", "version", version)
				cmd.Printf("Forced version %d\n", version)
				return nil
			})
		},
	}
}

// parseForceVersion reads a leading integer from s. Anything after the
// number is ignored.
func parseForceVersion(s string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(s, "%d", &version); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Wrapf(err, "invalid migration version %q", s)
	}
	return version, nil
}
