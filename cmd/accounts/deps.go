// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/holomush/accounts/internal/config"
	"github.com/holomush/accounts/internal/store"
)

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// Connect opens the database pool.
	// Default: store.Connect
	Connect func(ctx context.Context, url string, opts store.ConnectOptions) (*pgxpool.Pool, error)

	// NewMigrator creates a schema migrator.
	// Default: store.NewMigrator
	NewMigrator func(url string) (Migrator, error)

	// Prompter reads passwords.
	// Default: no-echo terminal reads from stdin, prompts on stderr
	Prompter Prompter
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Status() (store.Status, error)
	Close() error
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.Connect == nil {
		out.Connect = store.Connect
	}
	if out.NewMigrator == nil {
		out.NewMigrator = func(url string) (Migrator, error) {
			return store.NewMigrator(url)
		}
	}
	if out.Prompter == nil {
		out.Prompter = newTermPrompter(os.Stdin, os.Stderr)
	}
	return &out
}

// connect opens the pool described by cfg, bounded by its connect timeout.
func (d *Deps) connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	return d.Connect(ctx, cfg.Database.URL, store.ConnectOptions{
		ConnectRetries: uint64(cfg.Database.ConnectAttempts - 1),
		Logger:         logger,
	})
}
