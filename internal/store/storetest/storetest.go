// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package storetest starts a migrated PostgreSQL container for integration tests.
package storetest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/accounts/internal/store"
)

// Database is a running, fully migrated database.
type Database struct {
	URL       string
	Pool      *pgxpool.Pool
	container *postgres.PostgresContainer
}

// Start runs postgres:16-alpine, applies every migration, and opens a pool.
func Start(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("accounts_test"),
		postgres.WithUsername("accounts"),
		postgres.WithPassword("accounts"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, oops.With("operation", "start postgres container").Wrap(err)
	}
	db := &Database{container: container}

	db.URL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		db.Close(ctx)
		return nil, oops.With("operation", "connection string").Wrap(err)
	}

	migrator, err := store.NewMigrator(db.URL)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	err = migrator.Up()
	_ = migrator.Close()
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	db.Pool, err = store.Connect(ctx, db.URL, store.ConnectOptions{ConnectRetries: 5})
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}

// Truncate empties every table.
func (db *Database) Truncate(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `TRUNCATE revoked_tokens, sessions, profiles, users, roles`)
	return err
}

// Close closes the pool and terminates the container.
func (db *Database) Close(ctx context.Context) {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.container != nil {
		_ = db.container.Terminate(ctx)
	}
}
