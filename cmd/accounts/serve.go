// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/account"
	accountpg "github.com/holomush/accounts/internal/account/postgres"
	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/config"
	"github.com/holomush/accounts/internal/credential"
	"github.com/holomush/accounts/internal/httpapi"
	"github.com/holomush/accounts/internal/observability"
	"github.com/holomush/accounts/internal/session"
	sessionpg "github.com/holomush/accounts/internal/session/postgres"
	"github.com/holomush/accounts/internal/session/token"
)

const shutdownTimeout = 5 * time.Second

// dbPool is the part of *pgxpool.Pool the service wiring uses.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// sessionBackend is what both session backends provide.
type sessionBackend interface {
	auth.SessionIssuer
	httpapi.Resolver
	session.Purger
}

// app is the wired service.
type app struct {
	handler  *httpapi.Handler
	sessions sessionBackend
	gate     *auth.Service
}

func newServeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the account API",
		Long: `Start the account HTTP API, the metrics and health endpoints, and the
background purge of expired sessions. Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg, logger, deps)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, deps *Deps) error {
	logger.Info("starting accounts service",
		"http_addr", cfg.HTTP.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"session_backend", cfg.Session.Backend,
	)

	pool, err := deps.connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	var obs *observability.Server
	var obsErrs <-chan error
	if cfg.Metrics.Addr != "" {
		obs = observability.NewServer(cfg.Metrics.Addr, observability.PingReadiness(pool), logger)
		obsErrs, err = obs.Start()
		if err != nil {
			return err
		}
		metrics = obs.Metrics()
	}

	a, err := newApp(cfg, pool, metrics, logger)
	if err != nil {
		stopServers(logger, obs, nil)
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	api := httpapi.NewServer(cfg.HTTP.Addr, a.handler.Router(), logger)
	apiErrs, err := api.Start()
	if err != nil {
		stopServers(logger, obs, nil)
		return err
	}

	reaper := session.NewReaper(cfg.Session.ReapInterval, logger, a.sessions)
	reaper.OnPurge(metrics.Purged)
	reaper.Start(ctx)

	cmd.Println("Accounts service started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err, ok := <-apiErrs:
		if ok && err != nil {
			runErr = oops.Code("HTTPAPI_SERVE_FAILED").Wrap(err)
		}
	case err, ok := <-obsErrs:
		if ok && err != nil {
			runErr = oops.Code("OBSERVABILITY_SERVE_FAILED").Wrap(err)
		}
	}

	logger.Info("shutting down")
	reaper.Stop()
	stopServers(logger, obs, api)
	logger.Info("shutdown complete")
	return runErr
}

func stopServers(logger *slog.Logger, obs *observability.Server, api *httpapi.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if api != nil {
		if err := api.Stop(ctx); err != nil {
			logger.Warn("error stopping account API server", "error", err)
		}
	}
	if obs != nil {
		if err := obs.Stop(ctx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}
}

// newApp builds the gate, the account service, the session backend and the
// HTTP handler over pool.
func newApp(cfg *config.Config, pool dbPool, metrics *observability.Metrics, logger *slog.Logger) (*app, error) {
	codec, err := credential.NewCodec(credential.WithIterations(cfg.Credential.Iterations))
	if err != nil {
		return nil, err
	}

	sessions, err := newSessionBackend(cfg, pool, logger)
	if err != nil {
		return nil, err
	}

	users := accountpg.NewUserRepository(pool)
	roles := accountpg.NewRoleRepository(pool)
	profiles := accountpg.NewProfileRepository(pool)

	gate, err := auth.NewService(auth.Deps{
		Users:      users,
		Roles:      roles,
		Profiles:   profiles,
		Transactor: accountpg.NewTransactor(pool),
		Hasher:     codec,
		Sessions:   sessions,
		Logger:     logger,
		Recorder:   metrics,
	})
	if err != nil {
		return nil, err
	}

	accounts, err := account.NewService(users, roles, profiles, logger)
	if err != nil {
		return nil, err
	}

	handler, err := httpapi.NewHandler(httpapi.Deps{
		Gate:     gate,
		Accounts: accounts,
		Sessions: sessions,
		Cookie: httpapi.CookieConfig{
			Name:   cfg.HTTP.CookieName,
			Secure: cfg.HTTP.CookieSecure,
		},
		Requests: metrics,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{handler: handler, sessions: sessions, gate: gate}, nil
}

func newSessionBackend(cfg *config.Config, pool dbPool, logger *slog.Logger) (sessionBackend, error) {
	switch cfg.Session.Backend {
	case config.BackendStore:
		return session.NewManager(sessionpg.NewSessionRepository(pool), session.Config{
			TTL:           cfg.Session.TTL,
			PersistentTTL: cfg.Session.PersistentTTL,
		}, session.WithLogger(logger))
	case config.BackendJWT:
		return token.NewIssuer(token.Config{
			Secret:        []byte(cfg.Session.JWTSecret),
			TTL:           cfg.Session.TTL,
			PersistentTTL: cfg.Session.PersistentTTL,
		}, sessionpg.NewDenyList(pool), token.WithLogger(logger))
	default:
		return nil, oops.Code("CONFIG_INVALID").
			With("backend", cfg.Session.Backend).
			Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
