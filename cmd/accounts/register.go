// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/observability"
)

func newRegisterCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "register LOGIN",
		Short: "Register a user from the command line",
		Long: `Registers LOGIN with the Default role and an empty profile.
The password is read twice from the terminal without echo, or one line per
prompt when stdin is not a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}

			password, err := promptNewPassword(deps.Prompter)
			if err != nil {
				return err
			}

			pool, err := deps.connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			a, err := newApp(cfg, pool, observability.NewMetrics(prometheus.NewRegistry()), logger)
			if err != nil {
				return err
			}

			id, err := a.gate.Register(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			cmd.Printf("Registered %s (user id %s)\n", args[0], id)
			return nil
		},
	}
}
