// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/credential"
)

func newCredentialCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Create and check credential records offline",
		Long: `Work with stored credential records without a database.
New records use the configured credential.iterations.`,
	}

	cmd.AddCommand(newCredentialHashCmd(deps))
	cmd.AddCommand(newCredentialVerifyCmd(deps))
	cmd.AddCommand(newCredentialInspectCmd())

	return cmd
}

// configuredCodec builds a codec from the loaded configuration.
func configuredCodec(cmd *cobra.Command) (*credential.Codec, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return credential.NewCodec(credential.WithIterations(cfg.Credential.Iterations))
}

func newCredentialHashCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "hash",
		Short: "Hash a password into a new credential record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codec, err := configuredCodec(cmd)
			if err != nil {
				return err
			}
			password, err := promptNewPassword(deps.Prompter)
			if err != nil {
				return err
			}
			record, err := codec.Hash(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), record)
			return err
		},
	}
}

func newCredentialVerifyCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "verify RECORD",
		Short: "Check a password against a credential record",
		Long: `Check a password against RECORD. Exits non-zero when the password does
not match or the record is malformed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := configuredCodec(cmd)
			if err != nil {
				return err
			}
			password, err := deps.Prompter.Password("Password: ")
			if err != nil {
				return err
			}
			record := strings.TrimSpace(args[0])
			ok, err := codec.Verify(record, password)
			if err != nil {
				return err
			}
			if !ok {
				return oops.Code("CREDENTIAL_MISMATCH").Errorf("password does not match the record")
			}
			cmd.Println("Password matches")
			if codec.NeedsUpgrade(record) {
				cmd.Printf("Record is weaker than the configured %d iterations; rehash on next login\n", codec.Iterations())
			}
			return nil
		},
	}
}

func newCredentialInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect RECORD",
		Short: "Show the derivation parameters stored in a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := credential.Inspect(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, err = fmt.Fprintf(out, "format:     %s\nprf:        %s\niterations: %d\n",
				params.Format, params.PRF, params.Iterations)
			return err
		},
	}
}
