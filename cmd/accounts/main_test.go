// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/credential"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// scriptedPrompter answers prompts from a fixed list.
type scriptedPrompter struct {
	answers []string
	prompts []string
}

func (p *scriptedPrompter) Password(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return "", assert.AnError
	}
	next := p.answers[0]
	p.answers = p.answers[1:]
	return next, nil
}

// execute runs the root command in an isolated environment and returns what
// it wrote to stdout and stderr.
func execute(t *testing.T, deps *Deps, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")

	if deps == nil {
		deps = &Deps{}
	}
	if deps.Prompter == nil {
		deps.Prompter = &scriptedPrompter{}
	}

	cmd := newRootCmd(deps)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	out, _, err := execute(t, nil, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "migrate", "seed", "validate-seeds", "register", "credential", "revoke-sessions"} {
		assert.Contains(t, out, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlags(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"config", "database-url", "http-addr", "session-backend", "credential-iterations"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing persistent flag %q", name)
	}
}

func TestRootCommand_VersionFlag(t *testing.T) {
	cmd := NewRootCmd()
	cmd.Version = "test-version"
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "test-version")
}

func TestRootCommand_ConfigFileIsApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("credential:\n  iterations: 1000\n"), 0o600))

	deps := &Deps{Prompter: &scriptedPrompter{answers: []string{"Secret123", "Secret123"}}}
	out, _, err := execute(t, deps, "--config", path, "credential", "hash")
	require.NoError(t, err)

	params, err := credential.Inspect(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, credential.FormatLegacy, params.Format)
}

func TestRootCommand_InvalidConfigIsRejected(t *testing.T) {
	deps := &Deps{Prompter: &scriptedPrompter{answers: []string{"pw", "pw"}}}
	_, _, err := execute(t, deps, "--log-format", "xml", "credential", "hash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}
