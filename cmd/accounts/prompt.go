// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/term"

	"github.com/holomush/accounts/internal/auth"
)

// Prompter reads secrets from the operator.
type Prompter interface {
	Password(prompt string) (string, error)
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// termPrompter reads without echo from a terminal, or one line per prompt
// from piped input.
type termPrompter struct {
	in  *os.File
	out io.Writer

	lines *bufio.Reader
}

func newTermPrompter(in *os.File, out io.Writer) *termPrompter {
	return &termPrompter{in: in, out: out}
}

func (p *termPrompter) Password(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return "", oops.Code("PROMPT_FAILED").Wrap(err)
	}

	fd := int(p.in.Fd())
	if term.IsTerminal(fd) {
		pw, err := readPassword(fd)
		_, _ = fmt.Fprintln(p.out)
		if err != nil {
			return "", oops.Code("PROMPT_FAILED").Wrap(err)
		}
		return string(pw), nil
	}

	if p.lines == nil {
		p.lines = bufio.NewReader(p.in)
	}
	line, err := p.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", oops.Code("PROMPT_FAILED").Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptNewPassword asks twice and insists on a match.
func promptNewPassword(p Prompter) (string, error) {
	pw, err := p.Password("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := p.Password("Repeat password: ")
	if err != nil {
		return "", err
	}
	if !auth.PasswordsMatch(pw, confirm) {
		return "", oops.Code("PASSWORD_MISMATCH").Errorf("passwords do not match")
	}
	return pw, nil
}
