// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import "errors"

// ErrSessionTransport is in the chain of every error Logout returns.
var ErrSessionTransport = errors.New("session transport failure")

// ErrDefaultRoleMissing is returned by Register when the default role does not exist.
var ErrDefaultRoleMissing = errors.New("default role missing")
