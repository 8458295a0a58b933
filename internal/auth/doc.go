// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth decides who is signed in.
//
// # Gate
//
// Service.Login looks up the user by login, verifies the password against the
// stored credential record, and on success replaces the caller's session with a
// new persistent one bound to a Principal. Every failure, including store or
// session errors, yields the same Rejected result so callers cannot tell an
// unknown login from a wrong password or an outage.
//
// Service.Logout revokes the caller's session and, unlike Login, reports
// failures: a silent logout failure would leave the session active.
//
// Service.Register creates a user with the default role and an empty profile in
// one transaction.
//
// # Sessions
//
// Session handling is a capability passed in as a SessionIssuer; the gate never
// stores sessions itself. The caller's side of a session (its token and the
// principal bound to it) travels as an explicit SessionContext argument.
package auth
