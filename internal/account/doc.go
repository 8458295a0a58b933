// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package account holds the user, role, and profile records behind sign-in.
//
// # Domain Types
//
// Use the constructors rather than struct literals:
//   - NewUser - validates the login and requires a credential record and profile link
//   - NewProfile - creates the empty profile every new user starts with
//
// Repository implementations receive pre-validated values.
//
// # Services
//
// Service answers the questions the account pages ask: does a login exist,
// which user id belongs to it, what does a role look like, and reading or
// editing the signed-in user's profile. Sign-in itself lives in package auth.
package account
