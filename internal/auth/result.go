// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

// RejectedMessage is the only failure detail a login ever reports.
const RejectedMessage = "invalid login or password"

// Outcome is the terminal state of a login attempt.
type Outcome int

// Login outcomes.
const (
	OutcomeRejected Outcome = iota
	OutcomeAuthenticated
)

func (o Outcome) String() string {
	if o == OutcomeAuthenticated {
		return "authenticated"
	}
	return "rejected"
}

// Result is what Login returns. A rejected Result carries no principal and is
// identical regardless of why the login was rejected.
type Result struct {
	Outcome   Outcome
	Principal *Principal
}

// Rejected is the single rejected Result.
var Rejected = Result{Outcome: OutcomeRejected}

func authenticated(p Principal) Result {
	return Result{Outcome: OutcomeAuthenticated, Principal: &p}
}

// Authenticated reports whether the login succeeded.
func (r Result) Authenticated() bool {
	return r.Outcome == OutcomeAuthenticated && r.Principal != nil
}

// Message returns a caller-safe description of the result.
func (r Result) Message() string {
	if r.Authenticated() {
		return "signed in"
	}
	return RejectedMessage
}
