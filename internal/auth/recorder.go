// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

// Metric label values.
const (
	LoginAuthenticated = "authenticated"
	LoginRejected      = "rejected"
	LoginError         = "error"

	RegistrationCreated    = "created"
	RegistrationLoginTaken = "login_taken"
	RegistrationInvalid    = "invalid"
	RegistrationError      = "error"
)

// Recorder receives gate outcomes for metrics.
type Recorder interface {
	LoginAttempt(outcome string)
	Registration(outcome string)
	LogoutFailure()
	CredentialUpgradeDue()
}

type nopRecorder struct{}

func (nopRecorder) LoginAttempt(string)   {}
func (nopRecorder) Registration(string)   {}
func (nopRecorder) LogoutFailure()        {}
func (nopRecorder) CredentialUpgradeDue() {}
