// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/accounts/internal/auth"
)

// Metrics contains the account service's Prometheus metrics.
// It implements auth.Recorder.
type Metrics struct {
	LoginAttempts         *prometheus.CounterVec
	Registrations         *prometheus.CounterVec
	LogoutFailures        prometheus.Counter
	CredentialUpgradesDue prometheus.Counter
	HTTPRequests          *prometheus.CounterVec
	SessionsPurged        prometheus.Counter
}

// NewMetrics creates and registers the account metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_login_attempts_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_registrations_total",
				Help: "Total number of registrations by outcome",
			},
			[]string{"outcome"},
		),
		LogoutFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accounts_logout_failures_total",
			Help: "Total number of logouts whose session revocation failed",
		}),
		CredentialUpgradesDue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accounts_credential_upgrades_due_total",
			Help: "Successful logins whose stored credential uses a weaker work factor than configured",
		}),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_http_requests_total",
				Help: "Total number of account API requests by route and status",
			},
			[]string{"route", "status"},
		),
		SessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accounts_sessions_purged_total",
			Help: "Expired sessions and revoked tokens removed by the reaper",
		}),
	}

	reg.MustRegister(
		m.LoginAttempts,
		m.Registrations,
		m.LogoutFailures,
		m.CredentialUpgradesDue,
		m.HTTPRequests,
		m.SessionsPurged,
	)
	return m
}

// LoginAttempt implements auth.Recorder.
func (m *Metrics) LoginAttempt(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// Registration implements auth.Recorder.
func (m *Metrics) Registration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

// LogoutFailure implements auth.Recorder.
func (m *Metrics) LogoutFailure() {
	m.LogoutFailures.Inc()
}

// CredentialUpgradeDue implements auth.Recorder.
func (m *Metrics) CredentialUpgradeDue() {
	m.CredentialUpgradesDue.Inc()
}

// HTTPRequest counts one API request. route is the route pattern, not the raw path.
func (m *Metrics) HTTPRequest(route string, status int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Purged adds n reaped rows. It matches session.Reaper's OnPurge hook.
func (m *Metrics) Purged(n int64) {
	m.SessionsPurged.Add(float64(n))
}

var _ auth.Recorder = (*Metrics)(nil)
