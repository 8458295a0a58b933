// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/holomush/accounts/internal/auth"
)

// CookieConfig configures the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// cookieSession is the auth.SessionContext of one HTTP request. Bind and
// Clear write Set-Cookie headers on the response.
type cookieSession struct {
	c   *gin.Context
	cfg CookieConfig

	mu        sync.Mutex
	token     string
	principal *auth.Principal
}

func newCookieSession(c *gin.Context, cfg CookieConfig, token string, principal *auth.Principal) *cookieSession {
	return &cookieSession{c: c, cfg: cfg, token: token, principal: principal}
}

func (s *cookieSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *cookieSession) Principal() *auth.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

// Bind sets the session cookie. Persistent sessions get a Max-Age; others
// last until the browser closes.
func (s *cookieSession) Bind(token string, principal auth.Principal, expiresAt time.Time, persistent bool) {
	s.mu.Lock()
	s.token = token
	s.principal = &principal
	s.mu.Unlock()

	maxAge := 0
	if persistent {
		maxAge = int(time.Until(expiresAt).Seconds())
		if maxAge < 1 {
			maxAge = 1
		}
	}
	s.write(token, maxAge)
}

// Clear expires the session cookie.
func (s *cookieSession) Clear() {
	s.mu.Lock()
	s.token = ""
	s.principal = nil
	s.mu.Unlock()

	s.write("", -1)
}

func (s *cookieSession) write(value string, maxAge int) {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(s.cfg.Name, value, maxAge, "/", "", s.cfg.Secure, true)
}

var _ auth.SessionContext = (*cookieSession)(nil)
