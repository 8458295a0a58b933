// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/holomush/accounts/internal/session"
	"github.com/holomush/accounts/internal/session/token"
	"github.com/holomush/accounts/pkg/errutil"
)

const sessionKey = "accounts.session"

// unmatchedRoute labels requests that hit no route, keeping metric cardinality bounded.
const unmatchedRoute = "unmatched"

// observe logs every request and counts it by route pattern and status.
func (h *Handler) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		h.requests.HTTPRequest(route, status)
		h.logger.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP())
	}
}

// resolveSession attaches a cookieSession to every request. A cookie that no
// longer names a live session is cleared and the caller is anonymous.
func (h *Handler) resolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(h.cookie.Name)
		if err != nil || raw == "" {
			c.Set(sessionKey, newCookieSession(c, h.cookie, "", nil))
			c.Next()
			return
		}

		principal, err := h.sessions.Resolve(c.Request.Context(), raw)
		switch {
		case err == nil:
			c.Set(sessionKey, newCookieSession(c, h.cookie, raw, principal))
		case isDeadSession(err):
			sc := newCookieSession(c, h.cookie, raw, nil)
			sc.Clear()
			c.Set(sessionKey, sc)
		default:
			errutil.LogError(c.Request.Context(), h.logger, "session resolve failed", err)
			c.Set(sessionKey, newCookieSession(c, h.cookie, raw, nil))
		}
		c.Next()
	}
}

func isDeadSession(err error) bool {
	return errors.Is(err, session.ErrNotFound) ||
		errors.Is(err, session.ErrExpired) ||
		errors.Is(err, token.ErrInvalidToken) ||
		errors.Is(err, token.ErrRevoked)
}

// sessionFrom returns the request's session. Without resolveSession in the
// chain the caller is treated as anonymous.
func (h *Handler) sessionFrom(c *gin.Context) *cookieSession {
	if v, ok := c.Get(sessionKey); ok {
		if sc, ok := v.(*cookieSession); ok && sc != nil {
			return sc
		}
	}
	sc := newCookieSession(c, h.cookie, "", nil)
	c.Set(sessionKey, sc)
	return sc
}
